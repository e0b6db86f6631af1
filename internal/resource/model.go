package resource

import "github.com/uptrace/bun"

// Fields is the column set shared by every course resource family.
type Fields struct {
	ID          int64  `bun:"id,pk,autoincrement"`
	Title       string `bun:"title,type:varchar(200),notnull"`
	Description string `bun:"description,notnull,default:''"`
	Image       string `bun:"image,nullzero"`
	File        string `bun:"file,nullzero"`
	CourseID    int64  `bun:"course_id,notnull"`
}

// Entity is satisfied by a pointer to a family model.
type Entity[T any] interface {
	*T
	Base() *Fields
}

type Assignment struct {
	bun.BaseModel `bun:"table:assignments,alias:asg"`
	Fields
}

func (a *Assignment) Base() *Fields { return &a.Fields }

type Quizz struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`
	Fields
}

func (q *Quizz) Base() *Fields { return &q.Fields }

type PastPaper struct {
	bun.BaseModel `bun:"table:past_papers,alias:pp"`
	Fields
}

func (p *PastPaper) Base() *Fields { return &p.Fields }

type CourseMaterial struct {
	bun.BaseModel `bun:"table:course_materials,alias:cmat"`
	Fields
}

func (m *CourseMaterial) Base() *Fields { return &m.Fields }

type Input struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description"`
}

type Response struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
	File        *string `json:"file"`
	Course      int64   `json:"course"`
}
