package course

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

const (
	DefaultTitle       = "Untitled Course"
	DefaultDescription = "No description available"

	ImagePrefix = "courses/images/"
)

var ErrCourseNotFound = errors.New("course not found")

type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Title       string    `bun:"title,notnull,default:'Untitled Course'"`
	Description string    `bun:"description,notnull,default:'No description available'"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	Image       string    `bun:"image,nullzero"`
}

// Input carries the fields present in a create or update request; nil means absent.
type Input struct {
	Title       *string `json:"title" validate:"omitnil,notblank,max=200"`
	Description *string `json:"description"`
}

type Response struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Image       *string   `json:"image"`
}
