package comment

import (
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/course"
	"github.com/haniSalm/FAST-E-Learning/internal/user"

	"github.com/uptrace/bun"
)

const NoCommentsMessage = "No comments yet."

type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:cm"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Text      string    `bun:"text,notnull"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`
	UserID    int64     `bun:"user_id,notnull"`
	CourseID  int64     `bun:"course_id,notnull"`

	User   *user.User     `bun:"rel:belongs-to,join:user_id=id"`
	Course *course.Course `bun:"rel:belongs-to,join:course_id=id"`
}

type CreateRequest struct {
	Text string `json:"text" validate:"notblank"`
}

type Response struct {
	ID          int64     `json:"id"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	UserEmail   string    `json:"user_email"`
	CourseTitle string    `json:"course_title"`
}

func ToResponse(c *Comment) Response {
	resp := Response{
		ID:        c.ID,
		Text:      c.Text,
		Timestamp: c.Timestamp,
	}
	if c.User != nil {
		resp.UserEmail = c.User.Email
	}
	if c.Course != nil {
		resp.CourseTitle = c.Course.Title
	}
	return resp
}
