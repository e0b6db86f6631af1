package rating

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

const (
	MinValue = 1
	MaxValue = 5
)

var (
	ErrInvalidValue = errors.New("rating must be between 1 and 5")
	ErrAlreadyRated = errors.New("course already rated by this user")
)

const (
	invalidValueMessage = "Rating must be between 1 and 5"
	alreadyRatedMessage = "You have already rated this course"
)

// Rating is unique per (user, course) at the storage level.
type Rating struct {
	bun.BaseModel `bun:"table:ratings,alias:r"`

	ID       int64 `bun:"id,pk,autoincrement"`
	Value    int   `bun:"rating,notnull"`
	UserID   int64 `bun:"user_id,notnull,unique:ratings_user_course_key"`
	CourseID int64 `bun:"course_id,notnull,unique:ratings_user_course_key"`
}

type Response struct {
	ID     int64 `json:"id"`
	Course int64 `json:"course"`
	User   int64 `json:"user"`
	Rating int   `json:"rating"`
}

// DetailResponse is a course with its ratings and their mean.
type DetailResponse struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CreatedAt       time.Time  `json:"created_at"`
	Image           *string    `json:"image"`
	Ratings         []Response `json:"ratings"`
	AverageRating   float64    `json:"average_rating"`
	NumberOfRatings int        `json:"number_of_ratings"`
}

// Average is the arithmetic mean of the values, 0 when there are none.
func Average(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	return float64(sum) / float64(len(ratings))
}
