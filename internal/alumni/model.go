package alumni

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

var ErrAlreadyListed = errors.New("email is already on the alumni list")

type Alumni struct {
	bun.BaseModel `bun:"table:alumni,alias:al"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Email     string    `bun:"email,unique,notnull" json:"email"`
	DateAdded time.Time `bun:"date_added,notnull,default:current_timestamp" json:"date_added"`
}

type NewAlumni struct {
	Email string `json:"email" validate:"required,alumni_email"`
}
