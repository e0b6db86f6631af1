package user

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("user with this email already exists")
)

// User is an account identified by email. Password holds the bcrypt hash only.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Email       string    `bun:"email,unique,notnull" json:"email"`
	Password    string    `bun:"password,notnull" json:"-"`
	IsStaff     bool      `bun:"is_staff,notnull,default:false" json:"-"`
	IsSuperuser bool      `bun:"is_superuser,notnull,default:false" json:"-"`
	DateJoined  time.Time `bun:"date_joined,notnull,default:current_timestamp" json:"-"`
}
