package rating

import (
	"context"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/db"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"

	"github.com/uptrace/bun"
)

const table = "ratings"

type Repository interface {
	Create(ctx context.Context, rating *Rating) (*Rating, error)
	Exists(ctx context.Context, userID, courseID int64) (bool, error)
	ListByCourse(ctx context.Context, courseID int64) ([]Rating, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

// Create maps a unique violation on (user_id, course_id) to ErrAlreadyRated
// and the range CHECK to ErrInvalidValue.
func (r *repository) Create(ctx context.Context, rating *Rating) (*Rating, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(rating).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", table, time.Since(start), err)

	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, ErrAlreadyRated
		case db.IsCheckViolation(err):
			return nil, ErrInvalidValue
		}
		return nil, err
	}
	return rating, nil
}

func (r *repository) Exists(ctx context.Context, userID, courseID int64) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().
		Model((*Rating)(nil)).
		Where("user_id = ?", userID).
		Where("course_id = ?", courseID).
		Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", table, time.Since(start), err)

	return exists, err
}

func (r *repository) ListByCourse(ctx context.Context, courseID int64) ([]Rating, error) {
	start := time.Now()
	ratings := []Rating{}
	err := r.db.NewSelect().
		Model(&ratings).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", table, time.Since(start), err)

	return ratings, err
}
