package comment

import (
	"context"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/metrics"

	"github.com/uptrace/bun"
)

const table = "comments"

type Repository interface {
	Create(ctx context.Context, comment *Comment) (*Comment, error)
	ListByCourse(ctx context.Context, courseID int64) ([]Comment, error)
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

func (r *repository) Create(ctx context.Context, comment *Comment) (*Comment, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(comment).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", table, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByCourse returns the newest comments first with author and course loaded.
func (r *repository) ListByCourse(ctx context.Context, courseID int64) ([]Comment, error) {
	start := time.Now()
	comments := []Comment{}
	err := r.db.NewSelect().
		Model(&comments).
		Relation("User").
		Relation("Course").
		Where("cm.course_id = ?", courseID).
		Order("cm.timestamp DESC", "cm.id DESC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", table, time.Since(start), err)

	return comments, err
}
