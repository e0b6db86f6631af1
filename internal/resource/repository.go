package resource

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/db"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"

	"github.com/uptrace/bun"
)

var (
	ErrNotFound = errors.New("resource not found")
	// ErrCourseMissing means the course went away before the insert landed.
	ErrCourseMissing = errors.New("course does not exist")
)

type Store[T any] interface {
	ListByCourse(ctx context.Context, courseID int64) ([]T, error)
	Create(ctx context.Context, item *T) error
	GetByID(ctx context.Context, id int64) (*T, error)
	Delete(ctx context.Context, id int64) error
}

type Repository[T any, PT Entity[T]] struct {
	db      bun.IDB
	metrics *metrics.Metrics
	table   string
}

func NewRepository[T any, PT Entity[T]](db bun.IDB, family Family, m *metrics.Metrics) *Repository[T, PT] {
	return &Repository[T, PT]{
		db:      db,
		metrics: m,
		table:   family.Table,
	}
}

func (r *Repository[T, PT]) ListByCourse(ctx context.Context, courseID int64) ([]T, error) {
	start := time.Now()
	items := []T{}
	err := r.db.NewSelect().
		Model(&items).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", r.table, time.Since(start), err)

	return items, err
}

func (r *Repository[T, PT]) Create(ctx context.Context, item *T) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(item).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", r.table, time.Since(start), err)

	if db.IsForeignKeyViolation(err) {
		return ErrCourseMissing
	}
	return err
}

func (r *Repository[T, PT]) GetByID(ctx context.Context, id int64) (*T, error) {
	start := time.Now()
	item := new(T)
	err := r.db.NewSelect().Model(item).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", r.table, time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *Repository[T, PT]) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*T)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", r.table, time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
