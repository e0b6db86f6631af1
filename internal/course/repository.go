package course

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/metrics"

	"github.com/uptrace/bun"
)

const table = "courses"

type Repository interface {
	Create(ctx context.Context, course *Course) (*Course, error)
	GetAll(ctx context.Context) ([]Course, error)
	GetByID(ctx context.Context, id int64) (*Course, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, course *Course) error
	Delete(ctx context.Context, id int64) error
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

func (r *repository) Create(ctx context.Context, course *Course) (*Course, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(course).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", table, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return course, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Course, error) {
	start := time.Now()
	courses := []Course{}
	err := r.db.NewSelect().Model(&courses).Order("id ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", table, time.Since(start), err)

	return courses, err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Course, error) {
	start := time.Now()
	course := new(Course)
	err := r.db.NewSelect().Model(course).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", table, time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().Model((*Course)(nil)).Where("id = ?", id).Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", table, time.Since(start), err)

	return exists, err
}

func (r *repository) Update(ctx context.Context, course *Course) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(course).
		Column("title", "description", "image").
		WherePK().
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", table, time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// Delete removes the course; comments, ratings and resources cascade in the database.
func (r *repository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model((*Course)(nil)).Where("id = ?", id).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", table, time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}
