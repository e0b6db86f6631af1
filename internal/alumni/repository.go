package alumni

import (
	"context"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/db"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"

	"github.com/uptrace/bun"
)

const table = "alumni"

type Repository interface {
	Create(ctx context.Context, a *Alumni) (*Alumni, error)
	Exists(ctx context.Context, email string) (bool, error)
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

func (r *repository) Create(ctx context.Context, a *Alumni) (*Alumni, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(a).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", table, time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyListed
		}
		return nil, err
	}
	return a, nil
}

func (r *repository) Exists(ctx context.Context, email string) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().
		Model((*Alumni)(nil)).
		Where("email = ?", email).
		Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", table, time.Since(start), err)

	return exists, err
}
