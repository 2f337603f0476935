package rates

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solventa-app/solventa/internal/shared"
)

// RepositoryPort defines persistence for per-plan default rates.
type RepositoryPort interface {
	ListPlanRates(ctx context.Context) ([]PlanRates, error)
	GetPlanRates(ctx context.Context, plan string) (PlanRates, error)
	UpsertPlanRates(ctx context.Context, plan string, rates RateSet) (PlanRates, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListPlanRates returns stored defaults for every plan.
func (r *Repository) ListPlanRates(ctx context.Context) ([]PlanRates, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, plan, tem, tna, tea, updated_at FROM plan_rates ORDER BY plan`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PlanRates
	for rows.Next() {
		var pr PlanRates
		if err := rows.Scan(&pr.ID, &pr.Plan, &pr.Rates.TEM, &pr.Rates.TNA, &pr.Rates.TEA, &pr.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, pr)
	}
	return result, rows.Err()
}

// GetPlanRates fetches the default rate set for one plan.
func (r *Repository) GetPlanRates(ctx context.Context, plan string) (PlanRates, error) {
	var pr PlanRates
	err := r.pool.QueryRow(ctx,
		`SELECT id, plan, tem, tna, tea, updated_at FROM plan_rates WHERE plan = $1`, plan).
		Scan(&pr.ID, &pr.Plan, &pr.Rates.TEM, &pr.Rates.TNA, &pr.Rates.TEA, &pr.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PlanRates{}, shared.ErrNotFound
	}
	if err != nil {
		return PlanRates{}, err
	}
	return pr, nil
}

// UpsertPlanRates stores the default rate set for a plan.
func (r *Repository) UpsertPlanRates(ctx context.Context, plan string, rates RateSet) (PlanRates, error) {
	now := time.Now()
	var pr PlanRates
	err := r.pool.QueryRow(ctx,
		`INSERT INTO plan_rates (plan, tem, tna, tea, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (plan) DO UPDATE SET tem = EXCLUDED.tem, tna = EXCLUDED.tna, tea = EXCLUDED.tea, updated_at = EXCLUDED.updated_at
		 RETURNING id, plan, tem, tna, tea, updated_at`,
		plan, rates.TEM, rates.TNA, rates.TEA, now).
		Scan(&pr.ID, &pr.Plan, &pr.Rates.TEM, &pr.Rates.TNA, &pr.Rates.TEA, &pr.UpdatedAt)
	if err != nil {
		return PlanRates{}, err
	}
	return pr, nil
}

var _ RepositoryPort = (*Repository)(nil)
