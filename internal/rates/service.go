package rates

import (
	"context"

	"github.com/solventa-app/solventa/internal/shared"
)

// Service orchestrates rate configuration and conversion.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListPlanRates returns stored defaults for every plan.
func (s *Service) ListPlanRates(ctx context.Context) ([]PlanRates, error) {
	return s.repo.ListPlanRates(ctx)
}

// DefaultsFor returns the stored default rate set for a plan. A missing row
// is not an error: new installations start with all-zero rates.
func (s *Service) DefaultsFor(ctx context.Context, plan string) (RateSet, error) {
	if !ValidPlan(plan) {
		return RateSet{}, shared.NewBusinessError("unknown payment plan")
	}
	pr, err := s.repo.GetPlanRates(ctx, plan)
	if err == shared.ErrNotFound {
		return RateSet{}, nil
	}
	if err != nil {
		return RateSet{}, err
	}
	return pr.Rates, nil
}

// SetPlanRates validates and stores a default rate set, deriving the other
// two fields from the monthly periodic rate so the triple stays consistent.
func (s *Service) SetPlanRates(ctx context.Context, plan string, tem float64) (PlanRates, error) {
	if !ValidPlan(plan) {
		return PlanRates{}, shared.NewBusinessError("unknown payment plan")
	}
	set, err := FromTEM(tem)
	if err != nil {
		return PlanRates{}, err
	}
	return s.repo.UpsertPlanRates(ctx, plan, set)
}
