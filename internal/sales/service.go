package sales

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/solventa-app/solventa/internal/collections"
	"github.com/solventa-app/solventa/internal/masterdata"
	"github.com/solventa-app/solventa/internal/observability"
	"github.com/solventa-app/solventa/internal/rates"
	"github.com/solventa-app/solventa/internal/shared"
)

// Lifecycle guard rejections. Sentinels so handlers can branch on them.
var (
	ErrSaleNotActive      = shared.NewBusinessError("the sale is no longer active")
	ErrUnpaidInstallments = shared.NewBusinessError("the sale still has unpaid installments")
	ErrReasonRequired     = shared.NewBusinessError("an annulment reason is required")
	ErrSaleNotFinalized   = shared.NewBusinessError("ratings can only be captured on finalized sales")
)

// Late-fee groups referenced by LateFeePendingError.
const (
	LateFeeGroupOriginal = "original"
	LateFeeGroupLateFee  = "late_fee"
)

// LateFeePendingError rejects finalization because installments in the named
// group were paid late and the caller has not yet decided whether to add a
// late-fee installment for them.
type LateFeePendingError struct {
	Group string
}

func (e *LateFeePendingError) Error() string {
	if e.Group == LateFeeGroupLateFee {
		return "late-fee installments were paid late; add another late fee or skip it explicitly"
	}
	return "installments were paid late; add a late-fee installment or skip it explicitly"
}

// RepositoryPort defines the data access methods for sales.
type RepositoryPort interface {
	ListSales(ctx context.Context, filters ListFilters) ([]Row, int, error)
	GetSale(ctx context.Context, id int64) (Sale, error)
	// CreateSale stores the sale and its generated schedule in one transaction.
	CreateSale(ctx context.Context, sale Sale, installments []collections.Installment) (Sale, error)
	// Transition moves an ACTIVE sale to a terminal status. Returns
	// ErrSaleNotActive when the row was not in ACTIVE anymore.
	Transition(ctx context.Context, id int64, status Status, reason string) error
}

// LedgerPort is the slice of the collections service the lifecycle guard
// needs: the per-sale lateness summary.
type LedgerPort interface {
	Summary(ctx context.Context, saleID int64) (collections.LatenessSummary, error)
}

// RatingsPort captures participant ratings after finalization.
type RatingsPort interface {
	SetClientRating(ctx context.Context, id int64, rating string) error
	SetGuarantorRating(ctx context.Context, id int64, rating string) error
}

// Service handles sale entry and the lifecycle state machine.
type Service struct {
	repo    RepositoryPort
	ledger  LedgerPort
	ratings RatingsPort
	metrics *observability.Metrics
}

// NewService builds Service instance. metrics may be nil.
func NewService(repo RepositoryPort, ledger LedgerPort, ratings RatingsPort, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, ledger: ledger, ratings: ratings, metrics: metrics}
}

// List returns a page of sales. A search term starting with '#' looks up the
// sale by number; anything else matches the client's folded surname or DNI.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Row, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	term := strings.TrimSpace(filters.Search)
	if strings.HasPrefix(term, "#") {
		if id, err := strconv.ParseInt(strings.TrimPrefix(term, "#"), 10, 64); err == nil {
			filters.SaleID = &id
			filters.Search = ""
		}
	} else {
		filters.Search = shared.FoldSearchTerm(term)
	}
	return s.repo.ListSales(ctx, filters)
}

// Get loads one sale.
func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// Create validates the entered terms, derives the financed totals and rate
// set, generates the installment schedule and stores everything atomically.
func (s *Service) Create(ctx context.Context, input NewSaleInput) (Sale, error) {
	if input.ClientID == 0 {
		return Sale{}, shared.NewBusinessError("a client is required")
	}
	if input.ProductID == 0 {
		return Sale{}, shared.NewBusinessError("a product is required")
	}
	if input.CoordinatorID == 0 || input.SalespersonID == 0 || input.CollectorID == 0 {
		return Sale{}, shared.NewBusinessError("coordinator, salesperson and collector are required")
	}
	if input.Principal <= 0 {
		return Sale{}, shared.NewBusinessError("principal must be positive")
	}
	if input.InstallmentCount <= 0 {
		return Sale{}, shared.NewBusinessError("installment count must be positive")
	}
	if input.InstallmentAmount <= 0 {
		return Sale{}, shared.NewBusinessError("installment amount must be positive")
	}
	if !rates.ValidPlan(input.Plan) {
		return Sale{}, shared.NewBusinessError("payment plan must be daily, weekly or monthly")
	}
	if input.FirstDueDate.IsZero() {
		return Sale{}, shared.NewBusinessError("first due date is required")
	}
	switch input.CollectionAddress {
	case "", AddressPersonal, AddressWork:
	default:
		return Sale{}, shared.NewBusinessError("collection address must be personal or work")
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	rateSet, err := rates.FromTEM(input.TEM)
	if err != nil {
		return Sale{}, err
	}

	totalFinanced := float64(input.InstallmentCount) * input.InstallmentAmount
	if totalFinanced < input.Principal {
		return Sale{}, shared.NewBusinessError("total financed cannot be below the principal")
	}

	sale := Sale{
		ClientID:          input.ClientID,
		GuarantorID:       input.GuarantorID,
		ProductID:         input.ProductID,
		CoordinatorID:     input.CoordinatorID,
		SalespersonID:     input.SalespersonID,
		CollectorID:       input.CollectorID,
		Date:              input.Date,
		FirstDueDate:      input.FirstDueDate,
		Principal:         input.Principal,
		InstallmentCount:  input.InstallmentCount,
		InstallmentAmount: input.InstallmentAmount,
		TotalFinanced:     totalFinanced,
		InterestPct:       round2((totalFinanced - input.Principal) / input.Principal * 100),
		Rates:             rateSet,
		Plan:              input.Plan,
		CollectionAddress: input.CollectionAddress,
		Notes:             input.Notes,
		Status:            StatusActive,
	}

	installments, err := collections.GenerateSchedule(0, input.InstallmentCount, input.InstallmentAmount, input.FirstDueDate, input.Plan)
	if err != nil {
		return Sale{}, err
	}

	created, err := s.repo.CreateSale(ctx, sale, installments)
	if err != nil {
		return Sale{}, err
	}
	s.metrics.SaleEvent("created")
	return created, nil
}

// Finalize moves an ACTIVE sale to FINALIZED. Every installment must be
// paid, and each installment group with late payments must be explicitly
// skipped by the caller before the transition proceeds.
func (s *Service) Finalize(ctx context.Context, input FinalizeInput) error {
	sale, err := s.repo.GetSale(ctx, input.SaleID)
	if err != nil {
		return err
	}
	if sale.Status != StatusActive {
		return ErrSaleNotActive
	}

	summary, err := s.ledger.Summary(ctx, input.SaleID)
	if err != nil {
		return err
	}
	if !summary.AllPaid {
		return ErrUnpaidInstallments
	}
	if summary.HasLateOriginal && !input.SkipOriginalLateFee {
		return &LateFeePendingError{Group: LateFeeGroupOriginal}
	}
	if summary.HasLateFeeLate && !input.SkipLateFeeLateFee {
		return &LateFeePendingError{Group: LateFeeGroupLateFee}
	}

	if err := s.repo.Transition(ctx, input.SaleID, StatusFinalized, ""); err != nil {
		return err
	}
	s.metrics.SaleEvent("finalized")
	return nil
}

// Annul moves an ACTIVE sale to ANNULLED, capturing the mandatory reason.
func (s *Service) Annul(ctx context.Context, saleID int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		return err
	}
	if sale.Status != StatusActive {
		return ErrSaleNotActive
	}
	if err := s.repo.Transition(ctx, saleID, StatusAnnulled, reason); err != nil {
		return err
	}
	s.metrics.SaleEvent("annulled")
	return nil
}

// RateParticipants records the client's (and, when present, the guarantor's)
// rating for a finalized sale. The only mutation allowed past finalization.
func (s *Service) RateParticipants(ctx context.Context, input RatingInput) error {
	sale, err := s.repo.GetSale(ctx, input.SaleID)
	if err != nil {
		return err
	}
	if sale.Status != StatusFinalized {
		return ErrSaleNotFinalized
	}
	if input.ClientRating == "" {
		return shared.NewBusinessError("a client rating is required")
	}
	if !masterdata.ValidRating(input.ClientRating) {
		return shared.NewBusinessError(fmt.Sprintf("unknown rating %q", input.ClientRating))
	}
	if err := s.ratings.SetClientRating(ctx, sale.ClientID, input.ClientRating); err != nil {
		return err
	}
	if sale.GuarantorID != nil && input.GuarantorRating != "" {
		if !masterdata.ValidRating(input.GuarantorRating) {
			return shared.NewBusinessError(fmt.Sprintf("unknown rating %q", input.GuarantorRating))
		}
		return s.ratings.SetGuarantorRating(ctx, *sale.GuarantorID, input.GuarantorRating)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
