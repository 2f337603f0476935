package collections

import (
	"context"
	"strconv"
	"time"

	"github.com/solventa-app/solventa/internal/observability"
	"github.com/solventa-app/solventa/internal/shared"
)

// RepositoryPort defines data access methods for the installment ledger.
type RepositoryPort interface {
	ListInstallments(ctx context.Context, saleID int64) ([]Installment, error)
	SaleIsActive(ctx context.Context, saleID int64) (bool, error)
	CreateInstallment(ctx context.Context, inst Installment) (Installment, error)
	// PersistPayment stores the payment row, its allocation entries and the
	// updated installment rows as one transaction.
	PersistPayment(ctx context.Context, input PaymentInput, changed []Installment, entries []AllocationEntry) (*Payment, error)
	ListPayments(ctx context.Context, saleID int64) ([]Payment, error)
	LastPaymentNotes(ctx context.Context, saleID int64) (string, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// Service handles payment collection business logic.
type Service struct {
	repo    RepositoryPort
	metrics *observability.Metrics
	audit   *shared.AuditLogger
}

// NewService builds Service instance. metrics and audit may be nil.
func NewService(repo RepositoryPort, metrics *observability.Metrics, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, metrics: metrics, audit: audit}
}

func (s *Service) recordAudit(ctx context.Context, log shared.AuditLog) {
	if s.audit == nil {
		return
	}
	// Best effort: an audit write failure must not roll back the collection.
	_ = s.audit.Record(ctx, log)
}

// Schedule returns the sale's installments in sequence order.
func (s *Service) Schedule(ctx context.Context, saleID int64) ([]Installment, error) {
	return s.repo.ListInstallments(ctx, saleID)
}

// Summary derives the sale's lateness flags and totals.
func (s *Service) Summary(ctx context.Context, saleID int64) (LatenessSummary, error) {
	installments, err := s.repo.ListInstallments(ctx, saleID)
	if err != nil {
		return LatenessSummary{}, err
	}
	return Summarize(installments), nil
}

// RegisterPayment records a receipt and distributes it across the sale's
// unpaid installments. The payment row, allocation entries and installment
// updates commit atomically; on storage failure nothing is applied.
func (s *Service) RegisterPayment(ctx context.Context, input PaymentInput) (*Payment, AllocationResult, error) {
	if input.SaleID == 0 {
		return nil, AllocationResult{}, shared.NewBusinessError("sale is required")
	}
	if input.Amount <= 0 {
		return nil, AllocationResult{}, shared.NewBusinessError("payment amount must be positive")
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	active, err := s.repo.SaleIsActive(ctx, input.SaleID)
	if err != nil {
		return nil, AllocationResult{}, err
	}
	if !active {
		return nil, AllocationResult{}, shared.NewBusinessError("payments can only be collected on active sales")
	}

	installments, err := s.repo.ListInstallments(ctx, input.SaleID)
	if err != nil {
		return nil, AllocationResult{}, err
	}

	result, err := Allocate(installments, input.Amount, input.Date)
	if err != nil {
		return nil, AllocationResult{}, err
	}

	changed := make([]Installment, 0, len(result.Applied))
	touched := make(map[int64]struct{}, len(result.Applied))
	for _, entry := range result.Applied {
		touched[entry.InstallmentID] = struct{}{}
	}
	for _, inst := range installments {
		if _, ok := touched[inst.ID]; ok {
			changed = append(changed, inst)
		}
	}

	payment, err := s.repo.PersistPayment(ctx, input, changed, result.Applied)
	if err != nil {
		return nil, AllocationResult{}, err
	}
	s.metrics.PaymentRecorded()
	s.recordAudit(ctx, shared.AuditLog{
		ActorID:  input.RecordedBy,
		Action:   "payment.recorded",
		Entity:   "sale",
		EntityID: strconv.FormatInt(input.SaleID, 10),
		Meta:     map[string]any{"amount": input.Amount, "receipt": input.Receipt},
	})
	return payment, result, nil
}

// AddLateFeeInstallment appends a surcharge installment after the current
// schedule. Only permitted while the sale is active.
func (s *Service) AddLateFeeInstallment(ctx context.Context, saleID int64, amount float64, due time.Time) (Installment, error) {
	active, err := s.repo.SaleIsActive(ctx, saleID)
	if err != nil {
		return Installment{}, err
	}
	if !active {
		return Installment{}, shared.NewBusinessError("late fees can only be added to active sales")
	}

	installments, err := s.repo.ListInstallments(ctx, saleID)
	if err != nil {
		return Installment{}, err
	}
	nextSeq := 1
	for _, inst := range installments {
		if inst.Sequence >= nextSeq {
			nextSeq = inst.Sequence + 1
		}
	}

	inst, err := NewLateFeeInstallment(saleID, nextSeq, amount, due)
	if err != nil {
		return Installment{}, err
	}
	return s.repo.CreateInstallment(ctx, inst)
}

// Payments lists recorded receipts for a sale, newest first.
func (s *Service) Payments(ctx context.Context, saleID int64) ([]Payment, error) {
	return s.repo.ListPayments(ctx, saleID)
}

// LastPaymentNotes returns the notes of the most recent payment that carried
// any, used to prefill the collection form.
func (s *Service) LastPaymentNotes(ctx context.Context, saleID int64) (string, error) {
	return s.repo.LastPaymentNotes(ctx, saleID)
}

// MarkOverdue flags unpaid installments whose due date has passed.
// Invoked by the scheduled overdue scan.
func (s *Service) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	return s.repo.MarkOverdue(ctx, asOf)
}
