package collections

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solventa-app/solventa/internal/shared"
)

type memoryLedgerRepo struct {
	installments map[int64]Installment
	payments     map[int64]Payment
	allocations  []Allocation
	saleStatus   map[int64]string

	nextInstallmentID int64
	nextPaymentID     int64
	nextAllocationID  int64
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{
		installments:      make(map[int64]Installment),
		payments:          make(map[int64]Payment),
		saleStatus:        make(map[int64]string),
		nextInstallmentID: 1,
		nextPaymentID:     1,
		nextAllocationID:  1,
	}
}

func (m *memoryLedgerRepo) seedSale(saleID int64, status string, installments []Installment) {
	m.saleStatus[saleID] = status
	for _, inst := range installments {
		inst.ID = m.nextInstallmentID
		m.nextInstallmentID++
		m.installments[inst.ID] = inst
	}
}

func (m *memoryLedgerRepo) ListInstallments(_ context.Context, saleID int64) ([]Installment, error) {
	var out []Installment
	for _, inst := range m.installments {
		if inst.SaleID == saleID {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (m *memoryLedgerRepo) SaleIsActive(_ context.Context, saleID int64) (bool, error) {
	status, ok := m.saleStatus[saleID]
	if !ok {
		return false, shared.ErrNotFound
	}
	return status == "ACTIVE", nil
}

func (m *memoryLedgerRepo) CreateInstallment(_ context.Context, inst Installment) (Installment, error) {
	inst.ID = m.nextInstallmentID
	m.nextInstallmentID++
	m.installments[inst.ID] = inst
	return inst, nil
}

func (m *memoryLedgerRepo) PersistPayment(_ context.Context, input PaymentInput, changed []Installment, entries []AllocationEntry) (*Payment, error) {
	payment := Payment{
		ID:         m.nextPaymentID,
		SaleID:     input.SaleID,
		Date:       input.Date,
		Amount:     input.Amount,
		Type:       input.Type,
		Method:     input.Method,
		Place:      input.Place,
		Receipt:    input.Receipt,
		Notes:      input.Notes,
		RecordedBy: input.RecordedBy,
		CreatedAt:  time.Now(),
	}
	m.nextPaymentID++
	m.payments[payment.ID] = payment

	for _, entry := range entries {
		m.allocations = append(m.allocations, Allocation{
			ID:            m.nextAllocationID,
			PaymentID:     payment.ID,
			InstallmentID: entry.InstallmentID,
			Amount:        entry.Amount,
		})
		m.nextAllocationID++
	}
	for _, inst := range changed {
		stored, ok := m.installments[inst.ID]
		if !ok {
			return nil, shared.ErrNotFound
		}
		stored.AmountPaid = inst.AmountPaid
		stored.Paid = inst.Paid
		stored.PaymentDate = inst.PaymentDate
		m.installments[inst.ID] = stored
	}
	return &payment, nil
}

func (m *memoryLedgerRepo) ListPayments(_ context.Context, saleID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range m.payments {
		if p.SaleID == saleID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memoryLedgerRepo) LastPaymentNotes(_ context.Context, saleID int64) (string, error) {
	payments, _ := m.ListPayments(context.Background(), saleID)
	for _, p := range payments {
		if p.Notes != "" {
			return p.Notes, nil
		}
	}
	return "", nil
}

func (m *memoryLedgerRepo) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	var count int64
	for id, inst := range m.installments {
		if m.saleStatus[inst.SaleID] != "ACTIVE" || inst.Paid || inst.Overdue {
			continue
		}
		if inst.DueDate.Before(asOf) {
			inst.Overdue = true
			m.installments[id] = inst
			count++
		}
	}
	return count, nil
}

var _ RepositoryPort = (*memoryLedgerRepo)(nil)

func seedActiveSale(t *testing.T, repo *memoryLedgerRepo, saleID int64, count int, amount float64, start time.Time) {
	t.Helper()
	installments, err := GenerateSchedule(saleID, count, amount, start, "monthly")
	require.NoError(t, err)
	repo.seedSale(saleID, "ACTIVE", installments)
}

func TestRegisterPaymentPersistsReceiptAndAllocations(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	seedActiveSale(t, repo, 1, 3, 100, date(2025, 1, 10))
	svc := NewService(repo, nil, nil)

	payment, result, err := svc.RegisterPayment(ctx, PaymentInput{
		SaleID:     1,
		Date:       date(2025, 1, 15),
		Amount:     150,
		Type:       PaymentFull,
		Method:     "cash",
		Notes:      "first visit",
		RecordedBy: 7,
	})
	require.NoError(t, err)
	require.NotNil(t, payment)
	require.Equal(t, 150.0, payment.Amount)
	require.Equal(t, int64(7), payment.RecordedBy)
	require.Len(t, result.Applied, 2)
	require.Equal(t, 0.0, result.Leftover)
	require.Len(t, repo.allocations, 2)

	installments, err := svc.Schedule(ctx, 1)
	require.NoError(t, err)
	require.True(t, installments[0].Paid)
	require.Equal(t, date(2025, 1, 15), *installments[0].PaymentDate)
	require.False(t, installments[1].Paid)
	require.Equal(t, 50.0, installments[1].AmountPaid)

	notes, err := svc.LastPaymentNotes(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "first visit", notes)
}

func TestLastPaymentNotesSkipsEmptyNotes(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	seedActiveSale(t, repo, 1, 3, 100, date(2025, 1, 10))
	svc := NewService(repo, nil, nil)

	_, _, err := svc.RegisterPayment(ctx, PaymentInput{
		SaleID: 1, Date: date(2025, 1, 15), Amount: 50, Type: PaymentFull, Notes: "first visit",
	})
	require.NoError(t, err)
	_, _, err = svc.RegisterPayment(ctx, PaymentInput{
		SaleID: 1, Date: date(2025, 1, 20), Amount: 50, Type: PaymentFull,
	})
	require.NoError(t, err)

	notes, err := svc.LastPaymentNotes(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "first visit", notes)
}

func TestRegisterPaymentRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	seedActiveSale(t, repo, 1, 2, 100, date(2025, 1, 10))
	svc := NewService(repo, nil, nil)

	_, _, err := svc.RegisterPayment(ctx, PaymentInput{SaleID: 1, Amount: 0})
	require.Error(t, err)
	require.Empty(t, repo.payments)
}

func TestRegisterPaymentRejectsInactiveSale(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	installments, err := GenerateSchedule(2, 2, 100, date(2025, 1, 10), "monthly")
	require.NoError(t, err)
	repo.seedSale(2, "FINALIZED", installments)
	svc := NewService(repo, nil, nil)

	_, _, err = svc.RegisterPayment(ctx, PaymentInput{SaleID: 2, Amount: 100, Date: date(2025, 1, 10)})
	require.Error(t, err)
	require.Empty(t, repo.payments)
}

func TestRegisterPaymentUnknownSale(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil, nil)

	_, _, err := svc.RegisterPayment(ctx, PaymentInput{SaleID: 99, Amount: 100, Date: date(2025, 1, 10)})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRegisterPaymentReportsLeftover(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	seedActiveSale(t, repo, 1, 1, 100, date(2025, 1, 10))
	svc := NewService(repo, nil, nil)

	_, result, err := svc.RegisterPayment(ctx, PaymentInput{SaleID: 1, Amount: 130, Date: date(2025, 1, 10)})
	require.NoError(t, err)
	require.InDelta(t, 30.0, result.Leftover, PaidTolerance)

	payments, err := svc.Payments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, 130.0, payments[0].Amount)
}

func TestAddLateFeeInstallmentAppendsAfterSchedule(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	seedActiveSale(t, repo, 1, 3, 100, date(2025, 1, 10))
	svc := NewService(repo, nil, nil)

	inst, err := svc.AddLateFeeInstallment(ctx, 1, 25, date(2025, 4, 10))
	require.NoError(t, err)
	require.Equal(t, 4, inst.Sequence)
	require.True(t, inst.LateFee)

	installments, err := svc.Schedule(ctx, 1)
	require.NoError(t, err)
	require.Len(t, installments, 4)
}

func TestAddLateFeeInstallmentRejectsInactiveSale(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	installments, err := GenerateSchedule(3, 2, 100, date(2025, 1, 10), "monthly")
	require.NoError(t, err)
	repo.seedSale(3, "ANNULLED", installments)
	svc := NewService(repo, nil, nil)

	_, err = svc.AddLateFeeInstallment(ctx, 3, 25, date(2025, 4, 10))
	require.Error(t, err)
}

func TestSummaryAfterLatePayment(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	seedActiveSale(t, repo, 1, 2, 100, date(2025, 1, 10))
	svc := NewService(repo, nil, nil)

	_, _, err := svc.RegisterPayment(ctx, PaymentInput{SaleID: 1, Amount: 100, Date: date(2025, 1, 20)})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	require.True(t, summary.HasLateOriginal)
	require.False(t, summary.AllPaid)
	require.Equal(t, 100.0, summary.TotalPaid)
}

func TestMarkOverdueFlagsOnlyActiveUnpaid(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	seedActiveSale(t, repo, 1, 2, 100, date(2025, 1, 10))
	finalized, err := GenerateSchedule(2, 1, 100, date(2025, 1, 10), "monthly")
	require.NoError(t, err)
	repo.seedSale(2, "FINALIZED", finalized)
	svc := NewService(repo, nil, nil)

	count, err := svc.MarkOverdue(ctx, date(2025, 1, 20))
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	installments, err := svc.Schedule(ctx, 1)
	require.NoError(t, err)
	require.True(t, installments[0].Overdue)
	require.False(t, installments[1].Overdue)

	count, err = svc.MarkOverdue(ctx, date(2025, 1, 20))
	require.NoError(t, err)
	require.Zero(t, count)
}
