package sales

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solventa-app/solventa/internal/collections"
	"github.com/solventa-app/solventa/internal/shared"
)

type memorySalesRepo struct {
	sales        map[int64]Sale
	installments map[int64][]collections.Installment
	nextID       int64
}

func newMemorySalesRepo() *memorySalesRepo {
	return &memorySalesRepo{
		sales:        make(map[int64]Sale),
		installments: make(map[int64][]collections.Installment),
		nextID:       1,
	}
}

func (m *memorySalesRepo) ListSales(_ context.Context, filters ListFilters) ([]Row, int, error) {
	var out []Row
	for _, sale := range m.sales {
		if filters.SaleID != nil && sale.ID != *filters.SaleID {
			continue
		}
		if filters.Status != "" && sale.Status != filters.Status {
			continue
		}
		out = append(out, Row{Sale: sale})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (m *memorySalesRepo) GetSale(_ context.Context, id int64) (Sale, error) {
	sale, ok := m.sales[id]
	if !ok {
		return Sale{}, shared.ErrNotFound
	}
	return sale, nil
}

func (m *memorySalesRepo) CreateSale(_ context.Context, sale Sale, installments []collections.Installment) (Sale, error) {
	sale.ID = m.nextID
	m.nextID++
	for i := range installments {
		installments[i].SaleID = sale.ID
	}
	m.sales[sale.ID] = sale
	m.installments[sale.ID] = installments
	return sale, nil
}

func (m *memorySalesRepo) Transition(_ context.Context, id int64, status Status, reason string) error {
	sale, ok := m.sales[id]
	if !ok {
		return shared.ErrNotFound
	}
	if sale.Status != StatusActive {
		return ErrSaleNotActive
	}
	sale.Status = status
	sale.AnnulmentReason = reason
	m.sales[id] = sale
	return nil
}

var _ RepositoryPort = (*memorySalesRepo)(nil)

type stubLedger struct {
	summaries map[int64]collections.LatenessSummary
}

func (s *stubLedger) Summary(_ context.Context, saleID int64) (collections.LatenessSummary, error) {
	return s.summaries[saleID], nil
}

type stubRatings struct {
	clientRatings    map[int64]string
	guarantorRatings map[int64]string
}

func newStubRatings() *stubRatings {
	return &stubRatings{clientRatings: map[int64]string{}, guarantorRatings: map[int64]string{}}
}

func (s *stubRatings) SetClientRating(_ context.Context, id int64, rating string) error {
	s.clientRatings[id] = rating
	return nil
}

func (s *stubRatings) SetGuarantorRating(_ context.Context, id int64, rating string) error {
	s.guarantorRatings[id] = rating
	return nil
}

func validInput() NewSaleInput {
	return NewSaleInput{
		ClientID:          1,
		ProductID:         2,
		CoordinatorID:     3,
		SalespersonID:     4,
		CollectorID:       5,
		FirstDueDate:      time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Principal:         1000,
		InstallmentCount:  10,
		InstallmentAmount: 130,
		TEM:               10,
		Plan:              "monthly",
	}
}

func newTestService(repo *memorySalesRepo, ledger *stubLedger, ratings *stubRatings) *Service {
	if ledger == nil {
		ledger = &stubLedger{summaries: map[int64]collections.LatenessSummary{}}
	}
	if ratings == nil {
		ratings = newStubRatings()
	}
	return NewService(repo, ledger, ratings, nil)
}

func TestCreateSaleDerivesTotalsAndSchedule(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySalesRepo()
	svc := newTestService(repo, nil, nil)

	sale, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	require.Equal(t, StatusActive, sale.Status)
	require.Equal(t, 1300.0, sale.TotalFinanced)
	require.Equal(t, 30.0, sale.InterestPct)
	require.Equal(t, 120.0, sale.Rates.TNA)

	installments := repo.installments[sale.ID]
	require.Len(t, installments, 10)
	require.Equal(t, sale.ID, installments[0].SaleID)
	require.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), installments[0].DueDate)
	require.Equal(t, time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC), installments[9].DueDate)
}

func TestCreateSaleValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemorySalesRepo(), nil, nil)

	cases := []struct {
		name   string
		mutate func(*NewSaleInput)
	}{
		{"missing client", func(in *NewSaleInput) { in.ClientID = 0 }},
		{"missing product", func(in *NewSaleInput) { in.ProductID = 0 }},
		{"missing collector", func(in *NewSaleInput) { in.CollectorID = 0 }},
		{"zero principal", func(in *NewSaleInput) { in.Principal = 0 }},
		{"zero count", func(in *NewSaleInput) { in.InstallmentCount = 0 }},
		{"zero amount", func(in *NewSaleInput) { in.InstallmentAmount = 0 }},
		{"bad plan", func(in *NewSaleInput) { in.Plan = "fortnightly" }},
		{"negative rate", func(in *NewSaleInput) { in.TEM = -1 }},
		{"no first due date", func(in *NewSaleInput) { in.FirstDueDate = time.Time{} }},
		{"financed below principal", func(in *NewSaleInput) { in.InstallmentAmount = 50 }},
		{"bad address", func(in *NewSaleInput) { in.CollectionAddress = "office" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := svc.Create(ctx, input)
			require.Error(t, err)
		})
	}
}

func TestListParsesSaleNumberSearch(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySalesRepo()
	svc := newTestService(repo, nil, nil)

	first, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Create(ctx, validInput())
	require.NoError(t, err)

	rows, total, err := svc.List(ctx, ListFilters{Search: "#1"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, first.ID, rows[0].ID)
}

func TestFinalizeRejectsUnpaidInstallments(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySalesRepo()
	ledger := &stubLedger{summaries: map[int64]collections.LatenessSummary{}}
	svc := newTestService(repo, ledger, nil)

	sale, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	ledger.summaries[sale.ID] = collections.LatenessSummary{AllPaid: false}

	err = svc.Finalize(ctx, FinalizeInput{SaleID: sale.ID})
	require.ErrorIs(t, err, ErrUnpaidInstallments)
	require.Equal(t, StatusActive, repo.sales[sale.ID].Status)
}

func TestFinalizePromptsForLateFees(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySalesRepo()
	ledger := &stubLedger{summaries: map[int64]collections.LatenessSummary{}}
	svc := newTestService(repo, ledger, nil)

	sale, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	ledger.summaries[sale.ID] = collections.LatenessSummary{AllPaid: true, HasLateOriginal: true, HasLateFeeLate: true}

	var pending *LateFeePendingError
	err = svc.Finalize(ctx, FinalizeInput{SaleID: sale.ID})
	require.ErrorAs(t, err, &pending)
	require.Equal(t, LateFeeGroupOriginal, pending.Group)

	err = svc.Finalize(ctx, FinalizeInput{SaleID: sale.ID, SkipOriginalLateFee: true})
	require.ErrorAs(t, err, &pending)
	require.Equal(t, LateFeeGroupLateFee, pending.Group)

	err = svc.Finalize(ctx, FinalizeInput{SaleID: sale.ID, SkipOriginalLateFee: true, SkipLateFeeLateFee: true})
	require.NoError(t, err)
	require.Equal(t, StatusFinalized, repo.sales[sale.ID].Status)
}

func TestFinalizeAllPaidNoLateness(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySalesRepo()
	ledger := &stubLedger{summaries: map[int64]collections.LatenessSummary{}}
	svc := newTestService(repo, ledger, nil)

	sale, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	ledger.summaries[sale.ID] = collections.LatenessSummary{AllPaid: true}

	require.NoError(t, svc.Finalize(ctx, FinalizeInput{SaleID: sale.ID}))
	require.Equal(t, StatusFinalized, repo.sales[sale.ID].Status)

	err = svc.Finalize(ctx, FinalizeInput{SaleID: sale.ID})
	require.ErrorIs(t, err, ErrSaleNotActive)
}

func TestAnnulRequiresReasonAndActiveSale(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySalesRepo()
	ledger := &stubLedger{summaries: map[int64]collections.LatenessSummary{}}
	svc := newTestService(repo, ledger, nil)

	sale, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	err = svc.Annul(ctx, sale.ID, "   ")
	require.ErrorIs(t, err, ErrReasonRequired)

	require.NoError(t, svc.Annul(ctx, sale.ID, "duplicate entry"))
	require.Equal(t, StatusAnnulled, repo.sales[sale.ID].Status)
	require.Equal(t, "duplicate entry", repo.sales[sale.ID].AnnulmentReason)

	ledger.summaries[sale.ID] = collections.LatenessSummary{AllPaid: true}
	err = svc.Finalize(ctx, FinalizeInput{SaleID: sale.ID})
	require.ErrorIs(t, err, ErrSaleNotActive)
}

func TestAnnulFinalizedSaleRejected(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySalesRepo()
	ledger := &stubLedger{summaries: map[int64]collections.LatenessSummary{}}
	svc := newTestService(repo, ledger, nil)

	sale, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	ledger.summaries[sale.ID] = collections.LatenessSummary{AllPaid: true}
	require.NoError(t, svc.Finalize(ctx, FinalizeInput{SaleID: sale.ID}))

	err = svc.Annul(ctx, sale.ID, "mistake")
	require.ErrorIs(t, err, ErrSaleNotActive)
}

func TestRateParticipantsOnlyAfterFinalize(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySalesRepo()
	ledger := &stubLedger{summaries: map[int64]collections.LatenessSummary{}}
	ratings := newStubRatings()
	svc := newTestService(repo, ledger, ratings)

	input := validInput()
	guarantorID := int64(42)
	input.GuarantorID = &guarantorID
	sale, err := svc.Create(ctx, input)
	require.NoError(t, err)

	err = svc.RateParticipants(ctx, RatingInput{SaleID: sale.ID, ClientRating: "good"})
	require.ErrorIs(t, err, ErrSaleNotFinalized)

	ledger.summaries[sale.ID] = collections.LatenessSummary{AllPaid: true}
	require.NoError(t, svc.Finalize(ctx, FinalizeInput{SaleID: sale.ID}))

	err = svc.RateParticipants(ctx, RatingInput{SaleID: sale.ID, ClientRating: "stellar"})
	require.Error(t, err)

	err = svc.RateParticipants(ctx, RatingInput{SaleID: sale.ID, ClientRating: "good", GuarantorRating: "excellent"})
	require.NoError(t, err)
	require.Equal(t, "good", ratings.clientRatings[sale.ClientID])
	require.Equal(t, "excellent", ratings.guarantorRatings[guarantorID])
}
