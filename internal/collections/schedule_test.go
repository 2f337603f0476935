package collections

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateScheduleMonthly(t *testing.T) {
	start := date(2025, 1, 10)
	installments, err := GenerateSchedule(7, 12, 250, start, "monthly")
	require.NoError(t, err)
	require.Len(t, installments, 12)

	for i, inst := range installments {
		require.Equal(t, int64(7), inst.SaleID)
		require.Equal(t, i+1, inst.Sequence)
		require.Equal(t, start.AddDate(0, i, 0), inst.DueDate)
		require.Equal(t, 250.0, inst.OriginalAmount)
		require.Equal(t, 0.0, inst.AmountPaid)
		require.False(t, inst.Paid)
		require.False(t, inst.LateFee)
		if i > 0 {
			require.True(t, inst.DueDate.After(installments[i-1].DueDate))
		}
	}
}

func TestGenerateScheduleMonthlyClampsMonthEnd(t *testing.T) {
	installments, err := GenerateSchedule(1, 4, 100, date(2025, 1, 31), "monthly")
	require.NoError(t, err)
	require.Equal(t, date(2025, 1, 31), installments[0].DueDate)
	require.Equal(t, date(2025, 2, 28), installments[1].DueDate)
	require.Equal(t, date(2025, 3, 31), installments[2].DueDate)
	require.Equal(t, date(2025, 4, 30), installments[3].DueDate)

	leap, err := GenerateSchedule(1, 2, 100, date(2024, 1, 31), "monthly")
	require.NoError(t, err)
	require.Equal(t, date(2024, 2, 29), leap[1].DueDate)
}

func TestGenerateScheduleWeekly(t *testing.T) {
	start := date(2025, 3, 3)
	installments, err := GenerateSchedule(1, 4, 50, start, "weekly")
	require.NoError(t, err)
	require.Equal(t, date(2025, 3, 3), installments[0].DueDate)
	require.Equal(t, date(2025, 3, 10), installments[1].DueDate)
	require.Equal(t, date(2025, 3, 24), installments[3].DueDate)
}

func TestGenerateScheduleDaily(t *testing.T) {
	start := date(2025, 6, 1)
	installments, err := GenerateSchedule(1, 3, 10, start, "daily")
	require.NoError(t, err)
	require.Equal(t, date(2025, 6, 1), installments[0].DueDate)
	require.Equal(t, date(2025, 6, 2), installments[1].DueDate)
	require.Equal(t, date(2025, 6, 3), installments[2].DueDate)
}

func TestGenerateScheduleRejectsInvalidInputs(t *testing.T) {
	start := time.Now()

	_, err := GenerateSchedule(1, 0, 100, start, "monthly")
	require.Error(t, err)

	_, err = GenerateSchedule(1, -2, 100, start, "monthly")
	require.Error(t, err)

	_, err = GenerateSchedule(1, 3, 0, start, "monthly")
	require.Error(t, err)

	_, err = GenerateSchedule(1, 3, 100, start, "fortnightly")
	require.Error(t, err)
}

func TestNewLateFeeInstallment(t *testing.T) {
	due := date(2025, 4, 1)
	inst, err := NewLateFeeInstallment(9, 13, 35, due)
	require.NoError(t, err)
	require.True(t, inst.LateFee)
	require.Equal(t, 13, inst.Sequence)
	require.Equal(t, 35.0, inst.OriginalAmount)
	require.Equal(t, due, inst.DueDate)

	_, err = NewLateFeeInstallment(9, 13, 0, due)
	require.Error(t, err)
}

func TestInstallmentStatusClassification(t *testing.T) {
	due := date(2025, 1, 10)

	onTime := due
	paidOnDue := Installment{DueDate: due, OriginalAmount: 100, AmountPaid: 100, Paid: true, PaymentDate: &onTime}
	require.Equal(t, StatusPaid, paidOnDue.Status(date(2025, 2, 1)))

	dayAfter := due.AddDate(0, 0, 1)
	paidLate := Installment{DueDate: due, OriginalAmount: 100, AmountPaid: 100, Paid: true, PaymentDate: &dayAfter}
	require.Equal(t, StatusPaidLate, paidLate.Status(date(2025, 2, 1)))

	unpaidPast := Installment{DueDate: due, OriginalAmount: 100}
	require.Equal(t, StatusOverdue, unpaidPast.Status(date(2025, 1, 11)))

	unpaidFuture := Installment{DueDate: due, OriginalAmount: 100}
	require.Equal(t, StatusPending, unpaidFuture.Status(date(2025, 1, 9)))
	require.Equal(t, StatusPending, unpaidFuture.Status(date(2025, 1, 10)))
}

func TestSummarizeFlags(t *testing.T) {
	due := date(2025, 1, 10)
	late := due.AddDate(0, 0, 3)
	onTime := due

	installments := []Installment{
		{Sequence: 1, DueDate: due, OriginalAmount: 100, AmountPaid: 100, Paid: true, PaymentDate: &late},
		{Sequence: 2, DueDate: due.AddDate(0, 1, 0), OriginalAmount: 100, AmountPaid: 100, Paid: true, PaymentDate: &onTime},
		{Sequence: 3, DueDate: due.AddDate(0, 2, 0), OriginalAmount: 50, LateFee: true},
	}

	summary := Summarize(installments)
	require.True(t, summary.HasLateOriginal)
	require.False(t, summary.HasLateFeeLate)
	require.False(t, summary.AllPaid)
	require.Equal(t, 250.0, summary.TotalDue)
	require.Equal(t, 200.0, summary.TotalPaid)

	lateFeePaidLate := late.AddDate(0, 2, 0)
	installments[2].AmountPaid = 50
	installments[2].Paid = true
	installments[2].PaymentDate = &lateFeePaidLate

	summary = Summarize(installments)
	require.True(t, summary.HasLateFeeLate)
	require.True(t, summary.AllPaid)
}
