package collections

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthlySchedule(t *testing.T, count int, amount float64, start time.Time) []Installment {
	t.Helper()
	installments, err := GenerateSchedule(1, count, amount, start, "monthly")
	require.NoError(t, err)
	for i := range installments {
		installments[i].ID = int64(i + 1)
	}
	return installments
}

func TestAllocateRejectsNonPositiveAmount(t *testing.T) {
	installments := monthlySchedule(t, 3, 100, date(2025, 1, 10))

	_, err := Allocate(installments, 0, date(2025, 1, 15))
	require.Error(t, err)

	_, err = Allocate(installments, -50, date(2025, 1, 15))
	require.Error(t, err)
}

func TestAllocateExactMatchPaysOneInstallment(t *testing.T) {
	installments := monthlySchedule(t, 3, 100, date(2025, 1, 10))

	result, err := Allocate(installments, 100, date(2025, 1, 10))
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	require.Equal(t, 0.0, result.Leftover)

	require.True(t, installments[0].Paid)
	require.Equal(t, 100.0, installments[0].AmountPaid)
	require.NotNil(t, installments[0].PaymentDate)
	require.False(t, installments[1].Paid)
	require.Equal(t, 0.0, installments[1].AmountPaid)
}

func TestAllocateOverpaymentSpillsToNext(t *testing.T) {
	installments := monthlySchedule(t, 3, 100, date(2025, 1, 10))

	result, err := Allocate(installments, 150, date(2025, 1, 15))
	require.NoError(t, err)
	require.Len(t, result.Applied, 2)
	require.Equal(t, 0.0, result.Leftover)

	require.True(t, installments[0].Paid)
	require.Equal(t, date(2025, 1, 15), *installments[0].PaymentDate)
	require.False(t, installments[1].Paid)
	require.Equal(t, 50.0, installments[1].AmountPaid)
	require.Nil(t, installments[1].PaymentDate)
}

func TestAllocateUnderpaymentLeavesPartial(t *testing.T) {
	installments := monthlySchedule(t, 2, 100, date(2025, 1, 10))

	result, err := Allocate(installments, 40, date(2025, 1, 10))
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)

	require.False(t, installments[0].Paid)
	require.Equal(t, 40.0, installments[0].AmountPaid)
	require.Nil(t, installments[0].PaymentDate)
}

func TestAllocateSkipsPaidInstallments(t *testing.T) {
	installments := monthlySchedule(t, 3, 100, date(2025, 1, 10))
	when := date(2025, 1, 5)
	installments[0].AmountPaid = 100
	installments[0].Paid = true
	installments[0].PaymentDate = &when

	result, err := Allocate(installments, 100, date(2025, 2, 1))
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	require.Equal(t, int64(2), result.Applied[0].InstallmentID)
	require.True(t, installments[1].Paid)
}

func TestAllocateExcessStaysUnapplied(t *testing.T) {
	installments := monthlySchedule(t, 2, 100, date(2025, 1, 10))

	result, err := Allocate(installments, 500, date(2025, 3, 1))
	require.NoError(t, err)
	require.Equal(t, 300.0, result.Leftover)
	for _, inst := range installments {
		require.True(t, inst.Paid)
		require.Equal(t, inst.OriginalAmount, inst.AmountPaid)
	}
}

func TestAllocateNeverOverpaysAnInstallment(t *testing.T) {
	installments := monthlySchedule(t, 4, 75.5, date(2025, 1, 10))

	_, err := Allocate(installments, 200, date(2025, 1, 10))
	require.NoError(t, err)
	for _, inst := range installments {
		require.LessOrEqual(t, inst.AmountPaid, inst.OriginalAmount+PaidTolerance)
	}
}

func TestAllocateSplitEquivalentToSingle(t *testing.T) {
	single := monthlySchedule(t, 3, 100, date(2025, 1, 10))
	split := monthlySchedule(t, 3, 100, date(2025, 1, 10))
	when := date(2025, 1, 20)

	_, err := Allocate(single, 250, when)
	require.NoError(t, err)

	for _, amount := range []float64{100, 100, 50} {
		_, err := Allocate(split, amount, when)
		require.NoError(t, err)
	}

	for i := range single {
		require.Equal(t, single[i].AmountPaid, split[i].AmountPaid, "installment %d", i+1)
		require.Equal(t, single[i].Paid, split[i].Paid, "installment %d", i+1)
	}
}

func TestAllocateToleranceMarksPaid(t *testing.T) {
	installments := monthlySchedule(t, 1, 100, date(2025, 1, 10))
	installments[0].AmountPaid = 100 - 5e-7

	result, err := Allocate(installments, 4e-7, date(2025, 1, 10))
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	require.True(t, installments[0].Paid)
}

// Scenario: 3 monthly installments of $100 starting 2025-01-10. $150 on
// 2025-01-15 fully pays installment 1 late and leaves $50 on installment 2;
// a further $50 on 2025-02-05 completes installment 2 on time.
func TestAllocateScenarioTwoPayments(t *testing.T) {
	installments := monthlySchedule(t, 3, 100, date(2025, 1, 10))
	require.Equal(t, date(2025, 1, 10), installments[0].DueDate)
	require.Equal(t, date(2025, 2, 10), installments[1].DueDate)
	require.Equal(t, date(2025, 3, 10), installments[2].DueDate)

	_, err := Allocate(installments, 150, date(2025, 1, 15))
	require.NoError(t, err)

	require.True(t, installments[0].Paid)
	require.Equal(t, date(2025, 1, 15), *installments[0].PaymentDate)
	require.Equal(t, StatusPaidLate, installments[0].Status(date(2025, 1, 20)))
	require.False(t, installments[1].Paid)
	require.Equal(t, 50.0, installments[1].AmountPaid)

	_, err = Allocate(installments, 50, date(2025, 2, 5))
	require.NoError(t, err)

	require.True(t, installments[1].Paid)
	require.Equal(t, date(2025, 2, 5), *installments[1].PaymentDate)
	require.Equal(t, StatusPaid, installments[1].Status(date(2025, 2, 20)))
	require.False(t, installments[2].Paid)
}
