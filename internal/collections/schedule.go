package collections

import (
	"time"

	"github.com/solventa-app/solventa/internal/rates"
	"github.com/solventa-app/solventa/internal/shared"
)

// GenerateSchedule materializes the installment rows for a new sale:
// N installments numbered 1..N with due date for installment i at
// start + (i-1) frequency steps, nothing paid yet.
func GenerateSchedule(saleID int64, count int, amount float64, start time.Time, plan string) ([]Installment, error) {
	if count <= 0 {
		return nil, shared.NewBusinessError("installment count must be positive")
	}
	if amount <= 0 {
		return nil, shared.NewBusinessError("installment amount must be positive")
	}
	if !rates.ValidPlan(plan) {
		return nil, shared.NewBusinessError("unknown payment plan")
	}

	installments := make([]Installment, count)
	for i := 0; i < count; i++ {
		installments[i] = Installment{
			SaleID:         saleID,
			Sequence:       i + 1,
			DueDate:        dueDate(start, plan, i),
			OriginalAmount: amount,
		}
	}
	return installments, nil
}

func dueDate(start time.Time, plan string, step int) time.Time {
	switch plan {
	case rates.PlanDaily:
		return start.AddDate(0, 0, step)
	case rates.PlanWeekly:
		return start.AddDate(0, 0, 7*step)
	default:
		return addMonths(start, step)
	}
}

// addMonths steps by calendar months, clamping to the last day of the target
// month instead of spilling into the next one: Jan 31 + 1 month is Feb 28
// (or Feb 29 in a leap year), not Mar 3.
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) - 1 + months
	y := year + m/12
	m %= 12
	if m < 0 {
		m += 12
		y--
	}
	target := time.Month(m + 1)
	if last := daysIn(y, target); day > last {
		day = last
	}
	return time.Date(y, target, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

// NewLateFeeInstallment builds a supplementary installment covering a late
// surcharge. Amount and due date are operator-specified, the sequence
// continues after the existing schedule.
func NewLateFeeInstallment(saleID int64, nextSequence int, amount float64, due time.Time) (Installment, error) {
	if amount <= 0 {
		return Installment{}, shared.NewBusinessError("late fee amount must be positive")
	}
	if nextSequence <= 0 {
		return Installment{}, shared.NewBusinessError("invalid installment sequence")
	}
	return Installment{
		SaleID:         saleID,
		Sequence:       nextSequence,
		DueDate:        due,
		OriginalAmount: amount,
		LateFee:        true,
	}, nil
}
