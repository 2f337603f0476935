package collections

import (
	"sort"
	"time"

	"github.com/solventa-app/solventa/internal/shared"
)

// AllocationEntry records how much of one payment landed on one installment.
type AllocationEntry struct {
	InstallmentID int64
	Sequence      int
	Amount        float64
}

// AllocationResult is the outcome of distributing one payment.
type AllocationResult struct {
	Applied  []AllocationEntry
	Leftover float64
}

// Allocate distributes a payment amount across the sale's unpaid
// installments in ascending sequence order, mutating the slice in place.
// Each installment absorbs at most its remaining balance; an installment
// whose balance reaches zero (within PaidTolerance) is marked paid with the
// payment's date. Any amount left after the last unpaid installment stays
// unapplied; callers surface the leftover, no credit record is created.
func Allocate(installments []Installment, amount float64, paidAt time.Time) (AllocationResult, error) {
	if amount <= 0 {
		return AllocationResult{}, shared.NewBusinessError("payment amount must be positive")
	}

	sort.Slice(installments, func(a, b int) bool {
		return installments[a].Sequence < installments[b].Sequence
	})

	result := AllocationResult{Leftover: amount}
	for idx := range installments {
		if result.Leftover <= 0 {
			break
		}
		inst := &installments[idx]
		if inst.Paid {
			continue
		}
		remaining := inst.Remaining()
		if remaining <= 0 {
			continue
		}
		applied := remaining
		if result.Leftover < applied {
			applied = result.Leftover
		}
		inst.AmountPaid += applied
		result.Leftover -= applied
		if inst.AmountPaid >= inst.OriginalAmount-PaidTolerance {
			inst.Paid = true
			when := paidAt
			inst.PaymentDate = &when
		}
		result.Applied = append(result.Applied, AllocationEntry{
			InstallmentID: inst.ID,
			Sequence:      inst.Sequence,
			Amount:        applied,
		})
	}
	return result, nil
}
