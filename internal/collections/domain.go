package collections

import "time"

// PaidTolerance absorbs float rounding when deciding whether an
// installment is fully covered.
const PaidTolerance = 1e-6

// InstallmentStatus enumerates the display status of one installment.
type InstallmentStatus string

const (
	StatusPaid     InstallmentStatus = "PAID"
	StatusPaidLate InstallmentStatus = "PAID_LATE"
	StatusOverdue  InstallmentStatus = "OVERDUE"
	StatusPending  InstallmentStatus = "PENDING"
)

// Installment is one scheduled obligation belonging to exactly one sale.
// Invariants: AmountPaid <= OriginalAmount (within tolerance); Paid is true
// iff AmountPaid covers OriginalAmount; PaymentDate is set only once paid.
type Installment struct {
	ID             int64
	SaleID         int64
	Sequence       int
	DueDate        time.Time
	OriginalAmount float64
	AmountPaid     float64
	Paid           bool
	PaymentDate    *time.Time
	LateFee        bool
	// Overdue is persisted by the scheduled scan; Status derives the same
	// condition on the fly for display.
	Overdue   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Remaining returns the unpaid balance, clamped at zero.
func (i Installment) Remaining() float64 {
	r := i.OriginalAmount - i.AmountPaid
	if r < 0 {
		return 0
	}
	return r
}

// Status classifies the installment relative to today.
func (i Installment) Status(today time.Time) InstallmentStatus {
	if i.Paid {
		if i.PaymentDate != nil && i.PaymentDate.After(i.DueDate) {
			return StatusPaidLate
		}
		return StatusPaid
	}
	if i.DueDate.Before(truncateDay(today)) {
		return StatusOverdue
	}
	return StatusPending
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Payment types recorded at collection time.
const (
	PaymentDownPayment = "DOWN_PAYMENT"
	PaymentFull        = "FULL_PAYMENT"
	PaymentRefinance   = "REFINANCE"
)

// Payment is one recorded money receipt against a sale. It carries the
// originally entered amount regardless of how many installments the
// allocator split it across. Immutable once created.
type Payment struct {
	ID         int64
	SaleID     int64
	Date       time.Time
	Amount     float64
	Type       string
	Method     string
	Place      string
	Receipt    string
	Notes      string
	RecordedBy int64
	CreatedAt  time.Time
}

// PaymentInput carries data to record a payment.
type PaymentInput struct {
	SaleID     int64
	Date       time.Time
	Amount     float64
	Type       string
	Method     string
	Place      string
	Receipt    string
	Notes      string
	RecordedBy int64
}

// Allocation is one ledger entry tying part of a payment to an installment.
type Allocation struct {
	ID            int64
	PaymentID     int64
	InstallmentID int64
	Amount        float64
}

// LatenessSummary aggregates late-payment flags per installment group.
// The two flags gate whether finalizing a sale should first suggest a
// late-fee installment for that group.
type LatenessSummary struct {
	HasLateOriginal bool
	HasLateFeeLate  bool
	AllPaid         bool
	TotalDue        float64
	TotalPaid       float64
}

// Summarize derives the per-sale lateness flags from its installments.
func Summarize(installments []Installment) LatenessSummary {
	summary := LatenessSummary{AllPaid: true}
	for _, inst := range installments {
		summary.TotalDue += inst.OriginalAmount
		summary.TotalPaid += inst.AmountPaid
		if !inst.Paid {
			summary.AllPaid = false
			continue
		}
		if inst.PaymentDate != nil && inst.PaymentDate.After(inst.DueDate) {
			if inst.LateFee {
				summary.HasLateFeeLate = true
			} else {
				summary.HasLateOriginal = true
			}
		}
	}
	return summary
}
