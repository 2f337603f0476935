package sales

import (
	"time"

	"github.com/solventa-app/solventa/internal/rates"
)

// Status is the lifecycle state of a sale. ACTIVE is the only state that
// permits mutation of financial terms; FINALIZED and ANNULLED are terminal.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusFinalized Status = "FINALIZED"
	StatusAnnulled  Status = "ANNULLED"
)

// Terminal reports whether no further lifecycle transition exists.
func (s Status) Terminal() bool {
	return s == StatusFinalized || s == StatusAnnulled
}

// Preferred collection addresses, chosen at sale entry.
const (
	AddressPersonal = "personal"
	AddressWork     = "work"
)

// Sale is one financed transaction: a client (optionally backed by a
// guarantor) buys a product on an installment plan handled by three
// personnel roles. Financial terms are immutable once the sale leaves
// ACTIVE; after finalizing only the participant ratings stay writable.
type Sale struct {
	ID                int64
	ClientID          int64
	GuarantorID       *int64
	ProductID         int64
	CoordinatorID     int64
	SalespersonID     int64
	CollectorID       int64
	Date              time.Time
	FirstDueDate      time.Time
	Principal         float64
	InstallmentCount  int
	InstallmentAmount float64
	// TotalFinanced is the PTF: InstallmentCount * InstallmentAmount.
	TotalFinanced     float64
	InterestPct       float64
	Rates             rates.RateSet
	Plan              string
	CollectionAddress string
	Notes             string
	Status            Status
	AnnulmentReason   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewSaleInput carries the terms entered at sale creation. Derived fields
// (total financed, interest percentage, rate set) are computed by the
// service, never accepted from the caller.
type NewSaleInput struct {
	ClientID          int64
	GuarantorID       *int64
	ProductID         int64
	CoordinatorID     int64
	SalespersonID     int64
	CollectorID       int64
	Date              time.Time
	FirstDueDate      time.Time
	Principal         float64
	InstallmentCount  int
	InstallmentAmount float64
	TEM               float64
	Plan              string
	CollectionAddress string
	Notes             string
}

// FinalizeInput carries the caller's explicit answers to the late-fee
// prompts. Each skip flag records that the user declined adding a late-fee
// installment for that group; finalization is refused until every group
// with late payments has been either covered or explicitly skipped.
type FinalizeInput struct {
	SaleID              int64
	SkipOriginalLateFee bool
	SkipLateFeeLateFee  bool
}

// RatingInput captures the post-finalization participant ratings.
type RatingInput struct {
	SaleID          int64
	ClientRating    string
	GuarantorRating string
}

// ListFilters narrows and pages the sales listing. Search matches the
// client's folded surname/DNI, or a specific sale when prefixed with '#'.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SaleID  *int64
	Status  Status
	OrderBy string
}

// Row is one sales-listing entry with the joined display names.
type Row struct {
	Sale
	ClientName  string
	ProductName string
}
