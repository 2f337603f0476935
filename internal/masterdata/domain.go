package masterdata

import (
	"context"
	"time"
)

// ListFilters represents standard list page filters.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	// Entity specific filters
	CategoryID    *int64
	PersonnelKind string
}

// Rating values assignable to clients and guarantors after a sale closes.
const (
	RatingExcellent     = "excellent"
	RatingGood          = "good"
	RatingRisky         = "risky"
	RatingUncollectible = "uncollectible"
)

// Ratings lists the allowed rating values in display order.
func Ratings() []string {
	return []string{RatingExcellent, RatingGood, RatingRisky, RatingUncollectible}
}

// ValidRating reports whether v is one of the enumerated rating values.
func ValidRating(v string) bool {
	switch v {
	case RatingExcellent, RatingGood, RatingRisky, RatingUncollectible:
		return true
	}
	return false
}

// Client represents a purchasing client.
type Client struct {
	ID            int64      `json:"id"`
	LastName      string     `json:"last_name"`
	FirstName     string     `json:"first_name"`
	DNI           string     `json:"dni"`
	BirthDate     *time.Time `json:"birth_date"`
	Occupation    string     `json:"occupation"`
	HomeAddress   string     `json:"home_address"`
	City          string     `json:"city"`
	Province      string     `json:"province"`
	WorkplaceName string     `json:"workplace_name"`
	WorkAddress   string     `json:"work_address"`
	Sex           string     `json:"sex"`
	MaritalStatus string     `json:"marital_status"`
	PersonalPhone string     `json:"personal_phone"`
	WorkPhone     string     `json:"work_phone"`
	Email         string     `json:"email"`
	Rating        string     `json:"rating"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// FullName renders "Last, First" for list pages and documents.
func (c Client) FullName() string {
	return joinName(c.LastName, c.FirstName)
}

// Guarantor represents a person backing a client's sale.
type Guarantor struct {
	ID            int64      `json:"id"`
	LastName      string     `json:"last_name"`
	FirstName     string     `json:"first_name"`
	DNI           string     `json:"dni"`
	BirthDate     *time.Time `json:"birth_date"`
	Occupation    string     `json:"occupation"`
	HomeAddress   string     `json:"home_address"`
	City          string     `json:"city"`
	Province      string     `json:"province"`
	WorkplaceName string     `json:"workplace_name"`
	WorkAddress   string     `json:"work_address"`
	Sex           string     `json:"sex"`
	MaritalStatus string     `json:"marital_status"`
	PersonalPhone string     `json:"personal_phone"`
	WorkPhone     string     `json:"work_phone"`
	Email         string     `json:"email"`
	Rating        string     `json:"rating"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// FullName renders "Last, First".
func (g Guarantor) FullName() string {
	return joinName(g.LastName, g.FirstName)
}

// Category represents a product category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product represents a financed good.
type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	CategoryID *int64    `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Personnel kinds mirror the three roles a sale references.
const (
	PersonnelCoordinator = "coordinator"
	PersonnelSalesperson = "salesperson"
	PersonnelCollector   = "collector"
)

// Personnel represents an employee assignable to sales.
type Personnel struct {
	ID            int64      `json:"id"`
	LastName      string     `json:"last_name"`
	FirstName     string     `json:"first_name"`
	DNI           string     `json:"dni"`
	BirthDate     *time.Time `json:"birth_date"`
	HomeAddress   string     `json:"home_address"`
	City          string     `json:"city"`
	Province      string     `json:"province"`
	Sex           string     `json:"sex"`
	MaritalStatus string     `json:"marital_status"`
	PersonalPhone string     `json:"personal_phone"`
	AltPhone      string     `json:"alt_phone"`
	Email         string     `json:"email"`
	CUIL          string     `json:"cuil"`
	HireDate      *time.Time `json:"hire_date"`
	Kind          string     `json:"kind"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// FullName renders "Last, First".
func (p Personnel) FullName() string {
	return joinName(p.LastName, p.FirstName)
}

func joinName(last, first string) string {
	switch {
	case last == "":
		return first
	case first == "":
		return last
	default:
		return last + ", " + first
	}
}

// Repository interface for master data operations.
type Repository interface {
	// Client operations
	ListClients(ctx context.Context, filters ListFilters) ([]Client, int, error)
	GetClient(ctx context.Context, id int64) (Client, error)
	CreateClient(ctx context.Context, client Client) (Client, error)
	UpdateClient(ctx context.Context, id int64, client Client) error
	SetClientRating(ctx context.Context, id int64, rating string) error

	// Guarantor operations
	ListGuarantors(ctx context.Context, filters ListFilters) ([]Guarantor, int, error)
	GetGuarantor(ctx context.Context, id int64) (Guarantor, error)
	CreateGuarantor(ctx context.Context, guarantor Guarantor) (Guarantor, error)
	UpdateGuarantor(ctx context.Context, id int64, guarantor Guarantor) error
	SetGuarantorRating(ctx context.Context, id int64, rating string) error

	// Category operations
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, category Category) (Category, error)

	// Product operations
	ListProducts(ctx context.Context, filters ListFilters) ([]Product, int, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	CreateProduct(ctx context.Context, product Product) (Product, error)
	UpdateProduct(ctx context.Context, id int64, product Product) error

	// Personnel operations
	ListPersonnel(ctx context.Context, filters ListFilters) ([]Personnel, int, error)
	GetPersonnel(ctx context.Context, id int64) (Personnel, error)
	CreatePersonnel(ctx context.Context, person Personnel) (Personnel, error)
	UpdatePersonnel(ctx context.Context, id int64, person Personnel) error
}
