package masterdata

import (
	"context"
	"strings"

	"github.com/solventa-app/solventa/internal/shared"
)

// Service interface for master data business logic.
type Service interface {
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

type service struct {
	repo Repository
}

// NewService creates the master data service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func normalizeFilters(filters ListFilters) ListFilters {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 0 {
		filters.Limit = 0
	}
	return filters
}

// Client operations

func (s *service) ListClients(ctx context.Context, filters ListFilters) ([]Client, int, error) {
	return s.repo.ListClients(ctx, normalizeFilters(filters))
}

func (s *service) GetClient(ctx context.Context, id int64) (Client, error) {
	return s.repo.GetClient(ctx, id)
}

func (s *service) CreateClient(ctx context.Context, client Client) (Client, error) {
	if err := validatePerson(client.LastName, client.FirstName, client.DNI); err != nil {
		return Client{}, err
	}
	return s.repo.CreateClient(ctx, client)
}

func (s *service) UpdateClient(ctx context.Context, id int64, client Client) error {
	if err := validatePerson(client.LastName, client.FirstName, client.DNI); err != nil {
		return err
	}
	return s.repo.UpdateClient(ctx, id, client)
}

func (s *service) SetClientRating(ctx context.Context, id int64, rating string) error {
	if !ValidRating(rating) {
		return shared.NewBusinessError("invalid rating value")
	}
	return s.repo.SetClientRating(ctx, id, rating)
}

// Guarantor operations

func (s *service) ListGuarantors(ctx context.Context, filters ListFilters) ([]Guarantor, int, error) {
	return s.repo.ListGuarantors(ctx, normalizeFilters(filters))
}

func (s *service) GetGuarantor(ctx context.Context, id int64) (Guarantor, error) {
	return s.repo.GetGuarantor(ctx, id)
}

func (s *service) CreateGuarantor(ctx context.Context, guarantor Guarantor) (Guarantor, error) {
	if err := validatePerson(guarantor.LastName, guarantor.FirstName, guarantor.DNI); err != nil {
		return Guarantor{}, err
	}
	return s.repo.CreateGuarantor(ctx, guarantor)
}

func (s *service) UpdateGuarantor(ctx context.Context, id int64, guarantor Guarantor) error {
	if err := validatePerson(guarantor.LastName, guarantor.FirstName, guarantor.DNI); err != nil {
		return err
	}
	return s.repo.UpdateGuarantor(ctx, id, guarantor)
}

func (s *service) SetGuarantorRating(ctx context.Context, id int64, rating string) error {
	if !ValidRating(rating) {
		return shared.NewBusinessError("invalid rating value")
	}
	return s.repo.SetGuarantorRating(ctx, id, rating)
}

// Category operations

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) CreateCategory(ctx context.Context, category Category) (Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return Category{}, shared.NewBusinessError("category name is required")
	}
	return s.repo.CreateCategory(ctx, category)
}

// Product operations

func (s *service) ListProducts(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	return s.repo.ListProducts(ctx, normalizeFilters(filters))
}

func (s *service) GetProduct(ctx context.Context, id int64) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *service) CreateProduct(ctx context.Context, product Product) (Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return Product{}, shared.NewBusinessError("product name is required")
	}
	return s.repo.CreateProduct(ctx, product)
}

func (s *service) UpdateProduct(ctx context.Context, id int64, product Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return shared.NewBusinessError("product name is required")
	}
	return s.repo.UpdateProduct(ctx, id, product)
}

// Personnel operations

func (s *service) ListPersonnel(ctx context.Context, filters ListFilters) ([]Personnel, int, error) {
	return s.repo.ListPersonnel(ctx, normalizeFilters(filters))
}

func (s *service) GetPersonnel(ctx context.Context, id int64) (Personnel, error) {
	return s.repo.GetPersonnel(ctx, id)
}

func (s *service) CreatePersonnel(ctx context.Context, person Personnel) (Personnel, error) {
	if err := validatePerson(person.LastName, person.FirstName, person.DNI); err != nil {
		return Personnel{}, err
	}
	if !validPersonnelKind(person.Kind) {
		return Personnel{}, shared.NewBusinessError("personnel kind must be coordinator, salesperson or collector")
	}
	return s.repo.CreatePersonnel(ctx, person)
}

func (s *service) UpdatePersonnel(ctx context.Context, id int64, person Personnel) error {
	if err := validatePerson(person.LastName, person.FirstName, person.DNI); err != nil {
		return err
	}
	if !validPersonnelKind(person.Kind) {
		return shared.NewBusinessError("personnel kind must be coordinator, salesperson or collector")
	}
	return s.repo.UpdatePersonnel(ctx, id, person)
}

func validatePerson(lastName, firstName, dni string) error {
	if strings.TrimSpace(lastName) == "" && strings.TrimSpace(firstName) == "" {
		return shared.NewBusinessError("name is required")
	}
	if strings.TrimSpace(dni) == "" {
		return shared.NewBusinessError("DNI is required")
	}
	return nil
}

func validPersonnelKind(kind string) bool {
	switch kind {
	case PersonnelCoordinator, PersonnelSalesperson, PersonnelCollector:
		return true
	}
	return false
}
