package masterdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solventa-app/solventa/internal/shared"
)

type memoryRepo struct {
	clients    map[int64]Client
	guarantors map[int64]Guarantor
	categories map[int64]Category
	products   map[int64]Product
	personnel  map[int64]Personnel
	nextID     int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		clients:    map[int64]Client{},
		guarantors: map[int64]Guarantor{},
		categories: map[int64]Category{},
		products:   map[int64]Product{},
		personnel:  map[int64]Personnel{},
	}
}

func (m *memoryRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryRepo) ListClients(_ context.Context, _ ListFilters) ([]Client, int, error) {
	out := make([]Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memoryRepo) GetClient(_ context.Context, id int64) (Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return Client{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) CreateClient(_ context.Context, client Client) (Client, error) {
	for _, existing := range m.clients {
		if existing.DNI == client.DNI {
			return Client{}, shared.ErrDuplicate
		}
	}
	client.ID = m.id()
	m.clients[client.ID] = client
	return client, nil
}

func (m *memoryRepo) UpdateClient(_ context.Context, id int64, client Client) error {
	if _, ok := m.clients[id]; !ok {
		return shared.ErrNotFound
	}
	client.ID = id
	m.clients[id] = client
	return nil
}

func (m *memoryRepo) SetClientRating(_ context.Context, id int64, rating string) error {
	c, ok := m.clients[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.Rating = rating
	m.clients[id] = c
	return nil
}

func (m *memoryRepo) ListGuarantors(_ context.Context, _ ListFilters) ([]Guarantor, int, error) {
	out := make([]Guarantor, 0, len(m.guarantors))
	for _, g := range m.guarantors {
		out = append(out, g)
	}
	return out, len(out), nil
}

func (m *memoryRepo) GetGuarantor(_ context.Context, id int64) (Guarantor, error) {
	g, ok := m.guarantors[id]
	if !ok {
		return Guarantor{}, shared.ErrNotFound
	}
	return g, nil
}

func (m *memoryRepo) CreateGuarantor(_ context.Context, guarantor Guarantor) (Guarantor, error) {
	guarantor.ID = m.id()
	m.guarantors[guarantor.ID] = guarantor
	return guarantor, nil
}

func (m *memoryRepo) UpdateGuarantor(_ context.Context, id int64, guarantor Guarantor) error {
	if _, ok := m.guarantors[id]; !ok {
		return shared.ErrNotFound
	}
	guarantor.ID = id
	m.guarantors[id] = guarantor
	return nil
}

func (m *memoryRepo) SetGuarantorRating(_ context.Context, id int64, rating string) error {
	g, ok := m.guarantors[id]
	if !ok {
		return shared.ErrNotFound
	}
	g.Rating = rating
	m.guarantors[id] = g
	return nil
}

func (m *memoryRepo) ListCategories(_ context.Context) ([]Category, error) {
	out := make([]Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryRepo) CreateCategory(_ context.Context, category Category) (Category, error) {
	category.ID = m.id()
	m.categories[category.ID] = category
	return category, nil
}

func (m *memoryRepo) ListProducts(_ context.Context, _ ListFilters) ([]Product, int, error) {
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memoryRepo) GetProduct(_ context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) CreateProduct(_ context.Context, product Product) (Product, error) {
	product.ID = m.id()
	m.products[product.ID] = product
	return product, nil
}

func (m *memoryRepo) UpdateProduct(_ context.Context, id int64, product Product) error {
	if _, ok := m.products[id]; !ok {
		return shared.ErrNotFound
	}
	product.ID = id
	m.products[id] = product
	return nil
}

func (m *memoryRepo) ListPersonnel(_ context.Context, filters ListFilters) ([]Personnel, int, error) {
	out := make([]Personnel, 0, len(m.personnel))
	for _, p := range m.personnel {
		if filters.PersonnelKind != "" && p.Kind != filters.PersonnelKind {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memoryRepo) GetPersonnel(_ context.Context, id int64) (Personnel, error) {
	p, ok := m.personnel[id]
	if !ok {
		return Personnel{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) CreatePersonnel(_ context.Context, person Personnel) (Personnel, error) {
	person.ID = m.id()
	m.personnel[person.ID] = person
	return person, nil
}

func (m *memoryRepo) UpdatePersonnel(_ context.Context, id int64, person Personnel) error {
	if _, ok := m.personnel[id]; !ok {
		return shared.ErrNotFound
	}
	person.ID = id
	m.personnel[id] = person
	return nil
}

var _ Repository = (*memoryRepo)(nil)

func TestCreateClientRequiresNameAndDNI(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreateClient(ctx, Client{DNI: "30111222"})
	assert.Error(t, err)

	_, err = svc.CreateClient(ctx, Client{LastName: "Gomez", FirstName: "Ana"})
	assert.Error(t, err)

	created, err := svc.CreateClient(ctx, Client{LastName: "Gomez", FirstName: "Ana", DNI: "30111222"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Gomez, Ana", created.FullName())
}

func TestCreateClientDuplicateDNI(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreateClient(ctx, Client{LastName: "Gomez", FirstName: "Ana", DNI: "30111222"})
	require.NoError(t, err)

	_, err = svc.CreateClient(ctx, Client{LastName: "Gomez", FirstName: "Maria", DNI: "30111222"})
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestSetClientRatingValidatesValue(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.CreateClient(ctx, Client{LastName: "Gomez", FirstName: "Ana", DNI: "30111222"})
	require.NoError(t, err)

	assert.Error(t, svc.SetClientRating(ctx, created.ID, "stellar"))
	require.NoError(t, svc.SetClientRating(ctx, created.ID, RatingGood))
	assert.Equal(t, RatingGood, repo.clients[created.ID].Rating)
}

func TestCreatePersonnelValidatesKind(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreatePersonnel(ctx, Personnel{LastName: "Acosta", FirstName: "Laura", DNI: "27888111", Kind: "driver"})
	assert.Error(t, err)

	created, err := svc.CreatePersonnel(ctx, Personnel{LastName: "Acosta", FirstName: "Laura", DNI: "27888111", Kind: PersonnelCoordinator})
	require.NoError(t, err)
	assert.Equal(t, PersonnelCoordinator, created.Kind)
}

func TestListPersonnelFiltersByKind(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreatePersonnel(ctx, Personnel{LastName: "Acosta", FirstName: "Laura", DNI: "27888111", Kind: PersonnelCoordinator})
	require.NoError(t, err)
	_, err = svc.CreatePersonnel(ctx, Personnel{LastName: "Cardozo", FirstName: "Silvia", DNI: "30555999", Kind: PersonnelCollector})
	require.NoError(t, err)

	collectors, total, err := svc.ListPersonnel(ctx, ListFilters{PersonnelKind: PersonnelCollector})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, collectors, 1)
	assert.Equal(t, "Cardozo", collectors[0].LastName)
}

func TestCreateProductRequiresName(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, Product{Name: "   "})
	assert.Error(t, err)

	created, err := svc.CreateProduct(ctx, Product{Name: "  Washing machine "})
	require.NoError(t, err)
	assert.Equal(t, "Washing machine", created.Name)
}
