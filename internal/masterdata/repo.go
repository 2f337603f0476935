package masterdata

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solventa-app/solventa/internal/shared"
)

// repo implements Repository interface
type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates a new master data repository
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

// mapWriteErr converts unique-constraint violations (duplicate DNI/CUIL)
// into shared.ErrDuplicate.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}

// searchText builds the folded haystack stored alongside person rows so list
// pages can match accent- and case-insensitively.
func searchText(parts ...string) string {
	return shared.FoldSearchTerm(strings.Join(parts, " "))
}

// Client operations

func (r *repo) ListClients(ctx context.Context, filters ListFilters) ([]Client, int, error) {
	query := `SELECT id, last_name, first_name, dni, birth_date, occupation, home_address, city, province,
	                 workplace_name, work_address, sex, marital_status, personal_phone, work_phone, email,
	                 rating, notes, created_at, updated_at
	          FROM clients`
	countQuery := `SELECT COUNT(*) FROM clients`
	args := []interface{}{}
	if term := shared.FoldSearchTerm(filters.Search); term != "" {
		query += ` WHERE search_text LIKE '%' || $1 || '%'`
		countQuery += ` WHERE search_text LIKE '%' || $1 || '%'`
		args = append(args, term)
	}
	query += ` ORDER BY last_name, first_name`
	if filters.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(filters.Limit) + ` OFFSET ` + strconv.Itoa((filters.Page-1)*filters.Limit)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		err := rows.Scan(&c.ID, &c.LastName, &c.FirstName, &c.DNI, &c.BirthDate, &c.Occupation,
			&c.HomeAddress, &c.City, &c.Province, &c.WorkplaceName, &c.WorkAddress, &c.Sex,
			&c.MaritalStatus, &c.PersonalPhone, &c.WorkPhone, &c.Email, &c.Rating, &c.Notes,
			&c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, c)
	}
	return clients, total, rows.Err()
}

func (r *repo) GetClient(ctx context.Context, id int64) (Client, error) {
	query := `SELECT id, last_name, first_name, dni, birth_date, occupation, home_address, city, province,
	                 workplace_name, work_address, sex, marital_status, personal_phone, work_phone, email,
	                 rating, notes, created_at, updated_at
	          FROM clients WHERE id = $1`
	var c Client
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.LastName, &c.FirstName, &c.DNI, &c.BirthDate,
		&c.Occupation, &c.HomeAddress, &c.City, &c.Province, &c.WorkplaceName, &c.WorkAddress, &c.Sex,
		&c.MaritalStatus, &c.PersonalPhone, &c.WorkPhone, &c.Email, &c.Rating, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repo) CreateClient(ctx context.Context, client Client) (Client, error) {
	query := `INSERT INTO clients (last_name, first_name, dni, birth_date, occupation, home_address, city,
	              province, workplace_name, work_address, sex, marital_status, personal_phone, work_phone,
	              email, rating, notes, search_text, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)
	          RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, client.LastName, client.FirstName, client.DNI, client.BirthDate,
		client.Occupation, client.HomeAddress, client.City, client.Province, client.WorkplaceName,
		client.WorkAddress, client.Sex, client.MaritalStatus, client.PersonalPhone, client.WorkPhone,
		client.Email, client.Rating, client.Notes,
		searchText(client.LastName, client.FirstName, client.DNI), now).Scan(&client.ID)
	if err != nil {
		return Client{}, mapWriteErr(err)
	}
	client.CreatedAt = now
	client.UpdatedAt = now
	return client, nil
}

func (r *repo) UpdateClient(ctx context.Context, id int64, client Client) error {
	query := `UPDATE clients SET last_name = $1, first_name = $2, dni = $3, birth_date = $4, occupation = $5,
	              home_address = $6, city = $7, province = $8, workplace_name = $9, work_address = $10,
	              sex = $11, marital_status = $12, personal_phone = $13, work_phone = $14, email = $15,
	              notes = $16, search_text = $17, updated_at = $18
	          WHERE id = $19`
	_, err := r.db.Exec(ctx, query, client.LastName, client.FirstName, client.DNI, client.BirthDate,
		client.Occupation, client.HomeAddress, client.City, client.Province, client.WorkplaceName,
		client.WorkAddress, client.Sex, client.MaritalStatus, client.PersonalPhone, client.WorkPhone,
		client.Email, client.Notes, searchText(client.LastName, client.FirstName, client.DNI),
		time.Now(), id)
	return mapWriteErr(err)
}

func (r *repo) SetClientRating(ctx context.Context, id int64, rating string) error {
	tag, err := r.db.Exec(ctx, `UPDATE clients SET rating = $1, updated_at = $2 WHERE id = $3`,
		rating, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Guarantor operations

func (r *repo) ListGuarantors(ctx context.Context, filters ListFilters) ([]Guarantor, int, error) {
	query := `SELECT id, last_name, first_name, dni, birth_date, occupation, home_address, city, province,
	                 workplace_name, work_address, sex, marital_status, personal_phone, work_phone, email,
	                 rating, notes, created_at, updated_at
	          FROM guarantors`
	countQuery := `SELECT COUNT(*) FROM guarantors`
	args := []interface{}{}
	if term := shared.FoldSearchTerm(filters.Search); term != "" {
		query += ` WHERE search_text LIKE '%' || $1 || '%'`
		countQuery += ` WHERE search_text LIKE '%' || $1 || '%'`
		args = append(args, term)
	}
	query += ` ORDER BY last_name, first_name`
	if filters.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(filters.Limit) + ` OFFSET ` + strconv.Itoa((filters.Page-1)*filters.Limit)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var guarantors []Guarantor
	for rows.Next() {
		var g Guarantor
		err := rows.Scan(&g.ID, &g.LastName, &g.FirstName, &g.DNI, &g.BirthDate, &g.Occupation,
			&g.HomeAddress, &g.City, &g.Province, &g.WorkplaceName, &g.WorkAddress, &g.Sex,
			&g.MaritalStatus, &g.PersonalPhone, &g.WorkPhone, &g.Email, &g.Rating, &g.Notes,
			&g.CreatedAt, &g.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		guarantors = append(guarantors, g)
	}
	return guarantors, total, rows.Err()
}

func (r *repo) GetGuarantor(ctx context.Context, id int64) (Guarantor, error) {
	query := `SELECT id, last_name, first_name, dni, birth_date, occupation, home_address, city, province,
	                 workplace_name, work_address, sex, marital_status, personal_phone, work_phone, email,
	                 rating, notes, created_at, updated_at
	          FROM guarantors WHERE id = $1`
	var g Guarantor
	err := r.db.QueryRow(ctx, query, id).Scan(&g.ID, &g.LastName, &g.FirstName, &g.DNI, &g.BirthDate,
		&g.Occupation, &g.HomeAddress, &g.City, &g.Province, &g.WorkplaceName, &g.WorkAddress, &g.Sex,
		&g.MaritalStatus, &g.PersonalPhone, &g.WorkPhone, &g.Email, &g.Rating, &g.Notes,
		&g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Guarantor{}, shared.ErrNotFound
	}
	return g, err
}

func (r *repo) CreateGuarantor(ctx context.Context, guarantor Guarantor) (Guarantor, error) {
	query := `INSERT INTO guarantors (last_name, first_name, dni, birth_date, occupation, home_address, city,
	              province, workplace_name, work_address, sex, marital_status, personal_phone, work_phone,
	              email, rating, notes, search_text, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)
	          RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, guarantor.LastName, guarantor.FirstName, guarantor.DNI,
		guarantor.BirthDate, guarantor.Occupation, guarantor.HomeAddress, guarantor.City,
		guarantor.Province, guarantor.WorkplaceName, guarantor.WorkAddress, guarantor.Sex,
		guarantor.MaritalStatus, guarantor.PersonalPhone, guarantor.WorkPhone, guarantor.Email,
		guarantor.Rating, guarantor.Notes,
		searchText(guarantor.LastName, guarantor.FirstName, guarantor.DNI), now).Scan(&guarantor.ID)
	if err != nil {
		return Guarantor{}, mapWriteErr(err)
	}
	guarantor.CreatedAt = now
	guarantor.UpdatedAt = now
	return guarantor, nil
}

func (r *repo) UpdateGuarantor(ctx context.Context, id int64, guarantor Guarantor) error {
	query := `UPDATE guarantors SET last_name = $1, first_name = $2, dni = $3, birth_date = $4,
	              occupation = $5, home_address = $6, city = $7, province = $8, workplace_name = $9,
	              work_address = $10, sex = $11, marital_status = $12, personal_phone = $13,
	              work_phone = $14, email = $15, notes = $16, search_text = $17, updated_at = $18
	          WHERE id = $19`
	_, err := r.db.Exec(ctx, query, guarantor.LastName, guarantor.FirstName, guarantor.DNI,
		guarantor.BirthDate, guarantor.Occupation, guarantor.HomeAddress, guarantor.City,
		guarantor.Province, guarantor.WorkplaceName, guarantor.WorkAddress, guarantor.Sex,
		guarantor.MaritalStatus, guarantor.PersonalPhone, guarantor.WorkPhone, guarantor.Email,
		guarantor.Notes, searchText(guarantor.LastName, guarantor.FirstName, guarantor.DNI),
		time.Now(), id)
	return mapWriteErr(err)
}

func (r *repo) SetGuarantorRating(ctx context.Context, id int64, rating string) error {
	tag, err := r.db.Exec(ctx, `UPDATE guarantors SET rating = $1, updated_at = $2 WHERE id = $3`,
		rating, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Category operations

func (r *repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repo) CreateCategory(ctx context.Context, category Category) (Category, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`,
		category.Name).Scan(&category.ID)
	return category, mapWriteErr(err)
}

// Product operations

func (r *repo) ListProducts(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	query := `SELECT id, name, category_id, created_at, updated_at FROM products`
	countQuery := `SELECT COUNT(*) FROM products`
	args := []interface{}{}
	conds := []string{}
	if term := shared.FoldSearchTerm(filters.Search); term != "" {
		args = append(args, term)
		conds = append(conds, `search_text LIKE '%' || $`+strconv.Itoa(len(args))+` || '%'`)
	}
	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		conds = append(conds, `category_id = $`+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		where := ` WHERE ` + strings.Join(conds, " AND ")
		query += where
		countQuery += where
	}
	query += ` ORDER BY name`
	if filters.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(filters.Limit) + ` OFFSET ` + strconv.Itoa((filters.Page-1)*filters.Limit)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repo) GetProduct(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.db.QueryRow(ctx,
		`SELECT id, name, category_id, created_at, updated_at FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repo) CreateProduct(ctx context.Context, product Product) (Product, error) {
	query := `INSERT INTO products (name, category_id, search_text, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $4) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, product.Name, product.CategoryID,
		searchText(product.Name), now).Scan(&product.ID)
	if err != nil {
		return Product{}, mapWriteErr(err)
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repo) UpdateProduct(ctx context.Context, id int64, product Product) error {
	query := `UPDATE products SET name = $1, category_id = $2, search_text = $3, updated_at = $4 WHERE id = $5`
	_, err := r.db.Exec(ctx, query, product.Name, product.CategoryID, searchText(product.Name),
		time.Now(), id)
	return mapWriteErr(err)
}

// Personnel operations

func (r *repo) ListPersonnel(ctx context.Context, filters ListFilters) ([]Personnel, int, error) {
	query := `SELECT id, last_name, first_name, dni, birth_date, home_address, city, province, sex,
	                 marital_status, personal_phone, alt_phone, email, cuil, hire_date, kind,
	                 created_at, updated_at
	          FROM personnel`
	countQuery := `SELECT COUNT(*) FROM personnel`
	args := []interface{}{}
	conds := []string{}
	if term := shared.FoldSearchTerm(filters.Search); term != "" {
		args = append(args, term)
		conds = append(conds, `search_text LIKE '%' || $`+strconv.Itoa(len(args))+` || '%'`)
	}
	if filters.PersonnelKind != "" {
		args = append(args, filters.PersonnelKind)
		conds = append(conds, `kind = $`+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		where := ` WHERE ` + strings.Join(conds, " AND ")
		query += where
		countQuery += where
	}
	query += ` ORDER BY last_name, first_name`
	if filters.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(filters.Limit) + ` OFFSET ` + strconv.Itoa((filters.Page-1)*filters.Limit)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var people []Personnel
	for rows.Next() {
		var p Personnel
		err := rows.Scan(&p.ID, &p.LastName, &p.FirstName, &p.DNI, &p.BirthDate, &p.HomeAddress,
			&p.City, &p.Province, &p.Sex, &p.MaritalStatus, &p.PersonalPhone, &p.AltPhone, &p.Email,
			&p.CUIL, &p.HireDate, &p.Kind, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		people = append(people, p)
	}
	return people, total, rows.Err()
}

func (r *repo) GetPersonnel(ctx context.Context, id int64) (Personnel, error) {
	query := `SELECT id, last_name, first_name, dni, birth_date, home_address, city, province, sex,
	                 marital_status, personal_phone, alt_phone, email, cuil, hire_date, kind,
	                 created_at, updated_at
	          FROM personnel WHERE id = $1`
	var p Personnel
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.LastName, &p.FirstName, &p.DNI, &p.BirthDate,
		&p.HomeAddress, &p.City, &p.Province, &p.Sex, &p.MaritalStatus, &p.PersonalPhone, &p.AltPhone,
		&p.Email, &p.CUIL, &p.HireDate, &p.Kind, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Personnel{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repo) CreatePersonnel(ctx context.Context, person Personnel) (Personnel, error) {
	query := `INSERT INTO personnel (last_name, first_name, dni, birth_date, home_address, city, province,
	              sex, marital_status, personal_phone, alt_phone, email, cuil, hire_date, kind,
	              search_text, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
	          RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, person.LastName, person.FirstName, person.DNI, person.BirthDate,
		person.HomeAddress, person.City, person.Province, person.Sex, person.MaritalStatus,
		person.PersonalPhone, person.AltPhone, person.Email, person.CUIL, person.HireDate, person.Kind,
		searchText(person.LastName, person.FirstName, person.DNI), now).Scan(&person.ID)
	if err != nil {
		return Personnel{}, mapWriteErr(err)
	}
	person.CreatedAt = now
	person.UpdatedAt = now
	return person, nil
}

func (r *repo) UpdatePersonnel(ctx context.Context, id int64, person Personnel) error {
	query := `UPDATE personnel SET last_name = $1, first_name = $2, dni = $3, birth_date = $4,
	              home_address = $5, city = $6, province = $7, sex = $8, marital_status = $9,
	              personal_phone = $10, alt_phone = $11, email = $12, cuil = $13, hire_date = $14,
	              kind = $15, search_text = $16, updated_at = $17
	          WHERE id = $18`
	_, err := r.db.Exec(ctx, query, person.LastName, person.FirstName, person.DNI, person.BirthDate,
		person.HomeAddress, person.City, person.Province, person.Sex, person.MaritalStatus,
		person.PersonalPhone, person.AltPhone, person.Email, person.CUIL, person.HireDate, person.Kind,
		searchText(person.LastName, person.FirstName, person.DNI), time.Now(), id)
	return mapWriteErr(err)
}
