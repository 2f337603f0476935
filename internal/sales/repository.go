package sales

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solventa-app/solventa/internal/collections"
	"github.com/solventa-app/solventa/internal/platform/db"
	"github.com/solventa-app/solventa/internal/shared"
)

// Repository provides PostgreSQL backed persistence for sales.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const saleColumns = `s.id, s.client_id, s.guarantor_id, s.product_id, s.coordinator_id, s.salesperson_id,
       s.collector_id, s.date, s.first_due_date, s.principal, s.installment_count, s.installment_amount,
       s.total_financed, s.interest_pct, s.tem, s.tna, s.tea, s.plan, s.collection_address, s.notes,
       s.status, s.annulment_reason, s.created_at, s.updated_at`

func scanSale(row pgx.Row, sale *Sale, extra ...any) error {
	dest := []any{&sale.ID, &sale.ClientID, &sale.GuarantorID, &sale.ProductID, &sale.CoordinatorID,
		&sale.SalespersonID, &sale.CollectorID, &sale.Date, &sale.FirstDueDate, &sale.Principal,
		&sale.InstallmentCount, &sale.InstallmentAmount, &sale.TotalFinanced, &sale.InterestPct,
		&sale.Rates.TEM, &sale.Rates.TNA, &sale.Rates.TEA, &sale.Plan, &sale.CollectionAddress,
		&sale.Notes, &sale.Status, &sale.AnnulmentReason, &sale.CreatedAt, &sale.UpdatedAt}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}

// ListSales returns a page of sales joined with client and product names.
func (r *Repository) ListSales(ctx context.Context, filters ListFilters) ([]Row, int, error) {
	query := `SELECT ` + saleColumns + `,
	          c.last_name || ', ' || c.first_name, p.name
	          FROM sales s
	          JOIN clients c ON c.id = s.client_id
	          JOIN products p ON p.id = s.product_id`
	countQuery := `SELECT COUNT(*)
	          FROM sales s
	          JOIN clients c ON c.id = s.client_id`

	where := ""
	args := []interface{}{}
	addClause := func(clause string) {
		if where == "" {
			where = ` WHERE ` + clause
		} else {
			where += ` AND ` + clause
		}
	}
	if filters.SaleID != nil {
		args = append(args, *filters.SaleID)
		addClause(`s.id = $` + strconv.Itoa(len(args)))
	} else if filters.Search != "" {
		args = append(args, filters.Search)
		addClause(`c.search_text LIKE '%' || $` + strconv.Itoa(len(args)) + ` || '%'`)
	}
	if filters.Status != "" {
		args = append(args, string(filters.Status))
		addClause(`s.status = $` + strconv.Itoa(len(args)))
	}
	query += where + ` ORDER BY s.date DESC, s.id DESC`
	countQuery += where
	if filters.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(filters.Limit) + ` OFFSET ` + strconv.Itoa((filters.Page-1)*filters.Limit)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := scanSale(rows, &row.Sale, &row.ClientName, &row.ProductName); err != nil {
			return nil, 0, err
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// GetSale loads one sale by ID.
func (r *Repository) GetSale(ctx context.Context, id int64) (Sale, error) {
	var sale Sale
	err := scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales s WHERE s.id = $1`, id), &sale)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, shared.ErrNotFound
	}
	return sale, err
}

// CreateSale inserts the sale and its generated installment schedule in one
// transaction, so a failure on any row leaves nothing behind.
func (r *Repository) CreateSale(ctx context.Context, sale Sale, installments []collections.Installment) (Sale, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now()
		err := tx.QueryRow(ctx,
			`INSERT INTO sales (client_id, guarantor_id, product_id, coordinator_id, salesperson_id,
			         collector_id, date, first_due_date, principal, installment_count, installment_amount,
			         total_financed, interest_pct, tem, tna, tea, plan, collection_address, notes, status,
			         annulment_reason, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			         $20, $21, $22, $22)
			 RETURNING id`,
			sale.ClientID, sale.GuarantorID, sale.ProductID, sale.CoordinatorID, sale.SalespersonID,
			sale.CollectorID, sale.Date, sale.FirstDueDate, sale.Principal, sale.InstallmentCount,
			sale.InstallmentAmount, sale.TotalFinanced, sale.InterestPct, sale.Rates.TEM, sale.Rates.TNA,
			sale.Rates.TEA, sale.Plan, sale.CollectionAddress, sale.Notes, string(sale.Status),
			sale.AnnulmentReason, now).Scan(&sale.ID)
		if err != nil {
			return err
		}
		sale.CreatedAt = now
		sale.UpdatedAt = now

		for i := range installments {
			installments[i].SaleID = sale.ID
		}
		return collections.InsertSchedule(ctx, tx, installments)
	})
	if err != nil {
		return Sale{}, err
	}
	return sale, nil
}

// Transition moves an ACTIVE sale to a terminal status. The WHERE clause
// guards against racing transitions from two sessions.
func (r *Repository) Transition(ctx context.Context, id int64, status Status, reason string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sales SET status = $1, annulment_reason = $2, updated_at = $3
		 WHERE id = $4 AND status = 'ACTIVE'`,
		string(status), reason, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSaleNotActive
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
