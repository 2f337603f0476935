package collections

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solventa-app/solventa/internal/platform/db"
	"github.com/solventa-app/solventa/internal/shared"
)

// Repository provides PostgreSQL backed persistence for the ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListInstallments returns the sale's installments in sequence order.
func (r *Repository) ListInstallments(ctx context.Context, saleID int64) ([]Installment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, sale_id, sequence, due_date, original_amount, amount_paid, paid, payment_date,
		        late_fee, overdue, created_at, updated_at
		 FROM installments WHERE sale_id = $1 ORDER BY sequence`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var installments []Installment
	for rows.Next() {
		var inst Installment
		err := rows.Scan(&inst.ID, &inst.SaleID, &inst.Sequence, &inst.DueDate, &inst.OriginalAmount,
			&inst.AmountPaid, &inst.Paid, &inst.PaymentDate, &inst.LateFee, &inst.Overdue,
			&inst.CreatedAt, &inst.UpdatedAt)
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}
	return installments, rows.Err()
}

// SaleIsActive reports whether the sale is still in its ACTIVE state.
func (r *Repository) SaleIsActive(ctx context.Context, saleID int64) (bool, error) {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM sales WHERE id = $1`, saleID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, shared.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return status == "ACTIVE", nil
}

// CreateInstallment inserts a single installment row (late-fee additions).
func (r *Repository) CreateInstallment(ctx context.Context, inst Installment) (Installment, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO installments (sale_id, sequence, due_date, original_amount, amount_paid, paid,
		         payment_date, late_fee, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING id`,
		inst.SaleID, inst.Sequence, inst.DueDate, inst.OriginalAmount, inst.AmountPaid, inst.Paid,
		inst.PaymentDate, inst.LateFee, now).Scan(&inst.ID)
	if err != nil {
		return Installment{}, err
	}
	inst.CreatedAt = now
	inst.UpdatedAt = now
	return inst, nil
}

// InsertSchedule stores a freshly generated schedule inside an existing
// transaction, so sale creation and its installments commit together.
func InsertSchedule(ctx context.Context, tx pgx.Tx, installments []Installment) error {
	now := time.Now()
	for i := range installments {
		inst := &installments[i]
		err := tx.QueryRow(ctx,
			`INSERT INTO installments (sale_id, sequence, due_date, original_amount, amount_paid, paid,
			         payment_date, late_fee, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING id`,
			inst.SaleID, inst.Sequence, inst.DueDate, inst.OriginalAmount, inst.AmountPaid, inst.Paid,
			inst.PaymentDate, inst.LateFee, now).Scan(&inst.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// PersistPayment stores the payment, its allocation entries and the updated
// installment rows as one transaction; any failure rolls everything back.
func (r *Repository) PersistPayment(ctx context.Context, input PaymentInput, changed []Installment, entries []AllocationEntry) (*Payment, error) {
	payment := &Payment{
		SaleID:     input.SaleID,
		Date:       input.Date,
		Amount:     input.Amount,
		Type:       input.Type,
		Method:     input.Method,
		Place:      input.Place,
		Receipt:    input.Receipt,
		Notes:      input.Notes,
		RecordedBy: input.RecordedBy,
	}

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now()
		if err := tx.QueryRow(ctx,
			`INSERT INTO payments (sale_id, date, amount, type, method, place, receipt, notes, recorded_by, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
			payment.SaleID, payment.Date, payment.Amount, payment.Type, payment.Method, payment.Place,
			payment.Receipt, payment.Notes, payment.RecordedBy, now).Scan(&payment.ID); err != nil {
			return err
		}
		payment.CreatedAt = now

		for _, entry := range entries {
			if _, err := tx.Exec(ctx,
				`INSERT INTO payment_allocations (payment_id, installment_id, amount) VALUES ($1, $2, $3)`,
				payment.ID, entry.InstallmentID, entry.Amount); err != nil {
				return err
			}
		}

		for _, inst := range changed {
			tag, err := tx.Exec(ctx,
				`UPDATE installments SET amount_paid = $1, paid = $2, payment_date = $3, updated_at = $4
				 WHERE id = $5`,
				inst.AmountPaid, inst.Paid, inst.PaymentDate, now, inst.ID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return shared.ErrNotFound
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// ListPayments lists recorded receipts for a sale, newest first.
func (r *Repository) ListPayments(ctx context.Context, saleID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, sale_id, date, amount, type, method, place, receipt, notes, recorded_by, created_at
		 FROM payments WHERE sale_id = $1 ORDER BY date DESC, id DESC`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		err := rows.Scan(&p.ID, &p.SaleID, &p.Date, &p.Amount, &p.Type, &p.Method, &p.Place,
			&p.Receipt, &p.Notes, &p.RecordedBy, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// LastPaymentNotes returns the notes from the most recent payment that
// carried any, or empty. Payments recorded without notes never clear the
// prefill.
func (r *Repository) LastPaymentNotes(ctx context.Context, saleID int64) (string, error) {
	var notes string
	err := r.pool.QueryRow(ctx,
		`SELECT notes FROM payments WHERE sale_id = $1 AND notes <> '' ORDER BY date DESC, id DESC LIMIT 1`, saleID).
		Scan(&notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return notes, nil
}

// MarkOverdue flags unpaid installments on active sales whose due date has
// passed. Returns the number of rows flagged.
func (r *Repository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE installments i SET overdue = TRUE, updated_at = $1
		 FROM sales s
		 WHERE i.sale_id = s.id AND s.status = 'ACTIVE'
		   AND i.paid = FALSE AND i.overdue = FALSE AND i.due_date < $1`, asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ RepositoryPort = (*Repository)(nil)
