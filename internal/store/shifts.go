package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"foodtruck/pos/domain"
)

const shiftColumns = `id, name, status, opening_cash, opened_by, opened_at, closed_at, total_orders,
    total_sales, total_cash, total_credit, total_debit, total_pix, total_expenses`

// OpenShift returns the currently open shift, or ErrNotFound.
func OpenShift(ctx context.Context, q Queryer) (*domain.Shift, error) {
	var sh domain.Shift
	err := get(ctx, q, &sh, `SELECT `+shiftColumns+` FROM shifts WHERE status = ? ORDER BY opened_at DESC LIMIT 1`, domain.ShiftOpen)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

func ShiftByName(ctx context.Context, q Queryer, name string) (*domain.Shift, error) {
	var sh domain.Shift
	if err := get(ctx, q, &sh, `SELECT `+shiftColumns+` FROM shifts WHERE name = ?`, name); err != nil {
		return nil, err
	}
	return &sh, nil
}

func GetShift(ctx context.Context, q Queryer, id int64) (*domain.Shift, error) {
	var sh domain.Shift
	if err := get(ctx, q, &sh, `SELECT `+shiftColumns+` FROM shifts WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &sh, nil
}

func (s *Store) CurrentShift(ctx context.Context) (*domain.Shift, error) {
	return OpenShift(ctx, s.db)
}

func (s *Store) GetShift(ctx context.Context, id int64) (*domain.Shift, error) {
	return GetShift(ctx, s.db, id)
}

func (s *Store) ListShifts(ctx context.Context, limit int) ([]domain.Shift, error) {
	if limit <= 0 || limit > 365 {
		limit = 30
	}
	shifts := []domain.Shift{}
	err := selectAll(ctx, s.db, &shifts, `SELECT `+shiftColumns+` FROM shifts ORDER BY opened_at DESC LIMIT ?`, limit)
	return shifts, err
}

func CreateShift(ctx context.Context, q Queryer, sh *domain.Shift) error {
	id, err := insertID(ctx, q,
		`INSERT INTO shifts (name, status, opening_cash, opened_by, opened_at) VALUES (?, ?, ?, ?, ?)`,
		sh.Name, sh.Status, sh.OpeningCash, sh.OpenedBy, sh.OpenedAt)
	if err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	sh.ID = id
	return nil
}

// LockShift takes a row lock on the shift for the rest of the transaction so
// order numbering, status changes and closing serialise on PostgreSQL.
// SQLite serialises writers already. It returns the shift's status.
func LockShift(ctx context.Context, q Queryer, id int64) (string, error) {
	query := `SELECT status FROM shifts WHERE id = ?`
	if isPostgres(q) {
		query += ` FOR UPDATE`
	}
	var status string
	if err := get(ctx, q, &status, query, id); err != nil {
		return "", fmt.Errorf("lock shift: %w", err)
	}
	return status, nil
}

// ReopenShift puts a closed shift back in the open state, keeping its name and orders.
func ReopenShift(ctx context.Context, q Queryer, id int64) error {
	return mustAffect(exec(ctx, q,
		`UPDATE shifts SET status = ?, closed_at = NULL WHERE id = ? AND status = ?`,
		domain.ShiftOpen, id, domain.ShiftClosed))
}

// CloseShift writes the aggregates and closes the shift. It fails with
// ErrNotFound if the shift is not open.
func CloseShift(ctx context.Context, q Queryer, id int64, t domain.ShiftTotals, at time.Time) error {
	return mustAffect(exec(ctx, q,
		`UPDATE shifts SET status = ?, closed_at = ?, total_orders = ?, total_sales = ?, total_cash = ?,
            total_credit = ?, total_debit = ?, total_pix = ?, total_expenses = ?
         WHERE id = ? AND status = ?`,
		domain.ShiftClosed, at, t.Orders, t.Sales, t.Cash, t.Credit, t.Debit, t.Pix, t.Expenses,
		id, domain.ShiftOpen))
}

type paymentTotal struct {
	Method string  `db:"payment_method"`
	Orders int64   `db:"orders"`
	Total  float64 `db:"total"`
}

// ShiftTotals aggregates the shift's counted orders by payment method, plus
// the expenses booked on the shift.
func ShiftTotals(ctx context.Context, q Queryer, shiftID int64) (domain.ShiftTotals, error) {
	var t domain.ShiftTotals
	var rows []paymentTotal
	query, args, err := sqlx.In(
		`SELECT payment_method, COUNT(*) AS orders, COALESCE(SUM(total), 0.0) AS total
         FROM orders WHERE shift_id = ? AND status IN (?)
         GROUP BY payment_method`,
		shiftID, domain.CountedStatuses)
	if err == nil {
		err = selectAll(ctx, q, &rows, query, args...)
	}
	if err != nil {
		return t, fmt.Errorf("shift totals: %w", err)
	}
	for _, r := range rows {
		t.Orders += r.Orders
		t.Sales += r.Total
		switch r.Method {
		case domain.PaymentCash:
			t.Cash += r.Total
		case domain.PaymentCredit:
			t.Credit += r.Total
		case domain.PaymentDebit:
			t.Debit += r.Total
		case domain.PaymentPix:
			t.Pix += r.Total
		}
	}
	if err := get(ctx, q, &t.Expenses,
		`SELECT COALESCE(SUM(amount), 0.0) FROM expenses WHERE shift_id = ?`, shiftID); err != nil && !errors.Is(err, ErrNotFound) {
		return t, fmt.Errorf("shift expenses: %w", err)
	}
	return t, nil
}
