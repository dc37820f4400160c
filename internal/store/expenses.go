package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodtruck/pos/domain"
)

const expenseColumns = `id, shift_id, description, category, amount, created_by, created_at`

func (s *Store) CreateExpense(ctx context.Context, e *domain.Expense) error {
	e.CreatedAt = s.now()
	id, err := insertID(ctx, s.db,
		`INSERT INTO expenses (shift_id, description, category, amount, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ShiftID, strings.TrimSpace(e.Description), e.Category, e.Amount, e.CreatedBy, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	e.ID = id
	return nil
}

type ExpenseFilter struct {
	ShiftID int64
	From    time.Time
	To      time.Time
}

func (s *Store) ListExpenses(ctx context.Context, f ExpenseFilter) ([]domain.Expense, error) {
	var where []string
	var args []any
	if f.ShiftID > 0 {
		where = append(where, "shift_id = ?")
		args = append(args, f.ShiftID)
	}
	if !f.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, f.To.UTC())
	}
	query := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	expenses := []domain.Expense{}
	if err := selectAll(ctx, s.db, &expenses, query, args...); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id int64) error {
	return mustAffect(exec(ctx, s.db, `DELETE FROM expenses WHERE id = ?`, id))
}
