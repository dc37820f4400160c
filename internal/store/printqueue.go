package store

import (
	"context"
	"fmt"
	"time"

	"foodtruck/pos/domain"
)

func EnqueuePrint(ctx context.Context, q Queryer, job *domain.PrintJob) error {
	job.Status = domain.PrintPending
	id, err := insertID(ctx, q,
		`INSERT INTO print_jobs (order_id, content, status, created_at) VALUES (?, ?, ?, ?)`,
		job.OrderID, job.Content, job.Status, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("enqueue print job: %w", err)
	}
	job.ID = id
	return nil
}

// ListPrintJobs returns jobs oldest first; an empty status lists all of them.
func (s *Store) ListPrintJobs(ctx context.Context, status string) ([]domain.PrintJob, error) {
	query := `SELECT id, order_id, content, status, created_at, printed_at FROM print_jobs`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	jobs := []domain.PrintJob{}
	err := selectAll(ctx, s.db, &jobs, query+" ORDER BY created_at, id", args...)
	return jobs, err
}

func (s *Store) MarkPrinted(ctx context.Context, id int64, at time.Time) error {
	return mustAffect(exec(ctx, s.db,
		`UPDATE print_jobs SET status = ?, printed_at = ? WHERE id = ? AND status = ?`,
		domain.PrintPrinted, at, id, domain.PrintPending))
}

// ClearPrintQueue drops every pending job and returns how many were removed.
func (s *Store) ClearPrintQueue(ctx context.Context) (int64, error) {
	n, err := exec(ctx, s.db, `DELETE FROM print_jobs WHERE status = ?`, domain.PrintPending)
	if err != nil {
		return 0, fmt.Errorf("clear print queue: %w", err)
	}
	return n, nil
}
