package domain

import "time"

const (
	PrintPending = "pending"
	PrintPrinted = "printed"
)

type PrintJob struct {
	ID        int64      `db:"id" json:"id"`
	OrderID   int64      `db:"order_id" json:"order_id"`
	Content   string     `db:"content" json:"content"`
	Status    string     `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	PrintedAt *time.Time `db:"printed_at" json:"printed_at,omitempty"`
}
