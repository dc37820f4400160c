package domain

import "time"

type Expense struct {
	ID          int64     `db:"id" json:"id"`
	ShiftID     *int64    `db:"shift_id" json:"shift_id,omitempty"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	Amount      float64   `db:"amount" json:"amount"`
	CreatedBy   *int64    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
