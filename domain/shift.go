package domain

import "time"

const (
	ShiftOpen   = "open"
	ShiftClosed = "closed"
)

type Shift struct {
	ID            int64      `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Status        string     `db:"status" json:"status"`
	OpeningCash   float64    `db:"opening_cash" json:"opening_cash"`
	OpenedBy      *int64     `db:"opened_by" json:"opened_by,omitempty"`
	OpenedAt      time.Time  `db:"opened_at" json:"opened_at"`
	ClosedAt      *time.Time `db:"closed_at" json:"closed_at,omitempty"`
	TotalOrders   int64      `db:"total_orders" json:"total_orders"`
	TotalSales    float64    `db:"total_sales" json:"total_sales"`
	TotalCash     float64    `db:"total_cash" json:"total_cash"`
	TotalCredit   float64    `db:"total_credit" json:"total_credit"`
	TotalDebit    float64    `db:"total_debit" json:"total_debit"`
	TotalPix      float64    `db:"total_pix" json:"total_pix"`
	TotalExpenses float64    `db:"total_expenses" json:"total_expenses"`
}

// ShiftTotals holds the aggregates written back to a shift when it closes.
type ShiftTotals struct {
	Orders   int64
	Sales    float64
	Cash     float64
	Credit   float64
	Debit    float64
	Pix      float64
	Expenses float64
}
