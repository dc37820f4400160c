package domain

import "time"

type StockItem struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Unit        string    `db:"unit" json:"unit"`
	Quantity    float64   `db:"quantity" json:"quantity"`
	MinQuantity float64   `db:"min_quantity" json:"min_quantity"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Low reports whether the item reached its restock threshold.
func (s StockItem) Low() bool {
	return s.Quantity <= s.MinQuantity
}
