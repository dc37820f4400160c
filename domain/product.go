package domain

import "time"

type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	Price       float64   `db:"price" json:"price"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	Available   bool      `db:"available" json:"available"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Addon is an extra that can be attached to any cart line (extra cheese, bacon...).
type Addon struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	Available bool    `db:"available" json:"available"`
}

// ProductIngredient is one recipe line: how much of a stock item a single unit of the product consumes.
type ProductIngredient struct {
	ID          int64   `db:"id" json:"id"`
	ProductID   int64   `db:"product_id" json:"product_id"`
	StockItemID int64   `db:"stock_item_id" json:"stock_item_id"`
	Quantity    float64 `db:"quantity" json:"quantity"`
}
