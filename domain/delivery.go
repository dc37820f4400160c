package domain

// DeliveryArea is a neighborhood served by delivery, with a flat fee.
type DeliveryArea struct {
	ID     int64   `db:"id" json:"id"`
	Name   string  `db:"name" json:"name"`
	Fee    float64 `db:"fee" json:"fee"`
	Active bool    `db:"active" json:"active"`
}
