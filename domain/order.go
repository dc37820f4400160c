package domain

import "time"

const (
	SourcePOS = "pos"
	SourceWeb = "web"
)

const (
	OrderPickup   = "pickup"
	OrderDineIn   = "dine_in"
	OrderDelivery = "delivery"
)

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	PaymentCash   = "cash"
	PaymentCredit = "credit"
	PaymentDebit  = "debit"
	PaymentPix    = "pix"
)

const (
	DiscountNone    = "none"
	DiscountFlat    = "flat"
	DiscountPercent = "percent"
)

type Order struct {
	ID             int64     `db:"id" json:"id"`
	PublicID       string    `db:"public_id" json:"public_id"`
	ShiftID        int64     `db:"shift_id" json:"shift_id"`
	DailyNumber    int64     `db:"daily_number" json:"daily_number"`
	Source         string    `db:"source" json:"source"`
	Type           string    `db:"type" json:"type"`
	Status         string    `db:"status" json:"status"`
	CustomerName   string    `db:"customer_name" json:"customer_name"`
	CustomerPhone  string    `db:"customer_phone" json:"customer_phone"`
	Address        string    `db:"address" json:"address"`
	DeliveryAreaID *int64    `db:"delivery_area_id" json:"delivery_area_id,omitempty"`
	DeliveryFee    float64   `db:"delivery_fee" json:"delivery_fee"`
	Subtotal       float64   `db:"subtotal" json:"subtotal"`
	DiscountType   string    `db:"discount_type" json:"discount_type"`
	DiscountValue  float64   `db:"discount_value" json:"discount_value"`
	DiscountAmount float64   `db:"discount_amount" json:"discount_amount"`
	Total          float64   `db:"total" json:"total"`
	PaymentMethod  string    `db:"payment_method" json:"payment_method"`
	ChangeFor      float64   `db:"change_for" json:"change_for"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *int64    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	Items []OrderItem `db:"-" json:"items,omitempty"`
}

type OrderItem struct {
	ID          int64   `db:"id" json:"id"`
	OrderID     int64   `db:"order_id" json:"order_id"`
	ProductID   int64   `db:"product_id" json:"product_id"`
	ProductName string  `db:"product_name" json:"product_name"`
	Quantity    int64   `db:"quantity" json:"quantity"`
	UnitPrice   float64 `db:"unit_price" json:"unit_price"`
	Addons      string  `db:"addons" json:"addons"`
	AddonsTotal float64 `db:"addons_total" json:"addons_total"`
	LineTotal   float64 `db:"line_total" json:"line_total"`
	Notes       string  `db:"notes" json:"notes"`
}

// ItemAddon is the snapshot of an addon stored with an order item.
type ItemAddon struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

var transitions = map[string][]string{
	StatusPending:   {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:  {StatusPreparing, StatusReady, StatusCompleted, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCompleted, StatusCancelled},
	StatusReady:     {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CountedStatuses are the statuses whose orders count towards sales figures.
// Pending web orders are not sales until staff accept them.
var CountedStatuses = []string{StatusAccepted, StatusPreparing, StatusReady, StatusCompleted}

// Counted reports whether an order in this status counts towards sales figures.
func Counted(status string) bool {
	for _, s := range CountedStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ValidPayment reports whether method is one of the accepted payment methods.
func ValidPayment(method string) bool {
	switch method {
	case PaymentCash, PaymentCredit, PaymentDebit, PaymentPix:
		return true
	}
	return false
}
