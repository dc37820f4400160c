// Package pos holds the point-of-sale rules shared by the register and the web menu:
// cart totals, discounts, delivery fees, phone formatting, WhatsApp links and receipts.
package pos

import (
	"errors"

	"github.com/shopspring/decimal"

	"foodtruck/pos/domain"
)

var (
	ErrEmptyCart            = errors.New("cart has no items")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrInvalidOrderType     = errors.New("order type must be pickup, dine_in or delivery")
	ErrDeliveryAreaRequired = errors.New("delivery orders require a neighborhood")
	ErrInvalidDiscount      = errors.New("invalid discount")
	ErrInvalidPayment       = errors.New("payment method must be cash, credit, debit or pix")
	ErrInsufficientChange   = errors.New("change_for is lower than the order total")
	ErrInvalidPhone         = errors.New("phone number must have between 10 and 13 digits")
)

var hundred = decimal.NewFromInt(100)

type Addon struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

type Line struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
	Addons    []Addon
	Notes     string
}

// AddonsTotal is the price of one unit's addons.
func (l Line) AddonsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range l.Addons {
		sum = sum.Add(a.Price)
	}
	return sum
}

// Total is (unit price + addons) × quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Add(l.AddonsTotal()).Mul(decimal.NewFromInt(l.Quantity))
}

type Discount struct {
	Type  string
	Value decimal.Decimal
}

type Cart struct {
	Type           string
	Lines          []Line
	DeliveryAreaID *int64
	DeliveryFee    decimal.Decimal
	Discount       Discount
	PaymentMethod  string
	ChangeFor      decimal.Decimal
}

type Totals struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// DiscountAmount is the flat or percentage discount clamped to [0, subtotal].
// The delivery fee is never discounted.
func (c Cart) DiscountAmount() decimal.Decimal {
	subtotal := c.Subtotal()
	var amount decimal.Decimal
	switch c.Discount.Type {
	case domain.DiscountFlat:
		amount = c.Discount.Value
	case domain.DiscountPercent:
		amount = subtotal.Mul(c.Discount.Value).Div(hundred)
	default:
		return decimal.Zero
	}
	amount = amount.Round(2)
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}

func (c Cart) Totals() Totals {
	t := Totals{
		Subtotal: c.Subtotal().Round(2),
		Discount: c.DiscountAmount(),
	}
	if c.Type == domain.OrderDelivery {
		t.DeliveryFee = c.DeliveryFee.Round(2)
	}
	t.Total = t.Subtotal.Sub(t.Discount).Add(t.DeliveryFee)
	if t.Total.IsNegative() {
		t.Total = decimal.Zero
	}
	return t
}

// Validate checks the cart before it is priced and stored.
func (c Cart) Validate() error {
	if len(c.Lines) == 0 {
		return ErrEmptyCart
	}
	for _, l := range c.Lines {
		if l.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	switch c.Type {
	case domain.OrderPickup, domain.OrderDineIn:
	case domain.OrderDelivery:
		if c.DeliveryAreaID == nil || *c.DeliveryAreaID <= 0 {
			return ErrDeliveryAreaRequired
		}
	default:
		return ErrInvalidOrderType
	}
	switch c.Discount.Type {
	case "", domain.DiscountNone:
	case domain.DiscountFlat:
		if c.Discount.Value.IsNegative() {
			return ErrInvalidDiscount
		}
	case domain.DiscountPercent:
		if c.Discount.Value.IsNegative() || c.Discount.Value.GreaterThan(hundred) {
			return ErrInvalidDiscount
		}
	default:
		return ErrInvalidDiscount
	}
	if !domain.ValidPayment(c.PaymentMethod) {
		return ErrInvalidPayment
	}
	if c.PaymentMethod == domain.PaymentCash && c.ChangeFor.IsPositive() &&
		c.ChangeFor.LessThan(c.Totals().Total) {
		return ErrInsufficientChange
	}
	return nil
}

// Money converts a stored amount into a decimal.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// Float converts a decimal amount back into the stored representation.
func Float(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
