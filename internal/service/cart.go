package service

import (
	"context"
	"errors"
	"fmt"

	"foodtruck/pos/domain"
	"foodtruck/pos/internal/pos"
	"foodtruck/pos/internal/store"
)

type CartItem struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int64   `json:"quantity"`
	AddonIDs  []int64 `json:"addon_ids" validate:"max=20,dive,gt=0"`
	Notes     string  `json:"notes" validate:"max=200"`
}

type CartRequest struct {
	Type           string     `json:"type"`
	Items          []CartItem `json:"items" validate:"max=100,dive"`
	DeliveryAreaID *int64     `json:"delivery_area_id,omitempty"`
	DiscountType   string     `json:"discount_type"`
	DiscountValue  float64    `json:"discount_value"`
	PaymentMethod  string     `json:"payment_method"`
	ChangeFor      float64    `json:"change_for"`
}

type Quote struct {
	Items       []domain.OrderItem `json:"items"`
	Subtotal    float64            `json:"subtotal"`
	DeliveryFee float64            `json:"delivery_fee"`
	Discount    float64            `json:"discount"`
	Total       float64            `json:"total"`
}

// Quote prices a cart from the catalog without creating anything.
func (s *Service) Quote(ctx context.Context, req CartRequest) (*Quote, error) {
	cart, err := s.buildCart(ctx, req)
	if err != nil {
		return nil, err
	}
	t := cart.Totals()
	return &Quote{
		Items:       orderItems(cart),
		Subtotal:    pos.Float(t.Subtotal),
		DeliveryFee: pos.Float(t.DeliveryFee),
		Discount:    pos.Float(t.Discount),
		Total:       pos.Float(t.Total),
	}, nil
}

// buildCart prices every line from the catalog; client-side prices are never trusted.
func (s *Service) buildCart(ctx context.Context, req CartRequest) (pos.Cart, error) {
	cart := pos.Cart{
		Type:           req.Type,
		DeliveryAreaID: req.DeliveryAreaID,
		Discount:       pos.Discount{Type: req.DiscountType, Value: pos.Money(req.DiscountValue)},
		PaymentMethod:  req.PaymentMethod,
		ChangeFor:      pos.Money(req.ChangeFor),
	}
	if cart.Discount.Type == "" {
		cart.Discount.Type = domain.DiscountNone
	}
	if len(req.Items) == 0 {
		return cart, pos.ErrEmptyCart
	}

	var productIDs, addonIDs []int64
	for _, it := range req.Items {
		productIDs = append(productIDs, it.ProductID)
		addonIDs = append(addonIDs, it.AddonIDs...)
	}
	q := s.store.DB()
	products, err := store.ProductsByID(ctx, q, productIDs)
	if err != nil {
		return cart, err
	}
	addons, err := store.AddonsByID(ctx, q, addonIDs)
	if err != nil {
		return cart, err
	}

	for _, it := range req.Items {
		p, ok := products[it.ProductID]
		if !ok || !p.Available {
			return cart, fmt.Errorf("%w: product %d", ErrUnavailableProduct, it.ProductID)
		}
		line := pos.Line{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: pos.Money(p.Price),
			Quantity:  it.Quantity,
			Notes:     it.Notes,
		}
		for _, id := range it.AddonIDs {
			a, ok := addons[id]
			if !ok || !a.Available {
				return cart, fmt.Errorf("%w: addon %d", ErrUnavailableAddon, id)
			}
			line.Addons = append(line.Addons, pos.Addon{ID: a.ID, Name: a.Name, Price: pos.Money(a.Price)})
		}
		cart.Lines = append(cart.Lines, line)
	}

	if cart.Type == domain.OrderDelivery && req.DeliveryAreaID != nil && *req.DeliveryAreaID > 0 {
		area, err := store.GetDeliveryArea(ctx, q, *req.DeliveryAreaID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && !area.Active) {
			return cart, ErrInvalidDeliveryArea
		}
		if err != nil {
			return cart, err
		}
		cart.DeliveryFee = pos.Money(area.Fee)
	}
	if cart.Type != domain.OrderDelivery {
		cart.DeliveryAreaID = nil
	}

	if err := cart.Validate(); err != nil {
		return cart, err
	}
	return cart, nil
}

func orderItems(cart pos.Cart) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		items = append(items, domain.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   pos.Float(l.UnitPrice),
			Addons:      pos.EncodeAddons(l.Addons),
			AddonsTotal: pos.Float(l.AddonsTotal()),
			LineTotal:   pos.Float(l.Total()),
			Notes:       l.Notes,
		})
	}
	return items
}

// newOrder fills the money fields of an order from a validated cart.
func newOrder(cart pos.Cart, source, status string) *domain.Order {
	t := cart.Totals()
	o := &domain.Order{
		Source:         source,
		Type:           cart.Type,
		Status:         status,
		DeliveryAreaID: cart.DeliveryAreaID,
		DeliveryFee:    pos.Float(t.DeliveryFee),
		Subtotal:       pos.Float(t.Subtotal),
		DiscountType:   cart.Discount.Type,
		DiscountValue:  pos.Float(cart.Discount.Value),
		DiscountAmount: pos.Float(t.Discount),
		Total:          pos.Float(t.Total),
		PaymentMethod:  cart.PaymentMethod,
		Items:          orderItems(cart),
	}
	if cart.PaymentMethod == domain.PaymentCash {
		o.ChangeFor = pos.Float(cart.ChangeFor)
	}
	if o.DiscountType == domain.DiscountNone {
		o.DiscountValue = 0
	}
	return o
}
