package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"foodtruck/pos/domain"
	"foodtruck/pos/internal/metrics"
	"foodtruck/pos/internal/pos"
	"foodtruck/pos/internal/realtime"
	"foodtruck/pos/internal/store"
)

// maxSequenceAttempts bounds retries when two transactions race for the same daily number.
const maxSequenceAttempts = 3

type CheckoutRequest struct {
	CartRequest
	CustomerName  string `json:"customer_name" validate:"max=120"`
	CustomerPhone string `json:"customer_phone" validate:"max=30"`
	Address       string `json:"address" validate:"max=300"`
	Notes         string `json:"notes" validate:"max=500"`
	CreatedBy     *int64 `json:"-"`
}

type WebOrderRequest struct {
	CartRequest
	CustomerName  string `json:"customer_name" validate:"max=120"`
	CustomerPhone string `json:"customer_phone" validate:"max=30"`
	Address       string `json:"address" validate:"max=300"`
	Notes         string `json:"notes" validate:"max=500"`
}

type WebOrderReceipt struct {
	Order       *domain.Order `json:"order"`
	WhatsAppURL string        `json:"whatsapp_url,omitempty"`
}

// fulfilment is what an accepted order produced inside its transaction.
type fulfilment struct {
	stock []domain.StockItem
	job   *domain.PrintJob
}

// Checkout records a POS sale. The order, its items, the stock deduction and
// the print job are written in a single transaction.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	cart, err := s.buildCart(ctx, req.CartRequest)
	if err != nil {
		return nil, err
	}
	o := newOrder(cart, domain.SourcePOS, domain.StatusAccepted)
	o.CustomerName = strings.TrimSpace(req.CustomerName)
	o.Address = strings.TrimSpace(req.Address)
	o.Notes = strings.TrimSpace(req.Notes)
	o.CreatedBy = req.CreatedBy
	if req.CustomerPhone != "" {
		phone, err := pos.NormalizePhone(req.CustomerPhone)
		if err != nil {
			return nil, err
		}
		o.CustomerPhone = phone
	}

	start := time.Now()
	f, err := s.createOrder(ctx, o, ErrNoOpenShift, true)
	metrics.ObserveCheckout(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	metrics.RecordOrder(o.Source, o.PaymentMethod)
	metrics.RecordSale(o.PaymentMethod, o.Total)
	s.log.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Int64("daily_number", o.DailyNumber),
		zap.String("source", o.Source),
		zap.Float64("total", o.Total))
	s.publish(ctx, realtime.TableOrders, realtime.Insert, o)
	s.announce(ctx, f)
	return o, nil
}

// PlaceWebOrder stores a customer order as pending. Stock is only deducted
// once staff accept it.
func (s *Service) PlaceWebOrder(ctx context.Context, req WebOrderRequest) (*WebOrderReceipt, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, ErrCustomerRequired
	}
	phone, err := pos.NormalizePhone(req.CustomerPhone)
	if err != nil {
		return nil, err
	}
	req.DiscountType, req.DiscountValue = domain.DiscountNone, 0

	cart, err := s.buildCart(ctx, req.CartRequest)
	if err != nil {
		return nil, err
	}
	address := strings.TrimSpace(req.Address)
	if cart.Type == domain.OrderDelivery && address == "" {
		return nil, ErrAddressRequired
	}

	o := newOrder(cart, domain.SourceWeb, domain.StatusPending)
	o.CustomerName, o.CustomerPhone, o.Address = name, phone, address
	o.Notes = strings.TrimSpace(req.Notes)

	if _, err := s.createOrder(ctx, o, ErrStoreClosed, false); err != nil {
		return nil, err
	}

	metrics.RecordOrder(o.Source, o.PaymentMethod)
	s.log.Info("web order received",
		zap.Int64("order_id", o.ID),
		zap.Int64("daily_number", o.DailyNumber),
		zap.Float64("total", o.Total))
	s.publish(ctx, realtime.TableOrders, realtime.Insert, o)

	receipt := &WebOrderReceipt{Order: o}
	if s.shop.Phone != "" {
		receipt.WhatsAppURL = pos.WhatsAppLink(s.shop.Phone, s.shop.CountryCode, pos.OrderMessage(s.shop, *o, o.Items))
	}
	return receipt, nil
}

// createOrder assigns the next daily number of the open shift and inserts the
// order, retrying when another transaction took the same number.
func (s *Service) createOrder(ctx context.Context, o *domain.Order, closed error, fulfil bool) (*fulfilment, error) {
	var f *fulfilment
	var err error
	for attempt := 1; attempt <= maxSequenceAttempts; attempt++ {
		err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
			shift, err := store.OpenShift(ctx, tx)
			if errors.Is(err, store.ErrNotFound) {
				return closed
			}
			if err != nil {
				return err
			}

			now := s.store.Now()
			o.ShiftID = shift.ID
			o.PublicID = uuid.NewString()
			o.CreatedAt, o.UpdatedAt = now, now
			if o.DailyNumber, err = s.sequence(ctx, tx, shift.ID); err != nil {
				return err
			}
			if err := store.InsertOrder(ctx, tx, o); err != nil {
				return err
			}
			if !fulfil {
				return nil
			}
			f, err = s.fulfil(ctx, tx, o)
			return err
		})
		if err == nil || !store.IsUniqueViolation(err) {
			break
		}
		s.log.Warn("daily number taken, retrying", zap.Int("attempt", attempt), zap.Error(err))
	}
	if store.IsUniqueViolation(err) {
		return nil, ErrSequenceExhausted
	}
	return f, err
}

// fulfil deducts the recipe stock of o and queues its receipt for printing.
func (s *Service) fulfil(ctx context.Context, tx *sqlx.Tx, o *domain.Order) (*fulfilment, error) {
	now := s.store.Now()
	usage := make([]store.Usage, 0, len(o.Items))
	for _, it := range o.Items {
		usage = append(usage, store.Usage{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	stock, err := store.DeductRecipes(ctx, tx, usage, now)
	if err != nil {
		return nil, err
	}

	content, err := pos.RenderReceipt(s.shop, *o, o.Items)
	if err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	job := &domain.PrintJob{OrderID: o.ID, Content: content, CreatedAt: now}
	if err := store.EnqueuePrint(ctx, tx, job); err != nil {
		return nil, err
	}
	return &fulfilment{stock: stock, job: job}, nil
}

// announce publishes the side effects of a fulfilled order after commit.
func (s *Service) announce(ctx context.Context, f *fulfilment) {
	if f == nil {
		return
	}
	if f.job != nil {
		s.publish(ctx, realtime.TablePrintJobs, realtime.Insert, f.job)
	}
	for _, item := range f.stock {
		if item.Low() {
			s.log.Warn("stock item low",
				zap.String("item", item.Name),
				zap.Float64("quantity", item.Quantity),
				zap.Float64("min_quantity", item.MinQuantity))
		}
		s.publish(ctx, realtime.TableStockItems, realtime.Update, item)
	}
}

// AcceptWebOrder moves a pending order to accepted and fulfils it. The
// conditional status update guarantees stock is deducted at most once.
func (s *Service) AcceptWebOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var o *domain.Order
	var f *fulfilment
	err := s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.transition(ctx, tx, id, domain.StatusPending, domain.StatusAccepted); err != nil {
			return err
		}
		var err error
		if o, err = store.GetOrder(ctx, tx, id); err != nil {
			return err
		}
		f, err = s.fulfil(ctx, tx, o)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordSale(o.PaymentMethod, o.Total)
	s.log.Info("web order accepted", zap.Int64("order_id", o.ID), zap.Int64("daily_number", o.DailyNumber))
	s.publish(ctx, realtime.TableOrders, realtime.Update, o)
	s.announce(ctx, f)
	return o, nil
}

// RejectWebOrder refuses a pending order. Stock is untouched.
func (s *Service) RejectWebOrder(ctx context.Context, id int64, reason string) (*domain.Order, error) {
	var o *domain.Order
	err := s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.transition(ctx, tx, id, domain.StatusPending, domain.StatusRejected); err != nil {
			return err
		}
		if reason = strings.TrimSpace(reason); reason != "" {
			if err := store.AppendOrderNote(ctx, tx, id, "Rejected: "+reason); err != nil {
				return err
			}
		}
		var err error
		o, err = store.GetOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("web order rejected", zap.Int64("order_id", o.ID), zap.String("reason", reason))
	s.publish(ctx, realtime.TableOrders, realtime.Update, o)
	return o, nil
}

// UpdateOrderStatus advances an order along the status machine. Accepting and
// rejecting pending orders go through their dedicated workflows.
func (s *Service) UpdateOrderStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.StatusPending {
		switch status {
		case domain.StatusAccepted:
			return s.AcceptWebOrder(ctx, id)
		case domain.StatusRejected:
			return s.RejectWebOrder(ctx, id, "")
		}
	}
	if !domain.CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, status)
	}

	var o *domain.Order
	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.transition(ctx, tx, id, current.Status, status); err != nil {
			return err
		}
		var err error
		o, err = store.GetOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.TableOrders, realtime.Update, o)
	return o, nil
}

// transition moves an order from one status to another. A change that adds
// an order to, or removes it from, the sales figures is only allowed while
// its shift is open, so closed shift totals never go stale.
func (s *Service) transition(ctx context.Context, tx *sqlx.Tx, id int64, from, to string) error {
	if domain.Counted(from) != domain.Counted(to) {
		shiftID, err := store.OrderShiftID(ctx, tx, id)
		if err != nil {
			return err
		}
		status, err := store.LockShift(ctx, tx, shiftID)
		if err != nil {
			return err
		}
		if status != domain.ShiftOpen {
			return ErrShiftClosed
		}
	}
	ok, err := store.TransitionOrder(ctx, tx, id, from, to, s.store.Now())
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	o, err := store.GetOrder(ctx, tx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.Status)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, f store.OrderFilter) ([]domain.Order, error) {
	return s.store.ListOrders(ctx, f)
}

// TrackOrder is the public lookup behind the customer tracking link.
func (s *Service) TrackOrder(ctx context.Context, publicID string) (*domain.Order, error) {
	if _, err := uuid.Parse(publicID); err != nil {
		return nil, ErrNotFound
	}
	return s.store.GetOrderByPublicID(ctx, publicID)
}

// Receipt renders the printable receipt of an order.
func (s *Service) Receipt(ctx context.Context, id int64) (string, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return "", err
	}
	return pos.RenderReceipt(s.shop, *o, o.Items)
}

// CustomerWhatsApp returns a wa.me link that opens a chat with the order's
// customer, pre-filled with the order summary.
func (s *Service) CustomerWhatsApp(ctx context.Context, id int64) (string, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return "", err
	}
	if o.CustomerPhone == "" {
		return "", pos.ErrInvalidPhone
	}
	return pos.WhatsAppLink(o.CustomerPhone, s.shop.CountryCode, pos.OrderMessage(s.shop, *o, o.Items)), nil
}
