package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodtruck/pos/domain"
)

const orderColumns = `id, public_id, shift_id, daily_number, source, type, status, customer_name, customer_phone,
    address, delivery_area_id, delivery_fee, subtotal, discount_type, discount_value, discount_amount, total,
    payment_method, change_for, notes, created_by, created_at, updated_at`

const itemColumns = `id, order_id, product_id, product_name, quantity, unit_price, addons, addons_total, line_total, notes`

// NextDailyNumber returns the next sequence number of the shift. It must run
// inside the transaction that inserts the order; on PostgreSQL the shift row
// is locked so concurrent checkouts queue behind each other.
func NextDailyNumber(ctx context.Context, q Queryer, shiftID int64) (int64, error) {
	if _, err := LockShift(ctx, q, shiftID); err != nil {
		return 0, err
	}
	var n int64
	if err := get(ctx, q, &n, `SELECT COALESCE(MAX(daily_number), 0) + 1 FROM orders WHERE shift_id = ?`, shiftID); err != nil {
		return 0, fmt.Errorf("next daily number: %w", err)
	}
	return n, nil
}

// InsertOrder stores the order and its items and fills in the generated ids.
func InsertOrder(ctx context.Context, q Queryer, o *domain.Order) error {
	id, err := insertID(ctx, q,
		`INSERT INTO orders (public_id, shift_id, daily_number, source, type, status, customer_name, customer_phone,
            address, delivery_area_id, delivery_fee, subtotal, discount_type, discount_value, discount_amount, total,
            payment_method, change_for, notes, created_by, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.PublicID, o.ShiftID, o.DailyNumber, o.Source, o.Type, o.Status, o.CustomerName, o.CustomerPhone,
		o.Address, o.DeliveryAreaID, o.DeliveryFee, o.Subtotal, o.DiscountType, o.DiscountValue, o.DiscountAmount, o.Total,
		o.PaymentMethod, o.ChangeFor, o.Notes, o.CreatedBy, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	o.ID = id

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = id
		itemID, err := insertID(ctx, q,
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, addons, addons_total, line_total, notes)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.Addons, it.AddonsTotal, it.LineTotal, it.Notes)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
		it.ID = itemID
	}
	return nil
}

func OrderItems(ctx context.Context, q Queryer, orderID int64) ([]domain.OrderItem, error) {
	items := []domain.OrderItem{}
	err := selectAll(ctx, q, &items, `SELECT `+itemColumns+` FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	return items, err
}

func GetOrder(ctx context.Context, q Queryer, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := get(ctx, q, &o, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id); err != nil {
		return nil, err
	}
	items, err := OrderItems(ctx, q, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return GetOrder(ctx, s.db, id)
}

func (s *Store) GetOrderByPublicID(ctx context.Context, publicID string) (*domain.Order, error) {
	var o domain.Order
	if err := get(ctx, s.db, &o, `SELECT `+orderColumns+` FROM orders WHERE public_id = ?`, publicID); err != nil {
		return nil, err
	}
	items, err := OrderItems(ctx, s.db, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

type OrderFilter struct {
	Status  string
	Source  string
	ShiftID int64
	From    time.Time
	To      time.Time
	Limit   int
}

// ListOrders returns orders newest first without their items.
func (s *Store) ListOrders(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	var where []string
	var args []any
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Source != "" {
		where = append(where, "source = ?")
		args = append(args, f.Source)
	}
	if f.ShiftID > 0 {
		where = append(where, "shift_id = ?")
		args = append(args, f.ShiftID)
	}
	if !f.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, f.To.UTC())
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, f.Limit)

	orders := []domain.Order{}
	if err := selectAll(ctx, s.db, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// TransitionOrder moves an order from one status to another only if it is
// still in the expected status. It reports whether a row changed.
func TransitionOrder(ctx context.Context, q Queryer, id int64, from, to string, at time.Time) (bool, error) {
	n, err := exec(ctx, q, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`, to, at, id, from)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return n > 0, nil
}

// AppendOrderNote adds a line to the order notes.
func AppendOrderNote(ctx context.Context, q Queryer, id int64, note string) error {
	return mustAffect(exec(ctx, q,
		`UPDATE orders SET notes = CASE WHEN notes = '' THEN ? ELSE notes || ? END WHERE id = ?`,
		note, "\n"+note, id))
}

// OrderShiftID returns the shift an order belongs to.
func OrderShiftID(ctx context.Context, q Queryer, orderID int64) (int64, error) {
	var id int64
	if err := get(ctx, q, &id, `SELECT shift_id FROM orders WHERE id = ?`, orderID); err != nil {
		return 0, err
	}
	return id, nil
}

// RejectPendingOrders rejects every order of the shift still waiting for
// staff, appending note to each, and returns their ids.
func RejectPendingOrders(ctx context.Context, q Queryer, shiftID int64, note string, at time.Time) ([]int64, error) {
	ids := []int64{}
	if err := selectAll(ctx, q, &ids, `SELECT id FROM orders WHERE shift_id = ? AND status = ? ORDER BY id`,
		shiftID, domain.StatusPending); err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	for _, id := range ids {
		if _, err := TransitionOrder(ctx, q, id, domain.StatusPending, domain.StatusRejected, at); err != nil {
			return nil, err
		}
		if err := AppendOrderNote(ctx, q, id, note); err != nil {
			return nil, err
		}
	}
	return ids, nil
}
