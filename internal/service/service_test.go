package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foodtruck/pos/domain"
	"foodtruck/pos/internal/pos"
	"foodtruck/pos/internal/realtime"
	"foodtruck/pos/internal/store"
	"foodtruck/pos/internal/testdb"
)

type fixture struct {
	svc    *Service
	store  *store.Store
	hub    *realtime.Hub
	events <-chan realtime.Event
	now    time.Time

	burger, fries domain.Product
	bacon         domain.Addon
	bun, patty    domain.StockItem
	centro        domain.DeliveryArea
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{now: time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)}
	f.store = store.New(testdb.New(t))
	f.store.SetClock(func() time.Time { return f.now })
	f.hub = realtime.NewHub(zap.NewNop())
	events, stop := f.hub.Subscribe(nil)
	t.Cleanup(stop)
	f.events = events

	shop := pos.Store{Name: "Truck", Phone: "(11) 98765-4321", CountryCode: "55", Currency: "R$"}
	f.svc = New(f.store, f.hub, shop, time.UTC, zap.NewNop())

	f.burger = domain.Product{Name: "Burger", Category: "burgers", Price: 20, Available: true}
	f.fries = domain.Product{Name: "Fries", Category: "sides", Price: 10, Available: true}
	require.NoError(t, f.store.CreateProduct(ctx, &f.burger))
	require.NoError(t, f.store.CreateProduct(ctx, &f.fries))
	f.bacon = domain.Addon{Name: "Bacon", Price: 4.5, Available: true}
	require.NoError(t, f.store.CreateAddon(ctx, &f.bacon))

	f.bun = domain.StockItem{Name: "Bun", Quantity: 10, MinQuantity: 2}
	f.patty = domain.StockItem{Name: "Patty", Quantity: 3, MinQuantity: 1}
	require.NoError(t, f.store.CreateStockItem(ctx, &f.bun))
	require.NoError(t, f.store.CreateStockItem(ctx, &f.patty))
	require.NoError(t, f.store.SetRecipe(ctx, f.burger.ID, []domain.ProductIngredient{
		{StockItemID: f.bun.ID, Quantity: 1},
		{StockItemID: f.patty.ID, Quantity: 1},
	}))

	f.centro = domain.DeliveryArea{Name: "Centro", Fee: 7, Active: true}
	require.NoError(t, f.store.CreateDeliveryArea(ctx, &f.centro))
	return f
}

func (f *fixture) open(t *testing.T) *domain.Shift {
	t.Helper()
	sh, err := f.svc.OpenShift(context.Background(), nil, 100)
	require.NoError(t, err)
	return sh
}

func (f *fixture) stock(t *testing.T, id int64) float64 {
	t.Helper()
	item, err := f.store.GetStockItem(context.Background(), id)
	require.NoError(t, err)
	return item.Quantity
}

// drain returns the tables of all events published so far.
func (f *fixture) drain() []string {
	var tables []string
	for {
		select {
		case ev := <-f.events:
			tables = append(tables, ev.Table+":"+ev.Type)
		default:
			return tables
		}
	}
}

func (f *fixture) burgerCart(payment string) CartRequest {
	return CartRequest{
		Type: domain.OrderPickup,
		Items: []CartItem{
			{ProductID: f.burger.ID, Quantity: 2, AddonIDs: []int64{f.bacon.ID}},
			{ProductID: f.fries.ID, Quantity: 1},
		},
		PaymentMethod: payment,
	}
}

func TestCheckoutRequiresOpenShift(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Checkout(context.Background(), CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentPix)})
	assert.ErrorIs(t, err, ErrNoOpenShift)
	assert.Equal(t, 10.0, f.stock(t, f.bun.ID))
}

func TestCheckoutPricesFromCatalogAndDeductsStock(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	f.drain()
	ctx := context.Background()

	req := CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentCash), CustomerPhone: "(11) 91234-5678"}
	req.DiscountType, req.DiscountValue = domain.DiscountPercent, 10
	req.ChangeFor = 100

	o, err := f.svc.Checkout(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), o.DailyNumber)
	assert.Equal(t, domain.StatusAccepted, o.Status)
	assert.Equal(t, domain.SourcePOS, o.Source)
	assert.Equal(t, "11912345678", o.CustomerPhone)
	assert.Equal(t, 59.0, o.Subtotal)
	assert.Equal(t, 5.9, o.DiscountAmount)
	assert.Equal(t, 53.1, o.Total)
	assert.Equal(t, 100.0, o.ChangeFor)
	require.Len(t, o.Items, 2)
	assert.Equal(t, 49.0, o.Items[0].LineTotal)
	assert.Contains(t, o.Items[0].Addons, "Bacon")

	assert.Equal(t, 8.0, f.stock(t, f.bun.ID))
	assert.Equal(t, 1.0, f.stock(t, f.patty.ID))

	jobs, err := f.store.ListPrintJobs(ctx, domain.PrintPending)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, o.ID, jobs[0].OrderID)
	assert.Contains(t, jobs[0].Content, "#1")

	events := f.drain()
	assert.Contains(t, events, "orders:INSERT")
	assert.Contains(t, events, "print_jobs:INSERT")
	assert.Contains(t, events, "stock_items:UPDATE")

	second, err := f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentPix)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.DailyNumber)
	assert.Equal(t, -1.0, f.stock(t, f.patty.ID), "a sale is never blocked by stock")
}

func TestCheckoutRejectsUnavailableItems(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	ctx := context.Background()

	f.fries.Available = false
	require.NoError(t, f.store.UpdateProduct(ctx, &f.fries))
	_, err := f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentPix)})
	assert.ErrorIs(t, err, ErrUnavailableProduct)

	req := CheckoutRequest{CartRequest: CartRequest{Type: domain.OrderPickup, PaymentMethod: domain.PaymentPix,
		Items: []CartItem{{ProductID: f.burger.ID, Quantity: 1, AddonIDs: []int64{999}}}}}
	_, err = f.svc.Checkout(ctx, req)
	assert.ErrorIs(t, err, ErrUnavailableAddon)

	orders, err := f.store.ListOrders(ctx, store.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckoutIsAtomic(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	ctx := context.Background()

	_, err := f.store.DB().Exec(`DROP TABLE print_jobs`)
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentPix)})
	require.Error(t, err)

	orders, err := f.store.ListOrders(ctx, store.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 10.0, f.stock(t, f.bun.ID))
	assert.Equal(t, 3.0, f.stock(t, f.patty.ID))
}

func TestCheckoutRetriesTakenDailyNumber(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	ctx := context.Background()
	first, err := f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentPix)})
	require.NoError(t, err)

	calls := 0
	f.svc.sequence = func(ctx context.Context, q store.Queryer, shiftID int64) (int64, error) {
		calls++
		if calls == 1 {
			return first.DailyNumber, nil
		}
		return store.NextDailyNumber(ctx, q, shiftID)
	}
	o, err := f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentPix)})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(2), o.DailyNumber)
	assert.Equal(t, 6.0, f.stock(t, f.bun.ID))
}

func TestCheckoutGivesUpOnPersistentCollisions(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	ctx := context.Background()
	first, err := f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentPix)})
	require.NoError(t, err)

	calls := 0
	f.svc.sequence = func(context.Context, store.Queryer, int64) (int64, error) {
		calls++
		return first.DailyNumber, nil
	}
	_, err = f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentPix)})
	assert.ErrorIs(t, err, ErrSequenceExhausted)
	assert.Equal(t, maxSequenceAttempts, calls)

	_, err = f.svc.PlaceWebOrder(ctx, WebOrderRequest{CartRequest: f.burgerCart(domain.PaymentPix),
		CustomerName: "Gil", CustomerPhone: "11912345678"})
	assert.ErrorIs(t, err, ErrSequenceExhausted)

	orders, err := f.store.ListOrders(ctx, store.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 8.0, f.stock(t, f.bun.ID))
	assert.Equal(t, 1.0, f.stock(t, f.patty.ID))
	jobs, err := f.store.ListPrintJobs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestDeliveryRules(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	ctx := context.Background()

	cart := f.burgerCart(domain.PaymentPix)
	cart.Type = domain.OrderDelivery
	_, err := f.svc.Quote(ctx, cart)
	assert.ErrorIs(t, err, pos.ErrDeliveryAreaRequired)

	missing := int64(999)
	cart.DeliveryAreaID = &missing
	_, err = f.svc.Quote(ctx, cart)
	assert.ErrorIs(t, err, ErrInvalidDeliveryArea)

	cart.DeliveryAreaID = &f.centro.ID
	q, err := f.svc.Quote(ctx, cart)
	require.NoError(t, err)
	assert.Equal(t, 7.0, q.DeliveryFee)
	assert.Equal(t, 66.0, q.Total)

	pickup := f.burgerCart(domain.PaymentPix)
	pickup.DeliveryAreaID = &f.centro.ID
	q, err = f.svc.Quote(ctx, pickup)
	require.NoError(t, err)
	assert.Zero(t, q.DeliveryFee)
}

func TestWebOrderLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := WebOrderRequest{CartRequest: f.burgerCart(domain.PaymentCash), CustomerName: "Ana", CustomerPhone: "+55 (11) 91234-5678"}
	_, err := f.svc.PlaceWebOrder(ctx, req)
	assert.ErrorIs(t, err, ErrStoreClosed)

	f.open(t)
	f.drain()

	bad := req
	bad.CustomerPhone = "1234"
	_, err = f.svc.PlaceWebOrder(ctx, bad)
	assert.ErrorIs(t, err, pos.ErrInvalidPhone)

	noAddress := req
	noAddress.Type = domain.OrderDelivery
	noAddress.DeliveryAreaID = &f.centro.ID
	_, err = f.svc.PlaceWebOrder(ctx, noAddress)
	assert.ErrorIs(t, err, ErrAddressRequired)

	req.DiscountType, req.DiscountValue = domain.DiscountFlat, 50
	receipt, err := f.svc.PlaceWebOrder(ctx, req)
	require.NoError(t, err)
	o := receipt.Order
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, domain.SourceWeb, o.Source)
	assert.Equal(t, "5511912345678", o.CustomerPhone)
	assert.Equal(t, 59.0, o.Total, "customers cannot grant themselves discounts")
	assert.True(t, strings.HasPrefix(receipt.WhatsAppURL, "https://wa.me/5511987654321?text="))
	assert.Equal(t, 10.0, f.stock(t, f.bun.ID), "pending orders do not touch stock")
	assert.Equal(t, []string{"orders:INSERT"}, f.drain())

	tracked, err := f.svc.TrackOrder(ctx, o.PublicID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, tracked.ID)

	accepted, err := f.svc.AcceptWebOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, accepted.Status)
	assert.Equal(t, 8.0, f.stock(t, f.bun.ID))

	_, err = f.svc.AcceptWebOrder(ctx, o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.UpdateOrderStatus(ctx, o.ID, domain.StatusAccepted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 8.0, f.stock(t, f.bun.ID), "stock is deducted exactly once")

	jobs, err := f.store.ListPrintJobs(ctx, domain.PrintPending)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	for _, status := range []string{domain.StatusPreparing, domain.StatusReady, domain.StatusCompleted} {
		o, err = f.svc.UpdateOrderStatus(ctx, o.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, o.Status)
	}
	_, err = f.svc.UpdateOrderStatus(ctx, o.ID, domain.StatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.AcceptWebOrder(ctx, 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRejectWebOrder(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	ctx := context.Background()

	receipt, err := f.svc.PlaceWebOrder(ctx, WebOrderRequest{
		CartRequest:  f.burgerCart(domain.PaymentPix),
		CustomerName: "Bia", CustomerPhone: "11 91234 5678", Notes: "no onions",
	})
	require.NoError(t, err)

	rejected, err := f.svc.RejectWebOrder(ctx, receipt.Order.ID, "out of buns")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, "no onions\nRejected: out of buns", rejected.Notes)
	assert.Equal(t, 10.0, f.stock(t, f.bun.ID))

	_, err = f.svc.AcceptWebOrder(ctx, receipt.Order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestShiftOpenReuseCloseReopen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CurrentShift(ctx)
	assert.ErrorIs(t, err, ErrNoOpenShift)
	_, err = f.svc.CloseShift(ctx)
	assert.ErrorIs(t, err, ErrNoOpenShift)

	sh := f.open(t)
	assert.Equal(t, "2026-03-14", sh.Name)
	again := f.open(t)
	assert.Equal(t, sh.ID, again.ID)

	_, err = f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentCash)})
	require.NoError(t, err)
	_, err = f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentPix)})
	require.NoError(t, err)
	web, err := f.svc.PlaceWebOrder(ctx, WebOrderRequest{CartRequest: f.burgerCart(domain.PaymentCredit),
		CustomerName: "Caio", CustomerPhone: "11912345678"})
	require.NoError(t, err)
	_, err = f.svc.RejectWebOrder(ctx, web.Order.ID, "")
	require.NoError(t, err)
	require.NoError(t, f.svc.AddExpense(ctx, &domain.Expense{Description: "Ice", Amount: 12.499}))

	closed, err := f.svc.CloseShift(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftClosed, closed.Status)
	assert.Equal(t, int64(2), closed.TotalOrders)
	assert.Equal(t, 118.0, closed.TotalSales)
	assert.Equal(t, 59.0, closed.TotalCash)
	assert.Equal(t, 59.0, closed.TotalPix)
	assert.Zero(t, closed.TotalCredit)
	assert.Equal(t, 12.5, closed.TotalExpenses)

	reopened := f.open(t)
	assert.Equal(t, sh.ID, reopened.ID)
	assert.Equal(t, domain.ShiftOpen, reopened.Status)
	assert.Nil(t, reopened.ClosedAt)

	o, err := f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentCash)})
	require.NoError(t, err)
	assert.Equal(t, int64(4), o.DailyNumber, "numbering continues on a reopened shift")

	f.now = f.now.Add(24 * time.Hour)
	_, err = f.svc.OpenShift(ctx, nil, 0)
	assert.ErrorIs(t, err, ErrShiftConflict)

	shifts, err := f.svc.ListShifts(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, shifts, 1)
}

func TestPendingWebOrdersAreNotSales(t *testing.T) {
	f := newFixture(t)
	sh := f.open(t)
	ctx := context.Background()

	cash, err := f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentCash)})
	require.NoError(t, err)
	accepted, err := f.svc.PlaceWebOrder(ctx, WebOrderRequest{CartRequest: f.burgerCart(domain.PaymentPix),
		CustomerName: "Edu", CustomerPhone: "11912345678"})
	require.NoError(t, err)
	_, err = f.svc.AcceptWebOrder(ctx, accepted.Order.ID)
	require.NoError(t, err)
	pending, err := f.svc.PlaceWebOrder(ctx, WebOrderRequest{CartRequest: f.burgerCart(domain.PaymentCredit),
		CustomerName: "Fabi", CustomerPhone: "11912345678"})
	require.NoError(t, err)

	from, to, err := f.svc.DayRange("", "")
	require.NoError(t, err)
	sum, err := f.svc.SalesSummary(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Orders)
	assert.Equal(t, 118.0, sum.Revenue)
	assert.Zero(t, sum.ByPayment[domain.PaymentCredit])
	ranking, err := f.svc.SalesRanking(ctx, from, to, 5)
	require.NoError(t, err)
	require.NotEmpty(t, ranking)
	assert.Equal(t, int64(4), ranking[0].UnitsSold)
	f.drain()

	closed, err := f.svc.CloseShift(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), closed.TotalOrders)
	assert.Equal(t, 118.0, closed.TotalSales)
	assert.Zero(t, closed.TotalCredit)
	assert.Equal(t, []string{"orders:UPDATE", "shifts:UPDATE"}, f.drain())

	left, err := f.svc.GetOrder(ctx, pending.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, left.Status)
	assert.Contains(t, left.Notes, "Rejected: shift closed")
	assert.Equal(t, 6.0, f.stock(t, f.bun.ID), "auto-rejected orders never touch stock")

	_, err = f.svc.RejectWebOrder(ctx, pending.Order.ID, "too late")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.UpdateOrderStatus(ctx, cash.ID, domain.StatusCancelled)
	assert.ErrorIs(t, err, ErrShiftClosed)
	o, err := f.svc.UpdateOrderStatus(ctx, cash.ID, domain.StatusCompleted)
	require.NoError(t, err, "changes that keep the order counted are still allowed")
	assert.Equal(t, domain.StatusCompleted, o.Status)

	after, err := f.svc.GetShift(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, 118.0, after.TotalSales)
	assert.Equal(t, int64(2), after.TotalOrders)
}

func TestShiftNameUsesStoreTimezone(t *testing.T) {
	f := newFixture(t)
	loc := time.FixedZone("BRT", -3*60*60)
	f.svc = New(f.store, nil, f.svc.Shop(), loc, zap.NewNop())
	f.now = time.Date(2026, 3, 15, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-14", f.svc.ShiftName())
}

func TestPrintQueueOperations(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentPix)})
		require.NoError(t, err)
	}
	jobs, err := f.store.ListPrintJobs(ctx, domain.PrintPending)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	require.NoError(t, f.svc.MarkPrinted(ctx, jobs[0].ID))
	assert.True(t, errors.Is(f.svc.MarkPrinted(ctx, jobs[0].ID), ErrNotFound))

	n, err := f.svc.ClearPrintQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestReportsAndRanges(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	ctx := context.Background()
	_, err := f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentCash)})
	require.NoError(t, err)

	from, to, err := f.svc.DayRange("", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), to)

	_, _, err = f.svc.DayRange("2026-03-10", "2026-03-01")
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, _, err = f.svc.DayRange("yesterday", "")
	assert.ErrorIs(t, err, ErrInvalidRange)

	ranking, err := f.svc.SalesRanking(ctx, from, to, 5)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, "Burger", ranking[0].ProductName)

	sum, err := f.svc.SalesSummary(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sum.Orders)
	assert.Equal(t, 59.0, sum.Revenue)
}

func TestLowStockSweepAndAdjust(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item, err := f.svc.AdjustStock(ctx, f.patty.ID, -2.5)
	require.NoError(t, err)
	assert.Equal(t, 0.5, item.Quantity)

	low, err := f.svc.SweepLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Patty", low[0].Name)
}

func TestTrackOrderRejectsMalformedIDs(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.TrackOrder(context.Background(), "1 OR 1=1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerWhatsAppAndReceipt(t *testing.T) {
	f := newFixture(t)
	f.open(t)
	ctx := context.Background()

	anon, err := f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentPix)})
	require.NoError(t, err)
	_, err = f.svc.CustomerWhatsApp(ctx, anon.ID)
	assert.ErrorIs(t, err, pos.ErrInvalidPhone)

	o, err := f.svc.Checkout(ctx, CheckoutRequest{CartRequest: f.burgerCart(domain.PaymentPix), CustomerName: "Duda", CustomerPhone: "11912345678"})
	require.NoError(t, err)
	link, err := f.svc.CustomerWhatsApp(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/5511912345678?text="))

	html, err := f.svc.Receipt(ctx, o.ID)
	require.NoError(t, err)
	assert.Contains(t, html, "Duda")
	assert.Contains(t, html, "#2")
}
