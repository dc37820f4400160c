package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"foodtruck/pos/domain"
	"foodtruck/pos/internal/pos"
	"foodtruck/pos/internal/realtime"
	"foodtruck/pos/internal/service"
	"foodtruck/pos/internal/store"
	"foodtruck/pos/internal/testdb"
)

type testAPI struct {
	h       *Handler
	router  http.Handler
	store   *store.Store
	admin   string
	cashier string
	burger  domain.Product
}

func newTestAPI(t *testing.T, opts Options) *testAPI {
	t.Helper()
	ctx := context.Background()
	st := store.New(testdb.New(t))
	hub := realtime.NewHub(zap.NewNop())
	shop := pos.Store{Name: "Truck", Phone: "11987654321", CountryCode: "55", Currency: "R$"}
	svc := service.New(st, hub, shop, time.UTC, zap.NewNop())
	if opts.Secret == "" {
		opts.Secret = "test-secret"
	}
	h := New(svc, st, hub, zap.NewNop(), opts)

	a := &testAPI{h: h, router: h.Router(), store: st}
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &domain.Profile{Email: "owner@truck.com", Password: string(hash), Role: domain.RoleAdmin}
	cashier := &domain.Profile{Email: "cash@truck.com", Password: string(hash), Role: domain.RoleCashier}
	require.NoError(t, st.CreateProfile(ctx, admin))
	require.NoError(t, st.CreateProfile(ctx, cashier))
	a.admin, err = h.generateToken(admin.ID, admin.Role)
	require.NoError(t, err)
	a.cashier, err = h.generateToken(cashier.ID, cashier.Role)
	require.NoError(t, err)

	a.burger = domain.Product{Name: "Burger", Category: "Burgers", Price: 20, Available: true}
	require.NoError(t, st.CreateProduct(ctx, &a.burger))
	require.NoError(t, st.CreateProduct(ctx, &domain.Product{Name: "Secret", Category: "Hidden", Price: 1}))
	return a
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a *testAPI) cart() map[string]any {
	return map[string]any{
		"type":           "pickup",
		"payment_method": "pix",
		"items":          []map[string]any{{"product_id": a.burger.ID, "quantity": 2}},
	}
}

func TestHealthAndPublicMenu(t *testing.T) {
	a := newTestAPI(t, Options{})

	rec := a.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/menu", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	menu := decode[[]domain.Product](t, rec)
	require.Len(t, menu, 1)
	assert.Equal(t, "Burger", menu[0].Name)

	rec = a.do(t, http.MethodGet, "/menu?category=drinks", "", nil)
	assert.Empty(t, decode[[]domain.Product](t, rec))

	rec = a.do(t, http.MethodGet, "/menu/categories", "", nil)
	assert.Equal(t, []string{"Burgers"}, decode[[]string](t, rec))

	rec = a.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginAndRoles(t *testing.T) {
	a := newTestAPI(t, Options{})

	rec := a.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "OWNER@truck.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	auth := decode[authResponse](t, rec)
	assert.NotEmpty(t, auth.Token)
	assert.Empty(t, auth.Profile.Password)

	rec = a.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "owner@truck.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodGet, "/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = a.do(t, http.MethodGet, "/orders", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	newUser := map[string]string{"email": "new@truck.com", "password": "secret123", "role": "cashier"}
	rec = a.do(t, http.MethodPost, "/auth/register", a.cashier, newUser)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodPost, "/auth/register", a.admin, newUser)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = a.do(t, http.MethodPost, "/auth/register", a.admin, newUser)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = a.do(t, http.MethodPost, "/auth/register", a.admin, map[string]string{"email": "bad", "password": "x", "role": "chef"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/products", a.cashier, map[string]any{"name": "Soda", "category": "Drinks", "price": 6})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodPost, "/products", a.admin, map[string]any{"name": "Soda", "category": "Drinks", "price": 6})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decode[domain.Product](t, rec).Available)
}

func TestCheckoutFlow(t *testing.T) {
	a := newTestAPI(t, Options{})

	rec := a.do(t, http.MethodPost, "/checkout", a.cashier, a.cart())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "no open shift")

	rec = a.do(t, http.MethodPost, "/shifts/open", a.cashier, map[string]any{"opening_cash": 50})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	shift := decode[domain.Shift](t, rec)
	assert.Equal(t, domain.ShiftOpen, shift.Status)

	rec = a.do(t, http.MethodPost, "/cart/quote", a.cashier, a.cart())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 40.0, decode[service.Quote](t, rec).Total)

	rec = a.do(t, http.MethodPost, "/checkout", a.cashier, a.cart())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[domain.Order](t, rec)
	assert.Equal(t, int64(1), order.DailyNumber)
	assert.Equal(t, 40.0, order.Total)
	require.NotNil(t, order.CreatedBy)

	withPrice := a.cart()
	withPrice["unit_price"] = 0.01
	rec = a.do(t, http.MethodPost, "/checkout", a.cashier, withPrice)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "client prices are refused")

	delivery := a.cart()
	delivery["type"] = "delivery"
	rec = a.do(t, http.MethodPost, "/checkout", a.cashier, delivery)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "neighborhood")

	rec = a.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), a.cashier, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[domain.Order](t, rec).Items, 1)

	rec = a.do(t, http.MethodGet, fmt.Sprintf("/orders/%d/receipt", order.ID), a.cashier, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))

	rec = a.do(t, http.MethodGet, "/print-queue", a.cashier, nil)
	assert.Len(t, decode[[]domain.PrintJob](t, rec), 1)
	rec = a.do(t, http.MethodPost, "/rpc/clear_print_queue", a.cashier, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[map[string]int64](t, rec)["removed"])

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/status", order.ID), a.cashier, map[string]string{"status": "ready"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/status", order.ID), a.cashier, map[string]string{"status": "preparing"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodGet, "/orders/999", a.cashier, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(t, http.MethodGet, "/orders/abc", a.cashier, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/rpc/sales_ranking", a.cashier, map[string]any{"limit": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	ranking := decode[[]store.RankingEntry](t, rec)
	require.Len(t, ranking, 1)
	assert.Equal(t, int64(2), ranking[0].UnitsSold)

	rec = a.do(t, http.MethodGet, "/reports/summary", a.cashier, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodGet, "/reports/summary", a.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 40.0, decode[store.Summary](t, rec).Revenue)
	rec = a.do(t, http.MethodGet, "/reports/summary?from=2026-13-01", a.admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/shifts/close", a.cashier, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	closed := decode[domain.Shift](t, rec)
	assert.Equal(t, 40.0, closed.TotalPix)
	assert.Equal(t, int64(1), closed.TotalOrders)
}

func TestWebOrderFlow(t *testing.T) {
	a := newTestAPI(t, Options{WebOrderBurst: 10})
	body := a.cart()
	body["customer_name"] = "Ana"
	body["customer_phone"] = "(11) 91234-5678"

	rec := a.do(t, http.MethodPost, "/web-orders", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "closed")

	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/shifts/open", a.admin, nil).Code)

	rec = a.do(t, http.MethodPost, "/web-orders", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	receipt := decode[service.WebOrderReceipt](t, rec)
	assert.Equal(t, domain.StatusPending, receipt.Order.Status)
	assert.Contains(t, receipt.WhatsAppURL, "https://wa.me/5511987654321")

	rec = a.do(t, http.MethodGet, "/web-orders/"+receipt.Order.PublicID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[map[string]any](t, rec)
	assert.Equal(t, "pending", view["status"])
	assert.NotContains(t, view, "customer_phone")

	rec = a.do(t, http.MethodGet, "/web-orders/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	path := fmt.Sprintf("/orders/%d/accept", receipt.Order.ID)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, path, a.cashier, nil).Code)
	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPost, path, a.cashier, nil).Code)

	rec = a.do(t, http.MethodGet, fmt.Sprintf("/orders/%d/whatsapp", receipt.Order.ID), a.cashier, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["url"], "https://wa.me/5511912345678")

	bad := a.cart()
	bad["customer_name"] = "Bob"
	bad["customer_phone"] = "123"
	rec = a.do(t, http.MethodPost, "/web-orders", "", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebOrdersAreRateLimited(t *testing.T) {
	a := newTestAPI(t, Options{WebOrderRPS: 0.001, WebOrderBurst: 1})
	body := a.cart()

	rec := a.do(t, http.MethodPost, "/web-orders", "", body)
	assert.NotEqual(t, http.StatusTooManyRequests, rec.Code)
	rec = a.do(t, http.MethodPost, "/web-orders", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1, a.h.Limiter().size())

	a.h.Limiter().Cleanup(time.Hour)
	assert.Equal(t, 1, a.h.Limiter().size())
	time.Sleep(5 * time.Millisecond)
	a.h.Limiter().Cleanup(time.Millisecond)
	assert.Equal(t, 0, a.h.Limiter().size())
}

func TestStockAndExpenses(t *testing.T) {
	a := newTestAPI(t, Options{})

	rec := a.do(t, http.MethodPost, "/stock", a.admin, map[string]any{"name": "Bun", "quantity": 5, "min_quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[domain.StockItem](t, rec)

	rec = a.do(t, http.MethodPut, fmt.Sprintf("/products/%d/recipe", a.burger.ID), a.admin,
		map[string]any{"ingredients": []map[string]any{{"stock_item_id": item.ID, "quantity": 1}}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = a.do(t, http.MethodPut, fmt.Sprintf("/products/%d/recipe", a.burger.ID), a.admin,
		map[string]any{"ingredients": []map[string]any{{"stock_item_id": 999, "quantity": 1}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "unknown stock item")

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/stock/%d/adjust", item.ID), a.cashier, map[string]any{"delta": -3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, decode[domain.StockItem](t, rec).Quantity)

	rec = a.do(t, http.MethodGet, "/stock/low", a.cashier, nil)
	assert.Len(t, decode[[]domain.StockItem](t, rec), 1)

	rec = a.do(t, http.MethodPost, "/expenses", a.cashier, map[string]any{"description": "Gas", "amount": 30})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, decode[domain.Expense](t, rec).ShiftID)
	rec = a.do(t, http.MethodPost, "/expenses", a.cashier, map[string]any{"description": "Gas", "amount": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/expenses", a.cashier, nil)
	assert.Len(t, decode[[]domain.Expense](t, rec), 1)

	rec = a.do(t, http.MethodPost, "/delivery-areas", a.admin, map[string]any{"name": "Centro", "fee": 5})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = a.do(t, http.MethodGet, "/delivery-areas", "", nil)
	assert.Len(t, decode[[]domain.DeliveryArea](t, rec), 1)
}

func TestRealtimeRequiresToken(t *testing.T) {
	a := newTestAPI(t, Options{})
	rec := a.do(t, http.MethodGet, "/realtime?tables=orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func (a *testAPI) postFrom(t *testing.T, path, forwardedFor string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec.Code
}

func TestWebOrderLimitIgnoresForgedForwardedFor(t *testing.T) {
	a := newTestAPI(t, Options{WebOrderRPS: 0.001, WebOrderBurst: 1})

	limited := 0
	for i := 0; i < 5; i++ {
		if a.postFrom(t, "/web-orders", fmt.Sprintf("203.0.113.%d", i+1)) == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 4, limited)
	assert.Equal(t, 1, a.h.Limiter().size())
}

func TestWebOrderLimitTrustsConfiguredProxy(t *testing.T) {
	// httptest requests come from 192.0.2.1.
	a := newTestAPI(t, Options{WebOrderRPS: 0.001, WebOrderBurst: 1, TrustedProxies: []string{"192.0.2.0/24"}})

	for i := 0; i < 3; i++ {
		assert.NotEqual(t, http.StatusTooManyRequests, a.postFrom(t, "/web-orders", fmt.Sprintf("203.0.113.%d", i+1)))
	}
	assert.Equal(t, 3, a.h.Limiter().size())
	assert.Equal(t, http.StatusTooManyRequests, a.postFrom(t, "/web-orders", "203.0.113.1"))
}

func TestParseProxies(t *testing.T) {
	set := parseProxies([]string{"10.0.0.0/8", " 127.0.0.1 ", "not-an-ip", "300.1.1.1/8", ""}, zap.NewNop())
	require.Len(t, set, 2)

	assert.True(t, set.trusts("10.1.2.3:4000"))
	assert.True(t, set.trusts("127.0.0.1:80"))
	assert.True(t, set.trusts("[::ffff:10.9.9.9]:80"))
	assert.False(t, set.trusts("127.0.0.2:80"))
	assert.False(t, set.trusts("garbage"))
	assert.False(t, proxySet(nil).trusts("10.1.2.3:4000"))
}
