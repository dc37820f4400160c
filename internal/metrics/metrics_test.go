package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/orders/{id}", "418"))
	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+id, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/orders/{id}", "418"))
	assert.Equal(t, 3.0, after-before)
}

func TestBusinessMetrics(t *testing.T) {
	before := testutil.ToFloat64(salesTotal.WithLabelValues("pix"))
	RecordOrder("pos", "pix")
	RecordSale("pix", 42.5)
	RecordOrder("web", "pix")
	assert.InDelta(t, 42.5, testutil.ToFloat64(salesTotal.WithLabelValues("pix"))-before, 0.0001)

	SetLowStock(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(lowStockItems))

	ObserveCheckout(5*time.Millisecond, nil)
	ObserveCheckout(5*time.Millisecond, errors.New("boom"))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "foodtruck_orders_checkout_duration_seconds"))
	assert.True(t, strings.Contains(body, "foodtruck_stock_low_items 4"))
}
