package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"foodtruck/pos/domain"
	"foodtruck/pos/internal/metrics"
	"foodtruck/pos/internal/pos"
	"foodtruck/pos/internal/realtime"
	"foodtruck/pos/internal/service"
	"foodtruck/pos/internal/store"
)

type ctxKey string

const (
	ctxUserID ctxKey = "userID"
	ctxRole   ctxKey = "role"
)

type Options struct {
	Secret         string
	CORSOrigins    []string
	TrustedProxies []string
	WebOrderRPS    float64
	WebOrderBurst  int
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	svc      *service.Service
	store    *store.Store
	hub      *realtime.Hub
	secret   string
	origins  []string
	proxies  proxySet
	limiter  *RateLimiter
	validate *validator.Validate
	log      *zap.Logger
}

// New constructs a Handler.
func New(svc *service.Service, st *store.Store, hub *realtime.Hub, log *zap.Logger, opts Options) *Handler {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Handler{
		svc:      svc,
		store:    st,
		hub:      hub,
		secret:   opts.Secret,
		origins:  origins,
		proxies:  parseProxies(opts.TrustedProxies, log),
		limiter:  NewRateLimiter(opts.WebOrderRPS, opts.WebOrderBurst),
		validate: validator.New(),
		log:      log.Named("api"),
	}
}

// Limiter exposes the web order limiter so its cleanup loop can be started.
func (h *Handler) Limiter() *RateLimiter {
	return h.limiter
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.realIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Customer facing.
	r.Get("/menu", h.menu)
	r.Get("/menu/categories", h.menuCategories)
	r.Get("/delivery-areas", h.listDeliveryAreas)
	r.With(h.limiter.Handler).Post("/web-orders", h.placeWebOrder)
	r.Get("/web-orders/{publicID}", h.trackWebOrder)
	r.Get("/realtime", h.realtime)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/register", h.register)
			protected.Post("/reset-password", h.resetPassword)
			protected.Get("/profiles", h.listProfiles)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Post("/cart/quote", h.quote)
		pr.Post("/checkout", h.checkout)

		pr.Route("/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Get("/{id}", h.getOrder)
			r.Post("/{id}/accept", h.acceptOrder)
			r.Post("/{id}/reject", h.rejectOrder)
			r.Post("/{id}/status", h.updateOrderStatus)
			r.Get("/{id}/receipt", h.orderReceipt)
			r.Get("/{id}/whatsapp", h.orderWhatsApp)
		})

		pr.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.listShifts)
			r.Get("/current", h.currentShift)
			r.Post("/open", h.openShift)
			r.Post("/close", h.closeShift)
			r.Get("/{id}", h.getShift)
		})

		pr.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Get("/{id}", h.getProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
			r.Get("/{id}/recipe", h.getRecipe)
			r.Put("/{id}/recipe", h.setRecipe)
		})

		pr.Route("/addons", func(r chi.Router) {
			r.Get("/", h.listAddons)
			r.Post("/", h.createAddon)
			r.Put("/{id}", h.updateAddon)
			r.Delete("/{id}", h.deleteAddon)
		})

		pr.Get("/delivery-areas/all", h.listAllDeliveryAreas)
		pr.Post("/delivery-areas", h.createDeliveryArea)
		pr.Put("/delivery-areas/{id}", h.updateDeliveryArea)
		pr.Delete("/delivery-areas/{id}", h.deleteDeliveryArea)

		pr.Route("/stock", func(r chi.Router) {
			r.Get("/", h.listStock)
			r.Post("/", h.createStockItem)
			r.Get("/low", h.lowStock)
			r.Put("/{id}", h.updateStockItem)
			r.Delete("/{id}", h.deleteStockItem)
			r.Post("/{id}/adjust", h.adjustStock)
		})

		pr.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.listExpenses)
			r.Post("/", h.createExpense)
			r.Delete("/{id}", h.deleteExpense)
		})

		pr.Route("/print-queue", func(r chi.Router) {
			r.Get("/", h.listPrintQueue)
			r.Post("/{id}/printed", h.markPrinted)
		})

		pr.Route("/rpc", func(r chi.Router) {
			r.Post("/clear_print_queue", h.rpcClearPrintQueue)
			r.Post("/sales_ranking", h.rpcSalesRanking)
		})

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/summary", h.salesSummary)
			r.Get("/ranking", h.salesRanking)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DB().PingContext(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondServiceError maps domain errors to HTTP statuses in one place.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		respondError(w, http.StatusBadRequest, validationMessage(verrs))
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrNoOpenShift),
		errors.Is(err, service.ErrStoreClosed),
		errors.Is(err, service.ErrShiftConflict),
		errors.Is(err, service.ErrShiftClosed),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrSequenceExhausted):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnavailableProduct),
		errors.Is(err, service.ErrUnavailableAddon),
		errors.Is(err, service.ErrInvalidDeliveryArea),
		errors.Is(err, service.ErrAddressRequired),
		errors.Is(err, service.ErrCustomerRequired),
		errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, pos.ErrEmptyCart),
		errors.Is(err, pos.ErrInvalidQuantity),
		errors.Is(err, pos.ErrInvalidOrderType),
		errors.Is(err, pos.ErrDeliveryAreaRequired),
		errors.Is(err, pos.ErrInvalidDiscount),
		errors.Is(err, pos.ErrInvalidPayment),
		errors.Is(err, pos.ErrInsufficientChange),
		errors.Is(err, pos.ErrInvalidPhone):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrUnknownStockItem):
		respondError(w, http.StatusBadRequest, err.Error())
	case store.IsUniqueViolation(err):
		respondError(w, http.StatusConflict, "already exists")
	case store.IsForeignKeyViolation(err):
		respondError(w, http.StatusBadRequest, "referenced record does not exist")
	default:
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}
	return strings.Join(msgs, "; ")
}

// decodeValid decodes the body and runs the struct validation tags.
func (h *Handler) decodeValid(r *http.Request, dest interface{}) error {
	if err := decodeJSON(r, dest); err != nil {
		return err
	}
	return h.validate.Struct(dest)
}

func (h *Handler) bindValid(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	err := h.decodeValid(r, dest)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		respondError(w, http.StatusBadRequest, validationMessage(verrs))
	} else {
		respondError(w, http.StatusBadRequest, err.Error())
	}
	return false
}

func urlID(w http.ResponseWriter, r *http.Request, what string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid "+what+" id")
		return 0, false
	}
	return id, true
}

func currentUser(r *http.Request) *int64 {
	uid, ok := r.Context().Value(ctxUserID).(int64)
	if !ok {
		return nil
	}
	return &uid
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

var staff = []string{domain.RoleAdmin, domain.RoleCashier}

// Helpers
func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
