package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"foodtruck/pos/internal/service"
	"foodtruck/pos/internal/store"
)

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req service.CartRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	q, err := h.svc.Quote(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staff...) {
		return
	}
	var req service.CheckoutRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	req.CreatedBy = currentUser(r)
	order, err := h.svc.Checkout(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *Handler) placeWebOrder(w http.ResponseWriter, r *http.Request) {
	var req service.WebOrderRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	receipt, err := h.svc.PlaceWebOrder(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, receipt)
}

type trackingView struct {
	DailyNumber int64     `json:"daily_number"`
	Status      string    `json:"status"`
	Type        string    `json:"type"`
	Total       float64   `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// trackWebOrder exposes only what a customer needs to follow an order.
func (h *Handler) trackWebOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.TrackOrder(r.Context(), chi.URLParam(r, "publicID"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trackingView{
		DailyNumber: o.DailyNumber,
		Status:      o.Status,
		Type:        o.Type,
		Total:       o.Total,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.OrderFilter{
		Status: q.Get("status"),
		Source: q.Get("source"),
		Limit:  queryInt(r, "limit", 100),
	}
	if shiftID := queryInt(r, "shift_id", 0); shiftID > 0 {
		f.ShiftID = int64(shiftID)
	}
	if q.Get("from") != "" || q.Get("to") != "" {
		from, to, err := h.svc.DayRange(q.Get("from"), q.Get("to"))
		if err != nil {
			h.respondServiceError(w, r, err)
			return
		}
		f.From, f.To = from, to
	}
	orders, err := h.svc.ListOrders(r.Context(), f)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "order")
	if !ok {
		return
	}
	o, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handler) acceptOrder(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staff...) {
		return
	}
	id, ok := urlID(w, r, "order")
	if !ok {
		return
	}
	o, err := h.svc.AcceptWebOrder(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handler) rejectOrder(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staff...) {
		return
	}
	id, ok := urlID(w, r, "order")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason" validate:"max=300"`
	}
	if r.ContentLength != 0 && !h.bindValid(w, r, &req) {
		return
	}
	o, err := h.svc.RejectWebOrder(r.Context(), id, req.Reason)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted preparing ready completed rejected cancelled"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staff...) {
		return
	}
	id, ok := urlID(w, r, "order")
	if !ok {
		return
	}
	var req statusRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	o, err := h.svc.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handler) orderReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "order")
	if !ok {
		return
	}
	html, err := h.svc.Receipt(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (h *Handler) orderWhatsApp(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "order")
	if !ok {
		return
	}
	link, err := h.svc.CustomerWhatsApp(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": link})
}

// Shift handlers

type openShiftRequest struct {
	OpeningCash float64 `json:"opening_cash" validate:"gte=0"`
}

func (h *Handler) openShift(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staff...) {
		return
	}
	var req openShiftRequest
	if r.ContentLength != 0 && !h.bindValid(w, r, &req) {
		return
	}
	shift, err := h.svc.OpenShift(r.Context(), currentUser(r), req.OpeningCash)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, shift)
}

func (h *Handler) closeShift(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staff...) {
		return
	}
	shift, err := h.svc.CloseShift(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, shift)
}

func (h *Handler) currentShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.svc.CurrentShift(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, shift)
}

func (h *Handler) listShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.svc.ListShifts(r.Context(), queryInt(r, "limit", 30))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, shifts)
}

func (h *Handler) getShift(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "shift")
	if !ok {
		return
	}
	shift, err := h.svc.GetShift(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, shift)
}
