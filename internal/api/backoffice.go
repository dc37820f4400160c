package api

import (
	"net/http"

	"foodtruck/pos/domain"
	"foodtruck/pos/internal/realtime"
	"foodtruck/pos/internal/store"
)

// Stock handlers

type stockItemRequest struct {
	Name        string  `json:"name" validate:"required,max=80"`
	Unit        string  `json:"unit" validate:"max=10"`
	Quantity    float64 `json:"quantity"`
	MinQuantity float64 `json:"min_quantity" validate:"gte=0"`
}

func (req stockItemRequest) item() domain.StockItem {
	return domain.StockItem{Name: req.Name, Unit: req.Unit, Quantity: req.Quantity, MinQuantity: req.MinQuantity}
}

func (h *Handler) listStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListStock(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.LowStock(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) createStockItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	var req stockItemRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	item := req.item()
	if err := h.store.CreateStockItem(r.Context(), &item); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *Handler) updateStockItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, ok := urlID(w, r, "stock item")
	if !ok {
		return
	}
	var req stockItemRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	item := req.item()
	item.ID = id
	if item.Unit == "" {
		item.Unit = "un"
	}
	if err := h.store.UpdateStockItem(r.Context(), &item); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) deleteStockItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, ok := urlID(w, r, "stock item")
	if !ok {
		return
	}
	if err := h.store.DeleteStockItem(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type adjustRequest struct {
	Delta float64 `json:"delta" validate:"required"`
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staff...) {
		return
	}
	id, ok := urlID(w, r, "stock item")
	if !ok {
		return
	}
	var req adjustRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	item, err := h.svc.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Expense handlers

type expenseRequest struct {
	Description string  `json:"description" validate:"required,max=200"`
	Category    string  `json:"category" validate:"max=60"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	ShiftID     *int64  `json:"shift_id"`
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staff...) {
		return
	}
	var req expenseRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	e := &domain.Expense{
		ShiftID:     req.ShiftID,
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		CreatedBy:   currentUser(r),
	}
	if err := h.svc.AddExpense(r.Context(), e); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.ExpenseFilter{ShiftID: int64(queryInt(r, "shift_id", 0))}
	if q.Get("from") != "" || q.Get("to") != "" {
		from, to, err := h.svc.DayRange(q.Get("from"), q.Get("to"))
		if err != nil {
			h.respondServiceError(w, r, err)
			return
		}
		f.From, f.To = from, to
	}
	expenses, err := h.store.ListExpenses(r.Context(), f)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, ok := urlID(w, r, "expense")
	if !ok {
		return
	}
	if err := h.store.DeleteExpense(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Print queue and remote procedures

func (h *Handler) listPrintQueue(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = domain.PrintPending
	} else if status == "all" {
		status = ""
	}
	jobs, err := h.store.ListPrintJobs(r.Context(), status)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, jobs)
}

func (h *Handler) markPrinted(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "print job")
	if !ok {
		return
	}
	if err := h.svc.MarkPrinted(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": domain.PrintPrinted})
}

func (h *Handler) rpcClearPrintQueue(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staff...) {
		return
	}
	n, err := h.svc.ClearPrintQueue(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"removed": n})
}

type rankingRequest struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Limit int    `json:"limit" validate:"gte=0,lte=100"`
}

func (h *Handler) rpcSalesRanking(w http.ResponseWriter, r *http.Request) {
	var req rankingRequest
	if r.ContentLength != 0 && !h.bindValid(w, r, &req) {
		return
	}
	h.writeRanking(w, r, req)
}

func (h *Handler) salesRanking(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.writeRanking(w, r, rankingRequest{From: q.Get("from"), To: q.Get("to"), Limit: queryInt(r, "limit", 10)})
}

func (h *Handler) writeRanking(w http.ResponseWriter, r *http.Request, req rankingRequest) {
	from, to, err := h.svc.DayRange(req.From, req.To)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	ranking, err := h.svc.SalesRanking(r.Context(), from, to, req.Limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ranking)
}

func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	q := r.URL.Query()
	from, to, err := h.svc.DayRange(q.Get("from"), q.Get("to"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	sum, err := h.svc.SalesSummary(r.Context(), from, to)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

// realtime upgrades to a WebSocket. Browsers cannot set headers on the
// handshake, so the token travels in the query string.
func (h *Handler) realtime(w http.ResponseWriter, r *http.Request) {
	if _, err := h.parseToken(r.URL.Query().Get("token")); err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	tables := realtime.ParseTables(r.URL.Query().Get("tables"))
	h.hub.ServeWS(w, r, tables)
}
