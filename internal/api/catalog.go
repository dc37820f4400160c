package api

import (
	"net/http"

	"foodtruck/pos/domain"
	"foodtruck/pos/internal/pos"
)

func (h *Handler) menu(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pos.FilterByCategory(products, r.URL.Query().Get("category")))
}

func (h *Handler) menuCategories(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pos.Categories(products))
}

// Product handlers

type productRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"max=500"`
	Category    string  `json:"category" validate:"required,max=60"`
	Price       float64 `json:"price" validate:"gte=0"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
	Available   *bool   `json:"available"`
	SortOrder   int     `json:"sort_order"`
}

func (req productRequest) product() domain.Product {
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	return domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Available:   available,
		SortOrder:   req.SortOrder,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "product")
	if !ok {
		return
	}
	p, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	var req productRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	p := req.product()
	if err := h.store.CreateProduct(r.Context(), &p); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, ok := urlID(w, r, "product")
	if !ok {
		return
	}
	var req productRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	p := req.product()
	p.ID = id
	if err := h.store.UpdateProduct(r.Context(), &p); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, ok := urlID(w, r, "product")
	if !ok {
		return
	}
	archived, err := h.store.DeleteProduct(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	status := "deleted"
	if archived {
		status = "archived"
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *Handler) getRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "product")
	if !ok {
		return
	}
	recipe, err := h.store.Recipe(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recipe)
}

type recipeLine struct {
	StockItemID int64   `json:"stock_item_id" validate:"required,gt=0"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
}

type recipeRequest struct {
	Ingredients []recipeLine `json:"ingredients" validate:"max=50,dive"`
}

func (h *Handler) setRecipe(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, ok := urlID(w, r, "product")
	if !ok {
		return
	}
	var req recipeRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	if _, err := h.store.GetProduct(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	lines := make([]domain.ProductIngredient, len(req.Ingredients))
	for i, l := range req.Ingredients {
		lines[i] = domain.ProductIngredient{StockItemID: l.StockItemID, Quantity: l.Quantity}
	}
	if err := h.store.SetRecipe(r.Context(), id, lines); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, lines)
}

// Addon handlers

type addonRequest struct {
	Name      string  `json:"name" validate:"required,max=80"`
	Price     float64 `json:"price" validate:"gte=0"`
	Available *bool   `json:"available"`
}

func (req addonRequest) addon() domain.Addon {
	a := domain.Addon{Name: req.Name, Price: req.Price, Available: true}
	if req.Available != nil {
		a.Available = *req.Available
	}
	return a
}

func (h *Handler) listAddons(w http.ResponseWriter, r *http.Request) {
	addons, err := h.store.ListAddons(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, addons)
}

func (h *Handler) createAddon(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	var req addonRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	a := req.addon()
	if err := h.store.CreateAddon(r.Context(), &a); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

func (h *Handler) updateAddon(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, ok := urlID(w, r, "addon")
	if !ok {
		return
	}
	var req addonRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	a := req.addon()
	a.ID = id
	if err := h.store.UpdateAddon(r.Context(), &a); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (h *Handler) deleteAddon(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, ok := urlID(w, r, "addon")
	if !ok {
		return
	}
	if err := h.store.DeleteAddon(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Delivery areas

type deliveryAreaRequest struct {
	Name   string  `json:"name" validate:"required,max=80"`
	Fee    float64 `json:"fee" validate:"gte=0"`
	Active *bool   `json:"active"`
}

func (req deliveryAreaRequest) area() domain.DeliveryArea {
	a := domain.DeliveryArea{Name: req.Name, Fee: req.Fee, Active: true}
	if req.Active != nil {
		a.Active = *req.Active
	}
	return a
}

func (h *Handler) listDeliveryAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.store.ListDeliveryAreas(r.Context(), true)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, areas)
}

func (h *Handler) listAllDeliveryAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.store.ListDeliveryAreas(r.Context(), false)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, areas)
}

func (h *Handler) createDeliveryArea(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	var req deliveryAreaRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	a := req.area()
	if err := h.store.CreateDeliveryArea(r.Context(), &a); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

func (h *Handler) updateDeliveryArea(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, ok := urlID(w, r, "delivery area")
	if !ok {
		return
	}
	var req deliveryAreaRequest
	if !h.bindValid(w, r, &req) {
		return
	}
	a := req.area()
	a.ID = id
	if err := h.store.UpdateDeliveryArea(r.Context(), &a); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (h *Handler) deleteDeliveryArea(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, ok := urlID(w, r, "delivery area")
	if !ok {
		return
	}
	if err := h.store.DeleteDeliveryArea(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
