package api

import (
	"net/http"
	"strconv"

	"github.com/pointmint/market/internal/market"
	"github.com/pointmint/market/internal/model"
)

// ItemsHandler exposes catalog administration endpoints.
type ItemsHandler struct {
	Market *market.Service
}

type swapRequest struct {
	ID1 int64 `json:"id1"`
	ID2 int64 `json:"id2"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.Market.Items()
	if items == nil {
		items = []model.MarketItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item := h.Market.GetItem(id)
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items: bulk partial edits keyed by id.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var updates []model.ItemUpdate
	if err := decodeJSON(r, &updates); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(updates) == 0 {
		jsonError(w, http.StatusBadRequest, "no updates given")
		return
	}

	for _, u := range updates {
		if h.Market.GetItem(u.ID) == nil {
			jsonError(w, http.StatusNotFound, "item not found")
			return
		}
		if u.Status != nil && *u.Status != model.ItemStatusAvailable && *u.Status != model.ItemStatusUnavailable {
			jsonError(w, http.StatusBadRequest, "invalid status")
			return
		}
		if u.Price != nil && *u.Price < 0 {
			jsonError(w, http.StatusBadRequest, "price must be non-negative")
			return
		}
		if u.Stock != nil && *u.Stock < model.StockUnlimited {
			jsonError(w, http.StatusBadRequest, "invalid stock")
			return
		}
	}

	if err := h.Market.UpdateItems(r.Context(), updates); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update items")
		return
	}
	jsonResponse(w, http.StatusOK, h.Market.Items())
}

// Swap handles POST /api/items/swap: exchanges the ids of two rows.
func (h *ItemsHandler) Swap(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID1 == req.ID2 {
		jsonError(w, http.StatusBadRequest, "ids must differ")
		return
	}

	if err := h.Market.SwapItems(r.Context(), req.ID1, req.ID2); err != nil {
		jsonError(w, http.StatusBadRequest, "failed to swap items")
		return
	}
	jsonResponse(w, http.StatusOK, h.Market.Items())
}

// Delete handles DELETE /api/items/{id}: hard delete, the id is never reused.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if h.Market.GetItem(id) == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.Market.DeleteItemByID(r.Context(), id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
