package api

import (
	"database/sql"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/erazemk/donations/internal/model"
	"github.com/erazemk/donations/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Category     string  `json:"category" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	QuantityNew  int     `json:"quantityNew" validate:"gte=0"`
	QuantityUsed int     `json:"quantityUsed" validate:"gte=0"`
	ValueNew     float64 `json:"valueNew" validate:"gte=0"`
	ValueUsed    float64 `json:"valueUsed" validate:"gte=0"`
}

// List handles GET /item/v1.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB, r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, r, http.StatusOK, items)
}

// Get handles GET /item/v1/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if item == nil {
		jsonError(w, r, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, r, http.StatusOK, item)
}

// Create handles POST /item/v1.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, model.Item{
		Category:     req.Category,
		Name:         req.Name,
		QuantityNew:  req.QuantityNew,
		QuantityUsed: req.QuantityUsed,
		ValueNew:     req.ValueNew,
		ValueUsed:    req.ValueUsed,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Int64("item_id", item.ID).Str("category", item.Category).Str("name", item.Name).Msg("item created")
	jsonResponse(w, r, http.StatusCreated, item)
}
