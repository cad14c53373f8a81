package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tigranv/moneta/internal/api/middleware"
	"github.com/tigranv/moneta/internal/domain"
	"github.com/tigranv/moneta/internal/query"
	"github.com/tigranv/moneta/internal/store"
)

// ShopsHandler handles shop endpoints.
type ShopsHandler struct {
	data *DataAccess
	log  zerolog.Logger
}

// NewShopsHandler creates a new shops handler.
func NewShopsHandler(data *DataAccess, log zerolog.Logger) *ShopsHandler {
	return &ShopsHandler{data: data, log: log}
}

// shopView is a shop with its category name joined in for display.
type shopView struct {
	domain.Shop
	CategoryName string `json:"category_name,omitempty"`
}

// List handles GET /api/shops
func (h *ShopsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := parseListParams(r.URL.Query())
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}

	rows, source, err := readThrough(ctx, h.data, "ListShops",
		func(ctx context.Context, src store.RecordSource) ([]*store.ShopRow, error) {
			return src.ListShops(ctx)
		})
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}

	categories := h.categoryNames(ctx, source)

	views := make([]shopView, 0, len(rows))
	for _, row := range rows {
		v := shopView{Shop: row.ToDomain()}
		v.CategoryName = categories[v.CategoryID]
		views = append(views, v)
	}

	views = query.Filter(views, func(v shopView) bool {
		return query.MatchAnyText([]string{v.Name, v.CategoryName}, p.search)
	})

	views = query.SortCopy(views, func(a, b shopView) int {
		if p.sort == "category" {
			return query.CompareStrings(a.CategoryName, b.CategoryName)
		}
		return query.CompareStrings(a.Name, b.Name)
	}, p.desc)

	middleware.WriteJSON(w, http.StatusOK, pageOf(views, p, source))
}

// categoryNames joins shop rows to their category names. A failed lookup
// degrades to id-only display instead of failing the listing.
func (h *ShopsHandler) categoryNames(ctx context.Context, source string) map[string]string {
	src := store.RecordSource(h.data.Primary)
	if source == sourceFallback {
		src = h.data.Fallback
	}
	rows, err := src.ListCategories(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("category join unavailable for shop listing")
		return nil
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.CategoryID] = row.Name
	}
	return out
}

// Create handles POST /api/shops
func (h *ShopsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Name       string `json:"name"`
		CategoryID string `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	row := &store.ShopRow{
		ShopID:    uuid.New().String(),
		Name:      req.Name,
		CreatedTS: time.Now().UTC(),
	}
	if req.CategoryID != "" {
		row.CategoryID = bigquery.NullString{StringVal: req.CategoryID, Valid: true}
	}

	if err := h.data.Primary.InsertShop(ctx, row); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert shop")
		middleware.WriteFailure(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, store.ResultOf(row.ShopID, nil))
}

// Delete handles DELETE /api/shops/{id}
func (h *ShopsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.data.Primary.DeleteShop(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("shop_id", id).Msg("Failed to delete shop")
		middleware.WriteFailure(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, store.ResultOf(id, nil))
}
