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

// CategoriesHandler handles category endpoints.
type CategoriesHandler struct {
	data *DataAccess
	log  zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(data *DataAccess, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{data: data, log: log}
}

// categoryView is a category with its nature resolved through the
// parent chain. Unresolvable rows show the expense default.
type categoryView struct {
	domain.CategoryInfo
	ResolvedNature string `json:"resolved_nature"`
}

// List handles GET /api/categories
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := parseListParams(r.URL.Query())
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}

	rows, source, err := readThrough(ctx, h.data, "ListCategories",
		func(ctx context.Context, src store.RecordSource) ([]*store.CategoryRow, error) {
			return src.ListCategories(ctx)
		})
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}

	views := make([]categoryView, 0, len(rows))
	for _, row := range rows {
		code, ok := store.ResolveCategoryNature(row, rows)
		if !ok {
			code = domain.NatureExpense
		}
		views = append(views, categoryView{
			CategoryInfo:   row.ToDomain(),
			ResolvedNature: code.Display(),
		})
	}

	if p.nature != "" {
		if code, ok := domain.ParseNature(p.nature); ok {
			views = query.Filter(views, func(v categoryView) bool {
				return v.ResolvedNature == code.Display()
			})
		} else {
			views = nil
		}
	}

	views = query.Filter(views, func(v categoryView) bool {
		return query.MatchText(v.Name, p.search)
	})

	views = query.SortCopy(views, func(a, b categoryView) int {
		return query.CompareStrings(a.Name, b.Name)
	}, p.desc)

	middleware.WriteJSON(w, http.StatusOK, pageOf(views, p, source))
}

// Create handles POST /api/categories
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Name             string `json:"name"`
		Nature           string `json:"nature"`
		ParentCategoryID string `json:"parent_category_id"`
		IsShop           bool   `json:"is_shop"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Nature != "" {
		if _, ok := domain.ParseNature(req.Nature); !ok {
			middleware.WriteFailure(w, &domain.ValidationError{Field: "nature", Message: "unknown category nature " + req.Nature})
			return
		}
	}

	row := &store.CategoryRow{
		CategoryID: uuid.New().String(),
		Name:       req.Name,
		CreatedTS:  time.Now().UTC(),
	}
	if req.Nature != "" {
		code, _ := domain.ParseNature(req.Nature)
		row.Nature = bigquery.NullString{StringVal: code.Display(), Valid: true}
	}
	if req.ParentCategoryID != "" {
		row.ParentCategoryID = bigquery.NullString{StringVal: req.ParentCategoryID, Valid: true}
	}
	if req.IsShop {
		row.IsShop = bigquery.NullBool{Bool: true, Valid: true}
	}

	if err := h.data.Primary.InsertCategory(ctx, row); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert category")
		middleware.WriteFailure(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, store.ResultOf(row.CategoryID, nil))
}

// Delete handles DELETE /api/categories/{id}
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.data.Primary.DeleteCategory(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("category_id", id).Msg("Failed to delete category")
		middleware.WriteFailure(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, store.ResultOf(id, nil))
}
