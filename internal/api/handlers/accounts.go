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
	"github.com/tigranv/moneta/internal/query"
	"github.com/tigranv/moneta/internal/store"
)

// AccountsHandler handles account endpoints.
type AccountsHandler struct {
	data *DataAccess
	log  zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(data *DataAccess, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{data: data, log: log}
}

// List handles GET /api/accounts
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := parseListParams(r.URL.Query())
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}

	rows, source, err := readThrough(ctx, h.data, "ListAccounts",
		func(ctx context.Context, src store.RecordSource) ([]*store.AccountRow, error) {
			return src.ListAccounts(ctx)
		})
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}

	rows = query.Filter(rows, func(row *store.AccountRow) bool {
		typ := ""
		if row.AccountType.Valid {
			typ = row.AccountType.StringVal
		}
		return query.MatchAnyText([]string{row.Name, typ}, p.search)
	})

	rows = query.SortCopy(rows, func(a, b *store.AccountRow) int {
		switch p.sort {
		case "credit_limit":
			return query.CompareNumbers(nullFloatKey(a.CreditLimit), nullFloatKey(b.CreditLimit))
		default:
			return query.CompareStrings(a.Name, b.Name)
		}
	}, p.desc)

	middleware.WriteJSON(w, http.StatusOK, pageOf(rows, p, source))
}

// Create handles POST /api/accounts
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Name               string   `json:"name"`
		Type               string   `json:"type"`
		CreditLimit        *float64 `json:"credit_limit"`
		IsCashbackEligible bool     `json:"is_cashback_eligible"`
		CashbackPercentage *float64 `json:"cashback_percentage"`
		MaxCashbackAmount  *float64 `json:"max_cashback_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	row := &store.AccountRow{
		AccountID:          uuid.New().String(),
		Name:               req.Name,
		IsCashbackEligible: req.IsCashbackEligible,
		CreatedTS:          time.Now().UTC(),
	}
	if req.Type != "" {
		row.AccountType = bigquery.NullString{StringVal: req.Type, Valid: true}
	}
	if req.CreditLimit != nil {
		row.CreditLimit = bigquery.NullFloat64{Float64: *req.CreditLimit, Valid: true}
	}
	if req.CashbackPercentage != nil {
		row.CashbackPercentage = bigquery.NullFloat64{Float64: *req.CashbackPercentage, Valid: true}
	}
	if req.MaxCashbackAmount != nil {
		row.MaxCashbackAmount = bigquery.NullFloat64{Float64: *req.MaxCashbackAmount, Valid: true}
	}

	if err := h.data.Primary.InsertAccount(ctx, row); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert account")
		middleware.WriteFailure(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, store.ResultOf(row.AccountID, nil))
}

// Delete handles DELETE /api/accounts/{id}
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.data.Primary.DeleteAccount(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("account_id", id).Msg("Failed to delete account")
		middleware.WriteFailure(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, store.ResultOf(id, nil))
}

func nullFloatKey(v bigquery.NullFloat64) float64 {
	if !v.Valid {
		return query.NumberKey(nil)
	}
	return query.NumberKey(&v.Float64)
}
