package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tigranv/moneta/internal/store"
	"github.com/tigranv/moneta/internal/store/memory"
)

// failingSource wraps a store and fails every read, simulating an
// unreachable data service.
type failingSource struct {
	store.Store
}

var errDown = errors.New("connection refused")

func (f *failingSource) ListAccounts(ctx context.Context) ([]*store.AccountRow, error) {
	return nil, store.Upstream("ListAccounts", errDown)
}

func (f *failingSource) ListTransactions(ctx context.Context, filter store.TransactionFilter) ([]*store.TransactionRow, error) {
	return nil, store.Upstream("ListTransactions", errDown)
}

func (f *failingSource) ListCategories(ctx context.Context) ([]*store.CategoryRow, error) {
	return nil, store.Upstream("ListCategories", errDown)
}

func (f *failingSource) ListPeople(ctx context.Context) ([]*store.PersonRow, error) {
	return nil, store.Upstream("ListPeople", errDown)
}

func (f *failingSource) ListShops(ctx context.Context) ([]*store.ShopRow, error) {
	return nil, store.Upstream("ListShops", errDown)
}

func sampleData(t *testing.T) *DataAccess {
	t.Helper()
	return &DataAccess{
		Primary:  memory.NewSampleStore(),
		Fallback: memory.NewSampleStore(),
		Log:      zerolog.Nop(),
	}
}

func decodeList(t *testing.T, body *bytes.Buffer) (items []json.RawMessage, page, total int, source string) {
	t.Helper()
	var resp struct {
		Items      []json.RawMessage `json:"items"`
		Page       int               `json:"page"`
		TotalItems int               `json:"total_items"`
		Source     string            `json:"source"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	return resp.Items, resp.Page, resp.TotalItems, resp.Source
}

func TestListTransactions(t *testing.T) {
	h := NewTransactionsHandler(sampleData(t), nil, store.BulkStopOnFirstError, zerolog.Nop())

	t.Run("all", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		items, _, total, source := decodeList(t, rec.Body)
		if total != 6 || len(items) != 6 {
			t.Errorf("total = %d, items = %d, want 6", total, len(items))
		}
		if source != "primary" {
			t.Errorf("source = %q, want primary", source)
		}
	})

	t.Run("nature filter tolerates legacy spellings", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?nature=expense", nil))

		_, _, total, _ := decodeList(t, rec.Body)
		// tx-1 ("EX") and tx-2 ("Expenses").
		if total != 2 {
			t.Errorf("total = %d, want 2 expenses", total)
		}
	})

	t.Run("unknown nature yields empty page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?nature=mystery", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		_, _, total, _ := decodeList(t, rec.Body)
		if total != 0 {
			t.Errorf("total = %d, want 0", total)
		}
	})

	t.Run("search joins person names", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?q=ani", nil))

		_, _, total, _ := decodeList(t, rec.Body)
		if total != 1 {
			t.Errorf("total = %d, want the one debt to Ani", total)
		}
	})

	t.Run("bad date is a validation error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?start_date=03-01-2025", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "start_date") {
			t.Errorf("error does not name the field: %s", rec.Body)
		}
	})

	t.Run("page clamps past the end", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?page=99&page_size=4", nil))

		items, page, _, _ := decodeList(t, rec.Body)
		if page != 2 {
			t.Errorf("page = %d, want clamp to 2", page)
		}
		if len(items) != 2 {
			t.Errorf("items = %d, want the last 2", len(items))
		}
	})
}

func TestListTransactionsFallback(t *testing.T) {
	data := &DataAccess{
		Primary:  &failingSource{Store: memory.NewStore()},
		Fallback: memory.NewSampleStore(),
		Log:      zerolog.Nop(),
	}
	h := NewTransactionsHandler(data, nil, store.BulkStopOnFirstError, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	_, _, total, source := decodeList(t, rec.Body)
	if source != "fallback" {
		t.Errorf("source = %q, want fallback", source)
	}
	if total != 6 {
		t.Errorf("total = %d, want the sample dataset", total)
	}
}

func TestListTransactionsNoFallback(t *testing.T) {
	data := &DataAccess{
		Primary: &failingSource{Store: memory.NewStore()},
		Log:     zerolog.Nop(),
	}
	h := NewTransactionsHandler(data, nil, store.BulkStopOnFirstError, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	// The raw driver error must not leak; the client sees the generic
	// message only.
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("driver error leaked to the client: %s", rec.Body)
	}
}

func TestCreateTransaction(t *testing.T) {
	post := func(t *testing.T, h *TransactionsHandler, payload string) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(payload))
		h.Create(rec, req)
		return rec
	}

	t.Run("expense with account-capped cashback", func(t *testing.T) {
		data := sampleData(t)
		h := NewTransactionsHandler(data, nil, store.BulkStopOnFirstError, zerolog.Nop())

		// acc-main allows 5% up to 3000; the request asks for more.
		rec := post(t, h, `{
			"nature": "EX",
			"date": "2025-04-01",
			"amount": 100000,
			"from_account_id": "acc-main",
			"cashback_percent": 10,
			"cashback_amount": 8000
		}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		var resp struct {
			Result          store.MutationResult `json:"result"`
			CashbackPercent float64              `json:"cashback_percent"`
			CashbackAmount  float64              `json:"cashback_amount"`
			FinalPrice      float64              `json:"final_price"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.Result.Success || resp.Result.ID == "" {
			t.Errorf("result = %+v", resp.Result)
		}
		if resp.CashbackAmount != 3000 || resp.CashbackPercent != 3 || resp.FinalPrice != 97000 {
			t.Errorf("cashback = %v%% / %v, final %v; want 3%% / 3000, final 97000",
				resp.CashbackPercent, resp.CashbackAmount, resp.FinalPrice)
		}

		rows, _ := data.Primary.ListTransactions(context.Background(), store.TransactionFilter{AccountID: "acc-main"})
		var found bool
		for _, row := range rows {
			if row.TransactionID == resp.Result.ID {
				found = true
				if !row.CashbackSource.Valid || row.CashbackSource.StringVal != "percent" {
					t.Errorf("cashback source = %+v, want percent", row.CashbackSource)
				}
			}
		}
		if !found {
			t.Errorf("created transaction not stored")
		}
	})

	t.Run("cashback above amount is rejected before insert", func(t *testing.T) {
		data := sampleData(t)
		h := NewTransactionsHandler(data, nil, store.BulkStopOnFirstError, zerolog.Nop())

		rec := post(t, h, `{
			"nature": "EX",
			"date": "2025-04-01",
			"amount": 1000,
			"from_account_id": "acc-main",
			"cashback_amount": 5000
		}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		if !strings.Contains(rec.Body.String(), "cashback_amount") {
			t.Errorf("error does not name the field: %s", rec.Body)
		}

		rows, _ := data.Primary.ListTransactions(context.Background(), store.TransactionFilter{})
		if len(rows) != 6 {
			t.Errorf("rejected input reached the store: %d rows", len(rows))
		}
	})

	t.Run("unknown nature", func(t *testing.T) {
		h := NewTransactionsHandler(sampleData(t), nil, store.BulkStopOnFirstError, zerolog.Nop())

		rec := post(t, h, `{"nature": "mystery", "date": "2025-04-01", "amount": 10}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "nature") {
			t.Errorf("error does not name the field: %s", rec.Body)
		}
	})

	t.Run("transfer needs distinct accounts", func(t *testing.T) {
		h := NewTransactionsHandler(sampleData(t), nil, store.BulkStopOnFirstError, zerolog.Nop())

		rec := post(t, h, `{
			"nature": "TF",
			"date": "2025-04-01",
			"amount": 10,
			"from_account_id": "acc-main",
			"to_account_id": "acc-main"
		}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
	})
}

func TestDeleteTransaction(t *testing.T) {
	data := sampleData(t)
	h := NewTransactionsHandler(data, nil, store.BulkStopOnFirstError, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Delete(rec, httptest.NewRequest(http.MethodDelete, "/api/transactions/tx-1", nil), "tx-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	h.Delete(rec, httptest.NewRequest(http.MethodDelete, "/api/transactions/tx-1", nil), "tx-1")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("second delete status = %d, want 502", rec.Code)
	}
}

func TestBulkDeleteInline(t *testing.T) {
	data := sampleData(t)
	h := NewTransactionsHandler(data, nil, store.BulkStopOnFirstError, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/bulk-delete",
		strings.NewReader(`{"ids": ["tx-1", "nope", "tx-2"], "policy": "continue"}`))
	h.BulkDelete(rec, req)

	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("status = %d, want 207", rec.Code)
	}
	var result store.BulkDeleteResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Deleted) != 2 || len(result.Failures) != 1 {
		t.Errorf("result = %+v, want 2 deleted and 1 failure", result)
	}

	rows, _ := data.Primary.ListTransactions(context.Background(), store.TransactionFilter{})
	if len(rows) != 4 {
		t.Errorf("%d rows remain, want 4", len(rows))
	}
}

func TestListPeopleAggregates(t *testing.T) {
	h := NewPeopleHandler(sampleData(t), nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/people", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp struct {
		Items []struct {
			ID                string  `json:"id"`
			Name              string  `json:"name"`
			TotalTransactions int     `json:"total_transactions"`
			TotalAmount       string  `json:"total_amount"`
			TotalBack         string  `json:"total_back"`
			Transactions      []any   `json:"transactions"`
		} `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Sample data has debts to Ani (tx-5) and Zara (tx-6, legacy "Debt").
	if len(resp.Items) != 2 {
		t.Fatalf("items = %d, want 2 people", len(resp.Items))
	}
	ani := resp.Items[0]
	if ani.Name != "Ani" || ani.TotalTransactions != 1 {
		t.Errorf("first aggregate = %+v, want Ani with 1 transaction", ani)
	}
	if ani.TotalAmount != "20000" || ani.TotalBack != "1000" {
		t.Errorf("Ani totals = %s / %s, want 20000 / 1000", ani.TotalAmount, ani.TotalBack)
	}
	if len(ani.Transactions) != 1 {
		t.Errorf("Ani history = %d entries, want 1", len(ani.Transactions))
	}
}

func TestListShopsDiacriticSearch(t *testing.T) {
	h := NewShopsHandler(sampleData(t), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/shops?q=geant", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	items, _, total, _ := decodeList(t, rec.Body)
	if total != 1 || len(items) != 1 {
		t.Fatalf("total = %d, want Géant to match the ascii query", total)
	}
	if !strings.Contains(string(items[0]), "Géant") {
		t.Errorf("matched item = %s", items[0])
	}
}

func TestListCategoriesResolvesNature(t *testing.T) {
	h := NewCategoriesHandler(sampleData(t), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/categories?q=groceries", nil))

	items, _, total, _ := decodeList(t, rec.Body)
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
	var view struct {
		Name           string `json:"name"`
		ResolvedNature string `json:"resolved_nature"`
	}
	if err := json.Unmarshal(items[0], &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Groceries has no nature of its own; it inherits Expense from Food.
	if view.ResolvedNature != "Expense" {
		t.Errorf("resolved nature = %q, want Expense", view.ResolvedNature)
	}
}

func TestUploadAvatarDisabled(t *testing.T) {
	h := NewPeopleHandler(sampleData(t), nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/people/p-ani/avatar", strings.NewReader("png"))
	h.UploadAvatar(rec, req, "p-ani")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when no bucket is configured", rec.Code)
	}
}
