package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tigranv/moneta/internal/api/middleware"
	"github.com/tigranv/moneta/internal/domain"
	"github.com/tigranv/moneta/internal/jobs"
	"github.com/tigranv/moneta/internal/query"
	"github.com/tigranv/moneta/internal/store"
)

// TransactionsHandler handles transaction endpoints.
type TransactionsHandler struct {
	data      *DataAccess
	publisher jobs.Publisher
	policy    store.BulkPolicy
	log       zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler. A nil
// publisher makes bulk deletes run synchronously.
func NewTransactionsHandler(data *DataAccess, publisher jobs.Publisher, policy store.BulkPolicy, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		data:      data,
		publisher: publisher,
		policy:    policy,
		log:       log,
	}
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := parseListParams(r.URL.Query())
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}

	rows, source, err := readThrough(ctx, h.data, "ListTransactions",
		func(ctx context.Context, src store.RecordSource) ([]*store.TransactionRow, error) {
			return src.ListTransactions(ctx, p.transactionFilter())
		})
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}

	people, err := h.peopleIndex(ctx, source)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		var person *domain.Person
		if row.PersonID.Valid {
			person = people[row.PersonID.StringVal]
		}
		txs = append(txs, row.ToDomain(person))
	}

	txs = query.Filter(txs, func(tx domain.Transaction) bool {
		personName := ""
		if tx.Person != nil {
			personName = tx.Person.Name
		}
		return query.MatchAnyText([]string{tx.Notes, personName, tx.Nature.Display(), tx.DebtCycle}, p.search)
	})

	txs = h.sorted(txs, p)

	middleware.WriteJSON(w, http.StatusOK, pageOf(txs, p, source))
}

// sorted orders transactions by the requested column; the default view
// is newest first.
func (h *TransactionsHandler) sorted(txs []domain.Transaction, p listParams) []domain.Transaction {
	switch p.sort {
	case "amount":
		return query.SortCopy(txs, func(a, b domain.Transaction) int {
			return a.Amount.Cmp(b.Amount)
		}, p.desc)
	case "final_price":
		return query.SortCopy(txs, func(a, b domain.Transaction) int {
			return a.EffectiveFinalPrice().Cmp(b.EffectiveFinalPrice())
		}, p.desc)
	case "cashback":
		return query.SortCopy(txs, func(a, b domain.Transaction) int {
			return a.CashbackAmount.Cmp(b.CashbackAmount)
		}, p.desc)
	case "notes":
		return query.SortCopy(txs, func(a, b domain.Transaction) int {
			return query.CompareStrings(a.Notes, b.Notes)
		}, p.desc)
	case "date":
		return query.SortCopy(txs, func(a, b domain.Transaction) int {
			return query.CompareNumbers(query.TimeKey(&a.Date), query.TimeKey(&b.Date))
		}, p.desc)
	default:
		// Store order is already date descending.
		return txs
	}
}

func (h *TransactionsHandler) peopleIndex(ctx context.Context, source string) (map[string]*domain.Person, error) {
	src := store.RecordSource(h.data.Primary)
	if source == sourceFallback {
		src = h.data.Fallback
	}
	rows, err := src.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	return store.PeopleByID(rows), nil
}

// createRequest is the POST /api/transactions payload.
type createRequest struct {
	Nature        string   `json:"nature"`
	Date          string   `json:"date"`
	Amount        float64  `json:"amount"`
	Notes         string   `json:"notes"`
	FromAccountID string   `json:"from_account_id"`
	ToAccountID   string   `json:"to_account_id"`
	PersonID      string   `json:"person_id"`
	DebtCycle     string   `json:"debt_cycle"`
	CashbackPct   *float64 `json:"cashback_percent"`
	CashbackAmt   *float64 `json:"cashback_amount"`
}

// Create handles POST /api/transactions. The input is validated and the
// cashback resolved against the source account's policy before anything
// is written; an invalid payload never reaches the store.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}

	fromAccount, err := h.lookupAccount(ctx, in)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}

	cb, err := domain.ResolveTransactionCashback(in, fromAccount)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	source := domain.CashbackSourceFor(in.Cashback, cb)

	row := store.NewTransactionRow(uuid.New().String(), in, cb, source)
	if err := h.data.Primary.InsertTransaction(ctx, row); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert transaction")
		middleware.WriteFailure(w, err)
		return
	}

	h.log.Info().
		Str("transaction_id", row.TransactionID).
		Str("nature", string(in.Nature)).
		Msg("Transaction created")

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"result":           store.ResultOf(row.TransactionID, nil),
		"cashback_percent": cb.Percent.InexactFloat64(),
		"cashback_amount":  cb.Amount.InexactFloat64(),
		"final_price":      cb.FinalPrice.InexactFloat64(),
	})
}

func (req *createRequest) toInput() (*domain.TransactionInput, error) {
	code, ok := domain.ParseNature(req.Nature)
	if !ok {
		return nil, &domain.ValidationError{Field: "nature", Message: "unknown transaction nature " + req.Nature}
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, &domain.ValidationError{Field: "date", Message: "date must look like 2006-01-02"}
	}

	in := &domain.TransactionInput{
		Nature:        code,
		Date:          date,
		Amount:        decimal.NewFromFloat(req.Amount),
		Notes:         req.Notes,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		PersonID:      req.PersonID,
		DebtCycle:     req.DebtCycle,
	}
	if req.CashbackPct != nil || req.CashbackAmt != nil {
		cb := &domain.CashbackRequest{}
		if req.CashbackPct != nil {
			cb.Percent = decimal.NewFromFloat(*req.CashbackPct)
		}
		if req.CashbackAmt != nil {
			cb.Amount = decimal.NewFromFloat(*req.CashbackAmt)
		}
		in.Cashback = cb
	}
	return in, nil
}

// lookupAccount fetches the expense's source account so its cashback
// policy applies. Other natures skip the lookup entirely.
func (h *TransactionsHandler) lookupAccount(ctx context.Context, in *domain.TransactionInput) (*domain.Account, error) {
	if in.Nature != domain.NatureExpense || in.FromAccountID == "" {
		return nil, nil
	}
	rows, err := h.data.Primary.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.AccountID == in.FromAccountID {
			return row.ToDomain(), nil
		}
	}
	return nil, nil
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.data.Primary.DeleteTransaction(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to delete transaction")
		middleware.WriteFailure(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, store.ResultOf(id, nil))
}

// BulkDelete handles POST /api/transactions/bulk-delete. With a
// publisher configured the deletes run as a background job and the
// response carries the job id; without one they run inline and the
// response carries the per-id outcome.
func (h *TransactionsHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		IDs    []string `json:"ids"`
		Policy string   `json:"policy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "ids is required")
		return
	}

	policy := h.policy
	if req.Policy != "" {
		policy = store.ParseBulkPolicy(req.Policy)
	}

	if h.publisher == nil {
		result := h.data.Primary.BulkDeleteTransactions(ctx, req.IDs, policy)
		status := http.StatusOK
		if !result.Succeeded() {
			// Partial failure: some rows are gone, some are not.
			status = http.StatusMultiStatus
		}
		middleware.WriteJSON(w, status, result)
		return
	}

	job := &jobs.BulkDeleteJob{
		TransactionIDs: req.IDs,
		Policy:         policy,
	}
	if err := h.publisher.PublishBulkDelete(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue bulk delete job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue bulk delete job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Int("count", len(req.IDs)).Msg("Bulk delete job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}
