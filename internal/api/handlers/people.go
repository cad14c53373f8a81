package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tigranv/moneta/internal/api/middleware"
	"github.com/tigranv/moneta/internal/domain"
	"github.com/tigranv/moneta/internal/query"
	"github.com/tigranv/moneta/internal/store"
)

// AvatarUploader stores a person's avatar image and returns its URI.
type AvatarUploader interface {
	Upload(ctx context.Context, personID, contentType string, r io.Reader) (string, error)
}

// PeopleHandler handles person endpoints.
type PeopleHandler struct {
	data     *DataAccess
	uploader AvatarUploader
	log      zerolog.Logger
}

// NewPeopleHandler creates a new people handler. A nil uploader disables
// avatar uploads.
func NewPeopleHandler(data *DataAccess, uploader AvatarUploader, log zerolog.Logger) *PeopleHandler {
	return &PeopleHandler{data: data, uploader: uploader, log: log}
}

// List handles GET /api/people. The response is the per-person fold of
// the debt transactions: running totals plus each person's history.
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := parseListParams(r.URL.Query())
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}

	filter := store.TransactionFilter{
		Natures:   domain.WireSpellings(domain.NatureDebt),
		DebtCycle: p.cycle,
		StartDate: p.startDate,
		EndDate:   p.endDate,
	}

	rows, source, err := readThrough(ctx, h.data, "ListTransactions",
		func(ctx context.Context, src store.RecordSource) ([]*store.TransactionRow, error) {
			return src.ListTransactions(ctx, filter)
		})
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}

	src := store.RecordSource(h.data.Primary)
	if source == sourceFallback {
		src = h.data.Fallback
	}
	personRows, err := src.ListPeople(ctx)
	if err != nil {
		middleware.WriteFailure(w, err)
		return
	}
	people := store.PeopleByID(personRows)

	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		var person *domain.Person
		if row.PersonID.Valid {
			person = people[row.PersonID.StringVal]
		}
		txs = append(txs, row.ToDomain(person))
	}

	aggregates := domain.AggregatePeople(txs)

	aggregates = query.Filter(aggregates, func(a domain.PersonAggregate) bool {
		return query.MatchText(a.Name, p.search)
	})

	if p.sort != "" {
		aggregates = h.sorted(aggregates, p)
	}

	middleware.WriteJSON(w, http.StatusOK, pageOf(aggregates, p, source))
}

func (h *PeopleHandler) sorted(aggs []domain.PersonAggregate, p listParams) []domain.PersonAggregate {
	switch p.sort {
	case "total_amount":
		return query.SortCopy(aggs, func(a, b domain.PersonAggregate) int {
			return a.TotalAmount.Cmp(b.TotalAmount)
		}, p.desc)
	case "total_back":
		return query.SortCopy(aggs, func(a, b domain.PersonAggregate) int {
			return a.TotalBack.Cmp(b.TotalBack)
		}, p.desc)
	case "last_transaction":
		return query.SortCopy(aggs, func(a, b domain.PersonAggregate) int {
			return query.CompareNumbers(query.TimeKey(&a.LastTransactionDate), query.TimeKey(&b.LastTransactionDate))
		}, p.desc)
	default:
		return query.SortCopy(aggs, func(a, b domain.PersonAggregate) int {
			return query.CompareStrings(a.Name, b.Name)
		}, p.desc)
	}
}

// Create handles POST /api/people
func (h *PeopleHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	row := &store.PersonRow{
		PersonID:  uuid.New().String(),
		Name:      req.Name,
		CreatedTS: time.Now().UTC(),
	}
	if err := h.data.Primary.InsertPerson(ctx, row); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert person")
		middleware.WriteFailure(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, store.ResultOf(row.PersonID, nil))
}

// Delete handles DELETE /api/people/{id}
func (h *PeopleHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.data.Primary.DeletePerson(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("person_id", id).Msg("Failed to delete person")
		middleware.WriteFailure(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, store.ResultOf(id, nil))
}

// UploadAvatar handles POST /api/people/{id}/avatar. The image body is
// stored through the uploader and the person row updated to point at it.
func (h *PeopleHandler) UploadAvatar(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	if h.uploader == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Avatar uploads are not configured")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	uri, err := h.uploader.Upload(ctx, id, contentType, r.Body)
	if err != nil {
		h.log.Error().Err(err).Str("person_id", id).Msg("Failed to upload avatar")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload avatar")
		return
	}

	if err := h.data.Primary.SetPersonImage(ctx, id, uri); err != nil {
		h.log.Error().Err(err).Str("person_id", id).Msg("Failed to link avatar")
		middleware.WriteFailure(w, err)
		return
	}

	h.log.Info().Str("person_id", id).Str("image_uri", uri).Msg("Avatar uploaded")

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"person_id": id,
		"image_uri": uri,
	})
}
