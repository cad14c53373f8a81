// Package handlers implements the HTTP endpoints of the tracker API.
// Every list endpoint reads through DataAccess, which falls back to the
// built-in sample dataset when the hosted store is unreachable; every
// mutation goes to the primary store only.
package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/tigranv/moneta/internal/domain"
	"github.com/tigranv/moneta/internal/query"
	"github.com/tigranv/moneta/internal/store"
)

// Source markers reported in list responses.
const (
	sourcePrimary  = "primary"
	sourceFallback = "fallback"
)

// DataAccess pairs the primary store with an optional read-only fallback.
type DataAccess struct {
	Primary  store.Store
	Fallback store.RecordSource
	Log      zerolog.Logger
}

func (d *DataAccess) fallbackAfter(op string, err error) bool {
	if d.Fallback == nil {
		return false
	}
	d.Log.Warn().Err(err).Str("op", op).Msg("primary store unavailable, serving fallback data")
	return true
}

// readThrough reads from the primary store and falls back to the sample
// dataset on failure, reporting which source served the data.
func readThrough[T any](ctx context.Context, d *DataAccess, op string, read func(context.Context, store.RecordSource) ([]T, error)) ([]T, string, error) {
	items, err := read(ctx, d.Primary)
	if err == nil {
		return items, sourcePrimary, nil
	}
	if !d.fallbackAfter(op, err) {
		return nil, "", err
	}
	items, err = read(ctx, d.Fallback)
	if err != nil {
		return nil, "", err
	}
	return items, sourceFallback, nil
}

// listResponse is the wire shape of every list endpoint: a page plus the
// marker saying which dataset served it.
type listResponse[T any] struct {
	query.Page[T]
	Source string `json:"source"`
}

func pageOf[T any](items []T, p listParams, source string) listResponse[T] {
	return listResponse[T]{
		Page:   query.Paginate(items, p.page, p.pageSize),
		Source: source,
	}
}

// listParams are the query parameters shared by the list endpoints.
type listParams struct {
	search   string
	nature   string
	account  string
	person   string
	cycle    string
	sort     string
	desc     bool
	page     int
	pageSize int

	startDate *civil.Date
	endDate   *civil.Date
}

// parseListParams reads the common list parameters. Malformed dates are
// validation errors; malformed numbers fall back to defaults the way the
// table views do.
func parseListParams(values map[string][]string) (listParams, error) {
	get := func(key string) string {
		if vs := values[key]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}

	p := listParams{
		search:   get("q"),
		nature:   get("nature"),
		account:  get("account_id"),
		person:   get("person_id"),
		cycle:    get("debt_cycle"),
		sort:     get("sort"),
		desc:     strings.EqualFold(get("order"), "desc"),
		page:     1,
		pageSize: query.DefaultPageSize,
	}

	if v := get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.page = n
		}
	}
	if v := get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.pageSize = n
		}
	}

	var err error
	if p.startDate, err = parseDateParam("start_date", get("start_date")); err != nil {
		return p, err
	}
	if p.endDate, err = parseDateParam("end_date", get("end_date")); err != nil {
		return p, err
	}
	return p, nil
}

func parseDateParam(field, v string) (*civil.Date, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, &domain.ValidationError{Field: field, Message: "date must look like 2006-01-02"}
	}
	d := civil.DateOf(t)
	return &d, nil
}

// transactionFilter maps the list parameters onto the store-side filter.
// An unknown nature label produces an impossible filter rather than an
// error, so the response is an empty page.
func (p listParams) transactionFilter() store.TransactionFilter {
	f := store.TransactionFilter{
		AccountID: p.account,
		PersonID:  p.person,
		DebtCycle: p.cycle,
		StartDate: p.startDate,
		EndDate:   p.endDate,
	}
	if p.nature != "" {
		if code, ok := domain.ParseNature(p.nature); ok {
			f.Natures = domain.WireSpellings(code)
		} else {
			f.Natures = []string{"\x00unknown"}
		}
	}
	return f
}
