// Package memory is an in-memory implementation of the store interfaces.
// It backs tests and serves as the local fallback dataset when the
// hosted store is unreachable. Data is lost on restart.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tigranv/moneta/internal/store"
)

// ErrNotFound is returned for deletes and updates against missing ids.
var ErrNotFound = errors.New("record not found")

// Store holds every table in memory and is safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]*store.AccountRow
	transactions map[string]*store.TransactionRow
	categories   map[string]*store.CategoryRow
	people       map[string]*store.PersonRow
	shops        map[string]*store.ShopRow
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]*store.AccountRow),
		transactions: make(map[string]*store.TransactionRow),
		categories:   make(map[string]*store.CategoryRow),
		people:       make(map[string]*store.PersonRow),
		shops:        make(map[string]*store.ShopRow),
	}
}

// ListAccounts implements store.RecordSource.
func (s *Store) ListAccounts(ctx context.Context) ([]*store.AccountRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*store.AccountRow, 0, len(s.accounts))
	for _, row := range s.accounts {
		cp := *row
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListTransactions implements store.RecordSource, applying the filter
// the same way the hosted store's parameterized query does.
func (s *Store) ListTransactions(ctx context.Context, filter store.TransactionFilter) ([]*store.TransactionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	natures := make(map[string]bool, len(filter.Natures))
	for _, n := range filter.Natures {
		natures[n] = true
	}

	out := make([]*store.TransactionRow, 0, len(s.transactions))
	for _, row := range s.transactions {
		if len(natures) > 0 && !natures[row.Nature] {
			continue
		}
		if filter.AccountID != "" &&
			!(row.FromAccountID.Valid && row.FromAccountID.StringVal == filter.AccountID) &&
			!(row.ToAccountID.Valid && row.ToAccountID.StringVal == filter.AccountID) {
			continue
		}
		if filter.PersonID != "" &&
			!(row.PersonID.Valid && row.PersonID.StringVal == filter.PersonID) {
			continue
		}
		if filter.DebtCycle != "" &&
			!(row.DebtCycle.Valid && row.DebtCycle.StringVal == filter.DebtCycle) {
			continue
		}
		if filter.StartDate != nil && row.TransactionDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && row.TransactionDate.After(*filter.EndDate) {
			continue
		}

		cp := *row
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TransactionDate != out[j].TransactionDate {
			return out[j].TransactionDate.Before(out[i].TransactionDate)
		}
		return out[i].TransactionID > out[j].TransactionID
	})
	return out, nil
}

// ListCategories implements store.RecordSource.
func (s *Store) ListCategories(ctx context.Context) ([]*store.CategoryRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*store.CategoryRow, 0, len(s.categories))
	for _, row := range s.categories {
		cp := *row
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListPeople implements store.RecordSource.
func (s *Store) ListPeople(ctx context.Context) ([]*store.PersonRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*store.PersonRow, 0, len(s.people))
	for _, row := range s.people {
		cp := *row
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListShops implements store.RecordSource.
func (s *Store) ListShops(ctx context.Context) ([]*store.ShopRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*store.ShopRow, 0, len(s.shops))
	for _, row := range s.shops {
		cp := *row
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// InsertAccount implements store.MutationSink.
func (s *Store) InsertAccount(ctx context.Context, row *store.AccountRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *row
	s.accounts[row.AccountID] = &cp
	return nil
}

// InsertTransaction implements store.MutationSink.
func (s *Store) InsertTransaction(ctx context.Context, row *store.TransactionRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *row
	s.transactions[row.TransactionID] = &cp
	return nil
}

// InsertCategory implements store.MutationSink.
func (s *Store) InsertCategory(ctx context.Context, row *store.CategoryRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *row
	s.categories[row.CategoryID] = &cp
	return nil
}

// InsertPerson implements store.MutationSink.
func (s *Store) InsertPerson(ctx context.Context, row *store.PersonRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *row
	s.people[row.PersonID] = &cp
	return nil
}

// InsertShop implements store.MutationSink.
func (s *Store) InsertShop(ctx context.Context, row *store.ShopRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *row
	s.shops[row.ShopID] = &cp
	return nil
}

// DeleteAccount implements store.MutationSink.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return store.Upstreamf("DeleteAccount", ErrNotFound, "account %s does not exist", id)
	}
	delete(s.accounts, id)
	return nil
}

// DeleteTransaction implements store.MutationSink.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return store.Upstreamf("DeleteTransaction", ErrNotFound, "transaction %s does not exist", id)
	}
	delete(s.transactions, id)
	return nil
}

// DeleteCategory implements store.MutationSink.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return store.Upstreamf("DeleteCategory", ErrNotFound, "category %s does not exist", id)
	}
	delete(s.categories, id)
	return nil
}

// DeletePerson implements store.MutationSink.
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[id]; !ok {
		return store.Upstreamf("DeletePerson", ErrNotFound, "person %s does not exist", id)
	}
	delete(s.people, id)
	return nil
}

// DeleteShop implements store.MutationSink.
func (s *Store) DeleteShop(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shops[id]; !ok {
		return store.Upstreamf("DeleteShop", ErrNotFound, "shop %s does not exist", id)
	}
	delete(s.shops, id)
	return nil
}

// BulkDeleteTransactions implements store.MutationSink with the same
// sequential no-rollback behavior as the hosted client.
func (s *Store) BulkDeleteTransactions(ctx context.Context, ids []string, policy store.BulkPolicy) store.BulkDeleteResult {
	var result store.BulkDeleteResult
	for _, id := range ids {
		if err := s.DeleteTransaction(ctx, id); err != nil {
			result.Failures = append(result.Failures, store.BulkFailure{
				ID:      id,
				Message: store.UpstreamMessage(err),
			})
			if policy == store.BulkStopOnFirstError {
				return result
			}
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	return result
}

// SetPersonImage implements store.MutationSink.
func (s *Store) SetPersonImage(ctx context.Context, id, imageURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.people[id]
	if !ok {
		return store.Upstreamf("SetPersonImage", ErrNotFound, "person %s does not exist", id)
	}
	row.ImageURI.StringVal = imageURI
	row.ImageURI.Valid = true
	return nil
}

// Ensure Store covers the full store surface.
var _ store.Store = (*Store)(nil)
