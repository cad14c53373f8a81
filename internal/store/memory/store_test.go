package memory

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/tigranv/moneta/internal/domain"
	"github.com/tigranv/moneta/internal/store"
)

func TestListTransactionsFilters(t *testing.T) {
	s := NewSampleStore()
	ctx := context.Background()

	t.Run("nature spellings", func(t *testing.T) {
		rows, err := s.ListTransactions(ctx, store.TransactionFilter{
			Natures: domain.WireSpellings(domain.NatureDebt),
		})
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		// Both the canonical "DE" row and the legacy "Debt" row match.
		if len(rows) != 2 {
			t.Fatalf("got %d debt rows, want 2", len(rows))
		}
	})

	t.Run("account matches either side", func(t *testing.T) {
		rows, err := s.ListTransactions(ctx, store.TransactionFilter{AccountID: "acc-cash"})
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		// tx-2 spends from cash, tx-4 transfers into it.
		if len(rows) != 2 {
			t.Fatalf("got %d rows for acc-cash, want 2", len(rows))
		}
	})

	t.Run("date range", func(t *testing.T) {
		start := civil.Date{Year: 2025, Month: time.March, Day: 1}
		rows, err := s.ListTransactions(ctx, store.TransactionFilter{StartDate: &start})
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("got %d rows from March on, want 3", len(rows))
		}
	})

	t.Run("person and cycle", func(t *testing.T) {
		rows, err := s.ListTransactions(ctx, store.TransactionFilter{
			PersonID:  "p-ani",
			DebtCycle: "2025-03",
		})
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		if len(rows) != 1 || rows[0].TransactionID != "tx-5" {
			t.Fatalf("rows = %+v, want just tx-5", rows)
		}
	})

	t.Run("newest first", func(t *testing.T) {
		rows, err := s.ListTransactions(ctx, store.TransactionFilter{})
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		for i := 1; i < len(rows); i++ {
			if rows[i-1].TransactionDate.Before(rows[i].TransactionDate) {
				t.Fatalf("rows out of order at %d: %v before %v", i, rows[i-1].TransactionDate, rows[i].TransactionDate)
			}
		}
	})
}

func TestInsertAndDelete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	row := &store.TransactionRow{TransactionID: "tx-a", Nature: "EX", Amount: 100}
	if err := s.InsertTransaction(ctx, row); err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}

	// The stored row is a copy; mutating the original must not leak in.
	row.Amount = 999
	rows, _ := s.ListTransactions(ctx, store.TransactionFilter{})
	if len(rows) != 1 || rows[0].Amount != 100 {
		t.Fatalf("stored row shares memory with caller: %+v", rows)
	}

	if err := s.DeleteTransaction(ctx, "tx-a"); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "tx-a"); err == nil {
		t.Fatalf("second delete should fail")
	} else if msg := store.UpstreamMessage(err); msg == "" {
		t.Fatalf("delete failure lost its message")
	}
}

func TestBulkDeletePolicies(t *testing.T) {
	seed := func() *Store {
		s := NewStore()
		ctx := context.Background()
		for _, id := range []string{"a", "b", "d"} {
			_ = s.InsertTransaction(ctx, &store.TransactionRow{TransactionID: id, Nature: "EX", Amount: 1})
		}
		return s
	}
	ids := []string{"a", "b", "c", "d"} // "c" does not exist

	t.Run("stop on first error", func(t *testing.T) {
		s := seed()
		res := s.BulkDeleteTransactions(context.Background(), ids, store.BulkStopOnFirstError)
		if len(res.Deleted) != 2 || res.Deleted[0] != "a" || res.Deleted[1] != "b" {
			t.Errorf("deleted = %v, want [a b]", res.Deleted)
		}
		if len(res.Failures) != 1 || res.Failures[0].ID != "c" {
			t.Errorf("failures = %v, want c only", res.Failures)
		}
		// "d" is untouched; the earlier deletes are not rolled back.
		rows, _ := s.ListTransactions(context.Background(), store.TransactionFilter{})
		if len(rows) != 1 || rows[0].TransactionID != "d" {
			t.Errorf("remaining rows = %+v, want [d]", rows)
		}
	})

	t.Run("continue on error", func(t *testing.T) {
		s := seed()
		res := s.BulkDeleteTransactions(context.Background(), ids, store.BulkContinueOnError)
		if len(res.Deleted) != 3 {
			t.Errorf("deleted = %v, want a b d", res.Deleted)
		}
		if len(res.Failures) != 1 || res.Failures[0].ID != "c" {
			t.Errorf("failures = %v", res.Failures)
		}
		if res.Succeeded() {
			t.Errorf("result with failures must not report success")
		}
	})
}

func TestSetPersonImage(t *testing.T) {
	s := NewSampleStore()
	ctx := context.Background()

	if err := s.SetPersonImage(ctx, "p-ani", "gs://bucket/ani.png"); err != nil {
		t.Fatalf("SetPersonImage: %v", err)
	}
	people, _ := s.ListPeople(ctx)
	var found bool
	for _, p := range people {
		if p.PersonID == "p-ani" {
			found = true
			if !p.ImageURI.Valid || p.ImageURI.StringVal != "gs://bucket/ani.png" {
				t.Errorf("image not stored: %+v", p.ImageURI)
			}
		}
	}
	if !found {
		t.Fatalf("p-ani missing from sample dataset")
	}

	if err := s.SetPersonImage(ctx, "missing", "x"); err == nil {
		t.Fatalf("SetPersonImage on missing person should fail")
	}
}
