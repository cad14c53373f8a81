// Package store defines the shapes the tracker expects from its hosted
// data service: a read side supplying record arrays per named table and a
// write side accepting inserts and deletes. The domain logic runs before
// any mutation call; the store never validates business rules.
package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
)

// TransactionFilter narrows a transaction listing at the source. The
// Natures slice carries wire spellings (see domain.WireSpellings) so the
// filter tolerates inconsistent historical encodings.
type TransactionFilter struct {
	Natures   []string
	AccountID string
	PersonID  string
	DebtCycle string
	StartDate *civil.Date
	EndDate   *civil.Date
}

// RecordSource supplies record arrays per table.
type RecordSource interface {
	ListAccounts(ctx context.Context) ([]*AccountRow, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*TransactionRow, error)
	ListCategories(ctx context.Context) ([]*CategoryRow, error)
	ListPeople(ctx context.Context) ([]*PersonRow, error)
	ListShops(ctx context.Context) ([]*ShopRow, error)
}

// MutationSink accepts insert and delete requests keyed by table.
type MutationSink interface {
	InsertAccount(ctx context.Context, row *AccountRow) error
	InsertTransaction(ctx context.Context, row *TransactionRow) error
	InsertCategory(ctx context.Context, row *CategoryRow) error
	InsertPerson(ctx context.Context, row *PersonRow) error
	InsertShop(ctx context.Context, row *ShopRow) error

	DeleteAccount(ctx context.Context, id string) error
	DeleteTransaction(ctx context.Context, id string) error
	DeleteCategory(ctx context.Context, id string) error
	DeletePerson(ctx context.Context, id string) error
	DeleteShop(ctx context.Context, id string) error

	// BulkDeleteTransactions deletes sequentially under the given
	// policy. There is no rollback: rows deleted before a failure stay
	// deleted under either policy.
	BulkDeleteTransactions(ctx context.Context, ids []string, policy BulkPolicy) BulkDeleteResult

	SetPersonImage(ctx context.Context, id, imageURI string) error
}

// Store is the full read/write surface of the data service.
type Store interface {
	RecordSource
	MutationSink
}

// MutationResult is the wire shape mutation endpoints return.
type MutationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// ResultOf shapes an insert/delete outcome into a MutationResult.
func ResultOf(id string, err error) MutationResult {
	if err != nil {
		return MutationResult{Success: false, Message: UpstreamMessage(err)}
	}
	return MutationResult{Success: true, Message: "saved", ID: id}
}

// BulkPolicy selects how a bulk delete reacts to an individual failure.
// The historical behavior (and the default) is to stop at the first
// failure; the policy is explicit configuration rather than an accident
// of control flow.
type BulkPolicy int

const (
	// BulkStopOnFirstError aborts the remaining deletes on the first
	// failure.
	BulkStopOnFirstError BulkPolicy = iota
	// BulkContinueOnError attempts every delete and collects failures.
	BulkContinueOnError
)

// ParseBulkPolicy maps a configuration string to a policy. Anything but
// "continue" selects the stop-on-first-error default.
func ParseBulkPolicy(s string) BulkPolicy {
	if s == "continue" {
		return BulkContinueOnError
	}
	return BulkStopOnFirstError
}

// String implements fmt.Stringer.
func (p BulkPolicy) String() string {
	if p == BulkContinueOnError {
		return "continue"
	}
	return "stop"
}

// BulkFailure is one failed delete within a bulk request.
type BulkFailure struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// BulkDeleteResult reports a bulk delete: which ids were deleted and
// which failed. Already-deleted ids remain deleted even when later ids
// fail.
type BulkDeleteResult struct {
	Deleted  []string      `json:"deleted"`
	Failures []BulkFailure `json:"failures,omitempty"`
}

// Succeeded reports whether every requested delete went through.
func (r BulkDeleteResult) Succeeded() bool {
	return len(r.Failures) == 0
}

// FirstFailureMessage returns the first failure's message, or "".
func (r BulkDeleteResult) FirstFailureMessage() string {
	if len(r.Failures) == 0 {
		return ""
	}
	return r.Failures[0].Message
}

// genericUpstreamMessage stands in when the data service reports an
// error without any actionable detail.
const genericUpstreamMessage = "the data service reported an error"

// UpstreamError wraps a failure reported by the data service. Message is
// the service's human-readable detail and may be empty.
type UpstreamError struct {
	Op      string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = genericUpstreamMessage
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap supports errors.Is/As chains.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// upstreamf wraps an underlying store failure.
func upstreamf(op string, err error, format string, args ...interface{}) error {
	return &UpstreamError{Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

// Upstream wraps err without extra detail; the message falls back to the
// generic string when surfaced to a caller.
func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// Upstreamf wraps err with a human-readable message that callers may
// surface unchanged.
func Upstreamf(op string, err error, format string, args ...interface{}) error {
	return upstreamf(op, err, format, args...)
}

// UpstreamMessage extracts the user-facing message from a store failure:
// the service's own message when present, a generic fallback otherwise.
func UpstreamMessage(err error) string {
	if err == nil {
		return ""
	}
	var uerr *UpstreamError
	if errors.As(err, &uerr) {
		if uerr.Message != "" {
			return uerr.Message
		}
		return genericUpstreamMessage
	}
	return genericUpstreamMessage
}
