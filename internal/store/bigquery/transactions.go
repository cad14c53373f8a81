package bigquery

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"

	"github.com/tigranv/moneta/internal/store"
)

// ListTransactions retrieves transactions matching the filter, newest
// first. Nature filters match against every historical spelling the
// caller supplies (see domain.WireSpellings).
func (c *Client) ListTransactions(ctx context.Context, filter store.TransactionFilter) ([]*store.TransactionRow, error) {
	var (
		conds  []string
		params []bigquery.QueryParameter
	)

	if len(filter.Natures) > 0 {
		conds = append(conds, "t.nature IN UNNEST(@natures)")
		params = append(params, bigquery.QueryParameter{Name: "natures", Value: filter.Natures})
	}
	if filter.AccountID != "" {
		conds = append(conds, "(t.from_account_id = @account_id OR t.to_account_id = @account_id)")
		params = append(params, bigquery.QueryParameter{Name: "account_id", Value: filter.AccountID})
	}
	if filter.PersonID != "" {
		conds = append(conds, "t.person_id = @person_id")
		params = append(params, bigquery.QueryParameter{Name: "person_id", Value: filter.PersonID})
	}
	if filter.DebtCycle != "" {
		conds = append(conds, "t.debt_cycle = @debt_cycle")
		params = append(params, bigquery.QueryParameter{Name: "debt_cycle", Value: filter.DebtCycle})
	}
	if filter.StartDate != nil {
		conds = append(conds, "t.transaction_date >= @start_date")
		params = append(params, bigquery.QueryParameter{Name: "start_date", Value: filter.StartDate.String()})
	}
	if filter.EndDate != nil {
		conds = append(conds, "t.transaction_date <= @end_date")
		params = append(params, bigquery.QueryParameter{Name: "end_date", Value: filter.EndDate.String()})
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, "\n		  AND ")
	}

	q := c.bq.Query(fmt.Sprintf(`
		SELECT
			t.transaction_id,
			t.transaction_date,
			t.nature,
			t.amount,
			t.notes,
			t.from_account_id,
			t.to_account_id,
			t.person_id,
			t.cashback_percent,
			t.cashback_amount,
			t.cashback_source,
			t.final_price,
			t.debt_cycle,
			t.created_ts
		FROM %s t
		%s
		ORDER BY t.transaction_date DESC, t.created_ts DESC
	`, c.tableRef(store.TableTransactions), where))
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, store.Upstream("ListTransactions: reading query", err)
	}
	return collectRows[store.TransactionRow]("ListTransactions", it)
}

// InsertTransaction inserts a single transaction row. Validation and
// cashback resolution happen before this call, never after.
func (c *Client) InsertTransaction(ctx context.Context, row *store.TransactionRow) error {
	if err := c.inserter(store.TableTransactions).Put(ctx, row); err != nil {
		return store.Upstreamf("InsertTransaction", err, "could not save the transaction")
	}
	return nil
}

// DeleteTransaction deletes one transaction by id.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	q := c.bq.Query(fmt.Sprintf(`
		DELETE FROM %s
		WHERE transaction_id = @id
	`, c.tableRef(store.TableTransactions)))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}

	return c.runDML(ctx, "DeleteTransaction", q)
}

// BulkDeleteTransactions deletes ids one by one under the given policy.
// Deletes are sequential and there is no rollback: rows deleted before a
// failure stay deleted.
func (c *Client) BulkDeleteTransactions(ctx context.Context, ids []string, policy store.BulkPolicy) store.BulkDeleteResult {
	var result store.BulkDeleteResult
	for _, id := range ids {
		if err := c.DeleteTransaction(ctx, id); err != nil {
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
