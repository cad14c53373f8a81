package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/tigranv/moneta/internal/store"
)

// ListAccounts retrieves all accounts, newest first.
func (c *Client) ListAccounts(ctx context.Context) ([]*store.AccountRow, error) {
	query := fmt.Sprintf(`
		SELECT
			account_id,
			name,
			account_type,
			credit_limit,
			is_cashback_eligible,
			cashback_percentage,
			max_cashback_amount,
			created_ts
		FROM %s
		ORDER BY created_ts DESC
	`, c.tableRef(store.TableAccounts))

	it, err := c.bq.Query(query).Read(ctx)
	if err != nil {
		return nil, store.Upstream("ListAccounts: reading query", err)
	}
	return collectRows[store.AccountRow]("ListAccounts", it)
}

// InsertAccount inserts a single account row.
func (c *Client) InsertAccount(ctx context.Context, row *store.AccountRow) error {
	if err := c.inserter(store.TableAccounts).Put(ctx, row); err != nil {
		return store.Upstreamf("InsertAccount", err, "could not save account %q", row.Name)
	}
	return nil
}

// DeleteAccount deletes one account by id.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	q := c.bq.Query(fmt.Sprintf(`
		DELETE FROM %s
		WHERE account_id = @id
	`, c.tableRef(store.TableAccounts)))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}

	return c.runDML(ctx, "DeleteAccount", q)
}
