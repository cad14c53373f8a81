// Package bigquery implements the store interfaces against the hosted
// dataset. It is a thin client: every operation is a single parameterized
// query or streaming insert against a named table, and no business logic
// runs here.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/tigranv/moneta/internal/store"
)

// Client is the hosted-store implementation of store.Store. It holds a
// shared BigQuery client to avoid creating a new connection per
// operation.
type Client struct {
	bq        *bigquery.Client
	projectID string
	dataset   string
}

// New creates a Client with its own BigQuery connection.
func New(ctx context.Context, projectID, dataset string) (*Client, error) {
	bq, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery.New: creating client: %w", err)
	}
	return NewWithClient(bq, projectID, dataset), nil
}

// NewWithClient wraps an existing BigQuery client.
func NewWithClient(bq *bigquery.Client, projectID, dataset string) *Client {
	return &Client{bq: bq, projectID: projectID, dataset: dataset}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.bq != nil {
		return c.bq.Close()
	}
	return nil
}

// tableRef returns the fully qualified quoted table name for SQL text.
// Table names come from the fixed store.Table* constants, never from
// user input.
func (c *Client) tableRef(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", c.projectID, c.dataset, name)
}

// inserter returns the streaming inserter for a table.
func (c *Client) inserter(name string) *bigquery.Inserter {
	return c.bq.DatasetInProject(c.projectID, c.dataset).Table(name).Inserter()
}

// runDML executes a mutation query and waits for its job to finish.
func (c *Client) runDML(ctx context.Context, op string, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return store.Upstream(op+": run query", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return store.Upstream(op+": wait for job", err)
	}
	if err := status.Err(); err != nil {
		return store.Upstream(op+": job error", err)
	}
	return nil
}

// collectRows drains a query iterator into a typed slice.
func collectRows[T any](op string, it *bigquery.RowIterator) ([]*T, error) {
	var rows []*T
	for {
		var r T
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, store.Upstream(op+": iterating", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}

// Ensure Client covers the full store surface.
var _ store.Store = (*Client)(nil)
