package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/tigranv/moneta/internal/store"
)

// ListCategories retrieves all categories and subcategories.
func (c *Client) ListCategories(ctx context.Context) ([]*store.CategoryRow, error) {
	query := fmt.Sprintf(`
		SELECT
			category_id,
			name,
			nature,
			parent_category_id,
			is_shop,
			created_ts
		FROM %s
		ORDER BY name
	`, c.tableRef(store.TableCategories))

	it, err := c.bq.Query(query).Read(ctx)
	if err != nil {
		return nil, store.Upstream("ListCategories: reading query", err)
	}
	return collectRows[store.CategoryRow]("ListCategories", it)
}

// InsertCategory inserts a single category row.
func (c *Client) InsertCategory(ctx context.Context, row *store.CategoryRow) error {
	if err := c.inserter(store.TableCategories).Put(ctx, row); err != nil {
		return store.Upstreamf("InsertCategory", err, "could not save category %q", row.Name)
	}
	return nil
}

// DeleteCategory deletes one category by id.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	q := c.bq.Query(fmt.Sprintf(`
		DELETE FROM %s
		WHERE category_id = @id
	`, c.tableRef(store.TableCategories)))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}

	return c.runDML(ctx, "DeleteCategory", q)
}
