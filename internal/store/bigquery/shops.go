package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/tigranv/moneta/internal/store"
)

// ListShops retrieves all shops.
func (c *Client) ListShops(ctx context.Context) ([]*store.ShopRow, error) {
	query := fmt.Sprintf(`
		SELECT
			shop_id,
			name,
			category_id,
			created_ts
		FROM %s
		ORDER BY name
	`, c.tableRef(store.TableShops))

	it, err := c.bq.Query(query).Read(ctx)
	if err != nil {
		return nil, store.Upstream("ListShops: reading query", err)
	}
	return collectRows[store.ShopRow]("ListShops", it)
}

// InsertShop inserts a single shop row.
func (c *Client) InsertShop(ctx context.Context, row *store.ShopRow) error {
	if err := c.inserter(store.TableShops).Put(ctx, row); err != nil {
		return store.Upstreamf("InsertShop", err, "could not save shop %q", row.Name)
	}
	return nil
}

// DeleteShop deletes one shop by id.
func (c *Client) DeleteShop(ctx context.Context, id string) error {
	q := c.bq.Query(fmt.Sprintf(`
		DELETE FROM %s
		WHERE shop_id = @id
	`, c.tableRef(store.TableShops)))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}

	return c.runDML(ctx, "DeleteShop", q)
}
