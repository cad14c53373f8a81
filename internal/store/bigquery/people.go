package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/tigranv/moneta/internal/store"
)

// ListPeople retrieves all people.
func (c *Client) ListPeople(ctx context.Context) ([]*store.PersonRow, error) {
	query := fmt.Sprintf(`
		SELECT
			person_id,
			name,
			image_uri,
			created_ts
		FROM %s
		ORDER BY name
	`, c.tableRef(store.TablePeople))

	it, err := c.bq.Query(query).Read(ctx)
	if err != nil {
		return nil, store.Upstream("ListPeople: reading query", err)
	}
	return collectRows[store.PersonRow]("ListPeople", it)
}

// InsertPerson inserts a single person row.
func (c *Client) InsertPerson(ctx context.Context, row *store.PersonRow) error {
	if err := c.inserter(store.TablePeople).Put(ctx, row); err != nil {
		return store.Upstreamf("InsertPerson", err, "could not save person %q", row.Name)
	}
	return nil
}

// DeletePerson deletes one person by id.
func (c *Client) DeletePerson(ctx context.Context, id string) error {
	q := c.bq.Query(fmt.Sprintf(`
		DELETE FROM %s
		WHERE person_id = @id
	`, c.tableRef(store.TablePeople)))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}

	return c.runDML(ctx, "DeletePerson", q)
}

// SetPersonImage points a person at an uploaded avatar object.
func (c *Client) SetPersonImage(ctx context.Context, id, imageURI string) error {
	q := c.bq.Query(fmt.Sprintf(`
		UPDATE %s
		SET image_uri = @image_uri
		WHERE person_id = @id
	`, c.tableRef(store.TablePeople)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "image_uri", Value: imageURI},
		{Name: "id", Value: id},
	}

	return c.runDML(ctx, "SetPersonImage", q)
}
