package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const DraftSlotSchema = `
	CREATE TABLE IF NOT EXISTS draft_slots (
		slot_key VARCHAR NOT NULL,
		payload JSON NOT NULL,
		writer_id VARCHAR NOT NULL,
		revision BIGINT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (slot_key)
	);
`

const MaterialCatalogSchema = `
	CREATE TABLE IF NOT EXISTS materials (
		id BIGINT NOT NULL,
		name VARCHAR NOT NULL,
		unit_cost DOUBLE NOT NULL,
		unit VARCHAR NOT NULL,
		category VARCHAR NOT NULL,
		PRIMARY KEY (id)
	);
`

var bootQueries = []string{
	DraftSlotSchema,
	MaterialCatalogSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		bootQueries := append([]string{}, bootQueries...)

		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
