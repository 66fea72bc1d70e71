// Package materials keeps a local catalog of base materials for the
// quotation editor's pickers. The catalog starts pre-seeded so pricing works
// offline; entries can be replaced from the remote service when available.
package materials

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/qb-tools/quote-forge/pkg/models/store"
	"github.com/qb-tools/quote-forge/pkg/store/duckdb"
)

type Store interface {
	List(ctx context.Context) ([]store.MaterialRecord, error)
	Upsert(ctx context.Context, m store.MaterialRecord) error
}

type catalogStore struct {
	db *sql.DB
}

// seedMaterials is the offline starter catalog.
var seedMaterials = []store.MaterialRecord{
	{ID: 1, Name: "Steel Sheet", UnitCost: 25.50, Unit: "sq ft", Category: "Metal"},
	{ID: 2, Name: "Aluminum Bar", UnitCost: 15.75, Unit: "linear ft", Category: "Metal"},
	{ID: 3, Name: "Wood Plank", UnitCost: 8.25, Unit: "linear ft", Category: "Wood"},
	{ID: 4, Name: "Plastic Sheet", UnitCost: 12.00, Unit: "sq ft", Category: "Plastic"},
	{ID: 5, Name: "Glass Panel", UnitCost: 35.00, Unit: "sq ft", Category: "Glass"},
}

func NewStore(ctx context.Context, db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	s := &catalogStore{db: db}
	if err := s.seed(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *catalogStore) List(ctx context.Context) ([]store.MaterialRecord, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unit_cost, unit, category
		FROM materials
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close material rows")
		}
	}(rows)

	var records []store.MaterialRecord
	for rows.Next() {
		var rec store.MaterialRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.UnitCost, &rec.Unit, &rec.Category); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *catalogStore) Upsert(ctx context.Context, m store.MaterialRecord) error {
	query := `
		INSERT INTO materials (id, name, unit_cost, unit, category)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			unit_cost = excluded.unit_cost,
			unit = excluded.unit,
			category = excluded.category`

	var err error
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		_, err = tx.ExecContext(ctx, query, m.ID, m.Name, m.UnitCost, m.Unit, m.Category)
	} else {
		_, err = s.db.ExecContext(ctx, query, m.ID, m.Name, m.UnitCost, m.Unit, m.Category)
	}
	if err != nil {
		return fmt.Errorf("upsert material: %w", err)
	}
	return nil
}

// seed fills an empty catalog so a fresh database prices quotations without
// a remote round trip. The rows land in one transaction; a half-seeded
// catalog would pass the count check forever.
func (s *catalogStore) seed(ctx context.Context) error {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM materials`).Scan(&count); err != nil {
		return fmt.Errorf("count materials: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}

	txCtx := duckdb.WithTransaction(ctx, tx)
	for _, m := range seedMaterials {
		if err := s.Upsert(txCtx, m); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				zerolog.Ctx(ctx).Warn().Err(rbErr).Msg("failed to roll back seed transaction")
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	return nil
}
