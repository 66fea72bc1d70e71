package materials

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storemodels "github.com/qb-tools/quote-forge/pkg/models/store"
)

var listQuery = regexp.QuoteMeta(`
		SELECT id, name, unit_cost, unit, category
		FROM materials
		ORDER BY name`)

var countQuery = regexp.QuoteMeta(`SELECT COUNT(*) FROM materials`)

func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// non-empty catalog: constructor skips seeding
	mock.ExpectQuery(countQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))

	s, err := NewStore(context.Background(), db)
	require.NoError(t, err)
	return s, mock
}

func TestNewStore_SeedsEmptyCatalog(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery(countQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectBegin()
	for _, m := range seedMaterials {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO materials`)).
			WithArgs(m.ID, m.Name, m.UnitCost, m.Unit, m.Category).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	_, err = NewStore(context.Background(), db)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStore_FailedSeedRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery(countQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO materials`)).
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	_, err = NewStore(context.Background(), db)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "name", "unit_cost", "unit", "category"}).
		AddRow(int64(3), "Wood Plank", 8.25, "linear ft", "Wood").
		AddRow(int64(1), "Steel Sheet", 25.50, "sq ft", "Metal")
	mock.ExpectQuery(listQuery).WillReturnRows(rows)

	records, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Wood Plank", records[0].Name)
	assert.Equal(t, 25.50, records[1].UnitCost)
}

func TestUpsert(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO materials`)).
		WithArgs(int64(6), "Oak Veneer", 11.40, "sq ft", "Wood").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Upsert(context.Background(), storemodels.MaterialRecord{
		ID:       6,
		Name:     "Oak Veneer",
		UnitCost: 11.40,
		Unit:     "sq ft",
		Category: "Wood",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
