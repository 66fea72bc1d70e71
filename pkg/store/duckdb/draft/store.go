// Package draft persists the editor's draft slot in DuckDB: a single keyed
// row holding the serialized quotation, shared by every store instance that
// opens the same database file.
package draft

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qb-tools/quote-forge/pkg/models/store"
	"github.com/qb-tools/quote-forge/pkg/store/duckdb"
)

// DefaultSlotKey is the slot the quotation editor persists under.
const DefaultSlotKey = "quotation_draft"

const defaultPollInterval = 500 * time.Millisecond

// Store supports read/write/delete on one draft slot plus change
// notifications for writes made by other store instances.
type Store interface {
	Read(ctx context.Context) (*store.DraftRecord, error)
	Write(ctx context.Context, payload []byte) error
	Delete(ctx context.Context) error
	Watch(ctx context.Context) <-chan store.DraftRecord
	WriterID() string
}

type slotStore struct {
	db           *sql.DB
	key          string
	writerID     string
	pollInterval time.Duration
	lastSeen     int64
}

type Option func(*slotStore)

func WithPollInterval(d time.Duration) Option {
	return func(s *slotStore) { s.pollInterval = d }
}

func NewStore(db *sql.DB, key string, opts ...Option) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if key == "" {
		key = DefaultSlotKey
	}
	s := &slotStore{
		db:           db,
		key:          key,
		writerID:     uuid.NewString(),
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *slotStore) WriterID() string {
	return s.writerID
}

func (s *slotStore) Read(ctx context.Context) (*store.DraftRecord, error) {
	query := `
		SELECT slot_key, payload, writer_id, revision, updated_at
		FROM draft_slots
		WHERE slot_key = ?`

	rec := &store.DraftRecord{}
	err := s.db.QueryRowContext(ctx, query, s.key).
		Scan(&rec.SlotKey, &rec.Payload, &rec.WriterID, &rec.Revision, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read draft slot: %w", err)
	}
	return rec, nil
}

func (s *slotStore) Write(ctx context.Context, payload []byte) error {
	query := `
		INSERT INTO draft_slots (slot_key, payload, writer_id, revision, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (slot_key) DO UPDATE SET
			payload = excluded.payload,
			writer_id = excluded.writer_id,
			revision = draft_slots.revision + 1,
			updated_at = excluded.updated_at`

	var err error
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		_, err = tx.ExecContext(ctx, query, s.key, string(payload), s.writerID, time.Now().UTC())
	} else {
		_, err = s.db.ExecContext(ctx, query, s.key, string(payload), s.writerID, time.Now().UTC())
	}
	if err != nil {
		return fmt.Errorf("write draft slot: %w", err)
	}
	return nil
}

func (s *slotStore) Delete(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM draft_slots WHERE slot_key = ?`, s.key)
	if err != nil {
		return fmt.Errorf("delete draft slot: %w", err)
	}
	return nil
}

// Watch polls the slot and emits records written by other store instances.
// The channel closes when ctx is cancelled. Own writes are never echoed.
func (s *slotStore) Watch(ctx context.Context) <-chan store.DraftRecord {
	changes := make(chan store.DraftRecord)

	if rec, err := s.Read(ctx); err == nil && rec != nil {
		s.lastSeen = rec.Revision
	}

	go func() {
		defer close(changes)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rec, err := s.pollOnce(ctx)
				if err != nil || rec == nil {
					continue
				}
				select {
				case changes <- *rec:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return changes
}

// pollOnce returns the slot record when another writer advanced it past the
// last revision this watcher observed.
func (s *slotStore) pollOnce(ctx context.Context) (*store.DraftRecord, error) {
	rec, err := s.Read(ctx)
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.Revision <= s.lastSeen {
		return nil, nil
	}
	s.lastSeen = rec.Revision
	if rec.WriterID == s.writerID {
		return nil, nil
	}
	return rec, nil
}
