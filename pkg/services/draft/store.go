// Package draft owns the in-memory quotation being edited: write-through
// persistence to a slot, dirty tracking against the last clean snapshot, and
// opportunistic autosaving to a remote save function.
package draft

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/qb-tools/quote-forge/pkg/models/domain"
	storemodels "github.com/qb-tools/quote-forge/pkg/models/store"
)

// Slot is the subset of the persisted slot store the draft store requires.
type Slot interface {
	Read(ctx context.Context) (*storemodels.DraftRecord, error)
	Write(ctx context.Context, payload []byte) error
	Delete(ctx context.Context) error
	Watch(ctx context.Context) <-chan storemodels.DraftRecord
}

// Updater produces the next quotation from the previous one.
type Updater func(prev domain.Quotation) domain.Quotation

// UnsavedChangesWarning is the prompt a host page should show before
// navigating away from a dirty draft. The store only offers the signal; the
// host owns the decision.
const UnsavedChangesWarning = "You have unsaved changes. Are you sure you want to leave?"

// Store holds one mutable quotation plus its dirty/save bookkeeping. It is
// clean after Initialize, MarkAsSaved and ClearDraft, and dirty whenever the
// serialized quotation differs from the snapshot taken at the last clean
// point.
type Store struct {
	mu        sync.Mutex
	slot      Slot
	quotation domain.Quotation
	baseline  string
	dirty     bool
	lastSaved *time.Time
	status    string

	canceler  interface{ Clear() }
	watchStop context.CancelFunc
	watchDone chan struct{}
}

func NewStore(slot Slot) *Store {
	q := domain.DefaultQuotation()
	return &Store{
		slot:      slot,
		quotation: q,
		baseline:  canonical(q),
	}
}

// Initialize loads the draft: the seed when one is given, otherwise the
// persisted slot when it parses to a plausible quotation, otherwise the
// default empty quotation. Load failures are cache misses, never fatal.
// It also starts the cross-instance watch.
func (s *Store) Initialize(ctx context.Context, seed *domain.Quotation) {
	logger := zerolog.Ctx(ctx)

	q := domain.DefaultQuotation()
	switch {
	case seed != nil:
		q = seed.Clone()
	default:
		rec, err := s.slot.Read(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to read persisted draft, starting empty")
		} else if rec != nil {
			if restored, ok := decodeQuotation(rec.Payload); ok {
				q = restored
			} else {
				logger.Warn().Msg("persisted draft is malformed, starting empty")
			}
		}
	}

	s.mu.Lock()
	s.quotation = q
	s.baseline = canonical(q)
	s.dirty = false
	s.mu.Unlock()

	s.startWatch(ctx)
}

// Update applies an updater to the current quotation, persists the result
// write-through, and recomputes dirtiness against the last clean snapshot.
func (s *Store) Update(ctx context.Context, update Updater) {
	s.mu.Lock()
	next := update(s.quotation.Clone())
	s.quotation = next
	serialized := canonical(next)
	s.dirty = serialized != s.baseline
	s.mu.Unlock()

	s.persist(ctx, serialized)
}

// Replace is Update with a literal value.
func (s *Store) Replace(ctx context.Context, q domain.Quotation) {
	s.Update(ctx, func(domain.Quotation) domain.Quotation { return q })
}

// MarkAsSaved transitions to clean. Server-assigned fields, when given,
// merge into the current quotation rather than the snapshot that was saved,
// so edits made while a slow save was in flight are kept.
func (s *Store) MarkAsSaved(ctx context.Context, server *domain.ServerAssigned) {
	s.mu.Lock()
	if server != nil {
		s.quotation.Merge(*server)
	}
	serialized := canonical(s.quotation)
	s.baseline = serialized
	s.dirty = false
	now := time.Now()
	s.lastSaved = &now
	persistNeeded := server != nil
	s.mu.Unlock()

	if persistNeeded {
		s.persist(ctx, serialized)
	}
}

// ClearDraft drops the persisted slot, resets to the default empty
// quotation, and cancels any pending autosave.
func (s *Store) ClearDraft(ctx context.Context) {
	if err := s.slot.Delete(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to delete persisted draft")
	}

	s.mu.Lock()
	q := domain.DefaultQuotation()
	s.quotation = q
	s.baseline = canonical(q)
	s.dirty = false
	s.lastSaved = nil
	s.status = ""
	canceler := s.canceler
	s.mu.Unlock()

	if canceler != nil {
		canceler.Clear()
	}
}

// Teardown stops the watch and cancels any pending autosave. Safe to call
// more than once.
func (s *Store) Teardown() {
	s.mu.Lock()
	stop := s.watchStop
	done := s.watchDone
	canceler := s.canceler
	s.watchStop = nil
	s.watchDone = nil
	s.mu.Unlock()

	if canceler != nil {
		canceler.Clear()
	}
	if stop != nil {
		stop()
		<-done
	}
}

// Quotation returns a snapshot of the current draft.
func (s *Store) Quotation() domain.Quotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quotation.Clone()
}

func (s *Store) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Store) HasUnsavedChanges() bool {
	return s.IsDirty()
}

// UnloadWarning returns the prompt to show before leaving, and whether it
// applies right now.
func (s *Store) UnloadWarning() (string, bool) {
	if s.IsDirty() {
		return UnsavedChangesWarning, true
	}
	return "", false
}

func (s *Store) AutoSaveStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// State bundles the store's view for rendering.
func (s *Store) State() domain.DraftState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := domain.DraftState{
		Quotation:      s.quotation.Clone(),
		IsDirty:        s.dirty,
		AutoSaveStatus: s.status,
	}
	if s.lastSaved != nil {
		t := *s.lastSaved
		state.LastSaved = &t
	}
	return state
}

func (s *Store) setStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// clearStatusIf resets the transient status only when nothing replaced it in
// the meantime.
func (s *Store) clearStatusIf(previous string) {
	s.mu.Lock()
	if s.status == previous {
		s.status = ""
	}
	s.mu.Unlock()
}

func (s *Store) bindCanceler(c interface{ Clear() }) {
	s.mu.Lock()
	s.canceler = c
	s.mu.Unlock()
}

// persist writes the serialized quotation through to the slot. Failures are
// logged and swallowed: the in-memory draft stays authoritative.
func (s *Store) persist(ctx context.Context, serialized string) {
	if err := s.slot.Write(ctx, []byte(serialized)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to persist draft")
		return
	}
	s.mu.Lock()
	now := time.Now()
	s.lastSaved = &now
	s.mu.Unlock()
}

// startWatch subscribes to slot changes made by other store instances and
// replaces the in-memory quotation with whatever they wrote last.
func (s *Store) startWatch(ctx context.Context) {
	s.mu.Lock()
	if s.watchStop != nil {
		s.mu.Unlock()
		return
	}
	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	s.watchStop = cancel
	s.watchDone = done
	s.mu.Unlock()

	logger := zerolog.Ctx(ctx).With().Str("component", "draft_watch").Logger()
	changes := s.slot.Watch(watchCtx)

	go func() {
		defer close(done)
		for rec := range changes {
			q, ok := decodeQuotation(rec.Payload)
			if !ok {
				logger.Warn().Str("writer", rec.WriterID).Msg("ignoring malformed draft from another instance")
				continue
			}
			s.mu.Lock()
			s.quotation = q
			s.mu.Unlock()
			logger.Debug().Str("writer", rec.WriterID).Int64("revision", rec.Revision).Msg("draft replaced by another instance")
		}
	}()
}

// decodeQuotation accepts only a JSON object carrying a "title" key; the
// parsed value is layered over the defaults so older payloads pick up new
// fields.
func decodeQuotation(payload []byte) (domain.Quotation, bool) {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(payload, &shape); err != nil {
		return domain.Quotation{}, false
	}
	if _, hasTitle := shape["title"]; !hasTitle {
		return domain.Quotation{}, false
	}

	q := domain.DefaultQuotation()
	if err := json.Unmarshal(payload, &q); err != nil {
		return domain.Quotation{}, false
	}
	if !q.Status.Valid() {
		q.Status = domain.StatusDraft
	}
	if q.Items == nil {
		q.Items = []domain.Item{}
	}
	return q, true
}

// canonical is the serialized form dirtiness is computed against.
func canonical(q domain.Quotation) string {
	b, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	return string(b)
}
