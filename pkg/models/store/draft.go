package store

import "time"

// DraftRecord is one persisted draft slot row. WriterID identifies the store
// instance that produced the payload so watchers can ignore their own writes.
type DraftRecord struct {
	SlotKey   string
	Payload   []byte
	WriterID  string
	Revision  int64
	UpdatedAt time.Time
}
