package domain

import "time"

// DraftState is the read-only view of the draft store a UI renders from.
type DraftState struct {
	Quotation      Quotation
	IsDirty        bool
	LastSaved      *time.Time
	AutoSaveStatus string
}
