package domain

import "time"

type Status string

const (
	StatusDraft    Status = "draft"
	StatusIssued   Status = "issued"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo enforces the quotation lifecycle:
// draft -> issued -> {accepted, rejected}.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusIssued
	case StatusIssued:
		return next == StatusAccepted || next == StatusRejected
	}
	return false
}

// Mutable reports whether a quotation in this status may still be edited
// locally. Only drafts are.
func (s Status) Mutable() bool {
	return s == StatusDraft
}

type PricingMethod string

const (
	PricingLinearFoot PricingMethod = "linear-foot"
	PricingPerPiece   PricingMethod = "per-piece"
	PricingArea       PricingMethod = "area"
	PricingVolume     PricingMethod = "volume"
)

// MaterialRef is externally supplied reference data attached to items and
// components. UnitCost is serialized as "cost", matching the persisted shape.
type MaterialRef struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	UnitCost float64 `json:"cost"`
	Unit     string  `json:"unit"`
}

type ClientRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Component struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Quantity    int           `json:"quantity"`
	Length      float64       `json:"length"`
	PricingType PricingMethod `json:"pricingType"`
	Material    *MaterialRef  `json:"material"`
	Notes       string        `json:"notes"`
}

type Item struct {
	ID int64 `json:"id"`
	// ComponentID references the backend catalog entry this item was built
	// from, when any.
	ComponentID   int64         `json:"componentId,omitempty"`
	Name          string        `json:"name"`
	Quantity      int           `json:"quantity"`
	Length        float64       `json:"length"`
	Width         float64       `json:"width"`
	Height        float64       `json:"height"`
	Unit          string        `json:"unit"`
	PricingMethod PricingMethod `json:"pricingMethod"`
	BaseMaterial  *MaterialRef  `json:"baseMaterial"`
	HardwareCost  float64       `json:"hardwareCost"`
	LabourHours   float64       `json:"labourHours"`
	LabourRate    float64       `json:"labourRate"`
	Notes         string        `json:"notes"`
	Components    []Component   `json:"components"`
}

// Quotation is the aggregate root. ID, QuotationNo and TotalCost are
// server-assigned and stay zero-valued until a remote save succeeds.
type Quotation struct {
	ID               int64      `json:"id,omitempty"`
	QuotationNo      string     `json:"quotationNo,omitempty"`
	Title            string     `json:"title"`
	Client           *ClientRef `json:"client"`
	ClientReference  string     `json:"clientReferenceCode"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Currency         string     `json:"currency"`
	MarkupPercentage float64    `json:"markupPercentage"`
	TaxRate          float64    `json:"taxRate"`
	Items            []Item     `json:"items"`
	Notes            string     `json:"notes"`
	Status           Status     `json:"status"`
	TotalCost        float64    `json:"totalCost,omitempty"`
}

// ServerAssigned carries the fields the backend decides for us. Merging one
// into a quotation must never touch locally edited fields.
type ServerAssigned struct {
	ID          int64
	QuotationNo string
	TotalCost   float64
}

// DefaultQuotation returns the empty draft every editor session starts from.
func DefaultQuotation() Quotation {
	return Quotation{
		Title:            "",
		Currency:         "USD",
		MarkupPercentage: 20,
		TaxRate:          0,
		Items:            []Item{},
		Status:           StatusDraft,
	}
}

// localID generates an identifier unique within a quotation. The editor owns
// these until the server assigns real ones.
func localID() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

func NewItem() Item {
	return Item{
		ID:            localID(),
		Quantity:      1,
		Unit:          "ft",
		PricingMethod: PricingLinearFoot,
		LabourRate:    50,
		Components:    []Component{},
	}
}

func NewComponent() Component {
	return Component{
		ID:          localID(),
		Quantity:    1,
		PricingType: PricingPerPiece,
	}
}

// Merge applies server-assigned identity fields in place.
func (q *Quotation) Merge(sa ServerAssigned) {
	if sa.ID != 0 {
		q.ID = sa.ID
	}
	if sa.QuotationNo != "" {
		q.QuotationNo = sa.QuotationNo
	}
	if sa.TotalCost != 0 {
		q.TotalCost = sa.TotalCost
	}
}

// Clone returns a deep copy so callers can hand out snapshots without
// aliasing the live draft.
func (q Quotation) Clone() Quotation {
	out := q
	if q.Client != nil {
		c := *q.Client
		out.Client = &c
	}
	out.Items = make([]Item, len(q.Items))
	for i, item := range q.Items {
		out.Items[i] = item.Clone()
	}
	return out
}

func (it Item) Clone() Item {
	out := it
	if it.BaseMaterial != nil {
		m := *it.BaseMaterial
		out.BaseMaterial = &m
	}
	out.Components = make([]Component, len(it.Components))
	for i, c := range it.Components {
		out.Components[i] = c
		if c.Material != nil {
			m := *c.Material
			out.Components[i].Material = &m
		}
	}
	return out
}
