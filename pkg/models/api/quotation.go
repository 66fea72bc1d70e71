// Package api holds the wire shapes of the remote quotation service. Field
// names are the backend's snake_case; mapping to and from the domain model
// lives in pkg/adapters.
package api

import (
	"encoding/json"
	"time"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Details string          `json:"details,omitempty"`
}

// QuotationPayload is the outbound save/create body.
type QuotationPayload struct {
	Title           string        `json:"title"`
	ClientID        *int64        `json:"client_id"`
	ClientReference string        `json:"client_reference_code,omitempty"`
	Currency        string        `json:"currency"`
	Markup          float64       `json:"markup"`
	TaxRate         float64       `json:"tax_rate"`
	Notes           string        `json:"notes"`
	Items           []ItemPayload `json:"items"`
}

type ItemPayload struct {
	ComponentID int64   `json:"component_id,omitempty"`
	Name        string  `json:"name"`
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Quantity    int     `json:"quantity"`
	Notes       string  `json:"notes"`
}

// Quotation is the inbound representation of a stored quotation.
type Quotation struct {
	ID          int64      `json:"id"`
	QuotationNo string     `json:"quotation_no"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	TotalCost   float64    `json:"total_cost"`
	Client      *Client    `json:"client,omitempty"`
	Items       []Item     `json:"items,omitempty"`
	Materials   []Material `json:"materials,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type Client struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Item struct {
	ID          int64   `json:"id"`
	ComponentID int64   `json:"component_id"`
	Name        string  `json:"name"`
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Quantity    int     `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
	TotalCost   float64 `json:"total_cost"`
	Notes       string  `json:"notes"`
}

type Material struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	UnitCost float64 `json:"cost"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
}

type StatusUpdate struct {
	Status string `json:"status"`
}
