package adapters

import (
	"github.com/qb-tools/quote-forge/pkg/models/api"
	"github.com/qb-tools/quote-forge/pkg/models/domain"
	"github.com/qb-tools/quote-forge/pkg/models/store"
)

// MapQuotationDomainToPayload builds the outbound save body. Zero-valued
// quantities and dimensions fall back to 1 before transmission; the backend
// rejects zero-sized items and the editor allows them transiently.
func MapQuotationDomainToPayload(q domain.Quotation) api.QuotationPayload {
	payload := api.QuotationPayload{
		Title:           q.Title,
		ClientReference: q.ClientReference,
		Currency:        q.Currency,
		Markup:          q.MarkupPercentage,
		TaxRate:         q.TaxRate,
		Notes:           q.Notes,
		Items:           make([]api.ItemPayload, 0, len(q.Items)),
	}
	if q.Client != nil {
		id := q.Client.ID
		payload.ClientID = &id
	}
	for _, item := range q.Items {
		payload.Items = append(payload.Items, api.ItemPayload{
			ComponentID: item.ComponentID,
			Name:        item.Name,
			Length:      dimensionOrDefault(item.Length),
			Width:       dimensionOrDefault(item.Width),
			Height:      dimensionOrDefault(item.Height),
			Quantity:    quantityOrDefault(item.Quantity),
			Notes:       item.Notes,
		})
	}
	return payload
}

func MapQuotationApiToDomain(in api.Quotation) domain.Quotation {
	q := domain.Quotation{
		ID:          in.ID,
		QuotationNo: in.QuotationNo,
		Title:       in.Title,
		Status:      domain.Status(in.Status),
		TotalCost:   in.TotalCost,
		Items:       make([]domain.Item, 0, len(in.Items)),
	}
	if !q.Status.Valid() {
		q.Status = domain.StatusDraft
	}
	if in.Client != nil {
		q.Client = &domain.ClientRef{ID: in.Client.ID, Name: in.Client.Name}
	}
	for _, item := range in.Items {
		q.Items = append(q.Items, domain.Item{
			ID:          item.ID,
			ComponentID: item.ComponentID,
			Name:        item.Name,
			Length:      item.Length,
			Width:       item.Width,
			Height:      item.Height,
			Quantity:    item.Quantity,
			Notes:       item.Notes,
			Components:  []domain.Component{},
		})
	}
	return q
}

// MapApiToServerAssigned extracts only the fields the server owns. This is
// what gets merged back after a save so that local edits made while the save
// was in flight survive.
func MapApiToServerAssigned(in api.Quotation) domain.ServerAssigned {
	return domain.ServerAssigned{
		ID:          in.ID,
		QuotationNo: in.QuotationNo,
		TotalCost:   in.TotalCost,
	}
}

func MapMaterialApiToDomain(in api.Material) domain.MaterialRef {
	return domain.MaterialRef{
		ID:       in.ID,
		Name:     in.Name,
		UnitCost: in.UnitCost,
		Unit:     in.Unit,
	}
}

// MapMaterialApiToRecord builds the catalog row a remote material upserts as.
func MapMaterialApiToRecord(in api.Material) store.MaterialRecord {
	return store.MaterialRecord{
		ID:       in.ID,
		Name:     in.Name,
		UnitCost: in.UnitCost,
		Unit:     in.Unit,
		Category: in.Category,
	}
}

// MapMaterialStoreToDomain drops the catalog-only category field.
func MapMaterialStoreToDomain(in store.MaterialRecord) domain.MaterialRef {
	return domain.MaterialRef{
		ID:       in.ID,
		Name:     in.Name,
		UnitCost: in.UnitCost,
		Unit:     in.Unit,
	}
}

func dimensionOrDefault(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func quantityOrDefault(v int) int {
	if v == 0 {
		return 1
	}
	return v
}
