// Package quotation wires the draft store, autosave scheduler, validation
// and the remote service into the editing workflow: edits debounce into
// background saves, explicit saves validate first, lifecycle transitions are
// checked before they reach the remote API.
package quotation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/qb-tools/quote-forge/pkg/adapters"
	"github.com/qb-tools/quote-forge/pkg/models/api"
	"github.com/qb-tools/quote-forge/pkg/models/domain"
	"github.com/qb-tools/quote-forge/pkg/models/store"
	"github.com/qb-tools/quote-forge/pkg/services/draft"
	"github.com/qb-tools/quote-forge/pkg/services/pricing"
	"github.com/qb-tools/quote-forge/pkg/services/validation"
)

// API is the slice of the remote quotation service the controller consumes.
type API interface {
	CreateQuotation(ctx context.Context, payload api.QuotationPayload) (*api.Quotation, error)
	SaveDraft(ctx context.Context, payload api.QuotationPayload, id *int64) (*api.Quotation, error)
	UpdateQuotation(ctx context.Context, id int64, payload api.QuotationPayload) (*api.Quotation, error)
	UpdateQuotationStatus(ctx context.Context, id int64, status string) (*api.Quotation, error)
	GetQuotation(ctx context.Context, id int64) (*api.Quotation, error)
	ListQuotations(ctx context.Context) ([]api.Quotation, error)
	DeleteQuotation(ctx context.Context, id int64) error
	DuplicateQuotation(ctx context.Context, id int64) (*api.Quotation, error)
	GenerateQuotationPDF(ctx context.Context, id int64) ([]byte, error)
	ListMaterials(ctx context.Context) ([]api.Material, error)
}

// MaterialCatalog is the local material store the editor's pickers read.
// Upsert lets RefreshMaterials pull remote entries into it.
type MaterialCatalog interface {
	List(ctx context.Context) ([]store.MaterialRecord, error)
	Upsert(ctx context.Context, m store.MaterialRecord) error
}

// ErrInvalidTransition marks a lifecycle move the status machine forbids.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrImmutableQuotation marks an edit to a quotation past the draft stage.
var ErrImmutableQuotation = errors.New("quotation is no longer editable")

// ValidationError carries the field error map out of a rejected save.
type ValidationError struct {
	Result validation.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("quotation failed validation (%d field errors)", len(e.Result.Errors))
}

type Controller struct {
	drafts    *draft.Store
	scheduler *draft.Scheduler
	api       API
	catalog   MaterialCatalog
}

func NewController(
	drafts *draft.Store,
	scheduler *draft.Scheduler,
	remote API,
	catalog MaterialCatalog,
) *Controller {
	return &Controller{
		drafts:    drafts,
		scheduler: scheduler,
		api:       remote,
		catalog:   catalog,
	}
}

// Edit applies one mutation to the draft and arms the autosave debounce
// window. Every edit restarts the window. Only drafts are editable; a
// quotation that has been issued is *ErrImmutableQuotation until ClearDraft.
func (c *Controller) Edit(ctx context.Context, update draft.Updater) error {
	if err := c.mutable(); err != nil {
		return err
	}
	c.drafts.Update(ctx, update)
	c.scheduler.Schedule(ctx, c.remoteSave)
	return nil
}

// Replace swaps the whole draft, for restoring a remotely fetched quotation
// into the editor.
func (c *Controller) Replace(ctx context.Context, q domain.Quotation) error {
	if err := c.mutable(); err != nil {
		return err
	}
	c.drafts.Replace(ctx, q)
	c.scheduler.Schedule(ctx, c.remoteSave)
	return nil
}

func (c *Controller) mutable() error {
	status := c.drafts.Quotation().Status
	if !status.Mutable() {
		return fmt.Errorf("cannot edit a quotation in status %q: %w", status, ErrImmutableQuotation)
	}
	return nil
}

// SaveDraft is the explicit save path. Unlike autosave it validates first
// and returns a *ValidationError instead of touching the network when the
// draft is not valid.
func (c *Controller) SaveDraft(ctx context.Context) (domain.Quotation, error) {
	current := c.drafts.Quotation()

	result := validation.ValidateForm(current)
	if !result.IsValid {
		return current, &ValidationError{Result: result}
	}

	assigned, err := c.remoteSave(ctx, current)
	if err != nil {
		return current, err
	}

	c.drafts.MarkAsSaved(ctx, assigned)
	return c.drafts.Quotation(), nil
}

// Submit creates the quotation remotely and moves it from draft to issued.
func (c *Controller) Submit(ctx context.Context) (domain.Quotation, error) {
	current := c.drafts.Quotation()

	if !current.Status.CanTransitionTo(domain.StatusIssued) {
		return current, fmt.Errorf("cannot submit a quotation in status %q: %w", current.Status, ErrInvalidTransition)
	}

	result := validation.ValidateForm(current)
	if !result.IsValid {
		return current, &ValidationError{Result: result}
	}

	created, err := c.api.CreateQuotation(ctx, adapters.MapQuotationDomainToPayload(current))
	if err != nil {
		return current, err
	}

	assigned := adapters.MapApiToServerAssigned(*created)
	c.drafts.MarkAsSaved(ctx, &assigned)

	issued, err := c.api.UpdateQuotationStatus(ctx, created.ID, string(domain.StatusIssued))
	if err != nil {
		return c.drafts.Quotation(), err
	}

	c.drafts.Update(ctx, func(prev domain.Quotation) domain.Quotation {
		prev.Status = domain.StatusIssued
		return prev
	})
	c.drafts.MarkAsSaved(ctx, nil)

	return adapters.MapQuotationApiToDomain(*issued), nil
}

// UpdateStatus transitions a stored quotation, rejecting moves the
// lifecycle does not allow.
func (c *Controller) UpdateStatus(
	ctx context.Context,
	id int64,
	next domain.Status,
) (domain.Quotation, error) {
	if !next.Valid() {
		return domain.Quotation{}, fmt.Errorf("unknown status %q: %w", next, ErrInvalidTransition)
	}

	remote, err := c.api.GetQuotation(ctx, id)
	if err != nil {
		return domain.Quotation{}, err
	}

	current := adapters.MapQuotationApiToDomain(*remote)
	if !current.Status.CanTransitionTo(next) {
		return current, fmt.Errorf(
			"cannot transition quotation from %q to %q: %w", current.Status, next, ErrInvalidTransition)
	}

	updated, err := c.api.UpdateQuotationStatus(ctx, id, string(next))
	if err != nil {
		return current, err
	}

	return adapters.MapQuotationApiToDomain(*updated), nil
}

// ListQuotations returns stored quotations, optionally narrowed to one
// lifecycle status.
func (c *Controller) ListQuotations(
	ctx context.Context,
	status domain.Status,
) ([]domain.Quotation, error) {
	remote, err := c.api.ListQuotations(ctx)
	if err != nil {
		return nil, err
	}

	quotations := make([]domain.Quotation, 0, len(remote))
	for _, r := range remote {
		q := adapters.MapQuotationApiToDomain(r)
		if status != "" && q.Status != status {
			continue
		}
		quotations = append(quotations, q)
	}
	return quotations, nil
}

func (c *Controller) GetQuotation(ctx context.Context, id int64) (domain.Quotation, error) {
	remote, err := c.api.GetQuotation(ctx, id)
	if err != nil {
		return domain.Quotation{}, err
	}
	return adapters.MapQuotationApiToDomain(*remote), nil
}

func (c *Controller) DeleteQuotation(ctx context.Context, id int64) error {
	return c.api.DeleteQuotation(ctx, id)
}

func (c *Controller) DuplicateQuotation(ctx context.Context, id int64) (domain.Quotation, error) {
	remote, err := c.api.DuplicateQuotation(ctx, id)
	if err != nil {
		return domain.Quotation{}, err
	}
	return adapters.MapQuotationApiToDomain(*remote), nil
}

func (c *Controller) GenerateQuotationPDF(ctx context.Context, id int64) ([]byte, error) {
	return c.api.GenerateQuotationPDF(ctx, id)
}

// ListMaterials returns the material catalog sorted the way the store
// returns it.
func (c *Controller) ListMaterials(ctx context.Context) ([]domain.MaterialRef, error) {
	records, err := c.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	materials := make([]domain.MaterialRef, 0, len(records))
	for _, r := range records {
		materials = append(materials, adapters.MapMaterialStoreToDomain(r))
	}
	return materials, nil
}

// RefreshMaterials pulls the backend's material list into the local catalog
// and returns the refreshed entries. The seeded rows remain when the remote
// call fails.
func (c *Controller) RefreshMaterials(ctx context.Context) ([]domain.MaterialRef, error) {
	remote, err := c.api.ListMaterials(ctx)
	if err != nil {
		return nil, err
	}

	materials := make([]domain.MaterialRef, 0, len(remote))
	for _, m := range remote {
		if err := c.catalog.Upsert(ctx, adapters.MapMaterialApiToRecord(m)); err != nil {
			return nil, err
		}
		materials = append(materials, adapters.MapMaterialApiToDomain(m))
	}
	return materials, nil
}

// Draft exposes a copy of the current draft.
func (c *Controller) Draft() domain.Quotation {
	return c.drafts.Quotation()
}

func (c *Controller) DraftState() domain.DraftState {
	return c.drafts.State()
}

func (c *Controller) ClearDraft(ctx context.Context) {
	c.drafts.ClearDraft(ctx)
}

// Validate runs the form rules against the current draft without saving.
func (c *Controller) Validate() validation.Result {
	return validation.ValidateForm(c.drafts.Quotation())
}

// Totals prices the current draft.
func (c *Controller) Totals() pricing.Totals {
	return pricing.QuotationTotals(c.drafts.Quotation())
}

// BuildReport renders the current draft into the printable breakdown.
func (c *Controller) BuildReport() domain.Report {
	return adapters.MapQuotationToReport(c.drafts.Quotation())
}

// remoteSave is the SaveFunc handed to the scheduler. It never validates:
// background saves preserve whatever the user typed.
func (c *Controller) remoteSave(
	ctx context.Context,
	q domain.Quotation,
) (*domain.ServerAssigned, error) {
	logger := zerolog.Ctx(ctx)

	var id *int64
	if q.ID != 0 {
		id = &q.ID
	}

	saved, err := c.api.SaveDraft(ctx, adapters.MapQuotationDomainToPayload(q), id)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to save draft remotely")
		return nil, err
	}

	assigned := adapters.MapApiToServerAssigned(*saved)
	return &assigned, nil
}
