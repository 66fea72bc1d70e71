package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qb-tools/quote-forge/pkg/adapters"
	"github.com/qb-tools/quote-forge/pkg/models/domain"
	"github.com/qb-tools/quote-forge/pkg/runtime/terminal/export"
	"github.com/qb-tools/quote-forge/pkg/services/validation"
)

type stubService struct {
	draft   domain.Quotation
	cleared bool
}

func (s *stubService) Draft() domain.Quotation { return s.draft }

func (s *stubService) ClearDraft(context.Context) { s.cleared = true }

func (s *stubService) BuildReport() domain.Report {
	return adapters.MapQuotationToReport(s.draft)
}

func (s *stubService) Validate() validation.Result {
	return validation.ValidateForm(s.draft)
}

func (s *stubService) ListMaterials(context.Context) ([]domain.MaterialRef, error) {
	return []domain.MaterialRef{
		{ID: 1, Name: "Steel Sheet", UnitCost: 25.50, Unit: "sq ft"},
		{ID: 3, Name: "Wood Plank", UnitCost: 8.25, Unit: "linear ft"},
	}, nil
}

func pricedQuotation() domain.Quotation {
	q := domain.DefaultQuotation()
	q.Title = "Garden shed"
	q.Client = &domain.ClientRef{ID: 1, Name: "Acme"}
	q.MarkupPercentage = 20
	q.TaxRate = 10

	item := domain.NewItem()
	item.Name = "Wall panel"
	item.Length = 4
	item.Width = 2
	item.Quantity = 2
	item.BaseMaterial = &domain.MaterialRef{ID: 1, Name: "Pine", UnitCost: 10}
	q.Items = []domain.Item{item}
	return q
}

func writeQuotationFile(t *testing.T, q domain.Quotation) string {
	t.Helper()

	data, err := json.Marshal(q)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "quotation.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestPriceCmd_CurrentDraft(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := NewPriceCmd(&stubService{draft: pricedQuotation()}, export.NewReporter(out))
	cmd.SetOut(out)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Garden shed")
	assert.Contains(t, out.String(), "Wall panel")
	assert.Contains(t, out.String(), "Grand Total")
}

func TestPriceCmd_FromFile(t *testing.T) {
	path := writeQuotationFile(t, pricedQuotation())

	out := &bytes.Buffer{}
	cmd := NewPriceCmd(&stubService{}, export.NewReporter(out))
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--file", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Garden shed")
}

func TestPriceCmd_MissingFile(t *testing.T) {
	cmd := NewPriceCmd(&stubService{}, export.NewReporter(&bytes.Buffer{}))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--file", filepath.Join(t.TempDir(), "nope.json")})

	assert.Error(t, cmd.Execute())
}

func TestValidateCmd_ValidDraft(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := NewValidateCmd(&stubService{draft: pricedQuotation()})
	cmd.SetOut(out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Quotation is valid.")
}

func TestValidateCmd_InvalidDraftListsErrors(t *testing.T) {
	q := pricedQuotation()
	q.Client = nil
	q.Items[0].Name = ""

	out := &bytes.Buffer{}
	cmd := NewValidateCmd(&stubService{draft: q})
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
	assert.Contains(t, out.String(), "client: Client selection is required")
	assert.Contains(t, out.String(), "item_0_name: Item name is required")
}

func TestDraftCmd_Show(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := NewDraftCmd(&stubService{draft: pricedQuotation()})
	cmd.SetOut(out)
	cmd.SetArgs([]string{"show"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"title": "Garden shed"`)
}

func TestMaterialsCmd_ListsCatalog(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := NewMaterialsCmd(&stubService{})
	cmd.SetOut(out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Steel Sheet")
	assert.Contains(t, out.String(), "$25.50")
	assert.Contains(t, out.String(), "linear ft")
}

func TestDraftCmd_Clear(t *testing.T) {
	service := &stubService{draft: pricedQuotation()}

	out := &bytes.Buffer{}
	cmd := NewDraftCmd(service)
	cmd.SetOut(out)
	cmd.SetArgs([]string{"clear"})

	require.NoError(t, cmd.Execute())
	assert.True(t, service.cleared)
	assert.Contains(t, out.String(), "Draft cleared.")
}
