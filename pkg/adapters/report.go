package adapters

import (
	"fmt"

	"github.com/qb-tools/quote-forge/pkg/models/domain"
	"github.com/qb-tools/quote-forge/pkg/services/pricing"
)

// MapQuotationToReport renders a quotation into the report shape the
// terminal reporters print.
func MapQuotationToReport(q domain.Quotation) domain.Report {
	totals := pricing.QuotationTotals(q)

	report := domain.Report{
		Title:        q.Title,
		QuotationNo:  q.QuotationNo,
		Currency:     q.Currency,
		Subtotal:     totals.Subtotal,
		MarkupAmount: totals.MarkupAmount,
		TaxAmount:    totals.TaxAmount,
		GrandTotal:   totals.GrandTotal,
	}
	if report.Title == "" {
		report.Title = "Untitled quotation"
	}

	for _, item := range q.Items {
		b := pricing.ItemCostBreakdown(item)
		section := domain.ReportSection{
			Title: item.Name,
			Summary: map[string]interface{}{
				"Billed":   pricing.DisplayValue(item),
				"Quantity": item.Quantity,
				"Method":   string(item.PricingMethod),
			},
			Details: []domain.ReportDetail{
				{Name: "Material", Value: b.MaterialCost, Unit: q.Currency, Description: materialDescription(item)},
				{Name: "Components", Value: b.ComponentsCost, Unit: q.Currency, Description: fmt.Sprintf("%d component(s)", len(item.Components))},
				{Name: "Labour", Value: b.LabourCost, Unit: q.Currency, Description: fmt.Sprintf("%.1fh @ %.2f", item.LabourHours, item.LabourRate)},
				{Name: "Hardware", Value: b.HardwareCost, Unit: q.Currency, Description: ""},
				{Name: "Total", Value: b.TotalCost, Unit: q.Currency, Description: ""},
			},
		}
		if section.Title == "" {
			section.Title = fmt.Sprintf("Item %d", item.ID)
		}
		report.Sections = append(report.Sections, section)
	}

	return report
}

func materialDescription(item domain.Item) string {
	if item.BaseMaterial == nil {
		return "no base material"
	}
	return fmt.Sprintf("%s @ %.2f/%s", item.BaseMaterial.Name, item.BaseMaterial.UnitCost, item.BaseMaterial.Unit)
}
