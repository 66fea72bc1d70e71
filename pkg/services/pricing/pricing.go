// Package pricing computes per-item and aggregate quotation costs. Every
// function here is pure: garbage in, garbage out, validation lives elsewhere.
package pricing

import (
	"fmt"
	"time"

	"github.com/qb-tools/quote-forge/pkg/models/domain"
)

// Breakdown itemizes where an item's cost comes from.
type Breakdown struct {
	MaterialCost   float64 `json:"materialCost"`
	ComponentsCost float64 `json:"componentsCost"`
	LabourCost     float64 `json:"labourCost"`
	HardwareCost   float64 `json:"hardwareCost"`
	TotalCost      float64 `json:"totalCost"`
}

// Totals aggregates a whole quotation.
type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	MarkupAmount float64 `json:"markupAmount"`
	TaxAmount    float64 `json:"taxAmount"`
	GrandTotal   float64 `json:"grandTotal"`
}

// LinearFeet is the billed length of a linear-foot item; zero for every
// other pricing method.
func LinearFeet(item domain.Item) float64 {
	if item.PricingMethod == domain.PricingLinearFoot {
		return item.Length * float64(item.Quantity)
	}
	return 0
}

// ItemCostBreakdown prices one item. Base material is only priced for the
// linear-foot and per-piece methods; area and volume items carry their cost
// in components and labour.
func ItemCostBreakdown(item domain.Item) Breakdown {
	var materialCost float64

	switch item.PricingMethod {
	case domain.PricingLinearFoot:
		if item.BaseMaterial != nil {
			materialCost = LinearFeet(item) * item.BaseMaterial.UnitCost
		}
	case domain.PricingPerPiece:
		if item.BaseMaterial != nil {
			materialCost = float64(item.Quantity) * item.BaseMaterial.UnitCost
		}
	}

	var componentsCost float64
	for _, c := range item.Components {
		unitCost := 0.0
		if c.Material != nil {
			unitCost = c.Material.UnitCost
		}
		if c.PricingType == domain.PricingLinearFoot {
			componentsCost += c.Length * float64(c.Quantity) * unitCost
		} else {
			componentsCost += float64(c.Quantity) * unitCost
		}
	}

	labourCost := item.LabourHours * item.LabourRate

	return Breakdown{
		MaterialCost:   materialCost,
		ComponentsCost: componentsCost,
		LabourCost:     labourCost,
		HardwareCost:   item.HardwareCost,
		TotalCost:      materialCost + componentsCost + item.HardwareCost + labourCost,
	}
}

func ItemCost(item domain.Item) float64 {
	return ItemCostBreakdown(item).TotalCost
}

func Subtotal(items []domain.Item) float64 {
	var total float64
	for _, item := range items {
		total += ItemCost(item)
	}
	return total
}

func MarkupAmount(subtotal, markupPercentage float64) float64 {
	return subtotal * (markupPercentage / 100)
}

// TaxAmount taxes the marked-up subtotal.
func TaxAmount(subtotal, markupAmount, taxRate float64) float64 {
	return (subtotal + markupAmount) * (taxRate / 100)
}

func GrandTotal(subtotal, markupAmount, taxAmount float64) float64 {
	return subtotal + markupAmount + taxAmount
}

// QuotationTotals runs the full subtotal/markup/tax pipeline over one
// quotation.
func QuotationTotals(q domain.Quotation) Totals {
	subtotal := Subtotal(q.Items)
	markup := MarkupAmount(subtotal, q.MarkupPercentage)
	tax := TaxAmount(subtotal, markup, q.TaxRate)
	return Totals{
		Subtotal:     subtotal,
		MarkupAmount: markup,
		TaxAmount:    tax,
		GrandTotal:   GrandTotal(subtotal, markup, tax),
	}
}

// DisplayValue renders the quantity an item is billed by, in the unit of its
// pricing method. Dimensions are entered in millimetres for the area and
// volume methods.
func DisplayValue(item domain.Item) string {
	unit, ok := domain.MethodUnits[item.PricingMethod]
	if !ok {
		return ""
	}

	var value float64
	switch item.PricingMethod {
	case domain.PricingLinearFoot:
		value = LinearFeet(item)
	case domain.PricingPerPiece:
		value = float64(item.Quantity)
	case domain.PricingArea:
		value = (item.Length * item.Width) / 1_000_000
	case domain.PricingVolume:
		value = (item.Length * item.Width * item.Height) / 1_000_000_000
	}

	return fmt.Sprintf("%.2f %s", value, unit)
}

// FormatCurrency is cosmetic only; the engine never converts between
// currencies.
func FormatCurrency(amount float64, currency string) string {
	symbol, ok := domain.CurrencySymbols[currency]
	if !ok {
		symbol = currency + " "
	}
	return fmt.Sprintf("%s%.2f", symbol, amount)
}

// LocalQuotationNumber produces a client-side reference for drafts that have
// no server-assigned number yet.
func LocalQuotationNumber(now time.Time) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	return fmt.Sprintf("QT-%d-%s", now.Year(), ms[len(ms)-6:])
}
