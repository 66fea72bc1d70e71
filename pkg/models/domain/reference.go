package domain

// Reference tables the editor offers as choices. These mirror what the
// backend serves for materials: static, externally owned, cosmetic.

var UnitTypes = []string{"mm", "cm", "m", "inch", "ft"}

// MethodUnits maps a pricing method to the unit its display quantity is
// expressed in.
var MethodUnits = map[PricingMethod]string{
	PricingLinearFoot: "lf",
	PricingPerPiece:   "pcs",
	PricingArea:       "sqm",
	PricingVolume:     "m³",
}

// CurrencySymbols is used only at formatting time; no conversion happens
// anywhere in the engine.
var CurrencySymbols = map[string]string{
	"USD": "$",
	"CAD": "C$",
	"EUR": "€",
	"GBP": "£",
}
