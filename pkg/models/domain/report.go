package domain

// Report is a rendered pricing summary for one quotation.
type Report struct {
	Title        string
	QuotationNo  string
	Currency     string
	Sections     []ReportSection
	Subtotal     float64
	MarkupAmount float64
	TaxAmount    float64
	GrandTotal   float64
}

// ReportSection covers one quotation item.
type ReportSection struct {
	Title   string
	Summary map[string]interface{}
	Details []ReportDetail
}

type ReportDetail struct {
	Name        string
	Value       interface{}
	Unit        string
	Description string
}
