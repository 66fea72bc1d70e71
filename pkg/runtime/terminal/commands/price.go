package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qb-tools/quote-forge/pkg/adapters"
	"github.com/qb-tools/quote-forge/pkg/models/domain"
	"github.com/qb-tools/quote-forge/pkg/runtime/terminal/export"
	"github.com/qb-tools/quote-forge/pkg/services/validation"
)

// DraftService is the slice of the quotation controller the CLI consumes.
type DraftService interface {
	Draft() domain.Quotation
	ClearDraft(ctx context.Context)
	BuildReport() domain.Report
	Validate() validation.Result
	ListMaterials(ctx context.Context) ([]domain.MaterialRef, error)
}

type PriceCmd struct {
	filePath string
	service  DraftService
	reporter *export.Reporter
}

func NewPriceCmd(service DraftService, reporter *export.Reporter) *cobra.Command {
	pc := &PriceCmd{service: service, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Print the cost breakdown for the current draft or a quotation file",
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.filePath, "file", "", "Path to a quotation JSON file (default is the current draft)")

	return cmd
}

func (pc *PriceCmd) run(cmd *cobra.Command, args []string) error {
	var report domain.Report
	if pc.filePath != "" {
		q, err := loadQuotationFile(pc.filePath)
		if err != nil {
			return err
		}
		report = adapters.MapQuotationToReport(q)
	} else {
		report = pc.service.BuildReport()
	}

	return pc.reporter.Handle(&report)
}

func loadQuotationFile(path string) (domain.Quotation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Quotation{}, fmt.Errorf("failed to read quotation file: %w", err)
	}

	q := domain.DefaultQuotation()
	if err := json.Unmarshal(data, &q); err != nil {
		return domain.Quotation{}, fmt.Errorf("failed to parse quotation file: %w", err)
	}
	return q, nil
}
