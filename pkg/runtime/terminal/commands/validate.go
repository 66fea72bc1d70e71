package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/qb-tools/quote-forge/pkg/services/validation"
)

type ValidateCmd struct {
	filePath string
	service  DraftService
}

func NewValidateCmd(service DraftService) *cobra.Command {
	vc := &ValidateCmd{service: service}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the current draft or a quotation file against the form rules",
		RunE:  vc.run,
	}

	cmd.Flags().StringVar(&vc.filePath, "file", "", "Path to a quotation JSON file (default is the current draft)")

	return cmd
}

func (vc *ValidateCmd) run(cmd *cobra.Command, args []string) error {
	var result validation.Result
	if vc.filePath != "" {
		q, err := loadQuotationFile(vc.filePath)
		if err != nil {
			return err
		}
		result = validation.ValidateForm(q)
	} else {
		result = vc.service.Validate()
	}

	if result.IsValid {
		fmt.Fprintln(cmd.OutOrStdout(), "Quotation is valid.")
		return nil
	}

	keys := make([]string, 0, len(result.Errors))
	for k := range result.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", k, result.Errors[k])
	}

	return fmt.Errorf("quotation has %d validation error(s)", len(result.Errors))
}
