package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qb-tools/quote-forge/pkg/services/pricing"
)

type MaterialsCmd struct {
	service DraftService
}

func NewMaterialsCmd(service DraftService) *cobra.Command {
	mc := &MaterialsCmd{service: service}
	return &cobra.Command{
		Use:   "materials",
		Short: "List the base materials available to quotation items",
		RunE:  mc.run,
	}
}

func (mc *MaterialsCmd) run(cmd *cobra.Command, args []string) error {
	materials, err := mc.service.ListMaterials(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list materials: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tUNIT COST\tUNIT")
	for _, m := range materials {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, pricing.FormatCurrency(m.UnitCost, "USD"), m.Unit)
	}
	return w.Flush()
}
