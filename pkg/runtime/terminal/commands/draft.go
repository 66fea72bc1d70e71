package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type DraftCmd struct {
	service DraftService
}

func NewDraftCmd(service DraftService) *cobra.Command {
	dc := &DraftCmd{service: service}
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Inspect or reset the locally persisted draft",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current draft as JSON",
		RunE:  dc.show,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Discard the current draft and start empty",
		RunE:  dc.clear,
	})

	return cmd
}

func (dc *DraftCmd) show(cmd *cobra.Command, args []string) error {
	encoded, err := json.MarshalIndent(dc.service.Draft(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}

func (dc *DraftCmd) clear(cmd *cobra.Command, args []string) error {
	dc.service.ClearDraft(cmd.Context())
	fmt.Fprintln(cmd.OutOrStdout(), "Draft cleared.")
	return nil
}
