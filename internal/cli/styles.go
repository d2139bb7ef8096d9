package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhpenta/imagestudio"
)

func newStylesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List style presets, aspect ratios and models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Styles:")
			for _, s := range imagestudio.StyleOptions {
				fmt.Fprintf(w, "  %-20s %s\n", s.ID, s.Label)
			}
			fmt.Fprintln(w, "\nAspect ratios:")
			for _, ar := range imagestudio.AspectRatios {
				fmt.Fprintf(w, "  %s\n", ar)
			}
			fmt.Fprintln(w, "\nModels:")
			for _, m := range imagestudio.ModelOptions {
				fmt.Fprintf(w, "  %-20s %s\n", m.ID, m.Description)
			}
			return nil
		},
	}
}
