package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhpenta/imagestudio"
	"github.com/mhpenta/imagestudio/session"
)

func newIdeateCmd(flags *globalFlags) *cobra.Command {
	var ref string
	var classify bool

	cmd := &cobra.Command{
		Use:   "ideate [idea]",
		Short: "Suggest three prompts from an idea or a reference image",
		Example: `  # Three random prompts
  imagestudio ideate

  # Prompts around an idea, each with its best matching style
  imagestudio ideate "rainy city at night" --classify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl, err := a.controller(ctx)
			if err != nil {
				return err
			}
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			s.ChangeMode(session.ModeIdeate)
			s.SetInspiration(strings.Join(args, " "))
			if ref != "" {
				img, err := imagestudio.ReadImageFile(ref)
				if err != nil {
					return err
				}
				if err := s.SetImage(img); err != nil {
					return err
				}
			}

			if err := ctrl.Ideate(ctx, s); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for i, suggestion := range s.Suggestions {
				fmt.Fprintf(w, "%d. %s\n", i+1, suggestion)
				if !classify {
					continue
				}
				out := ctrl.RunSuggestion(ctx, suggestion)
				if st, ok := imagestudio.LookupStyle(out.Style); out.Matched && ok {
					fmt.Fprintf(w, "   style: %s (%s)\n", st.Label, st.ID)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "Inspiration image")
	cmd.Flags().BoolVar(&classify, "classify", false, "Also pick the best style for each suggestion")

	return cmd
}
