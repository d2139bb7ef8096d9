package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhpenta/imagestudio"
	"github.com/mhpenta/imagestudio/session"
)

func newEditCmd(flags *globalFlags) *cobra.Command {
	var faceless bool
	var out string

	cmd := &cobra.Command{
		Use:   "edit <image> <instruction>",
		Short: "Edit an image by instruction",
		Example: `  imagestudio edit portrait.png "add a red scarf"
  imagestudio edit portrait.png "make it night time" --faceless=false`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			img, err := imagestudio.ReadImageFile(args[0])
			if err != nil {
				return err
			}

			ctrl, err := a.controller(ctx)
			if err != nil {
				return err
			}
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			s.ChangeMode(session.ModeEdit)
			if err := s.SetImage(img); err != nil {
				return err
			}
			if cmd.Flags().Changed("faceless") {
				s.Options.Faceless = faceless
			}
			s.SetPrompt(strings.Join(args[1:], " "))

			return runSubmit(ctx, cmd, ctrl, s, outDir(out, a))
		},
	}

	cmd.Flags().BoolVar(&faceless, "faceless", true, "Keep characters faceless")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory (default download_dir from the config)")

	return cmd
}
