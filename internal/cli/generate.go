package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhpenta/imagestudio"
	"github.com/mhpenta/imagestudio/gallery"
	"github.com/mhpenta/imagestudio/session"
)

type generateOptions struct {
	style    string
	aspect   string
	count    int
	model    string
	faceless bool
	ref      string
	out      string
}

func newGenerateCmd(flags *globalFlags) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate illustrations from a prompt",
		Long: `Generate illustrations from a prompt and a style preset.

The images are added to the gallery and written to the output directory.
Settings not given on the command line come from the config file.`,
		Example: `  # Four images in the default style
  imagestudio generate "a lighthouse at dusk"

  # Two widescreen watercolors steered by a reference photo
  imagestudio generate "a lighthouse at dusk" --style watercolor --aspect 16:9 \
    --count 2 --model gemini-flash-image --ref photo.jpg`,
		Args: cobra.MinimumNArgs(1),
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
			if err := opts.apply(cmd, s); err != nil {
				return err
			}
			s.SetPrompt(strings.Join(args, " "))

			return runSubmit(ctx, cmd, ctrl, s, outDir(opts.out, a))
		},
	}

	cmd.Flags().StringVar(&opts.style, "style", "", "Style preset id (see 'imagestudio styles')")
	cmd.Flags().StringVar(&opts.aspect, "aspect", "", "Aspect ratio: 1:1, 3:4, 4:3, 9:16 or 16:9")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "Number of images (1-10)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model: imagen-4 or gemini-flash-image")
	cmd.Flags().BoolVar(&opts.faceless, "faceless", true, "Keep characters faceless")
	cmd.Flags().StringVar(&opts.ref, "ref", "", "Reference image (gemini-flash-image only)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output directory (default download_dir from the config)")

	return cmd
}

// apply overrides the session options with the flags that were set.
func (o *generateOptions) apply(cmd *cobra.Command, s *session.State) error {
	if o.model != "" {
		if _, ok := imagestudio.LookupModelOption(imagestudio.Model(o.model)); !ok {
			return fmt.Errorf("unknown model %q", o.model)
		}
		s.SetModel(imagestudio.Model(o.model))
	}
	if o.style != "" {
		if !s.SetStyle(imagestudio.StyleID(o.style)) {
			return fmt.Errorf("unknown style %q", o.style)
		}
	}
	if o.aspect != "" {
		ar, ok := imagestudio.ParseAspectRatio(o.aspect)
		if !ok {
			return fmt.Errorf("unknown aspect ratio %q", o.aspect)
		}
		s.Options.AspectRatio = ar
	}
	if o.count != 0 {
		if err := imagestudio.ValidateImageCount(o.count); err != nil {
			return err
		}
		s.Options.NumberOfImages = o.count
	}
	if cmd.Flags().Changed("faceless") {
		s.Options.Faceless = o.faceless
	}
	if o.ref != "" {
		img, err := imagestudio.ReadImageFile(o.ref)
		if err != nil {
			return err
		}
		if err := s.SetImage(img); err != nil {
			return err
		}
	}
	return nil
}

// runSubmit runs the session's submit and writes the results to dir.
// A gallery persistence failure is reported but does not fail the command.
func runSubmit(ctx context.Context, cmd *cobra.Command, ctrl *session.Controller, s *session.State, dir string) error {
	if err := ctrl.Submit(ctx, s); err != nil {
		if !gallery.IsPersistError(err) {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", s.Notice)
	}

	saved, err := imagestudio.SaveImages(ctx, imagestudio.NewDirStorage(dir), s.Results, "")
	printSaved(cmd.OutOrStdout(), saved)
	if err != nil {
		return fmt.Errorf("failed to save images: %w", err)
	}
	return nil
}

func printSaved(w io.Writer, saved []imagestudio.StorageResult) {
	for _, res := range saved {
		fmt.Fprintln(w, res.Location)
	}
}

func outDir(flag string, a *app) string {
	if flag != "" {
		return flag
	}
	return a.cfg.DownloadDir
}
