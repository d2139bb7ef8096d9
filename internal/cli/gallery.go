package cli

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/huh/v2"
	"github.com/spf13/cobra"

	"github.com/mhpenta/imagestudio"
	"github.com/mhpenta/imagestudio/gallery"
)

// confirm asks a yes/no question on the terminal. Tests replace it.
var confirm = func(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}

func newGalleryCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Inspect and manage the saved gallery",
	}

	cmd.AddCommand(newGalleryListCmd(flags))
	cmd.AddCommand(newGalleryRmCmd(flags))
	cmd.AddCommand(newGalleryExportCmd(flags))

	return cmd
}

func newGalleryListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List gallery images, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			g := a.store.Load(ctx)
			w := cmd.OutOrStdout()
			if len(g) == 0 {
				fmt.Fprintln(w, "The gallery is empty.")
				return nil
			}
			for i, img := range g {
				fmt.Fprintf(w, "%3d  %-10s  %s\n", i, describeSource(img), img.Alt)
			}
			return nil
		},
	}
}

func newGalleryRmCmd(flags *globalFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <index>",
		Short: "Delete a gallery image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			g := a.store.Load(ctx)
			if index < 0 || index >= len(g) {
				return fmt.Errorf("%w: %d (gallery has %d)", gallery.ErrIndexOutOfRange, index, len(g))
			}

			if !yes {
				ok, err := confirm(fmt.Sprintf("Delete image %d (%q)?", index, truncateAlt(g[index].Alt)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			updated, err := a.store.RemoveAt(ctx, index, g)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted image %d, %d left.\n", index, len(updated))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

func newGalleryExportCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every gallery image and a manifest to a directory",
		Example: `  imagestudio gallery export ./backup
  imagestudio gallery export ./backup --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := gallery.ParseManifestFormat(format)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := gallery.Export(ctx, imagestudio.NewDirStorage(args[0]), a.store.Load(ctx), "", manifest)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Exported %d images to %s\n", len(res.Entries), args[0])
			if res.Manifest != "" {
				fmt.Fprintf(w, "Manifest: %s\n", res.Manifest)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(gallery.ManifestParquet), "Manifest format: parquet, yaml or none")
	return cmd
}

func describeSource(img imagestudio.Image) string {
	if !strings.HasPrefix(img.Src, "data:") {
		return "url"
	}
	in, err := imagestudio.ParseDataURI(img.Src)
	if err != nil {
		return "corrupt"
	}
	return fmt.Sprintf("%d KB", (len(in.Data)+1023)/1024)
}

func truncateAlt(s string) string {
	r := []rune(s)
	if len(r) <= 60 {
		return s
	}
	return string(r[:59]) + "…"
}
