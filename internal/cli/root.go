package cli

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mhpenta/imagestudio/internal/clipboard"
	"github.com/mhpenta/imagestudio/internal/logger"
	"github.com/mhpenta/imagestudio/internal/notification"
	"github.com/mhpenta/imagestudio/internal/tui"
)

// NewRootCmd builds the command tree. With no subcommand it starts the TUI.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "imagestudio",
		Short: "Generate, edit and collect faceless illustrations with Gemini",
		Long: `Image Studio generates faceless illustrations from a prompt and a style preset,
edits existing images by instruction, suggests prompts from an idea or a reference
image, and keeps everything it makes in a local gallery.

Run without a subcommand to open the interactive studio.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/imagestudio/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "Log file (default in the temp dir)")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newGenerateCmd(flags))
	cmd.AddCommand(newEditCmd(flags))
	cmd.AddCommand(newIdeateCmd(flags))
	cmd.AddCommand(newGalleryCmd(flags))
	cmd.AddCommand(newStylesCmd())

	return cmd
}

func runTUI(cmd *cobra.Command, flags *globalFlags) error {
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
	state, err := a.session(ctx)
	if err != nil {
		return err
	}

	m := tui.New(tui.Config{
		Controller: ctrl,
		State:      state,
		Clipboard:  clipboard.New(logger.Component(a.logger, "clipboard")),
		Notifier:   notification.New(a.cfg.Notifications, logger.Component(a.logger, "notification")),
		Logger:     logger.Component(a.logger, "tui"),
		Context:    ctx,
	})

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
