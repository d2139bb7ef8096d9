package tui

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/mhpenta/imagestudio/session"
)

// SubmitDoneMsg carries a finished generate or edit request.
type SubmitDoneMsg struct {
	Outcome session.Outcome
}

// IdeationDoneMsg carries finished prompt suggestions.
type IdeationDoneMsg struct {
	Outcome session.IdeationOutcome
}

// SuggestionDoneMsg carries a suggestion matched to a style.
type SuggestionDoneMsg struct {
	Outcome session.SuggestionOutcome
}

// TickMsg advances the busy spinner.
type TickMsg time.Time

const tickInterval = 120 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// The commands below only call the backend; state is changed when their
// message reaches Update.

func submitCmd(ctx context.Context, ctrl *session.Controller, job session.Job) tea.Cmd {
	return func() tea.Msg {
		return SubmitDoneMsg{Outcome: ctrl.Run(ctx, job)}
	}
}

func ideationCmd(ctx context.Context, ctrl *session.Controller, job session.IdeationJob) tea.Cmd {
	return func() tea.Msg {
		return IdeationDoneMsg{Outcome: ctrl.RunIdeation(ctx, job)}
	}
}

func suggestionCmd(ctx context.Context, ctrl *session.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		return SuggestionDoneMsg{Outcome: ctrl.RunSuggestion(ctx, text)}
	}
}
