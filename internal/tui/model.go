// Package tui is the interactive terminal front end. All session state is
// changed inside Update; backend calls run in commands and report back
// through messages.
package tui

import (
	"context"
	"log/slog"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/mhpenta/imagestudio"
	"github.com/mhpenta/imagestudio/internal/keys"
	"github.com/mhpenta/imagestudio/preview"
	"github.com/mhpenta/imagestudio/session"
)

// Clipboard is the system clipboard.
type Clipboard interface {
	ReadImage() (*imagestudio.InputImage, error)
	WriteText(text string) error
}

// Notifier shows desktop notifications.
type Notifier interface {
	ImagesReady(count int) error
	StyleSelected(label string) error
}

// Config wires a Model.
type Config struct {
	Controller *session.Controller
	State      *session.State
	Clipboard  Clipboard
	Notifier   Notifier
	Logger     *slog.Logger

	// Context is passed to every backend call.
	Context context.Context
}

// Focus is which part of the screen receives keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusList
)

// Model is the bubbletea model.
type Model struct {
	ctx    context.Context
	ctrl   *session.Controller
	state  *session.State
	clip   Clipboard
	notify Notifier
	logger *slog.Logger

	input     textinput.Model
	pathInput textinput.Model
	pathOpen  bool

	focus         Focus
	cursor        int
	confirmDelete bool
	frame         int

	width  int
	height int
}

// New creates the model.
func New(cfg Config) *Model {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	input := textinput.New()
	input.CharLimit = 2000
	input.SetWidth(80)

	pathInput := textinput.New()
	pathInput.Placeholder = "/path/to/image.png"
	pathInput.SetWidth(60)

	m := &Model{
		ctx:       ctx,
		ctrl:      cfg.Controller,
		state:     cfg.State,
		clip:      cfg.Clipboard,
		notify:    cfg.Notifier,
		logger:    logger,
		input:     input,
		pathInput: pathInput,
	}
	m.enterMode()
	return m
}

// State returns the session state.
func (m *Model) State() *session.State {
	return m.state
}

// Focus returns the focused area.
func (m *Model) Focus() Focus {
	return m.focus
}

// Cursor returns the selected list row.
func (m *Model) Cursor() int {
	return m.cursor
}

// ConfirmingDelete reports whether the delete confirmation is showing.
func (m *Model) ConfirmingDelete() bool {
	return m.confirmDelete
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.focus == FocusInput {
		return m.input.Focus()
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if w := msg.Width - 6; w > 10 {
			m.input.SetWidth(w)
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.PasteMsg:
		if m.pathOpen {
			var cmd tea.Cmd
			m.pathInput, cmd = m.pathInput.Update(msg)
			return m, cmd
		}
		if m.focus == FocusInput && m.hasInput() {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.syncToState()
			return m, cmd
		}
		return m, nil

	case SubmitDoneMsg:
		return m, m.handleSubmitDone(msg)

	case IdeationDoneMsg:
		if err := m.ctrl.CompleteIdeation(m.state, msg.Outcome); err != nil {
			m.logger.Error("prompt suggestions failed", "error", err.Error())
		}
		m.cursor = 0
		return m, nil

	case SuggestionDoneMsg:
		m.ctrl.CompleteSuggestion(m.state, msg.Outcome)
		if st, ok := imagestudio.LookupStyle(msg.Outcome.Style); msg.Outcome.Matched && ok && m.notify != nil {
			_ = m.notify.StyleSelected(st.Label)
		}
		m.enterMode()
		return m, m.input.Focus()

	case TickMsg:
		if !m.state.Busy {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, tick()
	}

	return m, nil
}

func (m *Model) handleSubmitDone(msg SubmitDoneMsg) tea.Cmd {
	err := m.ctrl.Complete(m.ctx, m.state, msg.Outcome)
	if msg.Outcome.Err != nil {
		m.logger.Error("request failed", "mode", msg.Outcome.Job.Mode.String(), "error", msg.Outcome.Err.Error())
		return nil
	}
	if err != nil {
		m.logger.Warn("gallery not saved", "error", err.Error())
	}
	m.cursor = 0
	if m.notify != nil {
		_ = m.notify.ImagesReady(len(msg.Outcome.Images))
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == keys.CtrlC {
		return m, tea.Quit
	}

	if m.confirmDelete {
		return m.handleConfirmKey(key)
	}
	if m.state.Preview.IsOpen() {
		return m.handlePreviewKey(key)
	}
	if m.pathOpen {
		return m.handlePathKey(msg)
	}

	switch key {
	case keys.Tab:
		m.changeMode(nextMode(m.state.Mode, 1))
		return m, m.focusCmd()
	case keys.ShiftTab:
		m.changeMode(nextMode(m.state.Mode, -1))
		return m, m.focusCmd()
	case keys.CtrlS:
		m.state.CycleStyle(1)
		return m, nil
	case keys.CtrlR:
		m.state.CycleAspect(1)
		return m, nil
	case keys.CtrlN:
		m.state.CycleCount(1)
		return m, nil
	case keys.CtrlF:
		m.state.ToggleFaceless()
		return m, nil
	case keys.CtrlG:
		m.state.CycleModel(1)
		return m, nil
	case keys.CtrlO:
		if m.acceptsImage() {
			m.pathOpen = true
			m.pathInput.SetValue("")
			return m, m.pathInput.Focus()
		}
		return m, nil
	case keys.CtrlV:
		m.pasteImage()
		return m, nil
	case keys.CtrlX:
		m.state.ClearImage()
		return m, nil
	case keys.Escape:
		if m.state.Err != nil {
			m.state.DismissError()
			return m, nil
		}
		if m.focus == FocusList && m.hasInput() {
			m.focus = FocusInput
			return m, m.input.Focus()
		}
		return m, nil
	}

	if m.focus == FocusInput && m.hasInput() {
		switch key {
		case keys.Enter:
			return m, m.submit()
		case keys.Down:
			if m.listLen() > 0 {
				m.focus = FocusList
				m.input.Blur()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.syncToState()
		return m, cmd
	}

	return m.handleListKey(key)
}

func (m *Model) handleListKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "1", "2", "3", "4":
		m.changeMode(session.Modes[int(key[0]-'1')])
		return m, m.focusCmd()
	case "q":
		return m, tea.Quit
	case keys.Up:
		if m.cursor > 0 {
			m.cursor--
		} else if m.hasInput() {
			m.focus = FocusInput
			return m, m.input.Focus()
		}
	case keys.Down:
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
	case keys.Enter:
		if m.state.Mode == session.ModeIdeate {
			return m, m.useSuggestion()
		}
		if err := m.state.OpenPreview(m.cursor, m.listSource()); err != nil {
			m.logger.Debug("preview not opened", "index", m.cursor, "error", err.Error())
		}
	case "c":
		if m.state.Mode == session.ModeIdeate {
			m.copySuggestion()
		}
	}
	return m, nil
}

func (m *Model) handlePreviewKey(key string) (tea.Model, tea.Cmd) {
	_, cur, ok := m.state.PreviewImage()
	if !ok {
		m.state.ClosePreview()
		return m, nil
	}
	actions := preview.ActionsFor(cur.Source)

	switch key {
	case "d":
		if actions.Download {
			if _, err := m.ctrl.DownloadPreview(m.ctx, m.state); err != nil {
				m.logger.Error("download failed", "error", err.Error())
				m.state.Err = err
			}
		}
		return m, nil
	case "v":
		if actions.Variation {
			if err := m.ctrl.CreateVariation(m.state); err == nil {
				m.enterMode()
				return m, m.input.Focus()
			}
		}
		return m, nil
	case "r":
		if actions.Regenerate {
			job, err := m.ctrl.PrepareRegenerate(m.state)
			if err != nil {
				return m, nil
			}
			return m, tea.Batch(submitCmd(m.ctx, m.ctrl, job), tick())
		}
		return m, nil
	case "x":
		if actions.Delete {
			m.confirmDelete = true
		}
		return m, nil
	}

	m.state.HandlePreviewKey(key)
	if c, ok := m.state.Preview.Current(); ok {
		m.cursor = c.Index
	}
	return m, nil
}

func (m *Model) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y":
		m.confirmDelete = false
		if err := m.ctrl.DeleteGalleryImage(m.ctx, m.state); err != nil {
			m.logger.Warn("delete failed", "error", err.Error())
		}
		m.clampCursor()
	case "n", keys.Escape:
		m.confirmDelete = false
	}
	return m, nil
}

func (m *Model) handlePathKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keys.Escape:
		m.closePath()
		return m, m.focusCmd()
	case keys.Enter:
		path := strings.TrimSpace(m.pathInput.Value())
		m.closePath()
		if path != "" {
			m.loadImageFile(path)
		}
		return m, m.focusCmd()
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *Model) closePath() {
	m.pathOpen = false
	m.pathInput.Blur()
}

func (m *Model) loadImageFile(path string) {
	img, err := imagestudio.ReadImageFile(path)
	if err != nil {
		m.state.Err = err
		return
	}
	if err := m.state.SetImage(img); err != nil {
		m.state.Err = err
		return
	}
	m.state.Notice = "Attached " + path
}

func (m *Model) pasteImage() {
	if m.clip == nil || !m.acceptsImage() {
		return
	}
	img, err := m.clip.ReadImage()
	if err != nil {
		m.state.Err = err
		return
	}
	if img == nil {
		m.state.Notice = "No image on the clipboard"
		return
	}
	if err := m.state.SetImage(*img); err != nil {
		m.state.Err = err
		return
	}
	m.state.Notice = "Pasted image from clipboard"
}

func (m *Model) copySuggestion() {
	text, err := m.state.Suggestion(m.cursor)
	if err != nil || m.clip == nil {
		return
	}
	if err := m.clip.WriteText(text); err != nil {
		m.state.Err = err
		return
	}
	m.state.Notice = "Copied to clipboard"
}

func (m *Model) submit() tea.Cmd {
	if m.state.Mode == session.ModeIdeate {
		job, err := m.ctrl.PrepareIdeation(m.state)
		if err != nil {
			return nil
		}
		return tea.Batch(ideationCmd(m.ctx, m.ctrl, job), tick())
	}

	job, err := m.ctrl.PrepareSubmit(m.state)
	if err != nil {
		return nil
	}
	m.cursor = 0
	return tea.Batch(submitCmd(m.ctx, m.ctrl, job), tick())
}

func (m *Model) useSuggestion() tea.Cmd {
	text, err := m.ctrl.PrepareSuggestion(m.state, m.cursor)
	if err != nil {
		return nil
	}
	return tea.Batch(suggestionCmd(m.ctx, m.ctrl, text), tick())
}

func (m *Model) changeMode(mode session.Mode) {
	if mode == m.state.Mode {
		return
	}
	m.state.ChangeMode(mode)
	m.enterMode()
}

// enterMode resets the cursor and input for the current mode.
func (m *Model) enterMode() {
	m.cursor = 0
	switch m.state.Mode {
	case session.ModeGenerate:
		m.input.Placeholder = "Describe the illustration you want..."
		m.input.SetValue(m.state.Prompt)
	case session.ModeEdit:
		m.input.Placeholder = "Describe the change to make..."
		m.input.SetValue(m.state.Prompt)
	case session.ModeIdeate:
		m.input.Placeholder = "An idea, a theme, or leave empty for a surprise"
		m.input.SetValue(m.state.Inspiration)
	}
	if m.hasInput() {
		m.focus = FocusInput
		m.input.Focus()
	} else {
		m.focus = FocusList
		m.input.Blur()
	}
}

func (m *Model) focusCmd() tea.Cmd {
	if m.focus == FocusInput {
		return m.input.Focus()
	}
	return nil
}

func (m *Model) syncToState() {
	if m.state.Mode == session.ModeIdeate {
		m.state.SetInspiration(m.input.Value())
		return
	}
	m.state.SetPrompt(m.input.Value())
}

func (m *Model) hasInput() bool {
	return m.state.Mode != session.ModeGallery
}

func (m *Model) acceptsImage() bool {
	return m.state.Mode != session.ModeGallery
}

func (m *Model) listSource() preview.Source {
	if m.state.Mode == session.ModeGallery {
		return preview.SourceGallery
	}
	return preview.SourceResults
}

func (m *Model) listLen() int {
	if m.state.Mode == session.ModeIdeate {
		return len(m.state.Suggestions)
	}
	return len(m.state.List(m.listSource()))
}

func (m *Model) clampCursor() {
	if n := m.listLen(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func nextMode(cur session.Mode, delta int) session.Mode {
	n := len(session.Modes)
	return session.Modes[((int(cur)+delta)%n+n)%n]
}
