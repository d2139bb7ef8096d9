package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/mhpenta/imagestudio"
	"github.com/mhpenta/imagestudio/gallery"
	"github.com/mhpenta/imagestudio/internal/keys"
	"github.com/mhpenta/imagestudio/internal/logger"
	"github.com/mhpenta/imagestudio/preview"
	"github.com/mhpenta/imagestudio/session"
)

type fakeOrchestrator struct {
	synthesized []imagestudio.Request
	style       imagestudio.StyleID
}

func (f *fakeOrchestrator) Synthesize(ctx context.Context, req imagestudio.Request) ([]imagestudio.Image, error) {
	f.synthesized = append(f.synthesized, req)
	out := make([]imagestudio.Image, req.NumberOfImages)
	for i := range out {
		out[i] = imagestudio.Image{Src: "data:image/png;base64,AA==", Alt: req.Prompt}
	}
	return out, nil
}

func (f *fakeOrchestrator) EditImage(ctx context.Context, instruction string, source imagestudio.InputImage, faceless bool) (imagestudio.Image, error) {
	return imagestudio.Image{Src: "data:image/png;base64,AA==", Alt: "Edited image: " + instruction}, nil
}

func (f *fakeOrchestrator) SuggestPrompts(ctx context.Context, req imagestudio.SuggestionRequest) ([]string, error) {
	return []string{"first idea", "second idea", "third idea"}, nil
}

func (f *fakeOrchestrator) ClassifyStyle(ctx context.Context, prompt string) (imagestudio.StyleID, bool) {
	return f.style, f.style != ""
}

func (f *fakeOrchestrator) Download(ctx context.Context, img imagestudio.Image) (imagestudio.StorageResult, error) {
	return imagestudio.StorageResult{Location: "/downloads/" + img.Alt + ".png"}, nil
}

type fakeClipboard struct {
	image *imagestudio.InputImage
	text  string
}

func (f *fakeClipboard) ReadImage() (*imagestudio.InputImage, error) { return f.image, nil }
func (f *fakeClipboard) WriteText(text string) error                 { f.text = text; return nil }

type fakeNotifier struct {
	ready  []int
	styles []string
}

func (f *fakeNotifier) ImagesReady(count int) error      { f.ready = append(f.ready, count); return nil }
func (f *fakeNotifier) StyleSelected(label string) error { f.styles = append(f.styles, label); return nil }

type harness struct {
	model  *Model
	orch   *fakeOrchestrator
	clip   *fakeClipboard
	notify *fakeNotifier
}

func newHarness(t *testing.T, galleryAlts ...string) *harness {
	t.Helper()
	var g []imagestudio.Image
	for _, alt := range galleryAlts {
		g = append(g, imagestudio.Image{Src: "data:image/png;base64,AA==", Alt: alt})
	}

	h := &harness{orch: &fakeOrchestrator{}, clip: &fakeClipboard{}, notify: &fakeNotifier{}}
	store := gallery.NewStore(gallery.NewMemoryBackend(), gallery.WithLogger(logger.Discard()))
	h.model = New(Config{
		Controller: session.NewController(h.orch, store, logger.Discard()),
		State:      session.New(g),
		Clipboard:  h.clip,
		Notifier:   h.notify,
		Logger:     logger.Discard(),
	})
	return h
}

func keyPress(key string) tea.KeyPressMsg {
	switch key {
	case keys.Enter:
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case keys.Tab:
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case keys.ShiftTab:
		return tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	case keys.Escape:
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case keys.Up:
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case keys.Down:
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case keys.Left:
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case keys.Right:
		return tea.KeyPressMsg{Code: tea.KeyRight}
	}
	if ctrl, ok := strings.CutPrefix(key, "ctrl+"); ok && len(ctrl) == 1 {
		return tea.KeyPressMsg{Code: rune(ctrl[0]), Mod: tea.ModCtrl}
	}
	return tea.KeyPressMsg{Code: rune(key[0]), Text: key}
}

func (h *harness) send(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = h.model.Update(keyPress(k))
	}
	return cmd
}

func (h *harness) typeText(text string) {
	for _, ch := range text {
		h.model.Update(tea.KeyPressMsg{Code: ch, Text: string(ch)})
	}
}

// deliver runs cmd and feeds every message except spinner ticks back into
// the model.
func (h *harness) deliver(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			h.deliver(c)
		}
	case TickMsg, nil:
	default:
		_, next := h.model.Update(msg)
		h.deliver(next)
	}
}

func TestModel_GenerateSubmit(t *testing.T) {
	h := newHarness(t, "old")
	s := h.model.State()

	h.typeText("a lighthouse")
	if s.Prompt != "a lighthouse" {
		t.Fatalf("Prompt = %q", s.Prompt)
	}

	cmd := h.send(keys.Enter)
	if !s.Busy {
		t.Fatal("session should be busy after enter")
	}
	if second := h.send(keys.Enter); second != nil {
		t.Error("second submit while busy should not start a request")
	}

	h.deliver(cmd)

	if s.Busy {
		t.Error("session still busy")
	}
	if len(h.orch.synthesized) != 1 {
		t.Fatalf("Synthesize called %d times", len(h.orch.synthesized))
	}
	if len(s.Results) != 4 || len(s.Gallery) != 5 || s.Gallery[4].Alt != "old" {
		t.Errorf("results=%d gallery=%+v", len(s.Results), s.Gallery)
	}
	if len(h.notify.ready) != 1 || h.notify.ready[0] != 4 {
		t.Errorf("notifications = %v", h.notify.ready)
	}
}

func TestModel_EmptyPromptIsInline(t *testing.T) {
	h := newHarness(t)
	if cmd := h.send(keys.Enter); cmd != nil {
		t.Error("expected no request for an empty prompt")
	}
	if !errors.Is(h.model.State().Err, imagestudio.ErrEmptyPrompt) {
		t.Errorf("Err = %v", h.model.State().Err)
	}
	if !strings.Contains(h.model.render(), "Error: ") {
		t.Error("error not rendered")
	}

	h.send(keys.Escape)
	if h.model.State().Err != nil {
		t.Error("esc should dismiss the error")
	}
}

func TestModel_ModeSwitching(t *testing.T) {
	h := newHarness(t, "g0")
	s := h.model.State()

	h.send(keys.Tab)
	if s.Mode != session.ModeEdit {
		t.Errorf("tab -> %v", s.Mode)
	}
	h.send(keys.ShiftTab)
	if s.Mode != session.ModeGenerate {
		t.Errorf("shift+tab -> %v", s.Mode)
	}

	h.send(keys.ShiftTab)
	if s.Mode != session.ModeGallery || h.model.Focus() != FocusList {
		t.Errorf("mode=%v focus=%v", s.Mode, h.model.Focus())
	}

	h.send("3")
	if s.Mode != session.ModeIdeate || h.model.Focus() != FocusInput {
		t.Errorf("3 -> mode=%v focus=%v", s.Mode, h.model.Focus())
	}

	h.typeText("12")
	if s.Mode != session.ModeIdeate || s.Inspiration != "12" {
		t.Errorf("digits typed into the input should not switch mode: mode=%v inspiration=%q", s.Mode, s.Inspiration)
	}
}

func TestModel_OptionKeys(t *testing.T) {
	h := newHarness(t)
	opts := &h.model.State().Options

	h.send(keys.CtrlS, keys.CtrlR, keys.CtrlN, keys.CtrlF, keys.CtrlG)

	if opts.Style.ID == imagestudio.DefaultStyle().ID {
		t.Error("style not cycled")
	}
	if opts.AspectRatio != imagestudio.AspectRatio3x4 {
		t.Errorf("aspect = %s", opts.AspectRatio)
	}
	if opts.NumberOfImages != 5 {
		t.Errorf("count = %d", opts.NumberOfImages)
	}
	if opts.Faceless {
		t.Error("faceless not toggled")
	}
	if opts.Model != imagestudio.ModelFlashImage {
		t.Errorf("model = %s", opts.Model)
	}
}

func TestModel_PasteImage(t *testing.T) {
	h := newHarness(t)
	s := h.model.State()
	h.clip.image = &imagestudio.InputImage{Data: []byte{0x89, 'P', 'N', 'G'}, MIMEType: "image/png"}

	h.send(keys.CtrlV)
	if !errors.Is(s.Err, session.ErrReferenceUnsupported) || s.Reference != nil {
		t.Errorf("Imagen should reject a reference: err=%v", s.Err)
	}

	h.send(keys.Escape, keys.CtrlG, keys.CtrlV)
	if s.Reference == nil {
		t.Fatal("reference not attached for the flash model")
	}

	h.send(keys.CtrlX)
	if s.Reference != nil {
		t.Error("ctrl+x should clear the image")
	}

	h.clip.image = nil
	h.send(keys.CtrlV)
	if s.Notice != "No image on the clipboard" {
		t.Errorf("Notice = %q", s.Notice)
	}
}

func TestModel_GalleryPreviewAndDelete(t *testing.T) {
	h := newHarness(t, "g0", "g1", "g2")
	s := h.model.State()

	h.send(keys.ShiftTab, keys.Down, keys.Enter)
	img, cur, ok := s.PreviewImage()
	if !ok || img.Alt != "g1" || cur.Source != preview.SourceGallery {
		t.Fatalf("preview = %+v %+v %v", img, cur, ok)
	}

	h.send(keys.Right)
	if img, _, _ := s.PreviewImage(); img.Alt != "g2" {
		t.Errorf("right -> %s", img.Alt)
	}
	h.send(keys.Right)
	if img, _, _ := s.PreviewImage(); img.Alt != "g2" {
		t.Errorf("right at the end should stay, got %s", img.Alt)
	}

	if cmd := h.send("r"); cmd != nil || s.Busy {
		t.Error("regenerate is not offered for gallery images")
	}

	h.send("x")
	if !h.model.ConfirmingDelete() {
		t.Fatal("x should ask for confirmation")
	}
	if !strings.Contains(h.model.render(), "(y/n)") {
		t.Error("confirmation not rendered")
	}
	h.send("n")
	if len(s.Gallery) != 3 || !s.Preview.IsOpen() {
		t.Error("n should cancel the delete")
	}

	h.send("x", "y")
	if len(s.Gallery) != 2 || s.Gallery[1].Alt != "g1" {
		t.Errorf("gallery = %+v", s.Gallery)
	}
	if s.Preview.IsOpen() {
		t.Error("preview should close after delete")
	}
	if h.model.Cursor() != 1 {
		t.Errorf("cursor = %d, want clamped to 1", h.model.Cursor())
	}
}

func TestModel_ResultPreviewActions(t *testing.T) {
	h := newHarness(t)
	s := h.model.State()

	h.typeText("a fox")
	h.deliver(h.send(keys.Enter))

	h.send(keys.Down, keys.Enter)
	if !s.Preview.IsOpen() {
		t.Fatal("preview not open")
	}

	h.send("x")
	if h.model.ConfirmingDelete() {
		t.Error("delete is not offered for results")
	}

	h.send("d")
	if s.Notice != "Saved /downloads/a fox.png" {
		t.Errorf("Notice = %q", s.Notice)
	}

	cmd := h.send("r")
	if s.Preview.IsOpen() || !s.Busy {
		t.Fatal("regenerate should close the preview and start a request")
	}
	h.deliver(cmd)
	if len(h.orch.synthesized) != 2 {
		t.Errorf("Synthesize called %d times, want 2", len(h.orch.synthesized))
	}
}

func TestModel_Variation(t *testing.T) {
	h := newHarness(t, "a sleepy cat")
	s := h.model.State()

	h.send(keys.ShiftTab, keys.Enter, "v")

	if s.Mode != session.ModeGenerate || s.Options.Model != imagestudio.ModelFlashImage {
		t.Errorf("mode=%v model=%s", s.Mode, s.Options.Model)
	}
	if s.Reference == nil || s.Prompt != "a sleepy cat" {
		t.Errorf("reference=%v prompt=%q", s.Reference, s.Prompt)
	}
	if h.model.input.Value() != "a sleepy cat" || h.model.Focus() != FocusInput {
		t.Error("input should show the variation prompt")
	}
}

func TestModel_Ideate(t *testing.T) {
	h := newHarness(t)
	h.orch.style = "watercolor"
	s := h.model.State()

	h.send(keys.ShiftTab, keys.ShiftTab)
	if s.Mode != session.ModeIdeate {
		t.Fatalf("mode = %v", s.Mode)
	}
	h.typeText("autumn")
	h.deliver(h.send(keys.Enter))
	if len(s.Suggestions) != 3 {
		t.Fatalf("suggestions = %v", s.Suggestions)
	}

	h.send(keys.Down, keys.Down, "c")
	if h.clip.text != "second idea" {
		t.Errorf("copied %q", h.clip.text)
	}

	h.deliver(h.send(keys.Enter))
	if s.Mode != session.ModeGenerate || s.Prompt != "second idea" {
		t.Errorf("mode=%v prompt=%q", s.Mode, s.Prompt)
	}
	if s.Options.Style.ID != "watercolor" {
		t.Errorf("style = %s", s.Options.Style.ID)
	}
	if len(h.notify.styles) != 1 || h.notify.styles[0] != "Watercolor" {
		t.Errorf("style notifications = %v", h.notify.styles)
	}
	if h.model.input.Value() != "second idea" {
		t.Errorf("input = %q", h.model.input.Value())
	}
}

func TestModel_Render(t *testing.T) {
	h := newHarness(t, "g0")
	out := h.model.render()
	for _, want := range []string{"1 Generate", "2 Edit", "3 Ideate", "4 Gallery (1)", "Anime", "Imagen 4", "No images yet."} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}
