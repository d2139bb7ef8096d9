// Package session holds everything one user session shows and edits, and the
// transitions between those states. State is owned by a single goroutine;
// nothing here locks.
package session

import (
	"errors"
	"fmt"

	"github.com/mhpenta/imagestudio"
	"github.com/mhpenta/imagestudio/preview"
)

// Mode is the active workflow.
type Mode int

const (
	ModeGenerate Mode = iota
	ModeEdit
	ModeIdeate
	ModeGallery
)

// Modes lists the modes in display order.
var Modes = []Mode{ModeGenerate, ModeEdit, ModeIdeate, ModeGallery}

func (m Mode) String() string {
	switch m {
	case ModeGenerate:
		return "generate"
	case ModeEdit:
		return "edit"
	case ModeIdeate:
		return "ideate"
	case ModeGallery:
		return "gallery"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode returns the mode named s.
func ParseMode(s string) (Mode, bool) {
	for _, m := range Modes {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

var (
	// ErrBusy is returned when a request is started while another is outstanding.
	ErrBusy = errors.New("a request is already in progress")

	// ErrNoPreview is returned by preview actions when nothing is previewed.
	ErrNoPreview = errors.New("no image is being previewed")

	// ErrReferenceUnsupported is returned when a reference image is given to
	// a model that ignores it.
	ErrReferenceUnsupported = errors.New("the selected model does not accept reference images")

	// ErrNoSuggestion is returned for a suggestion index that does not exist.
	ErrNoSuggestion = errors.New("no such suggestion")
)

// Options are the generation settings chosen by the user.
type Options struct {
	Style          imagestudio.StyleOption
	AspectRatio    imagestudio.AspectRatio
	NumberOfImages int
	Model          imagestudio.Model
	Faceless       bool
}

// DefaultOptions returns the settings a new session starts with.
func DefaultOptions() Options {
	return Options{
		Style:          imagestudio.DefaultStyle(),
		AspectRatio:    imagestudio.AspectRatio1x1,
		NumberOfImages: 4,
		Model:          imagestudio.ModelDefault,
		Faceless:       true,
	}
}

// State is the whole session.
type State struct {
	Mode Mode
	Busy bool

	// Err is the inline error shown to the user; Notice is a transient hint.
	Err    error
	Notice string

	// Generate and edit inputs.
	Prompt    string
	Reference *imagestudio.InputImage
	Options   Options

	// Ideate inputs and output.
	Inspiration      string
	InspirationImage *imagestudio.InputImage
	Suggestions      []string

	Results []imagestudio.Image
	Gallery []imagestudio.Image

	Preview preview.Navigator
}

// New returns a session in generate mode over an already loaded gallery.
func New(gallery []imagestudio.Image) *State {
	if gallery == nil {
		gallery = []imagestudio.Image{}
	}
	return &State{
		Mode:    ModeGenerate,
		Options: DefaultOptions(),
		Results: []imagestudio.Image{},
		Gallery: gallery,
	}
}

// ChangeMode switches workflow. It clears the inline error and any
// suggestions, and drops the result batch unless the new mode is gallery.
func (s *State) ChangeMode(m Mode) {
	s.Mode = m
	s.Err = nil
	s.Suggestions = nil
	if m != ModeGallery {
		s.Results = []imagestudio.Image{}
	}
	s.clampPreview()
}

// NextMode cycles through Modes.
func (s *State) NextMode() {
	s.ChangeMode(Modes[(int(s.Mode)+1)%len(Modes)])
}

// SetPrompt sets the generate prompt or edit instruction.
func (s *State) SetPrompt(p string) {
	s.Prompt = p
}

// SetInspiration sets the ideate description.
func (s *State) SetInspiration(d string) {
	s.Inspiration = d
}

// SetImage attaches img to the current mode: the inspiration image in
// ideate mode, otherwise the reference or edit source.
func (s *State) SetImage(img imagestudio.InputImage) error {
	if err := imagestudio.ValidateInputImage(img); err != nil {
		return err
	}
	switch {
	case s.Mode == ModeIdeate:
		s.InspirationImage = &img
	case s.Mode == ModeGenerate && !s.acceptsReference():
		return ErrReferenceUnsupported
	default:
		s.Reference = &img
	}
	return nil
}

// ClearImage removes the image attached to the current mode.
func (s *State) ClearImage() {
	if s.Mode == ModeIdeate {
		s.InspirationImage = nil
		return
	}
	s.Reference = nil
}

// CurrentImage returns the image attached to the current mode.
func (s *State) CurrentImage() *imagestudio.InputImage {
	if s.Mode == ModeIdeate {
		return s.InspirationImage
	}
	return s.Reference
}

func (s *State) acceptsReference() bool {
	opt, ok := imagestudio.LookupModelOption(s.Options.Model)
	return ok && opt.AcceptsReference
}

// CycleStyle moves the style selection by delta, wrapping.
func (s *State) CycleStyle(delta int) {
	idx := 0
	for i, st := range imagestudio.StyleOptions {
		if st.ID == s.Options.Style.ID {
			idx = i
			break
		}
	}
	s.Options.Style = imagestudio.StyleOptions[wrap(idx+delta, len(imagestudio.StyleOptions))]
}

// SetStyle selects a preset by id.
func (s *State) SetStyle(id imagestudio.StyleID) bool {
	st, ok := imagestudio.LookupStyle(id)
	if ok {
		s.Options.Style = st
	}
	return ok
}

// CycleAspect moves the aspect ratio selection by delta, wrapping.
func (s *State) CycleAspect(delta int) {
	idx := 0
	for i, ar := range imagestudio.AspectRatios {
		if ar == s.Options.AspectRatio {
			idx = i
			break
		}
	}
	s.Options.AspectRatio = imagestudio.AspectRatios[wrap(idx+delta, len(imagestudio.AspectRatios))]
}

// CycleCount moves the image count by delta within 1..MaxImagesPerRequest, wrapping.
func (s *State) CycleCount(delta int) {
	s.Options.NumberOfImages = wrap(s.Options.NumberOfImages-1+delta, imagestudio.MaxImagesPerRequest) + 1
}

// ToggleFaceless flips the faceless flag.
func (s *State) ToggleFaceless() {
	s.Options.Faceless = !s.Options.Faceless
}

// CycleModel moves the model selection by delta. Switching to a model that
// ignores references drops the attached reference in generate mode.
func (s *State) CycleModel(delta int) {
	idx := 0
	for i, o := range imagestudio.ModelOptions {
		if o.ID == s.Options.Model {
			idx = i
			break
		}
	}
	s.SetModel(imagestudio.ModelOptions[wrap(idx+delta, len(imagestudio.ModelOptions))].ID)
}

// SetModel selects a generation model.
func (s *State) SetModel(m imagestudio.Model) {
	s.Options.Model = m
	if s.Mode == ModeGenerate && !s.acceptsReference() {
		s.Reference = nil
	}
}

// ValidateSubmit reports the input error that would stop a submit in the
// current mode, or nil.
func (s *State) ValidateSubmit() error {
	switch s.Mode {
	case ModeGenerate:
		return imagestudio.ValidatePrompt(s.Prompt)
	case ModeEdit:
		if s.Reference == nil {
			return imagestudio.ErrMissingImage
		}
		return imagestudio.ValidateInstruction(s.Prompt)
	default:
		return fmt.Errorf("cannot submit in %s mode", s.Mode)
	}
}

// BeginRequest marks the session busy and clears the error and, for
// submits, the previous result batch.
func (s *State) BeginRequest() error {
	if s.Busy {
		return ErrBusy
	}
	s.Busy = true
	s.Err = nil
	s.Notice = ""
	switch s.Mode {
	case ModeIdeate:
		s.Suggestions = nil
	case ModeGenerate, ModeEdit:
		s.Results = []imagestudio.Image{}
		s.clampPreview()
	}
	return nil
}

// FinishResults ends a submit with its images.
func (s *State) FinishResults(images []imagestudio.Image) {
	s.Busy = false
	s.Results = images
	s.clampPreview()
}

// FinishSuggestions ends an ideation request.
func (s *State) FinishSuggestions(suggestions []string) {
	s.Busy = false
	s.Suggestions = suggestions
}

// FailRequest ends any request with an error shown inline.
func (s *State) FailRequest(err error) {
	s.Busy = false
	s.Err = err
}

// SetGallery replaces the gallery and keeps the preview valid.
func (s *State) SetGallery(g []imagestudio.Image) {
	s.Gallery = g
	s.clampPreview()
}

// ApplySuggestion puts a suggestion into the generate prompt. A matched
// style is selected and announced; otherwise the default style is used.
func (s *State) ApplySuggestion(text string, style imagestudio.StyleID, matched bool) {
	s.Busy = false
	s.Prompt = text
	s.Mode = ModeGenerate

	if st, ok := imagestudio.LookupStyle(style); matched && ok {
		s.Options.Style = st
		s.Notice = "Style automatically set to: " + st.Label
	} else {
		s.Options.Style = imagestudio.DefaultStyle()
	}
	if !s.acceptsReference() {
		s.Reference = nil
	}
}

// Suggestion returns suggestion i.
func (s *State) Suggestion(i int) (string, error) {
	if i < 0 || i >= len(s.Suggestions) {
		return "", ErrNoSuggestion
	}
	return s.Suggestions[i], nil
}

// PrepareVariation sets up a generate request seeded by img: the flash model
// with img as reference and its caption as prompt. The preview is closed.
func (s *State) PrepareVariation(img imagestudio.Image) error {
	ref, err := imagestudio.ParseDataURI(img.Src)
	if err != nil {
		s.Err = &imagestudio.GenerationError{Op: imagestudio.OpCreateVariation, Err: err}
		return s.Err
	}

	s.Mode = ModeGenerate
	s.Err = nil
	s.Options.Model = imagestudio.ModelFlashImage
	s.Prompt = img.Alt
	s.Reference = &ref
	s.Preview.Close()
	return nil
}

// DismissError clears the inline error.
func (s *State) DismissError() {
	s.Err = nil
}

// ClearNotice clears the transient notice.
func (s *State) ClearNotice() {
	s.Notice = ""
}

// List returns the list a preview source points into.
func (s *State) List(src preview.Source) []imagestudio.Image {
	if src == preview.SourceGallery {
		return s.Gallery
	}
	return s.Results
}

// OpenPreview enlarges image index of src.
func (s *State) OpenPreview(index int, src preview.Source) error {
	return s.Preview.Open(index, src, len(s.List(src)))
}

// NextPreview moves the preview forward.
func (s *State) NextPreview() {
	if c, ok := s.Preview.Current(); ok {
		s.Preview.Next(len(s.List(c.Source)))
	}
}

// PrevPreview moves the preview back.
func (s *State) PrevPreview() {
	s.Preview.Prev()
}

// ClosePreview closes the preview.
func (s *State) ClosePreview() {
	s.Preview.Close()
}

// HandlePreviewKey applies a navigation key to the open preview.
func (s *State) HandlePreviewKey(key string) bool {
	c, ok := s.Preview.Current()
	if !ok {
		return false
	}
	return s.Preview.HandleKey(key, len(s.List(c.Source)))
}

// PreviewImage returns the previewed image and its cursor.
func (s *State) PreviewImage() (imagestudio.Image, preview.Cursor, bool) {
	c, ok := s.Preview.Current()
	if !ok {
		return imagestudio.Image{}, c, false
	}
	list := s.List(c.Source)
	if c.Index >= len(list) {
		return imagestudio.Image{}, c, false
	}
	return list[c.Index], c, true
}

func (s *State) clampPreview() {
	if c, ok := s.Preview.Current(); ok {
		s.Preview.Clamp(len(s.List(c.Source)))
	}
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
