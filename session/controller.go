package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mhpenta/imagestudio"
	"github.com/mhpenta/imagestudio/gallery"
	"github.com/mhpenta/imagestudio/preview"
)

// Orchestrator is the part of imagestudio.Manager a session drives.
type Orchestrator interface {
	Synthesize(ctx context.Context, req imagestudio.Request) ([]imagestudio.Image, error)
	EditImage(ctx context.Context, instruction string, source imagestudio.InputImage, faceless bool) (imagestudio.Image, error)
	SuggestPrompts(ctx context.Context, req imagestudio.SuggestionRequest) ([]string, error)
	ClassifyStyle(ctx context.Context, prompt string) (imagestudio.StyleID, bool)
	Download(ctx context.Context, img imagestudio.Image) (imagestudio.StorageResult, error)
}

// GalleryStore persists gallery mutations.
type GalleryStore interface {
	Append(ctx context.Context, images []imagestudio.Image, g []imagestudio.Image) ([]imagestudio.Image, error)
	RemoveAt(ctx context.Context, i int, g []imagestudio.Image) ([]imagestudio.Image, error)
}

var (
	_ Orchestrator = (*imagestudio.Manager)(nil)
	_ GalleryStore = (*gallery.Store)(nil)
)

// Job is a prepared submit. It carries copies of every input so it can run
// on another goroutine while the state keeps changing.
type Job struct {
	Mode        Mode
	Request     imagestudio.Request
	Instruction string
	Source      imagestudio.InputImage
	Faceless    bool
}

// Outcome is what running a Job produced.
type Outcome struct {
	Job    Job
	Images []imagestudio.Image
	Err    error
}

// IdeationJob is a prepared suggestion request.
type IdeationJob struct {
	Request imagestudio.SuggestionRequest
}

// IdeationOutcome is what running an IdeationJob produced.
type IdeationOutcome struct {
	Suggestions []string
	Err         error
}

// SuggestionOutcome is the result of matching a suggestion to a style.
type SuggestionOutcome struct {
	Text    string
	Style   imagestudio.StyleID
	Matched bool
}

// Controller runs session requests. Each request is split into Prepare
// (validate and mark busy), Run (backend call, touches no state) and
// Complete (apply the outcome), so a UI can run the middle step elsewhere.
type Controller struct {
	orch   Orchestrator
	store  GalleryStore
	logger *slog.Logger
}

// NewController creates a Controller.
func NewController(orch Orchestrator, store GalleryStore, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{orch: orch, store: store, logger: logger}
}

// PrepareSubmit validates the generate or edit inputs and starts the request.
// Input errors are set inline and returned; the session is not marked busy.
func (c *Controller) PrepareSubmit(s *State) (Job, error) {
	if s.Busy {
		return Job{}, ErrBusy
	}
	if err := s.ValidateSubmit(); err != nil {
		s.Err = err
		return Job{}, err
	}

	job := Job{Mode: s.Mode}
	switch s.Mode {
	case ModeGenerate:
		job.Request = imagestudio.Request{
			Prompt:         s.Prompt,
			Style:          s.Options.Style,
			NumberOfImages: s.Options.NumberOfImages,
			AspectRatio:    s.Options.AspectRatio,
			Model:          s.Options.Model,
			Faceless:       s.Options.Faceless,
		}
		if s.Reference != nil && s.acceptsReference() {
			ref := *s.Reference
			job.Request.Reference = &ref
		}
	case ModeEdit:
		job.Instruction = s.Prompt
		job.Source = *s.Reference
		job.Faceless = s.Options.Faceless
	}

	if err := s.BeginRequest(); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Run performs the backend work for job.
func (c *Controller) Run(ctx context.Context, job Job) Outcome {
	switch job.Mode {
	case ModeEdit:
		img, err := c.orch.EditImage(ctx, job.Instruction, job.Source, job.Faceless)
		if err != nil {
			return Outcome{Job: job, Err: err}
		}
		return Outcome{Job: job, Images: []imagestudio.Image{img}}
	default:
		images, err := c.orch.Synthesize(ctx, job.Request)
		return Outcome{Job: job, Images: images, Err: err}
	}
}

// Complete applies a submit outcome: the results replace the batch and are
// prepended to the gallery, which is persisted. A persistence failure is
// returned as a warning but does not undo anything.
func (c *Controller) Complete(ctx context.Context, s *State, out Outcome) error {
	if out.Err != nil {
		s.FailRequest(out.Err)
		return out.Err
	}

	s.FinishResults(out.Images)

	updated, err := c.store.Append(ctx, out.Images, s.Gallery)
	s.SetGallery(updated)
	if err != nil {
		c.logger.Warn("gallery not saved", "error", err.Error())
		s.Notice = "Images were generated but could not be saved to the gallery."
		return err
	}
	return nil
}

// Submit runs a whole submit synchronously.
func (c *Controller) Submit(ctx context.Context, s *State) error {
	job, err := c.PrepareSubmit(s)
	if err != nil {
		return err
	}
	return c.Complete(ctx, s, c.Run(ctx, job))
}

// PrepareRegenerate closes the preview and starts the last submit again.
func (c *Controller) PrepareRegenerate(s *State) (Job, error) {
	s.ClosePreview()
	return c.PrepareSubmit(s)
}

// PrepareIdeation starts a suggestion request.
func (c *Controller) PrepareIdeation(s *State) (IdeationJob, error) {
	if err := s.BeginRequest(); err != nil {
		return IdeationJob{}, err
	}
	job := IdeationJob{Request: imagestudio.SuggestionRequest{Description: s.Inspiration}}
	if s.InspirationImage != nil {
		img := *s.InspirationImage
		job.Request.Reference = &img
	}
	return job, nil
}

// RunIdeation performs the suggestion request.
func (c *Controller) RunIdeation(ctx context.Context, job IdeationJob) IdeationOutcome {
	suggestions, err := c.orch.SuggestPrompts(ctx, job.Request)
	return IdeationOutcome{Suggestions: suggestions, Err: err}
}

// CompleteIdeation applies the suggestions.
func (c *Controller) CompleteIdeation(s *State, out IdeationOutcome) error {
	if out.Err != nil {
		s.FailRequest(out.Err)
		return out.Err
	}
	s.FinishSuggestions(out.Suggestions)
	return nil
}

// Ideate runs a whole suggestion request synchronously.
func (c *Controller) Ideate(ctx context.Context, s *State) error {
	job, err := c.PrepareIdeation(s)
	if err != nil {
		return err
	}
	return c.CompleteIdeation(s, c.RunIdeation(ctx, job))
}

// PrepareSuggestion picks suggestion i for use.
func (c *Controller) PrepareSuggestion(s *State, i int) (string, error) {
	if s.Busy {
		return "", ErrBusy
	}
	text, err := s.Suggestion(i)
	if err != nil {
		return "", err
	}
	s.Busy = true
	s.Err = nil
	return text, nil
}

// RunSuggestion matches text to a style. It never fails.
func (c *Controller) RunSuggestion(ctx context.Context, text string) SuggestionOutcome {
	id, ok := c.orch.ClassifyStyle(ctx, text)
	return SuggestionOutcome{Text: text, Style: id, Matched: ok}
}

// CompleteSuggestion moves the suggestion into the generate prompt.
func (c *Controller) CompleteSuggestion(s *State, out SuggestionOutcome) {
	s.ApplySuggestion(out.Text, out.Style, out.Matched)
}

// UseSuggestion runs the whole suggestion flow synchronously.
func (c *Controller) UseSuggestion(ctx context.Context, s *State, i int) error {
	text, err := c.PrepareSuggestion(s, i)
	if err != nil {
		return err
	}
	c.CompleteSuggestion(s, c.RunSuggestion(ctx, text))
	return nil
}

// DeleteGalleryImage removes the previewed gallery image and closes the
// preview. The caller must have confirmed the deletion.
func (c *Controller) DeleteGalleryImage(ctx context.Context, s *State) error {
	_, cur, ok := s.PreviewImage()
	if !ok || cur.Source != preview.SourceGallery {
		return ErrNoPreview
	}
	return c.RemoveGalleryImage(ctx, s, cur.Index)
}

// RemoveGalleryImage removes gallery image i and persists the gallery.
func (c *Controller) RemoveGalleryImage(ctx context.Context, s *State, i int) error {
	updated, err := c.store.RemoveAt(ctx, i, s.Gallery)
	if errors.Is(err, gallery.ErrIndexOutOfRange) {
		return err
	}

	s.SetGallery(updated)
	s.Preview.Close()
	if err != nil {
		c.logger.Warn("gallery not saved after delete", "error", err.Error())
		return err
	}
	return nil
}

// DownloadPreview saves the previewed image through the orchestrator's storage.
func (c *Controller) DownloadPreview(ctx context.Context, s *State) (imagestudio.StorageResult, error) {
	img, _, ok := s.PreviewImage()
	if !ok {
		return imagestudio.StorageResult{}, ErrNoPreview
	}
	res, err := c.orch.Download(ctx, img)
	if err != nil {
		return imagestudio.StorageResult{}, err
	}
	s.Notice = "Saved " + res.Location
	return res, nil
}

// CreateVariation seeds a new generate request from the previewed image.
func (c *Controller) CreateVariation(s *State) error {
	img, _, ok := s.PreviewImage()
	if !ok {
		return ErrNoPreview
	}
	return s.PrepareVariation(img)
}
