// Package gallery keeps the newest-first list of saved images and persists
// it whole, as one JSON array, under a single named record.
package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mhpenta/imagestudio"
)

// DefaultKey is the record name the gallery is stored under.
const DefaultKey = "permai-gallery-images"

// ErrIndexOutOfRange is returned by RemoveAt for an index outside the gallery.
var ErrIndexOutOfRange = errors.New("gallery index out of range")

// PersistError reports that the gallery changed in memory but could not be
// written. It is a warning: the returned gallery is still the new one.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to save gallery %q: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// IsPersistError checks if an error is a PersistError.
func IsPersistError(err error) bool {
	var pErr *PersistError
	return errors.As(err, &pErr)
}

// Store reads and writes the gallery record through a Backend.
// The gallery itself is owned by the caller; Store holds no copy.
type Store struct {
	backend Backend
	key     string
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the record name.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithLogger sets a structured logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store over backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the record name.
func (s *Store) Key() string {
	return s.key
}

// Load reads the gallery. A missing or unreadable record yields an empty
// gallery; a record that does not parse is deleted. Load never fails.
func (s *Store) Load(ctx context.Context) []imagestudio.Image {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return []imagestudio.Image{}
	}
	if err != nil {
		s.logger.Warn("failed to read gallery", "key", s.key, "error", err.Error())
		return []imagestudio.Image{}
	}

	var images []imagestudio.Image
	if err := json.Unmarshal(data, &images); err != nil {
		s.logger.Debug("discarding corrupt gallery record", "key", s.key, "error", err.Error())
		if delErr := s.backend.Delete(ctx, s.key); delErr != nil && !errors.Is(delErr, ErrNotFound) {
			s.logger.Debug("failed to delete corrupt gallery record", "key", s.key, "error", delErr.Error())
		}
		return []imagestudio.Image{}
	}
	if images == nil {
		images = []imagestudio.Image{}
	}

	s.logger.Debug("gallery loaded", "key", s.key, "count", len(images))
	return images
}

// Append returns images followed by g and persists the result. If the write
// fails the new gallery is still returned, together with a *PersistError.
func (s *Store) Append(ctx context.Context, images []imagestudio.Image, g []imagestudio.Image) ([]imagestudio.Image, error) {
	updated := make([]imagestudio.Image, 0, len(images)+len(g))
	updated = append(updated, images...)
	updated = append(updated, g...)

	return updated, s.save(ctx, updated)
}

// RemoveAt returns g without element i and persists the result. An index
// outside g returns g unchanged with ErrIndexOutOfRange.
func (s *Store) RemoveAt(ctx context.Context, i int, g []imagestudio.Image) ([]imagestudio.Image, error) {
	if i < 0 || i >= len(g) {
		return g, fmt.Errorf("%w: %d (gallery has %d)", ErrIndexOutOfRange, i, len(g))
	}

	updated := make([]imagestudio.Image, 0, len(g)-1)
	updated = append(updated, g[:i]...)
	updated = append(updated, g[i+1:]...)

	return updated, s.save(ctx, updated)
}

// Save writes g as the whole gallery.
func (s *Store) Save(ctx context.Context, g []imagestudio.Image) error {
	return s.save(ctx, g)
}

func (s *Store) save(ctx context.Context, g []imagestudio.Image) error {
	if g == nil {
		g = []imagestudio.Image{}
	}
	data, err := json.Marshal(g)
	if err != nil {
		return &PersistError{Key: s.key, Err: err}
	}

	if err := s.backend.Put(ctx, s.key, data); err != nil {
		s.logger.Warn("failed to persist gallery",
			"key", s.key,
			"count", len(g),
			"bytes", len(data),
			"error", err.Error(),
		)
		return &PersistError{Key: s.key, Err: err}
	}

	s.logger.Debug("gallery persisted", "key", s.key, "count", len(g), "bytes", len(data))
	return nil
}
