// Package preview tracks which image is enlarged in the preview modal and
// moves through the list it came from without ever leaving its bounds.
package preview

import (
	"errors"
	"fmt"
)

// Source names the list a preview cursor points into.
type Source int

const (
	SourceResults Source = iota
	SourceGallery
)

func (s Source) String() string {
	switch s {
	case SourceResults:
		return "results"
	case SourceGallery:
		return "gallery"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

var (
	ErrEmptyList  = errors.New("cannot preview an empty list")
	ErrOutOfRange = errors.New("preview index out of range")
)

// Cursor is a position in one of the two lists.
type Cursor struct {
	Index  int
	Source Source
}

// Navigator holds a nullable Cursor. The zero value is closed.
//
// The navigator does not hold the list, only its position; every call that
// depends on the list takes its current length.
type Navigator struct {
	cursor Cursor
	open   bool
}

// Open points the navigator at index in a list of the given length.
func (n *Navigator) Open(index int, source Source, length int) error {
	if length <= 0 {
		return ErrEmptyList
	}
	if index < 0 || index >= length {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, index, length)
	}
	n.cursor = Cursor{Index: index, Source: source}
	n.open = true
	return nil
}

// Next moves forward; it does nothing on the last image.
func (n *Navigator) Next(length int) {
	if !n.open {
		return
	}
	if n.cursor.Index < length-1 {
		n.cursor.Index++
	}
}

// Prev moves back; it does nothing on the first image.
func (n *Navigator) Prev() {
	if !n.open {
		return
	}
	if n.cursor.Index > 0 {
		n.cursor.Index--
	}
}

// Close clears the cursor.
func (n *Navigator) Close() {
	n.cursor = Cursor{}
	n.open = false
}

// Clamp closes the navigator if the list shrank past the cursor.
func (n *Navigator) Clamp(length int) {
	if n.open && n.cursor.Index >= length {
		n.Close()
	}
}

// Current returns the cursor, or false when closed.
func (n Navigator) Current() (Cursor, bool) {
	return n.cursor, n.open
}

// IsOpen reports whether an image is being previewed.
func (n Navigator) IsOpen() bool {
	return n.open
}

// HasNext reports whether Next would move.
func (n Navigator) HasNext(length int) bool {
	return n.open && n.cursor.Index < length-1
}

// HasPrev reports whether Prev would move.
func (n Navigator) HasPrev() bool {
	return n.open && n.cursor.Index > 0
}
