// Package annotation holds the curated text blocks extracted from one image
// and the rules for mutating them.
package annotation

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("extraction not found")
	ErrInvalidCoordinates = errors.New("coordinates must be non-negative")
	ErrOverlappingRegion  = errors.New("overlapping extraction area")
)

// Coordinates is a pixel position. There is no upper bound, the store does
// not know the image dimensions.
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("{x:%d, y:%d}", c.X, c.Y)
}

func (c Coordinates) valid() bool {
	return c.X >= 0 && c.Y >= 0
}

// ID identifies an annotation for the lifetime of its store, independent of
// its position in the ordered view.
type ID uint64

// Annotation is one text block. From and To are kept exactly as supplied;
// callers are expected to pass the min corner as From.
type Annotation struct {
	ID            ID          `json:"id"`
	Source        string      `json:"source"`
	ExtractedText string      `json:"extractedText"`
	From          Coordinates `json:"fromCoord"`
	To            Coordinates `json:"toCoord"`
}

// Candidate is a block proposed for insertion, usually parsed from a model
// response.
type Candidate struct {
	Text string
	From Coordinates
	To   Coordinates
}

// Overlaps reports whether the rectangles (a1,a2) and (b1,b2) share any
// point. Touching edges count as overlap.
func Overlaps(a1, a2, b1, b2 Coordinates) bool {
	return !(a2.X < b1.X ||
		a1.X > b2.X ||
		a2.Y < b1.Y ||
		a1.Y > b2.Y)
}

func validateCoordinates(from, to Coordinates) error {
	if !from.valid() || !to.valid() {
		return fmt.Errorf("from %s to %s: %w", from, to, ErrInvalidCoordinates)
	}
	return nil
}
