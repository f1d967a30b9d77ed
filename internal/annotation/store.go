package annotation

import (
	"fmt"
	"sort"
)

// Store is an ordered collection of annotations addressed by position.
// It has no internal locking: one session owns it at a time.
type Store struct {
	items  []Annotation
	nextID ID
}

func NewStore() *Store {
	return &Store{nextID: 1}
}

// SeedRejection describes a candidate that Seed did not load.
type SeedRejection struct {
	Position  int
	Candidate Candidate
	Err       error
}

func (s *Store) Len() int {
	return len(s.items)
}

// All returns a copy of the annotations in their current order.
func (s *Store) All() []Annotation {
	out := make([]Annotation, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) At(index int) (Annotation, error) {
	if err := s.checkIndex(index); err != nil {
		return Annotation{}, err
	}
	return s.items[index], nil
}

// IndexOf returns the current position of the annotation with the given id.
func (s *Store) IndexOf(id ID) (int, bool) {
	for i := range s.items {
		if s.items[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s *Store) Get(id ID) (Annotation, bool) {
	i, ok := s.IndexOf(id)
	if !ok {
		return Annotation{}, false
	}
	return s.items[i], true
}

// EditText replaces the text at index. The empty string is allowed.
func (s *Store) EditText(index int, text string) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.items[index].ExtractedText = text
	return nil
}

// EditLocation replaces the bounding box at index. Unlike Add it does not
// check the new box against the other annotations.
func (s *Store) EditLocation(index int, from, to Coordinates) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if err := validateCoordinates(from, to); err != nil {
		return err
	}
	s.items[index].From = from
	s.items[index].To = to
	return nil
}

// Add appends a new annotation with empty text. The box must be non-negative
// and must not overlap any stored annotation.
func (s *Store) Add(source string, from, to Coordinates) (Annotation, error) {
	if err := validateCoordinates(from, to); err != nil {
		return Annotation{}, err
	}
	if i, hit := s.overlapping(from, to); hit {
		return Annotation{}, fmt.Errorf("from %s to %s overlaps annotation %d: %w", from, to, i, ErrOverlappingRegion)
	}

	a := Annotation{
		ID:     s.nextID,
		Source: source,
		From:   from,
		To:     to,
	}
	s.nextID++
	s.items = append(s.items, a)
	return a, nil
}

// Delete removes the annotation at index and shifts every later annotation
// one position down. Callers deleting several entries by index must go from
// the highest index to the lowest, or use DeleteIndices.
func (s *Store) Delete(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	return nil
}

// DeleteIndices removes every listed position. Indices refer to the order
// before the call; nothing is removed if any of them is out of range.
func (s *Store) DeleteIndices(indices ...int) error {
	seen := make(map[int]bool, len(indices))
	ordered := make([]int, 0, len(indices))
	for _, i := range indices {
		if err := s.checkIndex(i); err != nil {
			return err
		}
		if !seen[i] {
			seen[i] = true
			ordered = append(ordered, i)
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))
	for _, i := range ordered {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	return nil
}

// Seed loads candidates in order using the same checks as Add, then sets
// their text. Candidates that fail are reported and skipped.
func (s *Store) Seed(source string, candidates []Candidate) (int, []SeedRejection) {
	var rejected []SeedRejection
	accepted := 0
	for pos, c := range candidates {
		if _, err := s.Add(source, c.From, c.To); err != nil {
			rejected = append(rejected, SeedRejection{Position: pos, Candidate: c, Err: err})
			continue
		}
		s.items[len(s.items)-1].ExtractedText = c.Text
		accepted++
	}
	return accepted, rejected
}

func (s *Store) overlapping(from, to Coordinates) (int, bool) {
	for i, r := range s.items {
		if Overlaps(r.From, r.To, from, to) {
			return i, true
		}
	}
	return -1, false
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("index %d (have %d): %w", index, len(s.items), ErrNotFound)
	}
	return nil
}
