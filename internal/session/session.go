// Package session runs one extraction session for one image: it asks an
// engine for the text blocks, loads them into an annotation store and keeps a
// history of the curator's corrections.
package session

import (
	"context"
	"fmt"
	"path/filepath"

	"ocr-curator/internal/annotation"
	"ocr-curator/internal/logger"
	"ocr-curator/internal/parser"
)

// Engine is the capability a session needs: an image and a prompt in, the
// model's text out.
type Engine interface {
	ProcessImage(ctx context.Context, prompt, imagePath string) (string, error)
}

// LoadSummary reports how a model response was loaded.
type LoadSummary struct {
	Parsed           int
	Accepted         int
	Rejected         []annotation.SeedRejection
	DeclaredCount    int
	HasDeclaredCount bool
}

// CountMismatch reports a declared count that differs from the parsed list.
func (s LoadSummary) CountMismatch() bool {
	return s.HasDeclaredCount && s.DeclaredCount != s.Parsed
}

type Session struct {
	source  string
	store   *annotation.Store
	summary LoadSummary
	history []Change
}

// New starts an empty session for the image identified by source.
func New(source string) *Session {
	return &Session{
		source: source,
		store:  annotation.NewStore(),
	}
}

// Extract asks engine for the blocks in imagePath and loads them. scale is
// the factor imagePath was enlarged by relative to the original image (1 if
// it was not); coordinates are mapped back before loading.
func Extract(ctx context.Context, engine Engine, prompt, imagePath, source string, scale int) (*Session, error) {
	if source == "" {
		source = filepath.Base(imagePath)
	}
	logger.DebugLog("[session]: extracting text from %s", imagePath)
	text, err := engine.ProcessImage(ctx, prompt, imagePath)
	if err != nil {
		return nil, fmt.Errorf("extracting text from %s: %w", imagePath, err)
	}

	s := New(source)
	s.Load(text, scale)
	return s, nil
}

// Load parses a model response and seeds the store with its blocks. Blocks
// that are negative or overlap an earlier block are skipped and reported.
func (s *Session) Load(response string, scale int) LoadSummary {
	resp := parser.Parse(response)
	candidates := scaleDown(resp.Candidates(), scale)

	accepted, rejected := s.store.Seed(s.source, candidates)
	s.summary = LoadSummary{
		Parsed:           len(resp.Blocks),
		Accepted:         accepted,
		Rejected:         rejected,
		DeclaredCount:    resp.DeclaredCount,
		HasDeclaredCount: resp.HasDeclaredCount,
	}

	for _, r := range rejected {
		logger.DebugLog("[session]: %s: skipped block %d %q: %v", s.source, r.Position+1, r.Candidate.Text, r.Err)
	}
	if s.summary.CountMismatch() {
		logger.Warn("declared block count differs from parsed list",
			"source", s.source, "declared", resp.DeclaredCount, "parsed", len(resp.Blocks))
	}
	return s.summary
}

func (s *Session) Source() string {
	return s.source
}

func (s *Session) Summary() LoadSummary {
	return s.summary
}

// Annotations returns the current blocks in display order.
func (s *Session) Annotations() []annotation.Annotation {
	return s.store.All()
}

func (s *Session) Len() int {
	return s.store.Len()
}

func (s *Session) EditText(index int, text string) error {
	before, err := s.store.At(index)
	if err != nil {
		return err
	}
	if err := s.store.EditText(index, text); err != nil {
		return err
	}
	s.record(Change{
		Op:    OpEditText,
		ID:    before.ID,
		Index: index,
		Diffs: textDiff(before.ExtractedText, text),
	})
	return nil
}

func (s *Session) EditLocation(index int, from, to annotation.Coordinates) error {
	before, err := s.store.At(index)
	if err != nil {
		return err
	}
	if err := s.store.EditLocation(index, from, to); err != nil {
		return err
	}
	s.record(Change{
		Op:      OpEditLocation,
		ID:      before.ID,
		Index:   index,
		OldFrom: before.From,
		OldTo:   before.To,
		From:    from,
		To:      to,
	})
	return nil
}

// Add inserts a manually drawn block for this session's image.
func (s *Session) Add(from, to annotation.Coordinates) (annotation.Annotation, error) {
	a, err := s.store.Add(s.source, from, to)
	if err != nil {
		return annotation.Annotation{}, err
	}
	s.record(Change{
		Op:    OpAdd,
		ID:    a.ID,
		Index: s.store.Len() - 1,
		From:  from,
		To:    to,
	})
	return a, nil
}

// Delete removes the block at index; see annotation.Store.Delete for how
// later indices shift.
func (s *Session) Delete(index int) error {
	before, err := s.store.At(index)
	if err != nil {
		return err
	}
	if err := s.store.Delete(index); err != nil {
		return err
	}
	s.record(deleteChange(before, index))
	return nil
}

// DeleteIndices removes several blocks at once, indices referring to the
// order before the call.
func (s *Session) DeleteIndices(indices ...int) error {
	removed := make(map[int]annotation.Annotation, len(indices))
	for _, i := range indices {
		a, err := s.store.At(i)
		if err != nil {
			return err
		}
		removed[i] = a
	}
	if err := s.store.DeleteIndices(indices...); err != nil {
		return err
	}
	for i := s.store.Len() + len(removed) - 1; i >= 0; i-- {
		if a, ok := removed[i]; ok {
			s.record(deleteChange(a, i))
		}
	}
	return nil
}

// History returns the corrections applied so far, oldest first.
func (s *Session) History() []Change {
	out := make([]Change, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) record(c Change) {
	s.history = append(s.history, c)
	logger.DebugLog("[session]: %s: %s", s.source, c)
}

func deleteChange(a annotation.Annotation, index int) Change {
	return Change{
		Op:      OpDelete,
		ID:      a.ID,
		Index:   index,
		OldFrom: a.From,
		OldTo:   a.To,
		Diffs:   textDiff(a.ExtractedText, ""),
	}
}

func scaleDown(candidates []annotation.Candidate, scale int) []annotation.Candidate {
	if scale <= 1 {
		return candidates
	}
	for i := range candidates {
		c := &candidates[i]
		c.From = annotation.Coordinates{X: c.From.X / scale, Y: c.From.Y / scale}
		c.To = annotation.Coordinates{
			X: max(scaleDownEnd(c.To.X, scale), c.From.X),
			Y: max(scaleDownEnd(c.To.Y, scale), c.From.Y),
		}
	}
	return candidates
}

// scaleDownEnd maps an inclusive end coordinate to the last original pixel
// wholly covered by it, so a gap between boxes on the enlarged image is
// still a gap after scaling.
func scaleDownEnd(v, scale int) int {
	if v < 0 {
		return v / scale
	}
	return (v+1)/scale - 1
}
