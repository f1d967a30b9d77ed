package engine

import (
	"image"
	"testing"

	"github.com/otiai10/gosseract/v2"

	"ocr-curator/internal/annotation"
	"ocr-curator/internal/parser"
)

func TestBoxesToBlocks(t *testing.T) {
	// arrange
	boxes := []gosseract.BoundingBox{
		{Box: image.Rect(10, 20, 120, 40), Word: "Welcome to class\n", Confidence: 91},
		{Box: image.Rect(0, 0, 5, 5), Word: "  \n", Confidence: 95},
		{Box: image.Rect(15, 60, 130, 80), Word: "noise", Confidence: 12},
		{Box: image.Rect(15, 90, 130, 110), Word: "Enjoy your learning", Confidence: 77},
	}

	// act
	blocks := boxesToBlocks(boxes)
	out := parser.Format(blocks)

	// assert
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Text != "Welcome to class" || blocks[0].From.X != 10 || blocks[0].To.Y != 39 {
		t.Errorf("unexpected first block %+v", blocks[0])
	}
	coords := parser.ParseCoordinatesList(out)
	if len(coords) != 2 || coords[1].From.Y != 90 || coords[1].To.X != 129 {
		t.Errorf("unexpected coordinates %+v", coords)
	}
}

func TestBoxesToBlocks_AbuttingLines(t *testing.T) {
	// arrange
	boxes := []gosseract.BoundingBox{
		{Box: image.Rect(0, 0, 100, 20), Word: "First line", Confidence: 90},
		{Box: image.Rect(0, 20, 100, 40), Word: "Second line", Confidence: 90},
	}
	store := annotation.NewStore()

	// act
	resp := parser.Parse(parser.Format(boxesToBlocks(boxes)))
	accepted, rejected := store.Seed("page.png", resp.Candidates())

	// assert
	if accepted != 2 || len(rejected) != 0 {
		t.Fatalf("expected both lines accepted, got %d accepted, rejected %+v", accepted, rejected)
	}
	second, _ := store.At(1)
	if second.From != (annotation.Coordinates{X: 0, Y: 20}) || second.To != (annotation.Coordinates{X: 99, Y: 39}) {
		t.Errorf("unexpected second line box %v-%v", second.From, second.To)
	}
}
