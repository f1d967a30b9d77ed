package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"ocr-curator/internal/annotation"
	"ocr-curator/internal/logger"
	"ocr-curator/internal/parser"
)

// minLineConfidence drops text lines Tesseract is mostly guessing at.
const minLineConfidence = 30.0

// GosseractEngine runs Tesseract locally. It has no use for a prompt; it
// reports text lines with their boxes in the same numbered-list form a
// vision model is asked for, so both engines feed the same parser.
type GosseractEngine struct {
	language string
}

func NewGosseractEngine(language string) (*GosseractEngine, error) {
	if language == "" {
		language = "eng"
	}
	return &GosseractEngine{language: language}, nil
}

func (g *GosseractEngine) ProcessImage(ctx context.Context, _ string, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(g.language); err != nil {
		return "", fmt.Errorf("setting language %s: %w", g.language, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("setting page segmentation mode: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("loading image %s: %w", imagePath, err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return "", fmt.Errorf("failed to extract text lines from image %s: %w", imagePath, err)
	}

	blocks := boxesToBlocks(boxes)
	logger.DebugLog("[gosseract]: %s: %d of %d text lines kept", imagePath, len(blocks), len(boxes))
	return parser.Format(blocks), nil
}

func (g *GosseractEngine) Close() error {
	return nil
}

func boxesToBlocks(boxes []gosseract.BoundingBox) []parser.Block {
	blocks := make([]parser.Block, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" || b.Confidence < minLineConfidence {
			continue
		}
		blocks = append(blocks, parser.Block{
			Text: text,
			CoordinatePair: parser.CoordinatePair{
				From: annotation.Coordinates{X: b.Box.Min.X, Y: b.Box.Min.Y},
				// Rectangle.Max is exclusive; block corners are inclusive.
				To: annotation.Coordinates{X: b.Box.Max.X - 1, Y: b.Box.Max.Y - 1},
			},
		})
	}
	return blocks
}
