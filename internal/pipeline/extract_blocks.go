package pipeline

import (
	"context"
	"fmt"
	"ocr-curator/internal/logger"
	"ocr-curator/internal/ocr"
	"ocr-curator/internal/session"
	"path/filepath"
)

// extractBlocks loads each engine response into a session of its own.
func extractBlocks(ctx context.Context, ocrChan <-chan ocr.OCRResult, results chan<- result[*session.Session]) {
	for ocrOutput := range ocrChan {
		res := result[*session.Session]{path: ocrOutput.Source}
		if ocrOutput.Error != nil {
			logger.DebugLog("[extractBlocks]: OCR error for %s: %v", ocrOutput.Source, ocrOutput.Error)
			res.err = fmt.Errorf("extracting text from %s: %w", ocrOutput.Source, ocrOutput.Error)
		} else {
			s := session.New(filepath.Base(ocrOutput.Source))
			summary := s.Load(ocrOutput.Text, ocrOutput.Scale)
			logger.DebugLog("[extractBlocks]: %s: parsed=%d accepted=%d rejected=%d", ocrOutput.Source, summary.Parsed, summary.Accepted, len(summary.Rejected))
			res.data = s
		}

		select {
		case results <- res:
		case <-ctx.Done():
			logger.DebugLog("[extractBlocks]: context done while sending %s", ocrOutput.Source)
			return
		}
	}
}
