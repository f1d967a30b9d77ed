package pipeline

import (
	"context"
	"ocr-curator/internal/image"
	"ocr-curator/internal/logger"
	"ocr-curator/internal/ocr"
)

func performOcr(ctx context.Context, preprocessChan <-chan image.Enhanced, ocrChan chan<- ocr.OCRResult, errChan chan<- error) {
	proc, err := clientsFrom(ctx, "performOcr")
	if err != nil {
		errChan <- err
		return
	}
	ocrEngine := proc.engine

	for enhanced := range preprocessChan {
		if ctx.Err() != nil {
			logger.DebugLog("[performOcr]: context cancelled, dropping %s", enhanced.Path)
			proc.image.Cleanup(enhanced.Path)
			continue
		}

		logger.DebugLog("[performOcr]: processing image %s", enhanced.Path)
		text, err := ocrEngine.ProcessImage(ctx, proc.prompt, enhanced.Path)

		logger.DebugLog("[performOcr]: sending OCR result for %s (%d bytes, err=%v)", enhanced.Source, len(text), err)
		select {
		case ocrChan <- ocr.OCRResult{Text: text, Source: enhanced.Source, Filename: enhanced.Path, Scale: enhanced.Scale, Error: err}:
		case <-ctx.Done():
			logger.DebugLog("[performOcr]: context done while sending OCR result for %s", enhanced.Path)
			proc.image.Cleanup(enhanced.Path)
		}
	}
}
