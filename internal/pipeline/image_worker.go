package pipeline

import (
	"context"
	"ocr-curator/internal/image"
	"ocr-curator/internal/logger"
	"ocr-curator/internal/ocr"
)

func enhanceImage(ctx context.Context, files <-chan string, results chan<- image.Enhanced, errChan chan<- error) {
	proc, err := clientsFrom(ctx, "enhanceImage")
	if err != nil {
		errChan <- err
		return
	}
	imageProcessor := proc.image

	for file := range files {
		if ctx.Err() != nil {
			logger.DebugLog("[enhanceImage]: context cancelled")
			return
		}

		logger.DebugLog("[enhanceImage]: enhancing file %s", file)
		enhanced, err := imageProcessor.EnhanceQuality(file)
		if err != nil {
			logger.DebugLog("[enhanceImage]: error processing %s: %v", file, err)
			errChan <- &pathError{path: file, err: err}
			continue
		}

		logger.DebugLog("[enhanceImage]: sending processed file %s (scale=%d)", enhanced.Path, enhanced.Scale)
		select {
		case results <- enhanced:
		case <-ctx.Done():
			logger.DebugLog("[enhanceImage]: context done while sending %s", enhanced.Path)
			imageProcessor.Cleanup(enhanced.Path)
			return
		}
	}
}

// cleanupImage removes the processed copy once the engine is done with it,
// whether or not OCR succeeded.
func cleanupImage(ctx context.Context, ocrChan <-chan ocr.OCRResult, errChan chan<- error) {
	proc, err := clientsFrom(ctx, "cleanupImage")
	if err != nil {
		errChan <- err
		return
	}
	imageProcessor := proc.image

	for ocrOutput := range ocrChan {
		logger.DebugLog("[cleanupImage]: cleaning up %s", ocrOutput.Filename)
		if err := imageProcessor.Cleanup(ocrOutput.Filename); err != nil {
			logger.DebugLog("[cleanupImage]: error cleaning up %s: %v", ocrOutput.Filename, err)
			errChan <- &pathError{path: ocrOutput.Source, err: err}
		}
	}
}
