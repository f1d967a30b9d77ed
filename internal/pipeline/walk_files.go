package pipeline

import (
	"context"
	"fmt"
	"ocr-curator/internal/image"
	"ocr-curator/internal/logger"
	"os"
	"path/filepath"
)

func walkFiles(ctx context.Context, directory string, results chan<- string, errChan chan<- error) {
	files, err := os.ReadDir(directory)
	if err != nil {
		logger.DebugLog("[walkFiles]: failed to read directory %s: %v", directory, err)
		errChan <- fmt.Errorf("[walkFiles]: reading directory %s: %w", directory, err)
		return
	}

	for _, file := range files {
		if ctx.Err() != nil {
			logger.DebugLog("[walkFiles]: context cancelled")
			return
		}

		fileName := file.Name()
		if file.IsDir() || image.IsProcessed(fileName) || !image.IsSupported(fileName) {
			continue
		}
		fullPath := filepath.Join(directory, fileName)
		logger.DebugLog("[walkFiles]: sending file %s", fullPath)
		select {
		case results <- fullPath:
		case <-ctx.Done():
			logger.DebugLog("[walkFiles]: context done while sending file %s", fullPath)
			return
		}
	}
}
