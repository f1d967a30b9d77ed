package pipeline

import (
	"context"
	"fmt"
	"ocr-curator/internal/data"
	"ocr-curator/internal/logger"
	"ocr-curator/internal/session"
)

func writeOutput(ctx context.Context,
	extractedChan <-chan result[*session.Session],
	results *writeResult[*session.Session],
	errChan chan<- error) {
	proc, err := clientsFrom(ctx, "writeOutput")
	if err != nil {
		errChan <- err
		return
	}
	writer := proc.writer
	defer func() {
		logger.DebugLog("[writeOutput]: closing CSV writer")
		writer.Close()
	}()

	output := ctx.Value(outputFileKey).(string)

	for res := range extractedChan {
		if ctx.Err() != nil {
			logger.DebugLog("[writeOutput]: context cancelled")
			return
		}

		if res.err != nil {
			logger.DebugLog("[writeOutput]: failure for %s: %v", res.path, res.err)
			results.addFailure(res.path, res.err)
			continue
		}

		rows := data.RecordsFromAnnotations(res.data.Annotations())
		logger.DebugLog("[writeOutput]: writing %d blocks for %s", len(rows), res.path)
		if err := writer.Append(ctx, rows, output); err != nil {
			logger.DebugLog("[writeOutput]: error writing to file %s: %v", output, err)
			results.addFailure(res.path, fmt.Errorf("writing to file %s: %w", output, err))
			continue
		}

		results.addWrite(res.path, res.data)
	}
}

func (r *writeResult[T]) addWrite(path string, data T) {
	r.mu.Lock()
	r.writes[path] = data
	r.mu.Unlock()
}

func (r *writeResult[T]) addFailure(path string, err error) {
	r.mu.Lock()
	r.failures[path] = err
	r.mu.Unlock()
}
