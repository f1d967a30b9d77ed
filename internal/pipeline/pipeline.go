package pipeline

import (
	"context"
	"errors"
	"fmt"
	"ocr-curator/internal/data"
	"ocr-curator/internal/image"
	"ocr-curator/internal/logger"
	"ocr-curator/internal/ocr"
	"ocr-curator/internal/session"
	"ocr-curator/internal/writer"
	"sync"
)

type result[T any] struct {
	path string
	data T
	err  error
}

type writeResult[T any] struct {
	mu       sync.Mutex
	writes   map[string]T
	failures map[string]error
}

// pathError ties a stage failure to the image it happened on.
type pathError struct {
	path string
	err  error
}

func (e *pathError) Error() string { return fmt.Sprintf("%s: %v", e.path, e.err) }

func (e *pathError) Unwrap() error { return e.err }

type Clients struct {
	engine ocr.OCREngine
	image  *image.ImageProcessor
	writer *writer.CSVWriter[data.Record]
	prompt string
}

type contextKey string

const clientsKey contextKey = "all_my_clients"

const outputFileKey contextKey = "output_file"

type Options struct {
	Directory  string
	OutputFile string
	Prompt     string
	Workers    int
	// Engine is used as is when set; otherwise one is built from EngineConfig
	// and closed when Run returns.
	Engine       ocr.OCREngine
	EngineConfig ocr.EngineConfig
}

// Run extracts text blocks from every image in opts.Directory, loads each
// image into its own session and appends the blocks to opts.OutputFile.
// Results and failures are keyed by image path.
func Run(ctx context.Context, opts Options) (writes map[string]*session.Session, failures map[string]error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	logger.DebugLog("Pipeline started with engine=%s, directory=%s, output=%s", opts.EngineConfig.Type, opts.Directory, opts.OutputFile)

	ocrEngine := opts.Engine
	if ocrEngine == nil {
		var err error
		ocrEngine, err = ocr.NewEngine(opts.EngineConfig)
		if err != nil {
			logger.DebugLog("Failed to create OCR engine: %v", err)
			return nil, map[string]error{"engine": err}
		}
		defer func() {
			logger.DebugLog("Closing OCR engine")
			ocrEngine.Close()
		}()
	}

	prompt := opts.Prompt
	if prompt == "" {
		prompt = ocr.DefaultPrompt
	}

	clients := &Clients{
		engine: ocrEngine,
		image:  image.NewImageProcessor(),
		writer: writer.NewCSVWriter(data.MapCSVRecord, data.GetCSVHeader),
		prompt: prompt,
	}

	// Embed clients in context
	ctx = context.WithValue(ctx, clientsKey, clients)
	ctx = context.WithValue(ctx, outputFileKey, opts.OutputFile)

	errChan := make(chan error, 10)
	files := make(chan string)
	enhancedChan := make(chan image.Enhanced, 2) // bounded buffer to throttle image preprocessing
	ocrChan := make(chan ocr.OCRResult)
	extractChan := make(chan result[*session.Session], 10)
	results := &writeResult[*session.Session]{
		writes:   make(map[string]*session.Session),
		failures: make(map[string]error),
	}

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for err := range errChan {
			logger.DebugLog("Error received in errChan: %v", err)
			var pe *pathError
			if errors.As(err, &pe) {
				results.addFailure(pe.path, pe.err)
				continue
			}
			results.addFailure("pipeline_error", err)
		}
	}()

	var stages sync.WaitGroup
	stage := func(name string, fn func()) {
		stages.Add(1)
		go func() {
			defer stages.Done()
			logger.DebugLog("Starting [%s] goroutine", name)
			fn()
			logger.DebugLog("[%s] goroutine finished", name)
		}()
	}

	stage("walkFiles", func() {
		defer close(files)
		walkFiles(ctx, opts.Directory, files, errChan)
	})

	stage("enhanceImage", func() {
		defer close(enhancedChan)
		enhanceImage(ctx, files, enhancedChan, errChan)
	})

	processCount := opts.Workers
	if processCount <= 0 {
		processCount = 2
	}
	var wg sync.WaitGroup
	for i := 0; i < processCount; i++ {
		wg.Add(1)
		stage(fmt.Sprintf("performOcr #%d", i+1), func() {
			defer wg.Done()
			performOcr(ctx, enhancedChan, ocrChan, errChan)
		})
	}
	go func() {
		wg.Wait()
		logger.DebugLog("All [performOcr] workers finished, closing ocrChan")
		close(ocrChan)
	}()

	// fan-out - forward ocr results to extraction + cleanup; cleanup keeps
	// draining after cancellation
	extractInput := make(chan ocr.OCRResult)
	cleanupInput := make(chan ocr.OCRResult, 10)

	stage("forwardChan", func() {
		forwardChan(ctx, ocrChan, extractInput, cleanupInput)
	})

	stage("extractBlocks", func() {
		defer close(extractChan)
		extractBlocks(ctx, extractInput, extractChan)
	})

	stage("cleanupImage", func() {
		cleanupImage(ctx, cleanupInput, errChan)
	})

	stage("writeOutput", func() {
		writeOutput(ctx, extractChan, results, errChan)
	})

	stages.Wait()
	logger.DebugLog("All stages finished, closing errChan")
	close(errChan)
	<-collected

	logger.DebugLog("Pipeline finished")
	return results.writes, results.failures
}

// forwardChan copies every value from in to out and keep. Once ctx is done
// out gets nothing more, but keep still receives every remaining value so
// temporaries can be cleaned up.
func forwardChan[T any](ctx context.Context, in <-chan T, out, keep chan<- T) {
	defer close(out)
	defer close(keep)

	for res := range in {
		keep <- res
		if ctx.Err() != nil {
			logger.DebugLog("forwardChan: context cancelled, forwarding to cleanup only")
			continue
		}

		select {
		case out <- res:
		case <-ctx.Done():
			logger.DebugLog("forwardChan: context done while forwarding")
		}
	}
}

func clientsFrom(ctx context.Context, stage string) (*Clients, error) {
	proc, ok := ctx.Value(clientsKey).(*Clients)
	if !ok {
		logger.DebugLog("[%s]: missing clients in context", stage)
		return nil, fmt.Errorf("[%s]: missing clients in context", stage)
	}
	return proc, nil
}
