package writer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var ErrClosed = errors.New("writer is shutting down")

type WriteMode int

const (
	ModeReplace WriteMode = iota
	ModeAppend
)

type MapperFunc[T any] func(T) []string

type HeaderFunc func() []string

type writeRequest[T any] struct {
	rows       []T
	outputPath string
	mode       WriteMode
	response   chan error
}

// CSVWriter serialises writes from many goroutines through one worker so
// rows for the same file never interleave. Each file gets its header once.
// The queue is unbuffered so a request is either handled or refused with
// ErrClosed, never stranded by Close.
type CSVWriter[T any] struct {
	queue    chan writeRequest[T]
	shutdown chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
	headers  map[string]bool
	mapper   MapperFunc[T]
	header   HeaderFunc
}

func NewCSVWriter[T any](mapper MapperFunc[T], header HeaderFunc) *CSVWriter[T] {
	cw := &CSVWriter[T]{
		queue:    make(chan writeRequest[T]),
		shutdown: make(chan struct{}),
		headers:  make(map[string]bool),
		mapper:   mapper,
		header:   header,
	}
	cw.wg.Add(1)
	go cw.run()
	return cw
}

func (cw *CSVWriter[T]) run() {
	defer cw.wg.Done()
	for {
		select {
		case req := <-cw.queue:
			req.response <- cw.write(req.rows, req.outputPath, req.mode)
		case <-cw.shutdown:
			return
		}
	}
}

func (cw *CSVWriter[T]) Close() {
	cw.once.Do(func() {
		close(cw.shutdown)
		cw.wg.Wait()
	})
}

// Append adds rows to outputPath, creating it with a header on first use.
func (cw *CSVWriter[T]) Append(ctx context.Context, rows []T, outputPath string) error {
	return cw.Write(ctx, rows, outputPath, ModeAppend)
}

// Replace truncates outputPath and writes the header and rows.
func (cw *CSVWriter[T]) Replace(ctx context.Context, rows []T, outputPath string) error {
	return cw.Write(ctx, rows, outputPath, ModeReplace)
}

func (cw *CSVWriter[T]) Write(ctx context.Context, rows []T, outputPath string, mode WriteMode) error {
	req := writeRequest[T]{
		rows:       rows,
		outputPath: outputPath,
		mode:       mode,
		response:   make(chan error, 1),
	}

	select {
	case cw.queue <- req:
	case <-cw.shutdown:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-req.response
}

// write runs on the worker goroutine only, so headers needs no lock.
func (cw *CSVWriter[T]) write(rows []T, outputPath string, mode WriteMode) error {
	if mode == ModeReplace {
		cw.headers[outputPath] = false
	}
	hasHeader := cw.headers[outputPath]
	if len(rows) == 0 && mode == ModeAppend {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if hasHeader {
		flags = os.O_APPEND | os.O_WRONLY
	}
	file, err := os.OpenFile(outputPath, flags, 0o644)
	if err != nil {
		return fmt.Errorf("opening CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if !hasHeader {
		if err := w.Write(cw.header()); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
		cw.headers[outputPath] = true
	}
	for _, row := range rows {
		if err := w.Write(cw.mapper(row)); err != nil {
			return fmt.Errorf("writing CSV record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing CSV file: %w", err)
	}
	return file.Close()
}
