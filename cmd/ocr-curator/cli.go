package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ocr-curator/internal/config"
	"ocr-curator/internal/data"
	"ocr-curator/internal/image"
	"ocr-curator/internal/logger"
	"ocr-curator/internal/ocr"
	"ocr-curator/internal/pipeline"
	"ocr-curator/internal/session"
	"ocr-curator/internal/writer"
)

const usage = `usage: ocr-curator <command> [flags]

commands:
  extract   extract text blocks from every image in a directory into a CSV file
  curate    extract text blocks from one image and correct them interactively
`

type CLI struct {
	in  io.Reader
	out io.Writer

	cfg        config.Config
	envFile    string
	promptFile string
	// newEngine is replaced in tests.
	newEngine func(ocr.EngineConfig) (ocr.OCREngine, error)
}

func NewCLI(in io.Reader, out io.Writer) *CLI {
	return &CLI{
		in:        in,
		out:       out,
		newEngine: ocr.NewEngine,
	}
}

func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.out, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "extract":
		return c.extract(ctx, args[1:])
	case "curate":
		return c.curate(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return nil
	default:
		fmt.Fprint(c.out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// flags registers the options shared by all commands, defaulted from the
// environment.
func (c *CLI) flags(name string, args []string, extra func(fs *flag.FlagSet)) error {
	envFile := envFileArg(args)
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}
	c.cfg = cfg

	fs := flag.NewFlagSet("ocr-curator "+name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	fs.StringVar(&c.envFile, "env", envFile, "Path to a .env file with configuration")
	fs.StringVar(&c.cfg.Engine, "engine", c.cfg.Engine, "OCR engine type (ollama, gosseract)")
	fs.StringVar(&c.cfg.OllamaHost, "ollama-host", c.cfg.OllamaHost, "Ollama base URL")
	fs.StringVar(&c.cfg.OllamaModel, "model", c.cfg.OllamaModel, "Ollama vision model")
	fs.StringVar(&c.cfg.Language, "lang", c.cfg.Language, "Tesseract language(s), e.g. eng+fra")
	fs.StringVar(&c.promptFile, "prompt-file", "", "File with a prompt replacing the built-in one")
	fs.BoolVar(&c.cfg.Debug, "debug", c.cfg.Debug, "Enable debug logging")
	if extra != nil {
		extra(fs)
	}

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}
	logger.Configure(os.Stderr, c.cfg.Debug)
	return nil
}

func (c *CLI) engineConfig() ocr.EngineConfig {
	return ocr.EngineConfig{
		Type:        c.cfg.Engine,
		OllamaHost:  c.cfg.OllamaHost,
		OllamaModel: c.cfg.OllamaModel,
		Language:    c.cfg.Language,
	}
}

func (c *CLI) prompt() (string, error) {
	if c.promptFile == "" {
		return ocr.DefaultPrompt, nil
	}
	b, err := os.ReadFile(c.promptFile)
	if err != nil {
		return "", fmt.Errorf("reading prompt file: %w", err)
	}
	return string(b), nil
}

func (c *CLI) extract(ctx context.Context, args []string) error {
	var outputFile string
	err := c.flags("extract", args, func(fs *flag.FlagSet) {
		fs.StringVar(&c.cfg.ImagesDir, "images", c.cfg.ImagesDir, "Directory containing images to process")
		fs.StringVar(&c.cfg.OutputDir, "output", c.cfg.OutputDir, "Output directory for results")
		fs.IntVar(&c.cfg.Workers, "workers", c.cfg.Workers, "Number of concurrent engine calls")
	})
	if err != nil {
		return err
	}
	outputFile = filepath.Join(c.cfg.OutputDir, c.cfg.Engine+"_text_blocks.csv")

	prompt, err := c.prompt()
	if err != nil {
		return err
	}
	engine, err := c.newEngine(c.engineConfig())
	if err != nil {
		return err
	}
	defer engine.Close()

	results, failures := pipeline.Run(ctx, pipeline.Options{
		Directory:    c.cfg.ImagesDir,
		OutputFile:   outputFile,
		Prompt:       prompt,
		Workers:      c.cfg.Workers,
		Engine:       engine,
		EngineConfig: c.engineConfig(),
	})

	for _, path := range sortedKeys(failures) {
		fmt.Fprintf(c.out, "Error processing %s: %v\n", path, failures[path])
	}
	for _, path := range sortedKeys(results) {
		summary := results[path].Summary()
		line := fmt.Sprintf("Processed %s: %d blocks", path, summary.Accepted)
		if len(summary.Rejected) > 0 {
			line += fmt.Sprintf(", %d skipped", len(summary.Rejected))
		}
		if summary.CountMismatch() {
			line += fmt.Sprintf(" (model declared %d)", summary.DeclaredCount)
		}
		fmt.Fprintln(c.out, line)
	}
	fmt.Fprintf(c.out, "\nProcessing complete! Results saved to: %s\n", outputFile)
	fmt.Fprintf(c.out, "Processed %d images\n", len(results)+len(failures))
	return nil
}

func (c *CLI) curate(ctx context.Context, args []string) error {
	var imagePath, outputFile string
	var noEnhance bool
	err := c.flags("curate", args, func(fs *flag.FlagSet) {
		fs.StringVar(&imagePath, "image", "", "Image to extract and curate")
		fs.StringVar(&outputFile, "out", "", "CSV file for the curated blocks (default <output>/<image>_curated.csv)")
		fs.BoolVar(&noEnhance, "no-enhance", false, "Send the original image to the engine")
	})
	if err != nil {
		return err
	}
	if imagePath == "" {
		return errors.New("curate: -image is required")
	}
	if outputFile == "" {
		base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
		outputFile = filepath.Join(c.cfg.OutputDir, base+"_curated.csv")
	}

	prompt, err := c.prompt()
	if err != nil {
		return err
	}
	engine, err := c.newEngine(c.engineConfig())
	if err != nil {
		return err
	}
	defer engine.Close()

	enginePath, scale := imagePath, 1
	if !noEnhance {
		ip := image.NewImageProcessor()
		enhanced, err := ip.EnhanceQuality(imagePath)
		if err != nil {
			return err
		}
		defer ip.Cleanup(enhanced.Path)
		enginePath, scale = enhanced.Path, enhanced.Scale
	}

	s, err := session.Extract(ctx, engine, prompt, enginePath, filepath.Base(imagePath), scale)
	if err != nil {
		return err
	}
	summary := s.Summary()
	fmt.Fprintf(c.out, "Loaded %d of %d blocks from %s\n", summary.Accepted, summary.Parsed, imagePath)
	for _, r := range summary.Rejected {
		fmt.Fprintf(c.out, "  skipped block %d %q: %v\n", r.Position+1, r.Candidate.Text, r.Err)
	}
	if summary.CountMismatch() {
		fmt.Fprintf(c.out, "  note: model declared %d blocks\n", summary.DeclaredCount)
	}

	if err := c.repl(ctx, s); err != nil {
		return err
	}

	w := writer.NewCSVWriter(data.MapCSVRecord, data.GetCSVHeader)
	defer w.Close()
	if err := w.Replace(ctx, data.RecordsFromAnnotations(s.Annotations()), outputFile); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved %d blocks (%d corrections) to %s\n", s.Len(), len(s.History()), outputFile)
	return nil
}

// repl reads curation commands until quit or end of input. Command errors
// are reported and the loop continues.
func (c *CLI) repl(ctx context.Context, s *session.Session) error {
	if err := s.Execute("list", c.out); err != nil {
		return err
	}
	fmt.Fprintln(c.out, `Type "help" for commands, "quit" to save and exit.`)

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := s.Execute(scanner.Text(), c.out)
		switch {
		case errors.Is(err, session.ErrQuit):
			return nil
		case err != nil:
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
}

// envFileArg finds -env before flag parsing so the file can supply flag
// defaults.
func envFileArg(args []string) string {
	for i, a := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if name != "env" || !strings.HasPrefix(a, "-") {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
