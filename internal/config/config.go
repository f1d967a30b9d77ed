package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"ocr-curator/internal/logger"
)

type Config struct {
	ImagesDir   string
	OutputDir   string
	Engine      string
	OllamaHost  string
	OllamaModel string
	Workers     int
	Language    string
	Debug       bool
}

const (
	defaultOllamaHost  = "http://localhost:11434"
	defaultOllamaModel = "llama3.2-vision"
)

// Load reads .env files (if present) and the process environment. Values
// already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return Config{}, fmt.Errorf("loading env files %s: %w", strings.Join(files, ", "), err)
	}

	workers, err := envInt("OCR_WORKERS", 2)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ImagesDir:   envOrDefault("OCR_IMAGES_DIR", "images"),
		OutputDir:   envOrDefault("OCR_OUTPUT_DIR", "output"),
		Engine:      envOrDefault("OCR_ENGINE", "gosseract"),
		OllamaHost:  envOrDefault("OLLAMA_HOST", defaultOllamaHost),
		OllamaModel: envOrDefault("OLLAMA_MODEL", defaultOllamaModel),
		Workers:     workers,
		Language:    envOrDefault("OCR_LANGUAGE", "eng"),
		Debug:       logger.ParseBool(os.Getenv("DEBUG")),
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
