package ocr

import (
	"fmt"

	"ocr-curator/internal/ocr/engine"
)

type EngineConfig struct {
	Type        string
	OllamaHost  string
	OllamaModel string
	Language    string
}

func NewEngine(cfg EngineConfig) (OCREngine, error) {
	switch cfg.Type {
	case "ollama":
		return engine.NewOllamaEngine(cfg.OllamaHost, cfg.OllamaModel), nil
	case "gosseract", "":
		return engine.NewGosseractEngine(cfg.Language)
	default:
		return nil, fmt.Errorf("unknown engine type: %s", cfg.Type)
	}
}
