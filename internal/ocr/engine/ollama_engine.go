package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"ocr-curator/internal/logger"
)

type OllamaEngine struct {
	baseURL string
	model   string
	client  *http.Client
}

type OllamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Images  []string       `json:"images"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type OllamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2-vision"
)

func NewOllamaEngine(baseURL, model string) *OllamaEngine {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}

	return &OllamaEngine{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

func (o *OllamaEngine) ProcessImage(ctx context.Context, prompt, imagePath string) (string, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	request := OllamaRequest{
		Model:  o.model,
		Prompt: prompt,
		Images: []string{base64.StdEncoding.EncodeToString(imageData)},
		Stream: false,
		// Deterministic output keeps the numbered list stable between runs.
		Options: map[string]any{"temperature": 0},
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var ollamaResp OllamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	logger.DebugLog("[ollama]: %s: %d bytes of response", imagePath, len(ollamaResp.Response))
	return stripCodeFence(ollamaResp.Response), nil
}

func (o *OllamaEngine) Close() error {
	return nil
}

// stripCodeFence removes a markdown code fence the model sometimes wraps
// around its answer. Text outside the fence is dropped.
func stripCodeFence(input string) string {
	start := strings.Index(input, "```")
	if start == -1 {
		return strings.TrimSpace(input)
	}
	rest := input[start+3:]
	// skip an info string such as ```text
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		rest = rest[nl+1:]
	} else {
		return strings.TrimSpace(input)
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(rest[:end])
}
