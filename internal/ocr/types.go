package ocr

import "context"

// OCRResult carries the raw model response for one image through the
// pipeline. Filename is the file the engine read, Source the original image.
type OCRResult struct {
	Text     string
	Source   string
	Filename string
	Scale    int
	Error    error
}

// OCREngine turns an image and a prompt into the model's text response.
// Engines that cannot take a prompt ignore it.
type OCREngine interface {
	ProcessImage(ctx context.Context, prompt, imagePath string) (string, error)
	Close() error
}
