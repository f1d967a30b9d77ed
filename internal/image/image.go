package image

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ProcessedSuffix marks temporary files written by EnhanceQuality.
const ProcessedSuffix = "_processed"

// Enhanced is a preprocessed copy of an image. Scale is the factor the copy
// was enlarged by; boxes found on it must be divided by Scale to map back to
// the original.
type Enhanced struct {
	Source string
	Path   string
	Scale  int
}

type ImageProcessor struct {
	minSide  int
	contrast float64
	sharpen  float64
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{
		minSide:  300,
		contrast: 10,
		sharpen:  1.1,
	}
}

func (ip *ImageProcessor) EnhanceQuality(path string) (Enhanced, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return Enhanced{}, fmt.Errorf("opening image %s: %w", path, err)
	}

	scale := 1
	bounds := img.Bounds()
	if bounds.Dx() < ip.minSide || bounds.Dy() < ip.minSide {
		scale = 2
		img = imaging.Resize(img, bounds.Dx()*scale, bounds.Dy()*scale, imaging.Lanczos)
	}

	gray := imaging.Grayscale(img)
	contrast := imaging.AdjustContrast(gray, ip.contrast)
	sharp := imaging.Sharpen(contrast, ip.sharpen)

	tempPath := ProcessedPath(path)
	if err := imaging.Save(sharp, tempPath); err != nil {
		return Enhanced{}, fmt.Errorf("saving processed image: %w", err)
	}

	return Enhanced{Source: path, Path: tempPath, Scale: scale}, nil
}

// ProcessedPath is where EnhanceQuality writes the copy of path. Formats
// imaging cannot encode (webp) are written as PNG.
func ProcessedPath(path string) string {
	extension := filepath.Ext(path)
	base := path[:len(path)-len(extension)]
	if strings.EqualFold(extension, ".webp") {
		extension = ".png"
	}
	return base + ProcessedSuffix + extension
}

func IsProcessed(filename string) bool {
	return strings.Contains(filename, ProcessedSuffix)
}

func IsSupported(filename string) bool {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "jpg", "jpeg", "png", "tif", "tiff", "bmp", "gif", "webp":
		return true
	default:
		return false
	}
}

func (ip *ImageProcessor) Cleanup(filePath string) error {
	if !IsProcessed(filePath) {
		return fmt.Errorf("refusing to remove %s: not a processed file", filePath)
	}
	return os.Remove(filePath)
}
