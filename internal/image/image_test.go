package image

import (
	stdimage "image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func writeTestImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.White)
	for x := 10; x < w-10; x++ {
		img.Set(x, h/2, color.Black)
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("saving test image: %v", err)
	}
}

func TestEnhanceQuality(t *testing.T) {
	testCases := []struct {
		name          string
		width, height int
		expectedScale int
	}{
		{name: "small image is enlarged", width: 120, height: 80, expectedScale: 2},
		{name: "large image keeps size", width: 400, height: 320, expectedScale: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			src := filepath.Join(t.TempDir(), "page.png")
			writeTestImage(t, src, tc.width, tc.height)
			ip := NewImageProcessor()

			// act
			enhanced, err := ip.EnhanceQuality(src)

			// assert
			if err != nil {
				t.Fatalf("EnhanceQuality: %v", err)
			}
			if enhanced.Scale != tc.expectedScale {
				t.Errorf("expected scale %d, got %d", tc.expectedScale, enhanced.Scale)
			}
			out, err := imaging.Open(enhanced.Path)
			if err != nil {
				t.Fatalf("opening processed image: %v", err)
			}
			expected := stdimage.Rect(0, 0, tc.width*tc.expectedScale, tc.height*tc.expectedScale)
			if out.Bounds() != expected {
				t.Errorf("expected bounds %v, got %v", expected, out.Bounds())
			}
			if err := ip.Cleanup(enhanced.Path); err != nil {
				t.Errorf("Cleanup: %v", err)
			}
			if _, err := os.Stat(enhanced.Path); !os.IsNotExist(err) {
				t.Errorf("expected processed file to be removed")
			}
		})
	}
}

func TestCleanup_RefusesOriginals(t *testing.T) {
	src := filepath.Join(t.TempDir(), "page.png")
	writeTestImage(t, src, 50, 50)

	if err := NewImageProcessor().Cleanup(src); err == nil {
		t.Errorf("expected refusal to delete original image")
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("original image was removed: %v", err)
	}
}

func TestProcessedPath(t *testing.T) {
	testCases := map[string]string{
		"images/a.png":      "images/a_processed.png",
		"images/b.JPG":      "images/b_processed.JPG",
		"images/c.webp":     "images/c_processed.png",
		"images/d.tar.tiff": "images/d.tar_processed.tiff",
	}
	for in, expected := range testCases {
		if got := ProcessedPath(in); got != expected {
			t.Errorf("ProcessedPath(%q) = %q, expected %q", in, got, expected)
		}
	}
}

func TestIsSupported(t *testing.T) {
	for _, name := range []string{"a.png", "b.JPEG", "c.webp", "d.tif"} {
		if !IsSupported(name) {
			t.Errorf("expected %s to be supported", name)
		}
	}
	for _, name := range []string{"notes.txt", "README", "archive.zip"} {
		if IsSupported(name) {
			t.Errorf("expected %s to be unsupported", name)
		}
	}
}
