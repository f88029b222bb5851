package compare

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func gradient(w, h int, invert bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*7 + y*3) % 256)
			if invert {
				v = 255 - v
			}
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestVisualScoreIdentical(t *testing.T) {
	img := gradient(64, 48, false)
	score, err := VisualScore(img, img)
	if err != nil {
		t.Fatalf("VisualScore returned error: %v", err)
	}
	if math.Abs(score-1) > 1e-9 {
		t.Errorf("Expected score 1, got %f", score)
	}
}

func TestVisualScoreDifferent(t *testing.T) {
	a := gradient(64, 48, false)
	b := gradient(64, 48, true)

	score, err := VisualScore(a, b)
	if err != nil {
		t.Fatalf("VisualScore returned error: %v", err)
	}
	if score >= 0.5 {
		t.Errorf("Expected low similarity for inverted image, got %f", score)
	}
}

func TestVisualScoreResizes(t *testing.T) {
	a := gradient(64, 48, false)
	b := image.NewUniform(color.Gray{Y: 90})
	small := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			small.Set(x, y, b.C)
		}
	}

	if _, err := VisualScore(a, small); err != nil {
		t.Fatalf("Expected resized comparison to succeed, got %v", err)
	}
}

func TestVisualScoreTooSmall(t *testing.T) {
	img := gradient(5, 5, false)
	if _, err := VisualScore(img, img); err == nil {
		t.Fatalf("Expected error for image smaller than the window")
	}
}

func TestVisualScoreFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")

	var buf bytes.Buffer
	if err := png.Encode(&buf, gradient(20, 20, false)); err != nil {
		t.Fatalf("Failed to encode image: %v", err)
	}
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("Failed to write image: %v", err)
	}

	score, err := VisualScoreFiles(p, p)
	if err != nil {
		t.Fatalf("VisualScoreFiles returned error: %v", err)
	}
	if math.Abs(score-1) > 1e-9 {
		t.Errorf("Expected score 1, got %f", score)
	}

	if _, err := VisualScoreFiles(p, filepath.Join(dir, "missing.png")); err == nil {
		t.Errorf("Expected error for missing image")
	}
}

func TestFuzzyScore(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	a := make([]byte, 64<<10)
	b := make([]byte, 64<<10)
	r.Read(a)
	r.Read(b)

	same, err := FuzzyScore(a, a)
	if err != nil {
		t.Fatalf("FuzzyScore returned error: %v", err)
	}
	other, err := FuzzyScore(a, b)
	if err != nil {
		t.Fatalf("FuzzyScore returned error: %v", err)
	}
	if same <= other {
		t.Errorf("Expected identical input to score higher (%d) than unrelated input (%d)", same, other)
	}
}
