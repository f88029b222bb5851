package compare

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder.
	_ "image/png"  // Register PNG decoder.
	"os"

	"github.com/glaslos/ssdeep"
	"golang.org/x/image/draw"
)

const (
	ssimWindow = 7
	ssimK1     = 0.01
	ssimK2     = 0.03
	ssimRange  = 255.0
)

// VisualScore returns the mean structural similarity of two images in grayscale.
// b is rescaled to a's size when they differ.
func VisualScore(a, b image.Image) (float64, error) {
	ga := toGray(a, a.Bounds())
	gb := toGray(b, a.Bounds())

	w, h := ga.Bounds().Dx(), ga.Bounds().Dy()
	if w < ssimWindow || h < ssimWindow {
		return 0, fmt.Errorf("compare: image %dx%d smaller than %dx%d window", w, h, ssimWindow, ssimWindow)
	}

	sx := newIntegral(ga, func(v float64) float64 { return v })
	sy := newIntegral(gb, func(v float64) float64 { return v })
	sxx := newIntegral(ga, func(v float64) float64 { return v * v })
	syy := newIntegral(gb, func(v float64) float64 { return v * v })
	sxy := newPairIntegral(ga, gb)

	const n = ssimWindow * ssimWindow
	const covNorm = float64(n) / float64(n-1)
	c1 := (ssimK1 * ssimRange) * (ssimK1 * ssimRange)
	c2 := (ssimK2 * ssimRange) * (ssimK2 * ssimRange)

	var sum float64
	count := 0
	for y := 0; y+ssimWindow <= h; y++ {
		for x := 0; x+ssimWindow <= w; x++ {
			ux := sx.window(x, y) / n
			uy := sy.window(x, y) / n
			vx := covNorm * (sxx.window(x, y)/n - ux*ux)
			vy := covNorm * (syy.window(x, y)/n - uy*uy)
			vxy := covNorm * (sxy.window(x, y)/n - ux*uy)

			sum += ((2*ux*uy + c1) * (2*vxy + c2)) / ((ux*ux + uy*uy + c1) * (vx + vy + c2))
			count++
		}
	}

	return sum / float64(count), nil
}

// VisualScoreFiles loads both images from disk and scores them.
func VisualScoreFiles(pathA, pathB string) (float64, error) {
	a, err := loadImage(pathA)
	if err != nil {
		return 0, fmt.Errorf("compare: load %s: %w", pathA, err)
	}
	b, err := loadImage(pathB)
	if err != nil {
		return 0, fmt.Errorf("compare: load %s: %w", pathB, err)
	}
	return VisualScore(a, b)
}

// FuzzyScore compares the ssdeep hashes of two encoded screenshots. 0 means no
// similarity, 100 an identical hash.
func FuzzyScore(a, b []byte) (int, error) {
	h1, err := ssdeep.FuzzyBytes(a)
	if err != nil {
		return 0, fmt.Errorf("compare: hash: %w", err)
	}
	h2, err := ssdeep.FuzzyBytes(b)
	if err != nil {
		return 0, fmt.Errorf("compare: hash: %w", err)
	}
	return ssdeep.Distance(h1, h2)
}

// toGray converts img to grayscale, scaled with bilinear filtering to bounds.
func toGray(img image.Image, bounds image.Rectangle) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if img.Bounds().Dx() == bounds.Dx() && img.Bounds().Dy() == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
		return dst
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// integral is a summed-area table with one row and column of zero padding.
type integral struct {
	w   int
	sum []float64
}

func newIntegral(g *image.Gray, f func(v float64) float64) *integral {
	return buildIntegral(g.Bounds().Dx(), g.Bounds().Dy(), func(x, y int) float64 {
		return f(float64(g.Pix[y*g.Stride+x]))
	})
}

func newPairIntegral(a, b *image.Gray) *integral {
	return buildIntegral(a.Bounds().Dx(), a.Bounds().Dy(), func(x, y int) float64 {
		return float64(a.Pix[y*a.Stride+x]) * float64(b.Pix[y*b.Stride+x])
	})
}

func buildIntegral(w, h int, at func(x, y int) float64) *integral {
	t := &integral{w: w + 1, sum: make([]float64, (w+1)*(h+1))}
	for y := 0; y < h; y++ {
		row := 0.0
		for x := 0; x < w; x++ {
			row += at(x, y)
			t.sum[(y+1)*t.w+x+1] = t.sum[y*t.w+x+1] + row
		}
	}
	return t
}

// window sums the ssimWindow square whose top-left corner is (x, y).
func (t *integral) window(x, y int) float64 {
	x2, y2 := x+ssimWindow, y+ssimWindow
	return t.sum[y2*t.w+x2] - t.sum[y*t.w+x2] - t.sum[y2*t.w+x] + t.sum[y*t.w+x]
}
