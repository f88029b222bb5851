package extractor

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"net/url"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	imprintPadding    = 20
	imprintBorderSize = 1
	imprintFontSize   = 14
)

// Imprint appends a white band under the screenshot with the page origin written in it.
func Imprint(img []byte, rawURL string) ([]byte, error) {
	label, err := originLabel(rawURL)
	if err != nil {
		return nil, err
	}

	src, err := png.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("imprint: decode image: %w", err)
	}

	face, err := imprintFace()
	if err != nil {
		return nil, err
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy() + imprintPadding*2 + imprintBorderSize
	dc := gg.NewContext(w, h)

	dc.DrawImage(src, 0, 0)

	yLine := float64(src.Bounds().Dy())
	dc.SetColor(color.White)
	dc.DrawRectangle(0, yLine, float64(w), float64(h)-yLine)
	dc.Fill()
	dc.SetColor(color.Black)
	dc.SetLineWidth(imprintBorderSize)
	dc.DrawLine(0, yLine, float64(w), yLine)
	dc.Stroke()
	dc.SetFontFace(face)
	dc.DrawStringAnchored(label, float64(w)/2, yLine+imprintPadding, 0.5, 0.5)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("imprint: encode image: %w", err)
	}

	return buf.Bytes(), nil
}

// originLabel renders scheme://host, dropping the port when it is the scheme default.
func originLabel(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("imprint: parse %s: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("imprint: %s has no origin", rawURL)
	}

	host := u.Host
	if port := u.Port(); (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		host = strings.TrimSuffix(host, ":"+port)
	}

	return u.Scheme + "://" + host, nil
}

func imprintFace() (font.Face, error) {
	ttFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("imprint: parse font: %w", err)
	}

	return truetype.NewFace(ttFont, &truetype.Options{Size: imprintFontSize}), nil
}
