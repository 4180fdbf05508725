// Package asciiart renders raster and SVG images as rows of ASCII characters.
package asciiart

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Palette runs from darkest to lightest.
const Palette = "@#S%?*+;:,."

const (
	// DefaultWidth is the output width in characters when none is given.
	DefaultWidth = 100

	// fontAspect compensates for glyphs being taller than they are wide.
	fontAspect = 0.55

	// bucket is the luma span mapped onto one palette character.
	bucket = 25
)

// Options controls a conversion.
type Options struct {
	Width  int
	Invert bool
}

func (o Options) width() int {
	if o.Width <= 0 {
		return DefaultWidth
	}
	return o.Width
}

func (o Options) palette() string {
	if !o.Invert {
		return Palette
	}
	b := []byte(Palette)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// Load decodes the image at path. SVG files are rasterized at their viewBox size.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return rasterizeSVG(f)
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func rasterizeSVG(f *os.File) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(f, oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}

	w, h := int(icon.ViewBox.W), int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svg has an empty viewBox (%dx%d)", w, h)
	}

	// Left transparent so uncovered areas convert like transparent raster pixels.
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))

	icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return rgba, nil
}

// Resize scales img to width columns. The height keeps the aspect ratio
// corrected for glyph proportions and is at least one row.
func Resize(img image.Image, width int) *image.NRGBA {
	b := img.Bounds()
	height := 1
	if b.Dx() > 0 {
		height = int(float64(width) * (float64(b.Dy()) / float64(b.Dx())) * fontAspect)
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Gray returns the ITU-R 601-2 luma of c using 16-bit fixed point weights.
func Gray(c color.NRGBA) uint8 {
	return uint8((uint32(c.R)*19595 + uint32(c.G)*38470 + uint32(c.B)*7471 + 0x8000) >> 16)
}

// Convert renders img as rows joined by "\n" without a trailing newline.
func Convert(img image.Image, opts Options) string {
	width := opts.width()
	palette := opts.palette()
	small := Resize(img, width)
	b := small.Bounds()

	var sb strings.Builder
	sb.Grow((width + 1) * b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			idx := int(Gray(small.NRGBAAt(x, y))) / bucket
			if idx >= len(palette) {
				idx = len(palette) - 1
			}
			sb.WriteByte(palette[idx])
		}
	}
	return sb.String()
}

// ConvertFile loads path and converts it.
func ConvertFile(path string, opts Options) (string, error) {
	img, err := Load(path)
	if err != nil {
		return "", err
	}
	return Convert(img, opts), nil
}

// FinalName is the text file name for src: its base name without the last
// extension, with prefix prepended and ".txt" appended.
func FinalName(src, prefix string) string {
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return prefix + stem + ".txt"
}
