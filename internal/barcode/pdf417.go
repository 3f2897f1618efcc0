package barcode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	gobarcode "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/pdf417"
	"golang.org/x/text/encoding/charmap"
)

// Options configures PDF417 rendering. Margin is in barcode modules.
type Options struct {
	SecurityLevel byte
	Margin        int
	Width         int
	Height        int
}

// DefaultOptions matches what Croatian banking apps expect from a HUB-3 slip.
func DefaultOptions() Options {
	return Options{
		SecurityLevel: 2,
		Margin:        10,
		Width:         450,
		Height:        150,
	}
}

type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// EncodeISO88592 transcodes UTF-8 text to ISO-8859-2 bytes.
func EncodeISO88592(text string) ([]byte, error) {
	return charmap.ISO8859_2.NewEncoder().Bytes([]byte(text))
}

// Render encodes payload as a PDF417 symbol with a quiet zone, scaled to
// the configured size when the symbol fits into it.
func (r *Renderer) Render(payload string) (image.Image, error) {
	data, err := EncodeISO88592(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload as ISO-8859-2: %w", err)
	}

	code, err := pdf417.Encode(string(data), r.opts.SecurityLevel)
	if err != nil {
		return nil, fmt.Errorf("pdf417 encode: %w", err)
	}

	var bc gobarcode.Barcode = code
	if r.opts.Margin > 0 {
		bc = quietZone{Barcode: code, margin: r.opts.Margin}
	}

	if r.opts.Width > 0 && r.opts.Height > 0 {
		// symbols larger than the target keep their natural size
		if scaled, err := gobarcode.Scale(bc, r.opts.Width, r.opts.Height); err == nil {
			return scaled, nil
		}
	}
	return bc, nil
}

func (r *Renderer) RenderPNG(payload string) ([]byte, error) {
	img, err := r.Render(payload)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// quietZone pads a barcode with white modules on every side.
type quietZone struct {
	gobarcode.Barcode
	margin int
}

func (q quietZone) Bounds() image.Rectangle {
	b := q.Barcode.Bounds()
	return image.Rect(0, 0, b.Dx()+2*q.margin, b.Dy()+2*q.margin)
}

func (q quietZone) At(x, y int) color.Color {
	b := q.Barcode.Bounds()
	p := image.Pt(x-q.margin+b.Min.X, y-q.margin+b.Min.Y)
	if p.In(b) {
		return q.Barcode.At(p.X, p.Y)
	}
	return color.White
}
