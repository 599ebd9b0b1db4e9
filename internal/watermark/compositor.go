package watermark

import (
	"bytes"
	_ "embed"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

//go:embed template.svg
var defaultTemplate []byte

const (
	labelToken    = "{{PRODUCT_NAME}}"
	jpegQuality   = 90
	labelFontSize = 120
	// The label baseline sits two inches above the bottom edge at the
	// assumed 96 DPI.
	bottomInset = 2 * 96
)

// Compositor burns a text label into images. Template graphics come from a
// fixed SVG overlay; the label itself is drawn as glyphs in output pixel
// space. Aside from the optional template file read at construction it is a
// pure function of its inputs.
type Compositor struct {
	template string
	font     *opentype.Font
}

// NewCompositor loads the overlay template and the label typeface. An empty
// templatePath selects the embedded default.
func NewCompositor(templatePath string) (*Compositor, error) {
	tpl := defaultTemplate
	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("watermark: read template: %w", err)
		}
		tpl = data
	}
	if !bytes.Contains(tpl, []byte("</svg>")) {
		return nil, fmt.Errorf("watermark: template is not an svg document")
	}
	fnt, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("watermark: parse label font: %w", err)
	}
	return &Compositor{template: string(tpl), font: fnt}, nil
}

// Apply overlays label near the bottom-center of the image and re-encodes the
// result as JPEG. The output keeps the input's exact pixel dimensions.
// Application is all-or-nothing: any failure returns an error and no partial
// result.
func (c *Compositor) Apply(imageBytes []byte, label string) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("watermark: decode image: %w", err)
	}
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	overlay, err := c.rasterizeTemplate(label, width, height)
	if err != nil {
		return nil, err
	}
	if err := c.drawLabel(overlay, label, width, height); err != nil {
		return nil, err
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), src, bounds.Min, draw.Src)
	draw.Draw(out, out.Bounds(), overlay, image.Point{}, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("watermark: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// rasterizeTemplate substitutes the label into the template and rasterizes
// the document at the target dimensions. The template's viewBox is scaled to
// the target rect, so template graphics track the image size.
func (c *Compositor) rasterizeTemplate(label string, width, height int) (*image.RGBA, error) {
	doc := strings.ReplaceAll(c.template, labelToken, escapeXML(label))

	icon, err := oksvg.ReadIconStream(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("watermark: parse overlay: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	overlay := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, overlay, overlay.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return overlay, nil
}

// drawLabel renders the label onto the overlay in output pixel space: white,
// bold, horizontally centered, baseline bottomInset above the bottom edge.
// Glyphs falling outside the overlay are clipped. Faces are not safe for
// concurrent use, so each call builds its own over the shared parsed font.
func (c *Compositor) drawLabel(overlay *image.RGBA, label string, width, height int) error {
	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    labelFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("watermark: build label face: %w", err)
	}
	defer func() {
		_ = face.Close()
	}()

	d := &font.Drawer{Dst: overlay, Src: image.White, Face: face}
	d.Dot = fixed.Point26_6{
		X: fixed.I(width/2) - d.MeasureString(label)/2,
		Y: fixed.I(height - bottomInset),
	}
	d.DrawString(label)
	return nil
}

func escapeXML(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	).Replace(s)
}
