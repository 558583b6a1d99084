package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/garyjia/lease-reports/internal/application/port"
	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// DefaultDPI keeps previews small enough to inline in a listing
const DefaultDPI = 72.0

// ErrNoPages is returned for documents without a page to render
var ErrNoPages = errors.New("document has no pages")

// FitzRasterizer renders PDF pages with MuPDF
type FitzRasterizer struct {
	dpi    float64
	logger *zap.Logger
}

// NewFitzRasterizer creates a rasterizer. A non-positive dpi uses DefaultDPI.
func NewFitzRasterizer(dpi float64, logger *zap.Logger) port.PageRasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &FitzRasterizer{dpi: dpi, logger: logger}
}

// FirstPagePNG implements port.PageRasterizer
func (r *FitzRasterizer) FirstPagePNG(pdf []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, ErrNoPages
	}

	img, err := doc.ImageDPI(0, r.dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	r.logger.Debug("Rendered page preview",
		zap.Int("pages", doc.NumPage()),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Int("size", buf.Len()))

	return buf.Bytes(), nil
}
