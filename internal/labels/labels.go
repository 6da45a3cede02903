// Package labels renders printable QR label sheets for production batch
// items.
package labels

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/atelierhq/denimstock/internal/model"
)

// Label sheet geometry, in pixels at 300 dpi equivalents. A page holds a
// fixed grid of label slots filled left-to-right, top-to-bottom.
const (
	LabelWidth  = 240
	LabelHeight = 320
	Columns     = 3
	Rows        = 4

	PageWidth  = Columns * LabelWidth
	PageHeight = Rows * LabelHeight

	// SlotsPerPage is the pagination threshold.
	SlotsPerPage = Columns * Rows

	qrSize     = 180
	qrMarginX  = (LabelWidth - qrSize) / 2
	qrMarginY  = 16
	textLeft   = 16
	lineHeight = 16
)

// Page is one rendered sheet of labels.
type Page struct {
	Image  *image.RGBA
	Labels int // number of label blocks on this page
}

// EncodePNG writes the page as a PNG document.
func (p *Page) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, p.Image); err != nil {
		return fmt.Errorf("encoding label page: %w", err)
	}
	return nil
}

// RenderSheet lays out one QR code plus an id/SKU/batch text block per
// item, paginating when a page's slots run out. Layout is deterministic:
// item order is preserved and fully determines slot placement.
func RenderSheet(items []model.InventoryItem) ([]Page, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no items to render")
	}

	var pages []Page
	for start := 0; start < len(items); start += SlotsPerPage {
		end := start + SlotsPerPage
		if end > len(items) {
			end = len(items)
		}

		page, err := renderPage(items[start:end])
		if err != nil {
			return nil, err
		}
		pages = append(pages, *page)
	}
	return pages, nil
}

func renderPage(items []model.InventoryItem) (*Page, error) {
	img := image.NewRGBA(image.Rect(0, 0, PageWidth, PageHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	for i := range items {
		col := i % Columns
		row := i / Columns
		origin := image.Pt(col*LabelWidth, row*LabelHeight)
		if err := renderLabel(img, origin, &items[i]); err != nil {
			return nil, err
		}
	}
	return &Page{Image: img, Labels: len(items)}, nil
}

func renderLabel(dst *image.RGBA, origin image.Point, item *model.InventoryItem) error {
	payload := item.QRPayload
	if payload == "" {
		payload = item.ID
	}

	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("encoding qr for item %s: %w", item.ID, err)
	}
	qrImg := qr.Image(qrSize)

	qrRect := image.Rectangle{
		Min: origin.Add(image.Pt(qrMarginX, qrMarginY)),
		Max: origin.Add(image.Pt(qrMarginX+qrSize, qrMarginY+qrSize)),
	}
	// Nearest neighbour keeps QR modules crisp; smoothing would break
	// scanability.
	draw.NearestNeighbor.Scale(dst, qrRect, qrImg, qrImg.Bounds(), draw.Over, nil)

	lines := []string{"ID: " + item.ID, "SKU: " + item.SKU}
	if item.BatchID != nil {
		lines = append(lines, "BATCH: "+*item.BatchID)
	}

	textY := qrMarginY + qrSize + lineHeight
	for _, line := range lines {
		drawText(dst, origin.Add(image.Pt(textLeft, textY)), line)
		textY += lineHeight
	}
	return nil
}

func drawText(dst *image.RGBA, at image.Point, text string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(at.X, at.Y),
	}
	d.DrawString(text)
}
