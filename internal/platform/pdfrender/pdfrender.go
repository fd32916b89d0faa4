// Package pdfrender lays out plain text and single images as A4 PDF documents.
// Output depends only on the input: document dates are pinned and the catalog
// is written in sorted order.
package pdfrender

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/muesli/reflow/wrap"
)

const (
	Columns    = 80
	TabWidth   = 4
	fontSize   = 10
	lineHeight = 12
	// margin is 2 cm in points.
	margin = 56.6929
)

// Epoch is the creation and modification date written into every document.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

func newDocument(orientation string) *fpdf.Fpdf {
	pdf := fpdf.New(orientation, "pt", "A4", "")
	pdf.SetCreationDate(Epoch)
	pdf.SetModificationDate(Epoch)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	return pdf
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Lines normalizes raw text into the printable lines of the monospace flow:
// invalid UTF-8 is replaced, tabs are expanded, control characters dropped and
// every line hard-wrapped at Columns.
func Lines(raw []byte) []string {
	text := strings.ToValidUTF8(string(raw), "?")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = expandTabs(line)
		if line == "" {
			out = append(out, "")
			continue
		}
		w := wrap.NewWriter(Columns)
		w.PreserveSpace = true
		_, _ = w.Write([]byte(line))
		out = append(out, strings.Split(w.String(), "\n")...)
	}
	return out
}

func expandTabs(line string) string {
	if !strings.ContainsFunc(line, unicode.IsControl) {
		return line
	}
	var b strings.Builder
	col := 0
	for _, r := range line {
		switch {
		case r == '\t':
			n := TabWidth - col%TabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case unicode.IsControl(r) || r == utf8.RuneError:
			continue
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// Text renders raw text as a paginated Courier flow. Empty input yields one
// blank page.
func Text(raw []byte) ([]byte, error) {
	pdf := newDocument("P")
	pdf.SetFont("Courier", "", fontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageH := pdf.GetPageSize()
	perPage := int((pageH - 2*margin) / lineHeight)

	lines := Lines(raw)
	pdf.AddPage()
	for i, line := range lines {
		row := i % perPage
		if i > 0 && row == 0 {
			pdf.AddPage()
		}
		if line == "" {
			continue
		}
		pdf.Text(margin, margin+fontSize+float64(row*lineHeight), tr(line))
	}
	return output(pdf)
}

// Image places img on one page, scaled to fit inside the margins and centered.
// Images wider than tall get a landscape page.
func Image(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %vx%v", w, h)
	}
	orientation := "P"
	if w > h {
		orientation = "L"
	}

	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	pdf := newDocument(orientation)
	pdf.AddPage()
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("page", opts, &encoded)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("register image: %w", err)
	}

	pageW, pageH := pdf.GetPageSize()
	scale := min((pageW-2*margin)/w, (pageH-2*margin)/h)
	drawW, drawH := w*scale, h*scale
	pdf.ImageOptions("page", (pageW-drawW)/2, (pageH-drawH)/2, drawW, drawH, false, opts, 0, "")
	return output(pdf)
}
