// Package officetext pulls plain paragraphs out of office documents without an
// office suite: DOCX and ODT are zip containers of XML, RTF is stripped of its
// control words.
package officetext

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrUnsupported = errors.New("unsupported office format")

// maxPartSize bounds the XML part read from a container.
const maxPartSize = 64 << 20

type dialect struct {
	member    string
	paragraph map[string]bool
	// textElem limits character data to one element; empty accepts any text inside a paragraph.
	textElem  string
	tab       map[string]bool
	lineBreak map[string]bool
	space     string
}

var docx = dialect{
	member:    "word/document.xml",
	paragraph: map[string]bool{"p": true},
	textElem:  "t",
	tab:       map[string]bool{"tab": true},
	lineBreak: map[string]bool{"br": true, "cr": true},
}

var odt = dialect{
	member:    "content.xml",
	paragraph: map[string]bool{"p": true, "h": true},
	tab:       map[string]bool{"tab": true},
	lineBreak: map[string]bool{"line-break": true},
	space:     "s",
}

// Paragraphs returns up to limit non-empty paragraphs of the document at path.
// A limit of zero or less returns all of them.
func Paragraphs(path string, limit int) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".docx":
		return zipParagraphs(path, docx, limit)
	case ".odt":
		return zipParagraphs(path, odt, limit)
	case ".rtf":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rtf: %w", err)
		}
		return splitParagraphs(StripRTF(raw), limit), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// Text joins all paragraphs with blank lines.
func Text(path string) (string, error) {
	paras, err := Paragraphs(path, 0)
	if err != nil {
		return "", err
	}
	return strings.Join(paras, "\n\n"), nil
}

func zipParagraphs(path string, d dialect, limit int) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != d.member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", d.member, err)
		}
		defer rc.Close()
		return xmlParagraphs(io.LimitReader(rc, maxPartSize), d, limit)
	}
	return nil, fmt.Errorf("container has no %s", d.member)
}

func xmlParagraphs(r io.Reader, d dialect, limit int) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		out    []string
		buf    strings.Builder
		depth  int
		inText int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case d.paragraph[name]:
				depth++
			case depth == 0:
			case name == d.textElem:
				inText++
			case d.tab[name]:
				buf.WriteByte('\t')
			case d.lineBreak[name]:
				buf.WriteByte('\n')
			case d.space != "" && name == d.space:
				buf.WriteString(strings.Repeat(" ", spaceCount(t)))
			}
		case xml.EndElement:
			name := t.Name.Local
			switch {
			case d.paragraph[name] && depth > 0:
				depth--
				if depth > 0 {
					continue
				}
				if p := strings.TrimSpace(buf.String()); p != "" {
					out = append(out, p)
					if limit > 0 && len(out) >= limit {
						return out, nil
					}
				}
				buf.Reset()
			case name == d.textElem && inText > 0:
				inText--
			}
		case xml.CharData:
			if depth > 0 && (d.textElem == "" || inText > 0) {
				buf.Write(t)
			}
		}
	}
	return out, nil
}

func spaceCount(el xml.StartElement) int {
	for _, attr := range el.Attr {
		if attr.Name.Local == "c" {
			if n, err := strconv.Atoi(attr.Value); err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}

func splitParagraphs(text string, limit int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
