package domain

import (
	"bytes"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	MaxTextChars  = 5000
	HexdumpBytes  = 512
	MaxParagraphs = 30
	// TextProbeBytes is enough raw input for MaxTextChars in any UTF-8 text.
	TextProbeBytes = MaxTextChars * utf8.UTFMax
)

type Kind string

const (
	KindText   Kind = "text"
	KindPDF    Kind = "pdf"
	KindOffice Kind = "office"
	KindImage  Kind = "image"
	KindBinary Kind = "binary"
	KindOther  Kind = "other"
)

var kindsByExtension = map[string]Kind{
	".txt":  KindText,
	".pdf":  KindPDF,
	".docx": KindOffice,
	".odt":  KindOffice,
	".rtf":  KindOffice,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".gif":  KindImage,
}

// KindOf picks the preview renderer for path. Legacy .doc files have no
// readable text layer and fall back to metadata.
func KindOf(path string) Kind {
	if kind, ok := kindsByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return kind
	}
	return KindOther
}

type Field struct {
	Key   string
	Value string
}

type Preview struct {
	Path      string
	Title     string
	Kind      Kind
	Body      string
	Truncated bool
	Meta      []Field
}

func (p *Preview) AddMeta(key, value string) {
	p.Meta = append(p.Meta, Field{Key: key, Value: value})
}

type PDFPage struct {
	Text  string
	Pages int
}

type ImageInfo struct {
	Format string
	Width  int
	Height int
	Taken  time.Time
}

// DecodeText turns a raw prefix of a text file into displayable text. Content
// with NUL bytes is reported as binary and rendered as a hexdump. Invalid
// UTF-8 is read as Latin-1. more reports whether the file continues past raw.
func DecodeText(raw []byte, more bool) (body string, kind Kind, truncated bool) {
	if bytes.IndexByte(raw, 0) >= 0 {
		n := min(len(raw), HexdumpBytes)
		return hex.Dump(raw[:n]), KindBinary, more || len(raw) > n
	}
	if more {
		raw = trimPartialRune(raw)
	}
	var text string
	if utf8.Valid(raw) {
		text = string(raw)
	} else {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			decoded = bytes.ToValidUTF8(raw, []byte("?"))
		}
		text = string(decoded)
	}
	if utf8.RuneCountInString(text) > MaxTextChars {
		runes := []rune(text)
		return string(runes[:MaxTextChars]), KindText, true
	}
	return text, KindText, more
}

// trimPartialRune drops a UTF-8 sequence cut off at the end of a prefix.
func trimPartialRune(raw []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(raw); i++ {
		b := raw[len(raw)-i]
		if !utf8.RuneStart(b) {
			continue
		}
		if !utf8.FullRune(raw[len(raw)-i:]) {
			return raw[:len(raw)-i]
		}
		break
	}
	return raw
}
