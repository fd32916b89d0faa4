package domain

import (
	"path/filepath"
	"sort"
	"strings"
)

type Kind int

const (
	KindUnsupported Kind = iota
	KindNativePDF
	KindText
	KindImage
	KindLegacyOffice
)

func (k Kind) String() string {
	switch k {
	case KindNativePDF:
		return "pdf"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindLegacyOffice:
		return "office"
	default:
		return "unsupported"
	}
}

var kindsByExtension = map[string]Kind{
	".pdf":  KindNativePDF,
	".txt":  KindText,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".gif":  KindImage,
	".doc":  KindLegacyOffice,
	".docx": KindLegacyOffice,
	".odt":  KindLegacyOffice,
	".rtf":  KindLegacyOffice,
}

// Extension returns the lowercase extension of path including the dot.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Classify maps a path to its kind by extension only.
func Classify(path string) Kind {
	if kind, ok := kindsByExtension[Extension(path)]; ok {
		return kind
	}
	return KindUnsupported
}

func SupportedExtensions() []string {
	out := make([]string, 0, len(kindsByExtension))
	for ext := range kindsByExtension {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
