package domain_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"dokureader/internal/modules/preview/domain"
)

func TestKindOf(t *testing.T) {
	t.Parallel()
	cases := map[string]domain.Kind{
		"/a/b.TXT":  domain.KindText,
		"/a/b.pdf":  domain.KindPDF,
		"/a/b.docx": domain.KindOffice,
		"/a/b.rtf":  domain.KindOffice,
		"/a/b.jpeg": domain.KindImage,
		"/a/b.doc":  domain.KindOther,
		"/a/b":      domain.KindOther,
	}
	for path, want := range cases {
		if got := domain.KindOf(path); got != want {
			t.Fatalf("%s: got %s want %s", path, got, want)
		}
	}
}

func TestDecodeTextUTF8(t *testing.T) {
	t.Parallel()
	body, kind, truncated := domain.DecodeText([]byte("Grüße"), false)
	if body != "Grüße" || kind != domain.KindText || truncated {
		t.Fatalf("got %q %s %v", body, kind, truncated)
	}
}

func TestDecodeTextFallsBackToLatin1(t *testing.T) {
	t.Parallel()
	body, _, _ := domain.DecodeText([]byte{'K', 0xf6, 'l', 'n'}, false)
	if body != "Köln" {
		t.Fatalf("got %q", body)
	}
}

func TestDecodeTextTruncatesAtCharLimit(t *testing.T) {
	t.Parallel()
	raw := []byte(strings.Repeat("ä", domain.MaxTextChars+10))
	body, _, truncated := domain.DecodeText(raw, false)
	if utf8.RuneCountInString(body) != domain.MaxTextChars || !truncated {
		t.Fatalf("got %d runes truncated=%v", utf8.RuneCountInString(body), truncated)
	}
}

func TestDecodeTextDropsCutRune(t *testing.T) {
	t.Parallel()
	raw := []byte("abcä")
	body, kind, truncated := domain.DecodeText(raw[:len(raw)-1], true)
	if body != "abc" || kind != domain.KindText || !truncated {
		t.Fatalf("got %q %s %v", body, kind, truncated)
	}
}

func TestDecodeBinaryAsHexdump(t *testing.T) {
	t.Parallel()
	raw := make([]byte, 600)
	copy(raw, "MZ")
	body, kind, truncated := domain.DecodeText(raw, false)
	if kind != domain.KindBinary || !truncated {
		t.Fatalf("got kind %s truncated %v", kind, truncated)
	}
	if !strings.HasPrefix(body, "00000000  4d 5a 00") || strings.Count(body, "\n") != 32 {
		t.Fatalf("unexpected hexdump:\n%s", body)
	}
}
