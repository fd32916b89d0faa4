package theme_test

import (
	"bytes"
	"testing"

	"dokureader/internal/ui/theme"
)

func TestPlainWriterDropsColors(t *testing.T) {
	t.Parallel()
	styles := theme.For(&bytes.Buffer{})
	if got := styles.OK.Render("ok"); got != "ok" {
		t.Fatalf("expected plain text, got %q", got)
	}
	if got := styles.Fail.Render("failed"); got != "failed" {
		t.Fatalf("expected plain text, got %q", got)
	}
}
