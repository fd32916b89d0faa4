package out

import (
	"time"

	"dokureader/internal/modules/convert/domain"
	convertout "dokureader/internal/modules/convert/port/out"
)

const wordName = "word"

// WordBackend drives Microsoft Word through COM automation. It is only
// available on Windows.
type WordBackend struct {
	timeout  time.Duration
	lookPath lookPathFunc
}

func NewWordBackend(timeout time.Duration) convertout.Backend {
	return newWordBackend(timeout)
}

func (b *WordBackend) Name() string { return wordName }

func (b *WordBackend) Supports(kind domain.Kind) bool {
	return kind == domain.KindLegacyOffice
}
