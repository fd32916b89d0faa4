package domain

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	ErrToolUnavailable = errors.New("converter unavailable")
	ErrTimeout         = errors.New("conversion timed out")
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
)

type Document struct {
	Path        string
	DisplayName string
}

func (d Document) Name() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return filepath.Base(d.Path)
}

// Outcome is the result of converting one document. PDF and Backend are set
// only on success, Reason only on skip.
type Outcome struct {
	Document Document
	Kind     Kind
	Status   Status
	PDF      []byte
	Reason   string
	Backend  string
}

func Succeeded(doc Document, kind Kind, backend string, pdf []byte) Outcome {
	return Outcome{Document: doc, Kind: kind, Status: StatusSuccess, PDF: pdf, Backend: backend}
}

func Skipped(doc Document, kind Kind, reason string) Outcome {
	return Outcome{Document: doc, Kind: kind, Status: StatusSkipped, Reason: reason}
}

func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

func UnsupportedReason(path string) string {
	return fmt.Sprintf("unsupported file type %q", Extension(path))
}

type ConversionError struct {
	Backend string
	Path    string
	Err     error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func NewConversionError(backend, path string, err error) *ConversionError {
	return &ConversionError{Backend: backend, Path: path, Err: err}
}
