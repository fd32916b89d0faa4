package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNothingToExport = errors.New("nothing to export")
	ErrEmptyExport     = errors.New("no document could be converted")
	ErrWrite           = errors.New("write export")
)

// Item is one planned document.
type Item struct {
	Path        string
	DisplayName string
}

// Plan lists the documents of one topic under a filter, in topic order.
type Plan struct {
	TopicID   string
	TopicName string
	Filter    string
	Items     []Item
}

type Request struct {
	Topic       string
	Filter      string
	Destination string
}

// NormalizeFilter maps the accepted filter spellings onto all, read or unread.
func NormalizeFilter(filter string) string {
	switch f := strings.ToLower(strings.TrimSpace(filter)); f {
	case "read", "unread":
		return f
	default:
		return "all"
	}
}

// FilterLabel is the suffix of default export file names.
func FilterLabel(filter string) string {
	switch NormalizeFilter(filter) {
	case "read":
		return "gelesene"
	case "unread":
		return "ungelesene"
	default:
		return "alle"
	}
}

// Conversion is the outcome of converting one planned item.
type Conversion struct {
	Item    Item
	OK      bool
	PDF     []byte
	Backend string
	Reason  string
}

type Entry struct {
	Item    Item
	Pages   int
	Backend string
}

type Skip struct {
	Item   Item
	Reason string
}

// MergeResult keeps both lists in plan order.
type MergeResult struct {
	PDF       []byte
	Succeeded []Entry
	Skipped   []Skip
}

func (m MergeResult) Pages() int {
	total := 0
	for _, entry := range m.Succeeded {
		total += entry.Pages
	}
	return total
}

type Summary struct {
	RunID      string
	TopicName  string
	OutputPath string
	Succeeded  []Entry
	Skipped    []Skip
	Pages      int
	StartedAt  time.Time
	FinishedAt time.Time
}

type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write export %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrWrite, e.Err}
}
