package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const SchemaVersion = 1

type Filter string

const (
	FilterAll    Filter = "all"
	FilterRead   Filter = "read"
	FilterUnread Filter = "unread"
)

func ParseFilter(raw string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterRead:
		return FilterRead, nil
	case FilterUnread:
		return FilterUnread, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all|read|unread)", raw)
	}
}

func (f Filter) Match(doc Document) bool {
	switch f {
	case FilterRead:
		return doc.Read
	case FilterUnread:
		return !doc.Read
	default:
		return true
	}
}

// Document references a file on disk. Path is its identity within a topic.
type Document struct {
	Path        string    `json:"path"`
	DisplayName string    `json:"display_name"`
	TopicID     string    `json:"topic_id"`
	Read        bool      `json:"read"`
	AddedAt     time.Time `json:"added_at"`
}

func NewDocument(topicID, path string, addedAt time.Time) Document {
	return Document{
		Path:        path,
		DisplayName: filepath.Base(path),
		TopicID:     topicID,
		AddedAt:     addedAt,
	}
}

// Topic keeps documents in insertion order.
type Topic struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Documents []Document `json:"documents"`
	CreatedAt time.Time  `json:"created_at"`
}

func (t Topic) IndexOf(path string) int {
	for i, doc := range t.Documents {
		if doc.Path == path {
			return i
		}
	}
	return -1
}

// Select returns the documents matching filter, in topic order.
func (t Topic) Select(filter Filter) []Document {
	out := make([]Document, 0, len(t.Documents))
	for _, doc := range t.Documents {
		if filter.Match(doc) {
			out = append(out, doc)
		}
	}
	return out
}

func (t Topic) Counts() (total, read int) {
	for _, doc := range t.Documents {
		if doc.Read {
			read++
		}
	}
	return len(t.Documents), read
}

func ValidateTopicName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("topic name is required")
	}
	return nil
}

type State struct {
	SchemaVersion  int     `json:"schema_version"`
	Topics         []Topic `json:"topics"`
	CurrentTopicID string  `json:"current_topic_id,omitempty"`
}

// FindTopic resolves ref as a topic id first, then as a case-insensitive name.
func (s State) FindTopic(ref string) int {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1
	}
	for i, topic := range s.Topics {
		if topic.ID == ref {
			return i
		}
	}
	for i, topic := range s.Topics {
		if strings.EqualFold(topic.Name, ref) {
			return i
		}
	}
	return -1
}

// LegacyState mirrors the JSON written by the original desktop application.
type LegacyState struct {
	Topics       map[string][]LegacyDocument `json:"topics"`
	CurrentTopic *string                     `json:"current_topic"`
}

type LegacyDocument struct {
	Path string `json:"path"`
	Read bool   `json:"read"`
}

type DocumentHit struct {
	TopicID     string
	TopicName   string
	Path        string
	DisplayName string
	Read        bool
}
