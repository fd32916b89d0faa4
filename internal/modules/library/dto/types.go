package dto

import "time"

type TopicOutput struct {
	ID        string
	Name      string
	Documents int
	Read      int
	Current   bool
}

type DocumentOutput struct {
	Path        string
	DisplayName string
	TopicID     string
	Read        bool
	AddedAt     time.Time
}

type TopicDetailOutput struct {
	ID        string
	Name      string
	Documents []DocumentOutput
}

type AddDocumentsInput struct {
	Topic  string
	Paths  []string
	Create bool
}

type AddDocumentsOutput struct {
	TopicID string
	Added   int
	Ignored []string
}

type SetReadInput struct {
	Topic string
	Path  string
	Read  bool
}

type ListDocumentsInput struct {
	Topic  string
	Filter string
}

type ImportLegacyOutput struct {
	Topics    int
	Documents int
}

type SearchHitOutput struct {
	TopicID     string
	TopicName   string
	Path        string
	DisplayName string
	Read        bool
}
