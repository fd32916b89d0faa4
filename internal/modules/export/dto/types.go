package dto

import "time"

type ExportInput struct {
	Topic       string
	Filter      string
	Destination string
}

type EntryOutput struct {
	Path        string
	DisplayName string
	Pages       int
	Backend     string
}

type SkipOutput struct {
	Path        string
	DisplayName string
	Reason      string
}

type ExportOutput struct {
	RunID      string
	TopicName  string
	OutputPath string
	Succeeded  []EntryOutput
	Skipped    []SkipOutput
	Pages      int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Result is delivered once by ExportAsync.
type Result struct {
	Output ExportOutput
	Err    error
}

type RunOutput struct {
	ID         string
	TopicName  string
	Filter     string
	State      string
	OutputPath string
	Documents  int
	Succeeded  int
	Skipped    int
	Pages      int
	Reason     string
	StartedAt  time.Time
	UpdatedAt  time.Time
}
