package dto

type Field struct {
	Key   string
	Value string
}

type PreviewOutput struct {
	Path      string
	Title     string
	Kind      string
	Body      string
	Truncated bool
	Meta      []Field
}
