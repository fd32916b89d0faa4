package dto

type Document struct {
	Path        string
	DisplayName string
}

type Outcome struct {
	Path        string
	DisplayName string
	Kind        string
	OK          bool
	PDF         []byte
	Reason      string
	Backend     string
}

type ConvertFileInput struct {
	Path   string
	Output string
}

type ConvertFileOutput struct {
	Path    string
	Output  string
	Backend string
	Bytes   int
}
