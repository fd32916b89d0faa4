package out

import (
	convertin "dokureader/internal/modules/convert/port/in"
	libraryout "dokureader/internal/modules/library/port/out"
)

// ConvertFormatChecker accepts the files the conversion pipeline can classify.
type ConvertFormatChecker struct {
	convert convertin.Usecase
}

func NewConvertFormatChecker(convert convertin.Usecase) libraryout.FormatChecker {
	return &ConvertFormatChecker{convert: convert}
}

func (c *ConvertFormatChecker) Supported(path string) bool {
	return c.convert.Supported(path)
}
