package out

import (
	"context"

	"dokureader/internal/modules/preview/domain"
	previewout "dokureader/internal/modules/preview/port/out"
	"dokureader/internal/platform/imagefile"
)

type ImageFileInspector struct{}

func NewImageFileInspector() previewout.ImageInspector {
	return ImageFileInspector{}
}

// Inspect reads headers only; the format comes from the file's content, not
// its extension.
func (ImageFileInspector) Inspect(_ context.Context, path string) (domain.ImageInfo, error) {
	info, err := imagefile.Stat(path)
	if err != nil {
		return domain.ImageInfo{}, err
	}
	return domain.ImageInfo{Format: info.Format, Width: info.Width, Height: info.Height, Taken: info.Taken}, nil
}
