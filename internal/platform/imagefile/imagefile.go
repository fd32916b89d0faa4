// Package imagefile decodes untrusted image files: the real format is sniffed
// from magic bytes, dimensions are bounded before the full decode, EXIF
// orientation is applied and transparency is flattened onto white.
package imagefile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const (
	MaxDimension = 20000
	MaxPixels    = 120_000_000
	maxFileSize  = 256 << 20
)

var (
	ErrUnknownFormat = errors.New("unknown image format")
	ErrTooLarge      = errors.New("image too large")
)

type Info struct {
	Format string
	Width  int
	Height int
	// Taken is the EXIF capture time, zero when absent.
	Taken time.Time
}

// Sniff reports the format named by the file's magic bytes, ignoring its extension.
func Sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	head := make([]byte, 12)
	n, _ := io.ReadFull(f, head)
	return sniffBytes(head[:n])
}

func sniffBytes(head []byte) (string, error) {
	n := len(head)
	switch {
	case n >= 3 && head[0] == 0xFF && head[1] == 0xD8 && head[2] == 0xFF:
		return "jpeg", nil
	case n >= 8 && head[0] == 0x89 && string(head[1:4]) == "PNG":
		return "png", nil
	case n >= 6 && (string(head[:6]) == "GIF87a" || string(head[:6]) == "GIF89a"):
		return "gif", nil
	case n >= 2 && head[0] == 'B' && head[1] == 'M':
		return "bmp", nil
	case n >= 4 && (binary.LittleEndian.Uint32(head[:4]) == 0x002A4949 ||
		binary.BigEndian.Uint32(head[:4]) == 0x4D4D002A):
		return "tiff", nil
	default:
		return "", fmt.Errorf("%w (magic: %X)", ErrUnknownFormat, head[:min(4, n)])
	}
}

// Stat reads the header of an image without decoding its pixels.
func Stat(path string) (Info, error) {
	format, err := Sniff(path)
	if err != nil {
		return Info{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, fmt.Errorf("%s header: %w", format, err)
	}
	info := Info{Format: format, Width: cfg.Width, Height: cfg.Height}
	if format == "jpeg" || format == "tiff" {
		if _, err := f.Seek(0, io.SeekStart); err == nil {
			if x, err := exif.Decode(f); err == nil {
				if taken, err := x.DateTime(); err == nil {
					info.Taken = taken
				}
			}
		}
	}
	return info, nil
}

// Load decodes path, applies EXIF orientation and flattens alpha.
func Load(path string) (image.Image, error) {
	info, err := Stat(path)
	if err != nil {
		return nil, err
	}
	if err := checkBounds(info.Width, info.Height); err != nil {
		return nil, err
	}
	img, err := decode(path, info.Format)
	if err != nil {
		return nil, err
	}
	return FlattenAlpha(Orient(path, img)), nil
}

func checkBounds(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", w, h)
	}
	if w > MaxDimension || h > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrTooLarge, w, h, MaxDimension)
	}
	if int64(w)*int64(h) > MaxPixels {
		return fmt.Errorf("%w: %dM pixels", ErrTooLarge, int64(w)*int64(h)/1_000_000)
	}
	return nil
}

func decode(path, format string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	lr := io.LimitReader(f, maxFileSize)
	var img image.Image
	switch format {
	case "jpeg":
		img, err = jpeg.Decode(lr)
	case "png":
		img, err = png.Decode(lr)
	case "gif":
		img, err = gif.Decode(lr)
	case "bmp":
		img, err = bmp.Decode(lr)
	case "tiff":
		img, err = tiff.Decode(lr)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s decode: %w", format, err)
	}
	return img, nil
}

// Orient applies the EXIF orientation tag of path to img. Files without EXIF
// data are returned unchanged.
func Orient(path string, img image.Image) image.Image {
	f, err := os.Open(path)
	if err != nil {
		return img
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return img
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return img
	}
	orient, err := tag.Int(0)
	if err != nil {
		return img
	}
	switch orient {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// FlattenAlpha composites img onto white when any sampled pixel is not opaque.
func FlattenAlpha(img image.Image) image.Image {
	switch img.(type) {
	case *image.NRGBA, *image.RGBA, *image.RGBA64, *image.NRGBA64, *image.Paletted:
	default:
		return img
	}

	bounds := img.Bounds()
	step := 1
	if bounds.Dx()*bounds.Dy() > 1_000_000 {
		step = 10
	}
	transparent := false
	for y := bounds.Min.Y; y < bounds.Max.Y && !transparent; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			if _, _, _, a := img.At(x, y).RGBA(); a < 0xffff {
				transparent = true
				break
			}
		}
	}
	if !transparent {
		return img
	}

	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)
	return flat
}
