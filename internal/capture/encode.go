package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

// Format is an output image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpg"
)

// ParseFormat accepts png, jpg, and jpeg (case-insensitive). Empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("unsupported image format: %q (use png or jpg)", s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// EncodeOptions controls how a frame is rendered to bytes. The zero value
// is a full-size lossless PNG.
type EncodeOptions struct {
	Format      Format
	Quality     int          // JPEG quality 1-100 (default 80)
	Scale       float64      // 0.1-1.0 (0 = full size)
	Annotations []Annotation // Boxes drawn before scaling
}

// Encode renders img per opts.
func Encode(img *image.NRGBA, opts EncodeOptions) ([]byte, error) {
	var src image.Image = img
	if len(opts.Annotations) > 0 {
		src = Annotate(img, opts.Annotations)
	}
	if opts.Scale > 0 && opts.Scale < 1 {
		src = scale(src, opts.Scale)
	}

	var buf bytes.Buffer
	switch opts.Format {
	case "", FormatPNG:
		if err := png.Encode(&buf, src); err != nil {
			return nil, fmt.Errorf("png encode: %w", err)
		}
	case FormatJPEG:
		quality := opts.Quality
		if quality <= 0 || quality > 100 {
			quality = 80
		}
		if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("jpeg encode: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported image format: %q", opts.Format)
	}
	return buf.Bytes(), nil
}

// scale resamples src by factor, keeping at least one pixel per axis.
func scale(src image.Image, factor float64) image.Image {
	b := src.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
