package capture

import (
	"fmt"
	"image"

	"github.com/clawd-xsl/android-remote/internal/platform"
)

const rgbaPixelStride = 4

// CopyFrame copies an RGBA_8888 buffer whose rows may carry stride padding
// into a tightly packed image cropped to width x height.
func CopyFrame(f platform.Frame, width, height int) (*image.NRGBA, error) {
	if f.PixelStride != rgbaPixelStride {
		return nil, fmt.Errorf("unsupported pixel stride %d", f.PixelStride)
	}
	if f.Width < width || f.Height < height {
		return nil, fmt.Errorf("frame %dx%d is smaller than display %dx%d", f.Width, f.Height, width, height)
	}
	rowBytes := width * rgbaPixelStride
	if f.RowStride < rowBytes {
		return nil, fmt.Errorf("row stride %d shorter than %d bytes of pixels", f.RowStride, rowBytes)
	}
	if need := (height-1)*f.RowStride + rowBytes; len(f.Pix) < need {
		return nil, fmt.Errorf("buffer holds %d bytes, need %d", len(f.Pix), need)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := f.Pix[y*f.RowStride : y*f.RowStride+rowBytes]
		copy(img.Pix[y*img.Stride:], src)
	}
	return img, nil
}
