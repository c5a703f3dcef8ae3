package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register decoder

	attachmentDomain "github.com/allisson/phrsdk/internal/attachment/domain"
)

// ImageResizer produces scaled JPEG variants of raster images.
type ImageResizer interface {
	// Resize scales data to targetHeight keeping the aspect ratio. It returns ok=false
	// when the image is not taller than targetHeight, in which case no variant is stored.
	Resize(data []byte, targetHeight int) (resized []byte, ok bool, err error)
}

// DrawResizer implements ImageResizer with golang.org/x/image/draw.
type DrawResizer struct {
	quality int
	scaler  draw.Scaler
}

// NewDrawResizer creates a resizer writing JPEG at JPEGQuality.
func NewDrawResizer() *DrawResizer {
	return &DrawResizer{quality: attachmentDomain.JPEGQuality, scaler: draw.CatmullRom}
}

func (r *DrawResizer) Resize(data []byte, targetHeight int) ([]byte, bool, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dy() <= targetHeight {
		return nil, false, nil
	}

	width := bounds.Dx() * targetHeight / bounds.Dy()
	if width < 1 {
		width = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, targetHeight))
	r.scaler.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: r.quality}); err != nil {
		return nil, false, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), true, nil
}
