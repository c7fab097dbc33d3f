// Package image converts uploaded pictures to png.
package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/xhunter74/collectionmanager/shared/errors"
	"github.com/xhunter74/collectionmanager/shared/logger"
)

// maxPixels bounds decoding of hostile images
const maxPixels = 50_000_000

type Converter struct {
	// longest side of the result, 0 keeps the source size
	maxDimension int
}

func New(maxDimension int) *Converter {
	return &Converter{maxDimension: maxDimension}
}

// ConvertToPng decodes png, jpeg, gif, webp, bmp or tiff input and encodes it
// as png, downscaled to fit maxDimension.
func (c *Converter) ConvertToPng(ctx context.Context, data []byte) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		logger.Log.Debug("unsupported image", "error", err)
		return nil, errors.BadRequest("Unsupported image format")
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, errors.BadRequest("Image is too large")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Log.Debug("failed to decode image", "format", format, "error", err)
		return nil, errors.BadRequest("Image is corrupted")
	}

	out := c.resize(src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Converter) resize(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if c.maxDimension <= 0 || (w <= c.maxDimension && h <= c.maxDimension) {
		return src
	}

	if w >= h {
		h = max(1, h*c.maxDimension/w)
		w = c.maxDimension
	} else {
		w = max(1, w*c.maxDimension/h)
		h = c.maxDimension
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
