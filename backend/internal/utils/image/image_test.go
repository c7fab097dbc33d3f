package image

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhunter74/collectionmanager/shared/errors"
	"golang.org/x/image/bmp"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	return img
}

func decodePng(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestConvertToPng(t *testing.T) {
	ctx := context.Background()

	t.Run("jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, testImage(40, 20), nil))

		out, err := New(0).ConvertToPng(ctx, buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 40, 20), decodePng(t, out).Bounds())
	})

	t.Run("bmp", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, bmp.Encode(&buf, testImage(8, 8)))

		out, err := New(0).ConvertToPng(ctx, buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 8, 8), decodePng(t, out).Bounds())
	})

	t.Run("downscales keeping aspect", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, testImage(200, 100)))

		out, err := New(50).ConvertToPng(ctx, buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 50, 25), decodePng(t, out).Bounds())
	})

	t.Run("small image untouched", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, testImage(10, 30)))

		out, err := New(50).ConvertToPng(ctx, buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 10, 30), decodePng(t, out).Bounds())
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := New(0).ConvertToPng(ctx, []byte("plain text"))
		require.Error(t, err)
		assert.True(t, errors.IsBadRequest(err))
	})
}
