package commands

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const defaultJPEGQuality = 95

const (
	formatPNG  = "png"
	formatJPEG = "jpeg"
	formatGIF  = "gif"
	formatBMP  = "bmp"
	formatTIFF = "tiff"
)

// decodeImage decodes any registered raster format and reports its name.
func decodeImage(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// encodeImage encodes img in format. Formats without an encoder (webp) fall back to PNG.
// It returns the format actually written.
func encodeImage(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer
	b := img.Bounds()
	buf.Grow(b.Dx() * b.Dy())

	var err error
	switch format {
	case formatJPEG:
		if quality <= 0 || quality > 100 {
			quality = defaultJPEGQuality
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case formatGIF:
		err = gif.Encode(&buf, img, nil)
	case formatBMP:
		err = bmp.Encode(&buf, img)
	case formatTIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		format = formatPNG
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return buf.Bytes(), format, nil
}

// toNRGBA returns a non-premultiplied copy of img with bounds starting at (0,0).
func toNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}
