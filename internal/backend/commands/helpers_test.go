package commands

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/jo-hoe/picundo/internal/backend/commandstructure"
	"github.com/jo-hoe/picundo/internal/backend/storage"
)

// newTestEnvironment returns an environment backed by a local store in a temp dir.
func newTestEnvironment(t *testing.T) *commandstructure.Environment {
	t.Helper()
	store, err := storage.NewLocalFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local store: %v", err)
	}
	return &commandstructure.Environment{Store: store, MaxConcurrency: 4}
}

func makeSolidPNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return encodeTestPNG(t, img)
}

// makeCornerPNG returns a gray image with distinctive corners to detect rotation and cropping.
func makeCornerPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{128, 128, 128, 255})
		}
	}
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})         // top-left: red
	img.SetNRGBA(w-1, 0, color.NRGBA{0, 255, 0, 255})       // top-right: green
	img.SetNRGBA(0, h-1, color.NRGBA{0, 0, 255, 255})       // bottom-left: blue
	img.SetNRGBA(w-1, h-1, color.NRGBA{255, 255, 255, 255}) // bottom-right: white
	return encodeTestPNG(t, img)
}

func encodeTestPNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func writeTestFile(t *testing.T, env *commandstructure.Environment, path string, data []byte) {
	t.Helper()
	if err := env.Store.Write(context.Background(), path, data); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func readTestFile(t *testing.T, env *commandstructure.Environment, path string) []byte {
	t.Helper()
	data, err := env.Store.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return data
}

func readTestImage(t *testing.T, env *commandstructure.Environment, path string) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(readTestFile(t, env, path)))
	if err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return img
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	b := img.Bounds()
	return color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
}
