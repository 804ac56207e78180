package commands

import (
	"context"
	"image"
	"image/color"
	"testing"
)

func TestNewCropParamsFromMap(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]any
		wantErr bool
	}{
		{name: "valid", params: map[string]any{"paths": "a.png", "width": 10, "height": 10}},
		{name: "missing height", params: map[string]any{"paths": "a.png", "width": 10}, wantErr: true},
		{name: "negative width", params: map[string]any{"paths": "a.png", "width": -1, "height": 10}, wantErr: true},
		{name: "missing paths", params: map[string]any{"width": 10, "height": 10}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCropParamsFromMap(tt.params)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCropParamsFromMap() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCropCommand_CenterCrop(t *testing.T) {
	env := newTestEnvironment(t)
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.SetNRGBA(x, y, color.NRGBA{uint8(x * 10), uint8(y * 10), 0, 255})
		}
	}
	writeTestFile(t, env, "a.png", encodeTestPNG(t, src))

	cmd, err := NewCropCommandWithParams(env, []string{"a.png"}, 4, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	img := readTestImage(t, env, "a.png")
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
		t.Fatalf("Expected 4x2, got %v", img.Bounds())
	}
	// top-left of the crop is source pixel (3,4)
	if got := nrgbaAt(img, 0, 0); got != (color.NRGBA{30, 40, 0, 255}) {
		t.Errorf("Expected source pixel (3,4), got %v", got)
	}
}

func TestCropCommand_LargerThanImage(t *testing.T) {
	env := newTestEnvironment(t)
	writeTestFile(t, env, "a.png", makeCornerPNG(t, 6, 4))

	cmd, err := NewCropCommandWithParams(env, []string{"a.png"}, 100, 100)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	img := readTestImage(t, env, "a.png")
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 4 {
		t.Errorf("Expected dimensions to be limited to the original 6x4, got %v", img.Bounds())
	}
}
