package commands

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/jo-hoe/picundo/internal/backend/commandstructure"
)

const (
	ResizeModeStretch = "stretch"
	ResizeModeFit     = "fit"

	InterpolationNearest    = "nearest"
	InterpolationBilinear   = "bilinear"
	InterpolationCatmullRom = "catmullrom"
)

var interpolators = map[string]draw.Interpolator{
	InterpolationNearest:    draw.NearestNeighbor,
	InterpolationBilinear:   draw.BiLinear,
	InterpolationCatmullRom: draw.CatmullRom,
}

// ResizeParams represents typed parameters for the resize command
type ResizeParams struct {
	Paths         []string
	Width         int
	Height        int
	Mode          string
	Interpolation string
}

// NewResizeParamsFromMap creates ResizeParams from a generic map
func NewResizeParamsFromMap(params map[string]any) (*ResizeParams, error) {
	paths, err := pathsFromParams(params)
	if err != nil {
		return nil, err
	}
	if err := commandstructure.ValidateRequiredParams(params, []string{"height", "width"}); err != nil {
		return nil, err
	}

	p := &ResizeParams{
		Paths:         paths,
		Width:         commandstructure.GetIntParam(params, "width", 0),
		Height:        commandstructure.GetIntParam(params, "height", 0),
		Mode:          commandstructure.GetStringParam(params, "mode", ResizeModeStretch),
		Interpolation: commandstructure.GetStringParam(params, "interpolation", InterpolationCatmullRom),
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ResizeParams) validate() error {
	if p.Height <= 0 {
		return fmt.Errorf("height must be positive, got %d", p.Height)
	}
	if p.Width <= 0 {
		return fmt.Errorf("width must be positive, got %d", p.Width)
	}
	if p.Mode != ResizeModeStretch && p.Mode != ResizeModeFit {
		return fmt.Errorf("invalid mode: %s (must be 'stretch' or 'fit')", p.Mode)
	}
	if _, ok := interpolators[p.Interpolation]; !ok {
		return fmt.Errorf("invalid interpolation: %s (must be nearest, bilinear or catmullrom)", p.Interpolation)
	}
	return nil
}

// ResizeCommand resizes images in place to the target dimensions
type ResizeCommand struct {
	*imageCommand
	params *ResizeParams
}

// NewResizeCommand creates a new resize command from configuration parameters
func NewResizeCommand(env *commandstructure.Environment, params map[string]any) (commandstructure.Command, error) {
	typedParams, err := NewResizeParamsFromMap(params)
	if err != nil {
		return nil, err
	}
	return newResizeCommand(env, typedParams)
}

// NewResizeCommandWithParams creates a stretching CatmullRom resize command from concrete typed parameters
func NewResizeCommandWithParams(env *commandstructure.Environment, paths []string, width, height int) (*ResizeCommand, error) {
	p := &ResizeParams{
		Paths:         paths,
		Width:         width,
		Height:        height,
		Mode:          ResizeModeStretch,
		Interpolation: InterpolationCatmullRom,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return newResizeCommand(env, p)
}

func newResizeCommand(env *commandstructure.Environment, params *ResizeParams) (*ResizeCommand, error) {
	cmd := &ResizeCommand{params: params}
	base, err := newImageCommand("ResizeCommand", env, params.Paths, cmd.resize)
	if err != nil {
		return nil, err
	}
	cmd.imageCommand = base
	return cmd, nil
}

// GetParams returns the typed parameters
func (c *ResizeCommand) GetParams() *ResizeParams {
	return c.params
}

func (c *ResizeCommand) resize(img image.Image) (image.Image, error) {
	scaler := interpolators[c.params.Interpolation]
	targetWidth, targetHeight := c.params.Width, c.params.Height
	src := img.Bounds()

	if c.params.Mode == ResizeModeStretch {
		dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
		scaler.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
		return dst, nil
	}

	// fit: preserve aspect ratio and center on a white canvas
	scaledWidth, scaledHeight := computeScaledDimensions(src.Dx(), src.Dy(), targetWidth, targetHeight)
	dst := createTargetCanvas(targetWidth, targetHeight, color.RGBA{255, 255, 255, 255})
	offsetX, offsetY := computeCenterOffset(targetWidth, targetHeight, scaledWidth, scaledHeight)
	area := image.Rect(offsetX, offsetY, offsetX+scaledWidth, offsetY+scaledHeight)
	scaler.Scale(dst, area, img, src, draw.Over, nil)
	return dst, nil
}

func computeScaledDimensions(originalWidth, originalHeight, targetWidth, targetHeight int) (int, int) {
	originalAspect := float64(originalWidth) / float64(originalHeight)
	targetAspect := float64(targetWidth) / float64(targetHeight)
	if originalAspect > targetAspect {
		// wider than the target: width bound
		return targetWidth, max(1, int(float64(targetWidth)/originalAspect))
	}
	return max(1, int(float64(targetHeight)*originalAspect)), targetHeight
}

func createTargetCanvas(w, h int, bg color.Color) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	return dst
}

func computeCenterOffset(targetWidth, targetHeight, scaledWidth, scaledHeight int) (int, int) {
	return (targetWidth - scaledWidth) / 2, (targetHeight - scaledHeight) / 2
}

func init() {
	if err := commandstructure.DefaultRegistry.Register("ResizeCommand", NewResizeCommand); err != nil {
		panic(fmt.Sprintf("failed to register ResizeCommand: %v", err))
	}
}
