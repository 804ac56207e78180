package commands

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/jo-hoe/picundo/internal/backend/commandstructure"
)

// CropParams represents typed parameters for crop command
type CropParams struct {
	Paths  []string
	Height int
	Width  int
}

// NewCropParamsFromMap creates CropParams from a generic map
func NewCropParamsFromMap(params map[string]any) (*CropParams, error) {
	paths, err := pathsFromParams(params)
	if err != nil {
		return nil, err
	}
	if err := commandstructure.ValidateRequiredParams(params, []string{"height", "width"}); err != nil {
		return nil, err
	}

	p := &CropParams{
		Paths:  paths,
		Height: commandstructure.GetIntParam(params, "height", 0),
		Width:  commandstructure.GetIntParam(params, "width", 0),
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *CropParams) validate() error {
	if p.Height <= 0 {
		return fmt.Errorf("height must be positive, got %d", p.Height)
	}
	if p.Width <= 0 {
		return fmt.Errorf("width must be positive, got %d", p.Width)
	}
	return nil
}

// CropCommand center-crops images in place
type CropCommand struct {
	*imageCommand
	params *CropParams
}

// NewCropCommand creates a new crop command from configuration parameters
func NewCropCommand(env *commandstructure.Environment, params map[string]any) (commandstructure.Command, error) {
	typedParams, err := NewCropParamsFromMap(params)
	if err != nil {
		return nil, err
	}
	return newCropCommand(env, typedParams)
}

// NewCropCommandWithParams creates a new crop command from concrete typed parameters
func NewCropCommandWithParams(env *commandstructure.Environment, paths []string, width, height int) (*CropCommand, error) {
	p := &CropParams{Paths: paths, Width: width, Height: height}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return newCropCommand(env, p)
}

func newCropCommand(env *commandstructure.Environment, params *CropParams) (*CropCommand, error) {
	cmd := &CropCommand{params: params}
	base, err := newImageCommand("CropCommand", env, params.Paths, cmd.crop)
	if err != nil {
		return nil, err
	}
	cmd.imageCommand = base
	return cmd, nil
}

// GetParams returns the typed parameters
func (c *CropCommand) GetParams() *CropParams {
	return c.params
}

func (c *CropCommand) crop(img image.Image) (image.Image, error) {
	bounds := img.Bounds()
	cropWidth := min(c.params.Width, bounds.Dx())
	cropHeight := min(c.params.Height, bounds.Dy())

	slog.Debug("CropCommand: performing center crop",
		"original_width", bounds.Dx(),
		"original_height", bounds.Dy(),
		"crop_width", cropWidth,
		"crop_height", cropHeight)

	return imaging.CropCenter(img, cropWidth, cropHeight), nil
}

func init() {
	if err := commandstructure.DefaultRegistry.Register("CropCommand", NewCropCommand); err != nil {
		panic(fmt.Sprintf("failed to register CropCommand: %v", err))
	}
}
