package commands

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/jo-hoe/picundo/internal/backend/commandstructure"
)

const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// OrientationParams represents typed parameters for orientation command
type OrientationParams struct {
	Paths            []string
	Orientation      string
	RotateWhenSquare bool
	Clockwise        bool
}

// NewOrientationParamsFromMap creates OrientationParams from a generic map
func NewOrientationParamsFromMap(params map[string]any) (*OrientationParams, error) {
	paths, err := pathsFromParams(params)
	if err != nil {
		return nil, err
	}
	p := &OrientationParams{
		Paths:            paths,
		Orientation:      commandstructure.GetStringParam(params, "orientation", OrientationPortrait),
		RotateWhenSquare: commandstructure.GetBoolParam(params, "rotateWhenSquare", false),
		Clockwise:        commandstructure.GetBoolParam(params, "clockwise", true),
	}
	if err := validateOrientation(p.Orientation); err != nil {
		return nil, err
	}
	return p, nil
}

func validateOrientation(orientation string) error {
	if orientation != OrientationPortrait && orientation != OrientationLandscape {
		return fmt.Errorf("invalid orientation: %s (must be 'portrait' or 'landscape')", orientation)
	}
	return nil
}

// OrientationCommand rotates images by 90 degrees so they match the target orientation
type OrientationCommand struct {
	*imageCommand
	params *OrientationParams
}

// NewOrientationCommand creates a new orientation command from configuration parameters
func NewOrientationCommand(env *commandstructure.Environment, params map[string]any) (commandstructure.Command, error) {
	typedParams, err := NewOrientationParamsFromMap(params)
	if err != nil {
		return nil, err
	}
	return newOrientationCommand(env, typedParams)
}

// NewOrientationCommandWithParams creates a clockwise orientation command that leaves square images alone
func NewOrientationCommandWithParams(env *commandstructure.Environment, paths []string, orientation string) (*OrientationCommand, error) {
	if err := validateOrientation(orientation); err != nil {
		return nil, err
	}
	return newOrientationCommand(env, &OrientationParams{
		Paths:       paths,
		Orientation: orientation,
		Clockwise:   true,
	})
}

func newOrientationCommand(env *commandstructure.Environment, params *OrientationParams) (*OrientationCommand, error) {
	cmd := &OrientationCommand{params: params}
	base, err := newImageCommand("OrientationCommand", env, params.Paths, cmd.orient)
	if err != nil {
		return nil, err
	}
	cmd.imageCommand = base
	return cmd, nil
}

// GetParams returns the typed parameters
func (c *OrientationCommand) GetParams() *OrientationParams {
	return c.params
}

func (c *OrientationCommand) orient(img image.Image) (image.Image, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var rotate bool
	switch {
	case width == height:
		rotate = c.params.RotateWhenSquare
	case c.params.Orientation == OrientationPortrait:
		rotate = width > height
	default:
		rotate = height > width
	}
	if !rotate {
		slog.Debug("OrientationCommand: no rotation needed",
			"width", width,
			"height", height,
			"target_orientation", c.params.Orientation)
		return img, nil
	}

	slog.Debug("OrientationCommand: rotating 90 degrees", "clockwise", c.params.Clockwise)
	return rotate90(img, c.params.Clockwise), nil
}

func rotate90(img image.Image, clockwise bool) *image.NRGBA {
	if clockwise {
		return imaging.Rotate270(img)
	}
	return imaging.Rotate90(img)
}

func init() {
	if err := commandstructure.DefaultRegistry.Register("OrientationCommand", NewOrientationCommand); err != nil {
		panic(fmt.Sprintf("failed to register OrientationCommand: %v", err))
	}
}
