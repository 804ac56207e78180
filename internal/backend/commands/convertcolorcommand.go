package commands

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/jo-hoe/picundo/internal/backend/commandstructure"
)

const (
	ColorCodeGray   = "gray"
	ColorCodeSwapRB = "swaprb"
	ColorCodeInvert = "invert"
	ColorCodeSepia  = "sepia"
)

var validColorCodes = map[string]bool{
	ColorCodeGray:   true,
	ColorCodeSwapRB: true,
	ColorCodeInvert: true,
	ColorCodeSepia:  true,
}

// ConvertColorParams represents typed parameters for the color conversion command
type ConvertColorParams struct {
	Paths []string
	Code  string
}

// NewConvertColorParamsFromMap creates ConvertColorParams from a generic map
func NewConvertColorParamsFromMap(params map[string]any) (*ConvertColorParams, error) {
	paths, err := pathsFromParams(params)
	if err != nil {
		return nil, err
	}
	code := commandstructure.GetStringParam(params, "code", ColorCodeGray)
	if !validColorCodes[code] {
		return nil, fmt.Errorf("invalid color code: %s (must be one of gray, swaprb, invert, sepia)", code)
	}
	return &ConvertColorParams{Paths: paths, Code: code}, nil
}

// ConvertColorCommand converts the color space of images in place
type ConvertColorCommand struct {
	*imageCommand
	params *ConvertColorParams
}

// NewConvertColorCommand creates a new color conversion command from configuration parameters
func NewConvertColorCommand(env *commandstructure.Environment, params map[string]any) (commandstructure.Command, error) {
	typedParams, err := NewConvertColorParamsFromMap(params)
	if err != nil {
		return nil, err
	}
	return newConvertColorCommand(env, typedParams)
}

// NewConvertColorCommandWithParams creates a new color conversion command from concrete typed parameters
func NewConvertColorCommandWithParams(env *commandstructure.Environment, paths []string, code string) (*ConvertColorCommand, error) {
	if !validColorCodes[code] {
		return nil, fmt.Errorf("invalid color code: %s (must be one of gray, swaprb, invert, sepia)", code)
	}
	return newConvertColorCommand(env, &ConvertColorParams{Paths: paths, Code: code})
}

func newConvertColorCommand(env *commandstructure.Environment, params *ConvertColorParams) (*ConvertColorCommand, error) {
	cmd := &ConvertColorCommand{params: params}
	base, err := newImageCommand("ConvertColorCommand", env, params.Paths, cmd.convert)
	if err != nil {
		return nil, err
	}
	cmd.imageCommand = base
	return cmd, nil
}

// GetParams returns the typed parameters
func (c *ConvertColorCommand) GetParams() *ConvertColorParams {
	return c.params
}

func (c *ConvertColorCommand) convert(img image.Image) (image.Image, error) {
	switch c.params.Code {
	case ColorCodeGray:
		return imaging.Grayscale(img), nil
	case ColorCodeInvert:
		return imaging.Invert(img), nil
	case ColorCodeSwapRB:
		return imaging.AdjustFunc(img, func(px color.NRGBA) color.NRGBA {
			return color.NRGBA{R: px.B, G: px.G, B: px.R, A: px.A}
		}), nil
	case ColorCodeSepia:
		return imaging.AdjustFunc(img, sepia), nil
	default:
		return nil, fmt.Errorf("invalid color code: %s", c.params.Code)
	}
}

func sepia(px color.NRGBA) color.NRGBA {
	r, g, b := float64(px.R), float64(px.G), float64(px.B)
	return color.NRGBA{
		R: clampByte(0.393*r + 0.769*g + 0.189*b),
		G: clampByte(0.349*r + 0.686*g + 0.168*b),
		B: clampByte(0.272*r + 0.534*g + 0.131*b),
		A: px.A,
	}
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func init() {
	if err := commandstructure.DefaultRegistry.Register("ConvertColorCommand", NewConvertColorCommand); err != nil {
		panic(fmt.Sprintf("failed to register ConvertColorCommand: %v", err))
	}
}
