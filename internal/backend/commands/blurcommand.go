package commands

import (
	"fmt"
	"image"
	"math"

	"github.com/jo-hoe/picundo/internal/backend/commandstructure"
)

// BlurParams represents typed parameters for the blur command
type BlurParams struct {
	Paths      []string
	KernelSize int     // odd and positive
	Sigma      float64 // <= 0 derives sigma from the kernel size
}

// NewBlurParamsFromMap creates BlurParams from a generic map
func NewBlurParamsFromMap(params map[string]any) (*BlurParams, error) {
	paths, err := pathsFromParams(params)
	if err != nil {
		return nil, err
	}
	kernelSize := commandstructure.GetIntParam(params, "kernelSize", 5)
	sigma := commandstructure.GetFloatParam(params, "sigma", 0)
	if err := validateKernelSize(kernelSize); err != nil {
		return nil, err
	}
	return &BlurParams{Paths: paths, KernelSize: kernelSize, Sigma: sigma}, nil
}

func validateKernelSize(kernelSize int) error {
	if kernelSize <= 0 || kernelSize%2 == 0 {
		return fmt.Errorf("kernelSize must be odd and positive, got %d", kernelSize)
	}
	return nil
}

// BlurCommand applies a Gaussian blur to images in place
type BlurCommand struct {
	*imageCommand
	params *BlurParams
	kernel []float64
}

// NewBlurCommand creates a new blur command from configuration parameters
func NewBlurCommand(env *commandstructure.Environment, params map[string]any) (commandstructure.Command, error) {
	typedParams, err := NewBlurParamsFromMap(params)
	if err != nil {
		return nil, err
	}
	return newBlurCommand(env, typedParams)
}

// NewBlurCommandWithParams creates a new blur command from concrete typed parameters
func NewBlurCommandWithParams(env *commandstructure.Environment, paths []string, kernelSize int, sigma float64) (*BlurCommand, error) {
	if err := validateKernelSize(kernelSize); err != nil {
		return nil, err
	}
	return newBlurCommand(env, &BlurParams{Paths: paths, KernelSize: kernelSize, Sigma: sigma})
}

func newBlurCommand(env *commandstructure.Environment, params *BlurParams) (*BlurCommand, error) {
	cmd := &BlurCommand{
		params: params,
		kernel: gaussianKernel(params.KernelSize, params.Sigma),
	}
	base, err := newImageCommand("BlurCommand", env, params.Paths, cmd.blur)
	if err != nil {
		return nil, err
	}
	cmd.imageCommand = base
	return cmd, nil
}

// GetParams returns the typed parameters
func (c *BlurCommand) GetParams() *BlurParams {
	return c.params
}

// gaussianKernel builds a normalized 1D kernel. A non-positive sigma is derived
// from the size the same way common vision libraries do.
func gaussianKernel(size int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 0.3*((float64(size)-1)*0.5-1) + 0.8
	}
	kernel := make([]float64, size)
	half := size / 2
	sum := 0.0
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// blur runs a separable convolution, horizontal then vertical, with clamped edges.
func (c *BlurCommand) blur(img image.Image) (image.Image, error) {
	src := toNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	half := len(c.kernel) / 2

	tmp := make([]float64, w*h*4)
	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			var acc [4]float64
			for k, weight := range c.kernel {
				sx := clampInt(x+k-half, 0, w-1)
				off := y*src.Stride + sx*4
				for ch := 0; ch < 4; ch++ {
					acc[ch] += weight * float64(src.Pix[off+ch])
				}
			}
			copy(tmp[(y*w+x)*4:], acc[:])
		}
	})

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			var acc [4]float64
			for k, weight := range c.kernel {
				sy := clampInt(y+k-half, 0, h-1)
				off := (sy*w + x) * 4
				for ch := 0; ch < 4; ch++ {
					acc[ch] += weight * tmp[off+ch]
				}
			}
			off := y*dst.Stride + x*4
			for ch := 0; ch < 4; ch++ {
				dst.Pix[off+ch] = clampByte(acc[ch])
			}
		}
	})
	return dst, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func init() {
	if err := commandstructure.DefaultRegistry.Register("BlurCommand", NewBlurCommand); err != nil {
		panic(fmt.Sprintf("failed to register BlurCommand: %v", err))
	}
}
