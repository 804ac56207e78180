package commands

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/jo-hoe/picundo/internal/backend/commandstructure"
)

const formatSVG = "svg"

// ConvertFormatParams represents typed parameters for the format conversion command
type ConvertFormatParams struct {
	Paths             []string
	Format            string // png or jpeg
	Quality           int    // jpeg only
	SVGFallbackWidth  int
	SVGFallbackHeight int
}

// NewConvertFormatParamsFromMap creates ConvertFormatParams from a generic map
func NewConvertFormatParamsFromMap(params map[string]any) (*ConvertFormatParams, error) {
	paths, err := pathsFromParams(params)
	if err != nil {
		return nil, err
	}
	p := &ConvertFormatParams{
		Paths:             paths,
		Format:            strings.ToLower(commandstructure.GetStringParam(params, "format", formatPNG)),
		Quality:           commandstructure.GetIntParam(params, "quality", defaultJPEGQuality),
		SVGFallbackWidth:  commandstructure.GetIntParam(params, "svgFallbackWidth", 0),
		SVGFallbackHeight: commandstructure.GetIntParam(params, "svgFallbackHeight", 0),
	}
	if p.Format == "jpg" {
		p.Format = formatJPEG
	}
	if p.Format != formatPNG && p.Format != formatJPEG {
		return nil, fmt.Errorf("invalid format: %s (must be 'png' or 'jpeg')", p.Format)
	}
	if p.Quality < 1 || p.Quality > 100 {
		return nil, fmt.Errorf("quality must be between 1 and 100, got %d", p.Quality)
	}
	return p, nil
}

// ConvertFormatCommand re-encodes images in place as PNG or JPEG. SVG input is rasterized.
type ConvertFormatCommand struct {
	*imageCommand
	params *ConvertFormatParams
}

// NewConvertFormatCommand creates a new format conversion command from configuration parameters
func NewConvertFormatCommand(env *commandstructure.Environment, params map[string]any) (commandstructure.Command, error) {
	typedParams, err := NewConvertFormatParamsFromMap(params)
	if err != nil {
		return nil, err
	}

	cmd := &ConvertFormatCommand{params: typedParams}
	base, err := newImageCommand("ConvertFormatCommand", env, typedParams.Paths, func(img image.Image) (image.Image, error) {
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	base.decode = cmd.decode
	base.targetFormat = func(string) string { return typedParams.Format }
	base.quality = typedParams.Quality
	cmd.imageCommand = base
	return cmd, nil
}

// GetParams returns the typed parameters
func (c *ConvertFormatCommand) GetParams() *ConvertFormatParams {
	return c.params
}

func (c *ConvertFormatCommand) decode(data []byte) (image.Image, string, error) {
	if !isSVGData(data) {
		return decodeImage(data)
	}

	w, h, ok := parseSvgExplicitSize(data)
	if !ok {
		w, h = c.params.SVGFallbackWidth, c.params.SVGFallbackHeight
		if w <= 0 || h <= 0 {
			return nil, "", fmt.Errorf("SVG fallback size not set; cannot render SVG without explicit size")
		}
		slog.Debug("ConvertFormatCommand: SVG lacks explicit size; using fallback", "width", w, "height", h)
	}
	img, err := renderSVG(data, w, h)
	if err != nil {
		return nil, "", err
	}
	return img, formatSVG, nil
}

// isSVGData performs a lightweight detection of SVG content in the first 4KB.
func isSVGData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	n := min(len(data), 4096)
	header := bytes.ToLower(bytes.TrimSpace(data[:n]))
	return bytes.Contains(header, []byte("<svg")) ||
		bytes.Contains(header, []byte("xmlns=\"http://www.w3.org/2000/svg\"")) ||
		bytes.Contains(header, []byte("xmlns='http://www.w3.org/2000/svg'"))
}

// parseSvgExplicitSize extracts width and height attributes of the <svg> start tag.
// viewBox is not treated as a pixel size.
func parseSvgExplicitSize(data []byte) (int, int, bool) {
	n := min(len(data), 8192)
	s := strings.ToLower(string(data[:n]))
	i := strings.Index(s, "<svg")
	if i < 0 {
		return 0, 0, false
	}
	tag := s[i:]
	if j := strings.Index(tag, ">"); j >= 0 {
		tag = tag[:j]
	}

	w, wOk := parseNumericAttr(tag, "width")
	h, hOk := parseNumericAttr(tag, "height")
	if wOk && hOk {
		return w, h, true
	}
	return 0, 0, false
}

// parseNumericAttr reads the leading integer of a quoted attribute, e.g. width="120px".
func parseNumericAttr(tag, attr string) (int, bool) {
	// leading space avoids matching stroke-width and friends
	pos := strings.Index(tag, " "+attr+"=")
	if pos < 0 {
		return 0, false
	}
	rest := tag[pos+len(attr)+2:]
	if len(rest) == 0 || (rest[0] != '"' && rest[0] != '\'') {
		return 0, false
	}
	quote := rest[0]
	rest = rest[1:]
	if end := strings.IndexByte(rest, quote); end >= 0 {
		rest = rest[:end]
	}

	num := 0
	found := false
	for i := 0; i < len(rest); i++ {
		ch := rest[i]
		if ch < '0' || ch > '9' {
			break
		}
		found = true
		num = num*10 + int(ch-'0')
	}
	if !found || num <= 0 {
		return 0, false
	}
	return num, true
}

// renderSVG rasterizes an SVG onto a white canvas of the given size.
func renderSVG(svgData []byte, targetW, targetH int) (image.Image, error) {
	if targetW <= 0 || targetH <= 0 {
		return nil, fmt.Errorf("invalid target dimensions for SVG rendering: %dx%d", targetW, targetH)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}
	icon.SetTarget(0, 0, float64(targetW), float64(targetH))

	dst := createTargetCanvas(targetW, targetH, color.RGBA{255, 255, 255, 255})
	scanner := rasterx.NewScannerGV(targetW, targetH, dst, dst.Bounds())
	dasher := rasterx.NewDasher(targetW, targetH, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

func init() {
	if err := commandstructure.DefaultRegistry.Register("ConvertFormatCommand", NewConvertFormatCommand); err != nil {
		panic(fmt.Sprintf("failed to register ConvertFormatCommand: %v", err))
	}
}
