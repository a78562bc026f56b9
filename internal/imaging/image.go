// Package imaging holds the float tensor type for classifier inputs and the
// compositor that materializes per-agent image variants from sparse pixel
// edits.
package imaging

import (
	"fmt"

	"pixevade/internal/model"
)

// Image is a dense float64 tensor in channel-major (C, H, W) layout with
// color components in [0, 1]. The attack never mutates a base image in
// place; variants are always fresh copies.
type Image struct {
	Channels int
	Height   int
	Width    int
	Data     []float64
}

func NewImage(channels, height, width int) Image {
	return Image{
		Channels: channels,
		Height:   height,
		Width:    width,
		Data:     make([]float64, channels*height*width),
	}
}

func (img Image) Clone() Image {
	out := img
	out.Data = append([]float64(nil), img.Data...)
	return out
}

// Size is the spatial extent used for coordinate repair. Images are assumed
// square; height and width are kept separate so that lifting the assumption
// stays local to this package.
func (img Image) Size() int {
	return img.Height
}

func (img Image) At(c, x, y int) float64 {
	return img.Data[(c*img.Height+x)*img.Width+y]
}

func (img *Image) Set(c, x, y int, v float64) {
	img.Data[(c*img.Height+x)*img.Width+y] = v
}

// Pixel returns the per-channel values at spatial position (x, y).
func (img Image) Pixel(x, y int) []float64 {
	out := make([]float64, img.Channels)
	for c := 0; c < img.Channels; c++ {
		out[c] = img.At(c, x, y)
	}
	return out
}

// Variants returns one copy of base per agent, with the agent's pixels
// overwritten whole-pixel: every channel at a position is replaced by the
// agent's color vector, no blending. The base image is never touched.
//
// Coordinate repair is single-step and can leave an index outside
// [0, size-1]; a value in [-size, -1] addresses from the end of the axis,
// anything further out is reported as an error.
func Variants(base Image, coords, colors []model.Plane) ([]Image, error) {
	if len(coords) != len(colors) {
		return nil, fmt.Errorf("%w: %d coordinate agents vs %d color agents", model.ErrShapeMismatch, len(coords), len(colors))
	}

	variants := make([]Image, len(coords))
	for i := range coords {
		if len(coords[i]) != len(colors[i]) {
			return nil, fmt.Errorf("%w: agent %d has %d positions and %d colors", model.ErrShapeMismatch, i, len(coords[i]), len(colors[i]))
		}

		variant := base.Clone()
		for j, unit := range coords[i] {
			if len(unit) != 2 {
				return nil, fmt.Errorf("%w: agent %d position %d has dim %d, want 2", model.ErrShapeMismatch, i, j, len(unit))
			}
			color := colors[i][j]
			if len(color) != base.Channels {
				return nil, fmt.Errorf("%w: agent %d color %d has %d channels, image has %d", model.ErrShapeMismatch, i, j, len(color), base.Channels)
			}

			x, err := resolveIndex(int(unit[0]), base.Height)
			if err != nil {
				return nil, fmt.Errorf("agent %d pixel %d: %w", i, j, err)
			}
			y, err := resolveIndex(int(unit[1]), base.Width)
			if err != nil {
				return nil, fmt.Errorf("agent %d pixel %d: %w", i, j, err)
			}
			for c := 0; c < base.Channels; c++ {
				variant.Set(c, x, y, color[c])
			}
		}
		variants[i] = variant
	}
	return variants, nil
}

func resolveIndex(v, extent int) (int, error) {
	if v >= extent || v < -extent {
		return 0, fmt.Errorf("coordinate %d outside axis of extent %d", v, extent)
	}
	if v < 0 {
		v += extent
	}
	return v, nil
}
