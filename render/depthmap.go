// Package render turns numeric depth and disparity maps into colormapped
// visualization images.
package render

import (
	"fmt"
	"math"
	"sort"

	"github.com/mradice/go-monodepth/postprocess"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// MagmaMap selects the embedded magma perceptual colormap instead of an
// OpenCV builtin colormap
const MagmaMap = gocv.ColormapTypes(9998)

// GrayscaleMap is used to not apply coloring to the output map, but to leave
// it as grayscale
const GrayscaleMap = gocv.ColormapTypes(9999)

// DepthMapParams are the depth map visualization parameters
type DepthMapParams struct {
	// Colormap to apply to the depth map.  Pass MagmaMap for the embedded
	// magma table or GrayscaleMap for no coloring
	Colormap gocv.ColormapTypes
	// Percentile is the upper normalization bound as a percentile of the
	// map's values, clipping outlier pixels for a stable visualization
	Percentile float64
}

// DefaultDepthMapParams sets the magma colormap with the upper bound at the
// 95th percentile
func DefaultDepthMapParams() DepthMapParams {
	return DepthMapParams{
		Colormap:   MagmaMap,
		Percentile: 95,
	}
}

// DepthMap defines the struct for rendering disparity maps as colormapped
// images
type DepthMap struct {
	// Params are the visualization configuration parameters
	Params DepthMapParams
}

// NewDepthMap returns an instance of the depth map renderer
func NewDepthMap(p DepthMapParams) *DepthMap {
	return &DepthMap{
		Params: p,
	}
}

// Render normalizes the disparity map and writes its colormapped image into
// dst.  Normalization runs from the map's minimum to its configured
// percentile, so isolated outlier pixels don't wash out the image.  Only the
// visualization is clipped, never the numeric map itself.
func (d *DepthMap) Render(disp *postprocess.DispMap, dst *gocv.Mat) error {

	vmin := disp.Min()
	vmax := Percentile(disp.Data, d.Params.Percentile)

	u8 := d.normalizeToU8(disp, vmin, vmax)

	u8Mat, err := gocv.NewMatFromBytes(disp.Height, disp.Width, gocv.MatTypeCV8U, u8)

	if err != nil {
		return fmt.Errorf("failed to create visualization mat: %w", err)
	}

	defer u8Mat.Close()

	switch d.Params.Colormap {
	case GrayscaleMap:
		// no coloring
		u8Mat.CopyTo(dst)

	case MagmaMap:
		gocv.ApplyCustomColorMap(u8Mat, dst, magmaColorMap())

	default:
		gocv.ApplyColorMap(u8Mat, dst, d.Params.Colormap)
	}

	return nil
}

// normalizeToU8 maps the disparity values onto [0,255] using the given
// bounds, clamping values above vmax
func (d *DepthMap) normalizeToU8(disp *postprocess.DispMap, vmin, vmax float32) []byte {

	out := make([]byte, len(disp.Data))

	den := vmax - vmin

	// constant or all-invalid map renders black
	if !isFinite32(vmin) || !isFinite32(vmax) || den <= 0 {
		return out
	}

	for i, v := range disp.Data {

		// pin invalid pixels to the lower bound so they render black
		if !isFinite32(v) {
			v = vmin
		}

		n := (v - vmin) / den

		if n < 0 {
			n = 0
		}
		if n > 1 {
			n = 1
		}

		out[i] = byte(n * 255.0)
	}

	return out
}

// Percentile returns the p'th percentile of the values, ignoring NaN and
// infinite entries
func Percentile(values []float32, p float64) float32 {

	sorted := make([]float64, 0, len(values))

	for _, v := range values {
		if isFinite32(v) {
			sorted = append(sorted, float64(v))
		}
	}

	if len(sorted) == 0 {
		return float32(math.NaN())
	}

	sort.Float64s(sorted)

	return float32(stat.Quantile(p/100, stat.LinInterp, sorted, nil))
}

// isFinite32 returns true if v is neither NaN nor +/-Inf
func isFinite32(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}
