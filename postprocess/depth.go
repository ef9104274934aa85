// Package postprocess converts raw disparity tensors produced by the depth
// network into scaled disparity and depth maps.
package postprocess

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DispMap is a dense single channel float32 map holding disparity or depth
// values in row-major order
type DispMap struct {
	// Data is the pixel buffer, Data[y*Width+x]
	Data []float32
	// Width of the map
	Width int
	// Height of the map
	Height int
}

// NewDispMap wraps a raw float32 buffer as a DispMap
func NewDispMap(data []float32, width, height int) (*DispMap, error) {

	if len(data) != width*height {
		return nil, fmt.Errorf("buffer length %d does not match %dx%d map",
			len(data), width, height)
	}

	return &DispMap{
		Data:   data,
		Width:  width,
		Height: height,
	}, nil
}

// Min returns the smallest value in the map
func (m *DispMap) Min() float32 {

	minV := m.Data[0]

	for _, v := range m.Data {
		if v < minV {
			minV = v
		}
	}

	return minV
}

// Mat copies the map into a single channel float32 gocv Mat.  The caller
// owns the returned Mat and must Close it.
func (m *DispMap) Mat() (gocv.Mat, error) {

	mat := gocv.NewMatWithSize(m.Height, m.Width, gocv.MatTypeCV32F)

	ptr, err := mat.DataPtrFloat32()

	if err != nil {
		mat.Close()
		return gocv.Mat{}, fmt.Errorf("error getting data pointer to Mat: %w", err)
	}

	copy(ptr, m.Data)

	return mat, nil
}

// Resize interpolates the map to the given dimensions using bilinear
// interpolation without corner alignment.  This interpolation mode matches
// the calibration of the pretrained models and must not be changed.
func (m *DispMap) Resize(width, height int) (*DispMap, error) {

	if width == m.Width && height == m.Height {
		out := make([]float32, len(m.Data))
		copy(out, m.Data)
		return NewDispMap(out, width, height)
	}

	src, err := m.Mat()

	if err != nil {
		return nil, err
	}

	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.Resize(src, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)

	ptr, err := dst.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("error getting data pointer to Mat: %w", err)
	}

	out := make([]float32, width*height)
	copy(out, ptr)

	return NewDispMap(out, width, height)
}

// DepthParams are the disparity to depth conversion bounds
type DepthParams struct {
	// MinDepth is the closest depth the network can represent
	MinDepth float64
	// MaxDepth is the farthest depth the network can represent
	MaxDepth float64
}

// DefaultDepthParams returns the conversion bounds the pretrained models
// were trained with
func DefaultDepthParams() DepthParams {
	return DepthParams{
		MinDepth: 0.1,
		MaxDepth: 100,
	}
}

// Depth defines the struct for converting network disparity output into
// depth maps
type Depth struct {
	// Params are the depth conversion parameters
	Params DepthParams
}

// NewDepth returns an instance of the depth converter
func NewDepth(p DepthParams) *Depth {
	return &Depth{
		Params: p,
	}
}

// DispToDepth converts the network's sigmoid disparity output into a scaled
// disparity map and its corresponding depth map.  The sigmoid output is
// mapped linearly onto [1/MaxDepth, 1/MinDepth] and depth is its inverse.
func (d *Depth) DispToDepth(disp *DispMap) (*DispMap, *DispMap) {

	minDisp := float32(1.0 / d.Params.MaxDepth)
	maxDisp := float32(1.0 / d.Params.MinDepth)

	scaled := make([]float32, len(disp.Data))
	depth := make([]float32, len(disp.Data))

	for i, v := range disp.Data {
		s := minDisp + (maxDisp-minDisp)*v
		scaled[i] = s
		depth[i] = 1.0 / s
	}

	scaledMap := &DispMap{Data: scaled, Width: disp.Width, Height: disp.Height}
	depthMap := &DispMap{Data: depth, Width: disp.Width, Height: disp.Height}

	return scaledMap, depthMap
}

// ToMetric scales a raw depth map by the dataset's stereo baseline factor,
// producing depth in meters.  The input map is not modified.
func (d *Depth) ToMetric(depth *DispMap, scale float64) *DispMap {

	out := make([]float32, len(depth.Data))
	s := float32(scale)

	for i, v := range depth.Data {
		out[i] = v * s
	}

	return &DispMap{Data: out, Width: depth.Width, Height: depth.Height}
}
