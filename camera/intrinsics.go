// Package camera provides pinhole camera intrinsics handling for cropped
// sensor regions.
package camera

import (
	"gonum.org/v1/gonum/mat"
)

// CropWindow defines a crop region in original (uncropped) image pixel
// coordinates.  X1/Y1 are exclusive right/bottom edges.
type CropWindow struct {
	X0 int
	Y0 int
	X1 int
	Y1 int
}

// Width returns the width of the crop window in pixels
func (c CropWindow) Width() int {
	return c.X1 - c.X0
}

// Height returns the height of the crop window in pixels
func (c CropWindow) Height() int {
	return c.Y1 - c.Y0
}

// Center returns the crop window center anchored on the window's far corner
// offset by half its extent.  This matches the calibration convention the
// pretrained models were trained against, so the anchor arithmetic must not
// be changed even though it only equals the geometric center when the window
// starts at the origin.
func (c CropWindow) Center() (cj, ci float64) {
	cj = float64(c.X1) - float64(c.Width())/2
	ci = float64(c.Y1) - float64(c.Height())/2
	return cj, ci
}

// Intrinsics holds a normalized pinhole camera intrinsics.  All four values
// are ratios of the original sensor resolution, focal lengths by width/height
// and the principal point by width/height respectively.
type Intrinsics struct {
	Fx float64
	Fy float64
	Cx float64
	Cy float64
}

// Matrix returns the intrinsics as a 4x4 homogeneous pinhole matrix
//
//	[fx  0 cx 0]
//	[ 0 fy cy 0]
//	[ 0  0  1 0]
//	[ 0  0  0 1]
func (k Intrinsics) Matrix() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		k.Fx, 0, k.Cx, 0,
		0, k.Fy, k.Cy, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// CroppedIntrinsics computes the normalized intrinsics for a cropped region
// of the sensor.  Focal lengths are invariant to cropping as no resampling
// takes place, so they are normalized by the full sensor dimensions up front.
// The principal point is shifted into crop coordinates and then normalized by
// the original sensor dimensions, not the crop dimensions, keeping the
// matrix valid for consumers that treat image coordinates as normalized by
// the uncropped resolution.
//
// If the principal point lands far from the image center, callers must
// disable horizontal flip augmentation downstream.
//
// Crop bounds are not validated.  A window extending outside the sensor
// yields out of range but numerically defined values.
func CroppedIntrinsics(sensorWidth, sensorHeight int, fxPx, fyPx, cxPx, cyPx float64,
	crop CropWindow) Intrinsics {

	w := float64(sensorWidth)
	h := float64(sensorHeight)

	fx := fxPx / w
	fy := fyPx / h

	cropCj, cropCi := crop.Center()

	cx := cxPx + float64(crop.Width()-1)/2 - cropCj
	cy := cyPx + float64(crop.Height()-1)/2 - cropCi

	cx /= w
	cy /= h

	return Intrinsics{
		Fx: fx,
		Fy: fy,
		Cx: cx,
		Cy: cy,
	}
}
