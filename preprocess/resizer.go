// Package preprocess prepares camera frames for the depth network's input
// tensor: pixel-space cropping, scaling to the feed resolution and numeric
// tensor conversion.
package preprocess

import (
	"fmt"
	"image"

	"github.com/mradice/go-monodepth/camera"
	"gocv.io/x/gocv"
)

// Resizer defines the struct used for scaling camera frames to the network
// feed resolution
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// feedWidth is the network input tensor width
	feedWidth int
	// feedHeight is the network input tensor height
	feedHeight int
}

// NewResizer returns a resizer scaling frames of the given source size to
// the feed resolution
func NewResizer(srcWidth, srcHeight, feedWidth, feedHeight int) *Resizer {
	return &Resizer{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		feedWidth:  feedWidth,
		feedHeight: feedHeight,
	}
}

// FeedResize scales the source frame to the feed resolution using Lanczos
// resampling.  Aspect is not preserved, the pretrained models were trained
// on anisotropically resized frames so no letterboxing takes place.
func (r *Resizer) FeedResize(src gocv.Mat, dest *gocv.Mat) {
	gocv.Resize(src, dest, image.Pt(r.feedWidth, r.feedHeight),
		0, 0, gocv.InterpolationLanczos4)
}

// FeedWidth returns the network input tensor width
func (r *Resizer) FeedWidth() int {
	return r.feedWidth
}

// FeedHeight returns the network input tensor height
func (r *Resizer) FeedHeight() int {
	return r.feedHeight
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}

// Crop extracts the crop window from the source frame as a new continuous
// Mat.  The window is given in original image pixel coordinates and is
// applied before any resizing.  A window extending outside the frame is
// clamped to the frame bounds and reported through the second return value
// so callers can log it.  The caller owns the returned Mat.
func Crop(src gocv.Mat, crop camera.CropWindow) (gocv.Mat, bool) {

	rect := image.Rect(crop.X0, crop.Y0, crop.X1, crop.Y1)
	bounds := image.Rect(0, 0, src.Cols(), src.Rows())

	clamped := rect.Intersect(bounds)
	outOfBounds := clamped != rect

	region := src.Region(clamped)
	defer region.Close()

	return region.Clone(), outOfBounds
}

// ToTensor converts an 8-bit 3 channel BGR Mat into an NCHW RGB float32
// tensor with values scaled to [0,1], the layout the depth network's
// encoder expects
func ToTensor(img gocv.Mat) ([]float32, error) {

	if img.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("expected 8-bit 3 channel image, got type %d", img.Type())
	}

	// make mat continuous
	if !img.IsContinuous() {
		img = img.Clone()
		defer img.Close()
	}

	data, err := img.DataPtrUint8()

	if err != nil {
		return nil, fmt.Errorf("error getting data pointer to Mat: %w", err)
	}

	h := img.Rows()
	w := img.Cols()
	plane := h * w

	out := make([]float32, 3*plane)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := (y*w + x) * 3

			// reorder BGR to RGB planes while scaling
			out[0*plane+y*w+x] = float32(data[idx+2]) / 255.0
			out[1*plane+y*w+x] = float32(data[idx+1]) / 255.0
			out[2*plane+y*w+x] = float32(data[idx]) / 255.0
		}
	}

	return out, nil
}
