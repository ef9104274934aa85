package monodepth

import (
	"fmt"

	"github.com/mradice/go-monodepth/camera"
	"github.com/mradice/go-monodepth/postprocess"
	"github.com/mradice/go-monodepth/preprocess"
	"gocv.io/x/gocv"
)

// Prediction holds the network output for a single frame
type Prediction struct {
	// Disp is the sigmoid disparity field at the network feed resolution
	Disp *postprocess.DispMap
	// DispResized is the disparity upsampled bilinearly back to the
	// (cropped) source resolution, used for visualization
	DispResized *postprocess.DispMap
	// CropClamped reports that the requested crop window extended outside
	// the frame and was clamped.  Non fatal, callers should log it.
	CropClamped bool
}

// Driver orchestrates the per frame inference pipeline: optional pixel-space
// crop, resize to the feed resolution, tensor conversion, forward pass, and
// upsampling the disparity back to source resolution.  A Driver is a pure
// function of its input frame, so any scheduling across frames is valid as
// long as each Driver owns its Runtime.
type Driver struct {
	rt Runtime
}

// NewDriver returns a driver running frames through the given runtime
func NewDriver(rt Runtime) *Driver {
	return &Driver{
		rt: rt,
	}
}

// InferFile loads an image from disk and runs inference on it
func (d *Driver) InferFile(imgFile string, crop *camera.CropWindow) (*Prediction, error) {

	img := gocv.IMRead(imgFile, gocv.IMReadColor)

	if img.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrImageDecode, imgFile)
	}

	defer img.Close()

	return d.Infer(img, crop)
}

// Infer runs the depth network over a single BGR frame.  The crop window,
// when given, is applied in original pixel coordinates before any resizing.
func (d *Driver) Infer(img gocv.Mat, crop *camera.CropWindow) (*Prediction, error) {

	src := img
	clamped := false

	if crop != nil {
		cropped, c := preprocess.Crop(img, *crop)
		defer cropped.Close()

		src = cropped
		clamped = c
	}

	resizer := preprocess.NewResizer(src.Cols(), src.Rows(),
		d.rt.FeedWidth(), d.rt.FeedHeight())

	feed := gocv.NewMat()
	defer feed.Close()

	resizer.FeedResize(src, &feed)

	input, err := preprocess.ToTensor(feed)

	if err != nil {
		return nil, err
	}

	out, err := d.rt.Forward(input)

	if err != nil {
		return nil, err
	}

	disp, err := postprocess.NewDispMap(out, resizer.FeedWidth(), resizer.FeedHeight())

	if err != nil {
		return nil, fmt.Errorf("%w: disparity field: %v", ErrModelLoad, err)
	}

	resized, err := disp.Resize(resizer.SrcWidth(), resizer.SrcHeight())

	if err != nil {
		return nil, err
	}

	return &Prediction{
		Disp:        disp,
		DispResized: resized,
		CropClamped: clamped,
	}, nil
}
