// Package dataset maps dataset identifiers to on-disk frame paths, split
// files, and the stereo baseline scale factors used to turn network depth
// into metric depth.
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mradice/go-monodepth/camera"
)

var (
	// ErrUnknownKind is returned for a dataset identifier outside the
	// supported set
	ErrUnknownKind = errors.New("unknown dataset kind")
	// ErrUnknownSide is returned for a stereo side token outside the side map
	ErrUnknownSide = errors.New("unknown side token")
)

// Kind identifies a supported dataset
type Kind int

const (
	KITTI Kind = iota
	Oxford
)

// kittiStereoScale is the empirically derived calibration constant for the
// KITTI stereo rig, baseline 0.54m against the network's 0.1 depth unit
const kittiStereoScale = 5.4

// OxfordBaseline is the distance in meters between the left and right
// cameras of the Oxford RobotCar wide stereo rig
const OxfordBaseline = 0.24

// stereoScales maps each dataset kind to the factor applied to raw network
// depth to obtain metric depth.  Add new datasets here, not as branches in
// calling code.
var stereoScales = map[Kind]float64{
	KITTI:  kittiStereoScale,
	Oxford: OxfordBaseline / 0.1,
}

// splitNames maps each dataset kind to its split directory name
var splitNames = map[Kind]string{
	KITTI:  "eigen",
	Oxford: "oxford",
}

// sideMap resolves single character stereo side tokens to directory names
var sideMap = map[string]string{
	"l": "left",
	"r": "right",
}

// ParseKind converts a dataset identifier string to a Kind
func ParseKind(s string) (Kind, error) {

	switch s {
	case "KITTI":
		return KITTI, nil
	case "OXFORD":
		return Oxford, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// String returns the dataset identifier
func (k Kind) String() string {
	switch k {
	case KITTI:
		return "KITTI"
	case Oxford:
		return "OXFORD"
	default:
		return fmt.Sprintf("unknown kind %d", int(k))
	}
}

// StereoScale returns the metric depth scale factor for the dataset
func (k Kind) StereoScale() (float64, error) {

	scale, ok := stereoScales[k]

	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}

	return scale, nil
}

// SplitName returns the split directory name holding the dataset's
// test_files.txt
func (k Kind) SplitName() (string, error) {

	name, ok := splitNames[k]

	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}

	return name, nil
}

// ImagePath resolves the on-disk path of a frame.  The side token is mapped
// through the fixed side table and joined as folder/side/frame_index+ext.
// No file existence check is performed.
func ImagePath(folder, frameIndex, side, ext string) (string, error) {

	sideName, ok := sideMap[side]

	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSide, side)
	}

	return filepath.Join(folder, sideName, frameIndex+ext), nil
}

// OxfordCamera returns the normalized intrinsics of the Oxford RobotCar wide
// stereo camera adjusted for the dataset's fixed crop window.  The rig's
// principal point sits close enough to the crop center that flip
// augmentation remains usable downstream.
func OxfordCamera() camera.Intrinsics {
	return camera.CroppedIntrinsics(1280, 960,
		983.044006, 983.044006, 643.646973, 493.378998,
		camera.CropWindow{X0: 0, Y0: 300, X1: 1280, Y1: 760})
}
