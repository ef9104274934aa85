package monodepth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// checkpoint file names inside a model directory, mirroring the
// encoder.pth/depth.pth pair of the original torch checkpoints
const (
	encoderFile = "encoder.onnx"
	decoderFile = "depth.onnx"
)

// RuntimeParams configure checkpoint loading
type RuntimeParams struct {
	// ResNetDepth selects the encoder backbone, 18 or 50
	ResNetDepth int
	// LibraryPath is the path to the onnxruntime shared library.  If empty
	// the ONNXRUNTIME_SHARED_LIBRARY_PATH environment variable is respected
	LibraryPath string
}

// DefaultRuntimeParams returns the standard resnet18 configuration
func DefaultRuntimeParams() RuntimeParams {
	return RuntimeParams{
		ResNetDepth: 18,
	}
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// initORT initializes the ONNX Runtime environment once per process
func initORT(libraryPath string) error {

	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		} else if p := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); p != "" {
			ort.SetSharedLibraryPath(p)
		}

		ortInitErr = ort.InitializeEnvironment()
	})

	return ortInitErr
}

// ONNXRuntime runs the two-stage depth network through ONNX Runtime.  The
// encoder's feature map tensors are bound directly as the decoder session's
// inputs so a forward pass is two session runs over shared buffers.  Not
// safe for concurrent Forward calls.
type ONNXRuntime struct {
	feedWidth  int
	feedHeight int
	// input is the encoder's NCHW image tensor
	input *ort.Tensor[float32]
	// features are the encoder outputs, bound as decoder inputs
	features []*ort.Tensor[float32]
	// outputs are the decoder's disparity tensors at each scale
	outputs []*ort.Tensor[float32]
	// dispIdx is the decoder output at full feed resolution
	dispIdx int
	encoder *ort.AdvancedSession
	decoder *ort.AdvancedSession
}

// LoadCheckpoint loads a model directory containing encoder.onnx and
// depth.onnx.  The feed resolution is read from the encoder's input shape
// and the encoder feature maps are validated against the resnet depth
// selector's expected channel progression.
func LoadCheckpoint(modelDir string, p RuntimeParams) (*ONNXRuntime, error) {

	channels, err := EncoderChannels(p.ResNetDepth)

	if err != nil {
		return nil, err
	}

	encoderPath := filepath.Join(modelDir, encoderFile)
	decoderPath := filepath.Join(modelDir, decoderFile)

	for _, path := range []string{encoderPath, decoderPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: checkpoint file missing: %s", ErrModelLoad, path)
		}
	}

	if err := initORT(p.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: onnxruntime init: %v", ErrModelLoad, err)
	}

	encIn, encOut, err := ort.GetInputOutputInfo(encoderPath)

	if err != nil {
		return nil, fmt.Errorf("%w: reading encoder graph: %v", ErrModelLoad, err)
	}

	if len(encIn) != 1 {
		return nil, fmt.Errorf("%w: encoder expects 1 input, has %d", ErrModelLoad, len(encIn))
	}

	inDims, err := staticDims(encIn[0].Dimensions)

	if err != nil {
		return nil, fmt.Errorf("%w: encoder input: %v", ErrModelLoad, err)
	}

	if len(inDims) != 4 || inDims[0] != 1 || inDims[1] != 3 {
		return nil, fmt.Errorf("%w: encoder input shape %v, expected (1,3,H,W)",
			ErrModelLoad, inDims)
	}

	r := &ONNXRuntime{
		feedHeight: inDims[2],
		feedWidth:  inDims[3],
	}

	// encoder must expose one feature map per backbone stage with the
	// channel progression of the selected resnet depth
	if len(encOut) != len(channels) {
		return nil, fmt.Errorf("%w: encoder has %d outputs, resnet%d expects %d",
			ErrModelLoad, len(encOut), p.ResNetDepth, len(channels))
	}

	r.input, err = ort.NewEmptyTensor[float32](ort.NewShape(1, 3,
		int64(r.feedHeight), int64(r.feedWidth)))

	if err != nil {
		return nil, fmt.Errorf("%w: allocating input tensor: %v", ErrModelLoad, err)
	}

	encOutNames := make([]string, len(encOut))
	featureDims := make([][]int, len(encOut))

	for i, info := range encOut {
		dims, err := staticDims(info.Dimensions)

		if err != nil {
			r.Close()
			return nil, fmt.Errorf("%w: encoder output %s: %v", ErrModelLoad, info.Name, err)
		}

		if len(dims) != 4 || dims[1] != channels[i] {
			r.Close()
			return nil, fmt.Errorf("%w: encoder output %s shape %v, resnet%d expects %d channels",
				ErrModelLoad, info.Name, dims, p.ResNetDepth, channels[i])
		}

		feature, err := ort.NewEmptyTensor[float32](info.Dimensions.Clone())

		if err != nil {
			r.Close()
			return nil, fmt.Errorf("%w: allocating feature tensor: %v", ErrModelLoad, err)
		}

		r.features = append(r.features, feature)
		encOutNames[i] = info.Name
		featureDims[i] = dims
	}

	decIn, decOut, err := ort.GetInputOutputInfo(decoderPath)

	if err != nil {
		r.Close()
		return nil, fmt.Errorf("%w: reading decoder graph: %v", ErrModelLoad, err)
	}

	// pair each decoder input with the encoder feature map of the same
	// shape; the feature pyramid shapes are all distinct
	decInNames := make([]string, len(decIn))
	decInputs := make([]ort.Value, len(decIn))

	if len(decIn) != len(r.features) {
		r.Close()
		return nil, fmt.Errorf("%w: decoder has %d inputs, encoder produces %d features",
			ErrModelLoad, len(decIn), len(r.features))
	}

	for i, info := range decIn {
		dims, err := staticDims(info.Dimensions)

		if err != nil {
			r.Close()
			return nil, fmt.Errorf("%w: decoder input %s: %v", ErrModelLoad, info.Name, err)
		}

		matched := -1

		for j, fdims := range featureDims {
			if dimsEqual(dims, fdims) {
				matched = j
				break
			}
		}

		if matched < 0 {
			r.Close()
			return nil, fmt.Errorf("%w: decoder input %s shape %v matches no encoder feature",
				ErrModelLoad, info.Name, dims)
		}

		decInNames[i] = info.Name
		decInputs[i] = r.features[matched]
	}

	// the decoder output at full feed resolution is the scale 0 disparity
	r.dispIdx = -1
	decOutNames := make([]string, len(decOut))
	decOutputs := make([]ort.Value, len(decOut))

	for i, info := range decOut {
		dims, err := staticDims(info.Dimensions)

		if err != nil {
			r.Close()
			return nil, fmt.Errorf("%w: decoder output %s: %v", ErrModelLoad, info.Name, err)
		}

		out, err := ort.NewEmptyTensor[float32](info.Dimensions.Clone())

		if err != nil {
			r.Close()
			return nil, fmt.Errorf("%w: allocating output tensor: %v", ErrModelLoad, err)
		}

		r.outputs = append(r.outputs, out)
		decOutNames[i] = info.Name
		decOutputs[i] = out

		if len(dims) == 4 && dims[2] == r.feedHeight && dims[3] == r.feedWidth {
			r.dispIdx = i
		}
	}

	if r.dispIdx < 0 {
		r.Close()
		return nil, fmt.Errorf("%w: decoder produces no disparity at feed resolution %dx%d",
			ErrModelLoad, r.feedWidth, r.feedHeight)
	}

	r.encoder, err = ort.NewAdvancedSession(encoderPath,
		[]string{encIn[0].Name}, encOutNames,
		[]ort.Value{r.input}, toValues(r.features), nil)

	if err != nil {
		r.Close()
		return nil, fmt.Errorf("%w: creating encoder session: %v", ErrModelLoad, err)
	}

	r.decoder, err = ort.NewAdvancedSession(decoderPath,
		decInNames, decOutNames, decInputs, decOutputs, nil)

	if err != nil {
		r.Close()
		return nil, fmt.Errorf("%w: creating decoder session: %v", ErrModelLoad, err)
	}

	return r, nil
}

// FeedWidth returns the checkpoint's trained input width
func (r *ONNXRuntime) FeedWidth() int {
	return r.feedWidth
}

// FeedHeight returns the checkpoint's trained input height
func (r *ONNXRuntime) FeedHeight() int {
	return r.feedHeight
}

// Forward runs the encoder then decoder and returns a copy of the sigmoid
// disparity field at feed resolution
func (r *ONNXRuntime) Forward(input []float32) ([]float32, error) {

	buf := r.input.GetData()

	if len(input) != len(buf) {
		return nil, fmt.Errorf("input length %d does not match feed tensor %d",
			len(input), len(buf))
	}

	copy(buf, input)

	if err := r.encoder.Run(); err != nil {
		return nil, fmt.Errorf("encoder forward pass: %w", err)
	}

	if err := r.decoder.Run(); err != nil {
		return nil, fmt.Errorf("decoder forward pass: %w", err)
	}

	disp := r.outputs[r.dispIdx].GetData()
	out := make([]float32, len(disp))
	copy(out, disp)

	return out, nil
}

// Close destroys the sessions and tensors, releasing the C resources
func (r *ONNXRuntime) Close() error {

	if r.decoder != nil {
		r.decoder.Destroy()
	}

	if r.encoder != nil {
		r.encoder.Destroy()
	}

	for _, t := range r.outputs {
		t.Destroy()
	}

	for _, t := range r.features {
		t.Destroy()
	}

	if r.input != nil {
		r.input.Destroy()
	}

	return nil
}

// staticDims converts an ONNX shape to ints, rejecting dynamic dimensions.
// Checkpoints must be exported at a fixed feed resolution.
func staticDims(shape ort.Shape) ([]int, error) {

	dims := make([]int, len(shape))

	for i, d := range shape {
		if d <= 0 {
			return nil, fmt.Errorf("dynamic dimension at axis %d in shape %v", i, shape)
		}

		dims[i] = int(d)
	}

	return dims, nil
}

// dimsEqual reports whether two dimension lists are identical
func dimsEqual(a, b []int) bool {

	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// toValues converts a tensor slice to the session's value interface slice
func toValues(tensors []*ort.Tensor[float32]) []ort.Value {

	values := make([]ort.Value, len(tensors))

	for i, t := range tensors {
		values[i] = t
	}

	return values
}
