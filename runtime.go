package monodepth

import (
	"errors"
	"fmt"
)

var (
	// ErrModelLoad indicates a checkpoint is missing required entries or its
	// tensor shapes don't line up with the requested configuration
	ErrModelLoad = errors.New("model load failed")
	// ErrImageDecode indicates a source image could not be read or decoded
	ErrImageDecode = errors.New("image decode failed")
	// ErrUnsupportedResNet indicates a resnet depth selector outside the
	// supported encoder configurations
	ErrUnsupportedResNet = errors.New("unsupported resnet depth")
	// ErrUnknownModel indicates a pretrained model name outside the known set
	ErrUnknownModel = errors.New("unknown pretrained model")
)

// Runtime is the model runtime collaborator that executes the depth
// network's forward pass.  Implementations are expected to be deterministic
// given weights and input, evaluation mode only.  A Runtime instance is not
// safe for concurrent Forward calls, use a Pool with one runtime per worker.
type Runtime interface {
	// FeedWidth returns the input resolution width the checkpoint was
	// trained at
	FeedWidth() int
	// FeedHeight returns the input resolution height the checkpoint was
	// trained at
	FeedHeight() int
	// Forward runs the encoder and decoder over an NCHW RGB float32 input
	// of size 3*FeedHeight*FeedWidth and returns the sigmoid disparity
	// field of size FeedHeight*FeedWidth
	Forward(input []float32) ([]float32, error)
	// Close releases the runtime's resources
	Close() error
}

// encoderChannels maps supported resnet depth selectors to the channel
// progression of the encoder's five feature maps
var encoderChannels = map[int][]int{
	18: {64, 64, 128, 256, 512},
	50: {64, 256, 512, 1024, 2048},
}

// EncoderChannels returns the expected channel counts of the encoder's
// feature maps for the given resnet depth
func EncoderChannels(resnet int) ([]int, error) {

	channels, ok := encoderChannels[resnet]

	if !ok {
		return nil, fmt.Errorf("%w: %d, supported depths are 18 and 50",
			ErrUnsupportedResNet, resnet)
	}

	return channels, nil
}
