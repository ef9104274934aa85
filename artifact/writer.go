// Package artifact persists inference outputs: numeric depth or disparity
// arrays as .npy files and colormapped visualization images, laid out under
// a dataset/model/run keyed directory tree.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mradice/go-monodepth/dataset"
	"github.com/mradice/go-monodepth/postprocess"
	"github.com/mradice/go-monodepth/render"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// Artifact holds the output file paths written for a single frame
type Artifact struct {
	// NpyPath is the numeric array file
	NpyPath string
	// ImagePath is the colormapped visualization file
	ImagePath string
}

// Writer persists inference outputs for one dataset/model/run combination.
// Each frame produces a unique file stem so writers are append only and
// never overwrite across frames.
type Writer struct {
	// dir is the fully resolved output directory
	dir string
	// renderer produces the visualization images
	renderer *render.DepthMap
}

// NewWriter creates the output directory <root>/<kind>/<modelLabel>/<runLabel>
// and returns a writer over it
func NewWriter(root string, kind dataset.Kind, modelLabel, runLabel string,
	p render.DepthMapParams) (*Writer, error) {

	dir := filepath.Join(root, kind.String(), modelLabel, runLabel)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}

	return &Writer{
		dir:      dir,
		renderer: render.NewDepthMap(p),
	}, nil
}

// Dir returns the resolved output directory
func (w *Writer) Dir() string {
	return w.dir
}

// Write persists a frame's outputs.  The numeric map is written unclipped as
// {stem}_depth.npy when metric, {stem}_disp.npy otherwise, as a float32
// array of shape (1,1,H,W).  The visualization map is percentile normalized,
// colormapped and written as {stem}_disp.jpeg.
func (w *Writer) Write(stem string, numeric, visual *postprocess.DispMap,
	metric bool) (Artifact, error) {

	npyPath, err := w.writeArray(stem, numeric, metric)

	if err != nil {
		return Artifact{}, err
	}

	imagePath, err := w.writeVisual(stem, visual)

	if err != nil {
		return Artifact{}, err
	}

	return Artifact{
		NpyPath:   npyPath,
		ImagePath: imagePath,
	}, nil
}

// writeArray serializes the map as a dense float32 .npy file
func (w *Writer) writeArray(stem string, m *postprocess.DispMap, metric bool) (string, error) {

	suffix := "_disp.npy"

	if metric {
		suffix = "_depth.npy"
	}

	path := filepath.Join(w.dir, stem+suffix)

	f, err := os.Create(path)

	if err != nil {
		return "", fmt.Errorf("error creating npy file: %w", err)
	}

	defer f.Close()

	// match the (1,1,H,W) shape of the original torch export
	dense := tensor.New(
		tensor.WithShape(1, 1, m.Height, m.Width),
		tensor.WithBacking(m.Data),
	)

	if err := dense.WriteNpy(f); err != nil {
		return "", fmt.Errorf("error writing npy file %s: %w", path, err)
	}

	return path, nil
}

// writeVisual renders the colormapped visualization and writes it as jpeg
func (w *Writer) writeVisual(stem string, m *postprocess.DispMap) (string, error) {

	path := filepath.Join(w.dir, stem+"_disp.jpeg")

	img := gocv.NewMat()
	defer img.Close()

	if err := w.renderer.Render(m, &img); err != nil {
		return "", err
	}

	if ok := gocv.IMWrite(path, img); !ok {
		return "", fmt.Errorf("failed to write visualization to %s", path)
	}

	return path, nil
}
