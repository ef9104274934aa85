package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mradice/go-monodepth/dataset"
	"github.com/mradice/go-monodepth/postprocess"
	"github.com/mradice/go-monodepth/render"
	"gorgonia.org/tensor"
)

func testMap(t *testing.T, w, h int) *postprocess.DispMap {
	t.Helper()

	data := make([]float32, w*h)

	for i := range data {
		data[i] = float32(i) / float32(len(data))
	}

	m, err := postprocess.NewDispMap(data, w, h)

	if err != nil {
		t.Fatal(err)
	}

	return m
}

func TestWriteNamesAndLayout(t *testing.T) {

	root := t.TempDir()

	w, err := NewWriter(root, dataset.Oxford, "2021-10-25-mono-oxford", "2014-06-26-09-31-18",
		render.DefaultDepthMapParams())

	if err != nil {
		t.Fatal(err)
	}

	m := testMap(t, 640, 192)

	art, err := w.Write("1403774683450553", m, m, false)

	if err != nil {
		t.Fatal(err)
	}

	expectedDir := filepath.Join(root, "OXFORD", "2021-10-25-mono-oxford", "2014-06-26-09-31-18")

	if w.Dir() != expectedDir {
		t.Errorf("expected dir %q, got %q", expectedDir, w.Dir())
	}

	if art.NpyPath != filepath.Join(expectedDir, "1403774683450553_disp.npy") {
		t.Errorf("unexpected npy path %q", art.NpyPath)
	}

	if art.ImagePath != filepath.Join(expectedDir, "1403774683450553_disp.jpeg") {
		t.Errorf("unexpected image path %q", art.ImagePath)
	}

	for _, path := range []string{art.NpyPath, art.ImagePath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing output file %s: %v", path, err)
		}
	}
}

func TestWriteMetricSuffix(t *testing.T) {

	w, err := NewWriter(t.TempDir(), dataset.KITTI, "model", "run",
		render.DefaultDepthMapParams())

	if err != nil {
		t.Fatal(err)
	}

	m := testMap(t, 32, 16)

	art, err := w.Write("0000000001", m, m, true)

	if err != nil {
		t.Fatal(err)
	}

	if filepath.Base(art.NpyPath) != "0000000001_depth.npy" {
		t.Errorf("metric output should use _depth.npy, got %q", filepath.Base(art.NpyPath))
	}
}

// the numeric artifact keeps outlier values that the visualization clips
func TestWriteNumericUnclipped(t *testing.T) {

	w, err := NewWriter(t.TempDir(), dataset.KITTI, "model", "run",
		render.DefaultDepthMapParams())

	if err != nil {
		t.Fatal(err)
	}

	m := testMap(t, 16, 8)
	m.Data[5] = 10000.0

	art, err := w.Write("frame", m, m, false)

	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(art.NpyPath)

	if err != nil {
		t.Fatal(err)
	}

	defer f.Close()

	readback := tensor.New(tensor.Of(tensor.Float32))

	if err := readback.ReadNpy(f); err != nil {
		t.Fatal(err)
	}

	shape := readback.Shape()

	if len(shape) != 4 || shape[2] != 8 || shape[3] != 16 {
		t.Fatalf("expected shape (1,1,8,16), got %v", shape)
	}

	values := readback.Data().([]float32)

	if values[5] != 10000.0 {
		t.Errorf("outlier value not preserved in npy: %f", values[5])
	}
}

func TestWriteManyFramesNoCollisions(t *testing.T) {

	w, err := NewWriter(t.TempDir(), dataset.Oxford, "model", "run",
		render.DefaultDepthMapParams())

	if err != nil {
		t.Fatal(err)
	}

	m := testMap(t, 32, 16)
	n := 5

	for i := 0; i < n; i++ {
		if _, err := w.Write(fmt.Sprintf("frame%06d", i), m, m, false); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(w.Dir())

	if err != nil {
		t.Fatal(err)
	}

	npy, jpeg := 0, 0

	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".npy":
			npy++
		case ".jpeg":
			jpeg++
		}
	}

	if npy != n || jpeg != n {
		t.Errorf("expected %d npy and %d jpeg files, got %d and %d", n, n, npy, jpeg)
	}
}
