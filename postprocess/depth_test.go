package postprocess

import (
	"math"
	"testing"
)

func TestDispToDepthRoundTrip(t *testing.T) {

	d := NewDepth(DefaultDepthParams())

	// sigmoid outputs spanning the full range
	raw := []float32{0.0, 0.1, 0.25, 0.5, 0.75, 0.9, 1.0}

	disp, err := NewDispMap(raw, len(raw), 1)

	if err != nil {
		t.Fatal(err)
	}

	scaled, depth := d.DispToDepth(disp)

	minDisp := float32(1.0 / d.Params.MaxDepth)
	maxDisp := float32(1.0 / d.Params.MinDepth)

	for i := range raw {
		// depth must invert the scaled disparity
		if math.Abs(float64(depth.Data[i]*scaled.Data[i])-1.0) > 1e-5 {
			t.Errorf("pixel %d: depth*disp=%f, expected 1",
				i, depth.Data[i]*scaled.Data[i])
		}

		// recover the sigmoid value from the scaled disparity
		recovered := (scaled.Data[i] - minDisp) / (maxDisp - minDisp)

		if math.Abs(float64(recovered-raw[i])) > 1e-6 {
			t.Errorf("pixel %d: recovered disparity %f, expected %f",
				i, recovered, raw[i])
		}
	}

	// bounds of the linear mapping
	if math.Abs(float64(scaled.Data[0])-1.0/100) > 1e-7 {
		t.Errorf("disp=0 should map to min disparity, got %f", scaled.Data[0])
	}

	if math.Abs(float64(scaled.Data[len(raw)-1])-1.0/0.1) > 1e-4 {
		t.Errorf("disp=1 should map to max disparity, got %f", scaled.Data[len(raw)-1])
	}
}

func TestToMetric(t *testing.T) {

	d := NewDepth(DefaultDepthParams())

	tests := []struct {
		rawDepth float32
		scale    float64
		expected float32
	}{
		// oxford baseline 0.24m over the 0.1 network depth unit
		{10.0, 0.24 / 0.1, 24.0},
		// kitti stereo rig constant
		{10.0, 5.4, 54.0},
		{1.0, 2.4, 2.4},
	}

	for _, tc := range tests {
		depth := &DispMap{Data: []float32{tc.rawDepth}, Width: 1, Height: 1}

		metric := d.ToMetric(depth, tc.scale)

		if math.Abs(float64(metric.Data[0]-tc.expected)) > 1e-5 {
			t.Errorf("depth %f scale %f: expected %f, got %f",
				tc.rawDepth, tc.scale, tc.expected, metric.Data[0])
		}

		// input must be untouched
		if depth.Data[0] != tc.rawDepth {
			t.Errorf("input depth modified: %f", depth.Data[0])
		}
	}
}

func TestNewDispMapBadLength(t *testing.T) {

	if _, err := NewDispMap(make([]float32, 5), 2, 3); err == nil {
		t.Error("expected error for mismatched buffer length")
	}
}

func TestDispMapMin(t *testing.T) {

	m := &DispMap{Data: []float32{3, 1, 2, -4, 5, 0}, Width: 3, Height: 2}

	if m.Min() != -4 {
		t.Errorf("expected min -4, got %f", m.Min())
	}
}

func TestDispMapResize(t *testing.T) {

	// constant map stays constant under bilinear interpolation
	data := make([]float32, 8*4)

	for i := range data {
		data[i] = 2.5
	}

	m, err := NewDispMap(data, 8, 4)

	if err != nil {
		t.Fatal(err)
	}

	resized, err := m.Resize(16, 8)

	if err != nil {
		t.Fatal(err)
	}

	if resized.Width != 16 || resized.Height != 8 {
		t.Fatalf("expected 16x8, got %dx%d", resized.Width, resized.Height)
	}

	for i, v := range resized.Data {
		if math.Abs(float64(v)-2.5) > 1e-6 {
			t.Fatalf("pixel %d: expected 2.5, got %f", i, v)
		}
	}
}
