package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestImagePath(t *testing.T) {

	tests := []struct {
		folder     string
		frameIndex string
		side       string
		ext        string
		expected   string
	}{
		{"2014-06-26-09-31-18", "1403774683450553", "l", ".jpg",
			filepath.Join("2014-06-26-09-31-18", "left", "1403774683450553.jpg")},
		{"2014-06-26-09-31-18", "1403774683450553", "r", ".jpg",
			filepath.Join("2014-06-26-09-31-18", "right", "1403774683450553.jpg")},
		{filepath.Join("data", "run"), "000042", "l", ".png",
			filepath.Join("data", "run", "left", "000042.png")},
	}

	for _, tc := range tests {
		path, err := ImagePath(tc.folder, tc.frameIndex, tc.side, tc.ext)

		if err != nil {
			t.Fatalf("unexpected error resolving %q: %v", tc.side, err)
		}

		if path != tc.expected {
			t.Errorf("expected path %q, got %q", tc.expected, path)
		}
	}
}

func TestImagePathUnknownSide(t *testing.T) {

	for _, side := range []string{"x", "", "left", "2"} {
		_, err := ImagePath("folder", "000001", side, ".jpg")

		if !errors.Is(err, ErrUnknownSide) {
			t.Errorf("side %q: expected ErrUnknownSide, got %v", side, err)
		}
	}
}

func TestParseKind(t *testing.T) {

	k, err := ParseKind("KITTI")

	if err != nil || k != KITTI {
		t.Errorf("expected KITTI, got %v, %v", k, err)
	}

	k, err = ParseKind("OXFORD")

	if err != nil || k != Oxford {
		t.Errorf("expected Oxford, got %v, %v", k, err)
	}

	_, err = ParseKind("CITYSCAPES")

	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestStereoScale(t *testing.T) {

	tests := []struct {
		kind     Kind
		expected float64
	}{
		{KITTI, 5.4},
		{Oxford, 2.4},
	}

	for _, tc := range tests {
		scale, err := tc.kind.StereoScale()

		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tc.kind, err)
		}

		if math.Abs(scale-tc.expected) > 1e-9 {
			t.Errorf("%s: expected scale %f, got %f", tc.kind, tc.expected, scale)
		}
	}

	if _, err := Kind(99).StereoScale(); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind for invalid kind, got %v", err)
	}
}

func TestSplitName(t *testing.T) {

	name, err := KITTI.SplitName()

	if err != nil || name != "eigen" {
		t.Errorf("expected eigen, got %q, %v", name, err)
	}

	name, err = Oxford.SplitName()

	if err != nil || name != "oxford" {
		t.Errorf("expected oxford, got %q, %v", name, err)
	}
}

func TestReadSplit(t *testing.T) {

	content := "2014-06-26-09-31-18 1403774683450553 l\n" +
		"\n" +
		"2014-06-26-09-31-18 1403774683512779 r\n"

	file := filepath.Join(t.TempDir(), "test_files.txt")

	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	samples, err := ReadSplit(file)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}

	if samples[0].Side != "l" || samples[1].Side != "r" {
		t.Errorf("side tokens wrong: %q, %q", samples[0].Side, samples[1].Side)
	}

	path, err := samples[0].ImagePath(".jpg")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := filepath.Join("2014-06-26-09-31-18", "left", "1403774683450553.jpg")

	if path != expected {
		t.Errorf("expected %q, got %q", expected, path)
	}
}

func TestReadSplitMalformed(t *testing.T) {

	file := filepath.Join(t.TempDir(), "test_files.txt")

	if err := os.WriteFile(file, []byte("folder 000001\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadSplit(file); err == nil {
		t.Error("expected error for malformed split line")
	}
}

func TestOxfordCamera(t *testing.T) {

	k := OxfordCamera()

	if math.Abs(k.Fx-0.7680) > 1e-4 {
		t.Errorf("expected fx~0.7680, got %f", k.Fx)
	}

	if math.Abs(k.Fy-1.0240) > 1e-4 {
		t.Errorf("expected fy~1.0240, got %f", k.Fy)
	}
}
