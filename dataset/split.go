package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// FrameSample identifies a single on-disk frame of a dataset split
type FrameSample struct {
	// Folder is the path up to the directory holding the side directories
	Folder string
	// FrameIndex is the frame's file name without extension
	FrameIndex string
	// Side is the single character stereo side token, "l" or "r"
	Side string
}

// ImagePath resolves the sample to its on-disk image path
func (s FrameSample) ImagePath(ext string) (string, error) {
	return ImagePath(s.Folder, s.FrameIndex, s.Side, ext)
}

// ReadSplit reads a dataset split file containing one frame per line as
// whitespace separated "folder frame_index side" fields
func ReadSplit(file string) ([]FrameSample, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening split file: %w", err)
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	var samples []FrameSample
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())

		if text == "" {
			continue
		}

		fields := strings.Fields(text)

		if len(fields) != 3 {
			return nil, fmt.Errorf("split file %s line %d: expected 3 fields, got %d",
				file, line, len(fields))
		}

		samples = append(samples, FrameSample{
			Folder:     fields[0],
			FrameIndex: fields[1],
			Side:       fields[2],
		})
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading split file: %w", err)
	}

	return samples, nil
}
