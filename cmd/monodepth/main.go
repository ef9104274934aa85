/*
Command monodepth runs a pretrained monocular depth model over a single
image or a folder of dataset frames, writing numeric depth/disparity arrays
and colormapped visualizations.
*/
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mradice/go-monodepth"
	"github.com/mradice/go-monodepth/artifact"
	"github.com/mradice/go-monodepth/camera"
	"github.com/mradice/go-monodepth/dataset"
	"github.com/mradice/go-monodepth/postprocess"
	"github.com/mradice/go-monodepth/render"
	"golang.org/x/sync/errgroup"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	imgPath := flag.String("i", "", "Path to a test image or folder of images")
	modelName := flag.String("m", "", "Name of the pretrained model to use ["+
		strings.Join(monodepth.ModelNames(), "|")+"]")
	modelDir := flag.String("model-dir", "models", "Directory holding pretrained model folders")
	datasetKind := flag.String("d", "", "Dataset kind for metric prediction [KITTI|OXFORD]")
	metric := flag.Bool("metric", false, "Predict metric depth instead of disparity, "+
		"only meaningful for stereo-trained models")
	cropArea := flag.String("crop", "0,240,1280,720", "Crop area x0,y0,x1,y1 applied to OXFORD images")
	outputRoot := flag.String("o", "results", "Output root directory")
	modelLabel := flag.String("label", "", "Model label used to order output folders")
	runLabel := flag.String("run", "", "Dataset run label used to order output folders")
	useTestSet := flag.Bool("use-test-set", false, "Use the dataset's test split file to find images")
	splitsDir := flag.String("splits", "splits", "Directory holding dataset split files")
	ext := flag.String("ext", "jpg", "Image extension to search for in folders")
	resnet := flag.Int("resnet", 18, "ResNet depth of the encoder [18|50]")
	workers := flag.Int("workers", 1, "Number of parallel inference workers")
	ortLib := flag.String("ort", "", "Path to the onnxruntime shared library")

	flag.Parse()

	if *imgPath == "" || *modelName == "" || *datasetKind == "" ||
		*modelLabel == "" || *runLabel == "" {
		flag.Usage()
		log.Fatal("The -i, -m, -d, -label and -run flags are required")
	}

	// configuration errors abort before any model load
	kind, err := dataset.ParseKind(*datasetKind)

	if err != nil {
		log.Fatal("Error parsing dataset kind: ", err)
	}

	model, err := monodepth.LookupModel(*modelName)

	if err != nil {
		log.Fatal("Error looking up model: ", err)
	}

	if *metric && !model.Stereo {
		log.Println("Warning: metric depth only makes sense for stereo-trained models. " +
			"For mono-trained models, output depths will not be in metric space.")
	}

	scale, err := kind.StereoScale()

	if err != nil {
		log.Fatal("Error resolving stereo scale: ", err)
	}

	// cropping is applied only for OXFORD frames
	var crop *camera.CropWindow

	if kind == dataset.Oxford {
		crop, err = parseCrop(*cropArea)

		if err != nil {
			log.Fatal("Error parsing crop area: ", err)
		}
	}

	paths, err := collectPaths(*imgPath, kind, *splitsDir, *useTestSet, *ext)

	if err != nil {
		log.Fatal("Error finding input images: ", err)
	}

	log.Printf("-> Predicting on %d test images\n", len(paths))

	writer, err := artifact.NewWriter(*outputRoot, kind, *modelLabel, *runLabel,
		render.DefaultDepthMapParams())

	if err != nil {
		log.Fatal("Error creating output directory: ", err)
	}

	checkpoint := filepath.Join(*modelDir, model.Name)
	params := monodepth.RuntimeParams{
		ResNetDepth: *resnet,
		LibraryPath: *ortLib,
	}

	log.Printf("-> Loading model from %s\n", checkpoint)

	pool, err := monodepth.NewPool(*workers, checkpoint, params)

	if err != nil {
		log.Fatal("Error loading checkpoint: ", err)
	}

	defer pool.Close()

	// sanity check the checkpoint against the named configuration
	rt := pool.Get()

	if rt.FeedWidth() != model.FeedWidth || rt.FeedHeight() != model.FeedHeight {
		log.Printf("Warning: checkpoint feed resolution %dx%d differs from %s (%dx%d)\n",
			rt.FeedWidth(), rt.FeedHeight(), model.Name, model.FeedWidth, model.FeedHeight)
	}

	pool.Return(rt)

	converter := postprocess.NewDepth(postprocess.DefaultDepthParams())

	start := time.Now()

	var g errgroup.Group
	g.SetLimit(*workers)

	for idx, path := range paths {
		idx, path := idx, path

		g.Go(func() error {
			rt := pool.Get()
			defer pool.Return(rt)

			art, err := processFrame(monodepth.NewDriver(rt), converter, writer,
				path, crop, scale, *metric)

			if err != nil {
				return fmt.Errorf("processing %s: %w", path, err)
			}

			log.Printf("   Processed %d of %d images - saved predictions to:\n", idx+1, len(paths))
			log.Printf("   - %s\n", art.ImagePath)
			log.Printf("   - %s\n", art.NpyPath)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatal("Inference run failed: ", err)
	}

	log.Printf("-> Done! %d images in %s\n", len(paths), time.Since(start).String())
}

// processFrame runs the full pipeline for one image: inference, disparity to
// depth conversion, optional metric scaling and artifact persistence
func processFrame(driver *monodepth.Driver, converter *postprocess.Depth,
	writer *artifact.Writer, path string, crop *camera.CropWindow,
	scale float64, metric bool) (artifact.Artifact, error) {

	pred, err := driver.InferFile(path, crop)

	if err != nil {
		return artifact.Artifact{}, err
	}

	if pred.CropClamped {
		log.Printf("Warning: crop window extends outside %s, clamped to image bounds\n", path)
	}

	scaledDisp, rawDepth := converter.DispToDepth(pred.Disp)

	numeric := scaledDisp

	if metric {
		numeric = converter.ToMetric(rawDepth, scale)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return writer.Write(stem, numeric, pred.DispResized, metric)
}

// collectPaths resolves the list of input images: a single file, a dataset
// split walk, or a directory glob
func collectPaths(imgPath string, kind dataset.Kind, splitsDir string,
	useTestSet bool, ext string) ([]string, error) {

	info, err := os.Stat(imgPath)

	if err != nil {
		return nil, fmt.Errorf("cannot find image path %s: %w", imgPath, err)
	}

	// single image
	if !info.IsDir() {
		return []string{imgPath}, nil
	}

	if useTestSet {
		splitName, err := kind.SplitName()

		if err != nil {
			return nil, err
		}

		samples, err := dataset.ReadSplit(filepath.Join(splitsDir, splitName, "test_files.txt"))

		if err != nil {
			return nil, err
		}

		paths := make([]string, 0, len(samples))

		for _, sample := range samples {
			path, err := sample.ImagePath("." + ext)

			if err != nil {
				return nil, err
			}

			// split folders may be absolute or relative to the image root
			if !filepath.IsAbs(path) {
				path = filepath.Join(imgPath, path)
			}

			paths = append(paths, path)
		}

		return paths, nil
	}

	// search the folder for images
	matches, err := filepath.Glob(filepath.Join(imgPath, "*."+ext))

	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(matches))

	for _, match := range matches {
		// don't try to predict disparity for a disparity image
		if strings.HasSuffix(match, "_disp.jpeg") || strings.HasSuffix(match, "_disp.jpg") {
			continue
		}

		paths = append(paths, match)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no *.%s images found in %s", ext, imgPath)
	}

	return paths, nil
}

// parseCrop parses a crop window given as "x0,y0,x1,y1"
func parseCrop(s string) (*camera.CropWindow, error) {

	parts := strings.Split(s, ",")

	if len(parts) != 4 {
		return nil, fmt.Errorf("expected 4 comma separated values, got %q", s)
	}

	vals := make([]int, 4)

	for i, part := range parts {
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &vals[i]); err != nil {
			return nil, fmt.Errorf("invalid crop value %q: %w", part, err)
		}
	}

	if vals[2] <= vals[0] || vals[3] <= vals[1] {
		return nil, fmt.Errorf("degenerate crop window %q", s)
	}

	return &camera.CropWindow{X0: vals[0], Y0: vals[1], X1: vals[2], Y1: vals[3]}, nil
}
