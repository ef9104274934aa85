package monodepth

import (
	"fmt"
	"sort"
	"strings"
)

// Model describes a known pretrained network configuration
type Model struct {
	// Name of the pretrained configuration
	Name string
	// FeedWidth is the input resolution width the model was trained at
	FeedWidth int
	// FeedHeight is the input resolution height the model was trained at
	FeedHeight int
	// Stereo is true for stereo trained models, for which metric depth
	// scaling is physically meaningful
	Stereo bool
}

// models is the set of known pretrained configurations
var models = map[string]Model{
	"mono_640x192":              {"mono_640x192", 640, 192, false},
	"stereo_640x192":            {"stereo_640x192", 640, 192, true},
	"mono+stereo_640x192":       {"mono+stereo_640x192", 640, 192, true},
	"mono_no_pt_640x192":        {"mono_no_pt_640x192", 640, 192, false},
	"stereo_no_pt_640x192":      {"stereo_no_pt_640x192", 640, 192, true},
	"mono+stereo_no_pt_640x192": {"mono+stereo_no_pt_640x192", 640, 192, true},
	"mono_1024x320":             {"mono_1024x320", 1024, 320, false},
	"stereo_1024x320":           {"stereo_1024x320", 1024, 320, true},
	"mono+stereo_1024x320":      {"mono+stereo_1024x320", 1024, 320, true},
	"oxford_stereo_640x192":     {"oxford_stereo_640x192", 640, 192, true},
	"oxford_mono_640x192":       {"oxford_mono_640x192", 640, 192, false},
	"oxford":                    {"oxford", 640, 192, false},
}

// LookupModel returns the pretrained configuration for the given name
func LookupModel(name string) (Model, error) {

	m, ok := models[name]

	if !ok {
		return Model{}, fmt.Errorf("%w: %q, known models are %s",
			ErrUnknownModel, name, strings.Join(ModelNames(), ", "))
	}

	return m, nil
}

// ModelNames returns the sorted names of all known pretrained configurations
func ModelNames() []string {

	names := make([]string, 0, len(models))

	for name := range models {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
