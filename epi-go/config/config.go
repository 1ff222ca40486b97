// Package config holds the hyperparameters of an EpiAtlas training run.
package config

import (
	"log"

	"github.com/epiclass/epiatlas/epi-golib/envutil"
	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/fileutil"
	"gopkg.in/yaml.v2"
)

// Hyperparams of a run. Keys missing from a file keep the defaults.
type Hyperparams struct {
	Category     string   `yaml:"category" json:"category"`
	Labels       []string `yaml:"labels" json:"labels"`
	NFold        int      `yaml:"n_fold" json:"n_fold"`
	MinClassSize int      `yaml:"min_class_size" json:"min_class_size"`
	TestRatio    float64  `yaml:"test_ratio" json:"test_ratio"`
	Oversample   bool     `yaml:"oversample" json:"oversample"`
	Normalize    bool     `yaml:"normalize" json:"normalize"`
	Workers      int      `yaml:"workers" json:"workers"`
	CacheSize    int      `yaml:"cache_size" json:"cache_size"`

	// network of each fold, see training.ModelSpec
	BatchSize      int     `yaml:"batch_size" json:"batch_size"`
	TrainingEpochs int     `yaml:"training_epochs" json:"training_epochs"`
	LearningRate   float64 `yaml:"learning_rate" json:"learning_rate"`
	LayerSize      int     `yaml:"layer_size" json:"layer_size"`
	NbLayer        int     `yaml:"nb_layer" json:"nb_layer"`

	// TrackTable is an optional .yaml or .json track table.
	TrackTable string `yaml:"track_table" json:"track_table"`
}

// Defaults returns the default hyperparameters.
func Defaults() Hyperparams {
	return Hyperparams{
		Category:       "assay",
		NFold:          10,
		MinClassSize:   10,
		Oversample:     true,
		Normalize:      true,
		Workers:        1,
		CacheSize:      20000,
		BatchSize:      64,
		TrainingEpochs: 50,
		LearningRate:   1e-5,
		LayerSize:      3000,
		NbLayer:        1,
	}
}

// Load reads hyperparameters from a YAML or JSON file (JSON documents are
// valid YAML) over the defaults, then applies the environment overrides.
func Load(path string) (Hyperparams, error) {
	h := Defaults()
	if path != "" {
		buf, err := fileutil.ReadFile(path)
		if err != nil {
			return h, errors.Wrapf(err, "error reading hyperparameters")
		}
		if err := yaml.Unmarshal(buf, &h); err != nil {
			return h, errors.Config("error parsing %s: %v", path, err)
		}
	}
	if err := h.ApplyEnv(); err != nil {
		return h, err
	}
	return h, h.Validate()
}

// ApplyEnv overrides the min class size and the network shape with the
// MIN_CLASS_SIZE, LAYER_SIZE and NB_LAYER environment variables.
func (h *Hyperparams) ApplyEnv() error {
	overrides := []struct {
		name  string
		field *int
	}{
		{"MIN_CLASS_SIZE", &h.MinClassSize},
		{"LAYER_SIZE", &h.LayerSize},
		{"NB_LAYER", &h.NbLayer},
	}
	for _, o := range overrides {
		v, ok, err := envutil.LookupInt(o.name)
		if err != nil {
			return err
		}
		if ok {
			log.Printf("%s=%d from environment", o.name, v)
			*o.field = v
		}
	}
	return nil
}

// Validate checks the hyperparameters.
func (h Hyperparams) Validate() error {
	switch {
	case h.Category == "":
		return errors.Config("no label category")
	case h.NFold < 2:
		return errors.Config("n_fold must be at least 2, got %d", h.NFold)
	case h.MinClassSize < 0:
		return errors.Config("min_class_size cannot be negative, got %d", h.MinClassSize)
	case h.TestRatio < 0 || h.TestRatio >= 1:
		return errors.Config("test_ratio must be in [0, 1), got %v", h.TestRatio)
	case h.LayerSize < 1 || h.NbLayer < 1:
		return errors.Config("invalid network shape %dx%d", h.NbLayer, h.LayerSize)
	case h.BatchSize < 1:
		return errors.Config("batch_size must be positive, got %d", h.BatchSize)
	case h.TrainingEpochs < 1:
		return errors.Config("training_epochs must be positive, got %d", h.TrainingEpochs)
	case h.LearningRate <= 0:
		return errors.Config("learning_rate must be positive, got %v", h.LearningRate)
	}
	return nil
}
