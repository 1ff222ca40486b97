// Package training trains and evaluates classifiers on cross-validation folds.
package training

import (
	"math"
	"path/filepath"

	"github.com/epiclass/epiatlas/epi-go/config"
	"github.com/epiclass/epiatlas/epi-go/data"
	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/serialization"
	"gonum.org/v1/gonum/floats"
)

// Model is a classifier over encoded labels.
type Model interface {
	// Fit trains on train; valid may be used for monitoring.
	Fit(train, valid *data.Data) error
	// Predict returns the class probabilities of every sample of d.
	Predict(d *data.Data) ([][]float64, error)
	// Save writes the model to dir.
	Save(dir string) error
}

// Restorer loads a model saved in dir.
type Restorer func(dir string) (Model, error)

// ModelSpec describes the model of one fold. It is written to every split
// directory, where the dense network trainer reads its shape and schedule.
type ModelSpec struct {
	Classes        int     `json:"classes"`
	BatchSize      int     `json:"batch_size"`
	TrainingEpochs int     `json:"training_epochs"`
	LearningRate   float64 `json:"learning_rate"`
	LayerSize      int     `json:"layer_size"`
	NbLayer        int     `json:"nb_layer"`
}

// NewModelSpec returns the network hyperparameters of h. Classes is set per fold.
func NewModelSpec(h config.Hyperparams) ModelSpec {
	return ModelSpec{
		BatchSize:      h.BatchSize,
		TrainingEpochs: h.TrainingEpochs,
		LearningRate:   h.LearningRate,
		LayerSize:      h.LayerSize,
		NbLayer:        h.NbLayer,
	}
}

// NewModelFunc creates an untrained model.
type NewModelFunc func(spec ModelSpec) Model

const centroidFile = "nearest_centroid.json"

// NearestCentroid predicts the class of the closest mean training vector.
// Probabilities are the softmax of the negated euclidean distances.
type NearestCentroid struct {
	Centroids [][]float64 `json:"centroids"`
}

// NewNearestCentroid returns an untrained model over spec.Classes classes.
// The network fields of spec do not apply.
func NewNearestCentroid(spec ModelSpec) Model {
	return &NearestCentroid{Centroids: make([][]float64, spec.Classes)}
}

// RestoreNearestCentroid implements Restorer.
func RestoreNearestCentroid(dir string) (Model, error) {
	var m NearestCentroid
	if err := serialization.Decode(filepath.Join(dir, centroidFile), &m); err != nil {
		return nil, errors.Wrapf(err, "error restoring model")
	}
	return &m, nil
}

// Fit implements Model.
func (m *NearestCentroid) Fit(train, valid *data.Data) error {
	if train.Len() == 0 {
		return errors.New("cannot fit on an empty training set")
	}
	counts := make([]int, len(m.Centroids))
	sums := make([][]float64, len(m.Centroids))
	for i := 0; i < train.Len(); i++ {
		c := train.EncodedLabel(i)
		if c < 0 || c >= len(m.Centroids) {
			return errors.Errorf("label %d out of range of %d classes", c, len(m.Centroids))
		}
		v := toFloat64(train.Signal(i))
		if sums[c] == nil {
			sums[c] = v
		} else {
			if len(v) != len(sums[c]) {
				return errors.Errorf("%s: vector length %d, expected %d", train.ID(i), len(v), len(sums[c]))
			}
			floats.Add(sums[c], v)
		}
		counts[c]++
	}
	for c, s := range sums {
		if s != nil {
			floats.Scale(1/float64(counts[c]), s)
		}
		m.Centroids[c] = s
	}
	return nil
}

// Predict implements Model. Classes absent from training get probability 0.
func (m *NearestCentroid) Predict(d *data.Data) ([][]float64, error) {
	out := make([][]float64, d.Len())
	for i := range out {
		v := toFloat64(d.Signal(i))
		dists := make([]float64, len(m.Centroids))
		closest := math.Inf(1)
		for c, centroid := range m.Centroids {
			if centroid == nil {
				dists[c] = math.Inf(1)
				continue
			}
			if len(centroid) != len(v) {
				return nil, errors.Errorf("%s: vector length %d, expected %d", d.ID(i), len(v), len(centroid))
			}
			dists[c] = floats.Distance(v, centroid, 2)
			closest = math.Min(closest, dists[c])
		}
		if math.IsInf(closest, 1) {
			return nil, errors.New("model is not trained")
		}

		probs := make([]float64, len(dists))
		for c, dist := range dists {
			probs[c] = math.Exp(closest - dist)
		}
		floats.Scale(1/floats.Sum(probs), probs)
		out[i] = probs
	}
	return out, nil
}

// Save implements Model.
func (m *NearestCentroid) Save(dir string) error {
	return serialization.Encode(filepath.Join(dir, centroidFile), m)
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
