package training

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/epiclass/epiatlas/epi-go/config"
	"github.com/epiclass/epiatlas/epi-go/data"
	"github.com/epiclass/epiatlas/epi-go/epiatlas"
	"github.com/epiclass/epiatlas/epi-go/metadata"
	"github.com/epiclass/epiatlas/epi-go/signal"
	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/serialization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFolds builds two well separated classes of four raw+pval+fc groups.
func newFolds(t *testing.T) *epiatlas.FoldFactory {
	var records []*metadata.Record
	store := make(signal.Store)
	for _, label := range []string{"a", "b"} {
		center := float32(0)
		if label == "b" {
			center = 10
		}
		for i := 0; i < 4; i++ {
			uuid := fmt.Sprintf("%s%d", label, i)
			for j, tt := range []string{"raw", "pval", "fc"} {
				md5 := uuid + "-" + tt
				records = append(records, &metadata.Record{
					MD5: md5, TrackType: tt, UUID: uuid,
					Categories: map[string]string{"assay": label},
				})
				store[md5] = []float32{center + float32(i)/10, center - float32(j)/10}
			}
		}
	}
	td, err := epiatlas.NewTrackDataset(metadata.New(records...), store, epiatlas.Options{
		Category:   "assay",
		Oversample: true,
	})
	require.NoError(t, err)
	folds, err := epiatlas.NewFoldFactory(td, 2)
	require.NoError(t, err)
	return folds
}

func TestNearestCentroid(t *testing.T) {
	train, err := data.NewKnownData(
		[]string{"m1", "m2", "m3"},
		[][]float32{{0, 0}, {0, 2}, {10, 10}},
		[]int{0, 0, 2},
		[]string{"a", "a", "c"},
		nil,
	)
	require.NoError(t, err)

	m := NewNearestCentroid(ModelSpec{Classes: 3})
	require.NoError(t, m.Fit(train, nil))
	assert.Equal(t, []float64{0, 1}, m.(*NearestCentroid).Centroids[0])
	assert.Nil(t, m.(*NearestCentroid).Centroids[1])

	probs, err := m.Predict(train)
	require.NoError(t, err)
	require.Len(t, probs, 3)
	for i, expected := range []int{0, 0, 2} {
		assert.InDelta(t, 1, probs[i][0]+probs[i][1]+probs[i][2], 1e-9)
		assert.Equal(t, 0.0, probs[i][1])
		assert.True(t, probs[i][expected] > 0.5)
	}

	assert.Error(t, NewNearestCentroid(ModelSpec{Classes: 3}).Fit(data.EmptyKnownData(), nil))
	_, err = NewNearestCentroid(ModelSpec{Classes: 3}).Predict(train)
	assert.Error(t, err)
}

func TestNearestCentroidSaveRestore(t *testing.T) {
	dir, err := ioutil.TempDir("", "training")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	m := &NearestCentroid{Centroids: [][]float64{{0, 1}, nil}}
	require.NoError(t, m.Save(dir))

	restored, err := RestoreNearestCentroid(dir)
	require.NoError(t, err)
	assert.Equal(t, m, restored)
}

func TestRunner(t *testing.T) {
	dir, err := ioutil.TempDir("", "training")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	var logs bytes.Buffer
	r := &Runner{
		Folds:    newFolds(t),
		OutDir:   dir,
		NewModel: NewNearestCentroid,
		Spec:     ModelSpec{BatchSize: 16, TrainingEpochs: 5, LearningRate: 1e-4, LayerSize: 100, NbLayer: 2},
		Workers:  2,
		Logs:     &logs,
	}
	results, err := r.Run()
	require.NoError(t, err)
	require.Len(t, results, 2)
	for i, res := range results {
		assert.Equal(t, i, res.Split)
		require.True(t, res.Scored)
		assert.Equal(t, 1.0, res.Metrics.Accuracy)
		// two validation groups per class, three files each
		assert.Equal(t, 12, res.Metrics.N)
	}
	assert.Contains(t, logs.String(), "[split 0] ")
	assert.Contains(t, logs.String(), "[split 1] ")

	mapping, err := ioutil.ReadFile(filepath.Join(SplitDir(dir, 0), MappingFile))
	require.NoError(t, err)
	assert.Equal(t, "0\ta\n1\tb\n", string(mapping))

	var spec ModelSpec
	require.NoError(t, serialization.Decode(filepath.Join(SplitDir(dir, 0), SpecFile), &spec))
	assert.Equal(t, ModelSpec{Classes: 2, BatchSize: 16, TrainingEpochs: 5, LearningRate: 1e-4, LayerSize: 100, NbLayer: 2}, spec)

	table, err := ioutil.ReadFile(filepath.Join(SplitDir(dir, 1), PredictionFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(table)), "\n")
	assert.Equal(t, "md5sum,True class,Predicted class,a,b", lines[0])
	assert.Len(t, lines, 13)

	// restoring the saved models reproduces the predictions
	restore := &Runner{
		Folds:   r.Folds,
		OutDir:  dir,
		Restore: RestoreNearestCentroid,
		Splits:  []int{1},
		Logs:    &logs,
	}
	restored, err := restore.Run()
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, results[1].Metrics, restored[0].Metrics)
}

func TestRunnerRestoreMappingMismatch(t *testing.T) {
	dir, err := ioutil.TempDir("", "training")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	split := SplitDir(dir, 0)
	require.NoError(t, os.MkdirAll(split, os.ModePerm))
	require.NoError(t, ioutil.WriteFile(filepath.Join(split, MappingFile), []byte("0\tb\n1\ta\n"), 0644))

	r := &Runner{
		Folds:   newFolds(t),
		OutDir:  dir,
		Restore: RestoreNearestCentroid,
		Splits:  []int{0},
		Logs:    ioutil.Discard,
	}
	_, err = r.Run()
	require.Error(t, err)
	errs, ok := err.(errors.Errors)
	require.True(t, ok)
	assert.True(t, errors.Is(errs.Slice()[0], errors.KindIntegrity))
}

func TestRunnerWithoutModel(t *testing.T) {
	r := &Runner{Folds: newFolds(t)}
	_, err := r.Run()
	assert.True(t, errors.Is(err, errors.KindConfig))
}

func TestNewModelSpec(t *testing.T) {
	h := config.Defaults()
	h.LayerSize, h.NbLayer = 500, 3
	spec := NewModelSpec(h)
	assert.Equal(t, ModelSpec{BatchSize: 64, TrainingEpochs: 50, LearningRate: 1e-5, LayerSize: 500, NbLayer: 3}, spec)

	spec.Classes = 4
	m, ok := NewNearestCentroid(spec).(*NearestCentroid)
	require.True(t, ok)
	assert.Len(t, m.Centroids, 4)
}
