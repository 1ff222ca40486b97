package training

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/epiclass/epiatlas/epi-go/data"
	"github.com/epiclass/epiatlas/epi-go/epiatlas"
	"github.com/epiclass/epiatlas/epi-go/predict"
	"github.com/epiclass/epiatlas/epi-golib/epilog"
	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/fileutil"
	"github.com/epiclass/epiatlas/epi-golib/serialization"
	"github.com/epiclass/epiatlas/epi-golib/workerpool"
)

// Output files of a split directory.
const (
	MappingFile    = "training_mapping.tsv"
	PredictionFile = "validation_prediction.csv"
	SpecFile       = "model_spec.json"
)

// ErrEmptyPartition is returned for folds with an empty training or
// validation set.
var ErrEmptyPartition = errors.New("empty partition")

// Runner trains one model per fold and writes, under OutDir/splitN, the class
// mapping, the model and the validation predictions.
type Runner struct {
	Folds  *epiatlas.FoldFactory
	OutDir string
	// NewModel creates the model of a fold. Ignored when Restore is set.
	NewModel NewModelFunc
	// Spec is passed to NewModel with the classes of the fold.
	Spec ModelSpec
	// Restore, when set, loads the model of each split instead of training.
	Restore Restorer
	// Splits restricts the run to these folds; nil runs every fold.
	Splits []int
	// Workers is the number of folds trained concurrently.
	Workers int
	// Logs receives the fold logs, os.Stderr when nil.
	Logs io.Writer
}

// FoldResult summarizes a trained fold.
type FoldResult struct {
	Split    int
	Metrics  predict.Metrics
	Scored   bool
	Duration time.Duration
}

// SplitDir returns the output directory of split i.
func SplitDir(outDir string, i int) string {
	return filepath.Join(outDir, fmt.Sprintf("split%d", i))
}

// Run trains the folds on a worker pool. Every fold builds its own datasets;
// log lines of all folds go through a single writer.
func (r *Runner) Run() ([]FoldResult, error) {
	if r.Restore == nil && r.NewModel == nil {
		return nil, errors.Config("runner has neither a model constructor nor a restorer")
	}
	splits := r.Splits
	if splits == nil {
		for i := 0; i < r.Folds.NFold(); i++ {
			splits = append(splits, i)
		}
	}

	w := r.Logs
	if w == nil {
		w = os.Stderr
	}
	sink := epilog.NewSink(w, 64)
	defer sink.Close()

	results := make([]FoldResult, len(splits))
	var jobs []workerpool.Job
	for k, i := range splits {
		k, i := k, i
		jobs = append(jobs, func() error {
			res, err := r.runFold(i, sink.Logger(fmt.Sprintf("[split %d] ", i)))
			if err != nil {
				return errors.Wrapf(err, "split %d", i)
			}
			results[k] = res
			return nil
		})
	}
	if err := workerpool.Run(r.Workers, jobs); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) runFold(i int, logger epilog.Interface) (FoldResult, error) {
	start := time.Now()
	res := FoldResult{Split: i}

	ds, err := r.Folds.Fold(i)
	if err != nil {
		return res, err
	}
	train, valid := ds.Train(), ds.Validation()
	if train.Len() == 0 || valid.Len() == 0 {
		return res, errors.Wrapf(ErrEmptyPartition, "%d training and %d validation files", train.Len(), valid.Len())
	}
	logger.Printf("%d training files, %d validation files", train.Len(), valid.Len())

	dir := SplitDir(r.OutDir, i)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return res, err
	}

	model, err := r.model(dir, ds, logger)
	if err != nil {
		return res, err
	}

	probs, err := model.Predict(valid)
	if err != nil {
		return res, errors.Wrapf(err, "error predicting")
	}
	if err := writePredictions(filepath.Join(dir, PredictionFile), valid, probs, ds.Classes()); err != nil {
		return res, err
	}

	pred := make([]int, len(probs))
	for j, p := range probs {
		pred[j] = predict.Argmax(p)
	}
	res.Metrics, res.Scored = predict.ComputeMetrics(valid.EncodedLabels(), pred, len(ds.Classes()))
	res.Duration = time.Since(start)
	if res.Scored {
		logger.Printf("validation accuracy %.4f, macro F1 %.4f (%s)", res.Metrics.Accuracy, res.Metrics.MacroF1, res.Duration)
	}
	return res, nil
}

// model trains a new model, or restores the saved one after checking that
// its class mapping matches the fold.
func (r *Runner) model(dir string, ds *data.DataSet, logger epilog.Interface) (Model, error) {
	mappingPath := filepath.Join(dir, MappingFile)
	if r.Restore != nil {
		mapping, err := data.LoadMapping(mappingPath)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading saved mapping")
		}
		expected := make(map[int]string)
		for j, c := range ds.Classes() {
			expected[j] = c
		}
		if !reflect.DeepEqual(mapping, expected) {
			return nil, errors.Integrity("saved mapping %v does not match classes %v", mapping, ds.Classes())
		}
		logger.Printf("restoring model from %s", dir)
		return r.Restore(dir)
	}

	if err := ds.SaveMapping(mappingPath); err != nil {
		return nil, errors.Wrapf(err, "error writing mapping")
	}
	spec := r.Spec
	spec.Classes = len(ds.Classes())
	if err := serialization.Encode(filepath.Join(dir, SpecFile), spec); err != nil {
		return nil, errors.Wrapf(err, "error writing model spec")
	}
	model := r.NewModel(spec)
	if err := model.Fit(ds.Train(), ds.Validation()); err != nil {
		return nil, errors.Wrapf(err, "error training")
	}
	if err := model.Save(dir); err != nil {
		return nil, errors.Wrapf(err, "error saving model")
	}
	return model, nil
}

func writePredictions(path string, d *data.Data, probs [][]float64, classes []string) error {
	f, err := fileutil.NewWriter(path)
	if err != nil {
		return err
	}
	if err := predict.WriteTable(f, d.IDs(), d.OriginalLabels(), probs, classes); err != nil {
		f.Close()
		return errors.Wrapf(err, "error writing %s", path)
	}
	return f.Close()
}
