package epiatlas

import (
	"log"

	"github.com/epiclass/epiatlas/epi-go/data"
	"github.com/epiclass/epiatlas/epi-go/kfold"
	"github.com/epiclass/epiatlas/epi-golib/errors"
)

// DefaultNFold is the default number of cross-validation folds.
const DefaultNFold = 10

// FoldFactory splits the leader training files of a TrackDataset into
// stratified folds and expands them with their follower tracks. A factory is
// read-only once built and can serve folds to concurrent callers.
type FoldFactory struct {
	td    *TrackDataset
	k     int
	folds []kfold.Fold
}

// IndexFold holds positions in a total dataset, see FoldFactory.Split.
type IndexFold struct {
	Train      []int `json:"train"`
	Validation []int `json:"validation"`
}

// NewFoldFactory computes the nFold stratified folds of the leader training files.
func NewFoldFactory(td *TrackDataset, nFold int) (*FoldFactory, error) {
	if nFold < 2 {
		return nil, errors.Config("need at least two folds for cross-validation, got %d", nFold)
	}
	folds, err := kfold.StratifiedKFold{NSplits: nFold}.Split(td.leaders.Train().OriginalLabels())
	if err != nil {
		return nil, err
	}
	return &FoldFactory{td: td, k: nFold, folds: folds}, nil
}

// NFold returns the number of folds.
func (f *FoldFactory) NFold() int { return f.k }

// Classes returns the sorted classes.
func (f *FoldFactory) Classes() []string { return f.td.Classes() }

// TrackDataset returns the source dataset.
func (f *FoldFactory) TrackDataset() *TrackDataset { return f.td }

// Folds returns the leader-position folds.
func (f *FoldFactory) Folds() []kfold.Fold { return f.folds }

// Fold returns the expanded training and validation sets of fold i. The
// training set is oversampled when the dataset was built with Oversample.
// The classes are those of the whole dataset, so that encoded labels match
// the class positions even when a fold lacks a class.
func (f *FoldFactory) Fold(i int) (*data.DataSet, error) {
	if i < 0 || i >= f.k {
		return nil, errors.Errorf("fold %d out of range of %d folds", i, f.k)
	}
	leaders := f.td.leaders.Train()

	train, err := f.td.AddOtherTracks(f.folds[i].Train, leaders, f.td.oversample)
	if err != nil {
		return nil, errors.Wrapf(err, "fold %d: error building training set", i)
	}
	valid, err := f.td.AddOtherTracks(f.folds[i].Test, leaders, false)
	if err != nil {
		return nil, errors.Wrapf(err, "fold %d: error building validation set", i)
	}

	return data.Assemble(train, valid, data.EmptyKnownData(), f.Classes()), nil
}

// EachSplit calls fn with every fold in order, stopping at the first error.
func (f *FoldFactory) EachSplit(fn func(i int, ds *data.DataSet) error) error {
	for i := 0; i < f.k; i++ {
		ds, err := f.Fold(i)
		if err != nil {
			return err
		}
		if err := fn(i, ds); err != nil {
			return err
		}
	}
	return nil
}

// Split returns, for every fold, the positions in total (the output of
// CreateTotalData(false)) of the fold's training and validation files.
// Training positions are repeated as Fold repeats them.
func (f *FoldFactory) Split(total *data.Data) ([]IndexFold, error) {
	ids := total.IDs()
	positions := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, ok := positions[id]; !ok {
			positions[id] = i
		}
	}

	leaders := f.td.leaders.Train()
	out := make([]IndexFold, 0, f.k)
	for i, fold := range f.folds {
		train, err := f.findOtherTracks(fold.Train, leaders, f.td.oversample, positions, ids)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", i)
		}
		valid, err := f.findOtherTracks(fold.Test, leaders, false, positions, ids)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", i)
		}
		out = append(out, IndexFold{Train: train, Validation: valid})
	}
	return out, nil
}

// findOtherTracks maps selected leader positions to blocks of contiguous
// positions in the total dataset: the leader followed by its followers.
func (f *FoldFactory) findOtherTracks(selected []int, dset *data.Data, resample bool, positions map[string]int, ids []string) ([]int, error) {
	reps := repetitions(dset, selected, resample)

	var out []int
	for k, pos := range selected {
		trackType, err := f.td.leaderRecord(dset, pos)
		if err != nil {
			return nil, err
		}
		md5 := dset.ID(pos)
		start, ok := positions[md5]
		if !ok {
			return nil, errors.Integrity("%s is missing from the total dataset", md5)
		}

		n := 1 + len(f.td.config.Followers(trackType))
		if start+n > len(ids) {
			n = len(ids) - start
		}
		if n > 1 {
			n = f.correctSignalGroup(ids[start : start+n])
		}

		for r := 0; r < reps[k]; r++ {
			for p := start; p < start+n; p++ {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// groupKey identifies the physical sample and assay of a file.
type groupKey struct {
	uuid  string
	assay string
}

func (f *FoldFactory) groupKeyOf(md5 string) groupKey {
	r, ok := f.td.catalog.Get(md5)
	if !ok {
		return groupKey{}
	}
	return groupKey{uuid: r.UUID, assay: r.Value("assay")}
}

// correctSignalGroup returns the length of the prefix of md5s sharing the
// uuid and assay of the first one.
func (f *FoldFactory) correctSignalGroup(md5s []string) int {
	first := f.groupKeyOf(md5s[0])
	n := 1
	for n < len(md5s) && f.groupKeyOf(md5s[n]) == first {
		n++
	}
	if n != len(md5s) {
		log.Printf("warning: files not from the same group: %v, keeping the first %d", md5s, n)
	}
	return n
}

// SubsampleValidation splits the validation leaders of fold chosen into
// nbSplit stratified folds and calls fn with each, expanded without
// oversampling.
func (f *FoldFactory) SubsampleValidation(chosen, nbSplit int, fn func(i int, ds *data.DataSet) error) error {
	if chosen < 0 || chosen >= f.k {
		return errors.Errorf("chosen split %d out of range of initial %d folds", chosen, f.k)
	}
	sub, err := f.td.leaders.Train().Subsample(f.folds[chosen].Test)
	if err != nil {
		return err
	}
	chosenData := sub.Data

	subFolds, err := kfold.StratifiedKFold{NSplits: nbSplit}.Split(chosenData.OriginalLabels())
	if err != nil {
		return err
	}
	for i, sf := range subFolds {
		train, err := f.td.AddOtherTracks(sf.Train, chosenData, false)
		if err != nil {
			return err
		}
		valid, err := f.td.AddOtherTracks(sf.Test, chosenData, false)
		if err != nil {
			return err
		}
		ds := data.Assemble(train, valid, data.EmptyKnownData(), f.Classes())
		if err := fn(i, ds); err != nil {
			return err
		}
	}
	return nil
}
