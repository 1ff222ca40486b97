package epiatlas

import (
	"log"

	"github.com/epiclass/epiatlas/epi-go/data"
	"github.com/epiclass/epiatlas/epi-go/metadata"
	"github.com/epiclass/epiatlas/epi-go/signal"
	"github.com/epiclass/epiatlas/epi-golib/epilog"
	"github.com/epiclass/epiatlas/epi-golib/errors"
)

// Options configure NewTrackDataset.
type Options struct {
	// Category is the label category, e.g. assay.
	Category string
	// Labels, when set, restricts the category to these labels.
	Labels []string
	// MinClassSize drops the classes with fewer files. Zero keeps every class.
	MinClassSize int
	// Oversample repeats the training groups of each fold as planned by
	// oversampling the leader training files.
	Oversample bool
	// TestRatio of the leader files is held out of the folds.
	TestRatio float64
	// Tracks defaults to DefaultTrackConfig.
	Tracks *TrackConfig
}

// TrackDataset holds the leader-only dataset, the group structure and the
// follower signals needed to expand leader selections.
type TrackDataset struct {
	category   string
	oversample bool
	config     *TrackConfig
	catalog    *metadata.Catalog
	groups     GroupMap
	leaders    *data.DataSet
	followers  signal.Store
}

// NewTrackDataset filters the catalog in place (label subset, missing labels,
// small classes), discovers the track groups and loads the leader-only
// dataset, all of it in the training partition apart from TestRatio.
func NewTrackDataset(catalog *metadata.Catalog, source signal.Source, opts Options) (*TrackDataset, error) {
	if opts.Tracks == nil {
		opts.Tracks = DefaultTrackConfig()
	}
	if opts.Labels != nil {
		catalog.SelectCategorySubset(opts.Category, opts.Labels)
	}
	catalog.RemoveMissingCategory(opts.Category)
	catalog.RemoveSmallClasses(opts.MinClassSize, opts.Category)

	groups, err := DiscoverGroups(catalog, opts.Tracks)
	if err != nil {
		return nil, err
	}

	leaders, err := leaderDataSet(catalog.Copy(), source, opts)
	if err != nil {
		return nil, err
	}

	followers, err := source.Load(groups.FollowerMD5s())
	if err != nil {
		return nil, errors.Wrapf(err, "error loading follower tracks")
	}

	return &TrackDataset{
		category:   opts.Category,
		oversample: opts.Oversample,
		config:     opts.Tracks,
		catalog:    catalog,
		groups:     groups,
		leaders:    leaders,
		followers:  followers,
	}, nil
}

func leaderDataSet(meta *metadata.Catalog, source signal.Source, opts Options) (*data.DataSet, error) {
	logger := epilog.Basic
	log.Println("theoretical maximum with complete dataset:")
	meta.DisplayLabels(opts.Category, logger)
	meta.DisplayLabels(metadata.TrackTypeKey, logger)

	meta.SelectCategorySubset(metadata.TrackTypeKey, opts.Tracks.Primary())
	log.Println("leader dataset, selected files:")
	meta.DisplayLabels(metadata.TrackTypeKey, logger)

	// no oversampling here: duplicates would leak across folds
	leaders, err := data.NewDataSet(meta, source, data.FactoryOptions{
		Category:        opts.Category,
		MinClassSize:    opts.MinClassSize,
		ValidationRatio: 0,
		TestRatio:       opts.TestRatio,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error building leader dataset")
	}
	meta.DisplayLabels(opts.Category, logger)
	return leaders, nil
}

// Oversample reports whether fold training sets are oversampled.
func (t *TrackDataset) Oversample() bool { return t.oversample }

// Category returns the label category.
func (t *TrackDataset) Category() string { return t.category }

// Config returns the track table.
func (t *TrackDataset) Config() *TrackConfig { return t.config }

// Classes returns the sorted classes of the leader dataset.
func (t *TrackDataset) Classes() []string { return t.leaders.Classes() }

// Leaders returns the leader-only dataset.
func (t *TrackDataset) Leaders() *data.DataSet { return t.leaders }

// Groups returns the leader md5 -> group map. It must not be modified.
func (t *TrackDataset) Groups() GroupMap { return t.groups }

// Metadata returns a copy of the filtered catalog, followers included.
func (t *TrackDataset) Metadata() *metadata.Catalog { return t.catalog.Copy() }

// repetitions returns how many times each selected position is emitted.
// With resample, the plan oversamples the labels of all of dset and is read
// at the selected positions, so a fold keeps the repetitions its files get
// in the complete leader set.
func repetitions(dset *data.Data, selected []int, resample bool) []int {
	var plan []int
	if resample {
		plan = data.RandomOverSampler{Seed: data.DefaultOversampleSeed}.Repetitions(dset.OriginalLabels())
	}
	reps := make([]int, len(selected))
	for k, pos := range selected {
		reps[k] = 1
		if pos >= 0 && pos < len(plan) {
			reps[k] = plan[pos]
		}
	}
	return reps
}

// leaderRecord returns the track type of the file at pos, checking that the
// metadata matches the id.
func (t *TrackDataset) leaderRecord(dset *data.Data, pos int) (string, error) {
	if pos < 0 || pos >= dset.Len() {
		return "", errors.Errorf("position %d out of range for %d files", pos, dset.Len())
	}
	md5 := dset.ID(pos)
	r, ok := dset.Record(pos)
	if !ok || r.MD5 != md5 {
		return "", errors.Integrity("metadata does not match file %s at position %d", md5, pos)
	}
	if !t.config.IsPrimary(r.TrackType) {
		return "", errors.Integrity("%s: unexpected track type %q in leader dataset", md5, r.TrackType)
	}
	return r.TrackType, nil
}

// AddOtherTracks returns the files of dset at the selected positions, each
// leader immediately followed by its followers and standalone files alone.
// Followers take the label of their leader. With resample, each selected
// group is repeated as planned by oversampling the labels of dset.
func (t *TrackDataset) AddOtherTracks(selected []int, dset *data.Data, resample bool) (*data.Data, error) {
	reps := repetitions(dset, selected, resample)

	var (
		ids    []string
		x      [][]float32
		y      []int
		labels []string
	)
	for k, pos := range selected {
		trackType, err := t.leaderRecord(dset, pos)
		if err != nil {
			return nil, err
		}
		md5 := dset.ID(pos)

		groupIDs := []string{md5}
		groupX := [][]float32{dset.Signal(pos)}
		if t.config.IsLeader(trackType) {
			g, ok := t.groups[md5]
			if !ok {
				return nil, errors.Integrity("leader %s has no track group", md5)
			}
			for _, f := range g.Followers {
				v, ok := t.followers[f]
				if !ok {
					return nil, errors.Integrity("no signal for %s, follower of %s", f, md5)
				}
				groupIDs = append(groupIDs, f)
				groupX = append(groupX, v)
			}
		}

		label, enc := dset.OriginalLabel(pos), dset.EncodedLabel(pos)
		for r := 0; r < reps[k]; r++ {
			ids = append(ids, groupIDs...)
			x = append(x, groupX...)
			for range groupIDs {
				y = append(y, enc)
				labels = append(labels, label)
			}
		}
	}
	return data.NewKnownData(ids, x, y, labels, t.catalog)
}

// CreateTotalData expands every leader training file with its followers.
func (t *TrackDataset) CreateTotalData(oversample bool) (*data.Data, error) {
	train := t.leaders.Train()
	all := make([]int, train.Len())
	for i := range all {
		all[i] = i
	}
	return t.AddOtherTracks(all, train, oversample)
}
