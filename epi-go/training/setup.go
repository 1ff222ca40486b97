package training

import (
	"time"

	"github.com/epiclass/epiatlas/epi-go/config"
	"github.com/epiclass/epiatlas/epi-go/data"
	"github.com/epiclass/epiatlas/epi-go/datasource"
	"github.com/epiclass/epiatlas/epi-go/epiatlas"
	"github.com/epiclass/epiatlas/epi-go/predict"
	"github.com/epiclass/epiatlas/epi-golib/epilog"
	"github.com/epiclass/epiatlas/epi-golib/errors"
)

// BuildFolds loads the inputs of src and computes the cross-validation folds
// described by h. Load and split times are recorded in logger.Durations.
func BuildFolds(src *datasource.DataSource, h config.Hyperparams, logger *epilog.Logger) (*epiatlas.FoldFactory, error) {
	start := time.Now()
	catalog, err := src.Catalog()
	if err != nil {
		return nil, err
	}
	var tracks *epiatlas.TrackConfig
	if h.TrackTable != "" {
		if tracks, err = epiatlas.LoadTrackConfig(h.TrackTable); err != nil {
			return nil, err
		}
	}
	source, err := src.Source(h.Normalize, h.CacheSize, h.Workers)
	if err != nil {
		return nil, err
	}
	logger.Durations.Since("load metadata", start)

	start = time.Now()
	td, err := epiatlas.NewTrackDataset(catalog, source, epiatlas.Options{
		Category:     h.Category,
		Labels:       h.Labels,
		MinClassSize: h.MinClassSize,
		Oversample:   h.Oversample,
		TestRatio:    h.TestRatio,
		Tracks:       tracks,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error building dataset")
	}
	logger.Durations.Since("load signals", start)

	start = time.Now()
	folds, err := epiatlas.NewFoldFactory(td, h.NFold)
	if err != nil {
		return nil, err
	}
	logger.Durations.Since("split", start)
	logger.Printf("%d folds over %d leader files, classes %v", folds.NFold(), td.Leaders().Train().Len(), folds.Classes())
	return folds, nil
}

// ManifestRows lists the files of every fold partition. Oversampled training
// files appear once per copy.
func ManifestRows(f *epiatlas.FoldFactory) ([]*predict.FoldRow, error) {
	var rows []*predict.FoldRow
	err := f.EachSplit(func(i int, ds *data.DataSet) error {
		for _, part := range []struct {
			name string
			d    *data.Data
		}{
			{predict.Training, ds.Train()},
			{predict.Validation, ds.Validation()},
		} {
			for j := 0; j < part.d.Len(); j++ {
				rows = append(rows, &predict.FoldRow{
					MD5:       part.d.ID(j),
					Split:     i,
					Partition: part.name,
					Label:     part.d.OriginalLabel(j),
				})
			}
		}
		return nil
	})
	return rows, err
}
