package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	arg "github.com/alexflint/go-arg"
	"github.com/epiclass/epiatlas/epi-go/config"
	"github.com/epiclass/epiatlas/epi-go/data"
	"github.com/epiclass/epiatlas/epi-go/datasource"
	"github.com/epiclass/epiatlas/epi-go/epiatlas"
	"github.com/epiclass/epiatlas/epi-go/predict"
	"github.com/epiclass/epiatlas/epi-go/training"
	"github.com/epiclass/epiatlas/epi-golib/epilog"
	"github.com/epiclass/epiatlas/epi-golib/serialization"
)

func fail(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

// indexFile describes the folds as positions in the complete dataset, for
// estimators that take a single dataset and a list of index folds.
type indexFile struct {
	Classes []string             `json:"classes"`
	IDs     []string             `json:"ids"`
	Labels  []string             `json:"labels"`
	Folds   []epiatlas.IndexFold `json:"folds"`
}

func main() {
	args := struct {
		SignalList string `arg:"required"`
		ChromSizes string `arg:"required"`
		Metadata   string `arg:"required"`
		Out        string `arg:"required"`
		Hparams    string
		NFold      int `help:"overrides n_fold of the hyperparameter file"`
		Workers    int
		// SubsampleSplit and NbSubsplit split the validation set of one fold again.
		SubsampleSplit int
		NbSubsplit     int
	}{}
	arg.MustParse(&args)

	epilog.SetupStd("epiatlas-folds")
	logger := epilog.Basic.WithDurations()

	h, err := config.Load(args.Hparams)
	fail(err)
	if args.NFold > 0 {
		h.NFold = args.NFold
	}
	if args.Workers > 0 {
		h.Workers = args.Workers
	}
	fail(h.Validate())

	src, err := datasource.New(args.SignalList, args.ChromSizes, args.Metadata)
	fail(err)
	folds, err := training.BuildFolds(src, h, logger)
	fail(err)

	fail(os.MkdirAll(args.Out, os.ModePerm))

	start := time.Now()
	total, err := folds.TrackDataset().CreateTotalData(false)
	fail(err)
	splits, err := folds.Split(total)
	fail(err)
	logger.Durations.Since("index folds", start)

	fail(serialization.Encode(filepath.Join(args.Out, "index_folds.json.gz"), indexFile{
		Classes: folds.Classes(),
		IDs:     total.IDs(),
		Labels:  total.OriginalLabels(),
		Folds:   splits,
	}))

	mapping := data.Assemble(total, data.EmptyKnownData(), data.EmptyKnownData(), folds.Classes())
	fail(mapping.SaveMapping(filepath.Join(args.Out, "training_mapping.tsv")))

	rows, err := training.ManifestRows(folds)
	fail(err)
	fail(predict.WriteFoldManifest(filepath.Join(args.Out, "folds.csv"), rows))

	if args.NbSubsplit > 0 {
		var subRows []*predict.FoldRow
		err := folds.SubsampleValidation(args.SubsampleSplit, args.NbSubsplit, func(i int, ds *data.DataSet) error {
			for j := 0; j < ds.Validation().Len(); j++ {
				subRows = append(subRows, &predict.FoldRow{
					MD5:       ds.Validation().ID(j),
					Split:     i,
					Partition: predict.Validation,
					Label:     ds.Validation().OriginalLabel(j),
				})
			}
			return nil
		})
		fail(err)
		fail(predict.WriteFoldManifest(filepath.Join(args.Out, "subsplit_folds.csv"), subRows))
	}

	logger.Printf("wrote %d folds of %d files to %s", len(splits), total.Len(), args.Out)
	logger.Durations.Flush(logger)
}
