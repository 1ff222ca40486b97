package main

import (
	"os"
	"path/filepath"

	"github.com/epiclass/epiatlas/epi-go/predict"
	"github.com/epiclass/epiatlas/epi-go/training"
	"github.com/epiclass/epiatlas/epi-golib/epilog"
	"github.com/spf13/cobra"
)

func splitCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "split signals.list chrom.sizes metadata.json outdir",
		Short: "compute the cross-validation folds and write the fold manifest and filtered metadata",
		Args:  cobra.ExactArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			h := flags.load()
			logger := epilog.Basic.WithDurations()

			folds, err := training.BuildFolds(dataSource(args), h, logger)
			checkError(err)

			outDir := args[3]
			checkError(os.MkdirAll(outDir, os.ModePerm))

			rows, err := training.ManifestRows(folds)
			checkError(err)
			checkError(predict.WriteFoldManifest(filepath.Join(outDir, "folds.csv"), rows))
			checkError(folds.TrackDataset().Metadata().Save(filepath.Join(outDir, "metadata.json")))

			logger.Printf("wrote %d manifest rows to %s", len(rows), outDir)
			logger.Durations.Flush(logger)
		},
	}
	flags.register(cmd)
	return cmd
}
