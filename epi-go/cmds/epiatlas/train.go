package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/epiclass/epiatlas/epi-go/training"
	"github.com/epiclass/epiatlas/epi-golib/epilog"
	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"
)

func trainCmd() *cobra.Command {
	var (
		flags   runFlags
		restore bool
		splits  []int
	)
	cmd := &cobra.Command{
		Use:   "train signals.list chrom.sizes metadata.json logdir",
		Short: "train and evaluate a nearest-centroid classifier on every fold",
		Args:  cobra.ExactArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			h := flags.load()
			logger := epilog.Basic.WithDurations()

			folds, err := training.BuildFolds(dataSource(args), h, logger)
			checkError(err)

			runner := &training.Runner{
				Folds:    folds,
				OutDir:   args[3],
				NewModel: training.NewNearestCentroid,
				Spec:     training.NewModelSpec(h),
				Splits:   splits,
				Workers:  h.Workers,
			}
			if restore {
				runner.Restore = training.RestoreNearestCentroid
			}
			results, err := runner.Run()
			checkError(err)

			var accuracies []float64
			tw := tabwriter.NewWriter(os.Stdout, 4, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "split\taccuracy\tmacro F1\tfiles\ttime")
			for _, res := range results {
				if !res.Scored {
					fmt.Fprintf(tw, "%d\t-\t-\t-\t%s\n", res.Split, res.Duration)
					continue
				}
				accuracies = append(accuracies, res.Metrics.Accuracy)
				fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%d\t%s\n", res.Split, res.Metrics.Accuracy, res.Metrics.MacroF1, res.Metrics.N, res.Duration)
			}
			tw.Flush()

			if mean, err := stats.Mean(accuracies); err == nil {
				sd, _ := stats.StandardDeviationPopulation(accuracies)
				logger.Printf("mean validation accuracy %.4f (sd %.4f) over %d splits", mean, sd, len(accuracies))
			}
			logger.Durations.Flush(logger)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&restore, "restore", false, "restore the saved models instead of training")
	cmd.Flags().IntSliceVar(&splits, "splits", nil, "only run these splits")
	return cmd
}
