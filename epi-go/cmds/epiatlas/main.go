package main

import (
	"log"
	"os"

	"github.com/epiclass/epiatlas/epi-go/config"
	"github.com/epiclass/epiatlas/epi-go/datasource"
	"github.com/epiclass/epiatlas/epi-golib/epilog"
	"github.com/spf13/cobra"
)

func checkError(e error) {
	// value of 2 reports the caller of checkError
	if e != nil {
		log.Output(2, e.Error())
		os.Exit(1)
	}
}

// runFlags are shared by the commands building folds.
type runFlags struct {
	hparams string
	nFold   int
	workers int
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.hparams, "hparams", "", "hyperparameter file (.yaml or .json)")
	cmd.Flags().IntVar(&f.nFold, "n-fold", 0, "number of folds, overrides the hyperparameter file")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "concurrent workers, overrides the hyperparameter file")
}

func (f *runFlags) load() config.Hyperparams {
	h, err := config.Load(f.hparams)
	checkError(err)
	if f.nFold > 0 {
		h.NFold = f.nFold
	}
	if f.workers > 0 {
		h.Workers = f.workers
	}
	checkError(h.Validate())
	return h
}

// dataSource reads the "signals.list chrom.sizes metadata.json" arguments.
func dataSource(args []string) *datasource.DataSource {
	src, err := datasource.New(args[0], args[1], args[2])
	checkError(err)
	return src
}

func main() {
	epilog.SetupStd("epiatlas")

	rootCmd := &cobra.Command{
		Use:   "epiatlas",
		Short: "cross-validation folds and bin utilities for EpiAtlas signal files",
	}
	rootCmd.AddCommand(splitCmd())
	rootCmd.AddCommand(trainCmd())
	rootCmd.AddCommand(&binsToBed)
	rootCmd.AddCommand(&bedToBins)
	rootCmd.AddCommand(varianceCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
