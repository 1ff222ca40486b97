package main

import (
	"github.com/epiclass/epiatlas/epi-go/datasource"
	"github.com/epiclass/epiatlas/epi-go/genome"
	"github.com/epiclass/epiatlas/epi-go/signal"
	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/fileutil"
	"github.com/spf13/cobra"
)

func varianceCmd() *cobra.Command {
	var (
		normalize bool
		workers   int
		strict    bool
	)
	cmd := &cobra.Command{
		Use:   "variance signals.list chrom.sizes out.bedgraph",
		Short: "write the per-bin variance of the listed signal files as a bedgraph",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			src := &datasource.DataSource{SignalList: args[0], ChromSizes: args[1]}
			loader, err := src.Loader(normalize)
			checkError(err)

			store, err := loader.Load(src.SignalList, signal.LoadOptions{Strict: strict, Workers: workers})
			checkError(err)
			if len(store) == 0 {
				checkError(errors.Config("no signal file could be read"))
			}

			out, err := fileutil.NewWriter(args[2])
			checkError(err)
			defer out.Close()
			checkError(genome.WriteBedgraph(out, signal.BinVariance(store), loader.Genome, loader.Resolution))
		},
	}
	cmd.Flags().BoolVar(&normalize, "normalize", false, "z-score every file before computing the variance")
	cmd.Flags().IntVar(&workers, "workers", 4, "files read concurrently")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on the first unreadable file")
	return cmd
}
