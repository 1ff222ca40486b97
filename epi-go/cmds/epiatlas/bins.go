package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/epiclass/epiatlas/epi-go/genome"
	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/fileutil"
	"github.com/spf13/cobra"
)

var outputPath string

func init() {
	binsToBed.Flags().StringVarP(&outputPath, "output", "o", "", "output path (defaults to stdout)")
	bedToBins.Flags().StringVarP(&outputPath, "output", "o", "", "output path (defaults to stdout)")
}

func openInput(path string) io.ReadCloser {
	if path == "-" {
		return os.Stdin
	}
	r, err := fileutil.NewCachedReader(path)
	checkError(err)
	return r
}

func openOutput() io.WriteCloser {
	if outputPath == "" {
		return os.Stdout
	}
	w, err := fileutil.NewWriter(outputPath)
	checkError(err)
	return w
}

func readGenome(sizes, resolution string) ([]genome.Chrom, int) {
	chroms, err := genome.ReadChromSizes(sizes)
	checkError(err)
	res, err := strconv.Atoi(resolution)
	if err != nil {
		checkError(errors.Config("invalid resolution %q", resolution))
	}
	return genome.SortByName(chroms), res
}

func readBins(r io.Reader) ([]int, error) {
	var bins []int
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		for _, field := range strings.FieldsFunc(scanner.Text(), func(c rune) bool { return c == ',' || c == ' ' || c == '\t' }) {
			b, err := strconv.Atoi(field)
			if err != nil {
				return nil, errors.Errorf("invalid bin %q", field)
			}
			bins = append(bins, b)
		}
	}
	return bins, scanner.Err()
}

var binsToBed = cobra.Command{
	Use:   "bins-to-bed chrom.sizes resolution bins.txt",
	Short: "convert global bin indexes (whitespace or comma separated, - for stdin) to a sorted bed file",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		chroms, res := readGenome(args[0], args[1])

		in := openInput(args[2])
		bins, err := readBins(in)
		in.Close()
		checkError(err)

		ranges, err := genome.BinsToRanges(bins, chroms, res)
		checkError(err)

		out := openOutput()
		defer out.Close()
		checkError(genome.WriteBed(out, ranges))
	},
}

var bedToBins = cobra.Command{
	Use:   "bed-to-bins chrom.sizes resolution regions.bed",
	Short: "list the global bin indexes overlapped by the regions of a bed file (- for stdin)",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		chroms, res := readGenome(args[0], args[1])

		in := openInput(args[2])
		ranges, err := genome.ParseBed(in)
		in.Close()
		checkError(err)

		bins, err := genome.RangesToBins(ranges, chroms, res)
		checkError(err)

		out := openOutput()
		defer out.Close()
		w := bufio.NewWriter(out)
		for _, b := range bins {
			fmt.Fprintln(w, b)
		}
		checkError(w.Flush())
	},
}
