// Package genome maps between global signal bin indexes and chromosome
// coordinates for a concatenated, per-chromosome binned genome.
package genome

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/fileutil"
)

// Chrom is a chromosome name and its length in base pairs.
type Chrom struct {
	Name string
	Size int
}

// Range is a half-open [Start, End) interval on a chromosome.
type Range struct {
	Chrom string
	Start int
	End   int
}

// ReadChromSizes reads a chromosome size file made of whitespace separated
// "name size" lines. Chromosomes are returned in file order.
func ReadChromSizes(path string) ([]Chrom, error) {
	r, err := fileutil.NewCachedReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening chromosome sizes %s", path)
	}
	defer r.Close()

	chroms, err := ParseChromSizes(r)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", path)
	}
	return chroms, nil
}

// ParseChromSizes is ReadChromSizes over an open stream.
func ParseChromSizes(r io.Reader) ([]Chrom, error) {
	var chroms []Chrom
	scanner := bufio.NewScanner(r)
	var lineno int
	for scanner.Scan() {
		lineno++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, errors.Errorf("line %d: expected name and size, got %q", lineno, scanner.Text())
		}
		size, err := strconv.Atoi(fields[1])
		if err != nil || size < 0 {
			return nil, errors.Errorf("line %d: invalid size %q", lineno, fields[1])
		}
		chroms = append(chroms, Chrom{Name: fields[0], Size: size})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return chroms, nil
}

// SortByName returns a copy of chroms sorted by name, which is the order
// per-chromosome signal arrays are concatenated in.
func SortByName(chroms []Chrom) []Chrom {
	sorted := append([]Chrom(nil), chroms...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// Names returns the chromosome names in order.
func Names(chroms []Chrom) []string {
	names := make([]string, 0, len(chroms))
	for _, c := range chroms {
		names = append(names, c.Name)
	}
	return names
}

func checkResolution(resolution int) error {
	if resolution <= 0 || resolution%10 != 0 {
		return errors.Config("resolution must be a positive multiple of 10, got %d", resolution)
	}
	return nil
}

func binsIn(size, resolution int) int {
	return (size + resolution - 1) / resolution
}

// CumulativeBins returns the global index of the first bin of every
// chromosome, followed by the total bin count.
func CumulativeBins(chroms []Chrom, resolution int) ([]int, error) {
	if err := checkResolution(resolution); err != nil {
		return nil, err
	}
	cumulative := make([]int, 1, len(chroms)+1)
	for _, c := range chroms {
		cumulative = append(cumulative, cumulative[len(cumulative)-1]+binsIn(c.Size, resolution))
	}
	return cumulative, nil
}

// BinsToRanges converts global bin indexes to chromosome ranges. Ranges are
// returned in ascending bin order; the last bin of a chromosome is clipped to
// the chromosome length.
func BinsToRanges(bins []int, chroms []Chrom, resolution int) ([]Range, error) {
	cumulative, err := CumulativeBins(chroms, resolution)
	if err != nil {
		return nil, err
	}
	sorted := append([]int(nil), bins...)
	sort.Ints(sorted)

	total := cumulative[len(cumulative)-1]
	ranges := make([]Range, 0, len(sorted))
	for _, bin := range sorted {
		if bin < 0 || bin >= total {
			return nil, errors.Errorf("bin index %d out of range [0, %d)", bin, total)
		}
		// first chromosome whose end is beyond bin
		ci := sort.Search(len(chroms), func(i int) bool {
			return cumulative[i+1] > bin
		})
		inChrom := bin - cumulative[ci]
		start := inChrom * resolution
		end := start + resolution
		if end > chroms[ci].Size {
			end = chroms[ci].Size
		}
		ranges = append(ranges, Range{Chrom: chroms[ci].Name, Start: start, End: end})
	}
	return ranges, nil
}

// RangesToBins converts chromosome ranges to the global bins they overlap,
// in input order.
func RangesToBins(ranges []Range, chroms []Chrom, resolution int) ([]int, error) {
	cumulative, err := CumulativeBins(chroms, resolution)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(chroms))
	for i := len(chroms) - 1; i >= 0; i-- {
		index[chroms[i].Name] = i
	}

	var bins []int
	for _, r := range ranges {
		ci, ok := index[r.Chrom]
		if !ok {
			return nil, errors.Errorf("chromosome %s not found", r.Chrom)
		}
		first := cumulative[ci] + r.Start/resolution
		last := cumulative[ci] + (r.End+resolution-1)/resolution
		for b := first; b < last; b++ {
			bins = append(bins, b)
		}
	}
	return bins, nil
}

// ExpectedVectorLength is the length of a signal vector concatenating every
// chromosome binned at resolution.
func ExpectedVectorLength(chroms []Chrom, resolution int) (int, error) {
	cumulative, err := CumulativeBins(chroms, resolution)
	if err != nil {
		return 0, err
	}
	return cumulative[len(cumulative)-1], nil
}

// CheckVectorLength returns a configuration error when n does not match the
// expected vector length.
func CheckVectorLength(chroms []Chrom, resolution, n int) error {
	expected, err := ExpectedVectorLength(chroms, resolution)
	if err != nil {
		return err
	}
	if expected != n {
		return errors.Config("signal length %d not coherent with resolution %d (expected %d)", n, resolution, expected)
	}
	return nil
}

// WriteBed writes one tab separated "chrom start end" line per range.
func WriteBed(w io.Writer, ranges []Range) error {
	bw := bufio.NewWriter(w)
	for _, r := range ranges {
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\n", r.Chrom, r.Start, r.End); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseBed reads the first three columns of BED lines. Blank, "#",
// "track" and "browser" lines are skipped.
func ParseBed(r io.Reader) ([]Range, error) {
	var ranges []Range
	scanner := bufio.NewScanner(r)
	var lineno int
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") || fields[0] == "track" || fields[0] == "browser" {
			continue
		}
		if len(fields) < 3 {
			return nil, errors.Errorf("line %d: expected chrom, start and end, got %q", lineno, line)
		}
		start, err1 := strconv.Atoi(fields[1])
		end, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || start < 0 || end < start {
			return nil, errors.Errorf("line %d: invalid interval %q", lineno, line)
		}
		ranges = append(ranges, Range{Chrom: fields[0], Start: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ranges, nil
}

// WriteBedgraph writes one "chrom start end value" line per bin of the genome.
func WriteBedgraph(w io.Writer, values []float64, chroms []Chrom, resolution int) error {
	if err := CheckVectorLength(chroms, resolution, len(values)); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	var i int
	for _, c := range chroms {
		for start := 0; start < c.Size; start += resolution {
			end := start + resolution
			if end > c.Size {
				end = c.Size
			}
			fmt.Fprintf(bw, "%s\t%d\t%d\t%s\n", c.Name, start, end, strconv.FormatFloat(values[i], 'g', -1, 64))
			i++
		}
	}
	return bw.Flush()
}
