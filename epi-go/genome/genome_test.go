package genome

import (
	"bytes"
	"strings"
	"testing"

	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testChroms = []Chrom{{"chr1", 95}, {"chr2", 50}}

func TestCumulativeBins(t *testing.T) {
	cumulative, err := CumulativeBins(testChroms, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 15}, cumulative)

	_, err = CumulativeBins(testChroms, 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindConfig))

	_, err = CumulativeBins(testChroms, 0)
	assert.Error(t, err)
}

func TestBinsToRanges(t *testing.T) {
	ranges, err := BinsToRanges([]int{10, 9, 0}, testChroms, 10)
	require.NoError(t, err)
	assert.Equal(t, []Range{
		{"chr1", 0, 10},
		{"chr1", 90, 95},
		{"chr2", 0, 10},
	}, ranges)

	_, err = BinsToRanges([]int{15}, testChroms, 10)
	assert.Error(t, err)
	_, err = BinsToRanges([]int{-1}, testChroms, 10)
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	var bins []int
	for i := 0; i < 14; i++ {
		bins = append(bins, i)
	}
	ranges, err := BinsToRanges(bins, testChroms, 10)
	require.NoError(t, err)

	back, err := RangesToBins(ranges, testChroms, 10)
	require.NoError(t, err)
	assert.Equal(t, bins, back)
}

func TestRangesToBins(t *testing.T) {
	bins, err := RangesToBins([]Range{{"chr2", 5, 21}}, testChroms, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11, 12}, bins)

	_, err = RangesToBins([]Range{{"chrX", 0, 10}}, testChroms, 10)
	assert.Error(t, err)
}

func TestVectorLength(t *testing.T) {
	n, err := ExpectedVectorLength(testChroms, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	assert.NoError(t, CheckVectorLength(testChroms, 10, 15))
	err = CheckVectorLength(testChroms, 10, 14)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindConfig))
}

func TestParseChromSizes(t *testing.T) {
	chroms, err := ParseChromSizes(strings.NewReader("chr2\t50\n\nchr1 95\n"))
	require.NoError(t, err)
	assert.Equal(t, []Chrom{{"chr2", 50}, {"chr1", 95}}, chroms)
	assert.Equal(t, testChroms, SortByName(chroms))
	assert.Equal(t, []string{"chr2", "chr1"}, Names(chroms))

	_, err = ParseChromSizes(strings.NewReader("chr1\n"))
	assert.Error(t, err)
	_, err = ParseChromSizes(strings.NewReader("chr1 abc\n"))
	assert.Error(t, err)
}

func TestWriteBed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBed(&buf, []Range{{"chr1", 0, 10}, {"chr2", 40, 50}}))
	assert.Equal(t, "chr1\t0\t10\nchr2\t40\t50\n", buf.String())
}

func TestWriteBedgraph(t *testing.T) {
	chroms := []Chrom{{"chr1", 25}}
	var buf bytes.Buffer
	require.NoError(t, WriteBedgraph(&buf, []float64{1, 0.5, 2}, chroms, 10))
	assert.Equal(t, "chr1\t0\t10\t1\nchr1\t10\t20\t0.5\nchr1\t20\t25\t2\n", buf.String())

	assert.Error(t, WriteBedgraph(&buf, []float64{1}, chroms, 10))
}

func TestParseBed(t *testing.T) {
	src := "track name=x\n# comment\nchr1\t0\t10\tpeak\n\nchr2 40 50\n"
	ranges, err := ParseBed(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []Range{{"chr1", 0, 10}, {"chr2", 40, 50}}, ranges)

	bins, err := RangesToBins(ranges, testChroms, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 14}, bins)

	_, err = ParseBed(strings.NewReader("chr1\t10\n"))
	assert.Error(t, err)
	_, err = ParseBed(strings.NewReader("chr1\t10\t5\n"))
	assert.Error(t, err)
}
