package data

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/epiclass/epiatlas/epi-go/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiveSamples(t *testing.T) *Data {
	ids := []string{"m0", "m1", "m2", "m3", "m4"}
	var x [][]float32
	var y []int
	var yStr []string
	var records []*metadata.Record
	for i, id := range ids {
		x = append(x, []float32{float32(i), float32(i * 10)})
		y = append(y, i)
		yStr = append(yStr, fmt.Sprintf("label%d", i))
		records = append(records, &metadata.Record{MD5: id, Categories: map[string]string{"assay": yStr[i]}})
	}
	records = append(records, &metadata.Record{MD5: "other"})
	d, err := NewKnownData(ids, x, y, yStr, metadata.New(records...))
	require.NoError(t, err)
	return d
}

func assertAligned(t *testing.T, d *Data) {
	for i := 0; i < d.Len(); i++ {
		k := d.EncodedLabel(i)
		assert.Equal(t, fmt.Sprintf("m%d", k), d.ID(i))
		assert.Equal(t, fmt.Sprintf("label%d", k), d.OriginalLabel(i))
		assert.Equal(t, float32(k), d.Signal(i)[0])
		r, ok := d.Record(i)
		require.True(t, ok)
		assert.Equal(t, d.OriginalLabel(i), r.Value("assay"))
	}
}

func TestNewKnownData(t *testing.T) {
	d := fiveSamples(t)
	assert.Equal(t, 5, d.Len())
	assert.True(t, d.Known())
	// metadata restricted to the ids
	assert.Equal(t, 5, d.Metadata().Len())
	assert.False(t, d.Metadata().Has("other"))

	_, err := NewKnownData([]string{"a"}, nil, []int{0}, []string{"x"}, nil)
	assert.Error(t, err)

	u, err := NewUnknownData([]string{"a"}, [][]float32{{1}}, []int{0}, []string{"x"})
	require.NoError(t, err)
	assert.False(t, u.Known())
	assert.Nil(t, u.Metadata())
	_, ok := u.Record(0)
	assert.False(t, ok)
}

func TestShuffleKeepsSamplesAligned(t *testing.T) {
	d := fiveSamples(t)
	d.ShuffleWith(rand.New(rand.NewSource(3)))
	assertAligned(t, d)
	assert.ElementsMatch(t, []string{"m0", "m1", "m2", "m3", "m4"}, d.IDs())

	d.Shuffle(false)
	assertAligned(t, d)
}

func TestSeededShuffle(t *testing.T) {
	a := fiveSamples(t)
	b := fiveSamples(t)
	a.Shuffle(true)
	b.Shuffle(true)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.IDs(), b.IDs())
	assertAligned(t, a)
}

func TestSubsample(t *testing.T) {
	d := fiveSamples(t)
	d.Shuffle(true)
	want := []string{d.ID(3), d.ID(0), d.ID(3)}

	sub, err := d.Subsample([]int{3, 0, 3})
	require.NoError(t, err)
	assert.False(t, sub.Empty)
	assert.Equal(t, want, sub.Data.IDs())
	assertAligned(t, sub.Data)
	assert.Equal(t, 2, sub.Data.Metadata().Len())

	_, err = d.Subsample([]int{5})
	assert.Error(t, err)
}

func TestSubsampleEmpty(t *testing.T) {
	d := EmptyKnownData()
	sub, err := d.Subsample([]int{0, 1})
	require.NoError(t, err)
	assert.True(t, sub.Empty)
	assert.True(t, sub.Data == d)

	sub, err = d.Subsample(nil)
	require.NoError(t, err)
	assert.False(t, sub.Empty)
	assert.Equal(t, 0, sub.Data.Len())
}

func TestPreprocess(t *testing.T) {
	d := fiveSamples(t)
	d.Preprocess(func(v []float32) []float32 {
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = x * 2
		}
		return out
	})
	assert.Equal(t, []float32{6, 60}, d.Signal(3))
}

func TestNextBatch(t *testing.T) {
	d := fiveSamples(t)
	x, y := d.NextBatch(2, false)
	assert.Len(t, x, 2)
	assert.Equal(t, []int{0, 1}, y)
	_, y = d.NextBatch(2, false)
	assert.Equal(t, []int{2, 3}, y)
	_, y = d.NextBatch(2, false)
	assert.Equal(t, []int{4}, y)
	_, y = d.NextBatch(2, false)
	assert.Equal(t, []int{0, 1}, y)
}

func TestOneHotLabels(t *testing.T) {
	d := fiveSamples(t)
	oh := d.OneHotLabels(5)
	assert.Equal(t, []float32{0, 0, 1, 0, 0}, oh[2])
}

func TestEqual(t *testing.T) {
	assert.True(t, fiveSamples(t).Equal(fiveSamples(t)))
	other, err := fiveSamples(t).Subsample([]int{1, 0, 2, 3, 4})
	require.NoError(t, err)
	assert.False(t, fiveSamples(t).Equal(other.Data))
	assert.False(t, fiveSamples(t).Equal(nil))
}
