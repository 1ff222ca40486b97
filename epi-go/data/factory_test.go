package data

import (
	"fmt"
	"testing"

	"github.com/epiclass/epiatlas/epi-go/metadata"
	"github.com/epiclass/epiatlas/epi-go/signal"
	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// classes of 10, 5 and 2 records, plus a record without signal and one
// without label
func testCatalog() (*metadata.Catalog, signal.Store) {
	store := make(signal.Store)
	var records []*metadata.Record
	add := func(label string, n int) {
		for i := 0; i < n; i++ {
			md5 := fmt.Sprintf("%s%02d", label, i)
			records = append(records, &metadata.Record{MD5: md5, Categories: map[string]string{"assay": label}})
			store[md5] = []float32{float32(i)}
		}
	}
	add("a", 10)
	add("b", 5)
	add("c", 2)
	records = append(records, &metadata.Record{MD5: "nosignal", Categories: map[string]string{"assay": "a"}})
	records = append(records, &metadata.Record{MD5: "nolabel"})
	store["nolabel"] = []float32{0}
	return metadata.New(records...), store
}

func TestNewDataSetPartitions(t *testing.T) {
	catalog, store := testCatalog()
	ds, err := NewDataSet(catalog, store, DefaultFactoryOptions("assay"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ds.Classes())
	assert.Equal(t, 15, catalog.Len())

	seen := make(map[string]int)
	for _, d := range []*Data{ds.Train(), ds.Validation(), ds.Test()} {
		for _, id := range d.IDs() {
			seen[id]++
		}
	}
	assert.Len(t, seen, catalog.Len())
	for _, md5 := range catalog.MD5s() {
		assert.Equal(t, 1, seen[md5], md5)
	}

	// a: 1 validation, 1 test, 8 train; b: 1, 1, 3
	assert.Equal(t, []string{"a00", "b00"}, ds.Validation().IDs())
	assert.Equal(t, []string{"a01", "b01"}, ds.Test().IDs())
	assert.Equal(t, 11, ds.Train().Len())
	assert.Equal(t, []int{0, 1}, ds.Validation().EncodedLabels())
	assert.Equal(t, []string{"a", "b"}, ds.Validation().OriginalLabels())
}

func TestNewDataSetOversample(t *testing.T) {
	catalog, store := testCatalog()
	opts := DefaultFactoryOptions("assay")
	opts.Oversample = true
	ds, err := NewDataSet(catalog, store, opts)
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, l := range ds.Train().OriginalLabels() {
		counts[l]++
	}
	assert.Equal(t, map[string]int{"a": 8, "b": 8}, counts)
	assert.Equal(t, 2, ds.Validation().Len())
}

func TestNewDataSetNoTraining(t *testing.T) {
	catalog, store := testCatalog()
	opts := DefaultFactoryOptions("assay")
	opts.Oversample = true
	opts.ValidationRatio, opts.TestRatio = 0.5, 0.5
	ds, err := NewDataSet(catalog, store, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Train().Len())
	assert.Equal(t, 15, ds.Validation().Len()+ds.Test().Len())
}

func TestNewDataSetBadRatios(t *testing.T) {
	catalog, store := testCatalog()
	opts := DefaultFactoryOptions("assay")
	opts.ValidationRatio = 0.9
	opts.TestRatio = 0.2
	_, err := NewDataSet(catalog, store, opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindConfig))
}
