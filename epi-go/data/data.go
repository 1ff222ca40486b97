// Package data holds the in-memory sample collections (ids, signals, labels)
// fed to classifiers and the factory splitting a catalog into
// training/validation/test sets.
package data

import (
	"log"
	"math/rand"

	"github.com/epiclass/epiatlas/epi-go/metadata"
	"github.com/epiclass/epiatlas/epi-golib/errors"
)

// ShuffleSeed is the seed of seeded shuffles.
const ShuffleSeed = 42

// Data is an ordered collection of samples. Signals and encoded labels are
// stored in the current (possibly shuffled) order; ids and original labels
// keep their insertion order and are read through the shuffle order.
type Data struct {
	ids       []string
	signals   [][]float32
	labels    []int
	labelsStr []string
	order     []int
	index     int

	known    bool
	metadata *metadata.Catalog
}

func newData(ids []string, x [][]float32, y []int, yStr []string) (*Data, error) {
	n := len(ids)
	if len(x) != n || len(y) != n || len(yStr) != n {
		return nil, errors.Integrity("data lengths differ: %d ids, %d signals, %d labels, %d original labels",
			len(ids), len(x), len(y), len(yStr))
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return &Data{
		ids:       ids,
		signals:   x,
		labels:    y,
		labelsStr: yStr,
		order:     order,
	}, nil
}

// NewKnownData builds labelled data whose metadata is catalog restricted to ids.
func NewKnownData(ids []string, x [][]float32, y []int, yStr []string, catalog *metadata.Catalog) (*Data, error) {
	d, err := newData(ids, x, y, yStr)
	if err != nil {
		return nil, err
	}
	d.known = true
	if catalog == nil {
		catalog = metadata.New()
	}
	d.metadata = catalog.Subset(ids)
	return d, nil
}

// NewUnknownData builds data without metadata.
func NewUnknownData(ids []string, x [][]float32, y []int, yStr []string) (*Data, error) {
	return newData(ids, x, y, yStr)
}

// EmptyKnownData returns an empty labelled collection.
func EmptyKnownData() *Data {
	d, _ := NewKnownData(nil, nil, nil, nil, nil)
	return d
}

// EmptyUnknownData returns an empty collection without metadata.
func EmptyUnknownData() *Data {
	d, _ := NewUnknownData(nil, nil, nil, nil)
	return d
}

// Len returns the number of samples, repeated samples included.
func (d *Data) Len() int {
	return len(d.ids)
}

// Known returns true if the data carries metadata.
func (d *Data) Known() bool {
	return d.known
}

// IDs returns the md5s in the current order.
func (d *Data) IDs() []string {
	ids := make([]string, len(d.order))
	for i, o := range d.order {
		ids[i] = d.ids[o]
	}
	return ids
}

// ID returns the md5 at position i.
func (d *Data) ID(i int) string {
	return d.ids[d.order[i]]
}

// Signals returns the signals in the current order.
func (d *Data) Signals() [][]float32 {
	return d.signals
}

// Signal returns the signal at position i.
func (d *Data) Signal(i int) []float32 {
	return d.signals[i]
}

// EncodedLabels returns the encoded labels in the current order.
func (d *Data) EncodedLabels() []int {
	return d.labels
}

// EncodedLabel returns the encoded label at position i.
func (d *Data) EncodedLabel(i int) int {
	return d.labels[i]
}

// OriginalLabels returns the string labels in the current order.
func (d *Data) OriginalLabels() []string {
	labels := make([]string, len(d.order))
	for i, o := range d.order {
		labels[i] = d.labelsStr[o]
	}
	return labels
}

// OriginalLabel returns the string label at position i.
func (d *Data) OriginalLabel(i int) string {
	return d.labelsStr[d.order[i]]
}

// Metadata returns the metadata of known data, nil otherwise. Modifying it
// modifies the data.
func (d *Data) Metadata() *metadata.Catalog {
	return d.metadata
}

// Record returns the metadata of the sample at position i.
func (d *Data) Record(i int) (*metadata.Record, bool) {
	if d.metadata == nil {
		return nil, false
	}
	return d.metadata.Get(d.ID(i))
}

// Equal compares ids, signals and labels in the current order.
func (d *Data) Equal(other *Data) bool {
	if other == nil || d.known != other.known || d.Len() != other.Len() {
		return false
	}
	for i := 0; i < d.Len(); i++ {
		if d.ID(i) != other.ID(i) || d.labels[i] != other.labels[i] || d.OriginalLabel(i) != other.OriginalLabel(i) {
			return false
		}
		if len(d.signals[i]) != len(other.signals[i]) {
			return false
		}
		for j, v := range d.signals[i] {
			if v != other.signals[i][j] {
				return false
			}
		}
	}
	return true
}

// Preprocess replaces every signal by f(signal).
func (d *Data) Preprocess(f func([]float32) []float32) {
	for i, s := range d.signals {
		d.signals[i] = f(s)
	}
}

// Shuffle permutes signals and labels together. Seeded shuffles always
// produce the same permutation for the same length; unseeded ones use the
// global random source.
func (d *Data) Shuffle(seeded bool) {
	if seeded {
		d.ShuffleWith(rand.New(rand.NewSource(ShuffleSeed)))
		return
	}
	d.permute(rand.Perm(d.Len()))
}

// ShuffleWith permutes signals and labels together using rng.
func (d *Data) ShuffleWith(rng *rand.Rand) {
	d.permute(rng.Perm(d.Len()))
}

func (d *Data) permute(perm []int) {
	order := make([]int, len(perm))
	signals := make([][]float32, len(perm))
	labels := make([]int, len(perm))
	for i, p := range perm {
		order[i] = d.order[p]
		signals[i] = d.signals[p]
		labels[i] = d.labels[p]
	}
	d.order, d.signals, d.labels = order, signals, labels
}

// NextBatch returns the next size signals and labels, restarting (and
// optionally shuffling) once every sample was returned.
func (d *Data) NextBatch(size int, shuffle bool) ([][]float32, []int) {
	if d.index >= d.Len() {
		d.index = 0
	}
	if d.index == 0 && shuffle {
		d.Shuffle(false)
	}
	start := d.index
	d.index += size
	end := d.index
	if end > d.Len() {
		end = d.Len()
	}
	return d.signals[start:end], d.labels[start:end]
}

// OneHotLabels returns the encoded labels as one-hot vectors of n classes.
func (d *Data) OneHotLabels(n int) [][]float32 {
	out := make([][]float32, len(d.labels))
	for i, l := range d.labels {
		out[i] = make([]float32, n)
		if l >= 0 && l < n {
			out[i][l] = 1
		}
	}
	return out
}

// Subsample is the result of Data.Subsample.
type Subsample struct {
	Data *Data
	// Empty is set when the source collection was empty; Data is then the
	// source itself.
	Empty bool
}

// Subsample returns the samples at positions idxs of the current order.
// Metadata of known data is restricted to the retained ids.
func (d *Data) Subsample(idxs []int) (Subsample, error) {
	if d.Len() == 0 && len(idxs) > 0 {
		log.Println("empty data, cannot subsample")
		return Subsample{Data: d, Empty: true}, nil
	}

	ids := make([]string, len(idxs))
	signals := make([][]float32, len(idxs))
	labels := make([]int, len(idxs))
	labelsStr := make([]string, len(idxs))
	for j, i := range idxs {
		if i < 0 || i >= d.Len() {
			return Subsample{}, errors.Errorf("index %d out of range for %d samples", i, d.Len())
		}
		ids[j] = d.ID(i)
		signals[j] = d.signals[i]
		labels[j] = d.labels[i]
		labelsStr[j] = d.OriginalLabel(i)
	}

	var out *Data
	var err error
	if d.known {
		out, err = NewKnownData(ids, signals, labels, labelsStr, d.metadata)
	} else {
		out, err = NewUnknownData(ids, signals, labels, labelsStr)
	}
	if err != nil {
		return Subsample{}, err
	}
	return Subsample{Data: out}, nil
}
