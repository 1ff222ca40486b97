package data

import (
	"log"
	"math"

	"github.com/epiclass/epiatlas/epi-go/metadata"
	"github.com/epiclass/epiatlas/epi-go/signal"
	"github.com/epiclass/epiatlas/epi-golib/errors"
)

// FactoryOptions configure NewDataSet.
type FactoryOptions struct {
	// Category is the metadata category used as label.
	Category string
	// Oversample balances the training set with a RandomOverSampler.
	Oversample bool
	// MinClassSize drops the classes with fewer records.
	MinClassSize    int
	ValidationRatio float64
	TestRatio       float64
}

// DefaultFactoryOptions returns the default split: 10% validation, 10% test,
// classes of at least 3 records.
func DefaultFactoryOptions(category string) FactoryOptions {
	return FactoryOptions{
		Category:        category,
		MinClassSize:    3,
		ValidationRatio: 0.1,
		TestRatio:       0.1,
	}
}

// CheckRatios returns an error when the validation and test ratios exceed
// 100%, and whether oversampling can stay on.
func CheckRatios(validation, test float64) (oversampleOK bool, err error) {
	if validation < 0 || test < 0 {
		return false, errors.Config("negative split ratios: %v and %v", validation, test)
	}
	if validation+test > 1 {
		return false, errors.Config("validation and test ratios are bigger than 100%%: %v and %v", validation, test)
	}
	train := 1 - validation - test
	log.Printf("training/validation/test split: %.1f%%/%.1f%%/%.1f%%", train*100, validation*100, test*100)
	if math.Abs(train) < 1e-8 {
		log.Println("forcing oversampling off, training set is empty")
		return false, nil
	}
	return true, nil
}

// NewDataSet splits the catalog into training, validation and test sets.
// The catalog is filtered in place: records without the label category,
// without a signal in source, or in a class smaller than MinClassSize are
// removed. Every remaining md5 lands in exactly one partition.
func NewDataSet(catalog *metadata.Catalog, source signal.Source, opts FactoryOptions) (*DataSet, error) {
	oversampleOK, err := CheckRatios(opts.ValidationRatio, opts.TestRatio)
	if err != nil {
		return nil, err
	}
	oversample := opts.Oversample && oversampleOK

	catalog.RemoveMissingCategory(opts.Category)
	KeepSignalOverlap(catalog, source)
	catalog.RemoveSmallClasses(opts.MinClassSize, opts.Category)

	signals, err := source.Load(catalog.MD5s())
	if err != nil {
		return nil, errors.Wrapf(err, "error loading signals")
	}

	classes := catalog.UniqueClasses(opts.Category)
	encoder := NewEncoder(classes)

	train, validation, test := SplitMD5s(catalog, opts.Category, opts.ValidationRatio, opts.TestRatio)
	if oversample {
		labels := labelsOf(catalog, opts.Category, train)
		var resampled []string
		for _, i := range (RandomOverSampler{Seed: DefaultOversampleSeed}).SampleIndices(labels) {
			resampled = append(resampled, train[i])
		}
		train = resampled
	}

	var parts []*Data
	for _, md5s := range [][]string{train, validation, test} {
		d, err := buildKnown(catalog, signals, encoder, opts.Category, md5s)
		if err != nil {
			return nil, err
		}
		parts = append(parts, d)
	}

	log.Printf("training size %d", parts[0].Len())
	log.Printf("validation size %d", parts[1].Len())
	log.Printf("test size %d", parts[2].Len())

	return Assemble(parts[0], parts[1], parts[2], classes), nil
}

// KeepSignalOverlap removes the records without a signal in source.
func KeepSignalOverlap(catalog *metadata.Catalog, source signal.Source) {
	available := make(map[string]bool)
	for _, id := range source.IDs() {
		available[id] = true
	}
	catalog.Filter(func(r *metadata.Record) bool {
		return available[r.MD5]
	})
}

// SplitMD5s splits the md5s of every class, taken in ascending order, into
// ceil(n*validation) validation md5s, then ceil(n*test) test md5s, the rest
// going to training. Classes are visited in ascending order.
func SplitMD5s(catalog *metadata.Catalog, category string, validation, test float64) (train, valid, tst []string) {
	groups := catalog.GroupByCategory(category)
	for _, label := range catalog.UniqueClasses(category) {
		md5s := groups[label]
		n := len(md5s)
		if n < 3 {
			log.Printf("the label %q contains only %d datasets", label, n)
		}
		nv := clamp(int(math.Ceil(float64(n)*validation)), n)
		nt := clamp(nv+int(math.Ceil(float64(n)*test)), n)

		valid = append(valid, md5s[:nv]...)
		tst = append(tst, md5s[nv:nt]...)
		train = append(train, md5s[nt:]...)
	}
	return train, valid, tst
}

func clamp(i, n int) int {
	if i > n {
		return n
	}
	return i
}

func labelsOf(catalog *metadata.Catalog, category string, md5s []string) []string {
	labels := make([]string, len(md5s))
	for i, md5 := range md5s {
		if r, ok := catalog.Get(md5); ok {
			labels[i] = r.Value(category)
		}
	}
	return labels
}

func buildKnown(catalog *metadata.Catalog, signals signal.Store, encoder *Encoder, category string, md5s []string) (*Data, error) {
	x := make([][]float32, len(md5s))
	for i, md5 := range md5s {
		v, ok := signals[md5]
		if !ok {
			return nil, errors.Integrity("no signal for %s", md5)
		}
		x[i] = v
	}
	labels := labelsOf(catalog, category, md5s)
	y, err := encoder.EncodeAll(labels)
	if err != nil {
		return nil, err
	}
	return NewKnownData(md5s, x, y, labels, catalog)
}
