package data

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/fileutil"
)

// DataSet groups the training, validation and test collections.
type DataSet struct {
	train      *Data
	validation *Data
	test       *Data
	classes    []string
}

// Assemble builds a DataSet from its partitions and sorted class list.
func Assemble(train, validation, test *Data, classes []string) *DataSet {
	return &DataSet{
		train:      train,
		validation: validation,
		test:       test,
		classes:    classes,
	}
}

// EmptyDataSet returns a DataSet of empty known collections.
func EmptyDataSet() *DataSet {
	return Assemble(EmptyKnownData(), EmptyKnownData(), EmptyKnownData(), nil)
}

// Train returns the training set.
func (s *DataSet) Train() *Data { return s.train }

// Validation returns the validation set.
func (s *DataSet) Validation() *Data { return s.validation }

// Test returns the test set.
func (s *DataSet) Test() *Data { return s.test }

// Classes returns the sorted classes of the dataset.
func (s *DataSet) Classes() []string { return s.classes }

// SetTrain replaces the training set and recomputes the classes.
func (s *DataSet) SetTrain(d *Data) {
	s.train = d
	s.resetClasses()
}

// SetValidation replaces the validation set and recomputes the classes.
func (s *DataSet) SetValidation(d *Data) {
	s.validation = d
	s.resetClasses()
}

// SetTest replaces the test set and recomputes the classes.
func (s *DataSet) SetTest(d *Data) {
	s.test = d
	s.resetClasses()
}

func (s *DataSet) partitions() []*Data {
	return []*Data{s.train, s.validation, s.test}
}

func (s *DataSet) resetClasses() {
	seen := make(map[string]bool)
	var classes []string
	for _, d := range s.partitions() {
		if d == nil {
			continue
		}
		for _, l := range d.OriginalLabels() {
			if !seen[l] {
				seen[l] = true
				classes = append(classes, l)
			}
		}
	}
	sort.Strings(classes)
	s.classes = classes
}

// Preprocess applies f to the signals of every non-empty partition.
func (s *DataSet) Preprocess(f func([]float32) []float32) {
	for _, d := range s.partitions() {
		if d != nil && d.Len() > 0 {
			d.Preprocess(f)
		}
	}
}

// SaveMapping writes the "output position<TAB>label" mapping of the classes.
func (s *DataSet) SaveMapping(path string) error {
	f, err := fileutil.NewWriter(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for i, label := range s.classes {
		fmt.Fprintf(w, "%d\t%s\n", i, label)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadMapping reads an "output position<TAB>label" mapping.
func LoadMapping(path string) (map[int]string, error) {
	r, err := fileutil.NewCachedReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	mapping := make(map[int]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("%s: invalid mapping line %q", path, line)
		}
		i, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, errors.Errorf("%s: invalid mapping index %q", path, parts[0])
		}
		mapping[i] = parts[1]
	}
	return mapping, scanner.Err()
}

// EncoderFromMapping returns the encoder of the labels of a mapping.
func EncoderFromMapping(mapping map[int]string) *Encoder {
	labels := make([]string, 0, len(mapping))
	for _, l := range mapping {
		labels = append(labels, l)
	}
	return NewEncoder(labels)
}
