package data

import (
	"sort"

	"github.com/epiclass/epiatlas/epi-golib/errors"
)

// Encoder maps labels to their position among the sorted classes.
type Encoder struct {
	classes []string
	index   map[string]int
}

// NewEncoder returns an encoder over the distinct classes, sorted.
func NewEncoder(classes []string) *Encoder {
	index := make(map[string]int, len(classes))
	var sorted []string
	for _, c := range classes {
		if _, ok := index[c]; !ok {
			index[c] = 0
			sorted = append(sorted, c)
		}
	}
	sort.Strings(sorted)
	for i, c := range sorted {
		index[c] = i
	}
	return &Encoder{classes: sorted, index: index}
}

// Classes returns the sorted classes.
func (e *Encoder) Classes() []string {
	return e.classes
}

// Encode returns the integer encoding of label.
func (e *Encoder) Encode(label string) (int, error) {
	i, ok := e.index[label]
	if !ok {
		return 0, errors.Errorf("unknown label %q", label)
	}
	return i, nil
}

// EncodeAll encodes every label.
func (e *Encoder) EncodeAll(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		c, err := e.Encode(l)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// OneHot encodes every label as a one-hot vector over the classes.
func (e *Encoder) OneHot(labels []string) ([][]float32, error) {
	encoded, err := e.EncodeAll(labels)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(encoded))
	for i, c := range encoded {
		out[i] = make([]float32, len(e.classes))
		out[i][c] = 1
	}
	return out, nil
}

// Decode returns the label of class i.
func (e *Encoder) Decode(i int) (string, error) {
	if i < 0 || i >= len(e.classes) {
		return "", errors.Errorf("class %d out of range for %d classes", i, len(e.classes))
	}
	return e.classes[i], nil
}
