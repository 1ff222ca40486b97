package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleIndices(t *testing.T) {
	labels := []string{"b", "a", "b", "b", "c", "b"}
	s := RandomOverSampler{Seed: DefaultOversampleSeed}
	indices := s.SampleIndices(labels)

	// originals first, then 3 draws of a and 3 draws of c
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, indices[:6])
	assert.Equal(t, []int{1, 1, 1}, indices[6:9])
	assert.Equal(t, []int{4, 4, 4}, indices[9:])

	counts := make(map[string]int)
	for _, i := range indices {
		counts[labels[i]]++
	}
	assert.Equal(t, map[string]int{"a": 4, "b": 4, "c": 4}, counts)
}

func TestSampleIndicesDeterministic(t *testing.T) {
	labels := []string{"x", "x", "y", "z", "x", "x", "y", "x"}
	s := RandomOverSampler{Seed: 7}
	assert.Equal(t, s.SampleIndices(labels), s.SampleIndices(labels))

	reps := s.Repetitions(labels)
	var total int
	for i, r := range reps {
		assert.True(t, r >= 1)
		if labels[i] == "x" {
			assert.Equal(t, 1, r)
		}
		total += r
	}
	assert.Equal(t, 15, total)
}

func TestSampleIndicesTiedMajority(t *testing.T) {
	// first most populated class in order of appearance is the majority
	labels := []string{"b", "a", "a", "b"}
	assert.Equal(t, []int{0, 1, 2, 3}, RandomOverSampler{Seed: 1}.SampleIndices(labels))
}
