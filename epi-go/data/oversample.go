package data

import (
	"math/rand"
	"sort"
)

// DefaultOversampleSeed is the seed used when oversampling training sets.
const DefaultOversampleSeed = 42

// RandomOverSampler balances classes by drawing, with replacement, extra
// samples of every class smaller than the majority class.
type RandomOverSampler struct {
	Seed int64
}

// SampleIndices returns every position of labels followed, for each
// non-majority class in ascending order, by as many random positions of that
// class as it lacks to reach the majority count. The majority class is the
// first most populated class in order of appearance.
func (s RandomOverSampler) SampleIndices(labels []string) []int {
	positions := make(map[string][]int)
	var appearance []string
	for i, l := range labels {
		if _, ok := positions[l]; !ok {
			appearance = append(appearance, l)
		}
		positions[l] = append(positions[l], i)
	}

	var majority string
	best := -1
	for _, l := range appearance {
		if len(positions[l]) > best {
			majority, best = l, len(positions[l])
		}
	}

	classes := append([]string(nil), appearance...)
	sort.Strings(classes)

	rng := rand.New(rand.NewSource(s.Seed))
	indices := make([]int, len(labels))
	for i := range indices {
		indices[i] = i
	}
	for _, c := range classes {
		if c == majority {
			continue
		}
		pos := positions[c]
		for n := best - len(pos); n > 0; n-- {
			indices = append(indices, pos[rng.Intn(len(pos))])
		}
	}
	return indices
}

// Repetitions returns how many times each position appears in SampleIndices.
func (s RandomOverSampler) Repetitions(labels []string) []int {
	reps := make([]int, len(labels))
	for _, i := range s.SampleIndices(labels) {
		reps[i]++
	}
	return reps
}
