package kfold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestFolds(t *testing.T) {
	labels := []string{"b", "a", "b", "a", "b", "a", "b", "b"}
	folds, err := StratifiedKFold{NSplits: 2}.TestFolds(labels)
	require.NoError(t, err)
	// b is class 0 (5 members), a is class 1 (3 members)
	// sorted: 0 0 0 0 0 1 1 1 -> fold0 gets 3 b + 1 a, fold1 gets 2 b + 2 a
	assert.Equal(t, []int{0, 0, 0, 1, 0, 1, 1, 1}, folds)
}

func TestSplitCoversEverySample(t *testing.T) {
	var labels []string
	for i := 0; i < 23; i++ {
		labels = append(labels, []string{"x", "y", "z"}[i%3])
	}
	folds, err := StratifiedKFold{NSplits: 5}.Split(labels)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	seen := make(map[int]int)
	for _, f := range folds {
		assert.Equal(t, len(labels), len(f.Train)+len(f.Test))
		for _, i := range f.Test {
			seen[i]++
		}
		counts := make(map[string]int)
		for _, i := range f.Test {
			counts[labels[i]]++
		}
		for _, c := range counts {
			assert.True(t, c >= 1 && c <= 2)
		}
	}
	assert.Len(t, seen, len(labels))
	for _, n := range seen {
		assert.Equal(t, 1, n)
	}
}

func TestShuffleSeeded(t *testing.T) {
	labels := []string{"a", "a", "a", "a", "b", "b", "b", "b"}
	s := StratifiedKFold{NSplits: 2, Shuffle: true, Seed: 7}
	first, err := s.TestFolds(labels)
	require.NoError(t, err)
	second, err := s.TestFolds(labels)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var zeros int
	for _, f := range first[:4] {
		if f == 0 {
			zeros++
		}
	}
	assert.Equal(t, 2, zeros)
}

func TestErrors(t *testing.T) {
	_, err := StratifiedKFold{NSplits: 1}.TestFolds([]string{"a", "b"})
	assert.Error(t, err)

	_, err = StratifiedKFold{NSplits: 3}.TestFolds([]string{"a", "b"})
	assert.Error(t, err)

	_, err = StratifiedKFold{NSplits: 3}.TestFolds([]string{"a", "a", "b", "b"})
	assert.Error(t, err)

	// smallest class below the split count only warns
	_, err = StratifiedKFold{NSplits: 2}.TestFolds([]string{"a", "a", "b"})
	assert.NoError(t, err)
}
