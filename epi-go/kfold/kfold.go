// Package kfold generates stratified k-fold train/test index splits.
package kfold

import (
	"log"
	"math/rand"

	"github.com/epiclass/epiatlas/epi-golib/errors"
)

// StratifiedKFold assigns every sample to one test fold so that each fold
// holds about the same proportion of every class.
type StratifiedKFold struct {
	NSplits int
	// Shuffle permutes the fold assignments within each class using Seed.
	Shuffle bool
	Seed    int64
}

// Fold is a pair of train and test positions, both ascending.
type Fold struct {
	Train []int
	Test  []int
}

// TestFolds returns the test fold of every sample. Classes are numbered by
// order of first appearance and the folds of a class are contiguous in
// sample order.
func (s StratifiedKFold) TestFolds(labels []string) ([]int, error) {
	n := s.NSplits
	if n < 2 {
		return nil, errors.Config("k-fold cross-validation requires at least 2 splits, got %d", n)
	}
	if n > len(labels) {
		return nil, errors.Config("cannot have number of splits %d greater than the number of samples %d", n, len(labels))
	}

	index := make(map[string]int)
	encoded := make([]int, len(labels))
	var counts []int
	for i, l := range labels {
		k, ok := index[l]
		if !ok {
			k = len(counts)
			index[l] = k
			counts = append(counts, 0)
		}
		encoded[i] = k
		counts[k]++
	}

	minCount, maxCount := counts[0], counts[0]
	for _, c := range counts {
		if c < minCount {
			minCount = c
		}
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount < n {
		return nil, errors.Config("number of splits %d cannot be greater than the number of members in each class", n)
	}
	if minCount < n {
		log.Printf("warning: the least populated class has only %d members, which is less than n_splits=%d", minCount, n)
	}

	// sorted encoded labels, dealt round-robin to the folds
	order := make([]int, 0, len(labels))
	for k, c := range counts {
		for j := 0; j < c; j++ {
			order = append(order, k)
		}
	}
	allocation := make([][]int, n)
	for f := range allocation {
		allocation[f] = make([]int, len(counts))
		for i := f; i < len(order); i += n {
			allocation[f][order[i]]++
		}
	}

	var rng *rand.Rand
	if s.Shuffle {
		rng = rand.New(rand.NewSource(s.Seed))
	}

	perClass := make([][]int, len(counts))
	for k := range counts {
		folds := make([]int, 0, counts[k])
		for f := 0; f < n; f++ {
			for j := 0; j < allocation[f][k]; j++ {
				folds = append(folds, f)
			}
		}
		if rng != nil {
			rng.Shuffle(len(folds), func(i, j int) {
				folds[i], folds[j] = folds[j], folds[i]
			})
		}
		perClass[k] = folds
	}

	testFolds := make([]int, len(labels))
	next := make([]int, len(counts))
	for i, k := range encoded {
		testFolds[i] = perClass[k][next[k]]
		next[k]++
	}
	return testFolds, nil
}

// Split returns the NSplits folds of labels.
func (s StratifiedKFold) Split(labels []string) ([]Fold, error) {
	testFolds, err := s.TestFolds(labels)
	if err != nil {
		return nil, err
	}
	folds := make([]Fold, s.NSplits)
	for i, f := range testFolds {
		for j := range folds {
			if j == f {
				folds[j].Test = append(folds[j].Test, i)
			} else {
				folds[j].Train = append(folds[j].Train, i)
			}
		}
	}
	return folds, nil
}
