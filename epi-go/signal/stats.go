package signal

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// ZScore returns (v - mean) / std using the population standard deviation.
// A constant vector has a zero std and yields NaN values.
func ZScore(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}
	data := make(stats.Float64Data, len(v))
	for i, x := range v {
		data[i] = float64(x)
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return v
	}
	std, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return v
	}

	out := make([]float32, len(v))
	for i, x := range data {
		out[i] = float32((x - mean) / std)
	}
	return out
}

// BinVariance returns the population variance of every bin across the
// vectors of the store.
func BinVariance(s Store) []float64 {
	ids := s.IDs()
	n := s.VectorLength()
	if len(ids) == 0 {
		return nil
	}

	variance := make([]float64, n)
	column := make([]float64, len(ids))
	scale := float64(len(ids)-1) / float64(len(ids))
	for j := 0; j < n; j++ {
		if len(ids) == 1 {
			continue
		}
		for i, id := range ids {
			column[i] = float64(s[id][j])
		}
		_, unbiased := stat.MeanVariance(column, nil)
		variance[j] = unbiased * scale
	}
	return variance
}
