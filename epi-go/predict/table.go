// Package predict writes prediction tables and fold manifests and scores
// predictions.
package predict

import (
	"io"
	"sort"
	"strconv"

	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/gocarina/gocsv"
)

// Argmax returns the position of the highest value, the first one on ties.
func Argmax(v []float64) int {
	best := -1
	for i, x := range v {
		if best < 0 || x > v[best] {
			best = i
		}
	}
	return best
}

// WriteTable writes one row per sample: md5sum, true class, predicted class
// and the probability of every class. classes[i] is the label of output i;
// class columns are written in sorted label order.
func WriteTable(w io.Writer, md5s, trueLabels []string, probs [][]float64, classes []string) error {
	if len(md5s) != len(probs) || len(md5s) != len(trueLabels) {
		return errors.Errorf("%d md5s, %d labels and %d predictions", len(md5s), len(trueLabels), len(probs))
	}

	order := make([]int, len(classes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return classes[order[a]] < classes[order[b]] })

	cw := gocsv.DefaultCSVWriter(w)
	header := []string{"md5sum", "True class", "Predicted class"}
	for _, i := range order {
		header = append(header, classes[i])
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for k, p := range probs {
		if len(p) != len(classes) {
			return errors.Errorf("%s: %d probabilities for %d classes", md5s[k], len(p), len(classes))
		}
		row := []string{md5s[k], trueLabels[k], classes[Argmax(p)]}
		for _, i := range order {
			row = append(row, strconv.FormatFloat(p[i], 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
