package predict

import (
	"log"
)

// Metrics of a classification.
type Metrics struct {
	Accuracy float64
	MacroF1  float64
	N        int
}

// ComputeMetrics scores predicted against true class indices in [0, nClasses).
// The F1 score is averaged over the classes present in either slice. ok is
// false when there is nothing to score.
func ComputeMetrics(yTrue, yPred []int, nClasses int) (m Metrics, ok bool) {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		log.Printf("cannot compute metrics on %d true labels and %d predictions", len(yTrue), len(yPred))
		return Metrics{}, false
	}

	tp := make([]int, nClasses)
	fp := make([]int, nClasses)
	fn := make([]int, nClasses)
	var correct int
	for i, t := range yTrue {
		p := yPred[i]
		if t < 0 || t >= nClasses || p < 0 || p >= nClasses {
			log.Printf("class index out of range at %d: true %d, predicted %d, %d classes", i, t, p, nClasses)
			return Metrics{}, false
		}
		if t == p {
			correct++
			tp[t]++
			continue
		}
		fn[t]++
		fp[p]++
	}

	var f1Sum float64
	var present int
	for c := 0; c < nClasses; c++ {
		if tp[c]+fp[c]+fn[c] == 0 {
			continue
		}
		present++
		f1Sum += 2 * float64(tp[c]) / float64(2*tp[c]+fp[c]+fn[c])
	}

	return Metrics{
		Accuracy: float64(correct) / float64(len(yTrue)),
		MacroF1:  f1Sum / float64(present),
		N:        len(yTrue),
	}, true
}
