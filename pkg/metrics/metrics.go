package metrics

import (
	"fmt"
	"sort"
)

var (
	ErrLenNotEqual = fmt.Errorf("labels and scores length is not equal")
	ErrNoPositives = fmt.Errorf("no positive labels")
)

// AveragePrecision computes the average precision of confidence scores against
// binary relevance labels (+1 relevant, anything else not relevant). Samples
// are ranked by descending score; the result is the mean of the precision at
// each relevant rank, in [0, 1].
func AveragePrecision(labels, scores []float64) (float64, error) {
	if len(labels) != len(scores) {
		return 0, ErrLenNotEqual
	}
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	var hits int
	var sum float64
	for rank, idx := range order {
		if labels[idx] == +1 {
			hits++
			sum += float64(hits) / float64(rank+1)
		}
	}
	if hits == 0 {
		return 0, ErrNoPositives
	}
	return sum / float64(hits), nil
}

// Accuracy returns the fraction of predictions equal to the true labels.
func Accuracy(truth, predicted []float64) (float64, error) {
	if len(truth) != len(predicted) {
		return 0, ErrLenNotEqual
	}
	if len(truth) == 0 {
		return 0, fmt.Errorf("unable to compute accuracy on empty labels")
	}
	var hits int
	for i := range truth {
		if truth[i] == predicted[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(truth)), nil
}
