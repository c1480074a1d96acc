package trecvid11

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/tuxos/fisher-vectors/internal/logging"
	"github.com/tuxos/fisher-vectors/pkg/math/gram"
	"github.com/tuxos/fisher-vectors/pkg/metrics"
)

var (
	ErrNotTwoClasses = fmt.Errorf("number of classes is not two")
	ErrTooFewClasses = fmt.Errorf("number of classes is less than two")
	errEmptyHoldOut  = fmt.Errorf("hold-out split is empty")
)

// candidate values for the regularization constant: 3^k for k in [-2, 8).
func gridC() []float64 {
	cs := make([]float64, 0, 10)
	for k := -2; k < 8; k++ {
		cs = append(cs, math.Pow(3, float64(k)))
	}
	return cs
}

type gridResult struct {
	c     float64
	score float64
}

// selectBest picks the candidate with the highest score. Equal scores resolve
// to the later, larger C.
func selectBest(results []gridResult) gridResult {
	best := gridResult{c: 0, score: math.Inf(-1)}
	for _, r := range results {
		if r.score >= best.score {
			best = r
		}
	}
	return best
}

// gridSearch evaluates every candidate C with an independent classifier
// instance, at most e.workers at a time. Selection happens in grid order, so
// the outcome does not depend on completion order.
func (e *evaluator) gridSearch(ctx context.Context, eval func(c float64) (float64, error)) (gridResult, error) {
	cs := gridC()
	results := make([]gridResult, len(cs))

	if e.workers == 1 {
		for i, c := range cs {
			score, err := eval(c)
			if err != nil {
				return gridResult{}, fmt.Errorf("unable to evaluate candidate C=%g: %w", c, err)
			}
			results[i] = gridResult{c: c, score: score}
		}
		return selectBest(results), nil
	}

	g, ctx := errgroup.WithContext(ctx)
	rate := make(chan struct{}, e.workers)
	for i, c := range cs {
		i, c := i, c
		g.Go(func() error {
			select {
			case rate <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-rate }()
			score, err := eval(c)
			if err != nil {
				return fmt.Errorf("unable to evaluate candidate C=%g: %w", c, err)
			}
			results[i] = gridResult{c: c, score: score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return gridResult{}, err
	}
	return selectBest(results), nil
}

// crossvalidateBinaryC picks C for a binary sub-problem with labels in
// {+1, -1}. The split is stratified: a holdOut fraction of each class lands in
// the hold-out set regardless of class imbalance. Candidate fits weight the
// positive class by the number of negative samples in the training split.
func (e *evaluator) crossvalidateBinaryC(ctx context.Context, k *mat.Dense, labels []float64) (float64, error) {
	if err := gram.Validate(k); err != nil {
		return 0, err
	}
	classes := distinctFloat(labels)
	if len(classes) != 2 {
		return 0, ErrNotTwoClasses
	}

	var idxs0, idxs1 []int
	for i, label := range labels {
		if label == classes[0] {
			idxs0 = append(idxs0, i)
		} else {
			idxs1 = append(idxs1, i)
		}
	}
	perm0 := permute(e.rnd, idxs0)
	perm1 := permute(e.rnd, idxs1)
	p0 := int(math.Ceil(e.holdOut * float64(len(perm0))))
	p1 := int(math.Ceil(e.holdOut * float64(len(perm1))))

	cvIdxs := append(append([]int(nil), perm0[:p0]...), perm1[:p1]...)
	trIdxs := append(append([]int(nil), perm0[p0:]...), perm1[p1:]...)
	if len(cvIdxs) == 0 || len(trIdxs) == 0 {
		return 0, errEmptyHoldOut
	}

	cvK := gram.Submatrix(k, cvIdxs, trIdxs)
	trK := gram.Submatrix(k, trIdxs, trIdxs)
	cvLabels := pickFloat(labels, cvIdxs)
	trLabels := pickFloat(labels, trIdxs)

	var nrNeg int
	for _, label := range trLabels {
		if label == -1 {
			nrNeg++
		}
	}

	best, err := e.gridSearch(ctx, func(c float64) (float64, error) {
		clf, err := e.provide(ClassifierOptions{
			C:            c,
			Probability:  true,
			ClassWeights: map[int]float64{+1: float64(nrNeg)},
		})
		if err != nil {
			return 0, err
		}
		if err := clf.Fit(trK, trLabels); err != nil {
			return 0, err
		}
		confidences, err := clf.PositiveProbabilities(cvK)
		if err != nil {
			return 0, err
		}
		return metrics.AveragePrecision(cvLabels, confidences)
	})
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Debugf("crossvalidation picked C=%g with %.4f AP", best.c, best.score)
	return best.c, nil
}

// crossvalidateMulticlassC picks C for a multiclass sub-problem scored by
// accuracy on a single unstratified hold-out split.
func (e *evaluator) crossvalidateMulticlassC(ctx context.Context, k *mat.Dense, labels []float64) (float64, error) {
	if err := gram.Validate(k); err != nil {
		return 0, err
	}
	if len(distinctFloat(labels)) < 2 {
		return 0, ErrTooFewClasses
	}

	n := len(labels)
	perm := e.rnd.Perm(n)
	p := int(math.Ceil(e.holdOut * float64(n)))
	cvIdxs := perm[:p]
	trIdxs := perm[p:]
	if len(cvIdxs) == 0 || len(trIdxs) == 0 {
		return 0, errEmptyHoldOut
	}

	cvK := gram.Submatrix(k, cvIdxs, trIdxs)
	trK := gram.Submatrix(k, trIdxs, trIdxs)
	cvLabels := pickFloat(labels, cvIdxs)
	trLabels := pickFloat(labels, trIdxs)

	best, err := e.gridSearch(ctx, func(c float64) (float64, error) {
		clf, err := e.provide(ClassifierOptions{C: c})
		if err != nil {
			return 0, err
		}
		if err := clf.Fit(trK, trLabels); err != nil {
			return 0, err
		}
		return clf.Score(cvK, cvLabels)
	})
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Debugf("crossvalidation picked C=%g with %.4f accuracy", best.c, best.score)
	return best.c, nil
}

func permute(rnd interface{ Perm(int) []int }, idxs []int) []int {
	out := make([]int, len(idxs))
	for i, j := range rnd.Perm(len(idxs)) {
		out[i] = idxs[j]
	}
	return out
}

func pickFloat(labels []float64, idxs []int) []float64 {
	out := make([]float64, len(idxs))
	for i, idx := range idxs {
		out[i] = labels[idx]
	}
	return out
}

func distinctFloat(labels []float64) []float64 {
	seen := map[float64]struct{}{}
	for _, label := range labels {
		seen[label] = struct{}{}
	}
	classes := make([]float64, 0, len(seen))
	for label := range seen {
		classes = append(classes, label)
	}
	sort.Float64s(classes)
	return classes
}
