package trecvid11

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/tuxos/fisher-vectors/internal/logging"
	"github.com/tuxos/fisher-vectors/pkg/math/gram"
	"github.com/tuxos/fisher-vectors/pkg/metrics"
)

// fitOneVsRest trains one binary classifier per non-null class, each
// discriminating that class against the null class. The sample masks built
// here are kept for slicing test kernels at score time.
func (e *evaluator) fitOneVsRest(ctx context.Context, k *mat.Dense, labels []int) error {
	if err := gram.Validate(k); err != nil {
		return err
	}
	logger := logging.FromContext(ctx)

	e.nrClasses = distinct(labels)
	// The positive class weight counters the null class outnumbering every
	// single event class; it is the null count of the full training set, not
	// of the slice.
	nrNullSamples := countLabel(labels, e.nullIdx)

	for ii := 0; ii < e.nrClasses-1; ii++ {
		mask := maskEq(labels, ii, e.nullIdx)
		sub, err := gram.Slice(k, mask, mask)
		if err != nil {
			return fmt.Errorf("unable to slice training kernel for class %d: %w", ii, err)
		}
		subLabels := binaryFor(labels, mask, ii)

		c, err := e.crossvalidateBinaryC(ctx, sub, subLabels)
		if err != nil {
			return fmt.Errorf("unable to crossvalidate C for class %d: %w", ii, err)
		}
		clf, err := e.provide(ClassifierOptions{
			C:            c,
			Probability:  true,
			ClassWeights: map[int]float64{+1: float64(nrNullSamples)},
		})
		if err != nil {
			return err
		}
		if err := clf.Fit(sub, subLabels); err != nil {
			return fmt.Errorf("unable to fit classifier for class %d: %w", ii, err)
		}
		e.masks = append(e.masks, mask)
		e.clfs = append(e.clfs, clf)
		logger.Debugf("fitted class %d vs null on %d samples with C=%g", ii, gram.Count(mask), c)
	}
	return nil
}

// scoreOneVsRest reports the mean per-class average precision as a
// percentage. Test rows are masked per class; columns are restricted to the
// training mask stored at fit time.
func (e *evaluator) scoreOneVsRest(ctx context.Context, k *mat.Dense, labels []int) (float64, error) {
	if len(e.clfs) == 0 {
		return 0, ErrNotFitted
	}
	logger := logging.FromContext(ctx)

	aps := make([]float64, e.nrClasses-1)
	for ii := 0; ii < e.nrClasses-1; ii++ {
		rows := maskEq(labels, ii, e.nullIdx)
		sub, err := gram.Slice(k, rows, e.masks[ii])
		if err != nil {
			return 0, fmt.Errorf("unable to slice test kernel for class %d: %w", ii, err)
		}
		confidences, err := e.clfs[ii].PositiveProbabilities(sub)
		if err != nil {
			return 0, fmt.Errorf("unable to predict class %d: %w", ii, err)
		}
		ap, err := metrics.AveragePrecision(binaryFor(labels, rows, ii), confidences)
		if err != nil {
			return 0, fmt.Errorf("unable to score class %d: %w", ii, err)
		}
		aps[ii] = ap
		logger.Infof("score for class %d as positive is %.4f AP", ii, ap)
	}
	return stat.Mean(aps, nil) * 100, nil
}
