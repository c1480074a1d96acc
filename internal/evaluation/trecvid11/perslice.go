package trecvid11

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tuxos/fisher-vectors/internal/logging"
	"github.com/tuxos/fisher-vectors/pkg/math/gram"
	"github.com/tuxos/fisher-vectors/pkg/metrics"
)

// aggregation norm over per-slice confidences; approximates the maximum.
const sliceNormP = 16

// The per-slice scenario is experimental. It trains a single calibrated
// classifier separating event samples from null and aggregates per-slice
// confidences with an L-16 norm.

func (e *evaluator) fitPerSlice(ctx context.Context, k *mat.Dense, labels []int) error {
	if err := gram.Validate(k); err != nil {
		return err
	}
	binLabels := binaryVsNull(labels, e.nullIdx)

	c, err := e.crossvalidateBinaryC(ctx, k, binLabels)
	if err != nil {
		return fmt.Errorf("unable to crossvalidate C: %w", err)
	}
	clf, err := e.provide(ClassifierOptions{C: c, Probability: true})
	if err != nil {
		return err
	}
	if err := clf.Fit(k, binLabels); err != nil {
		return fmt.Errorf("unable to fit per-slice classifier: %w", err)
	}
	e.psClf = clf
	logging.FromContext(ctx).Debugf("fitted per-slice classifier with C=%g", c)
	return nil
}

func (e *evaluator) scorePerSlice(ctx context.Context, k *mat.Dense, labels []int) (float64, error) {
	if e.psClf == nil {
		return 0, ErrNotFitted
	}
	confidences, err := e.psClf.PositiveProbabilities(k)
	if err != nil {
		return 0, err
	}
	ap, err := metrics.AveragePrecision(binaryVsNull(labels, e.nullIdx), confidences)
	if err != nil {
		return 0, err
	}
	return ap * 100, nil
}

// PredictSlices aggregates the positive-class confidences of each slice
// kernel into one value per slice.
func (e *evaluator) PredictSlices(ctx context.Context, kernels []*mat.Dense) ([]float64, error) {
	if e.psClf == nil {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(kernels))
	for i, k := range kernels {
		confidences, err := e.psClf.PositiveProbabilities(k)
		if err != nil {
			return nil, fmt.Errorf("unable to predict slice %d: %w", i, err)
		}
		out[i] = floats.Norm(confidences, sliceNormP)
	}
	return out, nil
}
