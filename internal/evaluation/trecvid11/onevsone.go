package trecvid11

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/tuxos/fisher-vectors/internal/evaluation"
	"github.com/tuxos/fisher-vectors/internal/logging"
	"github.com/tuxos/fisher-vectors/pkg/math/gram"
)

// fitOneVsOne trains a single multiclass classifier on the non-null samples.
// The SVC decomposes the multiclass problem into one-vs-one binary classifiers
// internally.
func (e *evaluator) fitOneVsOne(ctx context.Context, k *mat.Dense, labels []int) error {
	if err := gram.Validate(k); err != nil {
		return err
	}
	mask := maskNot(labels, e.nullIdx)
	sub, err := gram.Slice(k, mask, mask)
	if err != nil {
		return fmt.Errorf("unable to slice training kernel: %w", err)
	}
	subLabels := toFloat(pick(labels, mask))

	c, err := e.crossvalidateMulticlassC(ctx, sub, subLabels)
	if err != nil {
		return fmt.Errorf("unable to crossvalidate C: %w", err)
	}
	// Final fit with the chosen C on the full non-null slice; trial
	// classifiers from the search are never reused.
	clf, err := e.provide(ClassifierOptions{C: c})
	if err != nil {
		return err
	}
	if err := clf.Fit(sub, subLabels); err != nil {
		return fmt.Errorf("unable to fit multiclass classifier: %w", err)
	}
	e.mcClf = clf
	e.mcMask = mask
	logging.FromContext(ctx).Debugf("fitted multiclass classifier on %d samples with C=%g", gram.Count(mask), c)
	return nil
}

// scoreOneVsOne reports plain accuracy scaled to a percentage, unlike the
// other scenarios which report mean average precision.
func (e *evaluator) scoreOneVsOne(ctx context.Context, k *mat.Dense, labels []int) (float64, error) {
	if e.mcClf == nil {
		return 0, ErrNotFitted
	}
	rows := maskNot(labels, e.nullIdx)
	sub, err := gram.Slice(k, rows, e.mcMask)
	if err != nil {
		return 0, fmt.Errorf("unable to slice test kernel: %w", err)
	}
	accuracy, err := e.mcClf.Score(sub, toFloat(pick(labels, rows)))
	if err != nil {
		return 0, err
	}
	return accuracy * 100, nil
}

func (e *evaluator) predictOneVsOne(ctx context.Context, k *mat.Dense, labels []int) (*evaluation.Prediction, error) {
	if e.mcClf == nil {
		return nil, ErrNotFitted
	}
	rows := maskNot(labels, e.nullIdx)
	sub, err := gram.Slice(k, rows, e.mcMask)
	if err != nil {
		return nil, fmt.Errorf("unable to slice test kernel: %w", err)
	}
	predicted, err := e.mcClf.Predict(sub)
	if err != nil {
		return nil, err
	}
	return &evaluation.Prediction{
		Truth:     pick(labels, rows),
		Predicted: toInt(predicted),
	}, nil
}
