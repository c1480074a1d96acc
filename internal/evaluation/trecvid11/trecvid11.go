// Package trecvid11 evaluates multi-class video classification on the
// TrecVid11 dataset from precomputed kernel matrices. Each of the 15 event
// classes is discriminated against a distinguished background class NULL, or
// all events are classified jointly in a one-vs-one multiclass scenario.
package trecvid11

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/tuxos/fisher-vectors/internal/evaluation"
)

const DatasetName = "trecvid11"

const (
	defaultNullClassIdx = 15
	defaultHoldOut      = 0.3
	defaultWorkers      = 4
)

var _ evaluation.Evaluation = (*evaluator)(nil)

var ErrNotFitted = fmt.Errorf("evaluation is not fitted")

// IsEvaluationFor reports whether this evaluation handles the named dataset.
func IsEvaluationFor(dataset string) bool {
	return dataset == DatasetName
}

type Option func(*evaluator)

func WithScenario(s evaluation.Scenario) Option {
	return func(e *evaluator) {
		e.scenario = s
	}
}

func WithNullClass(idx int) Option {
	return func(e *evaluator) {
		e.nullIdx = idx
	}
}

// WithHoldOut sets the fraction of samples held out during the C search.
func WithHoldOut(pp float64) Option {
	return func(e *evaluator) {
		e.holdOut = pp
	}
}

// WithRand sets the random source used for cross-validation splits, making
// them reproducible.
func WithRand(rnd *rand.Rand) Option {
	return func(e *evaluator) {
		e.rnd = rnd
	}
}

// WithWorkers bounds the number of concurrent grid-search candidates.
func WithWorkers(n int) Option {
	return func(e *evaluator) {
		e.workers = n
	}
}

// WithClassifierProvider replaces the default SVC-backed classifier.
func WithClassifierProvider(fn ProvideClassifierFn) Option {
	return func(e *evaluator) {
		e.provide = fn
	}
}

type evaluator struct {
	scenario evaluation.Scenario
	nullIdx  int
	holdOut  float64
	workers  int
	rnd      *rand.Rand
	provide  ProvideClassifierFn

	// fitted state, replaced wholesale on each Fit
	nrClasses int
	clfs      []KernelClassifier
	masks     [][]bool
	mcClf     KernelClassifier
	mcMask    []bool
	psClf     KernelClassifier
}

func New(opts ...Option) (*evaluator, error) {
	e := &evaluator{
		scenario: evaluation.ScenarioMulticlass,
		nullIdx:  defaultNullClassIdx,
		holdOut:  defaultHoldOut,
		workers:  defaultWorkers,
		provide:  provideSVC,
	}
	for _, f := range opts {
		f(e)
	}
	switch e.scenario {
	case evaluation.ScenarioMulticlass, evaluation.ScenarioVersusNull, evaluation.ScenarioPerSlice:
	default:
		return nil, fmt.Errorf("unknown evaluation scenario %q", e.scenario)
	}
	if e.rnd == nil {
		e.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e, nil
}

func (e *evaluator) Fit(ctx context.Context, k *mat.Dense, labels []int) error {
	e.nrClasses = 0
	e.clfs = nil
	e.masks = nil
	e.mcClf = nil
	e.mcMask = nil
	e.psClf = nil

	switch e.scenario {
	case evaluation.ScenarioMulticlass:
		return e.fitOneVsOne(ctx, k, labels)
	case evaluation.ScenarioVersusNull:
		return e.fitOneVsRest(ctx, k, labels)
	case evaluation.ScenarioPerSlice:
		return e.fitPerSlice(ctx, k, labels)
	default:
		return fmt.Errorf("unknown evaluation scenario %q", e.scenario)
	}
}

func (e *evaluator) Score(ctx context.Context, k *mat.Dense, labels []int) (float64, error) {
	switch e.scenario {
	case evaluation.ScenarioMulticlass:
		return e.scoreOneVsOne(ctx, k, labels)
	case evaluation.ScenarioVersusNull:
		return e.scoreOneVsRest(ctx, k, labels)
	case evaluation.ScenarioPerSlice:
		return e.scorePerSlice(ctx, k, labels)
	default:
		return 0, fmt.Errorf("unknown evaluation scenario %q", e.scenario)
	}
}

func (e *evaluator) Predict(ctx context.Context, k *mat.Dense, labels []int) (*evaluation.Prediction, error) {
	if e.scenario != evaluation.ScenarioMulticlass {
		return nil, evaluation.ErrNotSupported
	}
	return e.predictOneVsOne(ctx, k, labels)
}

func maskEq(labels []int, a, b int) []bool {
	mask := make([]bool, len(labels))
	for i, label := range labels {
		mask[i] = label == a || label == b
	}
	return mask
}

func maskNot(labels []int, v int) []bool {
	mask := make([]bool, len(labels))
	for i, label := range labels {
		mask[i] = label != v
	}
	return mask
}

func pick(labels []int, mask []bool) []int {
	out := make([]int, 0, len(labels))
	for i, label := range labels {
		if mask[i] {
			out = append(out, label)
		}
	}
	return out
}

func countLabel(labels []int, v int) int {
	var n int
	for _, label := range labels {
		if label == v {
			n++
		}
	}
	return n
}

func distinct(labels []int) int {
	seen := map[int]struct{}{}
	for _, label := range labels {
		seen[label] = struct{}{}
	}
	return len(seen)
}

// binaryFor remaps the masked labels to +1 for the positive class, -1 for
// anything else.
func binaryFor(labels []int, mask []bool, pos int) []float64 {
	out := make([]float64, 0, len(labels))
	for i, label := range labels {
		if !mask[i] {
			continue
		}
		if label == pos {
			out = append(out, +1)
		} else {
			out = append(out, -1)
		}
	}
	return out
}

// binaryVsNull remaps labels to +1 for any event class, -1 for null.
func binaryVsNull(labels []int, null int) []float64 {
	out := make([]float64, len(labels))
	for i, label := range labels {
		if label == null {
			out[i] = -1
		} else {
			out[i] = +1
		}
	}
	return out
}

func toFloat(labels []int) []float64 {
	out := make([]float64, len(labels))
	for i, label := range labels {
		out[i] = float64(label)
	}
	return out
}

func toInt(labels []float64) []int {
	out := make([]int, len(labels))
	for i, label := range labels {
		out[i] = int(label)
	}
	return out
}
