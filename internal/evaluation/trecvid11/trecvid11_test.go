package trecvid11

import (
	"context"
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/tuxos/fisher-vectors/internal/evaluation"
	"github.com/tuxos/fisher-vectors/pkg/math/gram"
	"github.com/tuxos/fisher-vectors/pkg/metrics"
)

// fakeClassifier is a deterministic nearest-neighbor stand-in for the SVC. It
// ranks samples by mean similarity to the positive training samples minus
// mean similarity to the negative ones, which is perfect on block kernels.
type fakeClassifier struct {
	opts        ClassifierOptions
	trainLabels []float64
	recorder    *recordingProvider
}

func (f *fakeClassifier) Fit(k *mat.Dense, labels []float64) error {
	f.trainLabels = append([]float64(nil), labels...)
	if f.recorder != nil {
		f.recorder.recordFit(labels)
	}
	return nil
}

func (f *fakeClassifier) Predict(k *mat.Dense) ([]float64, error) {
	r, c := k.Dims()
	predicted := make([]float64, r)
	for i := 0; i < r; i++ {
		best := 0
		for j := 1; j < c; j++ {
			if k.At(i, j) > k.At(i, best) {
				best = j
			}
		}
		predicted[i] = f.trainLabels[best]
	}
	return predicted, nil
}

func (f *fakeClassifier) PositiveProbabilities(k *mat.Dense) ([]float64, error) {
	r, c := k.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		var posSum, negSum, pos, neg float64
		for j := 0; j < c; j++ {
			if f.trainLabels[j] == +1 {
				posSum += k.At(i, j)
				pos++
			} else {
				negSum += k.At(i, j)
				neg++
			}
		}
		// squashed into [0, 1] like a calibrated probability
		out[i] = 0.5 + (posSum/pos-negSum/neg)/2
	}
	return out, nil
}

func (f *fakeClassifier) Score(k *mat.Dense, labels []float64) (float64, error) {
	predicted, err := f.Predict(k)
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy(labels, predicted)
}

type recordingProvider struct {
	mu    sync.Mutex
	calls []ClassifierOptions
	fits  [][]float64
}

func (r *recordingProvider) provide(o ClassifierOptions) (KernelClassifier, error) {
	r.mu.Lock()
	r.calls = append(r.calls, o)
	r.mu.Unlock()
	return &fakeClassifier{opts: o, recorder: r}, nil
}

func (r *recordingProvider) recordFit(labels []float64) {
	r.mu.Lock()
	r.fits = append(r.fits, append([]float64(nil), labels...))
	r.mu.Unlock()
}

// blockKernel builds a similarity matrix with 1.0 inside a class and 0.1
// across classes.
func blockKernel(rows, cols []int) *mat.Dense {
	k := mat.NewDense(len(rows), len(cols), nil)
	for i, ri := range rows {
		for j, cj := range cols {
			if ri == cj {
				k.Set(i, j, 1.0)
			} else {
				k.Set(i, j, 0.1)
			}
		}
	}
	return k
}

func newTestEvaluator(t *testing.T, rec *recordingProvider, seed int64, opts ...Option) *evaluator {
	t.Helper()
	opts = append([]Option{
		WithRand(rand.New(rand.NewSource(seed))),
		WithWorkers(1),
		WithClassifierProvider(rec.provide),
	}, opts...)
	e, err := New(opts...)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	return e
}

func TestNewUnknownScenario(t *testing.T) {
	if _, err := New(WithScenario(evaluation.Scenario("WRONG"))); err == nil {
		t.Errorf("the error should be returned for an unknown scenario")
	}
}

func TestIsEvaluationFor(t *testing.T) {
	tests := []struct {
		name     string
		dataset  string
		expected bool
	}{
		{name: "positive", dataset: "trecvid11", expected: true},
		{name: "negative", dataset: "hollywood2", expected: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsEvaluationFor(test.dataset); got != test.expected {
				t.Errorf("compute IsEvaluationFor, got: %v, expected: %v", got, test.expected)
			}
		})
	}
}

func TestFitOneVsRestMasks(t *testing.T) {
	labels := []int{0, 0, 0, 1, 1, 2, 2}
	k := blockKernel(labels, labels)
	rec := &recordingProvider{}
	e := newTestEvaluator(t, rec, 1, WithScenario(evaluation.ScenarioVersusNull), WithNullClass(2))

	if err := e.Fit(context.Background(), k, labels); err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if len(e.masks) != 2 || len(e.clfs) != 2 {
		t.Fatalf("compute Fit, got: %d masks and %d classifiers, expected: 2 and 2", len(e.masks), len(e.clfs))
	}
	// Each mask selects the class samples plus all null samples.
	expectedCounts := []int{3 + 2, 2 + 2}
	for ii, mask := range e.masks {
		if got := gram.Count(mask); got != expectedCounts[ii] {
			t.Errorf("mask %d true-count, got: %d, expected: %d", ii, got, expectedCounts[ii])
		}
	}
}

func TestFitOneVsRestWeights(t *testing.T) {
	labels := []int{0, 0, 0, 1, 1, 2, 2}
	nrNull := 2.0
	k := blockKernel(labels, labels)
	rec := &recordingProvider{}
	e := newTestEvaluator(t, rec, 1, WithScenario(evaluation.ScenarioVersusNull), WithNullClass(2))

	if err := e.Fit(context.Background(), k, labels); err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	// Per class: 10 grid candidates then one final fit. The final fit weights
	// the positive class by the null count of the full training set.
	grid := len(gridC())
	finals := []int{grid, 2*grid + 1}
	if len(rec.calls) != 2*grid+2 {
		t.Fatalf("provider calls, got: %d, expected: %d", len(rec.calls), 2*grid+2)
	}
	for _, idx := range finals {
		call := rec.calls[idx]
		if !call.Probability {
			t.Errorf("final fit %d must request probability estimates", idx)
		}
		if call.ClassWeights[+1] != nrNull {
			t.Errorf("final fit %d positive weight, got: %f, expected: %f", idx, call.ClassWeights[+1], nrNull)
		}
	}
}

func TestFitDeterministicWithSeed(t *testing.T) {
	labels := []int{0, 0, 0, 0, 1, 1, 2, 2, 2}
	k := blockKernel(labels, labels)

	run := func() (*recordingProvider, float64) {
		rec := &recordingProvider{}
		e := newTestEvaluator(t, rec, 7, WithScenario(evaluation.ScenarioVersusNull), WithNullClass(2))
		if err := e.Fit(context.Background(), k, labels); err != nil {
			t.Fatalf("the error should not be returned: %v", err)
		}
		score, err := e.Score(context.Background(), k, labels)
		if err != nil {
			t.Fatalf("the error should not be returned: %v", err)
		}
		return rec, score
	}

	rec1, score1 := run()
	rec2, score2 := run()
	if !reflect.DeepEqual(rec1.fits, rec2.fits) {
		t.Errorf("crossvalidation splits differ between runs with the same seed")
	}
	if !reflect.DeepEqual(rec1.calls, rec2.calls) {
		t.Errorf("classifier options differ between runs with the same seed")
	}
	if score1 != score2 {
		t.Errorf("scores differ between seeded runs, got: %f and %f", score1, score2)
	}
}

func TestEndToEndVersusNull(t *testing.T) {
	// 6 training samples: 4 of class 0 and 2 null.
	trainLabels := []int{0, 0, 0, 0, 1, 1}
	testLabels := []int{0, 0, 1, 1}
	trainK := blockKernel(trainLabels, trainLabels)
	testK := blockKernel(testLabels, trainLabels)

	rec := &recordingProvider{}
	e := newTestEvaluator(t, rec, 3, WithScenario(evaluation.ScenarioVersusNull), WithNullClass(1))

	if err := e.Fit(context.Background(), trainK, trainLabels); err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if len(e.clfs) != 1 || len(e.masks) != 1 {
		t.Fatalf("compute Fit, got: %d classifiers and %d masks, expected: 1 and 1", len(e.clfs), len(e.masks))
	}
	score, err := e.Score(context.Background(), testK, testLabels)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if score < 0 || score > 100 {
		t.Errorf("compute Score, got: %f, expected a value in [0, 100]", score)
	}
}

func TestOneVsOneExcludesNull(t *testing.T) {
	trainLabels := []int{0, 0, 0, 1, 1, 1, 2, 2}
	testLabels := []int{0, 1, 2, 2, 1}
	trainK := blockKernel(trainLabels, trainLabels)
	testK := blockKernel(testLabels, trainLabels)

	rec := &recordingProvider{}
	e := newTestEvaluator(t, rec, 5, WithScenario(evaluation.ScenarioMulticlass), WithNullClass(2))

	if err := e.Fit(context.Background(), trainK, trainLabels); err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	prediction, err := e.Predict(context.Background(), testK, testLabels)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	nonNull := 3
	if len(prediction.Predicted) != nonNull || len(prediction.Truth) != nonNull {
		t.Errorf("compute Predict, got: %d predictions and %d truths, expected: %d",
			len(prediction.Predicted), len(prediction.Truth), nonNull)
	}
	for _, label := range prediction.Truth {
		if label == 2 {
			t.Errorf("null-class sample leaked into prediction truth")
		}
	}
	score, err := e.Score(context.Background(), testK, testLabels)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	// Block kernels make nearest-neighbor prediction exact.
	if score != 100 {
		t.Errorf("compute Score, got: %f, expected: 100", score)
	}
}

func TestPredictUnsupportedScenario(t *testing.T) {
	rec := &recordingProvider{}
	e := newTestEvaluator(t, rec, 1, WithScenario(evaluation.ScenarioVersusNull), WithNullClass(1))
	if _, err := e.Predict(context.Background(), mat.NewDense(1, 1, nil), []int{0}); err != evaluation.ErrNotSupported {
		t.Errorf("compute Predict, got: %v, expected: %v", err, evaluation.ErrNotSupported)
	}
}

func TestScoreBeforeFit(t *testing.T) {
	for _, scenario := range []evaluation.Scenario{
		evaluation.ScenarioMulticlass,
		evaluation.ScenarioVersusNull,
		evaluation.ScenarioPerSlice,
	} {
		rec := &recordingProvider{}
		e := newTestEvaluator(t, rec, 1, WithScenario(scenario), WithNullClass(1))
		if _, err := e.Score(context.Background(), mat.NewDense(1, 1, nil), []int{0}); err != ErrNotFitted {
			t.Errorf("scenario %s: compute Score, got: %v, expected: %v", scenario, err, ErrNotFitted)
		}
	}
}

func TestFitNotGram(t *testing.T) {
	rec := &recordingProvider{}
	e := newTestEvaluator(t, rec, 1, WithScenario(evaluation.ScenarioVersusNull), WithNullClass(1))
	if err := e.Fit(context.Background(), mat.NewDense(2, 3, nil), []int{0, 1}); err != gram.ErrNotGram {
		t.Errorf("compute Fit, got: %v, expected: %v", err, gram.ErrNotGram)
	}
}

func TestPerSliceExperimental(t *testing.T) {
	trainLabels := []int{0, 0, 0, 1, 1, 1}
	trainK := blockKernel(trainLabels, trainLabels)

	rec := &recordingProvider{}
	e := newTestEvaluator(t, rec, 9, WithScenario(evaluation.ScenarioPerSlice), WithNullClass(1))
	if err := e.Fit(context.Background(), trainK, trainLabels); err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	score, err := e.Score(context.Background(), trainK, trainLabels)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if score < 0 || score > 100 {
		t.Errorf("compute Score, got: %f, expected a value in [0, 100]", score)
	}

	slices := []*mat.Dense{
		blockKernel([]int{0, 0}, trainLabels),
		blockKernel([]int{1, 1}, trainLabels),
	}
	values, err := e.PredictSlices(context.Background(), slices)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if len(values) != len(slices) {
		t.Fatalf("compute PredictSlices, got: %d values, expected: %d", len(values), len(slices))
	}
	// Slices of event samples must outrank slices of null samples.
	if values[0] <= values[1] {
		t.Errorf("event slice value %f should exceed null slice value %f", values[0], values[1])
	}
}
