// Package svc provides a support-vector classifier over precomputed Gram
// matrices, backed by the one-vs-one C-SVC solver in pkg/svm.
package svc

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/tuxos/fisher-vectors/pkg/math/gram"
	"github.com/tuxos/fisher-vectors/pkg/metrics"
	"github.com/tuxos/fisher-vectors/pkg/svm"
)

const (
	defaultC   = 1.0
	defaultEps = 1e-3
)

var ErrNotFitted = fmt.Errorf("classifier is not fitted")

type Option func(*SVC)

// WithC sets the regularization constant.
func WithC(c float64) Option {
	return func(s *SVC) {
		s.param.C = c
	}
}

// WithProbability enables probability estimates.
func WithProbability() Option {
	return func(s *SVC) {
		s.param.Probability = true
	}
}

// WithClassWeight multiplies C by w for the class with the given label.
func WithClassWeight(label int, w float64) Option {
	return func(s *SVC) {
		s.param.Weights[label] = w
	}
}

// WithEps sets the solver stopping tolerance.
func WithEps(eps float64) Option {
	return func(s *SVC) {
		s.param.Eps = eps
	}
}

// SVC is a kernel support-vector classifier operating on precomputed Gram
// matrices. A square training matrix is passed to Fit; prediction matrices are
// rectangular with one column per training sample.
type SVC struct {
	param svm.Param
	model *svm.Model
	n     int
}

func New(opts ...Option) *SVC {
	s := &SVC{
		param: svm.Param{
			C:       defaultC,
			Eps:     defaultEps,
			Weights: make(map[int]float64),
		},
	}
	for _, f := range opts {
		f(s)
	}
	return s
}

// C returns the configured regularization constant.
func (s *SVC) C() float64 {
	return s.param.C
}

// TrainSize returns the number of training samples seen by Fit.
func (s *SVC) TrainSize() int {
	return s.n
}

// Fit trains the classifier on a square Gram matrix and one label per sample.
func (s *SVC) Fit(k *mat.Dense, labels []float64) error {
	if err := gram.Validate(k); err != nil {
		return err
	}
	r, _ := k.Dims()
	if len(labels) != r {
		return fmt.Errorf("unable to fit: %d labels for %d samples", len(labels), r)
	}
	model, err := svm.Train(k, labels, s.param)
	if err != nil {
		return fmt.Errorf("unable to fit: %w", err)
	}
	s.model = model
	s.n = r
	return nil
}

// Predict returns the predicted label for each row of a rectangular kernel
// matrix (one column per training sample).
func (s *SVC) Predict(k *mat.Dense) ([]float64, error) {
	if err := s.checkPredict(k); err != nil {
		return nil, err
	}
	r, _ := k.Dims()
	predicted := make([]float64, r)
	var row []float64
	for i := 0; i < r; i++ {
		row = mat.Row(row, i, k)
		v, err := s.model.Predict(row)
		if err != nil {
			return nil, err
		}
		predicted[i] = v
	}
	return predicted, nil
}

// Probabilities returns per-class probability estimates for each row, columns
// ordered as Labels().
func (s *SVC) Probabilities(k *mat.Dense) (*mat.Dense, error) {
	if err := s.checkPredict(k); err != nil {
		return nil, err
	}
	r, _ := k.Dims()
	probs := mat.NewDense(r, len(s.model.Labels()), nil)
	var row []float64
	for i := 0; i < r; i++ {
		row = mat.Row(row, i, k)
		estimates, err := s.model.Probabilities(row)
		if err != nil {
			return nil, err
		}
		probs.SetRow(i, estimates)
	}
	return probs, nil
}

// PositiveProbabilities returns the probability estimate of the class labeled
// +1 for each row.
func (s *SVC) PositiveProbabilities(k *mat.Dense) ([]float64, error) {
	probs, err := s.Probabilities(k)
	if err != nil {
		return nil, err
	}
	pos := -1
	for i, label := range s.Labels() {
		if label == +1 {
			pos = i
		}
	}
	if pos < 0 {
		return nil, fmt.Errorf("unable to find class +1 among model labels %v", s.Labels())
	}
	r, _ := probs.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = probs.At(i, pos)
	}
	return out, nil
}

// Score returns the prediction accuracy against the given labels.
func (s *SVC) Score(k *mat.Dense, labels []float64) (float64, error) {
	predicted, err := s.Predict(k)
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy(labels, predicted)
}

// Labels returns the class labels in the model's column order.
func (s *SVC) Labels() []int {
	if s.model == nil {
		return nil
	}
	return s.model.Labels()
}

func (s *SVC) checkPredict(k *mat.Dense) error {
	if s.model == nil {
		return ErrNotFitted
	}
	_, c := k.Dims()
	if c != s.n {
		return fmt.Errorf("unable to predict: kernel has %d columns, classifier trained on %d samples", c, s.n)
	}
	return nil
}
