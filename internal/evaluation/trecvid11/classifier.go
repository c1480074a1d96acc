package trecvid11

import (
	"gonum.org/v1/gonum/mat"

	"github.com/tuxos/fisher-vectors/internal/svc"
)

// KernelClassifier is the slice of the SVC surface the evaluation depends on:
// fitting on a square precomputed Gram matrix and scoring rectangular
// test-against-train kernels.
type KernelClassifier interface {
	Fit(k *mat.Dense, labels []float64) error
	Predict(k *mat.Dense) ([]float64, error)
	PositiveProbabilities(k *mat.Dense) ([]float64, error)
	Score(k *mat.Dense, labels []float64) (float64, error)
}

// ClassifierOptions configure one classifier instance. A fresh instance is
// requested for every grid-search candidate and for every final fit.
type ClassifierOptions struct {
	C            float64
	Probability  bool
	ClassWeights map[int]float64
}

type ProvideClassifierFn func(o ClassifierOptions) (KernelClassifier, error)

func provideSVC(o ClassifierOptions) (KernelClassifier, error) {
	opts := []svc.Option{svc.WithC(o.C)}
	if o.Probability {
		opts = append(opts, svc.WithProbability())
	}
	for label, w := range o.ClassWeights {
		opts = append(opts, svc.WithClassWeight(label, w))
	}
	return svc.New(opts...), nil
}
