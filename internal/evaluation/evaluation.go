package evaluation

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type ProvideFn func() (Evaluation, error)

// ErrNotSupported is returned by operations a scenario does not define.
var ErrNotSupported = fmt.Errorf("operation is not supported by the evaluation scenario")

// Evaluation scores a classification method on a dataset given precomputed
// kernel matrices. Fit receives a square training Gram matrix; Score and
// Predict receive rectangular test-against-train kernel matrices.
type Evaluation interface {
	Fit(ctx context.Context, k *mat.Dense, labels []int) error
	Score(ctx context.Context, k *mat.Dense, labels []int) (float64, error)
	Predict(ctx context.Context, k *mat.Dense, labels []int) (*Prediction, error)
}

// Prediction holds per-sample true and predicted class labels.
type Prediction struct {
	Truth     []int
	Predicted []int
}
