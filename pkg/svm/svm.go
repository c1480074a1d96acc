// Package svm trains C-SVC models on precomputed Gram matrices. Multiclass
// problems are decomposed into one-vs-one binary subproblems whose votes pick
// the predicted label. Probability estimates use Platt scaling on
// cross-validated decision values, coupled pairwise for more than two classes.
package svm

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/tuxos/fisher-vectors/pkg/math/gram"
)

var (
	ErrNoSamples     = fmt.Errorf("no training samples")
	ErrNoProbability = fmt.Errorf("model was trained without probability estimates")
)

// Param configures a training run. Zero values for C and Eps fall back to 1
// and 1e-3.
type Param struct {
	C           float64
	Eps         float64
	Probability bool
	// Weights multiplies C for the listed class labels.
	Weights map[int]float64
	// Rand shuffles the calibration folds; a fixed source is used when nil so
	// that training stays deterministic.
	Rand *rand.Rand
}

// pairFn is one one-vs-one decision function. idx addresses kernel columns in
// training-sample order, coef carries alpha*y per support vector.
type pairFn struct {
	idx          []int
	coef         []float64
	rho          float64
	probA, probB float64
}

// Model is a trained classifier. Prediction inputs are rows of kernel values
// against the full training set, one column per training sample.
type Model struct {
	labels []int
	pairs  []pairFn
	prob   bool
	n      int
}

// Train fits a one-vs-one C-SVC on a square Gram matrix with one label per
// sample.
func Train(k *mat.Dense, y []float64, p Param) (*Model, error) {
	if err := gram.Validate(k); err != nil {
		return nil, err
	}
	l, _ := k.Dims()
	if l == 0 {
		return nil, ErrNoSamples
	}
	if len(y) != l {
		return nil, fmt.Errorf("unable to train: %d labels for %d samples", len(y), l)
	}
	if p.C <= 0 {
		p.C = 1
	}
	if p.Eps <= 0 {
		p.Eps = 1e-3
	}
	rnd := p.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}

	labels, start, count, perm := groupClasses(y)
	nc := len(labels)

	weightedC := make([]float64, nc)
	for i, label := range labels {
		weightedC[i] = p.C
		if w, ok := p.Weights[label]; ok {
			weightedC[i] *= w
		}
	}

	m := &Model{labels: labels, prob: p.Probability, n: l}
	for i := 0; i < nc; i++ {
		for j := i + 1; j < nc; j++ {
			// class i plays +1, class j plays -1
			idx := make([]int, 0, count[i]+count[j])
			idx = append(idx, perm[start[i]:start[i]+count[i]]...)
			idx = append(idx, perm[start[j]:start[j]+count[j]]...)
			sub := make([]int8, len(idx))
			for t := 0; t < count[i]; t++ {
				sub[t] = +1
			}
			for t := count[i]; t < len(idx); t++ {
				sub[t] = -1
			}
			kern := func(a, b int) float64 {
				return k.At(idx[a], idx[b])
			}

			var pr pairFn
			if p.Probability {
				pr.probA, pr.probB = binaryProbability(k, idx, sub, weightedC[i], weightedC[j], p.Eps, rnd)
			}
			sol := newSolver(kern, sub, weightedC[i], weightedC[j], p.Eps).solve()
			pr.rho = sol.rho
			for t, a := range sol.alpha {
				if math.Abs(a) > 0 {
					pr.idx = append(pr.idx, idx[t])
					pr.coef = append(pr.coef, a)
				}
			}
			m.pairs = append(m.pairs, pr)
		}
	}
	return m, nil
}

// Labels returns the class labels in first-seen training order; probability
// columns follow this order.
func (m *Model) Labels() []int {
	return m.labels
}

// DecisionValues returns the one-vs-one decision values for one prediction
// row.
func (m *Model) DecisionValues(row []float64) ([]float64, error) {
	if len(row) != m.n {
		return nil, fmt.Errorf("unable to predict: row has %d kernel values, model trained on %d samples", len(row), m.n)
	}
	dec := make([]float64, len(m.pairs))
	for p, pr := range m.pairs {
		sum := 0.0
		for t, ix := range pr.idx {
			sum += pr.coef[t] * row[ix]
		}
		dec[p] = sum - pr.rho
	}
	return dec, nil
}

// Predict returns the label winning the one-vs-one vote for one prediction
// row. Ties resolve to the earlier label.
func (m *Model) Predict(row []float64) (float64, error) {
	dec, err := m.DecisionValues(row)
	if err != nil {
		return 0, err
	}
	nc := len(m.labels)
	vote := make([]int, nc)
	p := 0
	for i := 0; i < nc; i++ {
		for j := i + 1; j < nc; j++ {
			if dec[p] > 0 {
				vote[i]++
			} else {
				vote[j]++
			}
			p++
		}
	}
	best := 0
	for i := 1; i < nc; i++ {
		if vote[i] > vote[best] {
			best = i
		}
	}
	return float64(m.labels[best]), nil
}

// Probabilities returns per-class probability estimates for one prediction
// row, ordered as Labels().
func (m *Model) Probabilities(row []float64) ([]float64, error) {
	if !m.prob {
		return nil, ErrNoProbability
	}
	dec, err := m.DecisionValues(row)
	if err != nil {
		return nil, err
	}

	const minProb = 1e-7
	nc := len(m.labels)
	pairwise := make([][]float64, nc)
	for i := range pairwise {
		pairwise[i] = make([]float64, nc)
	}
	p := 0
	for i := 0; i < nc; i++ {
		for j := i + 1; j < nc; j++ {
			v := sigmoidPredict(dec[p], m.pairs[p].probA, m.pairs[p].probB)
			v = math.Min(math.Max(v, minProb), 1-minProb)
			pairwise[i][j] = v
			pairwise[j][i] = 1 - v
			p++
		}
	}
	return coupleProbabilities(pairwise), nil
}

// groupClasses orders samples by class. labels lists distinct classes in
// first-seen order, start and count address each class's block, and perm maps
// block positions back to original sample indices.
func groupClasses(y []float64) (labels, start, count, perm []int) {
	dataLabel := make([]int, len(y))
	for i, v := range y {
		label := int(v)
		j := 0
		for ; j < len(labels); j++ {
			if labels[j] == label {
				count[j]++
				break
			}
		}
		dataLabel[i] = j
		if j == len(labels) {
			labels = append(labels, label)
			count = append(count, 1)
		}
	}

	start = make([]int, len(labels))
	for i := 1; i < len(labels); i++ {
		start[i] = start[i-1] + count[i-1]
	}
	fill := append([]int(nil), start...)
	perm = make([]int, len(y))
	for i := range y {
		perm[fill[dataLabel[i]]] = i
		fill[dataLabel[i]]++
	}
	return labels, start, count, perm
}
