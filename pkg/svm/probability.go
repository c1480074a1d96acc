package svm

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const probabilityFolds = 5

// binaryProbability fits the Platt sigmoid of one binary subproblem from
// cross-validated decision values. idx addresses the subproblem's samples in
// the full kernel, y holds their +1/-1 labels.
func binaryProbability(k *mat.Dense, idx []int, y []int8, cp, cn, eps float64, rnd *rand.Rand) (a, b float64) {
	l := len(idx)
	perm := rnd.Perm(l)
	dec := make([]float64, l)

	for f := 0; f < probabilityFolds; f++ {
		begin := f * l / probabilityFolds
		end := (f + 1) * l / probabilityFolds

		train := make([]int, 0, l-(end-begin))
		for t := 0; t < begin; t++ {
			train = append(train, perm[t])
		}
		for t := end; t < l; t++ {
			train = append(train, perm[t])
		}
		pos, neg := 0, 0
		for _, t := range train {
			if y[t] > 0 {
				pos++
			} else {
				neg++
			}
		}

		switch {
		case pos == 0 && neg == 0:
			for t := begin; t < end; t++ {
				dec[perm[t]] = 0
			}
		case pos > 0 && neg == 0:
			for t := begin; t < end; t++ {
				dec[perm[t]] = 1
			}
		case pos == 0 && neg > 0:
			for t := begin; t < end; t++ {
				dec[perm[t]] = -1
			}
		default:
			subY := make([]int8, len(train))
			for i, t := range train {
				subY[i] = y[t]
			}
			kern := func(i, j int) float64 {
				return k.At(idx[train[i]], idx[train[j]])
			}
			sol := newSolver(kern, subY, cp, cn, eps).solve()
			for t := begin; t < end; t++ {
				held := idx[perm[t]]
				sum := 0.0
				for i, tr := range train {
					if sol.alpha[i] != 0 {
						sum += sol.alpha[i] * k.At(held, idx[tr])
					}
				}
				dec[perm[t]] = sum - sol.rho
			}
		}
	}
	return sigmoidTrain(dec, y)
}

// sigmoidTrain fits P(y=1|f) = 1/(1+exp(A*f+B)) by Newton's method with
// backtracking line search (Platt 1999, as revised by Lin, Lin and Weng).
func sigmoidTrain(dec []float64, y []int8) (float64, float64) {
	var prior1, prior0 float64
	for _, v := range y {
		if v > 0 {
			prior1++
		} else {
			prior0++
		}
	}

	const (
		maxIter = 100
		minStep = 1e-10
		sigma   = 1e-12
		eps     = 1e-5
	)
	hiTarget := (prior1 + 1) / (prior1 + 2)
	loTarget := 1 / (prior0 + 2)

	t := make([]float64, len(y))
	a := 0.0
	b := math.Log((prior0 + 1) / (prior1 + 1))
	fval := 0.0
	for i, v := range y {
		if v > 0 {
			t[i] = hiTarget
		} else {
			t[i] = loTarget
		}
		fval += crossEntropy(t[i], dec[i]*a+b)
	}

	for iter := 0; iter < maxIter; iter++ {
		// gradient and Hessian, kept strictly positive definite
		h11, h22 := sigma, sigma
		var h21, g1, g2 float64
		for i := range y {
			fApB := dec[i]*a + b
			var p, q float64
			if fApB >= 0 {
				p = math.Exp(-fApB) / (1 + math.Exp(-fApB))
				q = 1 / (1 + math.Exp(-fApB))
			} else {
				p = 1 / (1 + math.Exp(fApB))
				q = math.Exp(fApB) / (1 + math.Exp(fApB))
			}
			d2 := p * q
			h11 += dec[i] * dec[i] * d2
			h22 += d2
			h21 += dec[i] * d2
			d1 := t[i] - p
			g1 += dec[i] * d1
			g2 += d1
		}
		if math.Abs(g1) < eps && math.Abs(g2) < eps {
			break
		}

		det := h11*h22 - h21*h21
		dA := -(h22*g1 - h21*g2) / det
		dB := -(-h21*g1 + h11*g2) / det
		gd := g1*dA + g2*dB

		step := 1.0
		for ; step >= minStep; step /= 2 {
			newA := a + step*dA
			newB := b + step*dB
			newf := 0.0
			for i := range y {
				newf += crossEntropy(t[i], dec[i]*newA+newB)
			}
			if newf < fval+1e-4*step*gd {
				a, b, fval = newA, newB, newf
				break
			}
		}
		if step < minStep {
			break
		}
	}
	return a, b
}

func crossEntropy(t, fApB float64) float64 {
	if fApB >= 0 {
		return t*fApB + math.Log(1+math.Exp(-fApB))
	}
	return (t-1)*fApB + math.Log(1+math.Exp(fApB))
}

func sigmoidPredict(dec, a, b float64) float64 {
	fApB := dec*a + b
	if fApB >= 0 {
		return math.Exp(-fApB) / (1 + math.Exp(-fApB))
	}
	return 1 / (1 + math.Exp(fApB))
}

// coupleProbabilities combines pairwise class probabilities r into a single
// distribution (Wu, Lin and Weng, JMLR 2004, second approach).
func coupleProbabilities(r [][]float64) []float64 {
	k := len(r)
	p := make([]float64, k)
	q := make([][]float64, k)
	for i := range q {
		q[i] = make([]float64, k)
	}
	qp := make([]float64, k)
	eps := 0.005 / float64(k)

	for t := 0; t < k; t++ {
		p[t] = 1 / float64(k)
		for j := 0; j < t; j++ {
			q[t][t] += r[j][t] * r[j][t]
			q[t][j] = q[j][t]
		}
		for j := t + 1; j < k; j++ {
			q[t][t] += r[j][t] * r[j][t]
			q[t][j] = -r[j][t] * r[t][j]
		}
	}

	maxIter := 100
	if k > maxIter {
		maxIter = k
	}
	for iter := 0; iter < maxIter; iter++ {
		pqp := 0.0
		for t := 0; t < k; t++ {
			qp[t] = 0
			for j := 0; j < k; j++ {
				qp[t] += q[t][j] * p[j]
			}
			pqp += p[t] * qp[t]
		}
		maxErr := 0.0
		for t := 0; t < k; t++ {
			if e := math.Abs(qp[t] - pqp); e > maxErr {
				maxErr = e
			}
		}
		if maxErr < eps {
			break
		}

		for t := 0; t < k; t++ {
			diff := (-qp[t] + pqp) / q[t][t]
			p[t] += diff
			pqp = (pqp + diff*(diff*q[t][t]+2*qp[t])) / (1 + diff) / (1 + diff)
			for j := 0; j < k; j++ {
				qp[j] = (qp[j] + diff*q[t][j]) / (1 + diff)
				p[j] /= 1 + diff
			}
		}
	}
	return p
}
