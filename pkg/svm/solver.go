package svm

import "math"

const tau = 1e-12

// solution of one binary subproblem: signed coefficients alpha_i * y_i in the
// subproblem's sample order, and the decision threshold.
type solution struct {
	alpha []float64
	rho   float64
}

// solver runs sequential minimal optimization on the dual of a two-class
// soft-margin problem. kern reports kernel values between subproblem samples,
// y holds +1/-1 labels, cp and cn bound the alphas of the positive and
// negative class.
type solver struct {
	l      int
	kern   func(i, j int) float64
	y      []int8
	cp, cn float64
	eps    float64

	alpha []float64
	g     []float64 // gradient of the dual objective
	qd    []float64 // diagonal of the Q matrix
	qi    []float64 // scratch rows of Q
	qj    []float64
}

func newSolver(kern func(i, j int) float64, y []int8, cp, cn, eps float64) *solver {
	l := len(y)
	s := &solver{
		l:     l,
		kern:  kern,
		y:     y,
		cp:    cp,
		cn:    cn,
		eps:   eps,
		alpha: make([]float64, l),
		g:     make([]float64, l),
		qd:    make([]float64, l),
		qi:    make([]float64, l),
		qj:    make([]float64, l),
	}
	// alpha starts at zero, so the gradient equals the linear term
	for i := 0; i < l; i++ {
		s.g[i] = -1
		s.qd[i] = kern(i, i)
	}
	return s
}

func (s *solver) c(i int) float64 {
	if s.y[i] > 0 {
		return s.cp
	}
	return s.cn
}

// qRow fills dst with row i of Q, where Q(i,j) = y_i y_j K(i,j).
func (s *solver) qRow(i int, dst []float64) {
	for j := 0; j < s.l; j++ {
		dst[j] = float64(s.y[i]) * float64(s.y[j]) * s.kern(i, j)
	}
}

// selectWorkingSet picks the maximal violating pair using second order
// information. ok is false once the KKT violation drops below eps.
func (s *solver) selectWorkingSet() (i, j int, ok bool) {
	gmax := math.Inf(-1)
	gmax2 := math.Inf(-1)
	gmaxIdx := -1
	gminIdx := -1
	objDiffMin := math.Inf(1)

	for t := 0; t < s.l; t++ {
		if s.y[t] == +1 {
			if s.alpha[t] < s.cp && -s.g[t] >= gmax {
				gmax = -s.g[t]
				gmaxIdx = t
			}
		} else {
			if s.alpha[t] > 0 && s.g[t] >= gmax {
				gmax = s.g[t]
				gmaxIdx = t
			}
		}
	}
	i = gmaxIdx
	if i >= 0 {
		s.qRow(i, s.qi)
	}

	for t := 0; t < s.l; t++ {
		if s.y[t] == +1 {
			if s.alpha[t] > 0 {
				gradDiff := gmax + s.g[t]
				if s.g[t] >= gmax2 {
					gmax2 = s.g[t]
				}
				if gradDiff > 0 {
					quadCoef := s.qd[i] + s.qd[t] - 2*float64(s.y[i])*s.qi[t]
					if quadCoef <= 0 {
						quadCoef = tau
					}
					if objDiff := -(gradDiff * gradDiff) / quadCoef; objDiff <= objDiffMin {
						gminIdx = t
						objDiffMin = objDiff
					}
				}
			}
		} else {
			if s.alpha[t] < s.cn {
				gradDiff := gmax - s.g[t]
				if -s.g[t] >= gmax2 {
					gmax2 = -s.g[t]
				}
				if gradDiff > 0 {
					quadCoef := s.qd[i] + s.qd[t] + 2*float64(s.y[i])*s.qi[t]
					if quadCoef <= 0 {
						quadCoef = tau
					}
					if objDiff := -(gradDiff * gradDiff) / quadCoef; objDiff <= objDiffMin {
						gminIdx = t
						objDiffMin = objDiff
					}
				}
			}
		}
	}

	if gmax+gmax2 < s.eps {
		return 0, 0, false
	}
	return gmaxIdx, gminIdx, true
}

func (s *solver) solve() solution {
	maxIter := 10000000
	if s.l > maxIter/100 {
		maxIter = 100 * s.l
	}

	for iter := 0; iter < maxIter; iter++ {
		i, j, ok := s.selectWorkingSet()
		if !ok {
			break
		}

		s.qRow(i, s.qi)
		s.qRow(j, s.qj)
		ci := s.c(i)
		cj := s.c(j)
		oldAi := s.alpha[i]
		oldAj := s.alpha[j]

		// update the pair analytically, clipping to the feasible box
		if s.y[i] != s.y[j] {
			quadCoef := s.qd[i] + s.qd[j] + 2*s.qi[j]
			if quadCoef <= 0 {
				quadCoef = tau
			}
			delta := (-s.g[i] - s.g[j]) / quadCoef
			diff := s.alpha[i] - s.alpha[j]
			s.alpha[i] += delta
			s.alpha[j] += delta

			if diff > 0 {
				if s.alpha[j] < 0 {
					s.alpha[j] = 0
					s.alpha[i] = diff
				}
			} else {
				if s.alpha[i] < 0 {
					s.alpha[i] = 0
					s.alpha[j] = -diff
				}
			}
			if diff > ci-cj {
				if s.alpha[i] > ci {
					s.alpha[i] = ci
					s.alpha[j] = ci - diff
				}
			} else {
				if s.alpha[j] > cj {
					s.alpha[j] = cj
					s.alpha[i] = cj + diff
				}
			}
		} else {
			quadCoef := s.qd[i] + s.qd[j] - 2*s.qi[j]
			if quadCoef <= 0 {
				quadCoef = tau
			}
			delta := (s.g[i] - s.g[j]) / quadCoef
			sum := s.alpha[i] + s.alpha[j]
			s.alpha[i] -= delta
			s.alpha[j] += delta

			if sum > ci {
				if s.alpha[i] > ci {
					s.alpha[i] = ci
					s.alpha[j] = sum - ci
				}
			} else {
				if s.alpha[j] < 0 {
					s.alpha[j] = 0
					s.alpha[i] = sum
				}
			}
			if sum > cj {
				if s.alpha[j] > cj {
					s.alpha[j] = cj
					s.alpha[i] = sum - cj
				}
			} else {
				if s.alpha[i] < 0 {
					s.alpha[i] = 0
					s.alpha[j] = sum
				}
			}
		}

		dAi := s.alpha[i] - oldAi
		dAj := s.alpha[j] - oldAj
		for t := 0; t < s.l; t++ {
			s.g[t] += s.qi[t]*dAi + s.qj[t]*dAj
		}
	}

	rho := s.rho()
	signed := make([]float64, s.l)
	for i := range signed {
		signed[i] = s.alpha[i] * float64(s.y[i])
	}
	return solution{alpha: signed, rho: rho}
}

func (s *solver) rho() float64 {
	nFree := 0
	ub := math.Inf(1)
	lb := math.Inf(-1)
	sumFree := 0.0
	for i := 0; i < s.l; i++ {
		yg := float64(s.y[i]) * s.g[i]
		switch {
		case s.alpha[i] <= 0:
			if s.y[i] > 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		case s.alpha[i] >= s.c(i):
			if s.y[i] < 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		default:
			nFree++
			sumFree += yg
		}
	}
	if nFree > 0 {
		return sumFree / float64(nFree)
	}
	return (ub + lb) / 2
}
