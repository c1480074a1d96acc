package gram

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotGram = fmt.Errorf("not a Gram matrix")
	ErrMaskDim = fmt.Errorf("mask length does not match matrix dimension")
)

// Validate reports whether k can act as a training Gram matrix, i.e. is square.
func Validate(k *mat.Dense) error {
	r, c := k.Dims()
	if r != c {
		return ErrNotGram
	}
	return nil
}

// Indices returns the positions set in mask.
func Indices(mask []bool) []int {
	idxs := make([]int, 0, len(mask))
	for i, ok := range mask {
		if ok {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// Count returns the number of positions set in mask.
func Count(mask []bool) int {
	var n int
	for _, ok := range mask {
		if ok {
			n++
		}
	}
	return n
}

// Slice extracts the sub-matrix of k whose rows and columns are set in the
// given masks. Mask lengths must match the corresponding matrix dimension.
func Slice(k *mat.Dense, rows, cols []bool) (*mat.Dense, error) {
	r, c := k.Dims()
	if len(rows) != r || len(cols) != c {
		return nil, ErrMaskDim
	}
	return Submatrix(k, Indices(rows), Indices(cols)), nil
}

// Submatrix extracts the sub-matrix of k addressed by the given row and
// column index lists, in order.
func Submatrix(k *mat.Dense, rows, cols []int) *mat.Dense {
	sub := mat.NewDense(len(rows), len(cols), nil)
	for i, ri := range rows {
		for j, cj := range cols {
			sub.Set(i, j, k.At(ri, cj))
		}
	}
	return sub
}

// Linear computes the linear-kernel Gram matrix x * xᵀ for feature rows x.
func Linear(x *mat.Dense) *mat.Dense {
	r, _ := x.Dims()
	k := mat.NewDense(r, r, nil)
	k.Mul(x, x.T())
	return k
}

// Rect computes the rectangular linear-kernel matrix y * xᵀ between test
// feature rows y and training feature rows x.
func Rect(y, x *mat.Dense) *mat.Dense {
	ry, _ := y.Dims()
	rx, _ := x.Dims()
	k := mat.NewDense(ry, rx, nil)
	k.Mul(y, x.T())
	return k
}
