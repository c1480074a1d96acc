package gram

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		k    *mat.Dense
		err  error
	}{
		{name: "square", k: mat.NewDense(3, 3, nil), err: nil},
		{name: "rectangular", k: mat.NewDense(2, 3, nil), err: ErrNotGram},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := Validate(test.k); err != test.err {
				t.Errorf("compute Validate, got: %v, expected: %v", err, test.err)
			}
		})
	}
}

func TestSlice(t *testing.T) {
	k := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	sub, err := Slice(k, []bool{true, false, true}, []bool{false, true, true})
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	r, c := sub.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("compute Slice dims, got: %dx%d, expected: 2x2", r, c)
	}
	expected := []float64{2, 3, 8, 9}
	for i, want := range expected {
		if got := sub.At(i/2, i%2); got != want {
			t.Errorf("compute Slice at %d, got: %f, expected: %f", i, got, want)
		}
	}
}

func TestSliceMaskMismatch(t *testing.T) {
	k := mat.NewDense(2, 2, nil)
	if _, err := Slice(k, []bool{true}, []bool{true, false}); err != ErrMaskDim {
		t.Errorf("compute Slice, got: %v, expected: %v", err, ErrMaskDim)
	}
}

func TestSubmatrixKeepsOrder(t *testing.T) {
	k := mat.NewDense(2, 2, []float64{
		1, 2,
		3, 4,
	})
	sub := Submatrix(k, []int{1, 0}, []int{1, 0})
	expected := []float64{4, 3, 2, 1}
	for i, want := range expected {
		if got := sub.At(i/2, i%2); got != want {
			t.Errorf("compute Submatrix at %d, got: %f, expected: %f", i, got, want)
		}
	}
}

func TestLinear(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{
		1, 0,
		1, 1,
	})
	k := Linear(x)
	expected := []float64{1, 1, 1, 2}
	for i, want := range expected {
		if got := k.At(i/2, i%2); got != want {
			t.Errorf("compute Linear at %d, got: %f, expected: %f", i, got, want)
		}
	}
}

func TestRect(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{1, 2})
	y := mat.NewDense(3, 1, []float64{1, 1, 3})
	k := Rect(y, x)
	r, c := k.Dims()
	if r != 3 || c != 2 {
		t.Fatalf("compute Rect dims, got: %dx%d, expected: 3x2", r, c)
	}
	if k.At(2, 1) != 6 {
		t.Errorf("compute Rect at (2,1), got: %f, expected: 6", k.At(2, 1))
	}
}

func TestMaskHelpers(t *testing.T) {
	mask := []bool{true, false, true, true}
	if got := Count(mask); got != 3 {
		t.Errorf("compute Count, got: %d, expected: 3", got)
	}
	idxs := Indices(mask)
	expected := []int{0, 2, 3}
	if len(idxs) != len(expected) {
		t.Fatalf("compute Indices, got: %v, expected: %v", idxs, expected)
	}
	for i := range expected {
		if idxs[i] != expected[i] {
			t.Errorf("compute Indices at %d, got: %d, expected: %d", i, idxs[i], expected[i])
		}
	}
}
