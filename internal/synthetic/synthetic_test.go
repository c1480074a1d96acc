package synthetic

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestGenerate(t *testing.T) {
	cfg := DefaultConfig()
	dataset, err := Generate(cfg)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}

	nTrain := cfg.Classes*cfg.SamplesPerClass + cfg.NullSamples
	nTest := cfg.Classes*cfg.TestPerClass + cfg.TestNullSamples

	r, c := dataset.TrainKernel.Dims()
	if r != nTrain || c != nTrain {
		t.Errorf("train kernel dims, got: %dx%d, expected: %dx%d", r, c, nTrain, nTrain)
	}
	r, c = dataset.TestKernel.Dims()
	if r != nTest || c != nTrain {
		t.Errorf("test kernel dims, got: %dx%d, expected: %dx%d", r, c, nTest, nTrain)
	}
	if len(dataset.TrainLabels) != nTrain || len(dataset.TestLabels) != nTest {
		t.Errorf("label counts, got: %d and %d, expected: %d and %d",
			len(dataset.TrainLabels), len(dataset.TestLabels), nTrain, nTest)
	}
	if dataset.NullClass != cfg.Classes {
		t.Errorf("null class, got: %d, expected: %d", dataset.NullClass, cfg.Classes)
	}

	var nulls int
	for _, label := range dataset.TrainLabels {
		if label < 0 || label > cfg.Classes {
			t.Fatalf("label out of range: %d", label)
		}
		if label == dataset.NullClass {
			nulls++
		}
	}
	if nulls != cfg.NullSamples {
		t.Errorf("null sample count, got: %d, expected: %d", nulls, cfg.NullSamples)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	a, err := Generate(cfg)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	b, err := Generate(cfg)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if !mat.Equal(a.TrainKernel, b.TrainKernel) {
		t.Errorf("kernels differ between runs with the same seed")
	}
}

func TestGenerateBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Classes = 0
	if _, err := Generate(cfg); err == nil {
		t.Errorf("the error should be returned")
	}
}
