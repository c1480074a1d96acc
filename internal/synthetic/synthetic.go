// Package synthetic builds small clustered datasets with precomputed linear
// kernels, used by the demo command and end-to-end tests. Real dataset
// loading is out of scope.
package synthetic

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/tuxos/fisher-vectors/pkg/math/gram"
)

type Config struct {
	Classes         int   `toml:"classes"`
	SamplesPerClass int   `toml:"samples-per-class"`
	NullSamples     int   `toml:"null-samples"`
	TestPerClass    int   `toml:"test-samples-per-class"`
	TestNullSamples int   `toml:"test-null-samples"`
	Features        int   `toml:"features"`
	Seed            int64 `toml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Classes:         4,
		SamplesPerClass: 20,
		NullSamples:     60,
		TestPerClass:    10,
		TestNullSamples: 30,
		Features:        16,
		Seed:            42,
	}
}

// Dataset holds a training Gram matrix, a rectangular test-against-train
// kernel and the label vectors. The null class index is Classes.
type Dataset struct {
	TrainKernel *mat.Dense
	TrainLabels []int
	TestKernel  *mat.Dense
	TestLabels  []int
	NullClass   int
}

// Generate draws one Gaussian cluster per class plus a wider null cluster at
// the origin and derives linear kernels from the features.
func Generate(cfg Config) (*Dataset, error) {
	if cfg.Classes < 1 || cfg.SamplesPerClass < 1 || cfg.Features < 1 {
		return nil, fmt.Errorf("unable to generate dataset: bad config %+v", cfg)
	}
	rnd := rand.New(rand.NewSource(cfg.Seed))

	means := make([][]float64, cfg.Classes)
	for c := range means {
		mean := make([]float64, cfg.Features)
		for j := range mean {
			mean[j] = 4 * rnd.NormFloat64()
		}
		means[c] = mean
	}

	trainX, trainLabels := sample(rnd, cfg, means, cfg.SamplesPerClass, cfg.NullSamples)
	testX, testLabels := sample(rnd, cfg, means, cfg.TestPerClass, cfg.TestNullSamples)

	return &Dataset{
		TrainKernel: gram.Linear(trainX),
		TrainLabels: trainLabels,
		TestKernel:  gram.Rect(testX, trainX),
		TestLabels:  testLabels,
		NullClass:   cfg.Classes,
	}, nil
}

func sample(rnd *rand.Rand, cfg Config, means [][]float64, perClass, nullSamples int) (*mat.Dense, []int) {
	n := cfg.Classes*perClass + nullSamples
	x := mat.NewDense(n, cfg.Features, nil)
	labels := make([]int, 0, n)

	row := 0
	for c := 0; c < cfg.Classes; c++ {
		for s := 0; s < perClass; s++ {
			for j := 0; j < cfg.Features; j++ {
				x.Set(row, j, means[c][j]+rnd.NormFloat64())
			}
			labels = append(labels, c)
			row++
		}
	}
	for s := 0; s < nullSamples; s++ {
		for j := 0; j < cfg.Features; j++ {
			x.Set(row, j, 3*rnd.NormFloat64())
		}
		labels = append(labels, cfg.Classes)
		row++
	}
	return x, labels
}
