package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"

	"github.com/tuxos/fisher-vectors/internal/buildinfo"
	"github.com/tuxos/fisher-vectors/internal/fveval"
	"github.com/tuxos/fisher-vectors/internal/logging"
	"github.com/tuxos/fisher-vectors/internal/setup"
	"github.com/tuxos/fisher-vectors/internal/synthetic"
)

func main() {
	ctx := logging.WithLogger(context.Background(), logging.DefaultLogger())
	logger := logging.FromContext(ctx)
	if err := run(ctx); err != nil {
		logger.Fatal(err)
	}
}

type runSpec struct {
	Demo synthetic.Config `toml:"demo"`
}

func run(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	fmt.Print(buildinfo.Graffiti)

	var runFile string
	flag.StringVar(&runFile, "config", "", "path to a TOML run file describing the demo dataset")
	flag.Parse()

	spec := runSpec{Demo: synthetic.DefaultConfig()}
	if runFile != "" {
		if _, err := toml.DecodeFile(runFile, &spec); err != nil {
			return fmt.Errorf("unable to read run file %s: %w", runFile, err)
		}
	}

	var config fveval.Config
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}

	runID := uuid.New().String()
	logger.Infof("%s %s run %s: dataset=%s scenario=%s",
		buildinfo.Info.Name(), buildinfo.Info.Tag(), runID,
		config.Evaluation.Dataset, config.Evaluation.Scenario)

	dataset, err := synthetic.Generate(spec.Demo)
	if err != nil {
		return fmt.Errorf("unable to generate demo dataset: %w", err)
	}

	// The synthetic labels use the class count as the null index.
	config.Evaluation.NullClassIdx = dataset.NullClass

	eval, err := env.ProvideEvaluation()()
	if err != nil {
		return fmt.Errorf("evaluation provider function error: %w", err)
	}
	if err := eval.Fit(ctx, dataset.TrainKernel, dataset.TrainLabels); err != nil {
		return fmt.Errorf("unable to fit evaluation: %w", err)
	}
	score, err := eval.Score(ctx, dataset.TestKernel, dataset.TestLabels)
	if err != nil {
		return fmt.Errorf("unable to score evaluation: %w", err)
	}
	logger.Infof("run %s: mean score %.2f", runID, score)

	if config.Debug {
		logger.Debugf("run %s summary:\n%s", runID, spew.Sdump(spec))
	}
	return nil
}
