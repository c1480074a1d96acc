package setup

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/kelseyhightower/envconfig"

	"github.com/tuxos/fisher-vectors/internal/evaluation"
	"github.com/tuxos/fisher-vectors/internal/evaluation/trecvid11"
	"github.com/tuxos/fisher-vectors/internal/logging"
	"github.com/tuxos/fisher-vectors/internal/runenv"
)

type EvaluationConfigProvider interface {
	EvaluationConfig() *evaluation.Config
}

// Setup processes the environment into config and assembles the run
// environment from the provider interfaces config satisfies.
func Setup(ctx context.Context, config interface{}) (*runenv.RunEnv, error) {
	logger := logging.FromContext(ctx)
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var opts []runenv.Option
	if provider, ok := config.(EvaluationConfigProvider); ok {
		logger.Info("Configuring evaluation")
		provideFn, err := ProvideEvaluationFor(provider.EvaluationConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to configure evaluation: %w", err)
		}
		opts = append(opts, runenv.WithEvaluation(provideFn))
	}
	return runenv.New(opts...), nil
}

// ProvideEvaluationFor selects the evaluation implementation claiming the
// configured dataset.
func ProvideEvaluationFor(cfg *evaluation.Config) (evaluation.ProvideFn, error) {
	switch {
	case trecvid11.IsEvaluationFor(cfg.Dataset):
		return func() (evaluation.Evaluation, error) {
			opts := []trecvid11.Option{
				trecvid11.WithScenario(cfg.Scenario),
				trecvid11.WithNullClass(cfg.NullClassIdx),
				trecvid11.WithHoldOut(cfg.HoldOut),
				trecvid11.WithWorkers(cfg.Workers),
			}
			if cfg.Seed != 0 {
				opts = append(opts, trecvid11.WithRand(rand.New(rand.NewSource(cfg.Seed))))
			}
			return trecvid11.New(opts...)
		}, nil
	default:
		return nil, fmt.Errorf("no evaluation registered for dataset %q", cfg.Dataset)
	}
}
