package runenv

import (
	"github.com/tuxos/fisher-vectors/internal/evaluation"
)

type Option func(*RunEnv) *RunEnv

func New(opts ...Option) *RunEnv {
	env := &RunEnv{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

// RunEnv carries the wired providers for one evaluation run.
type RunEnv struct {
	evaluation evaluation.ProvideFn
}

func (e *RunEnv) ProvideEvaluation() evaluation.ProvideFn {
	return e.evaluation
}

func WithEvaluation(fn evaluation.ProvideFn) Option {
	return func(e *RunEnv) *RunEnv {
		e.evaluation = fn
		return e
	}
}
