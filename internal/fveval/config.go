package fveval

import (
	"github.com/tuxos/fisher-vectors/internal/evaluation"
	"github.com/tuxos/fisher-vectors/internal/setup"
)

var _ setup.EvaluationConfigProvider = (*Config)(nil)

type Config struct {
	Debug      bool `envconfig:"FV_DEBUG"`
	Evaluation evaluation.Config
}

func (c *Config) EvaluationConfig() *evaluation.Config {
	return &c.Evaluation
}
