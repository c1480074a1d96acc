package setup

import (
	"testing"

	"github.com/tuxos/fisher-vectors/internal/evaluation"
)

func TestProvideEvaluationFor(t *testing.T) {
	tests := []struct {
		name    string
		dataset string
		wantErr bool
	}{
		{name: "trecvid11", dataset: "trecvid11", wantErr: false},
		{name: "unknown_dataset", dataset: "hollywood2", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := &evaluation.Config{
				Dataset:      test.dataset,
				Scenario:     evaluation.ScenarioVersusNull,
				NullClassIdx: 15,
				HoldOut:      0.3,
				Workers:      2,
				Seed:         1,
			}
			provideFn, err := ProvideEvaluationFor(cfg)
			if test.wantErr {
				if err == nil {
					t.Fatalf("the error should be returned")
				}
				return
			}
			if err != nil {
				t.Fatalf("the error should not be returned: %v", err)
			}
			if _, err := provideFn(); err != nil {
				t.Errorf("evaluation provider function error: %v", err)
			}
		})
	}
}

func TestProvideEvaluationForBadScenario(t *testing.T) {
	cfg := &evaluation.Config{
		Dataset:  "trecvid11",
		Scenario: evaluation.Scenario("WRONG"),
	}
	provideFn, err := ProvideEvaluationFor(cfg)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if _, err := provideFn(); err == nil {
		t.Errorf("the error should be returned for an unknown scenario")
	}
}
