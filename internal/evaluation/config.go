package evaluation

type Scenario string

const (
	ScenarioMulticlass Scenario = "MULTICLASS"
	ScenarioVersusNull Scenario = "VERSUS_NULL"
	ScenarioPerSlice   Scenario = "PER_SLICE"
)

type Config struct {
	Dataset      string   `envconfig:"FV_EVAL_DATASET" default:"trecvid11"`
	Scenario     Scenario `envconfig:"FV_EVAL_SCENARIO" default:"VERSUS_NULL"`
	NullClassIdx int      `envconfig:"FV_EVAL_NULL_CLASS" default:"15"`
	HoldOut      float64  `envconfig:"FV_EVAL_HOLD_OUT" default:"0.3"`
	Seed         int64    `envconfig:"FV_EVAL_SEED"`
	Workers      int      `envconfig:"FV_EVAL_WORKERS" default:"4"`
}
