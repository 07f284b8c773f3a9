package ranking

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfigurationInvalid is returned when a ranking configuration cannot be used.
var ErrConfigurationInvalid = errors.New("ranking configuration invalid")

const (
	DefaultFormulaThreshold = 0.1
	DefaultTopN             = 3
	DefaultFormulaWeight    = 0.3
	DefaultNarrativeWeight  = 0.7
	DefaultConcurrency      = 1

	weightTolerance = 1e-9
)

type Config struct {
	FormulaThreshold float64 `mapstructure:"formula-threshold"`
	TopN             int     `mapstructure:"top-n"`
	FormulaWeight    float64 `mapstructure:"formula-weight"`
	NarrativeWeight  float64 `mapstructure:"narrative-weight"`
	Concurrency      int     `mapstructure:"concurrency"`
}

func DefaultConfig() Config {
	return Config{
		FormulaThreshold: DefaultFormulaThreshold,
		TopN:             DefaultTopN,
		FormulaWeight:    DefaultFormulaWeight,
		NarrativeWeight:  DefaultNarrativeWeight,
		Concurrency:      DefaultConcurrency,
	}
}

// Validate reports the first problem found. It never adjusts the values.
func (c Config) Validate() error {
	switch {
	case c.TopN <= 0:
		return fmt.Errorf("%w: top-n must be positive, got %d", ErrConfigurationInvalid, c.TopN)
	case !(c.FormulaWeight >= 0) || !(c.NarrativeWeight >= 0):
		return fmt.Errorf("%w: weights must not be negative (formula %v, narrative %v)",
			ErrConfigurationInvalid, c.FormulaWeight, c.NarrativeWeight)
	case math.Abs(c.FormulaWeight+c.NarrativeWeight-1) > weightTolerance:
		return fmt.Errorf("%w: formula weight %v and narrative weight %v must sum to 1",
			ErrConfigurationInvalid, c.FormulaWeight, c.NarrativeWeight)
	case math.IsNaN(c.FormulaThreshold) || c.FormulaThreshold < 0 || c.FormulaThreshold >= 1:
		return fmt.Errorf("%w: formula threshold must be within [0, 1), got %v", ErrConfigurationInvalid, c.FormulaThreshold)
	case c.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrConfigurationInvalid, c.Concurrency)
	}
	return nil
}
