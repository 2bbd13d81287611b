package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrQualityWeight = errors.New("quality weight must be below the total stub weight")

// Weights drive the selector score:
// Total*total_stubs + Specific*specific_stubs - Quality*clustering.
type Weights struct {
	Total    float64 `yaml:"total" json:"total" validate:"gte=0"`
	Specific float64 `yaml:"specific" json:"specific" validate:"gte=0"`
	Quality  float64 `yaml:"quality" json:"quality" validate:"gte=0"`
}

type Config struct {
	Weights     Weights       `yaml:"weights" json:"weights"`
	MaxParallel int           `yaml:"max_parallel" json:"max_parallel" validate:"min=1"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`
}

func Default() Config {
	return Config{
		Weights: Weights{
			Total:    1.0,
			Specific: 0.25,
			Quality:  0.5,
		},
		MaxParallel: 3,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	// clustering is bounded by 1, so one extra stub always costs more than
	// any clustering gain
	if c.Weights.Total > 0 && c.Weights.Quality >= c.Weights.Total {
		return fmt.Errorf("invalid config: %w (quality %.3g, total %.3g)", ErrQualityWeight, c.Weights.Quality, c.Weights.Total)
	}
	return nil
}
