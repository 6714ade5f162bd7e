package application

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"ledger-insight/internal/analytics/domain/aging"
	"ledger-insight/internal/analytics/domain/recommend"
	"ledger-insight/internal/analytics/domain/scoring"
	"ledger-insight/internal/analytics/domain/trend"
	ledger "ledger-insight/internal/ledger/domain"
)

// Config parameterizes the analytics pipeline. Defaults match production;
// a YAML file referenced by ANALYTICS_CONFIG overlays them.
type Config struct {
	VendorBucketBounds   []int                  `yaml:"vendor_bucket_bounds"`
	CustomerBucketBounds []int                  `yaml:"customer_bucket_bounds"`
	ScoreWeights         scoring.Weights        `yaml:"score_weights"`
	ScoreBands           scoring.BandThresholds `yaml:"score_bands"`
	MaterialityPct       float64                `yaml:"materiality_pct"`
	TrendRecentWindow    int                    `yaml:"trend_recent_window"`
	TrendDiffThreshold   float64                `yaml:"trend_diff_threshold"`
	TrendMaxPeriods      int                    `yaml:"trend_max_periods"`
	ConcentrationTopN    int                    `yaml:"concentration_top_n"`
	Rules                recommend.Rules        `yaml:"rules"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		VendorBucketBounds:   append([]int(nil), aging.DefaultVendorBounds...),
		CustomerBucketBounds: append([]int(nil), aging.DefaultCustomerBounds...),
		ScoreWeights:         scoring.DefaultWeights(),
		ScoreBands:           scoring.DefaultBandThresholds(),
		MaterialityPct:       0.5,
		TrendRecentWindow:    trend.DefaultRecentWindow,
		TrendDiffThreshold:   trend.DefaultDiffThreshold,
		TrendMaxPeriods:      trend.DefaultMaxPeriods,
		ConcentrationTopN:    10,
		Rules:                recommend.DefaultRules(),
	}
}

// LoadConfig builds the pipeline config from defaults plus an optional
// YAML overlay named by ANALYTICS_CONFIG.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("ANALYTICS_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if err := validateBounds(c.VendorBucketBounds); err != nil {
		return err
	}
	if err := validateBounds(c.CustomerBucketBounds); err != nil {
		return err
	}
	if c.MaterialityPct < 0 || c.MaterialityPct >= 100 {
		return errors.New("analytics config: materiality_pct out of range")
	}
	return nil
}

func validateBounds(bounds []int) error {
	if len(bounds) == 0 {
		return errors.New("analytics config: empty bucket bounds")
	}
	prev := 0
	for _, bound := range bounds {
		if bound <= prev {
			return errors.New("analytics config: bucket bounds must be strictly increasing and positive")
		}
		prev = bound
	}
	return nil
}

// BoundsFor returns the configured bucket bounds for a dataset kind.
func (c Config) BoundsFor(kind ledger.DatasetKind) []int {
	if kind == ledger.DatasetCustomers {
		return c.CustomerBucketBounds
	}
	return c.VendorBucketBounds
}
