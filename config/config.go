// Package config loads the recognized simulation options from YAML,
// following the same decode-into-struct idiom the teacher's
// annotate.LoadDatabases uses for its database manifest.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rscholer/domkin/model"
)

// Options holds the recognized configuration keys from spec.md section 6.
type Options struct {
	Volume                       float64 `yaml:"volume"`
	ProbablityOversamplingFactor float64 `yaml:"probablity_oversampling_factor"`
	TimesamplingFrequency        int     `yaml:"timesampling_frequency"`
	RecordStats                  bool    `yaml:"record_stats"`
	PrintStatslineWhenSaving     bool    `yaml:"print_statsline_when_saving"`
	SQLiteDSN                    string  `yaml:"sqlite_dsn"`
}

// Defaults matches the reference implementation's defaults for options
// a caller leaves unset.
func Defaults() Options {
	return Options{
		Volume:                       1e-15,
		ProbablityOversamplingFactor: 1,
		TimesamplingFrequency:        10,
		RecordStats:                  true,
		PrintStatslineWhenSaving:     false,
	}
}

// Load reads path as YAML into Options, starting from Defaults and
// overwriting only the keys the document sets. It validates eagerly
// (before any simulation runs) that the volume is positive and the
// oversampling factor is at least 1.
func Load(path string) (*Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	opts := Defaults()
	if err := yaml.NewDecoder(f).Decode(&opts); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

// Validate eagerly rejects incoherent option combinations.
func (o Options) Validate() error {
	if o.Volume <= 0 {
		return &model.ConfigError{Detail: fmt.Sprintf("volume must be positive, got %g", o.Volume)}
	}
	if o.ProbablityOversamplingFactor < 1 {
		return &model.ConfigError{Detail: fmt.Sprintf("probablity_oversampling_factor must be >= 1, got %g", o.ProbablityOversamplingFactor)}
	}
	if o.TimesamplingFrequency < 0 {
		return &model.ConfigError{Detail: "timesampling_frequency must be non-negative"}
	}
	return nil
}
