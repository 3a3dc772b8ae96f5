package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"nfamatch/internal/automaton"
)

// Config configures the match service.
type Config struct {
	// MaxPatternLength is the maximum pattern size in bytes.
	MaxPatternLength int `json:"max_pattern_length"`

	// MaxTextLength is the maximum size in bytes of a single text to match.
	MaxTextLength int `json:"max_text_length"`

	// MaxPatterns is the maximum number of named patterns held in the registry.
	MaxPatterns int `json:"max_patterns"`

	// MaxDFAStates bounds determinisation of registered patterns. Patterns
	// needing more states are matched with the NFA. Zero disables DFAs.
	MaxDFAStates int `json:"max_dfa_states"`

	// MaxFindResults caps the number of spans returned by a find request.
	MaxFindResults int `json:"max_find_results"`

	// MaxFindTextLength is the maximum text size for find requests. Each
	// reported span may rescan the rest of the text, so it is kept well below
	// MaxTextLength.
	MaxFindTextLength int `json:"max_find_text_length"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxPatternLength: 1024,
		MaxTextLength:    1 << 20,
		MaxPatterns:      1000,
		MaxDFAStates:     automaton.MaxDFAStates,
		MaxFindResults:   1000,

		MaxFindTextLength: 64 << 10,
	}
}

// LoadConfig reads a JSON config file over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that all limits are usable.
func (c Config) Validate() error {
	var errs []error
	if c.MaxPatternLength <= 0 {
		errs = append(errs, errors.New("max_pattern_length must be positive"))
	}
	if c.MaxTextLength <= 0 {
		errs = append(errs, errors.New("max_text_length must be positive"))
	}
	if c.MaxPatterns <= 0 {
		errs = append(errs, errors.New("max_patterns must be positive"))
	}
	if c.MaxDFAStates < 0 {
		errs = append(errs, errors.New("max_dfa_states must not be negative"))
	}
	if c.MaxFindResults <= 0 {
		errs = append(errs, errors.New("max_find_results must be positive"))
	}
	if c.MaxFindTextLength <= 0 {
		errs = append(errs, errors.New("max_find_text_length must be positive"))
	}
	return errors.Join(errs...)
}
