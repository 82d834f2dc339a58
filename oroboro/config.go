package oroboro

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds Session initialization parameters, following the teacher's
// Default/Merge/Load idiom (kernel/config.go, session/config.go).
type Config struct {
	// ExitOnErrorNil distinguishes "unset" from "explicitly false" for a
	// JSON-configurable bool, the same way the teacher's orchestrate config
	// types (e.g. HubConfig.FailFastNil) do it — a bare bool can't tell a
	// caller who wrote `{"exit_on_error": false}` apart from one who wrote
	// `{}`. Use ExitOnError() rather than this field directly.
	ExitOnErrorNil *bool `json:"exit_on_error,omitempty"`
	// ObserverName selects a pre-registered observability.Observer by name
	// (see observability.GetObserver) — "noop" or "slog" out of the box.
	ObserverName string `json:"observer,omitempty"`
}

// ExitOnError mirrors spec §4.4/§7's exit_on_error policy: when true, an
// uncaught error from a task step function terminates the process; when
// false, the task is marked EXITED and the simulation continues. Defaults
// to true (matching original_source/src/oroboro/oroboro.py's default) when
// unset.
func (c Config) ExitOnError() bool {
	if c.ExitOnErrorNil == nil {
		return true
	}
	return *c.ExitOnErrorNil
}

func boolPtr(b bool) *bool { return &b }

// DefaultConfig returns the default Session configuration: exit_on_error
// true and the no-op observer.
func DefaultConfig() Config {
	return Config{
		ExitOnErrorNil: boolPtr(true),
		ObserverName:   "noop",
	}
}

// Merge applies values from source into c: an explicitly-set
// ExitOnErrorNil or a non-empty ObserverName in source wins.
func (c *Config) Merge(source *Config) {
	if source.ExitOnErrorNil != nil {
		c.ExitOnErrorNil = source.ExitOnErrorNil
	}
	if source.ObserverName != "" {
		c.ObserverName = source.ObserverName
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and
// returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
