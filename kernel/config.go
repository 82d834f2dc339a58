// Package kernel composes the loop/event/reason/task/oroboro/te packages
// into the single importable entry point spec §6's External Interfaces
// describe, the way the teacher's kernel package composes agent/session/
// memory/tools into the agentic run loop.
package kernel

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/oroboro-sim/kernel/oroboro"
	"github.com/oroboro-sim/kernel/te"
)

// Config holds initialization parameters for both subsystems a Kernel
// wires together. Each section delegates to that subsystem's own
// Default/Merge, exactly as the teacher's kernel.Config delegates to
// session.Config/memory.Config.
type Config struct {
	Session oroboro.Config `json:"session"`
	TE      te.Config      `json:"te"`
}

// DefaultConfig returns a Config with sensible defaults for both
// subsystems.
func DefaultConfig() Config {
	return Config{
		Session: oroboro.DefaultConfig(),
		TE:      te.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Session.Merge(&source.Session)
	c.TE.Merge(&source.TE)
}

// LoadConfig reads a JSON config file, merges it with defaults, and
// returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("kernel: failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("kernel: failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
