package sched

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// TaskSpec describes one simulated task in the config file.
type TaskSpec struct {
	Name     string `yaml:"name"`
	Interval uint32 `yaml:"interval"` // ticks between runs; 0 = continuous
	WorkUS   int    `yaml:"work_us"`  // simulated work per dispatch, microseconds
	Kind     string `yaml:"kind"`     // "spin" (default) or "sleep"
}

// Config mirrors config.yml for the simulation harness.
type Config struct {
	TickUS        int        `yaml:"tick_us"`        // wall duration of one tick (default 1000)
	TickIncrement uint32     `yaml:"tick_increment"` // counter increment per tick (default 1)
	RunTicks      int64      `yaml:"run_ticks"`      // sim length in ticks; 0 = run until signal
	CSVLog        string     `yaml:"csv_log"`        // optional CSV trace path
	HistoryDB     string     `yaml:"history_db"`     // optional sqlite path for run summaries
	Tasks         []TaskSpec `yaml:"tasks"`
}

func defaultConfig() Config {
	return Config{
		TickUS:        1000,
		TickIncrement: 1,
		RunTicks:      1000,
	}
}

// Load reads YAML and overrides defaults; an empty or missing path yields
// defaults only.
func Load(path string) Config {
	cfg, _ := Parse(path)
	return cfg
}

// Parse is Load with the read/unmarshal error surfaced, for callers that
// must not fall back to defaults silently (config hot reload).
func Parse(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("config: %w", err)
	}

	// sanity clamps
	if cfg.TickUS <= 0 {
		cfg.TickUS = 1000
	}
	if cfg.TickIncrement == 0 {
		cfg.TickIncrement = 1
	}
	if cfg.RunTicks < 0 {
		cfg.RunTicks = 0
	}

	return cfg, nil
}

// Validate checks the parts of the config the harness cannot clamp away.
func (c Config) Validate() error {
	if len(c.Tasks) == 0 {
		return fmt.Errorf("config: no tasks defined")
	}
	seen := make(map[string]struct{}, len(c.Tasks))
	for i, t := range c.Tasks {
		if t.Name == "" {
			return fmt.Errorf("config: task %d has no name", i)
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("config: duplicate task name %q", t.Name)
		}
		seen[t.Name] = struct{}{}
	}
	return nil
}
