package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	var sc Scenario
	if err := loadYAML(path, &sc); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	if err := prepare(&sc); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	return &sc, nil
}

// ParseScenario decodes a scenario from memory.
func ParseScenario(b []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := prepare(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &sc, nil
}

// prepare fills health defaults, validates and orders the script by time.
func prepare(sc *Scenario) error {
	for _, c := range []*CombatantConfig{&sc.Own, &sc.Enemy} {
		if c.MaxHealth == 0 {
			c.MaxHealth = c.Health
		}
		if c.Health == 0 {
			c.Health = c.MaxHealth
		}
	}
	if err := sc.Validate(); err != nil {
		return err
	}
	sort.SliceStable(sc.Script, func(i, j int) bool { return sc.Script[i].At < sc.Script[j].At })
	return nil
}
