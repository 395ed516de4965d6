// Package policy loads the agent selection policy from a YAML file.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Selection strategies.
const (
	// StrategyLeastLoaded picks the available agent with the fewest
	// assigned leads.
	StrategyLeastLoaded = "least_loaded"
	// StrategyFirstAvailable picks the longest-registered available agent.
	StrategyFirstAvailable = "first_available"
)

// Policy controls how an agent is chosen for a new lead.
type Policy struct {
	Strategy        string `yaml:"strategy"`
	RespectCapacity bool   `yaml:"respect_capacity"`
}

// Default is the policy used when no file is configured.
func Default() Policy {
	return Policy{Strategy: StrategyLeastLoaded, RespectCapacity: true}
}

// Load reads a policy file. An empty path yields the default policy.
func Load(path string) (Policy, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read agent policy: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse agent policy: %w", err)
	}

	switch p.Strategy {
	case StrategyLeastLoaded, StrategyFirstAvailable:
	default:
		return Policy{}, fmt.Errorf("unknown agent selection strategy %q", p.Strategy)
	}

	return p, nil
}
