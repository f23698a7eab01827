package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"aigrants.co/cli/internal/core/story"
)

// LoadPlanFile reads a story plan from a YAML or JSON file. Fields missing
// from the file keep the values of the base plan.
func LoadPlanFile(path string, base story.Plan) (story.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return story.Plan{}, fmt.Errorf("failed to read plan file: %w", err)
	}

	plan := base
	// JSON is a subset of YAML, so one decoder covers both formats.
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return story.Plan{}, fmt.Errorf("failed to parse plan file %s: %w", path, err)
	}

	if err := plan.Validate(); err != nil {
		return story.Plan{}, fmt.Errorf("invalid plan file %s: %w", path, err)
	}
	return plan, nil
}

// ResolvePlan picks a plan from a file when one is given, else from a preset name
func ResolvePlan(name, path string) (story.Plan, error) {
	if name == "" {
		name = "technical"
	}
	base, err := story.PlanByName(name)
	if err != nil {
		return story.Plan{}, err
	}
	if path == "" {
		return base, nil
	}
	return LoadPlanFile(path, base)
}
