package services

import (
	"fmt"
	"sort"

	"github.com/ad/go-onboarding-wizard/internal/models"
)

// StepRegistry answers, for a role, "what is step N", "how many steps
// exist" and "is step N terminal". It is built once at process start
// from stored definitions and never mutated; all lookups are pure.
type StepRegistry struct {
	sequences map[models.Role][]models.StepDefinition
}

// NewStepRegistry validates and freezes the given definitions. Per
// role the step orders must be unique and contiguous from 1, and the
// terminal flag must be set on exactly the last step.
func NewStepRegistry(defs []models.StepDefinition) (*StepRegistry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("step registry: no step definitions")
	}

	sequences := make(map[models.Role][]models.StepDefinition)
	for _, def := range defs {
		sequences[def.Role] = append(sequences[def.Role], def)
	}

	for role, steps := range sequences {
		sort.Slice(steps, func(i, j int) bool {
			return steps[i].StepOrder < steps[j].StepOrder
		})
		for i, step := range steps {
			if step.StepOrder != i+1 {
				return nil, fmt.Errorf("step registry: role %s has no step %d (got order %d)", role, i+1, step.StepOrder)
			}
			last := i == len(steps)-1
			if step.Terminal != last {
				return nil, fmt.Errorf("step registry: role %s step %d terminal flag must mark the last step only", role, step.StepOrder)
			}
		}
		sequences[role] = steps
	}

	return &StepRegistry{sequences: sequences}, nil
}

// Roles returns the roles with a defined sequence, sorted.
func (r *StepRegistry) Roles() []models.Role {
	roles := make([]models.Role, 0, len(r.sequences))
	for role := range r.sequences {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// StepCount returns the number of steps for a role, 0 for an unknown
// role. The terminal step order always equals the count.
func (r *StepRegistry) StepCount(role models.Role) int {
	return len(r.sequences[role])
}

// Steps returns the ordered sequence for a role.
func (r *StepRegistry) Steps(role models.Role) []models.StepDefinition {
	steps := r.sequences[role]
	out := make([]models.StepDefinition, len(steps))
	copy(out, steps)
	return out
}

// Step returns the definition at a 1-based order, or
// models.ErrUnknownStep when the order is outside the role's
// sequence.
func (r *StepRegistry) Step(role models.Role, order int) (models.StepDefinition, error) {
	steps, ok := r.sequences[role]
	if !ok || order < 1 || order > len(steps) {
		return models.StepDefinition{}, fmt.Errorf("step %d of role %s: %w", order, role, models.ErrUnknownStep)
	}
	return steps[order-1], nil
}

// IsTerminal reports whether the step at order is the role's last.
func (r *StepRegistry) IsTerminal(role models.Role, order int) (bool, error) {
	step, err := r.Step(role, order)
	if err != nil {
		return false, err
	}
	return step.Terminal, nil
}
