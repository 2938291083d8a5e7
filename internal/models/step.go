package models

// StepDefinition describes one step of a role's onboarding sequence.
// The ordered list per role is fixed at process start; StepOrder is
// 1-based and unique within a role.
type StepDefinition struct {
	Role      Role   `json:"role"`
	StepOrder int    `json:"step_order"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	Terminal  bool   `json:"terminal"`
}
