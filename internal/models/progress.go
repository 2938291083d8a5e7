package models

import (
	"encoding/json"
	"sort"
)

// ProgressRecord is the single durable object tracking one user's
// position and collected data through the wizard. CompletedSteps is a
// set (kept sorted, membership is what matters); StepData maps a step
// order to the opaque document last submitted for that step.
type ProgressRecord struct {
	UserID         string                  `json:"user_id"`
	CurrentStep    int                     `json:"current_step"`
	CompletedSteps []int                   `json:"completed_steps"`
	StepData       map[int]json.RawMessage `json:"step_data"`
	IsCompleted    bool                    `json:"is_completed"`
	Version        int64                   `json:"-"`
}

// NewProgressRecord returns the default record for a user that has
// not started the wizard yet.
func NewProgressRecord(userID string) *ProgressRecord {
	return &ProgressRecord{
		UserID:         userID,
		CurrentStep:    1,
		CompletedSteps: []int{},
		StepData:       make(map[int]json.RawMessage),
	}
}

func (p *ProgressRecord) HasCompleted(order int) bool {
	for _, s := range p.CompletedSteps {
		if s == order {
			return true
		}
	}
	return false
}

// MarkCompleted adds order to the completed set. Re-marking an
// already completed step is a no-op.
func (p *ProgressRecord) MarkCompleted(order int) {
	if p.HasCompleted(order) {
		return
	}
	p.CompletedSteps = append(p.CompletedSteps, order)
	sort.Ints(p.CompletedSteps)
}

// MaxCompleted returns the highest completed step order, or 0 when
// nothing has been completed.
func (p *ProgressRecord) MaxCompleted() int {
	if len(p.CompletedSteps) == 0 {
		return 0
	}
	return p.CompletedSteps[len(p.CompletedSteps)-1]
}

// ProgressResult is returned by commit and skip operations.
type ProgressResult struct {
	Success   bool `json:"success"`
	NextStep  int  `json:"next_step"`
	Completed bool `json:"completed"`
}

// SkippedPayload is the sentinel document stored for a skipped step,
// so every completed step still has a StepData entry. A later commit
// to the same step overwrites it.
func SkippedPayload() json.RawMessage {
	return json.RawMessage(`{"skipped":true}`)
}
