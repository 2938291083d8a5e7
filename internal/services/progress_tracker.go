package services

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/ad/go-onboarding-wizard/internal/models"
)

// ProgressStore is the persistence contract for progress records. Get
// returns sql.ErrNoRows for unseen users; Save carries
// compare-and-swap semantics keyed on ProgressRecord.Version and
// returns models.ErrVersionConflict for a lost race.
type ProgressStore interface {
	Get(userID string) (*models.ProgressRecord, error)
	Save(record *models.ProgressRecord) error
}

// ProgressTracker owns the per-user progress record. All state lives
// in the injected store; concurrent operations on one user are
// resolved by optimistic retry around load-mutate-save.
type ProgressTracker struct {
	registry *StepRegistry
	store    ProgressStore
	maxRetry int
}

func NewProgressTracker(registry *StepRegistry, store ProgressStore) *ProgressTracker {
	return &ProgressTracker{
		registry: registry,
		store:    store,
		maxRetry: 3,
	}
}

// GetProgress returns the user's record, creating and persisting the
// default one on first read. Losing the creation race to a concurrent
// call just means the row exists now, so reload.
func (t *ProgressTracker) GetProgress(userID string) (*models.ProgressRecord, error) {
	for attempt := 0; attempt < t.maxRetry; attempt++ {
		record, err := t.store.Get(userID)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		record = models.NewProgressRecord(userID)
		err = t.store.Save(record)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, models.ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("get progress for %s: %w", userID, models.ErrConflict)
}

// CommitStep stores the step's payload, marks the step completed and
// recomputes the user's position. Re-committing a step replaces only
// that step's payload; committing an earlier step never moves
// CurrentStep backward.
func (t *ProgressTracker) CommitStep(userID string, role models.Role, stepOrder int, payload json.RawMessage) (*models.ProgressResult, error) {
	if _, err := t.registry.Step(role, stepOrder); err != nil {
		return nil, err
	}
	if err := validatePayload(payload); err != nil {
		return nil, fmt.Errorf("step %d for %s: %w", stepOrder, userID, err)
	}
	return t.advance(userID, role, stepOrder, payload)
}

// SkipStep advances the same way as CommitStep but stores the skip
// sentinel as the step's payload. A later commit to the same step
// overwrites the sentinel.
func (t *ProgressTracker) SkipStep(userID string, role models.Role, stepOrder int) (*models.ProgressResult, error) {
	if _, err := t.registry.Step(role, stepOrder); err != nil {
		return nil, err
	}
	return t.advance(userID, role, stepOrder, models.SkippedPayload())
}

func (t *ProgressTracker) advance(userID string, role models.Role, stepOrder int, payload json.RawMessage) (*models.ProgressResult, error) {
	terminal, err := t.registry.IsTerminal(role, stepOrder)
	if err != nil {
		return nil, err
	}
	terminalOrder := t.registry.StepCount(role)

	for attempt := 0; attempt < t.maxRetry; attempt++ {
		record, err := t.loadOrDefault(userID)
		if err != nil {
			return nil, err
		}

		record.StepData[stepOrder] = payload
		record.MarkCompleted(stepOrder)
		record.IsCompleted = record.IsCompleted || terminal
		if record.IsCompleted {
			record.CurrentStep = terminalOrder
		} else {
			record.CurrentStep = record.MaxCompleted() + 1
		}

		err = t.store.Save(record)
		if err == nil {
			return &models.ProgressResult{
				Success:   true,
				NextStep:  record.CurrentStep,
				Completed: record.IsCompleted,
			}, nil
		}
		if !errors.Is(err, models.ErrVersionConflict) {
			return nil, err
		}
	}

	log.Printf("[TRACKER] retry budget exhausted for user %s step %d", userID, stepOrder)
	return nil, fmt.Errorf("advance step %d for %s: %w", stepOrder, userID, models.ErrConflict)
}

func (t *ProgressTracker) loadOrDefault(userID string) (*models.ProgressRecord, error) {
	record, err := t.store.Get(userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewProgressRecord(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

var nullToken = []byte("null")

// validatePayload rejects nil, empty, whitespace-only, literal null
// and malformed documents before any record is touched. Field-level
// validation belongs to the form layer.
func validatePayload(payload json.RawMessage) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, nullToken) {
		return models.ErrInvalidPayload
	}
	if !json.Valid(trimmed) {
		return models.ErrInvalidPayload
	}
	return nil
}
