package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ad/go-onboarding-wizard/internal/models"
)

type ProgressRepository struct {
	queue *DBQueue
}

func NewProgressRepository(queue *DBQueue) *ProgressRepository {
	return &ProgressRepository{queue: queue}
}

// Get returns the stored record for a user, or sql.ErrNoRows when the
// user has never been seen.
func (r *ProgressRepository) Get(userID string) (*models.ProgressRecord, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(`
			SELECT user_id, current_step, completed_steps, step_data, is_completed, version
			FROM onboarding_progress WHERE user_id = ?
		`, userID)

		var record models.ProgressRecord
		var completedJSON, dataJSON string
		err := row.Scan(&record.UserID, &record.CurrentStep, &completedJSON, &dataJSON, &record.IsCompleted, &record.Version)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(completedJSON), &record.CompletedSteps); err != nil {
			return nil, fmt.Errorf("decode completed_steps for %s: %w", record.UserID, err)
		}
		if err := json.Unmarshal([]byte(dataJSON), &record.StepData); err != nil {
			return nil, fmt.Errorf("decode step_data for %s: %w", record.UserID, err)
		}
		if record.CompletedSteps == nil {
			record.CompletedSteps = []int{}
		}
		if record.StepData == nil {
			record.StepData = make(map[int]json.RawMessage)
		}

		return &record, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.ProgressRecord), nil
}

// Save writes the record with compare-and-swap semantics. A record
// with Version 0 is inserted; anything else updates the row only if
// the stored version still matches. Either way a lost race surfaces
// as models.ErrVersionConflict and the in-memory Version is bumped on
// success.
func (r *ProgressRepository) Save(record *models.ProgressRecord) error {
	completedJSON, err := json.Marshal(record.CompletedSteps)
	if err != nil {
		return fmt.Errorf("encode completed_steps for %s: %w", record.UserID, err)
	}
	dataJSON, err := json.Marshal(record.StepData)
	if err != nil {
		return fmt.Errorf("encode step_data for %s: %w", record.UserID, err)
	}

	_, err = r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		if record.Version == 0 {
			res, err := db.Exec(`
				INSERT INTO onboarding_progress (user_id, current_step, completed_steps, step_data, is_completed, version, updated_at)
				VALUES (?, ?, ?, ?, ?, 1, ?)
				ON CONFLICT(user_id) DO NOTHING
			`, record.UserID, record.CurrentStep, string(completedJSON), string(dataJSON), record.IsCompleted, time.Now())
			if err != nil {
				return nil, err
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return nil, err
			}
			if affected == 0 {
				return nil, fmt.Errorf("insert progress for %s: %w", record.UserID, models.ErrVersionConflict)
			}
			return nil, nil
		}

		res, err := db.Exec(`
			UPDATE onboarding_progress
			SET current_step = ?, completed_steps = ?, step_data = ?, is_completed = ?, version = version + 1, updated_at = ?
			WHERE user_id = ? AND version = ?
		`, record.CurrentStep, string(completedJSON), string(dataJSON), record.IsCompleted, time.Now(), record.UserID, record.Version)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, fmt.Errorf("update progress for %s: %w", record.UserID, models.ErrVersionConflict)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	record.Version++
	return nil
}
