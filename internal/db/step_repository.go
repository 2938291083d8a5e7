package db

import (
	"database/sql"

	"github.com/ad/go-onboarding-wizard/internal/models"
)

type StepRepository struct {
	queue *DBQueue
}

func NewStepRepository(queue *DBQueue) *StepRepository {
	return &StepRepository{queue: queue}
}

// GetAll returns every step definition ordered by role and step
// order. The registry is built from this once at startup.
func (r *StepRepository) GetAll() ([]models.StepDefinition, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT role, step_order, id, title, is_terminal
			FROM onboarding_steps
			ORDER BY role, step_order
		`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var defs []models.StepDefinition
		for rows.Next() {
			var def models.StepDefinition
			if err := rows.Scan(&def.Role, &def.StepOrder, &def.ID, &def.Title, &def.Terminal); err != nil {
				return nil, err
			}
			defs = append(defs, def)
		}
		return defs, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.StepDefinition), nil
}

// ReplaceAll swaps the whole definition table in one transaction.
// Used by the update-steps tool; running servers keep their frozen
// registry until restarted.
func (r *StepRepository) ReplaceAll(defs []models.StepDefinition) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		tx, err := db.Begin()
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM onboarding_steps`); err != nil {
			return nil, err
		}
		for _, def := range defs {
			_, err := tx.Exec(`
				INSERT INTO onboarding_steps (role, step_order, id, title, is_terminal)
				VALUES (?, ?, ?, ?, ?)
			`, def.Role, def.StepOrder, def.ID, def.Title, def.Terminal)
			if err != nil {
				return nil, err
			}
		}
		return nil, tx.Commit()
	})
	return err
}
