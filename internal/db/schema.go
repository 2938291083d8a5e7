package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS onboarding_steps (
    role TEXT NOT NULL,
    step_order INTEGER NOT NULL,
    id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    is_terminal BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (role, step_order)
);

CREATE TABLE IF NOT EXISTS onboarding_progress (
    user_id TEXT PRIMARY KEY,
    current_step INTEGER NOT NULL DEFAULT 1,
    completed_steps TEXT NOT NULL DEFAULT '[]',
    step_data TEXT NOT NULL DEFAULT '{}',
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    version INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME
);
`

const defaultSteps = `
INSERT INTO onboarding_steps (role, step_order, id, title, is_terminal) VALUES
    ('creator', 1, 'creator-profile', 'Your profile', FALSE),
    ('creator', 2, 'creator-categories', 'Content categories', FALSE),
    ('creator', 3, 'creator-socials', 'Social channels', FALSE),
    ('creator', 4, 'creator-rates', 'Collaboration rates', TRUE),
    ('organization', 1, 'org-company', 'Company details', FALSE),
    ('organization', 2, 'org-brand', 'Brand profile', FALSE),
    ('organization', 3, 'org-goals', 'Campaign goals', TRUE);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return err
	}

	// Seed only an empty table; operator-managed sequences from
	// update-steps must survive restarts intact.
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM onboarding_steps`).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		if _, err := db.Exec(defaultSteps); err != nil {
			return err
		}
	}

	return nil
}
