package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/partforge/configurator/internal/models"
)

// WorkspaceRepository persists each user's temp build (spec.md §3 "Temp
// Build"; unique by user_id).
type WorkspaceRepository struct {
	db *sql.DB
}

// NewWorkspaceRepository creates a new workspace repository.
func NewWorkspaceRepository(db *sql.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// Get returns the user's temp build, or an empty one if none exists yet
// (spec.md §3 "implicitly created on first mutation").
func (r *WorkspaceRepository) Get(userID uuid.UUID) (*models.TempBuild, error) {
	tb := &models.TempBuild{UserID: userID}
	query := `SELECT user_id, components, source_build_id, updated_at FROM user_builds_temp WHERE user_id = $1`

	err := r.db.QueryRow(query, userID).Scan(&tb.UserID, &tb.Components, &tb.SourceBuildID, &tb.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.NewTempBuild(userID), nil
		}
		return nil, fmt.Errorf("failed to get temp build: %w", err)
	}

	return tb, nil
}

// Upsert writes the user's temp build, creating it on first mutation.
func (r *WorkspaceRepository) Upsert(tb *models.TempBuild) error {
	query := `
		INSERT INTO user_builds_temp (user_id, components, source_build_id, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			components = EXCLUDED.components,
			source_build_id = EXCLUDED.source_build_id,
			updated_at = NOW()
		RETURNING updated_at`

	err := r.db.QueryRow(query, tb.UserID, tb.Components, tb.SourceBuildID).Scan(&tb.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert temp build: %w", err)
	}

	return nil
}

// Clear deletes the user's temp build (spec.md §3 "cleared explicitly, on
// save, or on update of the source saved build").
func (r *WorkspaceRepository) Clear(userID uuid.UUID) error {
	_, err := r.db.Exec(`DELETE FROM user_builds_temp WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear temp build: %w", err)
	}
	return nil
}
