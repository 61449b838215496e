package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/partforge/configurator/internal/models"
)

// BuildRepository persists saved builds (spec.md §3 "Saved Build").
type BuildRepository struct {
	db *sql.DB
}

// NewBuildRepository creates a new saved-build repository.
func NewBuildRepository(db *sql.DB) *BuildRepository {
	return &BuildRepository{db: db}
}

// Create inserts a new saved build.
func (r *BuildRepository) Create(build *models.SavedBuild) error {
	query := `
		INSERT INTO user_builds (
			id, user_id, name, components, total_price, power_usage,
			compatibility, image_component_id, is_saved
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(
		query,
		build.ID, build.UserID, build.Name, build.Components, build.TotalPrice,
		build.PowerUsageW, build.Compatibility, build.ImageComponentID, true,
	).Scan(&build.CreatedAt, &build.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create saved build: %w", err)
	}

	return nil
}

// GetByID returns a saved build owned by userID, or (nil, nil) if it does
// not exist or has been soft-deleted (spec.md §4.5 "owner-scoped").
func (r *BuildRepository) GetByID(userID, buildID uuid.UUID) (*models.SavedBuild, error) {
	build := &models.SavedBuild{}
	query := `
		SELECT id, user_id, name, components, total_price, power_usage,
		       compatibility, image_component_id, created_at, updated_at, is_saved
		FROM user_builds
		WHERE id = $1 AND user_id = $2 AND is_saved = TRUE`

	err := r.db.QueryRow(query, buildID, userID).Scan(
		&build.ID, &build.UserID, &build.Name, &build.Components, &build.TotalPrice,
		&build.PowerUsageW, &build.Compatibility, &build.ImageComponentID,
		&build.CreatedAt, &build.UpdatedAt, &build.IsSaved,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get saved build: %w", err)
	}

	return build, nil
}

// ListByUser returns every non-deleted saved build for a user, most recent
// first.
func (r *BuildRepository) ListByUser(userID uuid.UUID) ([]models.SavedBuild, error) {
	query := `
		SELECT id, user_id, name, components, total_price, power_usage,
		       compatibility, image_component_id, created_at, updated_at, is_saved
		FROM user_builds
		WHERE user_id = $1 AND is_saved = TRUE
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved builds: %w", err)
	}
	defer rows.Close()

	var out []models.SavedBuild
	for rows.Next() {
		var build models.SavedBuild
		if err := rows.Scan(
			&build.ID, &build.UserID, &build.Name, &build.Components, &build.TotalPrice,
			&build.PowerUsageW, &build.Compatibility, &build.ImageComponentID,
			&build.CreatedAt, &build.UpdatedAt, &build.IsSaved,
		); err != nil {
			return nil, fmt.Errorf("failed to scan saved build: %w", err)
		}
		out = append(out, build)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate saved builds: %w", err)
	}

	return out, nil
}

// Update writes back a saved build's mutable fields (name, components,
// totals, compatibility, image) — used by save-edit (updateSaved).
func (r *BuildRepository) Update(build *models.SavedBuild) error {
	query := `
		UPDATE user_builds SET
			name = $3,
			components = $4,
			total_price = $5,
			power_usage = $6,
			compatibility = $7,
			image_component_id = $8,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_saved = TRUE
		RETURNING updated_at`

	err := r.db.QueryRow(
		query,
		build.ID, build.UserID, build.Name, build.Components, build.TotalPrice,
		build.PowerUsageW, build.Compatibility, build.ImageComponentID,
	).Scan(&build.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("saved build not found")
		}
		return fmt.Errorf("failed to update saved build: %w", err)
	}

	return nil
}

// SoftDelete marks a saved build deleted without breaking referential
// integrity with past order items (spec.md §4.3 "Deletion", §9
// "Soft-delete via is_saved").
func (r *BuildRepository) SoftDelete(userID, buildID uuid.UUID) error {
	result, err := r.db.Exec(
		`UPDATE user_builds SET is_saved = FALSE, updated_at = NOW() WHERE id = $1 AND user_id = $2 AND is_saved = TRUE`,
		buildID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete saved build: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("saved build not found")
	}

	return nil
}

// SoftDeleteTx is SoftDelete scoped to a caller-owned transaction, used by
// the Order Engine to finalize a saved-build checkout (spec.md §4.5 step 7
// "Saved-build checkout: soft-delete the build").
func (r *BuildRepository) SoftDeleteTx(tx *sql.Tx, buildID uuid.UUID) error {
	result, err := tx.Exec(
		`UPDATE user_builds SET is_saved = FALSE, updated_at = NOW() WHERE id = $1 AND is_saved = TRUE`,
		buildID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete saved build: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("saved build not found")
	}

	return nil
}

// NameExists reports whether a user already has a non-deleted saved build
// with the given exact name — used by duplicate()'s unique-name search.
func (r *BuildRepository) NameExists(userID uuid.UUID, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM user_builds WHERE user_id = $1 AND name = $2 AND is_saved = TRUE)`

	err := r.db.QueryRow(query, userID, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check saved build name: %w", err)
	}

	return exists, nil
}

// GetByIDForOrder returns a saved build regardless of owner, used internally
// by the Order Engine which scopes ownership itself before calling this.
func (r *BuildRepository) GetByIDForOrder(buildID uuid.UUID) (*models.SavedBuild, error) {
	build := &models.SavedBuild{}
	query := `
		SELECT id, user_id, name, components, total_price, power_usage,
		       compatibility, image_component_id, created_at, updated_at, is_saved
		FROM user_builds
		WHERE id = $1 AND is_saved = TRUE`

	err := r.db.QueryRow(query, buildID).Scan(
		&build.ID, &build.UserID, &build.Name, &build.Components, &build.TotalPrice,
		&build.PowerUsageW, &build.Compatibility, &build.ImageComponentID,
		&build.CreatedAt, &build.UpdatedAt, &build.IsSaved,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get saved build: %w", err)
	}

	return build, nil
}
