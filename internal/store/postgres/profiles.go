package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

// ProfileRepository implements store.ProfileRepository over a dbx.DBTX.
type ProfileRepository struct {
	db dbx.DBTX
}

// NewProfileRepository constructs a repository bound to the given DBTX.
func NewProfileRepository(db dbx.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfile(s dbx.Scanner) (models.Profile, error) {
	var (
		p       models.Profile
		premium sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Name, &p.AvatarURL, &premium); err != nil {
		return models.Profile{}, err
	}
	p.PremiumUntil = timePtr(premium)
	return p, nil
}

// ListByIDs returns the profiles of the given users. Unknown ids are skipped.
func (r *ProfileRepository) ListByIDs(ctx context.Context, ids []int64) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	query := `SELECT id, name, avatar_url, premium_until FROM profiles WHERE id = ANY($1)`
	result, err := dbx.QueryAll(ctx, r.db, scanProfile, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to select profiles: %w", err)
	}
	return result, nil
}

// Upsert creates or refreshes the display data of a profile. premium_until
// is managed by the payment backend and is left as is.
func (r *ProfileRepository) Upsert(ctx context.Context, p models.Profile) error {
	query := `
		INSERT INTO profiles (id, name, avatar_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name, avatar_url = EXCLUDED.avatar_url, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.AvatarURL); err != nil {
		return mapError(err)
	}
	return nil
}
