package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

// ClientRepository implements store.ClientRepository over a dbx.DBTX.
type ClientRepository struct {
	db dbx.DBTX
}

// NewClientRepository constructs a repository bound to the given DBTX.
func NewClientRepository(db dbx.DBTX) *ClientRepository {
	return &ClientRepository{db: db}
}

func scanClient(s dbx.Scanner) (models.Client, error) {
	var (
		c      models.Client
		avatar sql.NullString
	)
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Contact, &avatar); err != nil {
		return models.Client{}, err
	}
	c.Avatar = stringPtr(avatar)
	return c, nil
}

// ListByUser returns the clients of userID ordered by name.
func (r *ClientRepository) ListByUser(ctx context.Context, userID int64) ([]models.Client, error) {
	query := `SELECT id, user_id, name, contact, avatar FROM clients WHERE user_id = $1 ORDER BY name`
	result, err := dbx.QueryAll(ctx, r.db, scanClient, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select clients: %w", err)
	}
	return result, nil
}

// Insert stores c and returns the generated id.
func (r *ClientRepository) Insert(ctx context.Context, c models.Client) (string, error) {
	query := `INSERT INTO clients (user_id, name, contact, avatar) VALUES ($1, $2, $3, $4) RETURNING id`
	var id string
	if err := r.db.QueryRowContext(ctx, query, c.UserID, c.Name, c.Contact, nullString(c.Avatar)).Scan(&id); err != nil {
		return "", mapError(err)
	}
	return id, nil
}

// Update writes the set fields of patch. An empty patch is a no-op.
func (r *ClientRepository) Update(ctx context.Context, id string, patch models.ClientPatch) error {
	var b setBuilder
	if patch.Name != nil {
		b.set("name", *patch.Name)
	}
	if patch.Contact != nil {
		b.set("contact", *patch.Contact)
	}
	b.optional("avatar", patch.Avatar, patch.ClearAvatar)
	if b.empty() {
		return nil
	}

	query, args := b.update("clients", id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	return dbx.ExpectAffected(res)
}

// Delete removes a client. Tasks keep the client name.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return dbx.ExpectAffected(res)
}
