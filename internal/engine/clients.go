package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

// CreateClient adds a client of the current user.
func (e *Engine) CreateClient(ctx context.Context, draft models.ClientDraft) (models.Client, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return models.Client{}, ErrEmptyTitle
	}
	c := models.Client{
		ID:      e.tempID(),
		UserID:  e.UserID(),
		Name:    name,
		Contact: draft.Contact,
		Avatar:  draft.Avatar,
	}.Clone()

	e.mu.Lock()
	e.state.Clients = append(e.state.Clients, c)
	e.mu.Unlock()

	log := e.logger.With("op", "create_client", "temp_id", c.ID)
	id, err := e.store.Clients().Insert(ctx, c)
	if err != nil {
		log.Error(ctx, "remote insert failed", "err", err)
		return c.Clone(), fmt.Errorf("create client: %w", err)
	}

	e.mu.Lock()
	i := e.clientIndex(c.ID)
	var out models.Client
	if i >= 0 {
		e.state.Clients[i].ID = id
		out = e.state.Clients[i].Clone()
	}
	e.mu.Unlock()

	if i < 0 {
		if err := e.store.Clients().Delete(ctx, id); err != nil {
			log.Warn(ctx, "orphan cleanup failed", "id", id, "err", err)
		}
		return models.Client{}, ErrNotFound
	}
	// Changes made while the insert was in flight.
	if patch := models.ClientChanges(c, out); !patch.Empty() {
		if err := e.store.Clients().Update(ctx, id, patch); err != nil {
			log.Error(ctx, "pending changes not saved", "id", id, "err", err)
			return out, fmt.Errorf("create client: %w", err)
		}
	}
	return out, nil
}

// UpdateClient applies patch locally and remotely. Tasks keep referring to
// the client by its old name.
func (e *Engine) UpdateClient(ctx context.Context, id string, patch models.ClientPatch) error {
	if patch.Empty() {
		return nil
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return ErrEmptyTitle
	}

	e.mu.Lock()
	i := e.clientIndex(id)
	if i < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	patch.Apply(&e.state.Clients[i])
	e.mu.Unlock()

	log := e.logger.With("op", "update_client", "id", id)
	if models.IsTempID(id) {
		log.Debug(ctx, "client not confirmed yet, change saved after the insert")
		return nil
	}
	if err := e.store.Clients().Update(ctx, id, patch); err != nil {
		log.Error(ctx, "remote update failed", "err", err)
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

// DeleteClient removes a client. Tasks naming it are left untouched.
func (e *Engine) DeleteClient(ctx context.Context, id string) error {
	e.mu.Lock()
	i := e.clientIndex(id)
	if i < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	e.state.Clients = slices.Delete(e.state.Clients, i, i+1)
	e.mu.Unlock()

	if models.IsTempID(id) {
		return nil
	}
	if err := e.store.Clients().Delete(ctx, id); err != nil {
		e.logger.Error(ctx, "remote delete failed", "op", "delete_client", "id", id, "err", err)
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}
