package store

import (
	"context"

	"felix/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, tx Execer, id, keycloakID, username, email, displayName string) error {
	query := `
		INSERT INTO users (id, keycloak_id, username, email, display_name)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, id, keycloakID, username, email, displayName)
	return err
}

// GetByKeycloakID resolves an external principal id to the internal user
// record.
func (s *UserStore) GetByKeycloakID(ctx context.Context, keycloakID string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT id, keycloak_id, username, email, display_name, created_at FROM users WHERE keycloak_id = $1`, keycloakID)
	return user, err
}

func (s *UserStore) GetByKeycloakIDTx(ctx context.Context, tx Getter, keycloakID string) (models.User, error) {
	var user models.User
	err := tx.GetContext(ctx, &user, `SELECT id, keycloak_id, username, email, display_name, created_at FROM users WHERE keycloak_id = $1`, keycloakID)
	return user, err
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT id, keycloak_id, username, email, display_name, created_at FROM users WHERE id = $1`, userID)
	return user, err
}
