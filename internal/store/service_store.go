package store

import (
	"context"

	"felix/internal/models"
)

type ServiceStore struct {
	db DB
}

func NewServiceStore(db DB) *ServiceStore {
	return &ServiceStore{db: db}
}

const serviceColumns = `id, owner_user_id, name, description, price, is_active, created_at, updated_at`

func (s *ServiceStore) GetByIDTx(ctx context.Context, tx Getter, serviceID string) (models.Service, error) {
	var svc models.Service
	err := tx.GetContext(ctx, &svc, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, serviceID)
	return svc, err
}

func (s *ServiceStore) ListActive(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	err := s.db.SelectContext(ctx, &services, `SELECT `+serviceColumns+` FROM services WHERE is_active = TRUE ORDER BY created_at DESC`)
	return services, err
}

func (s *ServiceStore) Create(ctx context.Context, tx Execer, id, ownerUserID, name, description, price string) error {
	query := `
		INSERT INTO services (id, owner_user_id, name, description, price)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, id, ownerUserID, name, description, price)
	return err
}

// Update rewrites a service owned by ownerUserID. Returns the number of
// rows touched so callers can distinguish "not found" from "not yours".
func (s *ServiceStore) Update(ctx context.Context, tx Execer, serviceID, ownerUserID, name, description, price string, isActive bool) (int64, error) {
	query := `
		UPDATE services
		SET name = $3, description = $4, price = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1 AND owner_user_id = $2
	`
	res, err := tx.ExecContext(ctx, query, serviceID, ownerUserID, name, description, price, isActive)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *ServiceStore) Delete(ctx context.Context, tx Execer, serviceID, ownerUserID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM services WHERE id = $1 AND owner_user_id = $2`, serviceID, ownerUserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
