package store

import (
	"context"
	"time"
)

type PurchaseStore struct {
	db DB
}

func NewPurchaseStore(db DB) *PurchaseStore {
	return &PurchaseStore{db: db}
}

type PurchaseInput struct {
	ID              string
	ServiceID       string
	BuyerUserID     string
	Quantity        int
	TotalPrice      string
	CurrencyCode    string
	TransactionHash string
}

// Insert records an entitlement. Called only inside the purchase
// transaction, after the ledger payment was accepted.
func (s *PurchaseStore) Insert(ctx context.Context, tx Execer, input PurchaseInput) error {
	query := `
		INSERT INTO purchases (id, service_id, buyer_user_id, quantity, total_price, currency_code, transaction_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.ServiceID, input.BuyerUserID, input.Quantity, input.TotalPrice, input.CurrencyCode, input.TransactionHash)
	return err
}

type PurchaseWithService struct {
	ID                 string    `db:"id" json:"id"`
	ServiceID          string    `db:"service_id" json:"service_id"`
	Quantity           int       `db:"quantity" json:"quantity"`
	TotalPrice         string    `db:"total_price" json:"total_price"`
	CurrencyCode       string    `db:"currency_code" json:"currency_code"`
	TransactionHash    string    `db:"transaction_hash" json:"transaction_hash"`
	PurchaseDate       time.Time `db:"purchase_date" json:"purchase_date"`
	ServiceName        string    `db:"service_name" json:"service_name"`
	ServiceDescription string    `db:"service_description" json:"service_description"`
	ServicePrice       string    `db:"service_price" json:"service_price"`
	OwnerUserID        string    `db:"owner_user_id" json:"owner_user_id"`
}

func (s *PurchaseStore) ListByBuyer(ctx context.Context, buyerUserID string) ([]PurchaseWithService, error) {
	query := `
		SELECT
			p.id, p.service_id, p.quantity, p.total_price, p.currency_code, p.transaction_hash, p.purchase_date,
			s.name AS service_name, s.description AS service_description,
			s.price AS service_price, s.owner_user_id
		FROM purchases p
		JOIN services s ON p.service_id = s.id
		WHERE p.buyer_user_id = $1
		ORDER BY p.purchase_date DESC
	`
	var purchases []PurchaseWithService
	err := s.db.SelectContext(ctx, &purchases, query, buyerUserID)
	return purchases, err
}
