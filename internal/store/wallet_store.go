package store

import (
	"context"

	"felix/internal/models"
)

type WalletStore struct {
	db DB
}

func NewWalletStore(db DB) *WalletStore {
	return &WalletStore{db: db}
}

// Create persists a funded wallet. The encrypted secret is write-once;
// there is no update path. A unique constraint on user_id backs the
// one-wallet-per-user invariant.
func (s *WalletStore) Create(ctx context.Context, id, userID, publicKey, encryptedSecretKey string) error {
	query := `
		INSERT INTO wallets (id, user_id, public_key, encrypted_secret_key, is_multi_sig)
		VALUES ($1, $2, $3, $4, FALSE)
	`
	_, err := s.db.ExecContext(ctx, query, id, userID, publicKey, encryptedSecretKey)
	return err
}

func (s *WalletStore) GetByUser(ctx context.Context, userID string) (models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.GetContext(ctx, &wallet, walletByUserQuery, userID)
	return wallet, err
}

func (s *WalletStore) GetByUserTx(ctx context.Context, tx Getter, userID string) (models.Wallet, error) {
	var wallet models.Wallet
	err := tx.GetContext(ctx, &wallet, walletByUserQuery, userID)
	return wallet, err
}

func (s *WalletStore) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM wallets WHERE user_id = $1)`, userID)
	return exists, err
}

const walletByUserQuery = `SELECT id, user_id, public_key, encrypted_secret_key, is_multi_sig, created_at FROM wallets WHERE user_id = $1`
