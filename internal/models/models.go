package models

import "time"

type User struct {
	ID          string    `db:"id" json:"id"`
	KeycloakID  string    `db:"keycloak_id" json:"-"`
	Username    string    `db:"username" json:"username"`
	Email       string    `db:"email" json:"email"`
	DisplayName string    `db:"display_name" json:"display_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Wallet is a custodial Stellar account held for a user. The secret key is
// stored encrypted and never leaves the process unencrypted except
// transiently during signing.
type Wallet struct {
	ID                 string    `db:"id" json:"id"`
	UserID             string    `db:"user_id" json:"user_id"`
	PublicKey          string    `db:"public_key" json:"public_key"`
	EncryptedSecretKey string    `db:"encrypted_secret_key" json:"-"`
	IsMultiSig         bool      `db:"is_multi_sig" json:"is_multi_sig"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

type Service struct {
	ID          string    `db:"id" json:"id"`
	OwnerUserID string    `db:"owner_user_id" json:"owner_user_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       string    `db:"price" json:"price"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Purchase is recorded only after the corresponding ledger payment was
// accepted. Rows are immutable.
type Purchase struct {
	ID           string    `db:"id" json:"id"`
	ServiceID    string    `db:"service_id" json:"service_id"`
	BuyerUserID  string    `db:"buyer_user_id" json:"buyer_user_id"`
	Quantity     int       `db:"quantity" json:"quantity"`
	TotalPrice   string    `db:"total_price" json:"total_price"`
	CurrencyCode string    `db:"currency_code" json:"currency_code"`
	PurchaseDate time.Time `db:"purchase_date" json:"purchase_date"`
}
