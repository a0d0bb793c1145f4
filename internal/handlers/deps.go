package handlers

import (
	"context"

	"felix/internal/ledger"
	"felix/internal/models"
	"felix/internal/services"
	"felix/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, keycloakID, username, email, displayName string) error
	GetByKeycloakID(ctx context.Context, keycloakID string) (models.User, error)
}

type ServiceStore interface {
	GetByIDTx(ctx context.Context, tx store.Getter, serviceID string) (models.Service, error)
	ListActive(ctx context.Context) ([]models.Service, error)
	Create(ctx context.Context, tx store.Execer, id, ownerUserID, name, description, price string) error
	Update(ctx context.Context, tx store.Execer, serviceID, ownerUserID, name, description, price string, isActive bool) (int64, error)
	Delete(ctx context.Context, tx store.Execer, serviceID, ownerUserID string) (int64, error)
}

type PurchaseStore interface {
	ListByBuyer(ctx context.Context, buyerUserID string) ([]store.PurchaseWithService, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type WalletService interface {
	CreateWallet(ctx context.Context, userID string) (models.Wallet, error)
	Wallet(ctx context.Context, userID string) (models.Wallet, error)
	Balances(ctx context.Context, userID string) (string, []ledger.Balance, error)
	SendAsset(ctx context.Context, req services.SendAssetRequest) (string, error)
	EstablishTrustline(ctx context.Context, userID, assetCode, assetIssuer string) (string, error)
	Transactions(ctx context.Context, userID string, limit int) (string, []services.TransactionEntry, error)
}

type ExchangeService interface {
	CreateOffer(ctx context.Context, req services.OfferRequest) (services.OfferResult, error)
	CancelOffer(ctx context.Context, req services.CancelOfferRequest) (services.OfferResult, error)
	MyOffers(ctx context.Context, userID string) (string, []ledger.OfferRecord, error)
	OrderBook(ctx context.Context, sellingCode, sellingIssuer, buyingCode, buyingIssuer string) (ledger.OrderBook, error)
}

type PurchaseService interface {
	Purchase(ctx context.Context, buyerUserID, serviceID string, quantity int) (services.PurchaseResult, error)
}

type IssuerService interface {
	Issue(ctx context.Context, recipient, amount string) (string, error)
}
