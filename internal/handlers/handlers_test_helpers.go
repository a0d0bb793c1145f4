package handlers

import (
	"context"
	"net/http"

	"felix/internal/config"
	"felix/internal/ledger"
	"felix/internal/middleware"
	"felix/internal/models"
	"felix/internal/services"
	"felix/internal/store"
	"felix/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

func (f fakeTxRunner) WithTxOnce(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn          func(ctx context.Context, tx store.Execer, id, keycloakID, username, email, displayName string) error
	getByKeycloakIDFn func(ctx context.Context, keycloakID string) (models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, keycloakID, username, email, displayName string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, keycloakID, username, email, displayName)
}

func (s stubUserStore) GetByKeycloakID(ctx context.Context, keycloakID string) (models.User, error) {
	if s.getByKeycloakIDFn == nil {
		return models.User{ID: "user-1", KeycloakID: keycloakID, Username: "alice"}, nil
	}
	return s.getByKeycloakIDFn(ctx, keycloakID)
}

type stubServiceStore struct {
	getByIDTxFn func(ctx context.Context, tx store.Getter, serviceID string) (models.Service, error)
	listFn      func(ctx context.Context) ([]models.Service, error)
	createFn    func(ctx context.Context, tx store.Execer, id, ownerUserID, name, description, price string) error
	updateFn    func(ctx context.Context, tx store.Execer, serviceID, ownerUserID, name, description, price string, isActive bool) (int64, error)
	deleteFn    func(ctx context.Context, tx store.Execer, serviceID, ownerUserID string) (int64, error)
}

func (s stubServiceStore) GetByIDTx(ctx context.Context, tx store.Getter, serviceID string) (models.Service, error) {
	if s.getByIDTxFn == nil {
		return models.Service{}, nil
	}
	return s.getByIDTxFn(ctx, tx, serviceID)
}

func (s stubServiceStore) ListActive(ctx context.Context) ([]models.Service, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubServiceStore) Create(ctx context.Context, tx store.Execer, id, ownerUserID, name, description, price string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, ownerUserID, name, description, price)
}

func (s stubServiceStore) Update(ctx context.Context, tx store.Execer, serviceID, ownerUserID, name, description, price string, isActive bool) (int64, error) {
	if s.updateFn == nil {
		return 1, nil
	}
	return s.updateFn(ctx, tx, serviceID, ownerUserID, name, description, price, isActive)
}

func (s stubServiceStore) Delete(ctx context.Context, tx store.Execer, serviceID, ownerUserID string) (int64, error) {
	if s.deleteFn == nil {
		return 1, nil
	}
	return s.deleteFn(ctx, tx, serviceID, ownerUserID)
}

type stubPurchaseStore struct {
	listFn func(ctx context.Context, buyerUserID string) ([]store.PurchaseWithService, error)
}

func (s stubPurchaseStore) ListByBuyer(ctx context.Context, buyerUserID string) ([]store.PurchaseWithService, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, buyerUserID)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubWalletService struct {
	createFn       func(ctx context.Context, userID string) (models.Wallet, error)
	walletFn       func(ctx context.Context, userID string) (models.Wallet, error)
	balancesFn     func(ctx context.Context, userID string) (string, []ledger.Balance, error)
	sendFn         func(ctx context.Context, req services.SendAssetRequest) (string, error)
	trustFn        func(ctx context.Context, userID, assetCode, assetIssuer string) (string, error)
	transactionsFn func(ctx context.Context, userID string, limit int) (string, []services.TransactionEntry, error)
}

func (s stubWalletService) CreateWallet(ctx context.Context, userID string) (models.Wallet, error) {
	if s.createFn == nil {
		return models.Wallet{ID: "wallet-1", UserID: userID, PublicKey: "GPUB"}, nil
	}
	return s.createFn(ctx, userID)
}

func (s stubWalletService) Wallet(ctx context.Context, userID string) (models.Wallet, error) {
	if s.walletFn == nil {
		return models.Wallet{}, services.ErrWalletNotFound
	}
	return s.walletFn(ctx, userID)
}

func (s stubWalletService) Balances(ctx context.Context, userID string) (string, []ledger.Balance, error) {
	if s.balancesFn == nil {
		return "GPUB", nil, nil
	}
	return s.balancesFn(ctx, userID)
}

func (s stubWalletService) SendAsset(ctx context.Context, req services.SendAssetRequest) (string, error) {
	if s.sendFn == nil {
		return "hash-1", nil
	}
	return s.sendFn(ctx, req)
}

func (s stubWalletService) EstablishTrustline(ctx context.Context, userID, assetCode, assetIssuer string) (string, error) {
	if s.trustFn == nil {
		return "hash-1", nil
	}
	return s.trustFn(ctx, userID, assetCode, assetIssuer)
}

func (s stubWalletService) Transactions(ctx context.Context, userID string, limit int) (string, []services.TransactionEntry, error) {
	if s.transactionsFn == nil {
		return "GPUB", nil, nil
	}
	return s.transactionsFn(ctx, userID, limit)
}

type stubExchangeService struct {
	createFn    func(ctx context.Context, req services.OfferRequest) (services.OfferResult, error)
	cancelFn    func(ctx context.Context, req services.CancelOfferRequest) (services.OfferResult, error)
	myOffersFn  func(ctx context.Context, userID string) (string, []ledger.OfferRecord, error)
	orderBookFn func(ctx context.Context, sellingCode, sellingIssuer, buyingCode, buyingIssuer string) (ledger.OrderBook, error)
}

func (s stubExchangeService) CreateOffer(ctx context.Context, req services.OfferRequest) (services.OfferResult, error) {
	if s.createFn == nil {
		return services.OfferResult{TransactionHash: "hash-1", Ledger: 1}, nil
	}
	return s.createFn(ctx, req)
}

func (s stubExchangeService) CancelOffer(ctx context.Context, req services.CancelOfferRequest) (services.OfferResult, error) {
	if s.cancelFn == nil {
		return services.OfferResult{TransactionHash: "hash-1", Ledger: 1}, nil
	}
	return s.cancelFn(ctx, req)
}

func (s stubExchangeService) MyOffers(ctx context.Context, userID string) (string, []ledger.OfferRecord, error) {
	if s.myOffersFn == nil {
		return "GPUB", nil, nil
	}
	return s.myOffersFn(ctx, userID)
}

func (s stubExchangeService) OrderBook(ctx context.Context, sellingCode, sellingIssuer, buyingCode, buyingIssuer string) (ledger.OrderBook, error) {
	if s.orderBookFn == nil {
		return ledger.OrderBook{}, nil
	}
	return s.orderBookFn(ctx, sellingCode, sellingIssuer, buyingCode, buyingIssuer)
}

type stubPurchaseService struct {
	purchaseFn func(ctx context.Context, buyerUserID, serviceID string, quantity int) (services.PurchaseResult, error)
}

func (s stubPurchaseService) Purchase(ctx context.Context, buyerUserID, serviceID string, quantity int) (services.PurchaseResult, error) {
	if s.purchaseFn == nil {
		return services.PurchaseResult{PurchaseID: "purchase-1", TransactionHash: "hash-1"}, nil
	}
	return s.purchaseFn(ctx, buyerUserID, serviceID, quantity)
}

type stubIssuerService struct {
	issueFn func(ctx context.Context, recipient, amount string) (string, error)
}

func (s stubIssuerService) Issue(ctx context.Context, recipient, amount string) (string, error) {
	if s.issueFn == nil {
		return "hash-1", nil
	}
	return s.issueFn(ctx, recipient, amount)
}

type testHandlerOptions struct {
	txRunner fakeTxRunner
	users    stubUserStore
	services stubServiceStore
	list     stubPurchaseStore
	audit    stubAuditStore
	wallet   stubWalletService
	exchange stubExchangeService
	purchase stubPurchaseService
	issuer   stubIssuerService
}

func newTestHandler(opts testHandlerOptions) *Handler {
	cfg := config.Config{JWTSecret: "secret", AllowedOrigins: "*"}
	return New(opts.txRunner, cfg, opts.users, opts.services, opts.list, opts.audit, opts.wallet, opts.exchange, opts.purchase, opts.issuer, websocket.NewHub())
}

func withTestPrincipal(r *http.Request) *http.Request {
	return r.WithContext(middleware.WithPrincipal(r.Context(), middleware.Principal{
		KeycloakID:  "kc-1",
		Username:    "alice",
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Roles:       []string{"entity_owner", "admin"},
	}))
}
