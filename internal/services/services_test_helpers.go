package services

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/stellar/go/txnbuild"

	"felix/internal/asset"
	"felix/internal/ledger"
	"felix/internal/models"
	"felix/internal/store"
	"felix/internal/txbuilder"
	"felix/internal/websocket"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

func (f fakeTxRunner) WithTxOnce(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubWalletStore struct {
	createFn      func(ctx context.Context, id, userID, publicKey, encryptedSecretKey string) error
	getByUserFn   func(ctx context.Context, userID string) (models.Wallet, error)
	getByUserTxFn func(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error)
	existsFn      func(ctx context.Context, userID string) (bool, error)
}

func (s stubWalletStore) Create(ctx context.Context, id, userID, publicKey, encryptedSecretKey string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, id, userID, publicKey, encryptedSecretKey)
}

func (s stubWalletStore) GetByUser(ctx context.Context, userID string) (models.Wallet, error) {
	if s.getByUserFn == nil {
		return models.Wallet{}, nil
	}
	return s.getByUserFn(ctx, userID)
}

func (s stubWalletStore) GetByUserTx(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error) {
	if s.getByUserTxFn == nil {
		return models.Wallet{}, nil
	}
	return s.getByUserTxFn(ctx, tx, userID)
}

func (s stubWalletStore) Exists(ctx context.Context, userID string) (bool, error) {
	if s.existsFn == nil {
		return false, nil
	}
	return s.existsFn(ctx, userID)
}

type stubServiceStore struct {
	getByIDTxFn func(ctx context.Context, tx store.Getter, serviceID string) (models.Service, error)
}

func (s stubServiceStore) GetByIDTx(ctx context.Context, tx store.Getter, serviceID string) (models.Service, error) {
	return s.getByIDTxFn(ctx, tx, serviceID)
}

type stubPurchaseStore struct {
	insertFn func(ctx context.Context, tx store.Execer, input store.PurchaseInput) error
	inserts  int
}

func (s *stubPurchaseStore) Insert(ctx context.Context, tx store.Execer, input store.PurchaseInput) error {
	s.inserts++
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, tx, input)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	logs  int
}

func (s *stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	s.logs++
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubVault struct {
	encryptFn func(secret string) (string, error)
	decryptFn func(ciphertext string) (string, error)
	decrypts  int
}

func (s *stubVault) Encrypt(secret string) (string, error) {
	if s.encryptFn == nil {
		return "encrypted:" + secret, nil
	}
	return s.encryptFn(secret)
}

func (s *stubVault) Decrypt(ciphertext string) (string, error) {
	s.decrypts++
	if s.decryptFn == nil {
		return "SDECRYPTEDSEED", nil
	}
	return s.decryptFn(ciphertext)
}

type stubBuilder struct {
	buildFn func(ctx context.Context, source string, in txbuilder.Intent, signerSecret string) (*txnbuild.Transaction, error)
	builds  int
	lastIn  txbuilder.Intent
}

func (s *stubBuilder) Build(ctx context.Context, source string, in txbuilder.Intent, signerSecret string) (*txnbuild.Transaction, error) {
	s.builds++
	s.lastIn = in
	if s.buildFn == nil {
		return nil, nil
	}
	return s.buildFn(ctx, source, in, signerSecret)
}

type stubLedgerClient struct {
	loadAccountFn func(ctx context.Context, address string) (ledger.Account, error)
	submitFn      func(ctx context.Context, tx *txnbuild.Transaction) (ledger.SubmitResult, error)
	paymentsFn    func(ctx context.Context, address string, limit int, order string) ([]ledger.PaymentRecord, error)
	offersFn      func(ctx context.Context, address string, limit int) ([]ledger.OfferRecord, error)
	orderBookFn   func(ctx context.Context, selling, buying asset.Asset) (ledger.OrderBook, error)
	fundFn        func(ctx context.Context, address string) error
	submits       int
	funds         int
}

func (s *stubLedgerClient) LoadAccount(ctx context.Context, address string) (ledger.Account, error) {
	if s.loadAccountFn == nil {
		return ledger.Account{Address: address}, nil
	}
	return s.loadAccountFn(ctx, address)
}

func (s *stubLedgerClient) Submit(ctx context.Context, tx *txnbuild.Transaction) (ledger.SubmitResult, error) {
	s.submits++
	if s.submitFn == nil {
		return ledger.SubmitResult{Hash: "hash-1", Ledger: 1}, nil
	}
	return s.submitFn(ctx, tx)
}

func (s *stubLedgerClient) Payments(ctx context.Context, address string, limit int, order string) ([]ledger.PaymentRecord, error) {
	if s.paymentsFn == nil {
		return nil, nil
	}
	return s.paymentsFn(ctx, address, limit, order)
}

func (s *stubLedgerClient) Offers(ctx context.Context, address string, limit int) ([]ledger.OfferRecord, error) {
	if s.offersFn == nil {
		return nil, nil
	}
	return s.offersFn(ctx, address, limit)
}

func (s *stubLedgerClient) OrderBook(ctx context.Context, selling, buying asset.Asset) (ledger.OrderBook, error) {
	if s.orderBookFn == nil {
		return ledger.OrderBook{}, nil
	}
	return s.orderBookFn(ctx, selling, buying)
}

func (s *stubLedgerClient) FundAccount(ctx context.Context, address string) error {
	s.funds++
	if s.fundFn == nil {
		return nil
	}
	return s.fundFn(ctx, address)
}

type recordingHub struct {
	events []websocket.ActivityEvent
}

func (h *recordingHub) BroadcastActivity(userID string, event websocket.ActivityEvent) {
	h.events = append(h.events, event)
}
