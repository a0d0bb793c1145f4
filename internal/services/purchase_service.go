package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"felix/internal/asset"
	"felix/internal/db"
	"felix/internal/ledger"
	"felix/internal/models"
	"felix/internal/money"
	"felix/internal/store"
	"felix/internal/txbuilder"
	"felix/internal/websocket"
)

var (
	ErrServiceNotFound     = errors.New("service not found")
	ErrServiceInactive     = errors.New("service is inactive and cannot be purchased")
	ErrSelfPurchase        = errors.New("cannot purchase your own service")
	ErrBuyerWalletMissing  = errors.New("buyer wallet not found")
	ErrSellerWalletMissing = errors.New("seller wallet not found")
	ErrInvalidQuantity     = errors.New("quantity must be a positive integer")
)

// NotRecordedError reports the residual inconsistency window of the
// purchase flow: the ledger payment was accepted but the local purchase
// row failed to commit. The hash lets an operator reconcile against
// ledger history.
type NotRecordedError struct {
	TransactionHash string
	Err             error
}

func (e *NotRecordedError) Error() string {
	return fmt.Sprintf("payment %s accepted but purchase not recorded: %v", e.TransactionHash, e.Err)
}

func (e *NotRecordedError) Unwrap() error {
	return e.Err
}

type ServiceStore interface {
	GetByIDTx(ctx context.Context, tx store.Getter, serviceID string) (models.Service, error)
}

type WalletTxStore interface {
	GetByUserTx(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error)
}

type PurchaseStore interface {
	Insert(ctx context.Context, tx store.Execer, input store.PurchaseInput) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

// PurchaseService runs the two-system commit flow: validate locally, move
// the platform asset on the ledger, and record the entitlement in the
// same local transaction. Ordering is submit-then-record: a committed
// purchase row implies an accepted ledger payment.
type PurchaseService struct {
	txRunner      db.TxRunner
	services      ServiceStore
	wallets       WalletTxStore
	purchases     PurchaseStore
	audit         AuditStore
	vault         Vault
	builder       EnvelopeBuilder
	client        ledger.Client
	platformAsset asset.Asset
	hub           ActivityHub
}

func NewPurchaseService(txRunner db.TxRunner, services ServiceStore, wallets WalletTxStore, purchases PurchaseStore, audit AuditStore, vault Vault, builder EnvelopeBuilder, client ledger.Client, platformAsset asset.Asset, hub ActivityHub) *PurchaseService {
	return &PurchaseService{
		txRunner:      txRunner,
		services:      services,
		wallets:       wallets,
		purchases:     purchases,
		audit:         audit,
		vault:         vault,
		builder:       builder,
		client:        client,
		platformAsset: platformAsset,
		hub:           hub,
	}
}

type PurchaseResult struct {
	PurchaseID      string `json:"purchase_id"`
	TransactionHash string `json:"transaction_hash"`
	TotalPrice      string `json:"total_price"`
	Currency        string `json:"currency"`
}

// Purchase buys quantity units of a service for the buyer. The local
// transaction spans all validation reads, the ledger submission and the
// purchase insert; it runs exactly once, because the submission inside it
// is not idempotent. On any rejection the transaction rolls back and no
// purchase row exists. If the commit itself fails after an accepted
// submission, the returned error is a *NotRecordedError carrying the
// transaction hash.
func (s *PurchaseService) Purchase(ctx context.Context, buyerUserID, serviceID string, quantity int) (PurchaseResult, error) {
	if quantity <= 0 {
		return PurchaseResult{}, ErrInvalidQuantity
	}

	var (
		result    PurchaseResult
		submitted bool
	)
	err := s.txRunner.WithTxOnce(ctx, func(tx *sqlx.Tx) error {
		service, err := s.services.GetByIDTx(ctx, tx, serviceID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrServiceNotFound
		}
		if err != nil {
			return err
		}
		if !service.IsActive {
			return ErrServiceInactive
		}

		buyerWallet, err := s.wallets.GetByUserTx(ctx, tx, buyerUserID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBuyerWalletMissing
		}
		if err != nil {
			return err
		}
		if service.OwnerUserID == buyerUserID {
			return ErrSelfPurchase
		}
		sellerWallet, err := s.wallets.GetByUserTx(ctx, tx, service.OwnerUserID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSellerWalletMissing
		}
		if err != nil {
			return err
		}

		totalPrice, err := money.Total(service.Price, quantity)
		if err != nil {
			return err
		}
		secret, err := s.vault.Decrypt(buyerWallet.EncryptedSecretKey)
		if err != nil {
			return err
		}
		envelope, err := s.builder.Build(ctx, buyerWallet.PublicKey, txbuilder.Payment{
			Destination: sellerWallet.PublicKey,
			Asset:       s.platformAsset,
			Amount:      totalPrice,
		}, secret)
		if err != nil {
			return err
		}

		// The point of no return: past here the ledger may have moved
		// funds, and the remaining local writes must succeed.
		submission, err := s.client.Submit(ctx, envelope)
		if err != nil {
			return err
		}
		submitted = true

		result = PurchaseResult{
			PurchaseID:      uuid.NewString(),
			TransactionHash: submission.Hash,
			TotalPrice:      totalPrice,
			Currency:        s.platformAsset.Code,
		}
		if err := s.purchases.Insert(ctx, tx, store.PurchaseInput{
			ID:              result.PurchaseID,
			ServiceID:       serviceID,
			BuyerUserID:     buyerUserID,
			Quantity:        quantity,
			TotalPrice:      totalPrice,
			CurrencyCode:    s.platformAsset.Code,
			TransactionHash: submission.Hash,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"transaction_hash": submission.Hash,
			"total_price":      totalPrice,
		})
		return s.audit.Log(ctx, tx, buyerUserID, "purchase", "purchase", result.PurchaseID, string(data))
	})
	if err != nil {
		if submitted {
			return result, &NotRecordedError{TransactionHash: result.TransactionHash, Err: err}
		}
		return PurchaseResult{}, err
	}

	s.hub.BroadcastActivity(buyerUserID, websocket.ActivityEvent{
		Type:            "purchase",
		AssetCode:       s.platformAsset.Code,
		Amount:          result.TotalPrice,
		TransactionHash: result.TransactionHash,
	})
	return result, nil
}
