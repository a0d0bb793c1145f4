package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"felix/internal/asset"
	"felix/internal/db"
	"felix/internal/ledger"
	"felix/internal/models"
	"felix/internal/money"
	"felix/internal/txbuilder"
	"felix/internal/validator"
	"felix/internal/websocket"
)

var (
	ErrWalletExists     = errors.New("wallet already exists for this user")
	ErrWalletNotFound   = errors.New("wallet not found")
	ErrFundingFailed    = errors.New("failed to fund new account")
	ErrMemoTooLong      = errors.New("memo must be at most 28 characters")
	ErrNativeTrustline  = errors.New("cannot establish a trustline to the native asset")
	ErrInvalidAddress   = errors.New("invalid account address")
	ErrInvalidAssetCode = errors.New("invalid asset code")
)

const historyDefaultLimit = 20

type WalletStore interface {
	Create(ctx context.Context, id, userID, publicKey, encryptedSecretKey string) error
	GetByUser(ctx context.Context, userID string) (models.Wallet, error)
	Exists(ctx context.Context, userID string) (bool, error)
}

type Vault interface {
	Encrypt(secret string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type EnvelopeBuilder interface {
	Build(ctx context.Context, source string, in txbuilder.Intent, signerSecret string) (*txnbuild.Transaction, error)
}

type ActivityHub interface {
	BroadcastActivity(userID string, event websocket.ActivityEvent)
}

// WalletService owns the custodial account lifecycle: creation and
// funding, live balance projection, payments and trustlines.
type WalletService struct {
	wallets  WalletStore
	vault    Vault
	builder  EnvelopeBuilder
	client   ledger.Client
	resolver asset.Resolver
	hub      ActivityHub
}

func NewWalletService(wallets WalletStore, vault Vault, builder EnvelopeBuilder, client ledger.Client, resolver asset.Resolver, hub ActivityHub) *WalletService {
	return &WalletService{
		wallets:  wallets,
		vault:    vault,
		builder:  builder,
		client:   client,
		resolver: resolver,
		hub:      hub,
	}
}

// CreateWallet generates a key pair, funds the address and persists the
// wallet with its secret encrypted. Funding happens before persistence so
// that a stored wallet is always one known to be funded; if funding fails
// nothing is written.
func (s *WalletService) CreateWallet(ctx context.Context, userID string) (models.Wallet, error) {
	exists, err := s.wallets.Exists(ctx, userID)
	if err != nil {
		return models.Wallet{}, err
	}
	if exists {
		return models.Wallet{}, ErrWalletExists
	}

	pair, err := keypair.Random()
	if err != nil {
		return models.Wallet{}, err
	}
	if err := s.client.FundAccount(ctx, pair.Address()); err != nil {
		return models.Wallet{}, fmt.Errorf("%w: %v", ErrFundingFailed, err)
	}
	encrypted, err := s.vault.Encrypt(pair.Seed())
	if err != nil {
		return models.Wallet{}, err
	}

	wallet := models.Wallet{
		ID:        uuid.NewString(),
		UserID:    userID,
		PublicKey: pair.Address(),
	}
	if err := s.wallets.Create(ctx, wallet.ID, userID, wallet.PublicKey, encrypted); err != nil {
		if db.IsUniqueViolation(err) {
			// Lost a race with a concurrent create; the other wallet won.
			return models.Wallet{}, ErrWalletExists
		}
		// The address is funded but unrecorded; log enough to recover it.
		log.Printf("wallet create: funded account %s for user %s but persist failed: %v", wallet.PublicKey, userID, err)
		return models.Wallet{}, err
	}
	return wallet, nil
}

func (s *WalletService) Wallet(ctx context.Context, userID string) (models.Wallet, error) {
	wallet, err := s.wallets.GetByUser(ctx, userID)
	if err != nil {
		return models.Wallet{}, walletErr(err)
	}
	return wallet, nil
}

func walletErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrWalletNotFound
	}
	return err
}

// Balances projects the account's live ledger balances. ErrWalletNotFound
// means no local record; ledger.ErrAccountNotFound means the record
// exists but the network has never seen the address.
func (s *WalletService) Balances(ctx context.Context, userID string) (string, []ledger.Balance, error) {
	wallet, err := s.Wallet(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	account, err := s.client.LoadAccount(ctx, wallet.PublicKey)
	if err != nil {
		return wallet.PublicKey, nil, err
	}
	return wallet.PublicKey, account.Balances, nil
}

type SendAssetRequest struct {
	UserID      string
	Destination string
	AssetCode   string
	AssetIssuer string
	Amount      string
	Memo        string
}

// SendAsset validates every input before the wallet secret is ever
// decrypted, then builds, signs and submits a payment.
func (s *WalletService) SendAsset(ctx context.Context, req SendAssetRequest) (string, error) {
	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		return "", err
	}
	if err := validator.ValidateAddress(req.Destination); err != nil {
		return "", ErrInvalidAddress
	}
	if len(req.Memo) > validator.MaxMemoLength {
		return "", ErrMemoTooLong
	}
	sendAsset, err := s.resolver.Resolve(req.AssetCode, req.AssetIssuer)
	if err != nil {
		return "", err
	}

	wallet, err := s.Wallet(ctx, req.UserID)
	if err != nil {
		return "", err
	}
	secret, err := s.vault.Decrypt(wallet.EncryptedSecretKey)
	if err != nil {
		return "", err
	}
	envelope, err := s.builder.Build(ctx, wallet.PublicKey, txbuilder.Payment{
		Destination: req.Destination,
		Asset:       sendAsset,
		Amount:      amount,
		Memo:        req.Memo,
	}, secret)
	if err != nil {
		return "", err
	}
	result, err := s.client.Submit(ctx, envelope)
	if err != nil {
		return "", err
	}
	s.hub.BroadcastActivity(req.UserID, websocket.ActivityEvent{
		Type:            "payment_sent",
		AssetCode:       sendAsset.Code,
		Amount:          amount,
		Counterparty:    req.Destination,
		TransactionHash: result.Hash,
	})
	return result.Hash, nil
}

// EstablishTrustline opts the user's account into holding an issued
// asset, with an effectively-unbounded limit.
func (s *WalletService) EstablishTrustline(ctx context.Context, userID, assetCode, assetIssuer string) (string, error) {
	line, err := s.resolver.Resolve(assetCode, assetIssuer)
	if err != nil {
		return "", err
	}
	if line.IsNative() {
		return "", ErrNativeTrustline
	}
	wallet, err := s.Wallet(ctx, userID)
	if err != nil {
		return "", err
	}
	secret, err := s.vault.Decrypt(wallet.EncryptedSecretKey)
	if err != nil {
		return "", err
	}
	envelope, err := s.builder.Build(ctx, wallet.PublicKey, txbuilder.TrustlineChange{
		Asset: line,
		Limit: txbuilder.MaxTrustlineLimit,
	}, secret)
	if err != nil {
		return "", err
	}
	result, err := s.client.Submit(ctx, envelope)
	if err != nil {
		return "", err
	}
	return result.Hash, nil
}

const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
	DirectionOther    = "other"
)

type TransactionEntry struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	TypeDescription string `json:"type_description"`
	Direction       string `json:"direction"`
	From            string `json:"from,omitempty"`
	To              string `json:"to,omitempty"`
	Amount          string `json:"amount,omitempty"`
	AssetCode       string `json:"asset_code,omitempty"`
	AssetIssuer     string `json:"asset_issuer,omitempty"`
	Counterparty    string `json:"counterparty,omitempty"`
	Date            string `json:"date"`
	TransactionHash string `json:"transaction_hash"`
}

// Transactions projects the account's recent payment history into a
// normalized shape with a direction derived from the wallet's own
// address.
func (s *WalletService) Transactions(ctx context.Context, userID string, limit int) (string, []TransactionEntry, error) {
	wallet, err := s.Wallet(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if limit <= 0 {
		limit = historyDefaultLimit
	}
	records, err := s.client.Payments(ctx, wallet.PublicKey, limit, ledger.OrderDesc)
	if err != nil {
		return wallet.PublicKey, nil, err
	}
	entries := make([]TransactionEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, projectRecord(record, wallet.PublicKey))
	}
	return wallet.PublicKey, entries, nil
}

func projectRecord(record ledger.PaymentRecord, own string) TransactionEntry {
	entry := TransactionEntry{
		ID:              record.ID,
		Type:            record.Type,
		Direction:       DirectionOther,
		From:            record.From,
		To:              record.To,
		Amount:          record.Amount,
		AssetCode:       record.AssetCode,
		AssetIssuer:     record.AssetIssuer,
		Date:            record.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		TransactionHash: record.TransactionHash,
	}
	switch record.Type {
	case "create_account":
		entry.TypeDescription = "Account Creation"
		entry.Counterparty = record.Funder
		if entry.Counterparty == "" {
			entry.Counterparty = record.SourceAccount
		}
		if record.To == own {
			entry.Direction = DirectionReceived
		}
	case "payment":
		switch {
		case record.From == own:
			entry.TypeDescription = "Sent"
			entry.Direction = DirectionSent
			entry.Counterparty = record.To
		case record.To == own:
			entry.TypeDescription = "Received"
			entry.Direction = DirectionReceived
			entry.Counterparty = record.From
		default:
			entry.TypeDescription = "Other Payment"
		}
	case "change_trust":
		entry.TypeDescription = "Trustline Change"
		entry.Counterparty = record.Trustor
	default:
		entry.TypeDescription = record.Type
		entry.Counterparty = record.SourceAccount
	}
	return entry
}
