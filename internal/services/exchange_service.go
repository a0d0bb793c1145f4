package services

import (
	"context"
	"errors"

	"felix/internal/asset"
	"felix/internal/ledger"
	"felix/internal/money"
	"felix/internal/txbuilder"
	"felix/internal/validator"
)

var ErrInvalidOfferID = errors.New("invalid offer id")

const myOffersLimit = 100

// ExchangeService drives the DEX: sell-offer create and cancel plus the
// read-only offer and order-book projections.
type ExchangeService struct {
	wallets  WalletStore
	vault    Vault
	builder  EnvelopeBuilder
	client   ledger.Client
	resolver asset.Resolver
}

func NewExchangeService(wallets WalletStore, vault Vault, builder EnvelopeBuilder, client ledger.Client, resolver asset.Resolver) *ExchangeService {
	return &ExchangeService{
		wallets:  wallets,
		vault:    vault,
		builder:  builder,
		client:   client,
		resolver: resolver,
	}
}

type OfferRequest struct {
	UserID        string
	SellingCode   string
	SellingIssuer string
	BuyingCode    string
	BuyingIssuer  string
	Amount        string
	Price         string
}

type OfferResult struct {
	TransactionHash string `json:"transaction_hash"`
	Ledger          int32  `json:"ledger"`
}

// CreateOffer places a new sell offer (offer id zero means new).
func (s *ExchangeService) CreateOffer(ctx context.Context, req OfferRequest) (OfferResult, error) {
	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		return OfferResult{}, err
	}
	price, err := money.ParsePrice(req.Price)
	if err != nil {
		return OfferResult{}, err
	}
	selling, buying, err := s.resolvePair(req.SellingCode, req.SellingIssuer, req.BuyingCode, req.BuyingIssuer)
	if err != nil {
		return OfferResult{}, err
	}

	wallet, err := s.wallets.GetByUser(ctx, req.UserID)
	if err != nil {
		return OfferResult{}, walletErr(err)
	}
	secret, err := s.vault.Decrypt(wallet.EncryptedSecretKey)
	if err != nil {
		return OfferResult{}, err
	}
	envelope, err := s.builder.Build(ctx, wallet.PublicKey, txbuilder.OfferUpsert{
		Selling: selling,
		Buying:  buying,
		Amount:  amount,
		Price:   price,
		OfferID: 0,
	}, secret)
	if err != nil {
		return OfferResult{}, err
	}
	result, err := s.client.Submit(ctx, envelope)
	if err != nil {
		return OfferResult{}, err
	}
	return OfferResult{TransactionHash: result.Hash, Ledger: result.Ledger}, nil
}

type CancelOfferRequest struct {
	UserID        string
	OfferID       int64
	SellingCode   string
	SellingIssuer string
	BuyingCode    string
	BuyingIssuer  string
}

// CancelOffer cancels a live offer by id. The caller supplies the asset
// pair the offer was created with; no server-side lookup happens, so a
// wrong pair is rejected by the network as not-found.
func (s *ExchangeService) CancelOffer(ctx context.Context, req CancelOfferRequest) (OfferResult, error) {
	if req.OfferID <= 0 {
		return OfferResult{}, ErrInvalidOfferID
	}
	selling, buying, err := s.resolvePair(req.SellingCode, req.SellingIssuer, req.BuyingCode, req.BuyingIssuer)
	if err != nil {
		return OfferResult{}, err
	}
	wallet, err := s.wallets.GetByUser(ctx, req.UserID)
	if err != nil {
		return OfferResult{}, walletErr(err)
	}
	secret, err := s.vault.Decrypt(wallet.EncryptedSecretKey)
	if err != nil {
		return OfferResult{}, err
	}
	envelope, err := s.builder.Build(ctx, wallet.PublicKey, txbuilder.OfferCancel{
		OfferID: req.OfferID,
		Selling: selling,
		Buying:  buying,
	}, secret)
	if err != nil {
		return OfferResult{}, err
	}
	result, err := s.client.Submit(ctx, envelope)
	if err != nil {
		return OfferResult{}, err
	}
	return OfferResult{TransactionHash: result.Hash, Ledger: result.Ledger}, nil
}

func (s *ExchangeService) MyOffers(ctx context.Context, userID string) (string, []ledger.OfferRecord, error) {
	wallet, err := s.wallets.GetByUser(ctx, userID)
	if err != nil {
		return "", nil, walletErr(err)
	}
	offers, err := s.client.Offers(ctx, wallet.PublicKey, myOffersLimit)
	if err != nil {
		return wallet.PublicKey, nil, err
	}
	return wallet.PublicKey, offers, nil
}

func (s *ExchangeService) OrderBook(ctx context.Context, sellingCode, sellingIssuer, buyingCode, buyingIssuer string) (ledger.OrderBook, error) {
	selling, buying, err := s.resolvePair(sellingCode, sellingIssuer, buyingCode, buyingIssuer)
	if err != nil {
		return ledger.OrderBook{}, err
	}
	return s.client.OrderBook(ctx, selling, buying)
}

func (s *ExchangeService) resolvePair(sellingCode, sellingIssuer, buyingCode, buyingIssuer string) (asset.Asset, asset.Asset, error) {
	if err := validator.ValidateAssetCode(sellingCode); err != nil {
		return asset.Asset{}, asset.Asset{}, ErrInvalidAssetCode
	}
	if err := validator.ValidateAssetCode(buyingCode); err != nil {
		return asset.Asset{}, asset.Asset{}, ErrInvalidAssetCode
	}
	selling, err := s.resolver.Resolve(sellingCode, sellingIssuer)
	if err != nil {
		return asset.Asset{}, asset.Asset{}, err
	}
	buying, err := s.resolver.Resolve(buyingCode, buyingIssuer)
	if err != nil {
		return asset.Asset{}, asset.Asset{}, err
	}
	return selling, buying, nil
}
