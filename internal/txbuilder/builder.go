package txbuilder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/price"
	"github.com/stellar/go/txnbuild"

	"felix/internal/asset"
	"felix/internal/ledger"
)

// MaxTrustlineLimit is the effectively-unbounded trustline limit, the
// largest amount the ledger's fixed-point representation can hold.
const MaxTrustlineLimit = "922337203685.4775807"

// cancelPrice is whatever positive placeholder the cancel idiom needs;
// the network ignores it when the amount is zero.
const cancelPrice = "1"

var (
	ErrUnsupportedIntent = errors.New("txbuilder: unsupported intent")
	ErrInvalidSecret     = errors.New("txbuilder: invalid signer secret")
)

// Builder assembles a signed, time-bounded envelope for one intent. It
// loads the source account's current sequence number through the ledger
// client just before assembly.
type Builder struct {
	client     ledger.Client
	passphrase string
	timeout    int64
}

func New(client ledger.Client, networkPassphrase string, timeout time.Duration) *Builder {
	return &Builder{
		client:     client,
		passphrase: networkPassphrase,
		timeout:    int64(timeout / time.Second),
	}
}

// Build resolves the source account's sequence, translates the intent
// into exactly one ledger operation, assembles the envelope with the
// fixed validity window and signs it with the provided secret. The parsed
// key lives only for the duration of the call.
func (b *Builder) Build(ctx context.Context, source string, in Intent, signerSecret string) (*txnbuild.Transaction, error) {
	kp, err := keypair.ParseFull(signerSecret)
	if err != nil {
		return nil, ErrInvalidSecret
	}
	op, memo, err := translate(in)
	if err != nil {
		return nil, err
	}
	account, err := b.client.LoadAccount(ctx, source)
	if err != nil {
		return nil, err
	}
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &txnbuild.SimpleAccount{AccountID: source, Sequence: account.Sequence},
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              txnbuild.MinBaseFee,
		Memo:                 memo,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(b.timeout)},
	})
	if err != nil {
		return nil, fmt.Errorf("txbuilder: assemble envelope: %w", err)
	}
	signed, err := tx.Sign(b.passphrase, kp)
	if err != nil {
		return nil, fmt.Errorf("txbuilder: sign envelope: %w", err)
	}
	return signed, nil
}

func translate(in Intent) (txnbuild.Operation, txnbuild.Memo, error) {
	switch v := in.(type) {
	case AccountCreate:
		return &txnbuild.CreateAccount{
			Destination: v.Destination,
			Amount:      v.StartingBalance,
		}, nil, nil
	case Payment:
		var memo txnbuild.Memo
		if v.Memo != "" {
			memo = txnbuild.MemoText(v.Memo)
		}
		return &txnbuild.Payment{
			Destination: v.Destination,
			Amount:      v.Amount,
			Asset:       toTxnAsset(v.Asset),
		}, memo, nil
	case TrustlineChange:
		limit := v.Limit
		if limit == "" {
			limit = MaxTrustlineLimit
		}
		return &txnbuild.ChangeTrust{
			Line:  txnbuild.ChangeTrustAssetWrapper{Asset: txnbuild.CreditAsset{Code: v.Asset.Code, Issuer: v.Asset.Issuer}},
			Limit: limit,
		}, nil, nil
	case OfferUpsert:
		parsed, err := price.Parse(v.Price)
		if err != nil {
			return nil, nil, fmt.Errorf("txbuilder: parse price: %w", err)
		}
		return &txnbuild.ManageSellOffer{
			Selling: toTxnAsset(v.Selling),
			Buying:  toTxnAsset(v.Buying),
			Amount:  v.Amount,
			Price:   parsed,
			OfferID: v.OfferID,
		}, nil, nil
	case OfferCancel:
		parsed, err := price.Parse(cancelPrice)
		if err != nil {
			return nil, nil, fmt.Errorf("txbuilder: parse price: %w", err)
		}
		return &txnbuild.ManageSellOffer{
			Selling: toTxnAsset(v.Selling),
			Buying:  toTxnAsset(v.Buying),
			Amount:  "0",
			Price:   parsed,
			OfferID: v.OfferID,
		}, nil, nil
	default:
		return nil, nil, ErrUnsupportedIntent
	}
}

func toTxnAsset(a asset.Asset) txnbuild.Asset {
	if a.IsNative() {
		return txnbuild.NativeAsset{}
	}
	return txnbuild.CreditAsset{Code: a.Code, Issuer: a.Issuer}
}
