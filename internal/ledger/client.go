package ledger

import (
	"context"
	"net/http"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/protocols/horizon/base"
	"github.com/stellar/go/protocols/horizon/operations"
	"github.com/stellar/go/txnbuild"

	"felix/internal/asset"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Client is the typed facade over the external ledger network. Submission
// is not idempotent: a resubmitted envelope is rejected with a sequence
// conflict, so callers must reload account state before retrying an
// ambiguous submit.
type Client interface {
	LoadAccount(ctx context.Context, address string) (Account, error)
	Submit(ctx context.Context, tx *txnbuild.Transaction) (SubmitResult, error)
	Payments(ctx context.Context, address string, limit int, order string) ([]PaymentRecord, error)
	Offers(ctx context.Context, address string, limit int) ([]OfferRecord, error)
	OrderBook(ctx context.Context, selling, buying asset.Asset) (OrderBook, error)
	FundAccount(ctx context.Context, address string) error
}

// Horizon implements Client against a Horizon instance. The underlying
// SDK client manages its own request deadlines, so the context parameters
// are accepted for interface symmetry only.
type Horizon struct {
	client  *horizonclient.Client
	funding bool
}

func NewHorizon(horizonURL string, public bool) *Horizon {
	client := horizonclient.DefaultTestNetClient
	if public {
		client = horizonclient.DefaultPublicNetClient
	}
	if horizonURL != "" {
		client = &horizonclient.Client{
			HorizonURL: horizonURL,
			HTTP:       http.DefaultClient,
		}
	}
	return &Horizon{client: client, funding: !public}
}

func (h *Horizon) LoadAccount(_ context.Context, address string) (Account, error) {
	detail, err := h.client.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		return Account{}, translateError("load account", err)
	}
	sequence, err := detail.GetSequenceNumber()
	if err != nil {
		return Account{}, &NetworkError{Op: "load account", Err: err}
	}
	account := Account{Address: address, Sequence: sequence}
	for _, b := range detail.Balances {
		entry := Balance{Amount: b.Balance}
		if b.Type == "native" {
			entry.AssetCode = asset.NativeCode
		} else {
			entry.AssetCode = b.Code
			entry.AssetIssuer = b.Issuer
		}
		account.Balances = append(account.Balances, entry)
	}
	return account, nil
}

func (h *Horizon) Submit(_ context.Context, tx *txnbuild.Transaction) (SubmitResult, error) {
	resp, err := h.client.SubmitTransaction(tx)
	if err != nil {
		return SubmitResult{}, translateError("submit", err)
	}
	return SubmitResult{Hash: resp.Hash, Ledger: resp.Ledger}, nil
}

func (h *Horizon) Payments(_ context.Context, address string, limit int, order string) ([]PaymentRecord, error) {
	req := horizonclient.OperationRequest{
		ForAccount: address,
		Limit:      uint(limit),
		Order:      horizonclient.OrderDesc,
	}
	if order == OrderAsc {
		req.Order = horizonclient.OrderAsc
	}
	page, err := h.client.Payments(req)
	if err != nil {
		return nil, translateError("list payments", err)
	}
	records := make([]PaymentRecord, 0, len(page.Embedded.Records))
	for _, op := range page.Embedded.Records {
		records = append(records, toPaymentRecord(op))
	}
	return records, nil
}

func toPaymentRecord(op operations.Operation) PaymentRecord {
	switch rec := op.(type) {
	case operations.Payment:
		out := PaymentRecord{
			ID:              rec.ID,
			Type:            rec.Base.Type,
			SourceAccount:   rec.SourceAccount,
			From:            rec.From,
			To:              rec.To,
			Amount:          rec.Amount,
			CreatedAt:       rec.LedgerCloseTime,
			TransactionHash: rec.TransactionHash,
		}
		if rec.Asset.Type == "native" {
			out.AssetCode = asset.NativeCode
		} else {
			out.AssetCode = rec.Code
			out.AssetIssuer = rec.Issuer
		}
		return out
	case operations.CreateAccount:
		return PaymentRecord{
			ID:              rec.ID,
			Type:            rec.Type,
			SourceAccount:   rec.SourceAccount,
			To:              rec.Account,
			Amount:          rec.StartingBalance,
			AssetCode:       asset.NativeCode,
			Funder:          rec.Funder,
			CreatedAt:       rec.LedgerCloseTime,
			TransactionHash: rec.TransactionHash,
		}
	case operations.ChangeTrust:
		return PaymentRecord{
			ID:              rec.ID,
			Type:            rec.Base.Type,
			SourceAccount:   rec.SourceAccount,
			AssetCode:       rec.Code,
			AssetIssuer:     rec.Issuer,
			Trustor:         rec.Trustor,
			CreatedAt:       rec.LedgerCloseTime,
			TransactionHash: rec.TransactionHash,
		}
	default:
		return PaymentRecord{
			ID:              op.GetID(),
			Type:            op.GetType(),
			TransactionHash: op.GetTransactionHash(),
		}
	}
}

func (h *Horizon) Offers(_ context.Context, address string, limit int) ([]OfferRecord, error) {
	page, err := h.client.Offers(horizonclient.OfferRequest{
		ForAccount: address,
		Limit:      uint(limit),
		Order:      horizonclient.OrderDesc,
	})
	if err != nil {
		return nil, translateError("list offers", err)
	}
	offers := make([]OfferRecord, 0, len(page.Embedded.Records))
	for _, rec := range page.Embedded.Records {
		var lastModified time.Time
		if rec.LastModifiedTime != nil {
			lastModified = *rec.LastModifiedTime
		}
		offers = append(offers, OfferRecord{
			ID:                 rec.ID,
			Seller:             rec.Seller,
			Selling:            fromBaseAsset(base.Asset(rec.Selling)),
			Buying:             fromBaseAsset(base.Asset(rec.Buying)),
			Amount:             rec.Amount,
			Price:              rec.Price,
			LastModifiedLedger: rec.LastModifiedLedger,
			LastModifiedTime:   lastModified,
		})
	}
	return offers, nil
}

func (h *Horizon) OrderBook(_ context.Context, selling, buying asset.Asset) (OrderBook, error) {
	req := horizonclient.OrderBookRequest{
		SellingAssetType:   assetType(selling),
		SellingAssetCode:   issuedCode(selling),
		SellingAssetIssuer: selling.Issuer,
		BuyingAssetType:    assetType(buying),
		BuyingAssetCode:    issuedCode(buying),
		BuyingAssetIssuer:  buying.Issuer,
	}
	summary, err := h.client.OrderBook(req)
	if err != nil {
		return OrderBook{}, translateError("order book", err)
	}
	book := OrderBook{Selling: selling, Buying: buying}
	for _, bid := range summary.Bids {
		book.Bids = append(book.Bids, PriceLevel{Price: bid.Price, Amount: bid.Amount})
	}
	for _, ask := range summary.Asks {
		book.Asks = append(book.Asks, PriceLevel{Price: ask.Price, Amount: ask.Amount})
	}
	return book, nil
}

// FundAccount asks friendbot to create and fund a new address. Only valid
// in test network mode.
func (h *Horizon) FundAccount(_ context.Context, address string) error {
	if !h.funding {
		return ErrFundingDisabled
	}
	if _, err := h.client.Fund(address); err != nil {
		return translateError("fund account", err)
	}
	return nil
}

func fromBaseAsset(a base.Asset) asset.Asset {
	if a.Type == "native" {
		return asset.Native()
	}
	return asset.Asset{Code: a.Code, Issuer: a.Issuer}
}

func assetType(a asset.Asset) horizonclient.AssetType {
	switch {
	case a.IsNative():
		return horizonclient.AssetTypeNative
	case len(a.Code) <= 4:
		return horizonclient.AssetType4
	default:
		return horizonclient.AssetType12
	}
}

func issuedCode(a asset.Asset) string {
	if a.IsNative() {
		return ""
	}
	return a.Code
}
