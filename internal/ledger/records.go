package ledger

import (
	"time"

	"felix/internal/asset"
)

// Account is the ledger-side view of an address: its current sequence
// number and live balances. Balances are never stored locally.
type Account struct {
	Address  string
	Sequence int64
	Balances []Balance
}

type Balance struct {
	AssetCode   string `json:"asset_code"`
	AssetIssuer string `json:"asset_issuer,omitempty"`
	Amount      string `json:"balance"`
}

// SubmitResult reports an accepted submission. Rejections surface as
// *RejectionError instead.
type SubmitResult struct {
	Hash   string
	Ledger int32
}

// PaymentRecord is one entry of an account's payment history. Type is the
// raw operation type (payment, create_account, change_trust, ...); only
// the fields relevant to that type are set.
type PaymentRecord struct {
	ID              string
	Type            string
	SourceAccount   string
	From            string
	To              string
	Amount          string
	AssetCode       string
	AssetIssuer     string
	Funder          string
	Trustor         string
	CreatedAt       time.Time
	TransactionHash string
}

type OfferRecord struct {
	ID                 int64
	Seller             string
	Selling            asset.Asset
	Buying             asset.Asset
	Amount             string
	Price              string
	LastModifiedLedger int32
	LastModifiedTime   time.Time
}

type PriceLevel struct {
	Price  string `json:"price"`
	Amount string `json:"amount"`
}

// OrderBook is a single-page, point-in-time snapshot.
type OrderBook struct {
	Selling asset.Asset  `json:"selling"`
	Buying  asset.Asset  `json:"buying"`
	Bids    []PriceLevel `json:"bids"`
	Asks    []PriceLevel `json:"asks"`
}
