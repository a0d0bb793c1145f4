package txbuilder

import "felix/internal/asset"

// Intent is the closed set of transaction shapes this backend constructs.
// Values are in-memory only and consumed immediately by Build.
type Intent interface {
	intent()
}

// AccountCreate funds a brand-new address from the source account.
type AccountCreate struct {
	Destination     string
	StartingBalance string
}

// Payment moves an amount of an asset to a destination address. Memo is
// optional and limited to 28 characters by the network.
type Payment struct {
	Destination string
	Asset       asset.Asset
	Amount      string
	Memo        string
}

// TrustlineChange opts the source account into holding an issued asset.
type TrustlineChange struct {
	Asset asset.Asset
	Limit string
}

// OfferUpsert creates a sell offer (OfferID zero) or amends an existing
// one.
type OfferUpsert struct {
	Selling asset.Asset
	Buying  asset.Asset
	Amount  string
	Price   string
	OfferID int64
}

// OfferCancel removes an open offer. The network has no dedicated cancel
// operation: a ManageSellOffer with a zero amount and the target offer id
// is the documented idiom.
type OfferCancel struct {
	OfferID int64
	Selling asset.Asset
	Buying  asset.Asset
}

func (AccountCreate) intent()   {}
func (Payment) intent()         {}
func (TrustlineChange) intent() {}
func (OfferUpsert) intent()     {}
func (OfferCancel) intent()     {}
