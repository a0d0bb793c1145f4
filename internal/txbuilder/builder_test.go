package txbuilder

import (
	"context"
	"testing"
	"time"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"

	"felix/internal/asset"
	"felix/internal/ledger"
)

type stubClient struct {
	account   ledger.Account
	loadErr   error
	loadCalls int
}

func (s *stubClient) LoadAccount(ctx context.Context, address string) (ledger.Account, error) {
	s.loadCalls++
	if s.loadErr != nil {
		return ledger.Account{}, s.loadErr
	}
	account := s.account
	account.Address = address
	return account, nil
}

func (s *stubClient) Submit(ctx context.Context, tx *txnbuild.Transaction) (ledger.SubmitResult, error) {
	return ledger.SubmitResult{}, nil
}

func (s *stubClient) Payments(ctx context.Context, address string, limit int, order string) ([]ledger.PaymentRecord, error) {
	return nil, nil
}

func (s *stubClient) Offers(ctx context.Context, address string, limit int) ([]ledger.OfferRecord, error) {
	return nil, nil
}

func (s *stubClient) OrderBook(ctx context.Context, selling, buying asset.Asset) (ledger.OrderBook, error) {
	return ledger.OrderBook{}, nil
}

func (s *stubClient) FundAccount(ctx context.Context, address string) error {
	return nil
}

var testAsset = asset.Asset{Code: "BLUEDOLLAR", Issuer: "GBMAFUH7RBDC2PL5PT4TIULFE6QZ4WCL6W7V2QR5DUCMGDCLGTYJSQTK"}

func newTestBuilder(client ledger.Client) *Builder {
	return New(client, network.TestNetworkPassphrase, 30*time.Second)
}

func TestBuildPayment(t *testing.T) {
	kp := keypair.MustRandom()
	dest := keypair.MustRandom().Address()
	client := &stubClient{account: ledger.Account{Sequence: 41}}
	builder := newTestBuilder(client)

	tx, err := builder.Build(context.Background(), kp.Address(), Payment{
		Destination: dest,
		Asset:       testAsset,
		Amount:      "12.5000000",
		Memo:        "thanks",
	}, kp.Seed())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ops := tx.Operations()
	if len(ops) != 1 {
		t.Fatalf("expected one operation, got %d", len(ops))
	}
	payment, ok := ops[0].(*txnbuild.Payment)
	if !ok {
		t.Fatalf("unexpected operation type %T", ops[0])
	}
	if payment.Destination != dest || payment.Amount != "12.5000000" {
		t.Fatalf("unexpected payment: %+v", payment)
	}
	if _, ok := payment.Asset.(txnbuild.CreditAsset); !ok {
		t.Fatalf("unexpected asset type %T", payment.Asset)
	}
	if memo, ok := tx.Memo().(txnbuild.MemoText); !ok || string(memo) != "thanks" {
		t.Fatalf("unexpected memo: %#v", tx.Memo())
	}
	if len(tx.Signatures()) != 1 {
		t.Fatalf("expected one signature, got %d", len(tx.Signatures()))
	}
	if client.loadCalls != 1 {
		t.Fatalf("expected one account load, got %d", client.loadCalls)
	}
}

func TestBuildNativePayment(t *testing.T) {
	kp := keypair.MustRandom()
	builder := newTestBuilder(&stubClient{})
	tx, err := builder.Build(context.Background(), kp.Address(), Payment{
		Destination: keypair.MustRandom().Address(),
		Asset:       asset.Native(),
		Amount:      "1.0000000",
	}, kp.Seed())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payment := tx.Operations()[0].(*txnbuild.Payment)
	if _, ok := payment.Asset.(txnbuild.NativeAsset); !ok {
		t.Fatalf("unexpected asset type %T", payment.Asset)
	}
	if tx.Memo() != nil {
		t.Fatalf("expected no memo, got %#v", tx.Memo())
	}
}

func TestBuildTrustlineDefaultsToMaxLimit(t *testing.T) {
	kp := keypair.MustRandom()
	builder := newTestBuilder(&stubClient{})
	tx, err := builder.Build(context.Background(), kp.Address(), TrustlineChange{Asset: testAsset}, kp.Seed())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trust, ok := tx.Operations()[0].(*txnbuild.ChangeTrust)
	if !ok {
		t.Fatalf("unexpected operation type %T", tx.Operations()[0])
	}
	if trust.Limit != MaxTrustlineLimit {
		t.Fatalf("unexpected limit: %q", trust.Limit)
	}
}

func TestBuildAccountCreate(t *testing.T) {
	kp := keypair.MustRandom()
	dest := keypair.MustRandom().Address()
	builder := newTestBuilder(&stubClient{})
	tx, err := builder.Build(context.Background(), kp.Address(), AccountCreate{
		Destination:     dest,
		StartingBalance: "2.0000000",
	}, kp.Seed())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	create, ok := tx.Operations()[0].(*txnbuild.CreateAccount)
	if !ok {
		t.Fatalf("unexpected operation type %T", tx.Operations()[0])
	}
	if create.Destination != dest || create.Amount != "2.0000000" {
		t.Fatalf("unexpected operation: %+v", create)
	}
}

func TestBuildOfferUpsert(t *testing.T) {
	kp := keypair.MustRandom()
	builder := newTestBuilder(&stubClient{})
	tx, err := builder.Build(context.Background(), kp.Address(), OfferUpsert{
		Selling: testAsset,
		Buying:  asset.Native(),
		Amount:  "100.0000000",
		Price:   "0.5",
	}, kp.Seed())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	offer, ok := tx.Operations()[0].(*txnbuild.ManageSellOffer)
	if !ok {
		t.Fatalf("unexpected operation type %T", tx.Operations()[0])
	}
	if offer.Amount != "100.0000000" || offer.OfferID != 0 {
		t.Fatalf("unexpected offer: %+v", offer)
	}
}

func TestBuildOfferCancelUsesZeroAmount(t *testing.T) {
	kp := keypair.MustRandom()
	builder := newTestBuilder(&stubClient{})
	tx, err := builder.Build(context.Background(), kp.Address(), OfferCancel{
		OfferID: 99,
		Selling: testAsset,
		Buying:  asset.Native(),
	}, kp.Seed())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	offer := tx.Operations()[0].(*txnbuild.ManageSellOffer)
	if offer.Amount != "0" {
		t.Fatalf("cancel must carry a zero amount, got %q", offer.Amount)
	}
	if offer.OfferID != 99 {
		t.Fatalf("unexpected offer id: %d", offer.OfferID)
	}
}

func TestBuildRejectsInvalidSecret(t *testing.T) {
	client := &stubClient{}
	builder := newTestBuilder(client)
	_, err := builder.Build(context.Background(), keypair.MustRandom().Address(), Payment{
		Destination: keypair.MustRandom().Address(),
		Asset:       asset.Native(),
		Amount:      "1.0000000",
	}, "not-a-seed")
	if err != ErrInvalidSecret {
		t.Fatalf("expected ErrInvalidSecret, got %v", err)
	}
	if client.loadCalls != 0 {
		t.Fatal("account must not be loaded for an invalid secret")
	}
}

type fakeIntent struct{}

func (fakeIntent) intent() {}

func TestBuildUnsupportedIntent(t *testing.T) {
	kp := keypair.MustRandom()
	builder := newTestBuilder(&stubClient{})
	if _, err := builder.Build(context.Background(), kp.Address(), fakeIntent{}, kp.Seed()); err != ErrUnsupportedIntent {
		t.Fatalf("expected ErrUnsupportedIntent, got %v", err)
	}
}
