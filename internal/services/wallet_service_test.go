package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stellar/go/txnbuild"

	"felix/internal/asset"
	"felix/internal/ledger"
	"felix/internal/models"
	"felix/internal/money"
	"felix/internal/txbuilder"
)

const (
	testIssuer      = "GBPINNEDISSUERXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"
	testDestination = "GDESTINATIONXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"
)

func testResolver() asset.Resolver {
	return asset.NewResolver("BLUEDOLLAR", testIssuer)
}

func fundedWallet() models.Wallet {
	return models.Wallet{
		ID:                 "wallet-1",
		UserID:             "user-1",
		PublicKey:          "GWALLET",
		EncryptedSecretKey: "ciphertext",
	}
}

func TestCreateWalletRejectsDuplicate(t *testing.T) {
	client := &stubLedgerClient{}
	service := NewWalletService(stubWalletStore{
		existsFn: func(ctx context.Context, userID string) (bool, error) {
			return true, nil
		},
	}, &stubVault{}, &stubBuilder{}, client, testResolver(), &recordingHub{})

	_, err := service.CreateWallet(context.Background(), "user-1")
	if err != ErrWalletExists {
		t.Fatalf("expected ErrWalletExists, got %v", err)
	}
	if client.funds != 0 {
		t.Fatal("no funding request may happen for a duplicate wallet")
	}
}

func TestCreateWalletFundingFailurePersistsNothing(t *testing.T) {
	created := 0
	client := &stubLedgerClient{
		fundFn: func(ctx context.Context, address string) error {
			return errors.New("friendbot down")
		},
	}
	service := NewWalletService(stubWalletStore{
		createFn: func(ctx context.Context, id, userID, publicKey, encryptedSecretKey string) error {
			created++
			return nil
		},
	}, &stubVault{}, &stubBuilder{}, client, testResolver(), &recordingHub{})

	_, err := service.CreateWallet(context.Background(), "user-1")
	if !errors.Is(err, ErrFundingFailed) {
		t.Fatalf("expected ErrFundingFailed, got %v", err)
	}
	if created != 0 {
		t.Fatal("a wallet must not be persisted when funding fails")
	}
}

func TestCreateWalletStoresEncryptedSecret(t *testing.T) {
	var storedSecret, storedPublic string
	vault := &stubVault{}
	service := NewWalletService(stubWalletStore{
		createFn: func(ctx context.Context, id, userID, publicKey, encryptedSecretKey string) error {
			storedPublic = publicKey
			storedSecret = encryptedSecretKey
			return nil
		},
	}, vault, &stubBuilder{}, &stubLedgerClient{}, testResolver(), &recordingHub{})

	wallet, err := service.CreateWallet(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.PublicKey == "" || wallet.PublicKey != storedPublic {
		t.Fatalf("unexpected public key: %q", wallet.PublicKey)
	}
	if !strings.HasPrefix(storedSecret, "encrypted:S") {
		t.Fatalf("stored secret must be the encrypted seed, got %q", storedSecret)
	}
	if wallet.EncryptedSecretKey != "" {
		t.Fatal("the returned wallet must not expose the stored secret")
	}
}

func TestWalletMapsMissingRow(t *testing.T) {
	service := NewWalletService(stubWalletStore{
		getByUserFn: func(ctx context.Context, userID string) (models.Wallet, error) {
			return models.Wallet{}, sql.ErrNoRows
		},
	}, &stubVault{}, &stubBuilder{}, &stubLedgerClient{}, testResolver(), &recordingHub{})

	if _, err := service.Wallet(context.Background(), "user-1"); err != ErrWalletNotFound {
		t.Fatalf("expected ErrWalletNotFound, got %v", err)
	}
}

func TestSendAssetValidatesBeforeDecrypt(t *testing.T) {
	vault := &stubVault{}
	builder := &stubBuilder{}
	client := &stubLedgerClient{}
	service := NewWalletService(stubWalletStore{
		getByUserFn: func(ctx context.Context, userID string) (models.Wallet, error) {
			return fundedWallet(), nil
		},
	}, vault, builder, client, testResolver(), &recordingHub{})

	cases := []struct {
		name string
		req  SendAssetRequest
		err  error
	}{
		{"bad amount", SendAssetRequest{UserID: "user-1", Destination: testDestination, AssetCode: "XLM", Amount: "zero"}, money.ErrInvalidAmount},
		{"bad address", SendAssetRequest{UserID: "user-1", Destination: "nope", AssetCode: "XLM", Amount: "1"}, ErrInvalidAddress},
		{"long memo", SendAssetRequest{UserID: "user-1", Destination: testDestination, AssetCode: "XLM", Amount: "1", Memo: strings.Repeat("x", 29)}, ErrMemoTooLong},
		{"missing issuer", SendAssetRequest{UserID: "user-1", Destination: testDestination, AssetCode: "USDC", Amount: "1"}, asset.ErrIssuerRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.SendAsset(context.Background(), tc.req); err != tc.err {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
	if vault.decrypts != 0 {
		t.Fatalf("secret decrypted %d times during failed validation", vault.decrypts)
	}
	if builder.builds != 0 || client.submits != 0 {
		t.Fatal("no envelope may be built for invalid input")
	}
}

func TestSendAssetSubmitsAndBroadcasts(t *testing.T) {
	hub := &recordingHub{}
	builder := &stubBuilder{}
	client := &stubLedgerClient{}
	service := NewWalletService(stubWalletStore{
		getByUserFn: func(ctx context.Context, userID string) (models.Wallet, error) {
			return fundedWallet(), nil
		},
	}, &stubVault{}, builder, client, testResolver(), hub)

	hash, err := service.SendAsset(context.Background(), SendAssetRequest{
		UserID:      "user-1",
		Destination: testDestination,
		AssetCode:   "BLUEDOLLAR",
		Amount:      "10",
		Memo:        "invoice 7",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash != "hash-1" {
		t.Fatalf("unexpected hash: %q", hash)
	}
	payment, ok := builder.lastIn.(txbuilder.Payment)
	if !ok {
		t.Fatalf("unexpected intent %T", builder.lastIn)
	}
	if payment.Amount != "10.0000000" || payment.Asset.Issuer != testIssuer {
		t.Fatalf("unexpected intent: %+v", payment)
	}
	if len(hub.events) != 1 || hub.events[0].Type != "payment_sent" {
		t.Fatalf("unexpected events: %#v", hub.events)
	}
}

func TestSendAssetRejectionDoesNotBroadcast(t *testing.T) {
	hub := &recordingHub{}
	rejection := &ledger.RejectionError{TransactionCode: "tx_failed", OperationCodes: []string{"op_no_trust"}}
	client := &stubLedgerClient{
		submitFn: func(ctx context.Context, tx *txnbuild.Transaction) (ledger.SubmitResult, error) {
			return ledger.SubmitResult{}, rejection
		},
	}
	service := NewWalletService(stubWalletStore{
		getByUserFn: func(ctx context.Context, userID string) (models.Wallet, error) {
			return fundedWallet(), nil
		},
	}, &stubVault{}, &stubBuilder{}, client, testResolver(), hub)

	_, err := service.SendAsset(context.Background(), SendAssetRequest{
		UserID:      "user-1",
		Destination: testDestination,
		AssetCode:   "XLM",
		Amount:      "1",
	})
	var rej *ledger.RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
	if len(hub.events) != 0 {
		t.Fatalf("no event may be broadcast for a rejected payment: %#v", hub.events)
	}
}

func TestEstablishTrustlineRejectsNative(t *testing.T) {
	vault := &stubVault{}
	service := NewWalletService(stubWalletStore{
		getByUserFn: func(ctx context.Context, userID string) (models.Wallet, error) {
			return fundedWallet(), nil
		},
	}, vault, &stubBuilder{}, &stubLedgerClient{}, testResolver(), &recordingHub{})

	if _, err := service.EstablishTrustline(context.Background(), "user-1", "XLM", ""); err != ErrNativeTrustline {
		t.Fatalf("expected ErrNativeTrustline, got %v", err)
	}
	if vault.decrypts != 0 {
		t.Fatal("secret must not be decrypted for an invalid trustline")
	}
}

func TestEstablishTrustlineUsesMaxLimit(t *testing.T) {
	builder := &stubBuilder{}
	service := NewWalletService(stubWalletStore{
		getByUserFn: func(ctx context.Context, userID string) (models.Wallet, error) {
			return fundedWallet(), nil
		},
	}, &stubVault{}, builder, &stubLedgerClient{}, testResolver(), &recordingHub{})

	hash, err := service.EstablishTrustline(context.Background(), "user-1", "BLUEDOLLAR", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash != "hash-1" {
		t.Fatalf("unexpected hash: %q", hash)
	}
	trust, ok := builder.lastIn.(txbuilder.TrustlineChange)
	if !ok {
		t.Fatalf("unexpected intent %T", builder.lastIn)
	}
	if trust.Limit != txbuilder.MaxTrustlineLimit || trust.Asset.Issuer != testIssuer {
		t.Fatalf("unexpected intent: %+v", trust)
	}
}

func TestTransactionsProjectDirections(t *testing.T) {
	own := "GWALLET"
	service := NewWalletService(stubWalletStore{
		getByUserFn: func(ctx context.Context, userID string) (models.Wallet, error) {
			return fundedWallet(), nil
		},
	}, &stubVault{}, &stubBuilder{}, &stubLedgerClient{
		paymentsFn: func(ctx context.Context, address string, limit int, order string) ([]ledger.PaymentRecord, error) {
			if limit != 20 {
				t.Fatalf("expected default limit 20, got %d", limit)
			}
			if order != ledger.OrderDesc {
				t.Fatalf("expected descending order, got %q", order)
			}
			return []ledger.PaymentRecord{
				{ID: "1", Type: "payment", From: own, To: "GOTHER", Amount: "5.0000000"},
				{ID: "2", Type: "payment", From: "GOTHER", To: own, Amount: "2.0000000"},
				{ID: "3", Type: "create_account", To: own, Funder: "GFRIEND"},
				{ID: "4", Type: "change_trust", Trustor: own},
			}, nil
		},
	}, testResolver(), &recordingHub{})

	address, entries, err := service.Transactions(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address != own {
		t.Fatalf("unexpected address: %q", address)
	}
	if len(entries) != 4 {
		t.Fatalf("unexpected entries: %#v", entries)
	}
	if entries[0].Direction != DirectionSent || entries[0].Counterparty != "GOTHER" {
		t.Fatalf("unexpected sent entry: %+v", entries[0])
	}
	if entries[1].Direction != DirectionReceived || entries[1].TypeDescription != "Received" {
		t.Fatalf("unexpected received entry: %+v", entries[1])
	}
	if entries[2].Direction != DirectionReceived || entries[2].Counterparty != "GFRIEND" {
		t.Fatalf("unexpected creation entry: %+v", entries[2])
	}
	if entries[3].TypeDescription != "Trustline Change" {
		t.Fatalf("unexpected trust entry: %+v", entries[3])
	}
}
