package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"felix/internal/asset"
	"felix/internal/config"
	"felix/internal/db"
	"felix/internal/handlers"
	"felix/internal/keyvault"
	"felix/internal/ledger"
	"felix/internal/services"
	"felix/internal/store"
	"felix/internal/txbuilder"
	"felix/internal/websocket"

	"github.com/stellar/go/network"
)

func main() {
	cfg := config.Load()
	if cfg.EncryptionSecret == "" {
		log.Fatal("ENCRYPTION_SECRET must be set")
	}
	if cfg.IssuerPublicKey == "" {
		log.Fatal("BLUEDOLLAR_ISSUER_PUBLIC_KEY must be set")
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	vault, err := keyvault.New(cfg.EncryptionSecret)
	if err != nil {
		log.Fatalf("failed to initialize key vault: %v", err)
	}

	passphrase := network.TestNetworkPassphrase
	if cfg.IsPublicNetwork() {
		passphrase = network.PublicNetworkPassphrase
	}
	client := ledger.NewHorizon(cfg.HorizonURL, cfg.IsPublicNetwork())
	builder := txbuilder.New(client, passphrase, cfg.SubmitTimeout)
	resolver := asset.NewResolver(cfg.PlatformAssetCode, cfg.IssuerPublicKey)

	users := store.NewUserStore(database)
	wallets := store.NewWalletStore(database)
	catalog := store.NewServiceStore(database)
	purchases := store.NewPurchaseStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	walletService := services.NewWalletService(wallets, vault, builder, client, resolver, hub)
	exchangeService := services.NewExchangeService(wallets, vault, builder, client, resolver)
	purchaseService := services.NewPurchaseService(txRunner, catalog, wallets, purchases, audit, vault, builder, client, resolver.PlatformAsset(), hub)
	issuerService := services.NewIssuerService(builder, client, resolver.PlatformAsset(), cfg.IssuerPublicKey, cfg.IssuerSecretKey)

	handler := handlers.New(txRunner, cfg, users, catalog, purchases, audit, walletService, exchangeService, purchaseService, issuerService, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("wallet API listening on %s (network=%s)", server.Addr, cfg.StellarNetwork)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
