package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"felix/internal/config"
	"felix/internal/ledger"

	"github.com/stellar/go/keypair"
)

// Generates and funds the platform asset issuing account. Run once per
// environment; the printed keys go into BLUEDOLLAR_ISSUER_PUBLIC_KEY and
// BLUEDOLLAR_ISSUER_SECRET. Funding only works on the test network.
func main() {
	cfg := config.Load()
	if cfg.IsPublicNetwork() {
		log.Fatal("refusing to generate an issuer on the public network; create and fund it manually")
	}

	kp, err := keypair.Random()
	if err != nil {
		log.Fatalf("failed to generate keypair: %v", err)
	}

	client := ledger.NewHorizon(cfg.HorizonURL, false)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := client.FundAccount(ctx, kp.Address()); err != nil {
		log.Fatalf("failed to fund issuer account: %v", err)
	}

	fmt.Printf("BLUEDOLLAR_ISSUER_PUBLIC_KEY=%s\n", kp.Address())
	fmt.Printf("BLUEDOLLAR_ISSUER_SECRET=%s\n", kp.Seed())
}
