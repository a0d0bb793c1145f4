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

var ErrIssuerNotConfigured = errors.New("platform asset issuer is not configured")

// IssuerService pays out the platform asset from the pinned issuer
// account. The issuer is not a custodial wallet; its secret comes from
// configuration, not the vault.
type IssuerService struct {
	builder       EnvelopeBuilder
	client        ledger.Client
	platformAsset asset.Asset
	issuerAddress string
	issuerSecret  string
}

func NewIssuerService(builder EnvelopeBuilder, client ledger.Client, platformAsset asset.Asset, issuerAddress, issuerSecret string) *IssuerService {
	return &IssuerService{
		builder:       builder,
		client:        client,
		platformAsset: platformAsset,
		issuerAddress: issuerAddress,
		issuerSecret:  issuerSecret,
	}
}

// Issue sends amount of the platform asset to a recipient. The recipient
// must already hold a trustline; otherwise the network rejects the
// payment (op_no_trust).
func (s *IssuerService) Issue(ctx context.Context, recipient, amount string) (string, error) {
	if s.issuerAddress == "" || s.issuerSecret == "" {
		return "", ErrIssuerNotConfigured
	}
	parsed, err := money.ParseAmount(amount)
	if err != nil {
		return "", err
	}
	if err := validator.ValidateAddress(recipient); err != nil {
		return "", ErrInvalidAddress
	}
	envelope, err := s.builder.Build(ctx, s.issuerAddress, txbuilder.Payment{
		Destination: recipient,
		Asset:       s.platformAsset,
		Amount:      parsed,
	}, s.issuerSecret)
	if err != nil {
		return "", err
	}
	result, err := s.client.Submit(ctx, envelope)
	if err != nil {
		return "", err
	}
	return result.Hash, nil
}
