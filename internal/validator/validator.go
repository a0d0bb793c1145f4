package validator

import (
	"errors"
	"regexp"
)

// MaxMemoLength is the network's bound on text memos.
const MaxMemoLength = 28

var (
	ErrInvalidAddress   = errors.New("invalid account address")
	ErrInvalidAssetCode = errors.New("invalid asset code")
	ErrMemoTooLong      = errors.New("memo too long")
)

var (
	// Stellar account addresses are 56-character strkeys starting with G.
	addressRegex   = regexp.MustCompile(`^G[A-Z2-7]{55}$`)
	assetCodeRegex = regexp.MustCompile(`^[a-zA-Z0-9]{1,12}$`)
)

func ValidateAddress(address string) error {
	if !addressRegex.MatchString(address) {
		return ErrInvalidAddress
	}
	return nil
}

func ValidateAssetCode(code string) error {
	if !assetCodeRegex.MatchString(code) {
		return ErrInvalidAssetCode
	}
	return nil
}

func ValidateMemo(memo string) error {
	if len(memo) > MaxMemoLength {
		return ErrMemoTooLong
	}
	return nil
}
