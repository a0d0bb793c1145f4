package asset

import "errors"

// NativeCode is the symbolic code of the network's base currency.
const NativeCode = "XLM"

var ErrIssuerRequired = errors.New("asset: issuer is required for non-native asset")

// Asset identifies either the native asset or an issued asset keyed by
// (code, issuer). Two issued assets with the same code but different
// issuers are distinct.
type Asset struct {
	Code   string `json:"code"`
	Issuer string `json:"issuer,omitempty"`
}

func Native() Asset {
	return Asset{Code: NativeCode}
}

func (a Asset) IsNative() bool {
	return a.Issuer == "" && a.Code == NativeCode
}

// Resolver maps symbolic asset codes to fully-qualified assets. The
// platform's own issued asset has its issuer pinned in configuration, so
// callers may omit it.
type Resolver struct {
	platformCode   string
	platformIssuer string
}

func NewResolver(platformCode, platformIssuer string) Resolver {
	return Resolver{platformCode: platformCode, platformIssuer: platformIssuer}
}

func (r Resolver) PlatformAsset() Asset {
	return Asset{Code: r.platformCode, Issuer: r.platformIssuer}
}

// Resolve maps a code and an optional issuer to an asset. The native code
// ignores any supplied issuer; the platform code short-circuits to the
// pinned issuer; every other code needs a non-empty issuer.
func (r Resolver) Resolve(code, issuer string) (Asset, error) {
	if code == NativeCode {
		return Native(), nil
	}
	if code == r.platformCode && r.platformIssuer != "" {
		return Asset{Code: code, Issuer: r.platformIssuer}, nil
	}
	if issuer == "" {
		return Asset{}, ErrIssuerRequired
	}
	return Asset{Code: code, Issuer: issuer}, nil
}
