/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	"encoding/base64"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/mr-tron/base58"
	mb "github.com/multiformats/go-multibase"
)

// EncodeMultikey produces a multibase (Base58-Btc) string of
// multicodec_prefix ‖ bytes, the form embedded in did:key and did:peer
// verification methods (spec.md §4.1, §4.2).
func EncodeMultikey(alg Algorithm, raw []byte) (string, error) {
	if err := ValidateKeyLength(alg, raw); err != nil {
		return "", err
	}

	prefix, err := MulticodecPrefix(alg)
	if err != nil {
		return "", err
	}

	payload := append(append([]byte{}, prefix[0], prefix[1]), raw...)

	return "z" + base58.Encode(payload), nil
}

// DecodeMultikey performs the five-step decode of spec.md §4.1:
// multibase-decode, assert Base58-Btc, assert length >= 2, split
// prefix/bytes, resolve algorithm. Empty input, a multibase decode
// failure and a non-Base58-Btc encoding all return the same
// ErrInvalidPublicKey; a payload shorter than two bytes returns
// ErrInvalidPublicKeyLength, an unknown prefix ErrUnknownAlgorithm, and
// a key of the wrong length for its algorithm ValidateKeyLength's error.
func DecodeMultikey(s string) (Algorithm, []byte, error) {
	if len(s) == 0 {
		return 0, nil, errorx.ErrInvalidPublicKey
	}

	encoding, data, err := mb.Decode(s)
	if err != nil {
		return 0, nil, errorx.ErrInvalidPublicKey
	}

	if encoding != mb.Base58BTC {
		return 0, nil, errorx.ErrInvalidPublicKey
	}

	if len(data) < 2 {
		return 0, nil, errorx.ErrInvalidPublicKeyLength
	}

	prefix := [2]byte{data[0], data[1]}

	alg, err := FromMulticodecPrefix(prefix)
	if err != nil {
		return 0, nil, errorx.ErrUnknownAlgorithm
	}

	raw := data[2:]
	if err := ValidateKeyLength(alg, raw); err != nil {
		return 0, nil, err
	}

	return alg, raw, nil
}

// EncodeBase58btc multibase-encodes data as Base58-Btc (the "z" prefix),
// used by did:peer:4 to encode its embedded multicodec-prefixed document
// (spec.md §4.2).
func EncodeBase58btc(data []byte) string {
	return "z" + base58.Encode(data)
}

// DecodeBase58btc is the inverse of EncodeBase58btc.
func DecodeBase58btc(s string) ([]byte, error) {
	encoding, data, err := mb.Decode(s)
	if err != nil {
		return nil, errorx.ErrInvalidPublicKey
	}

	if encoding != mb.Base58BTC {
		return nil, errorx.ErrInvalidPublicKey
	}

	return data, nil
}

// EncodeBase64URL base64url-encodes data without padding, the bare form
// did:peer:2 uses for service abbreviation payloads after the ".S" token
// (spec.md §4.2). go-multibase is not used here: its Encode always
// prepends its own one-character encoding prefix, but the did:peer:2 wire
// format already signals the encoding via the ".S" token and expects a
// bare base64url payload.
func EncodeBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeBase64URL is the inverse of EncodeBase64URL.
func DecodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
