/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package crypto holds the cryptographic primitives shared by the DID
// method engine and the envelope pipeline: the algorithm enum and its
// multicodec table (spec.md §3, §4.1), keypair generation and Ed25519 to
// X25519 conversion, multibase/multicodec/multihash encoding, JWK
// conversion, and JSON canonicalization (JCS).
package crypto

import "github.com/adorsys/didcomm-mediator/pkg/errorx"

// Algorithm is the closed enum of key algorithms recognized by the DID
// method engine (spec.md §3).
type Algorithm int

const (
	Ed25519 Algorithm = iota
	X25519
	Secp256k1
	BLS12381
	P256
	P384
	P521
	RSA
)

// multicodecPrefix maps each algorithm to its two-byte multicodec prefix.
// BLS12381, RSA and P521 have no fixed two-byte codec wired here; they are
// recognized by the enum but rejected by from_multicodec_prefix, matching
// spec.md §4.1's "non-BLS12381/RSA/P-521" bijection.
var multicodecPrefix = map[Algorithm][2]byte{
	Ed25519:   {0xed, 0x01},
	X25519:    {0xec, 0x01},
	Secp256k1: {0xe7, 0x01},
	P256:      {0x80, 0x24},
	P384:      {0x81, 0x24},
}

var prefixToAlgorithm = func() map[[2]byte]Algorithm {
	m := make(map[[2]byte]Algorithm, len(multicodecPrefix))
	for alg, prefix := range multicodecPrefix {
		m[prefix] = alg
	}

	return m
}()

// fixedPublicKeyLength gives the exact raw public key length for
// algorithms whose keys always have a fixed size. Absence from this table
// means the algorithm's length is variable (RSA) or not modeled here
// (BLS12381, P-521).
var fixedPublicKeyLength = map[Algorithm]int{
	Ed25519:   32,
	X25519:    32,
	Secp256k1: 33, // compressed SEC1 form
	P256:      33, // compressed SEC1 form
	P384:      49,
}

// MulticodecPrefix returns the two-byte multicodec prefix for alg, or
// errorx.ErrUnsupported if alg has none registered here.
func MulticodecPrefix(alg Algorithm) ([2]byte, error) {
	p, ok := multicodecPrefix[alg]
	if !ok {
		return [2]byte{}, errorx.ErrUnsupported
	}

	return p, nil
}

// FromMulticodecPrefix resolves the algorithm for a two-byte multicodec
// prefix, or errorx.ErrUnknownAlgorithm if the prefix is not registered.
func FromMulticodecPrefix(prefix [2]byte) (Algorithm, error) {
	alg, ok := prefixToAlgorithm[prefix]
	if !ok {
		return 0, errorx.ErrUnknownAlgorithm
	}

	return alg, nil
}

// ValidateKeyLength enforces spec.md §3's invariant: if a fixed length is
// defined for alg, raw keys must match it exactly.
func ValidateKeyLength(alg Algorithm, raw []byte) error {
	want, ok := fixedPublicKeyLength[alg]
	if !ok {
		return nil
	}

	if len(raw) != want {
		return errorx.ErrInvalidKeyLength
	}

	return nil
}

// String renders the algorithm name, used in verification method "type"
// composition and JWK "crv"/"kty" fields.
func (a Algorithm) String() string {
	switch a {
	case Ed25519:
		return "Ed25519"
	case X25519:
		return "X25519"
	case Secp256k1:
		return "Secp256k1"
	case BLS12381:
		return "BLS12381"
	case P256:
		return "P-256"
	case P384:
		return "P-384"
	case P521:
		return "P-521"
	case RSA:
		return "RSA"
	default:
		return "Unknown"
	}
}
