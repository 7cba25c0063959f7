/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	"crypto/sha512"

	"filippo.io/edwards25519"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
)

// Ed25519PublicKeyToX25519 converts an Ed25519 public point to its
// Montgomery-form X25519 public key (spec.md §4.1), using the standard
// birational map u = (1+y)/(1-y) over the twisted Edwards curve.
func Ed25519PublicKeyToX25519(edPub []byte) ([]byte, error) {
	if len(edPub) != 32 {
		return nil, errorx.ErrInvalidPublicKeyLength
	}

	p, err := new(edwards25519.Point).SetBytes(edPub)
	if err != nil {
		return nil, errorx.ErrInvalidPublicKey
	}

	return montgomeryUFromEdwards(p), nil
}

// ed25519PrivateKeyToX25519 derives the X25519 private scalar from an
// Ed25519 private key by hashing its seed the same way Ed25519 itself
// does before clamping (RFC 8032 §5.1.5 step 1).
func ed25519PrivateKeyToX25519(edPriv []byte) ([]byte, error) {
	if len(edPriv) != 64 {
		return nil, errorx.ErrInvalidSigningKey
	}

	seed := edPriv[:32]

	h := sha512.Sum512(seed)
	scalar := h[:32]

	scalar[0] &= 248
	scalar[31] &= 127
	scalar[31] |= 64

	return scalar, nil
}

// montgomeryUFromEdwards converts an Edwards25519 point to its Montgomery
// u-coordinate using filippo.io/edwards25519's byte-level representation,
// which stores points convertible via the standard (1+y)/(1-y) relation.
func montgomeryUFromEdwards(p *edwards25519.Point) []byte {
	// edwards25519.Point.BytesMontgomery() implements exactly the
	// birational map used by X25519 key conversion.
	return p.BytesMontgomery()
}
