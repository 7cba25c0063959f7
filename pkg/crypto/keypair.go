/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	"crypto/rand"
	ced25519 "crypto/ed25519"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"golang.org/x/crypto/curve25519"
)

// Keypair is an (optional) private scalar plus a public point, tagged
// with its algorithm (spec.md §3). A Keypair created from a public key
// alone is verify-only: Sign fails with errorx.ErrMissingPrivateKey.
type Keypair struct {
	Algorithm  Algorithm
	PublicKey  []byte
	PrivateKey []byte // nil for verify-only keypairs
}

// HasPrivateKey reports whether the keypair can sign.
func (k Keypair) HasPrivateKey() bool {
	return len(k.PrivateKey) > 0
}

// GenerateEd25519Keypair creates a fresh Ed25519 signing keypair, used at
// mediator bootstrap and for per-client routing DIDs (spec.md §4.4).
func GenerateEd25519Keypair() (Keypair, error) {
	pub, priv, err := ced25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, err
	}

	return Keypair{Algorithm: Ed25519, PublicKey: pub, PrivateKey: priv}, nil
}

// GenerateX25519Keypair creates a fresh X25519 key-agreement keypair.
func GenerateX25519Keypair() (Keypair, error) {
	var priv [32]byte
	if _, err := rand.Read(priv[:]); err != nil {
		return Keypair{}, err
	}

	// clamp per RFC 7748
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return Keypair{}, err
	}

	return Keypair{Algorithm: X25519, PublicKey: pub, PrivateKey: priv[:]}, nil
}

// NewVerifyOnlyKeypair builds a keypair from a public key alone; Sign on
// the result fails with errorx.ErrMissingPrivateKey (spec.md §3).
func NewVerifyOnlyKeypair(alg Algorithm, pub []byte) (Keypair, error) {
	if err := ValidateKeyLength(alg, pub); err != nil {
		return Keypair{}, err
	}

	return Keypair{Algorithm: alg, PublicKey: pub}, nil
}

// Sign produces an Ed25519 signature over data. Only Ed25519 keypairs with
// a private key can sign.
func (k Keypair) Sign(data []byte) ([]byte, error) {
	if !k.HasPrivateKey() {
		return nil, errorx.ErrMissingPrivateKey
	}

	if k.Algorithm != Ed25519 {
		return nil, errorx.ErrUnsupported
	}

	return ced25519.Sign(ced25519.PrivateKey(k.PrivateKey), data), nil
}

// Verify checks an Ed25519 signature against the keypair's public key.
func (k Keypair) Verify(data, sig []byte) bool {
	if k.Algorithm != Ed25519 {
		return false
	}

	return ced25519.Verify(ced25519.PublicKey(k.PublicKey), data, sig)
}

// ToX25519 is the Ed25519 keypair's total conversion function to its
// Montgomery-form key-agreement pair (spec.md §3, §4.1). It is
// deterministic: the same Ed25519 public key always yields the same
// X25519 public key.
func (k Keypair) ToX25519() (Keypair, error) {
	if k.Algorithm != Ed25519 {
		return Keypair{}, errorx.ErrUnsupported
	}

	pub, err := Ed25519PublicKeyToX25519(k.PublicKey)
	if err != nil {
		return Keypair{}, err
	}

	out := Keypair{Algorithm: X25519, PublicKey: pub}

	if k.HasPrivateKey() {
		priv, err := ed25519PrivateKeyToX25519(k.PrivateKey)
		if err != nil {
			return Keypair{}, err
		}

		out.PrivateKey = priv
	}

	return out, nil
}
