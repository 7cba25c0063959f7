/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	"testing"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/stretchr/testify/require"
)

func TestMulticodecRoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{Ed25519, X25519, Secp256k1, P256, P384} {
		prefix, err := MulticodecPrefix(alg)
		require.NoError(t, err)

		got, err := FromMulticodecPrefix(prefix)
		require.NoError(t, err)
		require.Equal(t, alg, got)
	}
}

func TestFromMulticodecPrefixUnknown(t *testing.T) {
	_, err := FromMulticodecPrefix([2]byte{0xff, 0xff})
	require.Error(t, err)
}

func TestMultikeyRoundTrip(t *testing.T) {
	kp, err := GenerateEd25519Keypair()
	require.NoError(t, err)

	encoded, err := EncodeMultikey(Ed25519, kp.PublicKey)
	require.NoError(t, err)
	require.True(t, len(encoded) > 1 && encoded[0] == 'z')

	alg, raw, err := DecodeMultikey(encoded)
	require.NoError(t, err)
	require.Equal(t, Ed25519, alg)
	require.Equal(t, kp.PublicKey, raw)
}

func TestInvalidKeyLengthRejected(t *testing.T) {
	_, err := EncodeMultikey(Ed25519, []byte{1, 2, 3})
	require.ErrorIs(t, err, errorx.ErrInvalidKeyLength)
}

func TestEd25519ToX25519Deterministic(t *testing.T) {
	kp, err := GenerateEd25519Keypair()
	require.NoError(t, err)

	x1, err := kp.ToX25519()
	require.NoError(t, err)

	x2, err := kp.ToX25519()
	require.NoError(t, err)

	require.Equal(t, x1.PublicKey, x2.PublicKey)
	require.Len(t, x1.PublicKey, 32)
}

func TestSignVerify(t *testing.T) {
	kp, err := GenerateEd25519Keypair()
	require.NoError(t, err)

	sig, err := kp.Sign([]byte("hello"))
	require.NoError(t, err)
	require.True(t, kp.Verify([]byte("hello"), sig))
	require.False(t, kp.Verify([]byte("goodbye"), sig))
}

func TestVerifyOnlyKeypairCannotSign(t *testing.T) {
	kp, err := GenerateEd25519Keypair()
	require.NoError(t, err)

	verifyOnly, err := NewVerifyOnlyKeypair(Ed25519, kp.PublicKey)
	require.NoError(t, err)

	_, err = verifyOnly.Sign([]byte("x"))
	require.Error(t, err)
}

func TestJWKRoundTripEd25519(t *testing.T) {
	kp, err := GenerateEd25519Keypair()
	require.NoError(t, err)

	jwk, err := PublicKeyToJWK(kp)
	require.NoError(t, err)
	require.Equal(t, "OKP", jwk.Kty)
	require.Equal(t, "Ed25519", jwk.Crv)

	back, err := JWKToKeypair(jwk)
	require.NoError(t, err)
	require.Equal(t, kp.PublicKey, back.PublicKey)
}

func TestSHA256MultihashDeterministic(t *testing.T) {
	h1, err := SHA256Multihash([]byte("payload"))
	require.NoError(t, err)

	h2, err := SHA256Multihash([]byte("payload"))
	require.NoError(t, err)

	require.Equal(t, h1, h2)

	ok, err := VerifySHA256Multihash(h1, []byte("payload"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifySHA256Multihash(h1, []byte("tampered"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCanonicalizeKeyOrdering(t *testing.T) {
	a, err := Canonicalize(map[string]interface{}{"b": 1, "a": 2})
	require.NoError(t, err)

	b, err := Canonicalize(map[string]interface{}{"a": 2, "b": 1})
	require.NoError(t, err)

	require.Equal(t, string(a), string(b))
	require.Equal(t, `{"a":2,"b":1}`, string(a))
}
