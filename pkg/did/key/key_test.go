/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package key

import (
	"testing"

	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/stretchr/testify/require"
)

func TestCreateExpandRoundTrip(t *testing.T) {
	kp, err := crypto.GenerateEd25519Keypair()
	require.NoError(t, err)

	didStr, err := Create(crypto.Ed25519, kp.PublicKey)
	require.NoError(t, err)
	require.Regexp(t, didKeyRegex, didStr)

	doc, err := Expand(didStr, Options{Format: did.Multikey})
	require.NoError(t, err)
	require.Equal(t, didStr, doc.ID)
	require.Len(t, doc.VerificationMethod, 1)

	_, raw, err := crypto.DecodeMultikey(doc.VerificationMethod[0].PublicKeyMultibase)
	require.NoError(t, err)
	require.Equal(t, kp.PublicKey, raw)
}

// TestExpandEd25519WithKeyAgreement exercises spec.md §8 scenario 1: a
// known did:key Ed25519 DID expands to a document whose second
// verification method is the X25519 key-agreement key referenced from
// keyAgreement.
func TestExpandEd25519WithKeyAgreement(t *testing.T) {
	didStr := "did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK"

	doc, err := Expand(didStr, Options{Format: did.Multikey, DeriveKeyAgreement: true})
	require.NoError(t, err)
	require.Len(t, doc.VerificationMethod, 2)

	require.Equal(t, didStr+"#z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK", doc.VerificationMethod[0].ID)
	require.Equal(t, "Ed25519VerificationKey2020", doc.VerificationMethod[0].Type)

	require.Equal(t, "X25519KeyAgreementKey2020", doc.VerificationMethod[1].Type)
	require.Len(t, doc.KeyAgreement, 1)
	require.Equal(t, doc.VerificationMethod[1].ID, doc.KeyAgreement[0].Reference)
}

func TestExpandRejectsMalformedDID(t *testing.T) {
	_, err := Expand("did:key:notvalid", Options{})
	require.Error(t, err)
}

func TestExpandJWKFormat(t *testing.T) {
	kp, err := crypto.GenerateEd25519Keypair()
	require.NoError(t, err)

	didStr, err := Create(crypto.Ed25519, kp.PublicKey)
	require.NoError(t, err)

	doc, err := Expand(didStr, Options{Format: did.JWKFormat})
	require.NoError(t, err)
	require.NotNil(t, doc.VerificationMethod[0].PublicKeyJwk)
	require.Empty(t, doc.VerificationMethod[0].PublicKeyMultibase)
}
