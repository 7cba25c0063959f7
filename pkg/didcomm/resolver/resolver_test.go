/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resolver

import (
	"testing"

	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/did/peer"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/stretchr/testify/require"
)

func TestResolveOwnDIDIsAbsolutized(t *testing.T) {
	kp, err := crypto.GenerateEd25519Keypair()
	require.NoError(t, err)

	ownDID, err := peer.Create2([]peer.PurposedKey{{Purpose: peer.Verification, PublicKeyMultibase: mustMultikey(t, kp)}}, nil)
	require.NoError(t, err)

	ownDoc, err := peer.Expand2(ownDID, did.Multikey)
	require.NoError(t, err)

	r := New(ownDoc)

	resolved, err := r.Resolve(ownDID)
	require.NoError(t, err)
	require.Equal(t, ownDID+"#key-1", resolved.VerificationMethod[0].ID)
	require.Equal(t, ownDID+"#key-1", resolved.Authentication[0].Reference)
}

func TestResolveDIDKey(t *testing.T) {
	r := New(&did.Document{ID: "did:peer:2.fake"})

	doc, err := r.Resolve("did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK")
	require.NoError(t, err)
	require.Len(t, doc.VerificationMethod, 2)
}

func TestResolveUnsupportedPrefix(t *testing.T) {
	r := New(&did.Document{ID: "did:peer:2.fake"})

	_, err := r.Resolve("did:example:123")
	require.ErrorIs(t, err, errorx.ErrUnsupported)
}

func TestResolveMalformedPeerDID(t *testing.T) {
	r := New(&did.Document{ID: "did:peer:2.fake"})

	_, err := r.Resolve("did:peer:2notachain")
	require.ErrorIs(t, err, errorx.ErrDIDNotResolved)
}

func mustMultikey(t *testing.T, kp crypto.Keypair) string {
	t.Helper()

	s, err := crypto.EncodeMultikey(kp.Algorithm, kp.PublicKey)
	require.NoError(t, err)

	return s
}
