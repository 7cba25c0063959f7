/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rotation

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/adorsys/didcomm-mediator/pkg/repository"
	"github.com/adorsys/didcomm-mediator/pkg/repository/memory"
	"github.com/stretchr/testify/require"
)

type staticResolver struct {
	docs map[string]*did.Document
}

func (s staticResolver) Resolve(didStr string) (*did.Document, error) {
	if doc, ok := s.docs[didStr]; ok {
		return doc, nil
	}

	return nil, errorx.ErrDIDNotResolved
}

func TestVerifyAndApplyRotation(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	oldDID := "did:key:old"
	oldKid := oldDID + "#key-1"
	newDID := "did:key:new"

	resolver := staticResolver{docs: map[string]*did.Document{
		oldDID: {
			ID: oldDID,
			VerificationMethod: []did.VerificationMethod{
				{ID: oldKid, Type: "Ed25519VerificationKey2020", PublicKeyMultibase: mustMultikeyEd(t, pub)},
			},
			Authentication: []did.VerificationRelationship{did.Ref(oldKid)},
		},
	}}

	token, err := Sign(oldDID, oldKid, priv, newDID)
	require.NoError(t, err)

	gotOld, gotNew, err := Verify(resolver, token)
	require.NoError(t, err)
	require.Equal(t, oldDID, gotOld)
	require.Equal(t, newDID, gotNew)

	store := memory.New()
	require.NoError(t, store.Connections().Insert(context.Background(), &repository.Connection{
		ID: "conn-1", ClientDID: oldDID, Keylist: []string{oldDID},
	}))

	err = ApplyRotation(context.Background(), store.Connections(), gotOld, gotNew)
	require.NoError(t, err)

	conn, err := store.Connections().FindByClientDID(context.Background(), newDID)
	require.NoError(t, err)
	require.Equal(t, newDID, conn.ClientDID)
	require.Contains(t, conn.Keylist, newDID)
}

func TestVerifyRejectsUnknownIssuer(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	token, err := Sign("did:key:ghost", "did:key:ghost#key-1", priv, "did:key:new")
	require.NoError(t, err)

	_, _, err = Verify(staticResolver{docs: map[string]*did.Document{}}, token)
	require.ErrorIs(t, err, errorx.ErrUnknownIssuer)
}

func TestApplyRotationDeletesOnEmptyNewDID(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.Connections().Insert(context.Background(), &repository.Connection{
		ID: "conn-1", ClientDID: "did:key:old", Keylist: []string{"did:key:old"},
	}))

	err := ApplyRotation(context.Background(), store.Connections(), "did:key:old", "")
	require.NoError(t, err)

	_, err = store.Connections().FindByClientDID(context.Background(), "did:key:old")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func mustMultikeyEd(t *testing.T, pub ed25519.PublicKey) string {
	t.Helper()

	s, err := crypto.EncodeMultikey(crypto.Ed25519, pub)
	require.NoError(t, err)

	return s
}
