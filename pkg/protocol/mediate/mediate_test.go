/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mediate

import (
	"context"
	"testing"

	"github.com/adorsys/didcomm-mediator/pkg/repository/memory"
	"github.com/stretchr/testify/require"
)

// TestHandleMediateRequestNewClient exercises spec.md §8 scenario 3.
func TestHandleMediateRequestNewClient(t *testing.T) {
	repo := memory.New()
	h := New(repo, "https://mediator.example/didcomm", "did:peer:2.mediator.example")

	replyType, routingDID, err := h.HandleMediateRequest(context.Background(), "did:key:z6Mkf...sender")
	require.NoError(t, err)
	require.Equal(t, TypeMediateGrant, replyType)
	require.NotEmpty(t, routingDID)

	conn, err := repo.Connections().FindByClientDID(context.Background(), "did:key:z6Mkf...sender")
	require.NoError(t, err)
	require.Equal(t, routingDID, conn.RoutingDID)
	require.Equal(t, "did:peer:2.mediator.example", conn.MediatorDID)
	require.NotEqual(t, conn.MediatorDID, conn.RoutingDID)
	require.Empty(t, conn.Keylist)

	authKid := routingDID + "#key-1"
	agreementKid := routingDID + "#key-2"

	_, err = repo.Secrets().GetSecret(context.Background(), authKid)
	require.NoError(t, err)

	_, err = repo.Secrets().GetSecret(context.Background(), agreementKid)
	require.NoError(t, err)
}

func TestHandleMediateRequestAlreadyMediated(t *testing.T) {
	repo := memory.New()
	h := New(repo, "https://mediator.example/didcomm", "did:peer:2.mediator.example")

	_, _, err := h.HandleMediateRequest(context.Background(), "did:key:z6Mkf...sender")
	require.NoError(t, err)

	replyType, _, err := h.HandleMediateRequest(context.Background(), "did:key:z6Mkf...sender")
	require.NoError(t, err)
	require.Equal(t, TypeMediateDeny, replyType)
}

// TestKeylistUpdateWithDuplicate exercises spec.md §8 scenario 4.
func TestKeylistUpdateWithDuplicate(t *testing.T) {
	repo := memory.New()
	h := New(repo, "https://mediator.example/didcomm", "did:peer:2.mediator.example")

	_, _, err := h.HandleMediateRequest(context.Background(), "did:key:sender")
	require.NoError(t, err)

	confirmations, err := h.HandleKeylistUpdate(context.Background(), "did:key:sender", []KeylistCommand{
		{RecipientDID: "K1", Action: ActionAdd},
		{RecipientDID: "K1", Action: ActionRemove},
	})
	require.NoError(t, err)
	require.Equal(t, []KeylistConfirmation{
		{"K1", ActionAdd, ResultClientError},
		{"K1", ActionRemove, ResultClientError},
	}, confirmations)

	conn, err := repo.Connections().FindByClientDID(context.Background(), "did:key:sender")
	require.NoError(t, err)
	require.Empty(t, conn.Keylist)
}

func TestKeylistUpdateAddThenNoChange(t *testing.T) {
	repo := memory.New()
	h := New(repo, "https://mediator.example/didcomm", "did:peer:2.mediator.example")

	_, _, err := h.HandleMediateRequest(context.Background(), "did:key:sender")
	require.NoError(t, err)

	confirmations, err := h.HandleKeylistUpdate(context.Background(), "did:key:sender", []KeylistCommand{
		{RecipientDID: "K1", Action: ActionAdd},
	})
	require.NoError(t, err)
	require.Equal(t, ResultSuccess, confirmations[0].Result)

	confirmations, err = h.HandleKeylistUpdate(context.Background(), "did:key:sender", []KeylistCommand{
		{RecipientDID: "K1", Action: ActionAdd},
	})
	require.NoError(t, err)
	require.Equal(t, ResultNoChange, confirmations[0].Result)
}

func TestKeylistQueryUncoordinatedSender(t *testing.T) {
	repo := memory.New()
	h := New(repo, "https://mediator.example/didcomm", "did:peer:2.mediator.example")

	_, err := h.HandleKeylistQuery(context.Background(), "did:key:stranger", nil)
	require.Error(t, err)
}

func TestKeylistQueryPagination(t *testing.T) {
	repo := memory.New()
	h := New(repo, "https://mediator.example/didcomm", "did:peer:2.mediator.example")

	_, _, err := h.HandleMediateRequest(context.Background(), "did:key:sender")
	require.NoError(t, err)

	_, err = h.HandleKeylistUpdate(context.Background(), "did:key:sender", []KeylistCommand{
		{RecipientDID: "K1", Action: ActionAdd},
		{RecipientDID: "K2", Action: ActionAdd},
		{RecipientDID: "K3", Action: ActionAdd},
	})
	require.NoError(t, err)

	keys, err := h.HandleKeylistQuery(context.Background(), "did:key:sender", &Paginate{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"K2"}, keys)
}
