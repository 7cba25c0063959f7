/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pickup

import (
	"context"
	"testing"

	"github.com/adorsys/didcomm-mediator/pkg/protocol/mediate"
	"github.com/adorsys/didcomm-mediator/pkg/repository"
	"github.com/adorsys/didcomm-mediator/pkg/repository/memory"
	"github.com/stretchr/testify/require"
)

// mediatedSender bootstraps a connection for senderDID with the given
// keylist entries, mirroring the coordinate-mediation grant flow a real
// pickup request would always follow.
func mediatedSender(t *testing.T, repo repository.Repository, senderDID string, keylist ...string) {
	t.Helper()

	h := mediate.New(repo, "https://mediator.example/didcomm", "did:peer:2.mediator.example")

	_, _, err := h.HandleMediateRequest(context.Background(), senderDID)
	require.NoError(t, err)

	if len(keylist) == 0 {
		return
	}

	cmds := make([]mediate.KeylistCommand, len(keylist))
	for i, k := range keylist {
		cmds[i] = mediate.KeylistCommand{RecipientDID: k, Action: mediate.ActionAdd}
	}

	_, err = h.HandleKeylistUpdate(context.Background(), senderDID, cmds)
	require.NoError(t, err)
}

func TestStatusRequestCountsInScopeMessages(t *testing.T) {
	repo := memory.New()
	mediatedSender(t, repo, "did:key:sender", "K1", "K2")

	require.NoError(t, repo.Messages().Enqueue(context.Background(), &repository.QueuedMessage{ID: "m1", RecipientDID: "K1", Payload: []byte("a")}))
	require.NoError(t, repo.Messages().Enqueue(context.Background(), &repository.QueuedMessage{ID: "m2", RecipientDID: "K2", Payload: []byte("b")}))
	require.NoError(t, repo.Messages().Enqueue(context.Background(), &repository.QueuedMessage{ID: "m3", RecipientDID: "K-out-of-scope", Payload: []byte("c")}))

	h := New(repo)

	count, err := h.HandleStatusRequest(context.Background(), "did:key:sender", "")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestStatusRequestScopedToSingleRecipient(t *testing.T) {
	repo := memory.New()
	mediatedSender(t, repo, "did:key:sender", "K1", "K2")

	require.NoError(t, repo.Messages().Enqueue(context.Background(), &repository.QueuedMessage{ID: "m1", RecipientDID: "K1", Payload: []byte("a")}))
	require.NoError(t, repo.Messages().Enqueue(context.Background(), &repository.QueuedMessage{ID: "m2", RecipientDID: "K2", Payload: []byte("b")}))

	h := New(repo)

	count, err := h.HandleStatusRequest(context.Background(), "did:key:sender", "K1")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

// TestStatusRequestUnknownRecipientIsEmptyScope exercises spec.md §4.5:
// a recipient_did that is not in the sender's keylist scopes to nothing,
// not an error.
func TestStatusRequestUnknownRecipientIsEmptyScope(t *testing.T) {
	repo := memory.New()
	mediatedSender(t, repo, "did:key:sender", "K1")

	require.NoError(t, repo.Messages().Enqueue(context.Background(), &repository.QueuedMessage{ID: "m1", RecipientDID: "K1", Payload: []byte("a")}))

	h := New(repo)

	count, err := h.HandleStatusRequest(context.Background(), "did:key:sender", "K-not-mine")
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestDeliveryRequestUnlimitedWhenLimitZero(t *testing.T) {
	repo := memory.New()
	mediatedSender(t, repo, "did:key:sender", "K1")

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Messages().Enqueue(context.Background(), &repository.QueuedMessage{
			ID: string(rune('a' + i)), RecipientDID: "K1", Payload: []byte("x"),
		}))
	}

	h := New(repo)

	msgs, err := h.HandleDeliveryRequest(context.Background(), "did:key:sender", "", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
}

func TestDeliveryRequestRespectsLimit(t *testing.T) {
	repo := memory.New()
	mediatedSender(t, repo, "did:key:sender", "K1")

	require.NoError(t, repo.Messages().Enqueue(context.Background(), &repository.QueuedMessage{ID: "m1", RecipientDID: "K1", Payload: []byte("a")}))
	require.NoError(t, repo.Messages().Enqueue(context.Background(), &repository.QueuedMessage{ID: "m2", RecipientDID: "K1", Payload: []byte("b")}))

	h := New(repo)

	msgs, err := h.HandleDeliveryRequest(context.Background(), "did:key:sender", "", 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "m1", msgs[0].ID)
}

func TestDeliveryRequestEmptyWhenNoMessages(t *testing.T) {
	repo := memory.New()
	mediatedSender(t, repo, "did:key:sender", "K1")

	h := New(repo)

	msgs, err := h.HandleDeliveryRequest(context.Background(), "did:key:sender", "", 10)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestMessagesReceivedDeletesAndReturnsNewCount(t *testing.T) {
	repo := memory.New()
	mediatedSender(t, repo, "did:key:sender", "K1")

	require.NoError(t, repo.Messages().Enqueue(context.Background(), &repository.QueuedMessage{ID: "m1", RecipientDID: "K1", Payload: []byte("a")}))
	require.NoError(t, repo.Messages().Enqueue(context.Background(), &repository.QueuedMessage{ID: "m2", RecipientDID: "K1", Payload: []byte("b")}))

	h := New(repo)

	count, err := h.HandleMessagesReceived(context.Background(), "did:key:sender", []string{"m1", "absent-id"})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestMessagesReceivedRejectsMissingList(t *testing.T) {
	repo := memory.New()
	mediatedSender(t, repo, "did:key:sender", "K1")

	h := New(repo)

	_, err := h.HandleMessagesReceived(context.Background(), "did:key:sender", nil)
	require.Error(t, err)
}

func TestLiveDeliveryChangeTrueNeedsProblemReport(t *testing.T) {
	h := New(memory.New())
	require.True(t, h.HandleLiveDeliveryChange(true))
	require.False(t, h.HandleLiveDeliveryChange(false))
}
