/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package forward

import (
	"context"
	"testing"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/adorsys/didcomm-mediator/pkg/protocol/mediate"
	"github.com/adorsys/didcomm-mediator/pkg/protocol/pickup"
	"github.com/adorsys/didcomm-mediator/pkg/repository/memory"
	"github.com/stretchr/testify/require"
)

func TestHandleForwardQueuesMessageForKnownRecipient(t *testing.T) {
	repo := memory.New()
	mh := mediate.New(repo, "https://mediator.example/didcomm", "did:peer:2.mediator.example")

	_, _, err := mh.HandleMediateRequest(context.Background(), "did:key:sender")
	require.NoError(t, err)

	_, err = mh.HandleKeylistUpdate(context.Background(), "did:key:sender", []mediate.KeylistCommand{
		{RecipientDID: "did:key:recipient", Action: mediate.ActionAdd},
	})
	require.NoError(t, err)

	h := New(repo)
	require.NoError(t, h.HandleForward(context.Background(), "did:key:recipient", []byte(`{"hello":"world"}`)))

	ph := pickup.New(repo)
	count, err := ph.HandleStatusRequest(context.Background(), "did:key:sender", "")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestHandleForwardRejectsUnknownRecipient(t *testing.T) {
	repo := memory.New()
	h := New(repo)

	err := h.HandleForward(context.Background(), "did:key:nobody", []byte(`{}`))
	require.ErrorIs(t, err, errorx.ErrMissingClientConnection)
}

func TestHandleForwardRejectsMissingNext(t *testing.T) {
	repo := memory.New()
	h := New(repo)

	err := h.HandleForward(context.Background(), "", []byte(`{}`))
	require.Error(t, err)
}
