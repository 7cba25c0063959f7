/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package forward implements the DIDComm v2 routing-forward message: the
// inbound path that queues a message for later pickup (spec.md §1(c),
// SPEC_FULL.md's routing forward message supplement).
package forward

import (
	"context"
	"fmt"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/adorsys/didcomm-mediator/pkg/repository"
	"github.com/google/uuid"
)

// TypeForward is the routing-forward message type URI.
const TypeForward = "https://didcomm.org/routing/2.0/forward"

// Handler queues forwarded payloads for pickup.
type Handler struct {
	repo repository.Repository
}

// New builds a Handler.
func New(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

// HandleForward looks up next against every connection's keylist and, on
// a match, enqueues payload as a queued message addressed to next. No
// match fails with errorx.ErrMissingClientConnection.
func (h *Handler) HandleForward(ctx context.Context, next string, payload []byte) error {
	if next == "" {
		return fmt.Errorf("%w: missing next", errorx.ErrMalformedRequest)
	}

	if _, err := h.repo.Connections().FindByKeylistMember(ctx, next); err != nil {
		if err == repository.ErrNotFound {
			return errorx.ErrMissingClientConnection
		}

		return fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	msg := &repository.QueuedMessage{
		ID:           uuid.NewString(),
		RecipientDID: next,
		Payload:      append([]byte(nil), payload...),
	}

	if err := h.repo.Messages().Enqueue(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", errorx.ErrIoError, err)
	}

	return nil
}
