/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package pickup implements the Message Pickup 3.0 protocol: status,
// delivery, acknowledgement, and live-mode messages (spec.md §4.5).
package pickup

import (
	"context"
	"fmt"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/adorsys/didcomm-mediator/pkg/repository"
)

// Protocol message type URIs (spec.md §6).
const (
	TypeStatusRequest     = "https://didcomm.org/messagepickup/3.0/status-request"
	TypeStatus            = "https://didcomm.org/messagepickup/3.0/status"
	TypeDeliveryRequest   = "https://didcomm.org/messagepickup/3.0/delivery-request"
	TypeDelivery          = "https://didcomm.org/messagepickup/3.0/delivery"
	TypeMessagesReceived  = "https://didcomm.org/messagepickup/3.0/messages-received"
	TypeLiveDeliveryChange = "https://didcomm.org/messagepickup/3.0/live-delivery-change"
	TypeProblemReport     = "https://didcomm.org/report-problem/2.0/problem-report"
)

// LiveModeNotSupported is the report-problem code sent when a client asks
// to turn live delivery on.
const LiveModeNotSupported = "e.m.live-mode-not-supported"

// Handler implements the pickup handlers; each call consults the
// repository anew (spec.md §4.5, "message-oriented and stateless
// between messages").
type Handler struct {
	repo repository.Repository
}

// New builds a Handler.
func New(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

// scope resolves spec.md §4.5's recipient-scoping rule: an explicit
// recipientDID present in the sender's keylist scopes to just that DID;
// present-but-absent scopes to nothing; omitted scopes to the whole
// keylist.
func (h *Handler) scope(ctx context.Context, senderDID, recipientDID string) ([]string, error) {
	conn, err := h.repo.Connections().FindByClientDID(ctx, senderDID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	if recipientDID == "" {
		return conn.Keylist, nil
	}

	for _, k := range conn.Keylist {
		if k == recipientDID {
			return []string{recipientDID}, nil
		}
	}

	return []string{}, nil
}

// HandleStatusRequest returns the queued message count in scope.
func (h *Handler) HandleStatusRequest(ctx context.Context, senderDID, recipientDID string) (int, error) {
	scope, err := h.scope(ctx, senderDID, recipientDID)
	if err != nil {
		return 0, err
	}

	if len(scope) == 0 {
		return 0, nil
	}

	return h.repo.Messages().CountForRecipients(ctx, scope)
}

// HandleDeliveryRequest returns up to limit queued messages in scope, or
// an empty delivery with message_count=0 if none are available.
// limit=0 means unlimited (spec.md §4.5).
func (h *Handler) HandleDeliveryRequest(ctx context.Context, senderDID, recipientDID string, limit int) ([]*repository.QueuedMessage, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be a non-negative integer", errorx.ErrMalformedRequest)
	}

	scope, err := h.scope(ctx, senderDID, recipientDID)
	if err != nil {
		return nil, err
	}

	if len(scope) == 0 {
		return nil, nil
	}

	return h.repo.Messages().ListForRecipients(ctx, scope, limit)
}

// HandleMessagesReceived deletes each acknowledged message id (absent
// ids are no-ops) and returns the sender's new queued-message count
// (spec.md §4.5).
func (h *Handler) HandleMessagesReceived(ctx context.Context, senderDID string, messageIDList []string) (int, error) {
	if messageIDList == nil {
		return 0, fmt.Errorf("%w: missing message_id_list", errorx.ErrMalformedRequest)
	}

	for _, id := range messageIDList {
		if id == "" {
			return 0, fmt.Errorf("%w: unparsable message id", errorx.ErrMalformedRequest)
		}

		if err := h.repo.Messages().Delete(ctx, id); err != nil {
			return 0, fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
		}
	}

	return h.HandleStatusRequest(ctx, senderDID, "")
}

// HandleLiveDeliveryChange reports whether a problem-report reply is
// required: live_delivery=true is unsupported and replies with
// e.m.live-mode-not-supported; false requires no reply (spec.md §4.5).
func (h *Handler) HandleLiveDeliveryChange(liveDelivery bool) (needsProblemReport bool) {
	return liveDelivery
}
