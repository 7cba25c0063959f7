/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package inbound dispatches an unpacked DIDComm message to the protocol
// handler its type names, and packs the reply for the same transport
// connection (spec.md §2's data-flow: unpack -> dispatch -> pack).
package inbound

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adorsys/didcomm-mediator/internal/log"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/didcomm/message"
	"github.com/adorsys/didcomm-mediator/pkg/didcomm/packer"
	"github.com/adorsys/didcomm-mediator/pkg/didcomm/rotation"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/adorsys/didcomm-mediator/pkg/plugin"
	"github.com/adorsys/didcomm-mediator/pkg/protocol/forward"
	"github.com/adorsys/didcomm-mediator/pkg/protocol/mediate"
	"github.com/adorsys/didcomm-mediator/pkg/protocol/pickup"
	"github.com/adorsys/didcomm-mediator/pkg/repository"
	"github.com/google/uuid"
)

var logger = log.New("didcomm/dispatcher/inbound")

// provider supplies the MessageHandler's dependencies, built once at
// startup the way the teacher's provider-injection pattern wires its
// inbound handler.
type provider interface {
	Resolver() did.Resolver
	Packer() *packer.Packer
	Connections() repository.Connections
	Mediate() *mediate.Handler
	Pickup() *pickup.Handler
	Forward() *forward.Handler
	Plugins() *plugin.Container
	OwnDID() string
	OwnAgreementKid() string
}

// reply is the dispatch result for one inbound message: a type and JSON
// body to wrap in a plaintext reply envelope, optionally carrying
// attachments (pickup delivery). A nil reply with a nil error means the
// message type required no response (spec.md §4.5, live-delivery-change
// with live_delivery=false).
type reply struct {
	Type        string
	Body        []byte
	Attachments []message.Attachment
}

// MessageHandler handles inbound envelopes: unpack, apply any from_prior
// rotation, dispatch by message type to the appropriate protocol
// handler, then pack the reply.
type MessageHandler struct {
	resolver        did.Resolver
	packer          *packer.Packer
	conns           repository.Connections
	mediate         *mediate.Handler
	pickup          *pickup.Handler
	forward         *forward.Handler
	plugins         *plugin.Container
	ownDID          string
	ownAgreementKid string
	initialized     bool
}

// NewInboundMessageHandler creates an inbound message handler.
func NewInboundMessageHandler(p provider) *MessageHandler {
	h := &MessageHandler{}
	h.Initialize(p)

	return h
}

// Initialize initializes the MessageHandler. Any call beyond the first is
// a no-op, the way the teacher's handler tolerates repeated Initialize.
func (handler *MessageHandler) Initialize(p provider) {
	if handler.initialized {
		return
	}

	handler.resolver = p.Resolver()
	handler.packer = p.Packer()
	handler.conns = p.Connections()
	handler.mediate = p.Mediate()
	handler.pickup = p.Pickup()
	handler.forward = p.Forward()
	handler.plugins = p.Plugins()
	handler.ownDID = p.OwnDID()
	handler.ownAgreementKid = p.OwnAgreementKid()
	handler.initialized = true
}

// HandleInboundEnvelope unpacks raw against contentTypeHeader, applies
// any from_prior rotation, dispatches the plaintext message by type, and
// packs the reply back to the sender's keyAgreement key.
func (handler *MessageHandler) HandleInboundEnvelope(ctx context.Context, contentTypeHeader string, raw []byte) ([]byte, error) {
	plaintext, meta, err := handler.packer.Unpack(ctx, contentTypeHeader, raw)
	if err != nil {
		return nil, err
	}

	var msg message.Message
	if err := json.Unmarshal(plaintext, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrUnexpectedMessageFormat, err)
	}

	senderDID := meta.From

	if msg.FromPrior != "" {
		previousDID, newDID, err := rotation.Verify(handler.resolver, msg.FromPrior)
		if err != nil {
			return nil, err
		}

		if err := rotation.ApplyRotation(ctx, handler.conns, previousDID, newDID); err != nil {
			return nil, err
		}

		logger.Infof("rotated sender did %s -> %s", previousDID, newDID)

		senderDID = newDID
	}

	if !msg.HasReturnRouteAll() {
		return nil, errorx.ErrNoReturnRouteAllDecoration
	}

	r, err := handler.route(ctx, senderDID, msg)
	if err != nil {
		return nil, err
	}

	if r == nil {
		return nil, nil
	}

	replyMsg := message.Message{
		ID:          uuid.NewString(),
		Type:        r.Type,
		From:        handler.ownDID,
		To:          []string{senderDID},
		ThreadID:    msg.ID,
		Body:        r.Body,
		Attachments: r.Attachments,
	}

	replyJSON, err := json.Marshal(replyMsg)
	if err != nil {
		return nil, err
	}

	return handler.packer.Pack(ctx, replyJSON, handler.ownAgreementKid, senderDID)
}

// route dispatches msg by type to the protocol handler that owns it. A
// plugin mounted for msg.Type takes over when no built-in handler
// matches, letting spec.md §4.6's container extend the dispatch table
// at runtime.
func (handler *MessageHandler) route(ctx context.Context, senderDID string, msg message.Message) (*reply, error) {
	switch msg.Type {
	case mediate.TypeMediateRequest:
		return handler.routeMediateRequest(ctx, senderDID)

	case mediate.TypeKeylistUpdate:
		return handler.routeKeylistUpdate(ctx, senderDID, msg)

	case mediate.TypeKeylistQuery:
		return handler.routeKeylistQuery(ctx, senderDID, msg)

	case pickup.TypeStatusRequest:
		return handler.routeStatusRequest(ctx, senderDID, msg)

	case pickup.TypeDeliveryRequest:
		return handler.routeDeliveryRequest(ctx, senderDID, msg)

	case pickup.TypeMessagesReceived:
		return handler.routeMessagesReceived(ctx, senderDID, msg)

	case pickup.TypeLiveDeliveryChange:
		return handler.routeLiveDeliveryChange(msg)

	case forward.TypeForward:
		return handler.routeForward(ctx, msg)

	default:
		return handler.routePlugin(ctx, msg)
	}
}

func (handler *MessageHandler) routeMediateRequest(ctx context.Context, senderDID string) (*reply, error) {
	replyType, routingDID, err := handler.mediate.HandleMediateRequest(ctx, senderDID)
	if err != nil {
		return nil, err
	}

	if replyType == mediate.TypeMediateDeny {
		return &reply{Type: replyType, Body: []byte(`{}`)}, nil
	}

	body, err := json.Marshal(struct {
		RoutingDID string `json:"routing_did"`
	}{routingDID})
	if err != nil {
		return nil, err
	}

	return &reply{Type: replyType, Body: body}, nil
}

func (handler *MessageHandler) routeKeylistUpdate(ctx context.Context, senderDID string, msg message.Message) (*reply, error) {
	var req struct {
		Updates []mediate.KeylistCommand `json:"updates"`
	}
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrMalformedRequest, err)
	}

	confirmations, err := handler.mediate.HandleKeylistUpdate(ctx, senderDID, req.Updates)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(struct {
		Updated []mediate.KeylistConfirmation `json:"updated"`
	}{confirmations})
	if err != nil {
		return nil, err
	}

	return &reply{Type: mediate.TypeKeylistUpdateResponse, Body: body}, nil
}

func (handler *MessageHandler) routeKeylistQuery(ctx context.Context, senderDID string, msg message.Message) (*reply, error) {
	var req struct {
		Paginate *mediate.Paginate `json:"paginate,omitempty"`
	}
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrMalformedRequest, err)
	}

	keys, err := handler.mediate.HandleKeylistQuery(ctx, senderDID, req.Paginate)
	if err != nil {
		return nil, err
	}

	type keylistEntry struct {
		RecipientDID string `json:"recipient_did"`
	}

	entries := make([]keylistEntry, len(keys))
	for i, k := range keys {
		entries[i] = keylistEntry{RecipientDID: k}
	}

	body, err := json.Marshal(struct {
		Keys []keylistEntry `json:"keys"`
	}{entries})
	if err != nil {
		return nil, err
	}

	return &reply{Type: mediate.TypeKeylist, Body: body}, nil
}

func (handler *MessageHandler) routeStatusRequest(ctx context.Context, senderDID string, msg message.Message) (*reply, error) {
	var req struct {
		RecipientDID string `json:"recipient_did,omitempty"`
	}
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrMalformedRequest, err)
	}

	count, err := handler.pickup.HandleStatusRequest(ctx, senderDID, req.RecipientDID)
	if err != nil {
		return nil, err
	}

	return &reply{Type: pickup.TypeStatus, Body: statusBody(count)}, nil
}

func (handler *MessageHandler) routeDeliveryRequest(ctx context.Context, senderDID string, msg message.Message) (*reply, error) {
	var req struct {
		Limit        int    `json:"limit"`
		RecipientDID string `json:"recipient_did,omitempty"`
	}
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrMalformedRequest, err)
	}

	msgs, err := handler.pickup.HandleDeliveryRequest(ctx, senderDID, req.RecipientDID, req.Limit)
	if err != nil {
		return nil, err
	}

	if len(msgs) == 0 {
		return &reply{Type: pickup.TypeStatus, Body: statusBody(0)}, nil
	}

	attachments := make([]message.Attachment, len(msgs))
	for i, m := range msgs {
		attachments[i] = message.Attachment{ID: m.ID, Data: message.AttachmentData{JSON: m.Payload}}
	}

	return &reply{Type: pickup.TypeDelivery, Body: []byte(`{}`), Attachments: attachments}, nil
}

func (handler *MessageHandler) routeMessagesReceived(ctx context.Context, senderDID string, msg message.Message) (*reply, error) {
	var req struct {
		MessageIDList []string `json:"message_id_list"`
	}
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrMalformedRequest, err)
	}

	count, err := handler.pickup.HandleMessagesReceived(ctx, senderDID, req.MessageIDList)
	if err != nil {
		return nil, err
	}

	return &reply{Type: pickup.TypeStatus, Body: statusBody(count)}, nil
}

func (handler *MessageHandler) routeLiveDeliveryChange(msg message.Message) (*reply, error) {
	var req struct {
		LiveDelivery bool `json:"live_delivery"`
	}
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrMalformedRequest, err)
	}

	if !handler.pickup.HandleLiveDeliveryChange(req.LiveDelivery) {
		return nil, nil
	}

	body, err := json.Marshal(struct {
		Code string `json:"code"`
	}{pickup.LiveModeNotSupported})
	if err != nil {
		return nil, err
	}

	return &reply{Type: pickup.TypeProblemReport, Body: body}, nil
}

func (handler *MessageHandler) routeForward(ctx context.Context, msg message.Message) (*reply, error) {
	var req struct {
		Next string `json:"next"`
	}
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrMalformedRequest, err)
	}

	var payload []byte
	if len(msg.Attachments) > 0 {
		payload = msg.Attachments[0].Data.JSON
	}

	if err := handler.forward.HandleForward(ctx, req.Next, payload); err != nil {
		return nil, err
	}

	return nil, nil
}

func (handler *MessageHandler) routePlugin(ctx context.Context, msg message.Message) (*reply, error) {
	h, err := handler.plugins.Route(msg.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errorx.ErrInvalidMessageType, msg.Type)
	}

	body, err := h(ctx, msg.Body)
	if err != nil {
		return nil, err
	}

	return &reply{Type: msg.Type, Body: body}, nil
}

func statusBody(count int) []byte {
	body, _ := json.Marshal(struct {
		MessageCount int `json:"message_count"`
	}{count})

	return body
}
