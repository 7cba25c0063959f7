/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package inbound

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/did/peer"
	"github.com/adorsys/didcomm-mediator/pkg/didcomm/message"
	"github.com/adorsys/didcomm-mediator/pkg/didcomm/packer"
	didresolver "github.com/adorsys/didcomm-mediator/pkg/didcomm/resolver"
	"github.com/adorsys/didcomm-mediator/pkg/plugin"
	"github.com/adorsys/didcomm-mediator/pkg/protocol/forward"
	"github.com/adorsys/didcomm-mediator/pkg/protocol/mediate"
	"github.com/adorsys/didcomm-mediator/pkg/protocol/pickup"
	"github.com/adorsys/didcomm-mediator/pkg/repository"
	"github.com/adorsys/didcomm-mediator/pkg/repository/memory"
	"github.com/stretchr/testify/require"
)

// identity is a did:peer:2 party with its keyAgreement secret persisted,
// built the same way pkg/didcomm/packer's round-trip test builds one.
type identity struct {
	did string
	kid string
}

func newIdentity(t *testing.T, secrets repository.Secrets, endpoint string) identity {
	t.Helper()

	edKp, err := crypto.GenerateEd25519Keypair()
	require.NoError(t, err)

	xKp, err := crypto.GenerateX25519Keypair()
	require.NoError(t, err)

	edMultikey, err := crypto.EncodeMultikey(edKp.Algorithm, edKp.PublicKey)
	require.NoError(t, err)

	xMultikey, err := crypto.EncodeMultikey(xKp.Algorithm, xKp.PublicKey)
	require.NoError(t, err)

	var services []did.Service
	if endpoint != "" {
		services = []did.Service{{ID: "#didcomm", Type: did.DIDCommMessagingType, ServiceEndpoint: did.NewURIEndpoint(endpoint)}}
	}

	didStr, err := peer.Create2([]peer.PurposedKey{
		{Purpose: peer.Verification, PublicKeyMultibase: edMultikey},
		{Purpose: peer.Encryption, PublicKeyMultibase: xMultikey},
	}, services)
	require.NoError(t, err)

	kid := didStr + "#key-2"

	jwk, err := crypto.PublicKeyToJWK(xKp)
	require.NoError(t, err)

	err = secrets.PutSecret(context.Background(), &repository.Secret{
		Kid:      kid,
		Material: repository.JWK{Kty: jwk.Kty, Crv: jwk.Crv, X: jwk.X, D: jwk.D},
	})
	require.NoError(t, err)

	return identity{did: didStr, kid: kid}
}

// testProvider wires real components over an in-memory repository, the
// way internal/bootstrap.Mediator wires the production provider.
type testProvider struct {
	resolver did.Resolver
	packer   *packer.Packer
	repo     repository.Repository
	mediate  *mediate.Handler
	pickup   *pickup.Handler
	forward  *forward.Handler
	plugins  *plugin.Container
	ownDID   string
	ownKid   string
}

func (p *testProvider) Resolver() did.Resolver              { return p.resolver }
func (p *testProvider) Packer() *packer.Packer               { return p.packer }
func (p *testProvider) Connections() repository.Connections { return p.repo.Connections() }
func (p *testProvider) Mediate() *mediate.Handler            { return p.mediate }
func (p *testProvider) Pickup() *pickup.Handler              { return p.pickup }
func (p *testProvider) Forward() *forward.Handler            { return p.forward }
func (p *testProvider) Plugins() *plugin.Container           { return p.plugins }
func (p *testProvider) OwnDID() string                       { return p.ownDID }
func (p *testProvider) OwnAgreementKid() string              { return p.ownKid }

func newTestHandler(t *testing.T) (*MessageHandler, *testProvider, identity) {
	t.Helper()

	store := memory.New()

	mediatorID := newIdentity(t, store.Secrets(), "https://mediator.example/didcomm")
	resolver := didresolver.New(mustExpand(t, mediatorID.did))

	container, err := plugin.New(nil)
	require.NoError(t, err)
	require.NoError(t, container.Load(context.Background()))

	p := &testProvider{
		resolver: resolver,
		packer:   packer.New(resolver, store.Secrets()),
		repo:     store,
		mediate:  mediate.New(store, "https://mediator.example/didcomm", mediatorID.did),
		pickup:   pickup.New(store),
		forward:  forward.New(store),
		plugins:  container,
		ownDID:   mediatorID.did,
		ownKid:   mediatorID.kid,
	}

	client := newIdentity(t, store.Secrets(), "")

	return NewInboundMessageHandler(p), p, client
}

func mustExpand(t *testing.T, didStr string) *did.Document {
	t.Helper()

	doc, err := peer.Expand2(didStr, did.Multikey)
	require.NoError(t, err)

	return doc
}

// pack wraps a plaintext body for msgType in a return_route=all
// envelope and authcrypts it from client to the mediator.
func pack(t *testing.T, p *testProvider, client identity, msgType string, body []byte) []byte {
	t.Helper()

	msg := message.Message{
		ID:        "test-msg-1",
		Type:      msgType,
		From:      client.did,
		To:        []string{p.ownDID},
		Body:      body,
		Transport: &message.TransportDecorator{ReturnRoute: "all"},
	}

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	packed, err := p.packer.Pack(context.Background(), raw, client.kid, p.ownDID)
	require.NoError(t, err)

	return packed
}

func unpackReply(t *testing.T, p *testProvider, client identity, reply []byte) message.Message {
	t.Helper()

	plaintext, _, err := p.packer.Unpack(context.Background(), packer.ContentType(), reply)
	require.NoError(t, err)

	var msg message.Message
	require.NoError(t, json.Unmarshal(plaintext, &msg))

	return msg
}

// TestHandleInboundEnvelopeKeylistUpdateFieldNames exercises the
// keylist-update wire format end to end: the JSON body uses
// "recipient_did"/"action" (spec.md §4.4/§6), and the reply's "updated"
// array must echo the same recipient_did back, not an empty string.
func TestHandleInboundEnvelopeKeylistUpdateFieldNames(t *testing.T) {
	handler, p, client := newTestHandler(t)

	require.NoError(t, p.repo.Connections().Insert(context.Background(), &repository.Connection{
		ID:          "conn-1",
		ClientDID:   client.did,
		MediatorDID: p.ownDID,
		RoutingDID:  p.ownDID,
	}))

	body := []byte(`{"updates":[
		{"recipient_did":"did:key:z6MkK1","action":"add"},
		{"recipient_did":"did:key:z6MkK2","action":"add"}
	]}`)

	packed := pack(t, p, client, mediate.TypeKeylistUpdate, body)

	replyRaw, err := handler.HandleInboundEnvelope(context.Background(), packer.ContentType(), packed)
	require.NoError(t, err)
	require.NotNil(t, replyRaw)

	reply := unpackReply(t, p, client, replyRaw)
	require.Equal(t, mediate.TypeKeylistUpdateResponse, reply.Type)

	var parsed struct {
		Updated []mediate.KeylistConfirmation `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(reply.Body, &parsed))
	require.Len(t, parsed.Updated, 2)

	require.Equal(t, "did:key:z6MkK1", parsed.Updated[0].RecipientDID)
	require.Equal(t, mediate.ResultSuccess, parsed.Updated[0].Result)
	require.Equal(t, "did:key:z6MkK2", parsed.Updated[1].RecipientDID)
	require.Equal(t, mediate.ResultSuccess, parsed.Updated[1].Result)

	conn, err := p.repo.Connections().FindByClientDID(context.Background(), client.did)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"did:key:z6MkK1", "did:key:z6MkK2"}, conn.Keylist)
}

// TestHandleInboundEnvelopeMediateRequest exercises the mediate-request
// -> mediate-grant transition and checks that the resulting connection
// records the mediator's own DID separately from the routing DID
// minted for this client (spec.md §3).
func TestHandleInboundEnvelopeMediateRequest(t *testing.T) {
	handler, p, client := newTestHandler(t)

	packed := pack(t, p, client, mediate.TypeMediateRequest, []byte(`{}`))

	replyRaw, err := handler.HandleInboundEnvelope(context.Background(), packer.ContentType(), packed)
	require.NoError(t, err)

	reply := unpackReply(t, p, client, replyRaw)
	require.Equal(t, mediate.TypeMediateGrant, reply.Type)

	var parsed struct {
		RoutingDID string `json:"routing_did"`
	}
	require.NoError(t, json.Unmarshal(reply.Body, &parsed))
	require.NotEmpty(t, parsed.RoutingDID)

	conn, err := p.repo.Connections().FindByClientDID(context.Background(), client.did)
	require.NoError(t, err)
	require.Equal(t, p.ownDID, conn.MediatorDID)
	require.Equal(t, parsed.RoutingDID, conn.RoutingDID)
	require.NotEqual(t, conn.MediatorDID, conn.RoutingDID)
}
