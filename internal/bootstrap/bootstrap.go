/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package bootstrap wires the mediator's own DID identity and every
// protocol handler into the concrete provider the inbound dispatcher
// depends on (spec.md §5, "Mediator DID document" is produced once at
// startup).
package bootstrap

import (
	"context"
	"fmt"

	"github.com/adorsys/didcomm-mediator/internal/config"
	"github.com/adorsys/didcomm-mediator/pkg/breaker"
	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/did/peer"
	"github.com/adorsys/didcomm-mediator/pkg/didcomm/dispatcher/inbound"
	"github.com/adorsys/didcomm-mediator/pkg/didcomm/packer"
	didresolver "github.com/adorsys/didcomm-mediator/pkg/didcomm/resolver"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/adorsys/didcomm-mediator/pkg/plugin"
	"github.com/adorsys/didcomm-mediator/pkg/protocol/forward"
	"github.com/adorsys/didcomm-mediator/pkg/protocol/mediate"
	"github.com/adorsys/didcomm-mediator/pkg/protocol/pickup"
	"github.com/adorsys/didcomm-mediator/pkg/repository"
)

// Mediator owns the fully wired mediator instance: its own DID document
// and keys, the envelope pipeline, every protocol handler, and the
// outbound-dependency circuit breaker (spec.md §4.7).
type Mediator struct {
	resolver    *didresolver.Resolver
	packer      *packer.Packer
	repo        repository.Repository
	mediate     *mediate.Handler
	pickup      *pickup.Handler
	forward     *forward.Handler
	plugins     *plugin.Container
	breaker     *breaker.Breaker
	ownDID      string
	ownAgreeKid string
}

// New builds a Mediator over repo: it mints a fresh did:peer:2 identity
// and persists its keys, then wires pickup, mediate, forward, and
// plugins on top, plus a breaker.Breaker over cfg.Breaker guarding any
// outbound call a future transport driver makes.
func New(cfg config.Config, repo repository.Repository, plugins []*plugin.Plugin) (*Mediator, error) {
	ownDoc, _, agreementKid, err := bootstrapIdentity(cfg, repo)
	if err != nil {
		return nil, err
	}

	resolver := didresolver.New(ownDoc)

	container, err := plugin.New(plugins)
	if err != nil {
		return nil, err
	}

	if err := container.Load(context.Background()); err != nil {
		return nil, err
	}

	m := &Mediator{
		resolver:    resolver,
		packer:      packer.New(resolver, repo.Secrets()),
		repo:        repo,
		mediate:     mediate.New(repo, cfg.PublicEndpoint, ownDoc.ID),
		pickup:      pickup.New(repo),
		forward:     forward.New(repo),
		plugins:     container,
		breaker:     breaker.New(breaker.Config{MaxRetries: cfg.Breaker.MaxRetries, HalfOpenMaxFailures: cfg.Breaker.HalfOpenMaxFailures, ResetTimeout: cfg.Breaker.ResetTimeout}),
		ownDID:      ownDoc.ID,
		ownAgreeKid: agreementKid,
	}

	return m, nil
}

// Resolver returns the mediator's DID resolver.
func (m *Mediator) Resolver() did.Resolver { return m.resolver }

// Connections returns the connection repository.
func (m *Mediator) Connections() repository.Connections { return m.repo.Connections() }

// Packer returns the envelope pack/unpack pipeline.
func (m *Mediator) Packer() *packer.Packer { return m.packer }

// Mediate returns the coordinate-mediation handler.
func (m *Mediator) Mediate() *mediate.Handler { return m.mediate }

// Pickup returns the message-pickup handler.
func (m *Mediator) Pickup() *pickup.Handler { return m.pickup }

// Forward returns the routing-forward handler.
func (m *Mediator) Forward() *forward.Handler { return m.forward }

// Plugins returns the loaded plugin container.
func (m *Mediator) Plugins() *plugin.Container { return m.plugins }

// OwnDID returns the mediator's own DID string.
func (m *Mediator) OwnDID() string { return m.ownDID }

// OwnAgreementKid returns the absolute kid of the mediator's own
// keyAgreement key, used to pack reply envelopes.
func (m *Mediator) OwnAgreementKid() string { return m.ownAgreeKid }

// Breaker returns the circuit breaker guarding outbound dependencies.
func (m *Mediator) Breaker() *breaker.Breaker { return m.breaker }

// InboundHandler builds the core dispatcher over this Mediator.
func (m *Mediator) InboundHandler() *inbound.MessageHandler {
	return inbound.NewInboundMessageHandler(m)
}

// bootstrapIdentity mints a fresh did:peer:2 identity for the mediator on
// every call and persists its secrets, the same construction
// mediate.Handler.grantMediation uses to mint a client's routing DID
// (spec.md §4.4), reusing it here for the mediator's own identity.
func bootstrapIdentity(cfg config.Config, repo repository.Repository) (doc *did.Document, authKid, agreementKid string, err error) {
	edKp, err := crypto.GenerateEd25519Keypair()
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	xKp, err := crypto.GenerateX25519Keypair()
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	edMultikey, err := crypto.EncodeMultikey(edKp.Algorithm, edKp.PublicKey)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	xMultikey, err := crypto.EncodeMultikey(xKp.Algorithm, xKp.PublicKey)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	services := []did.Service{{
		ID:              "#didcomm",
		Type:            did.DIDCommMessagingType,
		ServiceEndpoint: did.NewURIEndpoint(cfg.PublicEndpoint),
	}}

	ownDIDStr, err := peer.Create2([]peer.PurposedKey{
		{Purpose: peer.Verification, PublicKeyMultibase: edMultikey},
		{Purpose: peer.Encryption, PublicKeyMultibase: xMultikey},
	}, services)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	ownDoc, err := peer.Expand2(ownDIDStr, did.Multikey)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	authKid = ownDIDStr + ownDoc.Authentication[0].Reference
	agreementKid = ownDIDStr + ownDoc.KeyAgreement[0].Reference

	authJWK, err := crypto.PublicKeyToJWK(edKp)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	agreementJWK, err := crypto.PublicKeyToJWK(xKp)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	ctx := context.Background()

	if err := repo.Secrets().PutSecret(ctx, &repository.Secret{Kid: authKid, Material: toRepoJWK(authJWK)}); err != nil {
		return nil, "", "", fmt.Errorf("%w: %w", errorx.ErrIoError, err)
	}

	if err := repo.Secrets().PutSecret(ctx, &repository.Secret{Kid: agreementKid, Material: toRepoJWK(agreementJWK)}); err != nil {
		return nil, "", "", fmt.Errorf("%w: %w", errorx.ErrIoError, err)
	}

	return ownDoc, authKid, agreementKid, nil
}

func toRepoJWK(jwk crypto.JWK) repository.JWK {
	return repository.JWK{Kty: jwk.Kty, Crv: jwk.Crv, X: jwk.X, Y: jwk.Y, D: jwk.D, Kid: jwk.Kid}
}
