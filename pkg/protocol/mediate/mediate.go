/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mediate implements the Coordinate-Mediation 2.0 state machine:
// mediate-request/grant/deny, keylist-update, and keylist-query
// (spec.md §4.4).
package mediate

import (
	"context"
	"fmt"

	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/did/peer"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/adorsys/didcomm-mediator/pkg/repository"
	"github.com/google/uuid"
)

// Protocol message type URIs (spec.md §6).
const (
	TypeMediateRequest        = "https://didcomm.org/coordinate-mediation/2.0/mediate-request"
	TypeMediateGrant          = "https://didcomm.org/coordinate-mediation/2.0/mediate-grant"
	TypeMediateDeny           = "https://didcomm.org/coordinate-mediation/2.0/mediate-deny"
	TypeKeylistUpdate         = "https://didcomm.org/coordinate-mediation/2.0/keylist-update"
	TypeKeylistUpdateResponse = "https://didcomm.org/coordinate-mediation/2.0/keylist-update-response"
	TypeKeylistQuery          = "https://didcomm.org/coordinate-mediation/2.0/keylist-query"
	TypeKeylist               = "https://didcomm.org/coordinate-mediation/2.0/keylist"
)

// KeylistAction is a keylist-update command's action.
type KeylistAction string

const (
	ActionAdd     KeylistAction = "add"
	ActionRemove  KeylistAction = "remove"
)

// IsKnown reports whether a is add or remove; any other value is the
// unknown(...) action of spec.md §4.4.
func (a KeylistAction) IsKnown() bool {
	return a == ActionAdd || a == ActionRemove
}

// KeylistResult is a keylist-update command's outcome.
type KeylistResult string

const (
	ResultSuccess     KeylistResult = "success"
	ResultNoChange    KeylistResult = "no_change"
	ResultClientError KeylistResult = "client_error"
	ResultServerError KeylistResult = "server_error"
)

// KeylistCommand is one entry of a keylist-update batch.
type KeylistCommand struct {
	RecipientDID string        `json:"recipient_did"`
	Action       KeylistAction `json:"action"`
}

// KeylistConfirmation is one entry of the keylist-update-response batch.
type KeylistConfirmation struct {
	RecipientDID string        `json:"recipient_did"`
	Action       KeylistAction `json:"action"`
	Result       KeylistResult `json:"result"`
}

// Paginate is keylist-query's optional pagination request.
type Paginate struct {
	Limit  int
	Offset int
}

// Handler implements the coordinate-mediation state machine over a
// repository and the mediator's own published endpoint (spec.md §4.4).
type Handler struct {
	repo           repository.Repository
	publicEndpoint string
	ownDID         string
}

// New builds a Handler. ownDID is the mediator's own DID (spec.md §3's
// Connection.mediator_did), distinct from the per-client routing DID
// grantMediation mints.
func New(repo repository.Repository, publicEndpoint, ownDID string) *Handler {
	return &Handler{repo: repo, publicEndpoint: publicEndpoint, ownDID: ownDID}
}

// HandleMediateRequest implements the UNKNOWN -> GRANTED transition: a
// first-time sender receives a freshly minted did:peer:2 routing DID and
// a new connection record; a sender who already has a connection
// receives mediate-deny (spec.md §4.4).
func (h *Handler) HandleMediateRequest(ctx context.Context, senderDID string) (replyType string, routingDID string, err error) {
	existing, err := h.repo.Connections().FindByClientDID(ctx, senderDID)
	if err != nil && err != repository.ErrNotFound {
		return "", "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	if existing != nil {
		return TypeMediateDeny, "", nil
	}

	routingDID, err = h.grantMediation(ctx, senderDID)
	if err != nil {
		return "", "", err
	}

	return TypeMediateGrant, routingDID, nil
}

// grantMediation builds the fresh did:peer:2 routing DID, persists its
// two keyAgreement/authentication secrets, and persists the new
// connection record (spec.md §4.4, "Mediate-grant routing DID
// construction").
func (h *Handler) grantMediation(ctx context.Context, senderDID string) (string, error) {
	edKp, err := crypto.GenerateEd25519Keypair()
	if err != nil {
		return "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	xKp, err := crypto.GenerateX25519Keypair()
	if err != nil {
		return "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	edMultikey, err := crypto.EncodeMultikey(edKp.Algorithm, edKp.PublicKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	xMultikey, err := crypto.EncodeMultikey(xKp.Algorithm, xKp.PublicKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	services := []did.Service{{
		ID:              "#didcomm",
		Type:            did.DIDCommMessagingType,
		ServiceEndpoint: did.NewURIEndpoint(h.publicEndpoint),
	}}

	routingDID, err := peer.Create2([]peer.PurposedKey{
		{Purpose: peer.Verification, PublicKeyMultibase: edMultikey},
		{Purpose: peer.Encryption, PublicKeyMultibase: xMultikey},
	}, services)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	doc, err := peer.Expand2(routingDID, did.Multikey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	authKid := routingDID + doc.Authentication[0].Reference
	agreementKid := routingDID + doc.KeyAgreement[0].Reference

	authJWK, err := crypto.PublicKeyToJWK(edKp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	agreementJWK, err := crypto.PublicKeyToJWK(xKp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	if err := h.repo.Secrets().PutSecret(ctx, &repository.Secret{Kid: authKid, Material: toRepoJWK(authJWK)}); err != nil {
		return "", fmt.Errorf("%w: %w", errorx.ErrIoError, err)
	}

	if err := h.repo.Secrets().PutSecret(ctx, &repository.Secret{Kid: agreementKid, Material: toRepoJWK(agreementJWK)}); err != nil {
		return "", fmt.Errorf("%w: %w", errorx.ErrIoError, err)
	}

	conn := &repository.Connection{
		ID:          uuid.NewString(),
		ClientDID:   senderDID,
		MediatorDID: h.ownDID,
		RoutingDID:  routingDID,
		Keylist:     nil,
	}

	if err := h.repo.Connections().Insert(ctx, conn); err != nil {
		return "", fmt.Errorf("%w: %w", errorx.ErrIoError, err)
	}

	return routingDID, nil
}

// HandleKeylistUpdate applies spec.md §4.4's keylist-update semantics:
// duplicate detection is against the submitted batch as it started, not
// the keylist being mutated; persistence failure degrades every
// non-ClientError confirmation to ServerError rather than partially
// applying the batch.
func (h *Handler) HandleKeylistUpdate(ctx context.Context, senderDID string, commands []KeylistCommand) ([]KeylistConfirmation, error) {
	conn, err := h.repo.Connections().FindByClientDID(ctx, senderDID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errorx.ErrUncoordinatedSender
		}

		return nil, fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	seen := map[string]int{}
	for _, c := range commands {
		seen[c.RecipientDID]++
	}

	keylist := append([]string(nil), conn.Keylist...)
	confirmations := make([]KeylistConfirmation, len(commands))

	for i, cmd := range commands {
		switch {
		case !cmd.Action.IsKnown():
			confirmations[i] = KeylistConfirmation{cmd.RecipientDID, cmd.Action, ResultClientError}
		case seen[cmd.RecipientDID] > 1:
			confirmations[i] = KeylistConfirmation{cmd.RecipientDID, cmd.Action, ResultClientError}
		case cmd.Action == ActionAdd:
			if containsString(keylist, cmd.RecipientDID) {
				confirmations[i] = KeylistConfirmation{cmd.RecipientDID, cmd.Action, ResultNoChange}
			} else {
				keylist = append(keylist, cmd.RecipientDID)
				confirmations[i] = KeylistConfirmation{cmd.RecipientDID, cmd.Action, ResultSuccess}
			}
		default: // remove
			if idx := indexOfString(keylist, cmd.RecipientDID); idx >= 0 {
				keylist[idx] = keylist[len(keylist)-1]
				keylist = keylist[:len(keylist)-1]
				confirmations[i] = KeylistConfirmation{cmd.RecipientDID, cmd.Action, ResultSuccess}
			} else {
				confirmations[i] = KeylistConfirmation{cmd.RecipientDID, cmd.Action, ResultNoChange}
			}
		}
	}

	conn.Keylist = keylist

	if err := h.repo.Connections().Update(ctx, conn); err != nil {
		for i, c := range confirmations {
			if c.Result != ResultClientError {
				confirmations[i].Result = ResultServerError
			}
		}
	}

	return confirmations, nil
}

// HandleKeylistQuery returns the sender's current keylist, optionally
// paginated (spec.md §4.4).
func (h *Handler) HandleKeylistQuery(ctx context.Context, senderDID string, paginate *Paginate) ([]string, error) {
	conn, err := h.repo.Connections().FindByClientDID(ctx, senderDID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errorx.ErrUncoordinatedSender
		}

		return nil, fmt.Errorf("%w: %w", errorx.ErrInternalServerError, err)
	}

	keys := conn.Keylist

	if paginate != nil {
		offset := paginate.Offset
		if offset > len(keys) {
			offset = len(keys)
		}

		end := len(keys)
		if paginate.Limit > 0 && offset+paginate.Limit < end {
			end = offset + paginate.Limit
		}

		keys = keys[offset:end]
	}

	return keys, nil
}

func containsString(ss []string, s string) bool {
	return indexOfString(ss, s) >= 0
}

func indexOfString(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}

	return -1
}

func toRepoJWK(jwk crypto.JWK) repository.JWK {
	return repository.JWK{Kty: jwk.Kty, Crv: jwk.Crv, X: jwk.X, Y: jwk.Y, D: jwk.D, Kid: jwk.Kid}
}
