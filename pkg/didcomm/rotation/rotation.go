/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package rotation verifies from_prior DID-rotation JWTs and applies
// their effect to a connection record (spec.md §4.3, "DID rotation").
package rotation

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/adorsys/didcomm-mediator/pkg/repository"
	"github.com/golang-jwt/jwt/v4"
)

// claims is the from_prior JWT body: iss is the prior DID, sub is the
// new DID.
type claims struct {
	jwt.StandardClaims
}

// Verify checks tokenStr's signature against the resolved signing key of
// its issuer (the previous DID) and returns (previousDID, newDID).
// Unknown issuer surfaces errorx.ErrUnknownIssuer; any other validation
// failure surfaces errorx.ErrInvalidFromPrior (spec.md §4.3).
func Verify(resolver did.Resolver, tokenStr string) (previousDID, newDID string, err error) {
	var body claims

	unknownIssuer := false

	token, parseErr := jwt.ParseWithClaims(tokenStr, &body, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != "EdDSA" {
			return nil, errorx.ErrInvalidFromPrior
		}

		if body.Issuer == "" {
			return nil, errorx.ErrInvalidFromPrior
		}

		doc, rErr := resolver.Resolve(body.Issuer)
		if rErr != nil {
			unknownIssuer = true
			return nil, errorx.ErrUnknownIssuer
		}

		kid, _ := t.Header["kid"].(string)

		pub, kErr := authenticationKey(doc, kid)
		if kErr != nil {
			unknownIssuer = true
			return nil, errorx.ErrUnknownIssuer
		}

		return pub, nil
	})

	if parseErr != nil || token == nil || !token.Valid {
		if unknownIssuer {
			return "", "", fmt.Errorf("%w: %w", errorx.ErrUnknownIssuer, parseErr)
		}

		return "", "", fmt.Errorf("%w: %w", errorx.ErrInvalidFromPrior, parseErr)
	}

	return body.Issuer, body.Subject, nil
}

// Sign produces a from_prior JWT; the tests use it to exercise the
// rotation flow end to end.
func Sign(previousDID, previousKid string, previousPriv ed25519.PrivateKey, newDID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims{
		StandardClaims: jwt.StandardClaims{Issuer: previousDID, Subject: newDID},
	})
	token.Header["kid"] = previousKid

	return token.SignedString(previousPriv)
}

func authenticationKey(doc *did.Document, kid string) (ed25519.PublicKey, error) {
	for _, rel := range doc.Authentication {
		var vm *did.VerificationMethod

		if rel.Embedded != nil {
			vm = rel.Embedded
		} else {
			vm = findVerificationMethod(doc, rel.Reference)
		}

		if vm == nil || (kid != "" && vm.ID != kid) {
			continue
		}

		return decodeEd25519PublicKey(vm)
	}

	return nil, errorx.ErrUnknownIssuer
}

func decodeEd25519PublicKey(vm *did.VerificationMethod) (ed25519.PublicKey, error) {
	if vm.PublicKeyMultibase != "" {
		alg, raw, err := crypto.DecodeMultikey(vm.PublicKeyMultibase)
		if err != nil {
			return nil, err
		}

		if alg != crypto.Ed25519 {
			return nil, errorx.ErrUnsupported
		}

		return ed25519.PublicKey(raw), nil
	}

	if jwk, ok := vm.PublicKeyJwk.(crypto.JWK); ok {
		kp, err := crypto.JWKToKeypair(jwk)
		if err != nil {
			return nil, err
		}

		if kp.Algorithm != crypto.Ed25519 {
			return nil, errorx.ErrUnsupported
		}

		return ed25519.PublicKey(kp.PublicKey), nil
	}

	return nil, errorx.ErrInvalidPublicKey
}

func findVerificationMethod(doc *did.Document, id string) *did.VerificationMethod {
	for i := range doc.VerificationMethod {
		if doc.VerificationMethod[i].ID == id {
			return &doc.VerificationMethod[i]
		}
	}

	return nil
}

// ApplyRotation implements spec.md §4.3's rotation side effects: the
// connection is looked up by previousDID; an empty newDID deletes it;
// otherwise the keylist entry and client_did are rewritten to newDID.
func ApplyRotation(ctx context.Context, conns repository.Connections, previousDID, newDID string) error {
	conn, err := conns.FindByClientDID(ctx, previousDID)
	if err != nil {
		return err
	}

	if newDID == "" {
		return conns.Delete(ctx, conn.ID)
	}

	found := false

	for i, k := range conn.Keylist {
		if k == previousDID {
			conn.Keylist[i] = newDID
			found = true

			break
		}
	}

	if !found {
		conn.Keylist = append(conn.Keylist, newDID)
	}

	conn.ClientDID = newDID

	return conns.Update(ctx, conn)
}
