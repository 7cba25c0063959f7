/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package key implements the did:key method (spec.md §4.2): deterministic
// derivation of a did:key DID from a raw public key, and the inverse
// expand operation that reconstitutes a full DID document.
package key

import (
	"fmt"
	"regexp"

	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
)

const prefix = "did:key:"

var didKeyRegex = regexp.MustCompile(`^did:key:(z[1-9A-HJ-NP-Za-km-z]+)$`)

// Create builds a did:key DID from an algorithm and raw public key bytes.
// Round-trip law (spec.md §8): Expand(Create(alg, bytes)) yields a
// document whose first verification method's public key equals bytes.
func Create(alg crypto.Algorithm, raw []byte) (string, error) {
	multikey, err := crypto.EncodeMultikey(alg, raw)
	if err != nil {
		return "", err
	}

	return prefix + multikey, nil
}

// Options controls Expand's behavior.
type Options struct {
	// Format selects multibase or JWK public-key rendering.
	Format did.PublicKeyFormat
	// DeriveKeyAgreement enables Ed25519->X25519 derivation of a second,
	// keyAgreement-only verification method (spec.md §4.2).
	DeriveKeyAgreement bool
}

// Expand reconstitutes a full DID document from a did:key DID string.
func Expand(didStr string, opts Options) (*did.Document, error) {
	m := didKeyRegex.FindStringSubmatch(didStr)
	if m == nil {
		return nil, errorx.ErrRegexMismatch
	}

	alg, raw, err := crypto.DecodeMultikey(m[1])
	if err != nil {
		return nil, err
	}

	vm, err := buildVerificationMethod(didStr, alg, raw, opts.Format)
	if err != nil {
		return nil, err
	}

	vmID := vm.ID

	doc := &did.Document{
		ID:                   didStr,
		VerificationMethod:   []did.VerificationMethod{vm},
		Authentication:       []did.VerificationRelationship{did.Ref(vmID)},
		AssertionMethod:      []did.VerificationRelationship{did.Ref(vmID)},
		CapabilityInvocation: []did.VerificationRelationship{did.Ref(vmID)},
		CapabilityDelegation: []did.VerificationRelationship{did.Ref(vmID)},
	}

	doc.Context = baseContext(alg, opts.Format)

	if opts.DeriveKeyAgreement && alg == crypto.Ed25519 {
		xKp, err := crypto.Keypair{Algorithm: crypto.Ed25519, PublicKey: raw}.ToX25519()
		if err != nil {
			return nil, err
		}

		kaVM, err := buildVerificationMethod(didStr, crypto.X25519, xKp.PublicKey, opts.Format)
		if err != nil {
			return nil, err
		}

		doc.VerificationMethod = append(doc.VerificationMethod, kaVM)
		doc.KeyAgreement = []did.VerificationRelationship{did.Ref(kaVM.ID)}
		doc.Context = append(doc.Context, x25519Context(opts.Format))
	}

	return doc, nil
}

func buildVerificationMethod(didStr string, alg crypto.Algorithm, raw []byte, format did.PublicKeyFormat) (did.VerificationMethod, error) {
	multikey, err := crypto.EncodeMultikey(alg, raw)
	if err != nil {
		return did.VerificationMethod{}, err
	}

	vm := did.VerificationMethod{
		ID:         fmt.Sprintf("%s#%s", didStr, multikey),
		Controller: didStr,
		Type:       verificationMethodType(alg, format),
	}

	switch format {
	case did.JWKFormat:
		jwk, err := crypto.PublicKeyToJWK(crypto.Keypair{Algorithm: alg, PublicKey: raw})
		if err != nil {
			return did.VerificationMethod{}, err
		}

		vm.PublicKeyJwk = jwk
	default:
		vm.PublicKeyMultibase = multikey
	}

	return vm, nil
}

func verificationMethodType(alg crypto.Algorithm, format did.PublicKeyFormat) string {
	if format == did.JWKFormat {
		return "JsonWebKey2020"
	}

	switch alg {
	case crypto.Ed25519:
		return "Ed25519VerificationKey2020"
	case crypto.X25519:
		return "X25519KeyAgreementKey2020"
	default:
		return "Multikey"
	}
}

func baseContext(alg crypto.Algorithm, format did.PublicKeyFormat) []string {
	ctx := []string{"https://www.w3.org/ns/did/v1"}

	if format == did.JWKFormat {
		return append(ctx, "https://w3id.org/security/suites/jws-2020/v1")
	}

	switch alg {
	case crypto.Ed25519:
		return append(ctx, "https://w3id.org/security/suites/ed25519-2020/v1")
	default:
		return ctx
	}
}

func x25519Context(format did.PublicKeyFormat) string {
	if format == did.JWKFormat {
		return "https://w3id.org/security/suites/jws-2020/v1"
	}

	return "https://w3id.org/security/suites/x25519-2020/v1"
}
