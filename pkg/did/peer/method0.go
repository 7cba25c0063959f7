/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import (
	"regexp"
	"strings"

	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/did/key"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
)

// Method0Regex gates did:peer:0 DIDs (spec.md §4.2, §6).
var Method0Regex = regexp.MustCompile(`^did:peer:(0(z)([1-9a-km-zA-HJ-NP-Z]+))$`)

// Create0 builds a did:peer:0 DID, equivalent to did:key with the
// "did:peer:0" prefix in place of "did:key:" (spec.md §4.2).
func Create0(alg crypto.Algorithm, raw []byte) (string, error) {
	didKey, err := key.Create(alg, raw)
	if err != nil {
		return "", err
	}

	return strings.Replace(didKey, "did:key:", "did:peer:0", 1), nil
}

// Expand0 reconstitutes a did:peer:0 DID document. Method 0 always
// derives the X25519 agreement key when the inception algorithm is
// Ed25519 (spec.md §4.2).
func Expand0(didStr string, format did.PublicKeyFormat) (*did.Document, error) {
	if !Method0Regex.MatchString(didStr) {
		return nil, errorx.ErrRegexMismatch
	}

	asKey := strings.Replace(didStr, "did:peer:0", "did:key:", 1)

	doc, err := key.Expand(asKey, key.Options{Format: format, DeriveKeyAgreement: true})
	if err != nil {
		return nil, err
	}

	return rewriteDIDPrefix(doc, asKey, didStr), nil
}

// rewriteDIDPrefix substitutes the did:key-derived document's id,
// controllers, and verification-method/relationship ids with the
// did:peer:0 form.
func rewriteDIDPrefix(doc *did.Document, from, to string) *did.Document {
	doc.ID = to

	for i := range doc.VerificationMethod {
		doc.VerificationMethod[i].ID = strings.Replace(doc.VerificationMethod[i].ID, from, to, 1)
		doc.VerificationMethod[i].Controller = strings.Replace(doc.VerificationMethod[i].Controller, from, to, 1)
	}

	rewrite := func(rels []did.VerificationRelationship) []did.VerificationRelationship {
		out := make([]did.VerificationRelationship, len(rels))
		for i, r := range rels {
			if r.Embedded != nil {
				r.Embedded.ID = strings.Replace(r.Embedded.ID, from, to, 1)
				out[i] = r
				continue
			}

			out[i] = did.Ref(strings.Replace(r.Reference, from, to, 1))
		}

		return out
	}

	doc.Authentication = rewrite(doc.Authentication)
	doc.AssertionMethod = rewrite(doc.AssertionMethod)
	doc.KeyAgreement = rewrite(doc.KeyAgreement)
	doc.CapabilityInvocation = rewrite(doc.CapabilityInvocation)
	doc.CapabilityDelegation = rewrite(doc.CapabilityDelegation)

	return doc
}
