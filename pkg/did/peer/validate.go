/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import (
	"strings"

	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
)

// validateStoredDocument enforces the did:peer method 1/4 stored-variant
// invariant: the document must not be empty, its root id must be empty,
// and every internal id/reference must be relative ("#..."). Grounded on
// original_source's validate_input_document /
// are_all_ids_and_references_relative (spec.md §4.2).
func validateStoredDocument(doc *did.Document) error {
	if isDocumentEmpty(doc) {
		return errorx.ErrInvalidStoredVariant
	}

	if doc.ID != "" {
		return errorx.ErrInvalidStoredVariant
	}

	if !allRelative(doc) {
		return errorx.ErrInvalidStoredVariant
	}

	return nil
}

func isDocumentEmpty(doc *did.Document) bool {
	return len(doc.VerificationMethod) == 0 &&
		len(doc.Authentication) == 0 &&
		len(doc.AssertionMethod) == 0 &&
		len(doc.KeyAgreement) == 0 &&
		len(doc.CapabilityInvocation) == 0 &&
		len(doc.CapabilityDelegation) == 0 &&
		len(doc.Service) == 0
}

func isRelative(s string) bool { return strings.HasPrefix(s, "#") }

func relationshipsRelative(rels []did.VerificationRelationship) bool {
	for _, r := range rels {
		if r.Embedded != nil {
			if !isRelative(r.Embedded.ID) {
				return false
			}

			continue
		}

		if !isRelative(r.Reference) {
			return false
		}
	}

	return true
}

func allRelative(doc *did.Document) bool {
	for _, vm := range doc.VerificationMethod {
		if !isRelative(vm.ID) {
			return false
		}
	}

	if !relationshipsRelative(doc.Authentication) ||
		!relationshipsRelative(doc.AssertionMethod) ||
		!relationshipsRelative(doc.KeyAgreement) ||
		!relationshipsRelative(doc.CapabilityInvocation) ||
		!relationshipsRelative(doc.CapabilityDelegation) {
		return false
	}

	for _, svc := range doc.Service {
		if !isRelative(svc.ID) {
			return false
		}
	}

	return true
}
