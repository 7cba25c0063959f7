/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import (
	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
)

// Create1 canonicalizes a stored-variant document (empty root id, all
// relative references) and emits its did:peer:1 genesis hash (spec.md
// §4.2). This direction is non-invertible: there is no Expand1.
func Create1(doc *did.Document) (string, error) {
	if err := validateStoredDocument(doc); err != nil {
		return "", err
	}

	canon, err := crypto.Canonicalize(doc)
	if err != nil {
		return "", err
	}

	hash, err := crypto.SHA256Multihash(canon)
	if err != nil {
		return "", err
	}

	return "did:peer:1" + hash, nil
}
