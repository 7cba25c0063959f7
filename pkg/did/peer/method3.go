/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import (
	"regexp"
	"strings"

	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
)

// Method3Regex gates did:peer:3 DIDs (spec.md §4.2, §6).
var Method3Regex = regexp.MustCompile(`^did:peer:(3(z)([1-9a-km-zA-HJ-NP-Z]+))$`)

// Create3 derives the did:peer:3 short form from a did:peer:2 long-form
// DID: strips the "did:peer:2" prefix, multihashes the remainder, and
// emits "did:peer:3{multihash}". Any other input fails with
// IllegalArgument (spec.md §4.2). There is no Expand3: the short form is
// an alias, not independently resolvable.
func Create3(longForm string) (string, error) {
	if !strings.HasPrefix(longForm, "did:peer:2") {
		return "", errorx.ErrIllegalArgument
	}

	rest := strings.TrimPrefix(longForm, "did:peer:2")

	hash, err := crypto.SHA256Multihash([]byte(rest))
	if err != nil {
		return "", err
	}

	return "did:peer:3" + hash, nil
}
