/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"
	mh "github.com/multiformats/go-multihash"
)

// SHA256Multihash prepends the multihash header (0x12 0x20) to a SHA-256
// digest of data and base58btc-encodes the result (spec.md §4.1), used for
// did:peer:1/3/4 shortening.
func SHA256Multihash(data []byte) (string, error) {
	digest := sha256.Sum256(data)

	encoded, err := mh.Encode(digest[:], mh.SHA2_256)
	if err != nil {
		return "", err
	}

	return "z" + base58.Encode(encoded), nil
}

// VerifySHA256Multihash reports whether multihashStr is the SHA-256
// multihash of data (used by did:peer:4 shorten/expand to validate the
// embedded hash, spec.md §4.2).
func VerifySHA256Multihash(multihashStr string, data []byte) (bool, error) {
	want, err := SHA256Multihash(data)
	if err != nil {
		return false, err
	}

	return want == multihashStr, nil
}
