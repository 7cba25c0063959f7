/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
)

// jsonMulticodecPrefix is the multicodec "json" code (0x0200) varint
// encoded, prepended to the canonicalized document before the did:peer:4
// embedding is hashed (spec.md §4.2). Hardcoded for the same reason the
// algorithm prefix table is: original_source itself hardcodes
// MULTICODEC_JSON rather than pulling in a codec registry library.
var jsonMulticodecPrefix = [2]byte{0x80, 0x04}

// Method4Regex gates both forms of did:peer:4 (spec.md §4.2, §6).
var Method4Regex = regexp.MustCompile(`^did:peer:(4(z)([1-9a-km-zA-HJ-NP-Z]+)(:(z)([1-9a-km-zA-HJ-NP-Z]+))?)$`)

// Create4 builds a did:peer:4 long form: validates the stored-variant
// input document, canonicalizes it with JCS, prepends the multicodec
// JSON prefix, Base58-Btc multibase-encodes the result, multihashes the
// encoding, and emits "did:peer:4{hash}:{encoded}" (spec.md §4.2).
func Create4(doc *did.Document) (string, error) {
	if err := validateStoredDocument(doc); err != nil {
		return "", err
	}

	canon, err := crypto.Canonicalize(doc)
	if err != nil {
		return "", err
	}

	prefixed := append([]byte{jsonMulticodecPrefix[0], jsonMulticodecPrefix[1]}, canon...)

	encoded := crypto.EncodeBase58btc(prefixed)

	hash, err := crypto.SHA256Multihash([]byte(encoded))
	if err != nil {
		return "", err
	}

	return "did:peer:4" + hash + ":" + encoded, nil
}

// Shorten4 splits a did:peer:4 long form on ":", requires exactly two
// components after the "did:peer:4" prefix, recomputes the hash over the
// encoded half, and compares byte-wise: a mismatch fails with
// InvalidHash. Returns the short form "did:peer:4{hash}" (spec.md §4.2).
func Shorten4(didStr string) (string, error) {
	if !Method4Regex.MatchString(didStr) {
		return "", errorx.ErrMalformedLongPeerDID
	}

	rest := strings.TrimPrefix(didStr, "did:peer:4")

	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return "", errorx.ErrIllegalArgument
	}

	hash, encoded := parts[0], parts[1]

	ok, err := crypto.VerifySHA256Multihash(hash, []byte(encoded))
	if err != nil {
		return "", err
	}

	if !ok {
		return "", errorx.ErrInvalidHash
	}

	return "did:peer:4" + hash, nil
}

// Expand4 requires the long form to be shortenable (validating the
// embedded hash), decodes the embedded document, strips the multicodec
// JSON prefix, parses it, sets the document id to the long DID, adds the
// short form to alsoKnownAs if absent, and rewrites empty controllers to
// the long DID (spec.md §4.2).
func Expand4(didStr string) (*did.Document, error) {
	shortForm, err := Shorten4(didStr)
	if err != nil {
		return nil, err
	}

	rest := strings.TrimPrefix(didStr, "did:peer:4")

	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return nil, errorx.ErrIllegalArgument
	}

	encoded := parts[1]

	raw, err := crypto.DecodeBase58btc(encoded)
	if err != nil {
		return nil, errorx.ErrMalformedLongPeerDID
	}

	if len(raw) < 2 || raw[0] != jsonMulticodecPrefix[0] || raw[1] != jsonMulticodecPrefix[1] {
		return nil, errorx.ErrMalformedLongPeerDID
	}

	var doc did.Document
	if err := json.Unmarshal(raw[2:], &doc); err != nil {
		return nil, errorx.ErrMalformedLongPeerDID
	}

	doc.ID = didStr

	hasAlias := false

	for _, a := range doc.AlsoKnownAs {
		if a == shortForm {
			hasAlias = true
			break
		}
	}

	if !hasAlias {
		doc.AlsoKnownAs = append(doc.AlsoKnownAs, shortForm)
	}

	for i := range doc.VerificationMethod {
		if doc.VerificationMethod[i].Controller == "" {
			doc.VerificationMethod[i].Controller = didStr
		}
	}

	return &doc, nil
}
