/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import "strings"

// Resolver is the minimal contract the envelope pipeline and protocol
// handlers need from DID resolution: produce the document a DID string
// identifies (spec.md §4.3). Method-specific resolution lives in
// pkg/did/key and pkg/did/peer; callers compose a dispatcher over this
// interface rather than importing those packages directly, avoiding an
// import cycle between pkg/did and its method subpackages.
type Resolver interface {
	Resolve(did string) (*Document, error)
}

// HasPrefix is a small convenience used by dispatching resolvers to
// branch on method without repeating strings.HasPrefix call sites.
func HasPrefix(didStr, prefix string) bool {
	return strings.HasPrefix(didStr, prefix)
}
