/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package connection holds the wire-level query parameters shared by the
// command and REST connection-admin layers.
package connection

// QueryParams holds parameters for connection-record queries. A mediated
// connection is keyed by client_did (spec.md §3, "at most one connection
// per client_did"), so that is the only supported filter.
type QueryParams struct {
	ClientDID string `json:"client_did,omitempty"`
}
