/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	client "github.com/adorsys/didcomm-mediator/pkg/client/connection"
	didcomm "github.com/adorsys/didcomm-mediator/pkg/didcomm/common/service"
)

// QueryConnectionRequest is used for querying connections.
type QueryConnectionRequest = client.QueryParams

// QueryConnectionResponse is used for returning query connection results.
type QueryConnectionResponse struct {
	Results []*didcomm.ConnectionRecord `json:"results,omitempty"`
}

// RotateDIDRequest carries an already-issued from_prior JWT (spec.md
// §4.3) for the admin surface to verify and apply.
type RotateDIDRequest struct {
	FromPrior string `json:"from_prior"`
}

// RotateDIDResponse reports the rotation's previous and new DID.
type RotateDIDResponse struct {
	OldDID string `json:"old_did"`
	NewDID string `json:"new_did"`
}
