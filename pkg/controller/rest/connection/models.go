/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	client "github.com/adorsys/didcomm-mediator/pkg/client/connection"
	"github.com/adorsys/didcomm-mediator/pkg/didcomm/common/service"
)

// queryConnections model
//
// This is used for querying a mediated connection by client_did
//
// swagger:parameters queryConnections
type queryConnections struct { // nolint: unused,deadcode
	// Params for querying connections
	//
	// in: path
	// required: true
	client.QueryParams
}

// queryConnectionResponse model
//
// This is used for returning query connections results
//
// swagger:response queryConnectionResponse
type queryConnectionResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		Results []*service.ConnectionRecord `json:"results,omitempty"`
	}
}

// rotateDIDRequest model
//
// This is used for an admin-triggered application of an already-issued
// from_prior DID rotation token (spec.md §4.3)
//
// swagger:parameters rotateDID
type rotateDIDRequest struct { // nolint: unused,deadcode
	// FromPrior is the signed from_prior JWT produced by the edge agent.
	FromPrior string `json:"from_prior"`
}

// rotateDIDResponse model
//
// response of rotate DID action
//
// swagger:response rotateDIDResponse
type rotateDIDResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		OldDID string `json:"old_did"`
		NewDID string `json:"new_did"`
	}
}
