/*
 *
 * Copyright SecureKey Technologies Inc. All Rights Reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 * /
 *
 */

// Package service carries the wire-facing connection record the admin
// query surface returns, mapped from repository.Connection (spec.md §3).
package service

import "github.com/adorsys/didcomm-mediator/pkg/repository"

// ConnectionRecord is the admin-facing view of a mediated connection.
type ConnectionRecord struct {
	ConnectionID string   `json:"id"`
	ClientDID    string   `json:"client_did"`
	MediatorDID  string   `json:"mediator_did"`
	RoutingDID   string   `json:"routing_did"`
	Keylist      []string `json:"keylist,omitempty"`
}

// FromRepository maps a repository.Connection to its admin-facing record.
func FromRepository(conn *repository.Connection) *ConnectionRecord {
	return &ConnectionRecord{
		ConnectionID: conn.ID,
		ClientDID:    conn.ClientDID,
		MediatorDID:  conn.MediatorDID,
		RoutingDID:   conn.RoutingDID,
		Keylist:      conn.Keylist,
	}
}

// DIDRotationRecord describes one from_prior-driven DID rotation (spec.md
// §4.3).
type DIDRotationRecord struct {
	OldDID    string `json:"oldDID,omitempty"`
	NewDID    string `json:"newDID,omitempty"`
	FromPrior string `json:"fromPrior,omitempty"`
}
