/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package repository declares the abstract persistence contract the
// protocol handlers depend on. Storage drivers are out of scope
// (spec.md §1); only the connection, secret, and queued-message
// entities and their access patterns are specified here, mirroring the
// teacher's client/connection-record split between wire model and
// storage record.
package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookups that find no matching record.
var ErrNotFound = errors.New("repository: record not found")

// Connection is per-client mediation state (spec.md §3). At most one
// connection exists per ClientDID.
type Connection struct {
	ID          string
	ClientDID   string
	MediatorDID string
	RoutingDID  string
	Keylist     []string
}

// Secret is a private key record keyed by the absolute verification
// method id whose public half is published in the mediator's DID
// document (spec.md §3).
type Secret struct {
	Kid      string
	Material JWK
}

// JWK mirrors pkg/crypto.JWK's shape without importing it, so the
// repository contract has no dependency on the crypto package's
// internals; adapters convert between the two at the boundary.
type JWK struct {
	Kty string
	Crv string
	X   string
	Y   string
	D   string
	Kid string
}

// QueuedMessage is a forwarded message awaiting pickup (spec.md §3).
type QueuedMessage struct {
	ID           string
	RecipientDID string
	Payload      []byte
}

// Connections is the connection-record store.
type Connections interface {
	FindByClientDID(ctx context.Context, clientDID string) (*Connection, error)
	// FindByKeylistMember looks up the connection whose keylist contains
	// recipientDID, used by the routing-forward handler to locate the
	// mediated client a forwarded message is addressed to.
	FindByKeylistMember(ctx context.Context, recipientDID string) (*Connection, error)
	Insert(ctx context.Context, conn *Connection) error
	Update(ctx context.Context, conn *Connection) error
	Delete(ctx context.Context, id string) error
}

// Secrets is the private-key store. GetSecret and FindSecrets are
// I/O-fallible and surface errorx.ErrIoError at the caller boundary
// (spec.md §4.3).
type Secrets interface {
	GetSecret(ctx context.Context, kid string) (*Secret, error)
	FindSecrets(ctx context.Context, kids []string) ([]string, error)
	PutSecret(ctx context.Context, secret *Secret) error
}

// Messages is the queued-message store. Delivery MUST return messages
// in insertion order for a given recipient up to the requested limit
// (spec.md §5).
type Messages interface {
	Enqueue(ctx context.Context, msg *QueuedMessage) error
	CountForRecipients(ctx context.Context, recipients []string) (int, error)
	ListForRecipients(ctx context.Context, recipients []string, limit int) ([]*QueuedMessage, error)
	Delete(ctx context.Context, id string) error
}

// Repository aggregates the three collections into the single contract
// protocol handlers take as a dependency (spec.md §6, "Persisted state
// layout").
type Repository interface {
	Connections() Connections
	Secrets() Secrets
	Messages() Messages
}
