/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package peer implements the did:peer method family (spec.md §4.2):
// method 0 (inception key without doc), method 1 (stored genesis hash),
// method 2 (chained inception), method 3 (short form of method 2), and
// method 4 (long/short form with an embedded document).
package peer

import "github.com/adorsys/didcomm-mediator/pkg/errorx"

// Purpose is the did:peer:2 chaining purpose code alphabet (spec.md §3).
type Purpose int

const (
	Assertion Purpose = iota
	Encryption
	Verification
	CapabilityInvocation
	CapabilityDelegation
	Service
)

// Code renders a purpose as its single-character alphabet entry.
func (p Purpose) Code() byte {
	switch p {
	case Assertion:
		return 'A'
	case Encryption:
		return 'E'
	case Verification:
		return 'V'
	case CapabilityInvocation:
		return 'I'
	case CapabilityDelegation:
		return 'D'
	case Service:
		return 'S'
	default:
		return 0
	}
}

// PurposeFromCode derives a Purpose from its normalized one-letter code.
// Round-trip law (spec.md §8): PurposeFromCode(p.Code()) == p for every
// valid code.
func PurposeFromCode(c byte) (Purpose, error) {
	switch c {
	case 'A':
		return Assertion, nil
	case 'E':
		return Encryption, nil
	case 'V':
		return Verification, nil
	case 'I':
		return CapabilityInvocation, nil
	case 'D':
		return CapabilityDelegation, nil
	case 'S':
		return Service, nil
	default:
		return 0, errorx.ErrInvalidPurposeCode
	}
}

// PurposedKey pairs a purpose with a multibase-encoded public key,
// supplied to Create2 for chained inception (spec.md §4.2).
type PurposedKey struct {
	Purpose            Purpose
	PublicKeyMultibase string
}
