/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package errorx defines the typed error taxonomy shared by every layer of
// the mediator: crypto, DID methods, the envelope pipeline, and the
// protocol handlers. Errors are sentinel values so callers can classify
// them with errors.Is, and are wrapped with fmt.Errorf("...: %w", ...) at
// each layer boundary the way the teacher wraps errors in
// inbound_message_handler.go.
package errorx

import "errors"

// Transport / format errors.
var (
	ErrNotDidcommEncryptedPayload = errors.New("not a didcomm-encrypted payload")
	ErrMalformedDidcommEncrypted  = errors.New("malformed didcomm encrypted envelope")
	ErrMessageUnpackingFailure    = errors.New("message unpacking failure")
	ErrMessagePackingFailure      = errors.New("message packing failure")
	ErrInvalidMessageType         = errors.New("invalid message type")
	ErrUnexpectedMessageFormat    = errors.New("unexpected message format")
	ErrNoReturnRouteAllDecoration = errors.New("no return_route=all decoration")
	ErrMalformedRequest           = errors.New("malformed request")
)

// Authentication errors.
var (
	ErrAnonymousPacker   = errors.New("envelope was anonymously packed")
	ErrMissingSenderDID  = errors.New("missing sender did")
	ErrUncoordinatedSender = errors.New("sender has no mediation grant")
	ErrUnknownIssuer     = errors.New("unknown from_prior issuer")
	ErrInvalidFromPrior  = errors.New("invalid from_prior jwt")
)

// DID layer errors.
var (
	ErrInvalidDid             = errors.New("invalid did")
	ErrInvalidDidUrl          = errors.New("invalid did url")
	ErrMethodNotSupported     = errors.New("did method not supported")
	ErrRegexMismatch          = errors.New("did does not match expected pattern")
	ErrMalformedPeerDID       = errors.New("malformed peer did")
	ErrMalformedLongPeerDID   = errors.New("malformed long-form peer did")
	ErrInvalidStoredVariant   = errors.New("invalid stored variant document")
	ErrInvalidHash            = errors.New("invalid multihash")
	ErrInvalidPurposeCode     = errors.New("invalid purpose code")
	ErrIllegalArgument        = errors.New("illegal argument")
	ErrEmptyArguments         = errors.New("empty arguments")
	ErrUnexpectedPurpose      = errors.New("unexpected purpose")
	ErrInvalidPublicKeyLength = errors.New("invalid public key length")
)

// Crypto errors.
var (
	ErrInvalidKeyLength    = errors.New("invalid key length")
	ErrInvalidPublicKey    = errors.New("invalid public key")
	ErrInvalidSigningKey   = errors.New("invalid signing key")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrInvalidVerifyingKey = errors.New("invalid verifying key")
	ErrMissingPrivateKey   = errors.New("missing private key")
	ErrUnsupported         = errors.New("unsupported algorithm")
	ErrUnknownAlgorithm    = errors.New("unknown algorithm")
)

// Persistence / runtime errors.
var (
	ErrMissingClientConnection = errors.New("missing client connection")
	ErrInternalServerError     = errors.New("internal server error")
	ErrCircuitOpen             = errors.New("circuit breaker is open")
	ErrDuplicateEntry          = errors.New("duplicate entry")
	ErrUnloaded                = errors.New("plugin container is not loaded")
	ErrIoError                 = errors.New("io error")
	ErrDIDNotResolved          = errors.New("did could not be resolved")
	ErrMalformed               = errors.New("malformed message")
)
