/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package packer implements the DIDComm v2 authcrypt envelope pipeline:
// pack/unpack between mediator and sender over each party's X25519
// keyAgreement key (spec.md §4.3).
//
// Wire format is a JWE-shaped envelope (alg "ECDH-authcrypt", enc
// "XC20P") rather than a verbatim transcription of any single reference
// crate: original_source's exact wire format was not present in the
// retrieved file set, so the header/ciphertext layout below is this
// package's own design, built from the same primitives (X25519 ECDH,
// HKDF-SHA256, XChaCha20-Poly1305) the corpus uses elsewhere.
package packer

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/adorsys/didcomm-mediator/pkg/repository"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

const (
	contentType = "application/didcomm-encrypted+json"
	algAuthcrypt = "ECDH-authcrypt"
	encXC20P     = "XC20P"
	hkdfInfo     = "didcomm-mediator/authcrypt/v1"
)

// protectedHeader is the envelope's outer metadata. skid is the sender's
// keyAgreement kid; its absence marks an anonymously packed envelope
// (spec.md §4.3, unpack step 4).
type protectedHeader struct {
	Typ string `json:"typ"`
	Alg string `json:"alg"`
	Enc string `json:"enc"`
	Skid string `json:"skid,omitempty"`
	Kid  string `json:"kid"`
}

// wireEnvelope is the full on-the-wire JSON structure.
type wireEnvelope struct {
	Protected  string `json:"protected"`
	Iv         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
}

// Metadata describes an unpacked envelope's sender/recipient (spec.md §3,
// "Envelope message").
type Metadata struct {
	From string
	To   string
}

// Packer implements authcrypt pack/unpack against a DID resolver and a
// private-key store.
type Packer struct {
	resolver did.Resolver
	secrets  repository.Secrets
}

// New builds a Packer.
func New(resolver did.Resolver, secrets repository.Secrets) *Packer {
	return &Packer{resolver: resolver, secrets: secrets}
}

// ContentType is the Content-Type every packed envelope MUST carry
// (spec.md §4.3 step 1, §6).
func ContentType() string { return contentType }

// IsDidcommEncryptedContentType accepts both the full and short
// Content-Type forms (spec.md §6).
func IsDidcommEncryptedContentType(ct string) bool {
	ct = strings.TrimSpace(strings.ToLower(ct))

	return ct == contentType || ct == "didcomm-encrypted+json"
}

// Pack authcrypt-encrypts plaintext from fromKid (the packer's own
// keyAgreement secret) to the first recipient's keyAgreement key
// (spec.md §4.3, "Pack contract").
func (p *Packer) Pack(ctx context.Context, plaintext []byte, fromKid, toDID string) ([]byte, error) {
	if fromKid == "" || toDID == "" {
		return nil, errorx.ErrMalformed
	}

	senderSecret, err := p.secrets.GetSecret(ctx, fromKid)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrIoError, err)
	}

	senderKp, err := repoJWKToKeypair(senderSecret.Material)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrMessagePackingFailure, err)
	}

	recipientDoc, err := p.resolver.Resolve(toDID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrMessagePackingFailure, err)
	}

	recipientKid, recipientPub, err := firstKeyAgreementKey(recipientDoc)
	if err != nil {
		return nil, err
	}

	shared, err := curve25519.X25519(senderKp.PrivateKey, recipientPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrMessagePackingFailure, err)
	}

	cek, err := deriveCEK(shared, fromKid, recipientKid)
	if err != nil {
		return nil, err
	}

	header := protectedHeader{Typ: contentType, Alg: algAuthcrypt, Enc: encXC20P, Skid: fromKid, Kid: recipientKid}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(cek)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrMessagePackingFailure, err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	protectedB64 := base64.RawURLEncoding.EncodeToString(headerJSON)
	ciphertext := aead.Seal(nil, nonce, plaintext, []byte(protectedB64))

	env := wireEnvelope{
		Protected:  protectedB64,
		Iv:         base64.RawURLEncoding.EncodeToString(nonce),
		Ciphertext: base64.RawURLEncoding.EncodeToString(ciphertext),
	}

	return json.Marshal(env)
}

// Unpack authcrypt-decrypts an inbound envelope and authenticates the
// sender, implementing spec.md §4.3's five-step unpack contract.
func (p *Packer) Unpack(ctx context.Context, contentTypeHeader string, raw []byte) ([]byte, Metadata, error) {
	if !IsDidcommEncryptedContentType(contentTypeHeader) {
		return nil, Metadata{}, errorx.ErrNotDidcommEncryptedPayload
	}

	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %w", errorx.ErrMalformedDidcommEncrypted, err)
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(env.Protected)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %w", errorx.ErrMalformedDidcommEncrypted, err)
	}

	var header protectedHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %w", errorx.ErrMalformedDidcommEncrypted, err)
	}

	if header.Typ != contentType || header.Alg != algAuthcrypt || header.Enc != encXC20P {
		return nil, Metadata{}, errorx.ErrMalformedDidcommEncrypted
	}

	if header.Skid == "" {
		return nil, Metadata{}, errorx.ErrAnonymousPacker
	}

	recipientSecret, err := p.secrets.GetSecret(ctx, header.Kid)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %w", errorx.ErrMessageUnpackingFailure, err)
	}

	recipientKp, err := repoJWKToKeypair(recipientSecret.Material)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %w", errorx.ErrMessageUnpackingFailure, err)
	}

	senderDID := stripFragment(header.Skid)

	senderDoc, err := p.resolver.Resolve(senderDID)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %w", errorx.ErrMessageUnpackingFailure, err)
	}

	senderPub, err := keyAgreementKeyByKid(senderDoc, header.Skid)
	if err != nil {
		return nil, Metadata{}, err
	}

	shared, err := curve25519.X25519(recipientKp.PrivateKey, senderPub)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %w", errorx.ErrMessageUnpackingFailure, err)
	}

	cek, err := deriveCEK(shared, header.Skid, header.Kid)
	if err != nil {
		return nil, Metadata{}, err
	}

	aead, err := chacha20poly1305.NewX(cek)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %w", errorx.ErrMessageUnpackingFailure, err)
	}

	nonce, err := base64.RawURLEncoding.DecodeString(env.Iv)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %w", errorx.ErrMalformedDidcommEncrypted, err)
	}

	ciphertext, err := base64.RawURLEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %w", errorx.ErrMalformedDidcommEncrypted, err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(env.Protected))
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %w", errorx.ErrMessageUnpackingFailure, err)
	}

	return plaintext, Metadata{From: senderDID, To: stripFragment(header.Kid)}, nil
}

func deriveCEK(shared []byte, skid, kid string) ([]byte, error) {
	reader := hkdf.New(sha256.New, shared, nil, []byte(hkdfInfo+skid+kid))

	cek := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(reader, cek); err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrMessagePackingFailure, err)
	}

	return cek, nil
}

func firstKeyAgreementKey(doc *did.Document) (kid string, pub []byte, err error) {
	if len(doc.KeyAgreement) == 0 {
		return "", nil, errorx.ErrMessagePackingFailure
	}

	rel := doc.KeyAgreement[0]

	var vm *did.VerificationMethod

	if rel.Embedded != nil {
		vm = rel.Embedded
	} else {
		vm = findVerificationMethod(doc, rel.Reference)
	}

	if vm == nil {
		return "", nil, errorx.ErrMessagePackingFailure
	}

	pub, err = publicKeyFromVM(vm)
	if err != nil {
		return "", nil, err
	}

	return vm.ID, pub, nil
}

func keyAgreementKeyByKid(doc *did.Document, kid string) ([]byte, error) {
	vm := findVerificationMethod(doc, kid)
	if vm == nil {
		return nil, errorx.ErrMessageUnpackingFailure
	}

	return publicKeyFromVM(vm)
}

func findVerificationMethod(doc *did.Document, id string) *did.VerificationMethod {
	for i := range doc.VerificationMethod {
		if doc.VerificationMethod[i].ID == id {
			return &doc.VerificationMethod[i]
		}
	}

	return nil
}

func publicKeyFromVM(vm *did.VerificationMethod) ([]byte, error) {
	if vm.PublicKeyMultibase != "" {
		_, raw, err := crypto.DecodeMultikey(vm.PublicKeyMultibase)
		if err != nil {
			return nil, err
		}

		return raw, nil
	}

	if jwk, ok := vm.PublicKeyJwk.(crypto.JWK); ok {
		kp, err := crypto.JWKToKeypair(jwk)
		if err != nil {
			return nil, err
		}

		return kp.PublicKey, nil
	}

	return nil, errorx.ErrInvalidPublicKey
}

func stripFragment(id string) string {
	if i := strings.IndexByte(id, '#'); i >= 0 {
		return id[:i]
	}

	return id
}

func repoJWKToKeypair(jwk repository.JWK) (crypto.Keypair, error) {
	return crypto.JWKToKeypair(crypto.JWK{
		Kty: jwk.Kty, Crv: jwk.Crv, X: jwk.X, Y: jwk.Y, D: jwk.D, Kid: jwk.Kid,
	})
}
