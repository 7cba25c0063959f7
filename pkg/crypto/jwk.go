/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	"encoding/base64"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
)

// JWK is a minimal RFC 7517 JSON Web Key, covering the OKP (Ed25519,
// X25519) and EC (P-256, secp256k1) key types the DID method engine and
// secrets repository need (spec.md §3, §4.1).
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
	D   string `json:"d,omitempty"`
	Kid string `json:"kid,omitempty"`
}

func b64(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }

func unb64(s string) ([]byte, error) { return base64.RawURLEncoding.DecodeString(s) }

// crvName returns the JWK "crv" value for the algorithms this repository
// publishes as JWKs.
func crvName(alg Algorithm) (kty, crv string, err error) {
	switch alg {
	case Ed25519, X25519:
		crv = alg.String()
		return "OKP", crv, nil
	case P256:
		return "EC", "P-256", nil
	case Secp256k1:
		return "EC", "secp256k1", nil
	default:
		return "", "", errorx.ErrUnsupported
	}
}

// PublicKeyToJWK converts a keypair's public (and, if present, private)
// key material into JWK form.
func PublicKeyToJWK(k Keypair) (JWK, error) {
	kty, crv, err := crvName(k.Algorithm)
	if err != nil {
		return JWK{}, err
	}

	jwk := JWK{Kty: kty, Crv: crv}

	switch kty {
	case "OKP":
		jwk.X = b64(k.PublicKey)

		if k.HasPrivateKey() {
			if k.Algorithm == Ed25519 && len(k.PrivateKey) == 64 {
				jwk.D = b64(k.PrivateKey[:32])
			} else {
				jwk.D = b64(k.PrivateKey)
			}
		}
	case "EC":
		var x, y []byte

		if k.Algorithm == Secp256k1 {
			x, y, err = DecompressSecp256k1(k.PublicKey)
		} else {
			x, y, err = DecompressP256(k.PublicKey)
		}

		if err != nil {
			return JWK{}, err
		}

		jwk.X, jwk.Y = b64(x), b64(y)

		if k.HasPrivateKey() {
			jwk.D = b64(k.PrivateKey)
		}
	}

	return jwk, nil
}

// JWKToKeypair reconstructs a Keypair from a JWK; the algorithm is
// inferred from "kty"/"crv".
func JWKToKeypair(jwk JWK) (Keypair, error) {
	var alg Algorithm

	switch {
	case jwk.Kty == "OKP" && jwk.Crv == "Ed25519":
		alg = Ed25519
	case jwk.Kty == "OKP" && jwk.Crv == "X25519":
		alg = X25519
	case jwk.Kty == "EC" && jwk.Crv == "P-256":
		alg = P256
	case jwk.Kty == "EC" && jwk.Crv == "secp256k1":
		alg = Secp256k1
	default:
		return Keypair{}, errorx.ErrUnsupported
	}

	kp := Keypair{Algorithm: alg}

	if jwk.Kty == "OKP" {
		pub, err := unb64(jwk.X)
		if err != nil {
			return Keypair{}, errorx.ErrInvalidPublicKey
		}

		kp.PublicKey = pub

		if jwk.D != "" {
			d, err := unb64(jwk.D)
			if err != nil {
				return Keypair{}, errorx.ErrInvalidSigningKey
			}

			if alg == Ed25519 && len(d) == 32 {
				kp.PrivateKey = append(append([]byte{}, d...), pub...)
			} else {
				kp.PrivateKey = d
			}
		}

		return kp, nil
	}

	// EC: re-compress to SEC1 form for uniform storage alongside OKP keys.
	x, err := unb64(jwk.X)
	if err != nil {
		return Keypair{}, errorx.ErrInvalidPublicKey
	}

	y, err := unb64(jwk.Y)
	if err != nil {
		return Keypair{}, errorx.ErrInvalidPublicKey
	}

	sign := byte(0x02)
	if len(y) > 0 && y[len(y)-1]&1 == 1 {
		sign = 0x03
	}

	kp.PublicKey = append([]byte{sign}, x...)

	if jwk.D != "" {
		d, err := unb64(jwk.D)
		if err != nil {
			return Keypair{}, errorx.ErrInvalidSigningKey
		}

		kp.PrivateKey = d
	}

	return kp, nil
}
