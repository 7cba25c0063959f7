/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
)

// DecompressSecp256k1 decompresses a 33-byte SEC1-compressed secp256k1
// public key into its uncompressed X||Y form (spec.md §4.1). The sign
// byte (0x02/0x03) selects the parity of y; any other leading byte is
// errorx.ErrInvalidPublicKey.
func DecompressSecp256k1(compressed []byte) (x, y []byte, err error) {
	if len(compressed) != 33 || (compressed[0] != 0x02 && compressed[0] != 0x03) {
		return nil, nil, errorx.ErrInvalidPublicKey
	}

	pub, err := secp.ParsePubKey(compressed)
	if err != nil {
		return nil, nil, errorx.ErrInvalidPublicKey
	}

	affine := pub.SerializeUncompressed() // 0x04 || X(32) || Y(32)
	if len(affine) != 65 {
		return nil, nil, errorx.ErrInvalidPublicKey
	}

	return affine[1:33], affine[33:65], nil
}

// DecompressP256 decompresses a 33-byte SEC1-compressed P-256 public key,
// solving y^2 = x^3 + ax + b (mod p) with the curve's standard parameters
// and selecting the root matching the sign byte's parity (spec.md §4.1).
func DecompressP256(compressed []byte) (x, y []byte, err error) {
	return decompressNISTCurve(p256Curve(), compressed)
}
