/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	"crypto/elliptic"
	"math/big"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
)

// p256Curve is kept as a thin indirection so DecompressP256's algorithm
// (decompressNISTCurve) can take another NIST curve's parameters; only
// P-256 is passed to it here.
func p256Curve() elliptic.Curve { return elliptic.P256() }

// decompressNISTCurve solves y^2 = x^3 + ax + b (mod p) for a SEC1
// compressed point on a short Weierstrass NIST curve, selecting the root
// whose parity matches the sign byte (spec.md §4.1). The curve equation
// is evaluated directly with math/big against the parameters
// crypto/elliptic publishes for the curve; no pack dependency is used
// (see DESIGN.md).
func decompressNISTCurve(curve elliptic.Curve, compressed []byte) (x, y []byte, err error) {
	params := curve.Params()
	byteLen := (params.BitSize + 7) / 8

	if len(compressed) != byteLen+1 || (compressed[0] != 0x02 && compressed[0] != 0x03) {
		return nil, nil, errorx.ErrInvalidPublicKey
	}

	px := new(big.Int).SetBytes(compressed[1:])

	// y^2 = x^3 - 3x + b (mod p), the NIST short Weierstrass form with a = -3.
	y2 := new(big.Int).Exp(px, big.NewInt(3), params.P)

	threeX := new(big.Int).Mul(px, big.NewInt(3))
	threeX.Mod(threeX, params.P)

	y2.Sub(y2, threeX)
	y2.Add(y2, params.B)
	y2.Mod(y2, params.P)

	py := new(big.Int).ModSqrt(y2, params.P)
	if py == nil {
		return nil, nil, errorx.ErrInvalidPublicKey
	}

	wantOdd := compressed[0] == 0x03
	if py.Bit(0) == 1 != wantOdd {
		py.Sub(params.P, py)
	}

	xb := make([]byte, byteLen)
	yb := make([]byte, byteLen)
	px.FillBytes(xb)
	py.FillBytes(yb)

	return xb, yb, nil
}
