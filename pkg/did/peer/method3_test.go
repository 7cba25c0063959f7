/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import (
	"testing"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/stretchr/testify/require"
)

func TestCreate3Deterministic(t *testing.T) {
	didStr := "did:peer:2.Vz6Mkj3PUd1WjvaDhNZhhhXQdz5UnZXmS7ehtx8bsPpD47kKc." +
		"SeyJpZCI6IiNkaWRjb21tIiwicyI6Imh0dHA6Ly9leGFtcGxlLmNvbS9kaWRjb21tIiwidCI6ImRtIn0"

	a, err := Create3(didStr)
	require.NoError(t, err)
	require.True(t, Method3Regex.MatchString(a))

	b, err := Create3(didStr)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestCreate3RejectsNonMethod2Input(t *testing.T) {
	_, err := Create3("did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK")
	require.ErrorIs(t, err, errorx.ErrIllegalArgument)
}
