/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import (
	"strings"
	"testing"

	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
	"github.com/stretchr/testify/require"
)

func storedDocFixture() *did.Document {
	return &did.Document{
		VerificationMethod: []did.VerificationMethod{
			{
				ID:                 "#key-1",
				Type:               "Ed25519VerificationKey2020",
				Controller:         "",
				PublicKeyMultibase: "z6Mkj3PUd1WjvaDhNZhhhXQdz5UnZXmS7ehtx8bsPpD47kKc",
			},
		},
		Authentication: []did.VerificationRelationship{did.Ref("#key-1")},
		Service: []did.Service{
			{
				ID:              "#didcomm",
				Type:            did.DIDCommMessagingType,
				ServiceEndpoint: did.NewURIEndpoint("http://example.com/didcomm"),
			},
		},
	}
}

func TestCreate4ShortenRoundTrip(t *testing.T) {
	longForm, err := Create4(storedDocFixture())
	require.NoError(t, err)
	require.True(t, Method4Regex.MatchString(longForm))

	shortForm, err := Shorten4(longForm)
	require.NoError(t, err)
	require.True(t, Method4Regex.MatchString(shortForm))
	require.True(t, strings.HasPrefix(longForm, shortForm+":"))
}

func TestShorten4RejectsTamperedHash(t *testing.T) {
	longForm, err := Create4(storedDocFixture())
	require.NoError(t, err)

	tampered := longForm[:len(longForm)-1] + "9"
	if tampered == longForm {
		tampered = longForm[:len(longForm)-1] + "8"
	}

	_, err = Shorten4(tampered)
	require.ErrorIs(t, err, errorx.ErrInvalidHash)
}

func TestExpand4RoundTrip(t *testing.T) {
	longForm, err := Create4(storedDocFixture())
	require.NoError(t, err)

	doc, err := Expand4(longForm)
	require.NoError(t, err)
	require.Equal(t, longForm, doc.ID)
	require.Len(t, doc.VerificationMethod, 1)
	require.Equal(t, "#key-1", doc.VerificationMethod[0].ID)
	require.Equal(t, longForm, doc.VerificationMethod[0].Controller)
	require.Len(t, doc.Service, 1)

	shortForm, err := Shorten4(longForm)
	require.NoError(t, err)
	require.Contains(t, doc.AlsoKnownAs, shortForm)
}

func TestCreate4RejectsNonStoredVariant(t *testing.T) {
	doc := storedDocFixture()
	doc.ID = "did:peer:4zNotEmpty"

	_, err := Create4(doc)
	require.ErrorIs(t, err, errorx.ErrInvalidStoredVariant)
}
