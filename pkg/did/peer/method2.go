/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/errorx"
)

// Method2Regex gates did:peer:2 DIDs (spec.md §4.2, §6).
var Method2Regex = regexp.MustCompile(`^did:peer:(2((\.[AEVID]z[1-9a-km-zA-HJ-NP-Z]+)+(\.S[0-9a-zA-Z_-]*)*))$`)

// Create2 builds a did:peer:2 DID by chaining zero or more keyed purposes
// and zero or more services (spec.md §4.2). At least one key or service
// is required.
func Create2(keys []PurposedKey, services []did.Service) (string, error) {
	if len(keys) == 0 && len(services) == 0 {
		return "", errorx.ErrEmptyArguments
	}

	var b strings.Builder
	b.WriteString("did:peer:2")

	for _, k := range keys {
		if k.Purpose == Service {
			return "", errorx.ErrUnexpectedPurpose
		}

		fmt.Fprintf(&b, ".%c%s", k.Purpose.Code(), k.PublicKeyMultibase)
	}

	for _, svc := range services {
		abbreviated, err := abbreviateService(svc)
		if err != nil {
			return "", err
		}

		b.WriteString(".S")
		b.WriteString(crypto.EncodeBase64URL(abbreviated))
	}

	return b.String(), nil
}

// Expand2 reconstitutes a did:peer:2 DID document: each key becomes
// verification method #key-{1..N} (1-based, keys only) referenced from
// the relationship matching its purpose; each service is reverse
// abbreviated, keeping its own id if it has one and otherwise taking
// #service (first service segment) or #service-{n} (n-th, 0-based). The
// document's did:peer:3 short-form alias is computed and added under
// alsoKnownAs (spec.md §4.2, §8).
func Expand2(didStr string, format did.PublicKeyFormat) (*did.Document, error) {
	if !Method2Regex.MatchString(didStr) {
		return nil, errorx.ErrRegexMismatch
	}

	shortForm, err := Create3(didStr)
	if err != nil {
		return nil, err
	}

	doc := &did.Document{
		ID:          "",
		AlsoKnownAs: []string{shortForm},
		Context:     []string{"https://www.w3.org/ns/did/v1"},
	}

	segments := strings.Split(strings.TrimPrefix(didStr, "did:peer:2"), ".")[1:]

	keyIndex := 0
	serviceIndex := 0

	for _, seg := range segments {
		if seg == "" {
			continue
		}

		code := seg[0]

		if code == 'S' {
			vmID, err := expandServiceSegment(doc, seg[1:], serviceIndex)
			if err != nil {
				return nil, err
			}

			_ = vmID
			serviceIndex++

			continue
		}

		purpose, err := PurposeFromCode(code)
		if err != nil {
			return nil, err
		}

		multibase := seg[1:]

		alg, raw, err := crypto.DecodeMultikey(multibase)
		if err != nil {
			return nil, err
		}

		keyIndex++

		vm, err := buildKeyVerificationMethod(fmt.Sprintf("#key-%d", keyIndex), alg, raw, multibase, format)
		if err != nil {
			return nil, err
		}

		doc.VerificationMethod = append(doc.VerificationMethod, vm)

		ref := did.Ref(vm.ID)

		switch purpose {
		case Assertion:
			doc.AssertionMethod = append(doc.AssertionMethod, ref)
		case Encryption:
			doc.KeyAgreement = append(doc.KeyAgreement, ref)
		case Verification:
			doc.Authentication = append(doc.Authentication, ref)
		case CapabilityInvocation:
			doc.CapabilityInvocation = append(doc.CapabilityInvocation, ref)
		case CapabilityDelegation:
			doc.CapabilityDelegation = append(doc.CapabilityDelegation, ref)
		}
	}

	doc.ID = didStr
	for i := range doc.VerificationMethod {
		doc.VerificationMethod[i].Controller = didStr
	}

	return doc, nil
}

func buildKeyVerificationMethod(fragment string, alg crypto.Algorithm, raw []byte, multibase string, format did.PublicKeyFormat) (did.VerificationMethod, error) {
	vm := did.VerificationMethod{
		ID:   fragment,
		Type: verificationMethodType(alg),
	}

	if format == did.JWKFormat {
		jwk, err := crypto.PublicKeyToJWK(crypto.Keypair{Algorithm: alg, PublicKey: raw})
		if err != nil {
			return did.VerificationMethod{}, err
		}

		vm.Type = "JsonWebKey2020"
		vm.PublicKeyJwk = jwk
	} else {
		vm.PublicKeyMultibase = multibase
	}

	return vm, nil
}

func verificationMethodType(alg crypto.Algorithm) string {
	switch alg {
	case crypto.Ed25519:
		return "Ed25519VerificationKey2020"
	case crypto.X25519:
		return "X25519KeyAgreementKey2020"
	default:
		return "Multikey"
	}
}

// expandServiceSegment reverse-abbreviates one ".S..." segment and
// appends it to doc.Service. A service without an id is assigned
// #service when index is 0 and #service-{index} otherwise; an id carried
// in the segment is kept as is (spec.md §4.2).
func expandServiceSegment(doc *did.Document, payload string, index int) (string, error) {
	raw, err := crypto.DecodeBase64URL(payload)
	if err != nil {
		return "", errorx.ErrMalformedPeerDID
	}

	generic, err := reverseAbbreviateService(raw)
	if err != nil {
		return "", errorx.ErrMalformedPeerDID
	}

	obj, ok := generic.(map[string]interface{})
	if !ok {
		return "", errorx.ErrMalformedPeerDID
	}

	id, _ := obj["id"].(string)

	if id == "" {
		if index == 0 {
			id = "#service"
		} else {
			id = fmt.Sprintf("#service-%d", index)
		}
	}

	svc := did.Service{ID: id}

	if t, ok := obj["type"].(string); ok {
		svc.Type = t
	}

	if ep, ok := obj["serviceEndpoint"]; ok {
		svc.ServiceEndpoint = serviceEndpointFromGeneric(ep)
	}

	if accept, ok := obj["accept"].([]interface{}); ok {
		svc.Accept = toStringSlice(accept)
	}

	if routingKeys, ok := obj["routingKeys"].([]interface{}); ok {
		svc.RoutingKeys = toStringSlice(routingKeys)
	}

	doc.Service = append(doc.Service, svc)

	return id, nil
}

func serviceEndpointFromGeneric(v interface{}) did.ServiceEndpoint {
	switch val := v.(type) {
	case string:
		return did.NewURIEndpoint(val)
	case map[string]interface{}:
		uri, _ := val["uri"].(string)

		var accept, routingKeys []string

		if a, ok := val["accept"].([]interface{}); ok {
			accept = toStringSlice(a)
		}

		if r, ok := val["routingKeys"].([]interface{}); ok {
			routingKeys = toStringSlice(r)
		}

		return did.NewDIDCommEndpoint(uri, accept, routingKeys)
	default:
		return did.ServiceEndpoint{}
	}
}

func toStringSlice(in []interface{}) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}

	return out
}
