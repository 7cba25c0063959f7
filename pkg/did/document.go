/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package did models the W3C DID Document (spec.md §3) shared by every
// DID method under pkg/did/key and pkg/did/peer. References between
// verification methods and relationship lists are symbolic strings, not
// pointers: the document is a tree with cross-references resolved at
// use-site (spec.md §9), matching the teacher's preference for
// serializable, pointer-free message and record types (see
// pkg/didcomm/common/service.ConnectionRecord).
package did

import "encoding/json"

// PublicKeyFormat selects how a verification method's public key is
// rendered in an expanded document (spec.md §3).
type PublicKeyFormat int

const (
	Multikey PublicKeyFormat = iota
	JWKFormat
)

// Document is the W3C DID Document.
type Document struct {
	Context              []string               `json:"@context,omitempty"`
	ID                   string                 `json:"id"`
	AlsoKnownAs          []string               `json:"alsoKnownAs,omitempty"`
	VerificationMethod   []VerificationMethod   `json:"verificationMethod,omitempty"`
	Authentication       []VerificationRelationship `json:"authentication,omitempty"`
	AssertionMethod      []VerificationRelationship `json:"assertionMethod,omitempty"`
	KeyAgreement         []VerificationRelationship `json:"keyAgreement,omitempty"`
	CapabilityInvocation []VerificationRelationship `json:"capabilityInvocation,omitempty"`
	CapabilityDelegation []VerificationRelationship `json:"capabilityDelegation,omitempty"`
	Service              []Service              `json:"service,omitempty"`
}

// VerificationMethod carries a public key in either multibase or JWK
// form (spec.md §3).
type VerificationMethod struct {
	ID                 string      `json:"id"`
	Type               string      `json:"type"`
	Controller         string      `json:"controller"`
	PublicKeyMultibase string      `json:"publicKeyMultibase,omitempty"`
	PublicKeyJwk       interface{} `json:"publicKeyJwk,omitempty"`
}

// VerificationRelationship is either a reference string (absolute or
// relative to the document) or an embedded verification method.
type VerificationRelationship struct {
	Reference string               `json:"-"`
	Embedded  *VerificationMethod  `json:"-"`
}

// MarshalJSON renders the relationship as a bare string when it is a
// reference, or as an embedded object otherwise.
func (r VerificationRelationship) MarshalJSON() ([]byte, error) {
	if r.Embedded != nil {
		return json.Marshal(r.Embedded)
	}

	return json.Marshal(r.Reference)
}

// UnmarshalJSON accepts either a bare reference string or an embedded
// verification method object.
func (r *VerificationRelationship) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		r.Reference = s

		return nil
	}

	var vm VerificationMethod
	if err := json.Unmarshal(data, &vm); err != nil {
		return err
	}

	r.Embedded = &vm

	return nil
}

// Ref builds a reference-form relationship.
func Ref(id string) VerificationRelationship {
	return VerificationRelationship{Reference: id}
}

// ServiceEndpoint carries either a bare URI or an object form with
// accept/routingKeys, per spec.md §3.
type ServiceEndpoint struct {
	URI         string   `json:"-"`
	Accept      []string `json:"-"`
	RoutingKeys []string `json:"-"`
	isObject    bool
}

// MarshalJSON renders the endpoint as a bare string, or as an object when
// accept/routingKeys were set.
func (e ServiceEndpoint) MarshalJSON() ([]byte, error) {
	if !e.isObject && len(e.Accept) == 0 && len(e.RoutingKeys) == 0 {
		return json.Marshal(e.URI)
	}

	obj := struct {
		URI         string   `json:"uri"`
		Accept      []string `json:"accept,omitempty"`
		RoutingKeys []string `json:"routingKeys,omitempty"`
	}{e.URI, e.Accept, e.RoutingKeys}

	return json.Marshal(obj)
}

// UnmarshalJSON accepts either a bare URI string or the object form.
func (e *ServiceEndpoint) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		e.URI = s

		return nil
	}

	var obj struct {
		URI         string   `json:"uri"`
		Accept      []string `json:"accept,omitempty"`
		RoutingKeys []string `json:"routingKeys,omitempty"`
	}

	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	e.URI, e.Accept, e.RoutingKeys = obj.URI, obj.Accept, obj.RoutingKeys
	e.isObject = true

	return nil
}

// NewURIEndpoint builds a bare-URI service endpoint.
func NewURIEndpoint(uri string) ServiceEndpoint {
	return ServiceEndpoint{URI: uri}
}

// NewDIDCommEndpoint builds a DIDComm Messaging service endpoint object.
func NewDIDCommEndpoint(uri string, accept, routingKeys []string) ServiceEndpoint {
	return ServiceEndpoint{URI: uri, Accept: accept, RoutingKeys: routingKeys, isObject: true}
}

// Service is a DID document service entry (spec.md §3).
type Service struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	ServiceEndpoint ServiceEndpoint `json:"serviceEndpoint"`
	Accept          []string        `json:"accept,omitempty"`
	RoutingKeys     []string        `json:"routingKeys,omitempty"`
}

// DIDCommMessagingType is the well-known service type for mediator
// endpoints (spec.md §4.2 example 2, §4.4).
const DIDCommMessagingType = "DIDCommMessaging"
