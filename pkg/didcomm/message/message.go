/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package message models the DIDComm v2 plaintext envelope and its
// return-route decoration (spec.md §3, §6).
package message

import "encoding/json"

// Message is a DIDComm plaintext message.
type Message struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	From        string          `json:"from,omitempty"`
	To          []string        `json:"to,omitempty"`
	ThreadID    string          `json:"thid,omitempty"`
	ParentThID  string          `json:"pthid,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
	Attachments []Attachment    `json:"attachments,omitempty"`
	FromPrior   string          `json:"from_prior,omitempty"`

	// ExtraHeaders carries decorators not promoted to named fields, such
	// as a top-level "return_route" (spec.md §6).
	ExtraHeaders map[string]json.RawMessage `json:"-"`

	// Transport carries the "~transport" decorator's return_route form.
	Transport *TransportDecorator `json:"~transport,omitempty"`
}

// TransportDecorator is the embedded-decorator form of return_route.
type TransportDecorator struct {
	ReturnRoute string `json:"return_route,omitempty"`
}

// Attachment is a DIDComm attachment carrying inline JSON data, used by
// pickup's delivery-request response (spec.md §4.5).
type Attachment struct {
	ID   string          `json:"id"`
	Data AttachmentData  `json:"data"`
}

// AttachmentData wraps the attachment's inline JSON payload.
type AttachmentData struct {
	JSON json.RawMessage `json:"json,omitempty"`
}

// returnRouteKey is the top-level extra-header form of return_route
// (spec.md §6).
const returnRouteKey = "return_route"

// HasReturnRouteAll reports whether the message carries return_route=all
// either as a top-level extra header or via the ~transport decorator;
// both forms MUST be accepted.
func (m Message) HasReturnRouteAll() bool {
	if m.Transport != nil && m.Transport.ReturnRoute == "all" {
		return true
	}

	if raw, ok := m.ExtraHeaders[returnRouteKey]; ok {
		var v string
		if err := json.Unmarshal(raw, &v); err == nil && v == "all" {
			return true
		}
	}

	return false
}

// UnmarshalJSON decodes known fields via the default decoder, then
// captures every remaining top-level key as an extra header, the way a
// pointer-free wire type collects undeclared decorators without losing
// them on a pack/unpack round trip.
func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	*m = Message(a)

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}

	known := map[string]bool{
		"id": true, "type": true, "from": true, "to": true, "thid": true,
		"pthid": true, "body": true, "attachments": true, "from_prior": true,
		"~transport": true,
	}

	m.ExtraHeaders = map[string]json.RawMessage{}

	for k, v := range generic {
		if !known[k] {
			m.ExtraHeaders[k] = v
		}
	}

	return nil
}

// MarshalJSON re-emits known fields plus any captured extra headers.
func (m Message) MarshalJSON() ([]byte, error) {
	type alias Message

	raw, err := json.Marshal(alias(m))
	if err != nil {
		return nil, err
	}

	if len(m.ExtraHeaders) == 0 {
		return raw, nil
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	for k, v := range m.ExtraHeaders {
		generic[k] = v
	}

	return json.Marshal(generic)
}
