/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import "encoding/json"

var abbrevKey = map[string]string{
	"type":            "t",
	"serviceEndpoint": "s",
	"routingKeys":     "r",
	"accept":          "a",
}

var reverseAbbrevKey = map[string]string{
	"t": "type",
	"s": "serviceEndpoint",
	"r": "routingKeys",
	"a": "accept",
}

var abbrevValue = map[string]string{
	"DIDCommMessaging": "dm",
}

var reverseAbbrevValue = map[string]string{
	"dm": "DIDCommMessaging",
}

// abbreviateServiceJSON recursively abbreviates a service object's keys
// and well-known values, grounded on
// original_source/.../did-utils/src/methods/peer/util.rs's
// abbreviate_service_for_did_peer_2 (spec.md §4.2).
func abbreviateServiceJSON(v interface{}) interface{} {
	return rewriteServiceJSON(v, abbrevKey, abbrevValue)
}

// reverseAbbreviateServiceJSON is the exact inverse of
// abbreviateServiceJSON; round-trip is required by spec.md §8.
func reverseAbbreviateServiceJSON(v interface{}) interface{} {
	return rewriteServiceJSON(v, reverseAbbrevKey, reverseAbbrevValue)
}

func rewriteServiceJSON(v interface{}, keys, values map[string]string) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))

		for k, vv := range val {
			nk := k
			if mapped, ok := keys[k]; ok {
				nk = mapped
			}

			out[nk] = rewriteServiceJSON(vv, keys, values)
		}

		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = rewriteServiceJSON(item, keys, values)
		}

		return out
	case string:
		if mapped, ok := values[val]; ok {
			return mapped
		}

		return val
	default:
		return v
	}
}

// abbreviateService marshals a service object to JSON and applies the
// abbreviation codec, returning canonical JSON bytes.
func abbreviateService(obj interface{}) ([]byte, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	abbreviated := abbreviateServiceJSON(generic)

	return json.Marshal(abbreviated)
}

// reverseAbbreviateService is the inverse of abbreviateService: it takes
// abbreviated JSON bytes and returns the reverse-abbreviated generic JSON
// value, ready for the caller to type into a did.Service.
func reverseAbbreviateService(data []byte) (interface{}, error) {
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}

	return reverseAbbreviateServiceJSON(generic), nil
}
