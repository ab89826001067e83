package upstream

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// The backend answers in three shapes, depending on the endpoint's vintage:
// a bare JSON array, `{"status":"ok","data":[...]}`, and the doubly nested
// `{"data":{"data":[...]}}`. They are all resolved here, once, at the
// boundary; call sites never sniff shapes.

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

var errBadEnvelope = errors.New("unrecognized response envelope")

// normalizeCollection unwraps any of the accepted collection envelopes down
// to the element list.
func normalizeCollection(raw []byte) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errBadEnvelope
	}

	if raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, errors.Wrap(err, "decoding collection")
		}
		return items, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrap(err, "decoding envelope")
	}
	if env.Status != "" && env.Status != "ok" {
		return nil, errors.Errorf("upstream status %q", env.Status)
	}
	if len(env.Data) == 0 {
		return nil, errBadEnvelope
	}
	// data may itself be the `{data: [...]}` wrapper
	return normalizeCollection(env.Data)
}

// normalizeObject unwraps a single-object payload from the same envelopes.
func normalizeObject(raw []byte) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errBadEnvelope
	}
	if raw[0] != '{' {
		return nil, errBadEnvelope
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrap(err, "decoding envelope")
	}
	if env.Status != "" && env.Status != "ok" {
		return nil, errors.Errorf("upstream status %q", env.Status)
	}
	if len(env.Data) == 0 {
		// not wrapped at all; the payload is the object
		return json.RawMessage(raw), nil
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) > 0 && data[0] == '{' {
		// may be the nested `{data:{...}}` wrapper
		return normalizeObject(data)
	}
	return env.Data, nil
}
