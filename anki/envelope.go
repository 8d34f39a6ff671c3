package anki

import (
	"encoding/json"
	"fmt"
)

// requestEnvelope is the fixed wire shape the endpoint accepts. Params must
// always be present, so nil params are replaced with an empty object before
// marshaling.
type requestEnvelope struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params"`
}

// responseEnvelope is the fixed wire shape of every reply. Exactly one of
// Result/Error is meaningful; a non-null Error is authoritative even if the
// service also populated Result.
type responseEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

func encodeRequest(action string, version int, params any) ([]byte, error) {
	if params == nil {
		params = struct{}{}
	}
	body, err := json.Marshal(requestEnvelope{
		Action:  action,
		Version: version,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	return body, nil
}

func decodeResponse(body []byte) (responseEnvelope, error) {
	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return responseEnvelope{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return env, nil
}
