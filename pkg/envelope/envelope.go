// Package envelope defines the JSON wrapper shared by both directions
// of the protocol: {"state": {"reported": {...}}} from device to
// client, {"state": {"desired": {...}}} from client to device. The
// core validates shape only; inner keys are opaque and preserved
// verbatim, scalar types carried through unchanged.
package envelope

import (
	"encoding/json"

	"github.com/philips-airctrl/airctl-go/pkg/airerr"
)

// Fixed metadata fields always present in a ControlEnvelope's desired
// object. User-supplied keys must not collide with these; if they do,
// the user's value wins (see BuildControl).
const (
	CommandType = "app"
)

// ParseStatus decodes a device status payload and returns the inner
// "reported" object verbatim. It fails with a KindProtocolError
// airerr.Error if "state" or "state.reported" is missing.
func ParseStatus(raw []byte) (map[string]any, error) {
	var wire struct {
		State *struct {
			Reported map[string]any `json:"reported"`
		} `json:"state"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, airerr.New(airerr.KindProtocolError, "envelope.ParseStatus", err)
	}
	if wire.State == nil || wire.State.Reported == nil {
		return nil, airerr.New(airerr.KindProtocolError, "envelope.ParseStatus", nil)
	}
	return wire.State.Reported, nil
}

// BuildControl composes the client-to-device write payload described
// in spec.md §3: the three metadata fields, overridden by data on
// conflict, wrapped in {"state":{"desired": ...}}.
func BuildControl(deviceID, enduserID string, data map[string]any) ([]byte, error) {
	desired := make(map[string]any, len(data)+3)
	desired["CommandType"] = CommandType
	desired["DeviceId"] = deviceID
	desired["EnduserId"] = enduserID
	for k, v := range data {
		desired[k] = v
	}

	payload := map[string]any{
		"state": map[string]any{
			"desired": desired,
		},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, airerr.New(airerr.KindProtocolError, "envelope.BuildControl", err)
	}
	return raw, nil
}

// WriteResult is the device's plaintext reply to a control write.
type WriteResult struct {
	Status string `json:"status"`
}

// Success reports whether status == "success".
func (w WriteResult) Success() bool {
	return w.Status == "success"
}

// ParseWriteResult decodes the device's plaintext write-acknowledgement.
// Unlike every other payload in this protocol, write responses are not
// encrypted — do not attempt to decrypt them.
func ParseWriteResult(raw []byte) (WriteResult, error) {
	var result WriteResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return WriteResult{}, airerr.New(airerr.KindProtocolError, "envelope.ParseWriteResult", err)
	}
	return result, nil
}
