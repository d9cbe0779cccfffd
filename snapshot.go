package webio

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	keyOutputs  = "outputs"
	keyZones    = "zones"
	keyIndex    = "index"
	keyStatus   = "status"
	keyName     = "name"
	keyPassType = "passType"

	keyWebioSerial = "webio-serial"
	keyWebioName   = "webio-name"
)

// Snapshot is a raw status payload as sent by the device, either in reply
// to a status request or pushed to a subscribed address.
//
// Both the "outputs" and "zones" keys are optional; a missing key is not the
// same thing as an empty list.
type Snapshot map[string]json.RawMessage

// ParseSnapshot decodes a status payload.
func ParseSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("could not parse status: %w", err)
	}
	return s, nil
}

// fieldState tells apart a missing field from one that is present but
// unusable (null or of the wrong type).
type fieldState uint8

const (
	fieldAbsent fieldState = iota
	fieldInvalid
	fieldPresent
)

func (f fieldState) String() string {
	switch f {
	case fieldInvalid:
		return "invalid"
	case fieldPresent:
		return "present"
	default:
		return "absent"
	}
}

// category returns the descriptors listed under key.
func (s Snapshot) category(key string) ([]object, fieldState) {
	raw, ok := s[key]
	if !ok {
		return nil, fieldAbsent
	}
	var items []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &items) != nil {
		return nil, fieldInvalid
	}
	result := make([]object, 0, len(items))
	for _, item := range items {
		// non-object entries end up with no fields at all, and get skipped
		// for lacking an index.
		obj, _ := decodeObject(item)
		result = append(result, obj)
	}
	return result, fieldPresent
}

// object is a decoded JSON object whose values are decoded lazily.
type object map[string]json.RawMessage

func decodeObject(raw json.RawMessage) (object, bool) {
	var obj object
	if isNull(raw) || json.Unmarshal(raw, &obj) != nil {
		return nil, false
	}
	return obj, true
}

func (o object) intField(key string) (int, fieldState) {
	raw, ok := o[key]
	if !ok {
		return 0, fieldAbsent
	}
	var n int
	if isNull(raw) || json.Unmarshal(raw, &n) != nil {
		return 0, fieldInvalid
	}
	return n, fieldPresent
}

func (o object) stringField(key string) (string, fieldState) {
	raw, ok := o[key]
	if !ok {
		return "", fieldAbsent
	}
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return "", fieldInvalid
	}
	return s, fieldPresent
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
