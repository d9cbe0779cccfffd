package webio

// ZoneState is the normalized state of an alarm zone.
type ZoneState uint8

const (
	ZoneUnknown ZoneState = iota
	ZoneDisarmed
	ZoneArmedAway
	ZoneTriggered
)

func (s ZoneState) String() string {
	switch s {
	case ZoneDisarmed:
		return "disarmed"
	case ZoneArmedAway:
		return "armed_away"
	case ZoneTriggered:
		return "triggered"
	default:
		return "unknown"
	}
}

// Known reports whether the state is anything but unknown.
func (s ZoneState) Known() bool {
	return s != ZoneUnknown
}

// outputState maps the device output status code.
// Anything other than "true" or "false" means the output is unavailable.
func outputState(code string) *bool {
	var v bool
	switch code {
	case "true":
		v = true
	case "false":
		v = false
	default:
		return nil
	}
	return &v
}

// zoneState maps the device zone status code.
// Codes introduced by newer firmware degrade to ZoneUnknown.
func zoneState(code string) ZoneState {
	switch code {
	case "alarm":
		return ZoneTriggered
	case "armed":
		return ZoneArmedAway
	case "disarmed":
		return ZoneDisarmed
	default:
		return ZoneUnknown
	}
}
