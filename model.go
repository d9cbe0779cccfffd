package webio

import (
	"context"
	"fmt"
)

// Output is a digital output of the device.
//
// Outputs are owned by the Client and updated in place on every status
// update, so a pointer obtained earlier always reflects the latest state.
// Callers must not write to State or Available.
type Output struct {
	Index     int
	State     *bool
	Available bool
	Serial    string

	transport Transport
}

func (o *Output) TurnOn(ctx context.Context) error {
	return o.transport.SetOutput(ctx, o.Index, true)
}

func (o *Output) TurnOff(ctx context.Context) error {
	return o.transport.SetOutput(ctx, o.Index, false)
}

func (o *Output) String() string {
	state := "unknown"
	if o.State != nil {
		state = fmt.Sprint(*o.State)
	}
	return fmt.Sprintf("Output[index: %d, state: %s, available: %v]", o.Index, state, o.Available)
}

// DefaultPassType is the pass type of zones that do not report one.
const DefaultPassType = 2

// Zone is an alarm zone of the device.
//
// Like outputs, zones are shared by pointer and mutated in place.
type Zone struct {
	Index     int
	Name      *string
	State     ZoneState
	PassType  int
	Available bool
	Serial    string

	transport Transport
}

func (z *Zone) Arm(ctx context.Context, passcode *string) error {
	return z.transport.ArmZone(ctx, z.Index, true, passcode)
}

func (z *Zone) Disarm(ctx context.Context, passcode *string) error {
	return z.transport.ArmZone(ctx, z.Index, false, passcode)
}

// DisplayName returns the name reported by the device, if any.
func (z *Zone) DisplayName() string {
	if z.Name == nil {
		return ""
	}
	return *z.Name
}

func (z *Zone) String() string {
	return fmt.Sprintf("Zone[name: %q, state: %s, available: %v]", z.DisplayName(), z.State, z.Available)
}

// Delta holds the entities created by a status update.
type Delta struct {
	Outputs []*Output
	Zones   []*Zone
}

// Empty reports whether the update created nothing.
func (d Delta) Empty() bool {
	return len(d.Outputs) == 0 && len(d.Zones) == 0
}

type deviceInfo struct {
	serial string
	name   string
}
