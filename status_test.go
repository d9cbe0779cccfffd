package webio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZoneState(t *testing.T) {
	for code, expected := range map[string]ZoneState{
		"alarm":    ZoneTriggered,
		"armed":    ZoneArmedAway,
		"disarmed": ZoneDisarmed,
		"":         ZoneUnknown,
		"Armed":    ZoneUnknown,
		"partial":  ZoneUnknown,
	} {
		t.Run(code, func(t *testing.T) {
			require.Equal(t, expected, zoneState(code))
		})
	}

	require.Equal(t, "triggered", ZoneTriggered.String())
	require.Equal(t, "armed_away", ZoneArmedAway.String())
	require.Equal(t, "disarmed", ZoneDisarmed.String())
	require.Equal(t, "unknown", ZoneUnknown.String())
	require.False(t, ZoneUnknown.Known())
	require.True(t, ZoneDisarmed.Known())
}

func TestOutputState(t *testing.T) {
	require.True(t, *outputState("true"))
	require.False(t, *outputState("false"))
	require.Nil(t, outputState(""))
	require.Nil(t, outputState("TRUE"))
	require.Nil(t, outputState("1"))

	a, b := outputState("true"), outputState("true")
	require.NotSame(t, a, b)
}
