package webio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSnapshot(t *testing.T) {
	_, err := ParseSnapshot([]byte(`[1, 2]`))
	require.Error(t, err)

	snap, err := ParseSnapshot([]byte(`{"outputs": [{"index": 1}], "zones": "nope"}`))
	require.NoError(t, err)

	outputs, state := snap.category(keyOutputs)
	require.Equal(t, fieldPresent, state)
	require.Len(t, outputs, 1)

	_, state = snap.category(keyZones)
	require.Equal(t, fieldInvalid, state)

	_, state = snap.category("inputs")
	require.Equal(t, fieldAbsent, state)
}

func TestObjectFields(t *testing.T) {
	obj, ok := decodeObject([]byte(`{"index": 3, "name": "Hall", "neg": -2, "null": null, "float": 1.5}`))
	require.True(t, ok)

	n, state := obj.intField("index")
	require.Equal(t, fieldPresent, state)
	require.Equal(t, 3, n)

	n, state = obj.intField("neg")
	require.Equal(t, fieldPresent, state)
	require.Equal(t, -2, n)

	_, state = obj.intField("name")
	require.Equal(t, fieldInvalid, state)
	_, state = obj.intField("float")
	require.Equal(t, fieldInvalid, state)
	_, state = obj.intField("null")
	require.Equal(t, fieldInvalid, state)
	_, state = obj.intField("missing")
	require.Equal(t, fieldAbsent, state)

	s, state := obj.stringField("name")
	require.Equal(t, fieldPresent, state)
	require.Equal(t, "Hall", s)
	_, state = obj.stringField("index")
	require.Equal(t, fieldInvalid, state)

	_, ok = decodeObject([]byte(`null`))
	require.False(t, ok)
	_, ok = decodeObject([]byte(`"x"`))
	require.False(t, ok)

	require.Equal(t, "absent", fieldAbsent.String())
	require.Equal(t, "invalid", fieldInvalid.String())
	require.Equal(t, "present", fieldPresent.String())
}
