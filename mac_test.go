package webio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMacAddressInvalidIP(t *testing.T) {
	_, err := MacAddress("not-an-ip")
	require.ErrorContains(t, err, "invalid ip")
}
