package env

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMachineID(t *testing.T) {
	id := MachineID()
	require.NotEmpty(t, id)
	require.Equal(t, id, MachineID())
	require.True(t, strings.HasPrefix(id, DeviceID()))
	require.True(t, len(DeviceID()) <= 12)
	require.Equal(t, "procond:"+id, ClientID("procond"))
}

func TestNewSessionID(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	require.Len(t, a, 20)
	require.NotEqual(t, a, b)
}
