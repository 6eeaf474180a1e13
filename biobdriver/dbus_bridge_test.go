package biobdriver

import (
	"testing"

	"go-biobase-guidance-driver/guidance"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSignal(t *testing.T) {
	sig := &dbus.Signal{
		Path: "/org/biobase/Gateway1",
		Name: "org.biobase.Gateway1.Event",
		Body: []interface{}{"user_input", `{"key":"FOOTSWITCH"}`},
	}
	ev, err := decodeSignal(sig)
	require.NoError(t, err)
	assert.Equal(t, EventUserInput, ev.Kind)
	assert.Equal(t, "FOOTSWITCH", ev.Key)

	sig.Body = []interface{}{"device_count", `{"device_count":2}`}
	ev, err = decodeSignal(sig)
	require.NoError(t, err)
	assert.Equal(t, 2, ev.DeviceCount)

	sig.Body = []interface{}{"init_progress", ""}
	ev, err = decodeSignal(sig)
	require.NoError(t, err)
	assert.Equal(t, EventInitProgress, ev.Kind)
}

func TestDecodeSignalErrors(t *testing.T) {
	tests := map[string]*dbus.Signal{
		"name":    {Name: "org.freedesktop.DBus.NameAcquired", Body: []interface{}{"x", "{}"}},
		"arity":   {Name: "org.biobase.Gateway1.Event", Body: []interface{}{"quality"}},
		"kind":    {Name: "org.biobase.Gateway1.Event", Body: []interface{}{int32(3), "{}"}},
		"payload": {Name: "org.biobase.Gateway1.Event", Body: []interface{}{"quality", []byte("{}")}},
		"json":    {Name: "org.biobase.Gateway1.Event", Body: []interface{}{"quality", "{"}},
		"unknown": {Name: "org.biobase.Gateway1.Event", Body: []interface{}{"cmd_open", "{}"}},
	}
	for name, sig := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := decodeSignal(sig)
			assert.Error(t, err)
		})
	}
}

func TestVendorResult(t *testing.T) {
	assert.NoError(t, vendorResult("Open", 0))
	err := vendorResult("Open", int32(guidance.OpticsSurfaceDirty))
	assert.True(t, IsWarning(err))
	assert.Equal(t, "Open: OPTICS_SURFACE_DIRTY (1)", err.Error())
}
