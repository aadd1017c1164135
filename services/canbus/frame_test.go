package canbus

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitat-go/types"
)

func TestEncodeCommand_Layout(t *testing.T) {
	f := EncodeCommand(types.Command{Target: types.ModuleFeeder, Code: types.FeederFeedOnce, Param: 20})
	assert.Equal(t, uint32(0x104), f.ID)
	assert.Equal(t, uint8(8), f.Len)
	assert.Equal(t, [8]byte{1, 0, 0, 0, 20, 0, 0, 0}, f.Data)

	f = EncodeCommand(types.Command{Target: types.ModuleGrow, Code: types.GrowSetLEDBrightness, Param: 0x01020304})
	assert.Equal(t, uint32(0x102), f.ID)
	assert.Equal(t, [8]byte{1, 1, 2, 3, 4, 0, 0, 0}, f.Data)
}

func TestEncodeDecodeCommand_RoundTrip(t *testing.T) {
	for _, p := range []int32{0, 1, -1, 75, math.MaxInt32, math.MinInt32} {
		in := types.Command{Target: types.ModuleTank, Code: types.TankSetLight, Param: p}
		out, ok := DecodeCommand(EncodeCommand(in))
		require.True(t, ok)
		assert.Equal(t, in, out)
	}
}

func TestDecodeCommand_RejectsTelemetry(t *testing.T) {
	_, ok := DecodeCommand(Frame{ID: TankStatusID, Len: 8})
	assert.False(t, ok)
	_, ok = DecodeCommand(Frame{ID: 0x101, Len: 4})
	assert.False(t, ok)
}

func TestStatusID(t *testing.T) {
	assert.Equal(t, TankStatusID, StatusID(types.ModuleTank))
	assert.Equal(t, GrowStatusID, StatusID(types.ModuleGrow))
	assert.Equal(t, NutrientStatusID, StatusID(types.ModuleNutrient))
	assert.Equal(t, FeederStatusID, StatusID(types.ModuleFeeder))
	assert.Zero(t, StatusID(types.ModuleController))
}
