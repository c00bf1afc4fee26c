package codegen

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pine/internal/errors"
)

func newTestRegisterFile(spillBase int) (*registerFile, *[]string) {
	var emitted []string
	rf := newRegisterFile(spillBase, func(format string, args ...any) {
		emitted = append(emitted, fmt.Sprintf(format, args...))
	})
	return rf, &emitted
}

func TestAcquireHandsOutAllTemporaries(t *testing.T) {
	rf, emitted := newTestRegisterFile(0)

	for i := 0; i < len(tempRegs); i++ {
		v, err := rf.Acquire()
		require.NoError(t, err)
		assert.Equal(t, tempRegs[i], rf.regName(v))
	}
	assert.Empty(t, *emitted, "no spill code while registers are free")
}

func TestAcquireSpillsOldestFirst(t *testing.T) {
	rf, emitted := newTestRegisterFile(8)

	values := make([]*Value, len(tempRegs))
	for i := range values {
		v, err := rf.Acquire()
		require.NoError(t, err)
		values[i] = v
	}

	// The eighth acquire evicts t0, the oldest resident, to the first
	// spill slot above the variable area.
	v, err := rf.Acquire()
	require.NoError(t, err)
	assert.Equal(t, "t0", rf.regName(v))
	require.Len(t, *emitted, 1)
	assert.Equal(t, "sw t0, 8(sp)", (*emitted)[0])

	// The ninth evicts t1.
	_, err = rf.Acquire()
	require.NoError(t, err)
	assert.Equal(t, "sw t1, 12(sp)", (*emitted)[1])
}

func TestMaterializeReloadsSpilledValue(t *testing.T) {
	rf, emitted := newTestRegisterFile(0)

	first, err := rf.Acquire()
	require.NoError(t, err)
	for i := 1; i < len(tempRegs); i++ {
		_, err := rf.Acquire()
		require.NoError(t, err)
	}
	// Evict first.
	extra, err := rf.Acquire()
	require.NoError(t, err)
	require.Equal(t, "sw t0, 0(sp)", (*emitted)[0])

	// Free a register so the reload does not have to spill again.
	rf.Release(extra)

	r, err := rf.Materialize(first)
	require.NoError(t, err)
	assert.Equal(t, "t0", r)
	assert.Equal(t, "lw t0, 0(sp)", (*emitted)[1])

	// Its slot is free again for the next spill.
	slot, err := rf.freeSlot()
	require.NoError(t, err)
	assert.Equal(t, 0, slot)
}

func TestMaterializeResidentValueEmitsNothing(t *testing.T) {
	rf, emitted := newTestRegisterFile(0)

	v, err := rf.Acquire()
	require.NoError(t, err)
	r, err := rf.Materialize(v)
	require.NoError(t, err)
	assert.Equal(t, "t0", r)
	assert.Empty(t, *emitted)
}

func TestReleaseMakesRegisterReusable(t *testing.T) {
	rf, _ := newTestRegisterFile(0)

	v, err := rf.Acquire()
	require.NoError(t, err)
	rf.Release(v)

	w, err := rf.Acquire()
	require.NoError(t, err)
	assert.Equal(t, "t0", rf.regName(w))
}

func TestPinnedValuesAreNotEvicted(t *testing.T) {
	rf, emitted := newTestRegisterFile(0)

	pinned, err := rf.Acquire()
	require.NoError(t, err)
	rf.Pin(pinned)

	for i := 1; i < len(tempRegs); i++ {
		_, err := rf.Acquire()
		require.NoError(t, err)
	}
	_, err = rf.Acquire()
	require.NoError(t, err)

	// t0 is pinned, so the spill went to t1.
	assert.Equal(t, "sw t1, 0(sp)", (*emitted)[0])
	assert.Equal(t, "t0", rf.regName(pinned))
}

func TestSpillRegionExhaustion(t *testing.T) {
	// Leave room for exactly one spill slot.
	rf, _ := newTestRegisterFile(frameSize - 4)

	for i := 0; i < len(tempRegs); i++ {
		_, err := rf.Acquire()
		require.NoError(t, err)
	}
	_, err := rf.Acquire()
	require.NoError(t, err, "first spill still fits")

	_, err = rf.Acquire()
	require.Error(t, err)
	ce := err.(*errors.CompileError)
	assert.Equal(t, errors.ErrorSpillExhausted, ce.Code)
}
