package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Init at $1000 sets the volume, play at $1006 starts voice 1.
var testProgram = []byte{
	0xa9, 0x0f, // LDA #$0F
	0x8d, 0x18, 0xd4, // STA $D418
	0x60,       // RTS
	0xa9, 0x11, // LDA #$11
	0x8d, 0x04, 0xd4, // STA $D404
	0x60, // RTS
}

func testTune(data []byte, play uint16) *SidTune {
	return &SidTune{
		Magic:       "PSID",
		Version:     2,
		LoadAddress: 0x1000,
		InitAddress: 0x1000,
		PlayAddress: play,
		Songs:       1,
		StartSong:   1,
		Data:        data,
	}
}

func TestPSIDSource_Frames(t *testing.T) {
	src := newPSIDSource(testTune(testProgram, 0x1006), 0, false, nil)
	defer src.Close()

	f, err := src.NextFrame()
	require.NoError(t, err)
	require.Len(t, f.Writes, 2)
	assert.Equal(t, byte(0x18), f.Writes[0].Addr, "init writes come first")
	assert.Equal(t, byte(0x0f), f.Writes[0].Value)
	assert.Equal(t, byte(0x04), f.Writes[1].Addr)
	assert.Equal(t, byte(0x11), f.Writes[1].Value)
	assert.Less(t, int(f.Writes[1].Cycle), palFrameCycles)
	assert.Equal(t, palFrameCycles, f.Cycles)
	assert.NotZero(t, f.CPUCycles)

	f, err = src.NextFrame()
	require.NoError(t, err)
	require.Len(t, f.Writes, 1)
	assert.Equal(t, byte(0x04), f.Writes[0].Addr)
}

func TestPSIDSource_NTSCFrame(t *testing.T) {
	src := newPSIDSource(testTune(testProgram, 0x1006), 0, true, nil)
	f, err := src.NextFrame()
	require.NoError(t, err)
	assert.Equal(t, ntscFrameCycles, f.Cycles)
}

func TestPSIDSource_CIATimer(t *testing.T) {
	prog := []byte{
		0xa9, 0x00, // LDA #$00
		0x8d, 0x04, 0xdc, // STA $DC04
		0xa9, 0x40, // LDA #$40
		0x8d, 0x05, 0xdc, // STA $DC05
		0x60, // RTS
		0xea, // NOP
		0x60, // RTS
	}
	src := newPSIDSource(testTune(prog, 0x100b), 0, false, nil)
	f, err := src.NextFrame()
	require.NoError(t, err)
	assert.Equal(t, 0x4000, f.Cycles)
	assert.Empty(t, f.Writes)
}

func TestPSIDSource_SubtuneInAccumulator(t *testing.T) {
	prog := []byte{
		0x8d, 0x00, 0xd4, // STA $D400
		0x60, // RTS
		0xea, // NOP
		0x60, // RTS
	}
	src := newPSIDSource(testTune(prog, 0x1004), 5, false, nil)
	f, err := src.NextFrame()
	require.NoError(t, err)
	require.NotEmpty(t, f.Writes)
	assert.Equal(t, RegWrite{Addr: 0x00, Value: 5}, f.Writes[0])
}

func TestPSIDSource_MirroredRegisters(t *testing.T) {
	prog := []byte{
		0xa9, 0x21, // LDA #$21
		0x8d, 0x38, 0xd4, // STA $D438
		0x60, // RTS
		0xea, // NOP
		0x60, // RTS
	}
	src := newPSIDSource(testTune(prog, 0x1006), 0, false, nil)
	f, err := src.NextFrame()
	require.NoError(t, err)
	require.Len(t, f.Writes, 1)
	assert.Equal(t, byte(0x18), f.Writes[0].Addr)
}

func TestPSIDSource_Trace(t *testing.T) {
	var trace bytes.Buffer
	src := newPSIDSource(testTune(testProgram, 0x1006), 0, false, &trace)
	_, err := src.NextFrame()
	require.NoError(t, err)
	assert.Contains(t, trace.String(), "PC: 1000")
	assert.Contains(t, trace.String(), "PC: 1006")
}
