package main

import (
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain reads every frame of src until the end of the stream.
func drain(t *testing.T, src FrameSource) []*Frame {
	t.Helper()
	var frames []*Frame
	for {
		f, err := src.NextFrame()
		if err == io.EOF {
			return frames
		}
		require.NoError(t, err)
		frames = append(frames, f)
	}
}

func TestScriptSource_Frames(t *testing.T) {
	src := newScriptSource("test.lua", `
write(24, 15)
write(0, freq(48) % 256)
wait(100)
write(4, 17)
frame()
write(4, 16)
`, newNoteTable(palClock), 1000)
	defer src.Close()

	frames := drain(t, src)
	require.Len(t, frames, 2)
	assert.Equal(t, []RegWrite{
		{Cycle: 0, Addr: 24, Value: 15},
		{Cycle: 0, Addr: 0, Value: 0x67},
		{Cycle: 100, Addr: 4, Value: 17},
	}, frames[0].Writes)
	assert.Equal(t, 1000, frames[0].Cycles)
	assert.Equal(t, []RegWrite{{Cycle: 0, Addr: 4, Value: 16}}, frames[1].Writes)

	_, err := src.NextFrame()
	assert.Equal(t, io.EOF, err, "end of stream is sticky")
}

func TestScriptSource_WaitCrossesFrames(t *testing.T) {
	src := newScriptSource("test.lua", `
wait(FRAME_CYCLES * 2 + 500)
write(1, 2)
`, newNoteTable(palClock), 1000)
	defer src.Close()

	frames := drain(t, src)
	require.Len(t, frames, 3)
	assert.Empty(t, frames[0].Writes)
	assert.Empty(t, frames[1].Writes)
	assert.Equal(t, []RegWrite{{Cycle: 500, Addr: 1, Value: 2}}, frames[2].Writes)
}

func TestScriptSource_Errors(t *testing.T) {
	for _, script := range []string{
		`write(99, 0)`,
		`write(0, 256)`,
		`wait(-1)`,
		`freq(96)`,
		`this is not lua`,
	} {
		src := newScriptSource("bad.lua", script, newNoteTable(palClock), 1000)
		_, err := src.NextFrame()
		assert.Error(t, err, script)
		assert.NotEqual(t, io.EOF, err, script)
		assert.Contains(t, err.Error(), "bad.lua", script)
		assert.NoError(t, src.Close())
	}
}

func TestScriptSource_CloseStopsScript(t *testing.T) {
	src := newScriptSource("loop.lua", `
while true do
	write(4, 17)
	frame()
end
`, newNoteTable(palClock), 1000)

	f, err := src.NextFrame()
	require.NoError(t, err)
	assert.Len(t, f.Writes, 1)
	assert.NoError(t, src.Close())
}

func TestOpenScript(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "tune.lua", []byte("write(24, 15)"), 0o644))

	src, err := openScript(fs, "tune.lua", newNoteTable(palClock), palFrameCycles)
	require.NoError(t, err)
	defer src.Close()
	frames := drain(t, src)
	require.Len(t, frames, 1)
	assert.Equal(t, palFrameCycles, frames[0].Cycles)

	_, err = openScript(fs, "missing.lua", newNoteTable(palClock), palFrameCycles)
	assert.Error(t, err)
}
