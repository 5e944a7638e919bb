package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDump renders frames as a register table.
func writeDump(t *testing.T, w io.Writer, opt *SidOutputSettings, frames ...*Frame) {
	t.Helper()
	state := NewSID()
	runDecoder(t, &ScreenOutputSidRegisters{Options: opt, SidState: state, Out: w}, state, frames...)
}

func dumpFrames() []*Frame {
	return []*Frame{
		noteFrame(),
		{Cycles: 0x4000, Writes: []RegWrite{{Addr: 0x04, Value: 0x10}}},
		{Cycles: palFrameCycles},
	}
}

func TestDumpSource_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	writeDump(t, &buf, &SidOutputSettings{}, dumpFrames()...)

	d, err := newDumpSource(&buf, ntscFrameCycles)
	require.NoError(t, err)
	defer d.Close()

	f, err := d.NextFrame()
	require.NoError(t, err)
	assert.Len(t, f.Writes, 25, "first row lists every register")
	assert.Equal(t, palFrameCycles, f.Cycles)
	state := NewSID()
	state.ApplyFrame(f)
	assert.Equal(t, uint16(0x1167), state.Channel[0].Freq)
	assert.Equal(t, uint8(0x11), state.Channel[0].Wave)
	assert.Equal(t, uint8(0x1f), state.Filt.Type)

	f, err = d.NextFrame()
	require.NoError(t, err)
	assert.Equal(t, []RegWrite{{Addr: 0x04, Value: 0x10}}, f.Writes)
	assert.Equal(t, 0x4000, f.Cycles)

	f, err = d.NextFrame()
	require.NoError(t, err)
	assert.Empty(t, f.Writes)

	_, err = d.NextFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDumpSource_TimeColumn(t *testing.T) {
	var buf bytes.Buffer
	writeDump(t, &buf, &SidOutputSettings{Timeseconds: 1}, dumpFrames()...)
	require.Contains(t, buf.String(), "|0:00.01|")

	d, err := newDumpSource(&buf, palFrameCycles)
	require.NoError(t, err)
	n := 0
	for {
		_, err := d.NextFrame()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 3, n)
}

func TestDumpSource_Compressed(t *testing.T) {
	for name, magic := range map[string][]byte{"dump.txt.zst": zstdMagic, "dump.txt.gz": gzipMagic} {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			out, err := openOutput(fs, name, "")
			require.NoError(t, err)
			writeDump(t, out, &SidOutputSettings{}, dumpFrames()...)
			require.NoError(t, out.Close())

			raw, err := afero.ReadFile(fs, name)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(raw, magic))

			d, err := openDump(fs, name, palFrameCycles)
			require.NoError(t, err)
			f, err := d.NextFrame()
			require.NoError(t, err)
			assert.Len(t, f.Writes, 25)
			require.NoError(t, d.Close())
		})
	}
}

func TestDumpSource_BadLine(t *testing.T) {
	for _, row := range []string{
		"| 0 | 00 00 |",
		"|     0 | 00 00 00 00 00 00 | 00 00 00 00 00 00 00 | 00 00 00 00 00 00 00 | 00 00 00 00 |  4CC8 |",
		"|     0 | 00 00 00 00 00 00 ZZ | 00 00 00 00 00 00 00 | 00 00 00 00 00 00 00 | 00 00 00 00 |  4CC8 |",
		"|     0 | 00 00 00 00 00 00 00 | 00 00 00 00 00 00 00 | 00 00 00 00 00 00 00 | 00 00 00 00 |  time |",
	} {
		input := registersHeader + "\n" + registersSeparator + "\n" + row + "\n"
		d, err := newDumpSource(strings.NewReader(input), palFrameCycles)
		require.NoError(t, err)
		_, err = d.NextFrame()
		assert.ErrorIs(t, err, ErrBadDumpLine, row)
		assert.Contains(t, err.Error(), " 3:", row)
	}
}

func TestDumpSource_ZeroFrameLength(t *testing.T) {
	row := "|     0 | 00 00 00 00 00 00 00 | 00 00 00 00 00 00 00 | 00 00 00 00 00 00 00 | 00 00 00 0F |  0000 |\n"
	d, err := newDumpSource(strings.NewReader(row), ntscFrameCycles)
	require.NoError(t, err)
	f, err := d.NextFrame()
	require.NoError(t, err)
	assert.Equal(t, ntscFrameCycles, f.Cycles)
}

func TestOpenDump_Missing(t *testing.T) {
	_, err := openDump(afero.NewMemMapFs(), "nope", palFrameCycles)
	assert.Error(t, err)
}
