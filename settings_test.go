package main

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picosid/sid"
)

func parseTestArgs(t *testing.T, args ...string) (*SidOutputSettings, error) {
	t.Helper()
	fs := flag.NewFlagSet("picosid", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opt := &SidOutputSettings{}
	return opt, opt.parseArgs(fs, args)
}

func TestSettings_Defaults(t *testing.T) {
	opt, err := parseTestArgs(t, "tune.sid")
	require.NoError(t, err)
	assert.Equal(t, -1, opt.Subtune)
	assert.Equal(t, 0xb0, opt.Basenote)
	assert.Equal(t, 1, opt.Lowres)
	assert.Equal(t, 60, opt.Seconds)
	assert.Equal(t, 44100, opt.Rate)
	assert.Equal(t, 1, opt.Step)
	assert.Equal(t, []string{"tune.sid"}, opt.Args)
	assert.NoError(t, opt.validate())

	assert.Equal(t, sid.MOS6581, opt.chipType())
	assert.Equal(t, 50, opt.framesPerSecond())
	assert.Equal(t, palFrameCycles, opt.frameCycles())
	assert.Equal(t, float64(palClock), opt.clockHz())
	assert.False(t, opt.wantsAudio())
}

func TestSettings_Flags(t *testing.T) {
	opt, err := parseTestArgs(t,
		"-a", "2", "-m", "1", "-model", "8580", "-ntsc", "-wav", "out.wav",
		"-step", "4", "-boost", "-nofilter", "-input", "-100", "-out", "dump.zst",
		"tune.sid")
	require.NoError(t, err)
	require.NoError(t, opt.validate())

	assert.Equal(t, 2, opt.Subtune)
	assert.Equal(t, modeRegisters, opt.DecoderOutput)
	assert.Equal(t, sid.MOS8580, opt.chipType())
	assert.True(t, opt.NTSC)
	assert.True(t, opt.Boost)
	assert.True(t, opt.NoFilter)
	assert.False(t, opt.NoExtFilter)
	assert.Equal(t, -100, opt.Input)
	assert.Equal(t, 4, opt.Step)
	assert.Equal(t, "dump.zst", opt.Out)
	assert.True(t, opt.wantsAudio())

	assert.Equal(t, 60, opt.framesPerSecond())
	assert.Equal(t, ntscFrameCycles, opt.frameCycles())
	assert.Equal(t, float64(ntscClock), opt.clockHz())
}

func TestSettings_UnknownFlag(t *testing.T) {
	_, err := parseTestArgs(t, "-bogus", "tune.sid")
	assert.Error(t, err)
}

func TestSettings_Validate(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"-model", "6582", "tune.sid"},
		{"-rate", "100", "tune.sid"},
		{"-step", "0", "tune.sid"},
		{"-input", "40000", "tune.sid"},
		{"-m", "7", "tune.sid"},
		{"-replay", "a.txt", "-script", "b.lua"},
	} {
		opt, err := parseTestArgs(t, args...)
		require.NoError(t, err)
		assert.Error(t, opt.validate(), "%v", args)
	}

	opt, err := parseTestArgs(t, "-replay", "dump.txt")
	require.NoError(t, err)
	assert.NoError(t, opt.validate(), "replay needs no tune")
}
