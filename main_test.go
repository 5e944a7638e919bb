package main

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withFs runs the command against a memory filesystem.
func withFs(t *testing.T) afero.Fs {
	t.Helper()
	old := appFs
	appFs = afero.NewMemMapFs()
	t.Cleanup(func() { appFs = old })
	return appFs
}

func runArgs(t *testing.T, args ...string) error {
	t.Helper()
	opt, err := parseTestArgs(t, args...)
	require.NoError(t, err)
	return run(opt)
}

func TestRun_DumpAndReplay(t *testing.T) {
	fs := withFs(t)
	raw := buildPSID(psidHeader{version: 2, load: 0x1000, play: 0x1006, songs: 1, startSong: 1}, testProgram)
	require.NoError(t, afero.WriteFile(fs, "tune.sid", raw, 0o644))

	require.NoError(t, runArgs(t, "-m", "1", "-t", "1", "-out", "dump.txt",
		"-wav", "out.wav", "-savestate", "chip.state", "tune.sid"))

	dump, err := afero.ReadFile(fs, "dump.txt")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(dump), "\n"), "\n")
	assert.Len(t, lines, 2+50)
	assert.Contains(t, lines[2], "| 00 00 00 0F |  4CC8 |")

	for _, name := range []string{"out.wav", "chip.state"} {
		ok, err := afero.Exists(fs, name)
		require.NoError(t, err)
		assert.True(t, ok, name)
	}

	require.NoError(t, runArgs(t, "-m", "1", "-t", "1", "-replay", "dump.txt", "-out", "again.txt"))
	again, err := afero.ReadFile(fs, "again.txt")
	require.NoError(t, err)
	assert.Equal(t, string(dump), string(again))
}

func TestRun_Script(t *testing.T) {
	fs := withFs(t)
	script := `
write(24, 15)
write(0, freq(48) % 256)
write(1, math.floor(freq(48) / 256))
write(4, 17)
frame()
`
	require.NoError(t, afero.WriteFile(fs, "notes.lua", []byte(script), 0o644))
	require.NoError(t, runArgs(t, "-script", "notes.lua", "-out", "notes.txt"))

	notes, err := afero.ReadFile(fs, "notes.txt")
	require.NoError(t, err)
	assert.Contains(t, string(notes), "1167  C-4 B0")
}

func TestRun_Errors(t *testing.T) {
	withFs(t)
	assert.Error(t, runArgs(t))
	assert.Error(t, runArgs(t, "missing.sid"))
	assert.Error(t, runArgs(t, "-script", "missing.lua"))
}
