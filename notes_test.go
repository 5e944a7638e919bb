package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoteTable_PAL(t *testing.T) {
	notes := newNoteTable(palClock)
	assert.Equal(t, uint16(0x1167), notes[middleC])
	assert.Equal(t, uint16(0x1d45), notes[57])
	assert.Equal(t, uint16(0x0116), notes[0])
	assert.Equal(t, uint16(0xffff), notes[numNotes-1], "clamped to the register width")
}

func TestNoteTable_NTSC(t *testing.T) {
	notes := newNoteTable(ntscClock)
	assert.Equal(t, uint16(0x10c4), notes[middleC])
}

func TestNoteTable_Names(t *testing.T) {
	assert.Equal(t, "C-0", notename[0])
	assert.Equal(t, "C-4", notename[middleC])
	assert.Equal(t, "A-4", notename[57])
	assert.Equal(t, "B-7", notename[numNotes-1])
}

func TestNoteTable_Recalibrate(t *testing.T) {
	notes := newNoteTable(palClock)
	notes.Recalibrate(0x1000, 0xb0)
	assert.Equal(t, uint16(0x1000), notes[middleC])
	assert.Equal(t, uint16(0x2000), notes[middleC+12])
	assert.Equal(t, uint16(0x0800), notes[middleC-12])

	before := *notes
	notes.Recalibrate(0x1000, 0xff)
	assert.Equal(t, before, *notes, "base note outside the table is ignored")
}

func TestNoteTable_Nearest(t *testing.T) {
	notes := newNoteTable(palClock)

	assert.Equal(t, middleC, notes.Nearest(0x1167, -1, 1))
	assert.Equal(t, middleC, notes.Nearest(0x1170, -1, 1))

	// 4600 lies closer to C#4 than to C-4.
	assert.Equal(t, middleC+1, notes.Nearest(4600, -1, 1))
	assert.Equal(t, middleC+1, notes.Nearest(4600, middleC, 1))
	assert.Equal(t, middleC, notes.Nearest(4600, middleC, 4), "sticky factor keeps the old note")
}

func TestFreqReg(t *testing.T) {
	hz := 440.0
	assert.Equal(t, uint16(0x1d45), freqReg(hz, palClock))
	assert.Equal(t, uint16(0xffff), freqReg(hz*100, palClock))
}
