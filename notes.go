package main

import "math"

// C64 system clocks in Hz and the length of one video frame in cycles.
const (
	palClock  = 985248
	ntscClock = 1022727

	palFrameCycles  = 63 * 312
	ntscFrameCycles = 65 * 263
)

const numNotes = 96

// middleC is C-4 in the note table.
const middleC = 48

var notename = func() [numNotes]string {
	names := [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}
	var n [numNotes]string
	for i := range n {
		n[i] = names[i%12] + string(rune('0'+i/12))
	}
	return n
}()

var filtername = [8]string{"Off", "Low", "Bnd", "L+B", "Hi ", "L+H", "B+H", "LBH"}

// NoteTable holds the frequency register value of every note from C-0
// to B-7.
type NoteTable [numNotes]uint16

// newNoteTable returns the equal tempered table for A-4 = 440 Hz on a
// chip clocked at clockHz.
func newNoteTable(clockHz float64) *NoteTable {
	var t NoteTable
	for n := range t {
		hz := 440 * math.Pow(2, float64(n-57)/12)
		t[n] = freqReg(hz, clockHz)
	}
	return &t
}

// Recalibrate rebuilds the table so that the note with absolute number
// basenote (0x80-0xdf) has frequency register value basefreq.
func (t *NoteTable) Recalibrate(basefreq, basenote int) {
	base := basenote & 0x7f
	if base >= numNotes || basefreq <= 0 {
		return
	}
	for n := range t {
		f := float64(basefreq) * math.Pow(2, float64(n-base)/12)
		t[n] = uint16(min(f+0.5, 0xffff))
	}
}

// Nearest returns the note closest to freq. Once prev is the best match
// so far its distance is divided by sticky, so that vibrato around a
// note keeps the old one.
func (t *NoteTable) Nearest(freq uint16, prev, sticky int) int {
	if sticky < 1 {
		sticky = 1
	}
	note := 0
	dist := math.MaxInt
	for n, cmp := range t {
		if d := absDiffInt(int(freq), int(cmp)); d < dist {
			dist = d
			// favor old note
			if n == prev {
				dist /= sticky
			}
			note = n
		}
	}
	return note
}

func freqReg(hz, clockHz float64) uint16 {
	return uint16(min(hz*(1<<24)/clockHz+0.5, 0xffff))
}
