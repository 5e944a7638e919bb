package main

import "picosid/sid"

// Sid is the register-level view of a SID chip that the table decoders
// work from. It is rebuilt from the register writes of each frame.
type Sid struct {
	Channel  [3]Voice
	Filt     Filter
	Register [sid.NumRegisters]byte
}

// Voice represents a voice in the SID chip.
type Voice struct {
	Freq  uint16
	Pulse uint16
	ADSR  uint16
	Wave  uint8
	Note  int
}

// Filter represents the filter in the SID chip.
type Filter struct {
	Type    uint8
	Control uint8
	Cutoff  uint16
}

func NewSID() *Sid {
	return &Sid{}
}

func (s *Sid) CopyFrom(src *Sid) {
	*s = *src
}

// Apply records one register write and refreshes the decoded fields.
// Writes outside the write-only register range are ignored.
func (s *Sid) Apply(w RegWrite) {
	addr := int(w.Addr & 0x1f)
	if addr >= sid.NumRegisters {
		return
	}
	s.Register[addr] = w.Value
	s.decode()
}

// ApplyFrame applies every write of f in order.
func (s *Sid) ApplyFrame(f *Frame) {
	for _, w := range f.Writes {
		s.Apply(w)
	}
}

func (s *Sid) decode() {
	r := &s.Register
	for i := range s.Channel {
		o := i * sid.VoiceRegisters
		v := &s.Channel[i]
		v.Freq = uint16(r[o+sid.RegFreqLo]) | uint16(r[o+sid.RegFreqHi])<<8
		v.Pulse = (uint16(r[o+sid.RegPWLo]) | uint16(r[o+sid.RegPWHi])<<8) & 0xfff
		v.Wave = r[o+sid.RegControl]
		v.ADSR = uint16(r[o+sid.RegAttackDecay])<<8 | uint16(r[o+sid.RegSustainRelease])
	}

	s.Filt.Cutoff = uint16(r[sid.RegCutoffLo])<<5 | uint16(r[sid.RegCutoffHi])<<8
	s.Filt.Control = r[sid.RegResFilt]
	s.Filt.Type = r[sid.RegModeVol]
}
