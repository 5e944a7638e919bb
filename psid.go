package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrNotSIDFile     = errors.New("not a SID file")
	ErrUnsupportedSID = errors.New("unsupported SID file")
)

// Header flag bits (PSID v2 and later).
const (
	flagClockPAL  = 0x04
	flagClockNTSC = 0x08
	flagSID6581   = 0x10
	flagSID8580   = 0x20
)

// SidTune is a parsed PSID file.
type SidTune struct {
	Magic       string
	Version     uint16
	DataOffset  uint16
	LoadAddress uint16
	InitAddress uint16
	PlayAddress uint16
	Songs       uint16
	StartSong   uint16
	Speed       uint32
	Name        string
	Author      string
	Released    string
	Flags       uint16

	Data []byte
}

// LoadSidTune reads and parses the PSID file at path.
func LoadSidTune(fs afero.Fs, path string) (*SidTune, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	tune, err := ParseSidTune(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tune, nil
}

// ParseSidTune parses a PSID image. RSID tunes need a complete C64 and
// are rejected with ErrUnsupportedSID.
func ParseSidTune(raw []byte) (*SidTune, error) {
	if len(raw) < 0x76 {
		return nil, ErrNotSIDFile
	}
	t := &SidTune{Magic: string(raw[0:4])}
	switch t.Magic {
	case "PSID":
	case "RSID":
		return nil, fmt.Errorf("%w: RSID tunes are not supported", ErrUnsupportedSID)
	default:
		return nil, ErrNotSIDFile
	}

	r := bytes.NewReader(raw[4:])
	words := []*uint16{
		&t.Version, &t.DataOffset, &t.LoadAddress, &t.InitAddress,
		&t.PlayAddress, &t.Songs, &t.StartSong,
	}
	for _, w := range words {
		v, err := readWord(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotSIDFile, err)
		}
		*w = v
	}
	hi, _ := readWord(r)
	lo, _ := readWord(r)
	t.Speed = uint32(hi)<<16 | uint32(lo)

	t.Name = cString(raw[0x16:0x36])
	t.Author = cString(raw[0x36:0x56])
	t.Released = cString(raw[0x56:0x76])

	if t.Version < 1 || t.Version > 4 {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedSID, t.Version)
	}
	if t.Version >= 2 && len(raw) >= 0x78 {
		t.Flags = uint16(raw[0x76])<<8 | uint16(raw[0x77])
	}
	if int(t.DataOffset) > len(raw) {
		return nil, fmt.Errorf("%w: data offset $%04X past end of file", ErrNotSIDFile, t.DataOffset)
	}

	data := raw[t.DataOffset:]
	if t.LoadAddress == 0 {
		// Load address is embedded in the data, little-endian.
		dr := bytes.NewReader(data)
		lo, err1 := readByte(dr)
		hi, err2 := readByte(dr)
		if err := errors.Join(err1, err2); err != nil {
			return nil, fmt.Errorf("%w: missing load address", ErrNotSIDFile)
		}
		t.LoadAddress = uint16(lo) | uint16(hi)<<8
		data = data[2:]
	}
	if int(t.LoadAddress)+len(data) > 0x10000 {
		return nil, fmt.Errorf("%w: data continues past end of C64 memory", ErrUnsupportedSID)
	}
	if t.InitAddress == 0 {
		t.InitAddress = t.LoadAddress
	}
	t.Data = data
	return t, nil
}

// NTSC reports whether the tune asks for an NTSC machine.
func (t *SidTune) NTSC() bool {
	return t.Flags&(flagClockPAL|flagClockNTSC) == flagClockNTSC
}

// Model returns the chip the tune was written for and whether the
// header says so at all.
func (t *SidTune) Model() (string, bool) {
	switch t.Flags & (flagSID6581 | flagSID8580) {
	case flagSID6581:
		return "6581", true
	case flagSID8580:
		return "8580", true
	}
	return "", false
}

func (t *SidTune) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name:     %s\n", t.Name)
	fmt.Fprintf(&sb, "Author:   %s\n", t.Author)
	fmt.Fprintf(&sb, "Released: %s\n", t.Released)
	fmt.Fprintf(&sb, "Load address: $%04X Init address: $%04X Play address: $%04X\n", t.LoadAddress, t.InitAddress, t.PlayAddress)
	fmt.Fprintf(&sb, "Songs: %d Start song: %d\n", t.Songs, t.StartSong)
	return sb.String()
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
