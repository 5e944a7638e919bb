package sid

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

// ErrBadState is returned when a serialized chip state cannot be loaded.
var ErrBadState = errors.New("sid: bad state")

var stateMagic = [4]byte{'S', 'I', 'D', 'S'}

const stateVersion = 1

type oscState struct {
	Acc           uint32
	Freq          uint32
	PW            uint32
	MSBRising     bool
	Control       byte
	NoiseOutput   uint32
	PulseOutput   uint32
	WaveOutput    uint32
	OSC3          uint32
	TriSaw        uint32
	ShiftReg      uint32
	ShiftReset    int32
	ShiftPipeline int32
	FloatTTL      int32
}

type envState struct {
	RateCounter uint32
	RatePeriod  uint32
	ExpCounter  uint32
	ExpPeriod   uint32
	Counter     byte
	Env3        byte
	EnvPipe     int8
	ExpPipe     int8
	StatePipe   int8
	HoldZero    bool
	ResetRate   bool
	AD          byte
	SR          byte
	Gate        bool
	State       uint8
	NextState   uint8
}

type filterState struct {
	Enabled bool
	FC      uint16
	ResFilt byte
	ModeVol byte
	Vhp     int32
	Vbp     int32
	Vlp     int32
	Vnf     int32
}

type extState struct {
	Enabled bool
	Vlp     int32
	Vhp     int32
	Vo      int32
}

type chipState struct {
	Magic        [4]byte
	Version      uint16
	Type         uint8
	Regs         [32]byte
	PotX         byte
	PotY         byte
	Input        int16
	DigiBoost    bool
	WritePending bool
	WriteAddr    byte
	WriteValue   byte
	Osc          [3]oscState
	Env          [3]envState
	Filter       filterState
	Ext          extState
}

// Serialize returns the complete chip state as a versioned little-endian
// blob. The configuration port protocol state is not included.
func (c *Chip) Serialize() []byte {
	st := chipState{
		Magic:        stateMagic,
		Version:      stateVersion,
		Type:         uint8(c.m.chipType),
		Regs:         c.regs,
		PotX:         c.potX,
		PotY:         c.potY,
		Input:        int16(c.input),
		DigiBoost:    c.digiBoost,
		WritePending: c.writePending,
		WriteAddr:    c.writeAddr,
		WriteValue:   c.writeValue,
	}
	for i := range c.voices {
		st.Osc[i] = c.voices[i].osc.save()
		st.Env[i] = c.voices[i].env.save()
	}
	st.Filter = c.filter.save()
	st.Ext = extState{
		Enabled: c.ext.enabled,
		Vlp:     int32(c.ext.vlp),
		Vhp:     int32(c.ext.vhp),
		Vo:      int32(c.ext.vo),
	}

	var buf bytes.Buffer
	// Writing fixed-size values to a bytes.Buffer cannot fail.
	_ = binary.Write(&buf, binary.LittleEndian, &st)
	return buf.Bytes()
}

// Deserialize restores a state produced by Serialize. On error the chip
// is left unchanged.
func (c *Chip) Deserialize(data []byte) error {
	var st chipState
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &st); err != nil {
		return fmt.Errorf("%w: %v", ErrBadState, err)
	}
	if st.Magic != stateMagic {
		return fmt.Errorf("%w: magic %q", ErrBadState, st.Magic[:])
	}
	if st.Version != stateVersion {
		return fmt.Errorf("%w: version %d", ErrBadState, st.Version)
	}
	t := ChipType(st.Type)
	if !t.valid() {
		return fmt.Errorf("%w: chip type %d", ErrBadState, st.Type)
	}
	for i := range st.Env {
		if EnvelopeState(st.Env[i].State) > Release || EnvelopeState(st.Env[i].NextState) > Release {
			return fmt.Errorf("%w: envelope state", ErrBadState)
		}
		if !slices.Contains(ratePeriods[:], st.Env[i].RatePeriod) {
			return fmt.Errorf("%w: rate period %d", ErrBadState, st.Env[i].RatePeriod)
		}
	}

	c.SetChipType(t)
	c.regs = st.Regs
	c.potX = st.PotX
	c.potY = st.PotY
	c.input = int(st.Input)
	c.digiBoost = st.DigiBoost
	c.updateExtIn()
	c.writePending = st.WritePending
	c.writeAddr = st.WriteAddr & 0x1f
	c.writeValue = st.WriteValue

	for i := range c.voices {
		c.voices[i].osc.load(st.Osc[i])
		c.voices[i].env.load(st.Env[i])
	}
	c.filter.load(st.Filter)
	c.ext.enabled = st.Ext.Enabled
	c.ext.vlp = int(st.Ext.Vlp)
	c.ext.vhp = int(st.Ext.Vhp)
	c.ext.vo = int(st.Ext.Vo)

	if c.port != nil {
		c.port.reset()
	}
	return nil
}

func (o *Oscillator) save() oscState {
	ctrl := o.waveform << 4
	if o.test {
		ctrl |= 0x08
	}
	if o.ring {
		ctrl |= 0x04
	}
	if o.sync {
		ctrl |= 0x02
	}
	return oscState{
		Acc:           o.acc,
		Freq:          o.freq,
		PW:            o.pw,
		MSBRising:     o.msbRising,
		Control:       ctrl,
		NoiseOutput:   o.noiseOutput,
		PulseOutput:   o.pulseOutput,
		WaveOutput:    o.waveOutput,
		OSC3:          o.osc3,
		TriSaw:        o.triSawPipeline,
		ShiftReg:      o.shiftReg,
		ShiftReset:    int32(o.shiftReset),
		ShiftPipeline: int32(o.shiftPipeline),
		FloatTTL:      int32(o.floatTTL),
	}
}

func (o *Oscillator) load(s oscState) {
	v := s.Control
	o.acc = s.Acc & 0xffffff
	o.freq = s.Freq & 0xffff
	o.pw = s.PW & 0xfff
	o.msbRising = s.MSBRising

	o.waveform = v >> 4 & 0x0f
	o.test = v&0x08 != 0
	o.ring = v&0x04 != 0
	o.sync = v&0x02 != 0
	o.wave = &o.m.wave[o.waveform&7]
	o.ringMSBMask = uint32(^v>>5&(v>>2)&1) << 23
	o.noNoise = 0xfff
	if o.waveform&0x8 != 0 {
		o.noNoise = 0
	}
	o.noPulse = 0xfff
	if o.waveform&0x4 != 0 {
		o.noPulse = 0
	}

	o.noiseOutput = s.NoiseOutput & 0xfff
	o.pulseOutput = s.PulseOutput & 0xfff
	o.waveOutput = s.WaveOutput & 0xfff
	o.osc3 = s.OSC3 & 0xfff
	o.triSawPipeline = s.TriSaw & 0xfff
	o.shiftReg = s.ShiftReg & 0x7fffff
	o.shiftReset = int(s.ShiftReset)
	o.shiftPipeline = int(s.ShiftPipeline)
	o.floatTTL = int(s.FloatTTL)
}

func (e *Envelope) save() envState {
	return envState{
		RateCounter: e.rateCounter,
		RatePeriod:  e.ratePeriod,
		ExpCounter:  e.expCounter,
		ExpPeriod:   e.expPeriod,
		Counter:     e.counter,
		Env3:        e.env3,
		EnvPipe:     int8(e.envelopePipeline),
		ExpPipe:     int8(e.exponentialPipeline),
		StatePipe:   int8(e.statePipeline),
		HoldZero:    e.holdZero,
		ResetRate:   e.resetRateCounter,
		AD:          e.attack<<4 | e.decay,
		SR:          e.sustain<<4 | e.release,
		Gate:        e.gate,
		State:       uint8(e.state),
		NextState:   uint8(e.nextState),
	}
}

func (e *Envelope) load(s envState) {
	e.rateCounter = s.RateCounter & 0x7fff
	e.ratePeriod = s.RatePeriod
	e.expCounter = s.ExpCounter
	e.expPeriod = max(1, s.ExpPeriod)
	e.counter = s.Counter
	e.env3 = s.Env3
	e.envelopePipeline = int(s.EnvPipe)
	e.exponentialPipeline = int(s.ExpPipe)
	e.statePipeline = int(s.StatePipe)
	e.holdZero = s.HoldZero
	e.resetRateCounter = s.ResetRate
	e.attack = s.AD >> 4
	e.decay = s.AD & 0x0f
	e.sustain = s.SR >> 4
	e.release = s.SR & 0x0f
	e.gate = s.Gate
	e.state = EnvelopeState(s.State)
	e.nextState = EnvelopeState(s.NextState)
}

func (f *Filter) save() filterState {
	mv := byte(f.vol) | f.hpBpLp<<4
	if f.voice3off {
		mv |= 0x80
	}
	return filterState{
		Enabled: f.enabled,
		FC:      uint16(f.fc),
		ResFilt: byte(f.res)<<4 | f.filt,
		ModeVol: mv,
		Vhp:     int32(f.vhp),
		Vbp:     int32(f.vbp),
		Vlp:     int32(f.vlp),
		Vnf:     int32(f.vnf),
	}
}

func (f *Filter) load(s filterState) {
	f.enabled = s.Enabled
	f.fc = uint32(s.FC) & 0x7ff
	f.WriteResonanceRouting(s.ResFilt)
	f.WriteModeVolume(s.ModeVol)
	f.setW0()
	f.vhp = int(s.Vhp)
	f.vbp = int(s.Vbp)
	f.vlp = int(s.Vlp)
	f.vnf = int(s.Vnf)
}
