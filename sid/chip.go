// Package sid emulates the MOS 6581/8580 Sound Interface Device: three
// voices of oscillator and ADSR envelope, a multimode filter and the
// external output filter, driven by register writes and clocked in chip
// cycles.
//
// The core is synchronous and single threaded. A Chip must not be used
// from more than one goroutine at a time; separate instances share only
// read-only lookup tables.
package sid

const (
	// outputFullScale is the external filter output span mapped onto the
	// full range of an AudioOutput sample.
	outputFullScale = (4095 * 255 >> 7) * 3 * 15 * 2

	maxOutputBits = 24
)

// Chip is one emulated sound chip.
type Chip struct {
	m *model

	voices [3]Voice
	filter Filter
	ext    ExternalFilter

	// regs shadows the last byte written to each address.
	regs [32]byte

	potX byte
	potY byte

	input     int
	digiBoost bool
	extIn     int

	// The 8580 applies a register write one cycle after it is issued.
	writePending bool
	writeAddr    byte
	writeValue   byte

	port *configPort
}

// New returns a chip of type t in its power-up state, with filter and
// external filter enabled.
func New(t ChipType) *Chip {
	if !t.valid() {
		t = MOS6581
	}
	m := modelFor(t)

	c := &Chip{m: m}
	for i := range c.voices {
		c.voices[i].powerUp(m)
		c.voices[i].syncSource = (i + 2) % 3
		c.voices[i].syncDest = (i + 1) % 3
	}
	c.filter.enabled = true
	c.filter.setModel(m)
	c.ext.init(m)
	c.Reset()
	return c
}

// Reset restores the power-up register state. Oscillator accumulators
// and envelope counters keep their values, and the chip type and the
// enable switches are left alone.
func (c *Chip) Reset() {
	for i := range c.voices {
		c.voices[i].reset()
	}
	c.filter.Reset()
	c.ext.Reset()

	c.regs = [32]byte{}
	c.writePending = false
	if c.port != nil {
		c.port.reset()
	}
}

// SetChipType switches all components to the tables of t. Unknown types
// are ignored.
func (c *Chip) SetChipType(t ChipType) {
	if !t.valid() {
		return
	}
	m := modelFor(t)
	c.m = m
	for i := range c.voices {
		c.voices[i].setModel(m)
	}
	c.filter.setModel(m)
	c.ext.setModel(m)
	c.updateExtIn()
}

// ChipType returns the emulated chip revision.
func (c *Chip) ChipType() ChipType {
	return c.m.chipType
}

// EnableFilter switches the multimode filter in or out.
func (c *Chip) EnableFilter(on bool) {
	c.filter.Enable(on)
}

// EnableExtFilter switches the external RC filter in or out.
func (c *Chip) EnableExtFilter(on bool) {
	c.ext.Enable(on)
}

// FilterEnabled reports whether the multimode filter is in the signal path.
func (c *Chip) FilterEnabled() bool { return c.filter.enabled }

// ExtFilterEnabled reports whether the external filter is in the signal path.
func (c *Chip) ExtFilterEnabled() bool { return c.ext.enabled }

// SetInput sets the level of the external audio input.
func (c *Chip) SetInput(sample int16) {
	c.input = int(sample)
	c.updateExtIn()
}

// EnableDigiBoost drives the external input of an 8580 with a constant
// level so that volume register samples become audible. It has no
// effect on a 6581.
func (c *Chip) EnableDigiBoost(on bool) {
	c.digiBoost = on
	c.updateExtIn()
}

// DigiBoost reports whether digi boost is switched on.
func (c *Chip) DigiBoost() bool { return c.digiBoost }

func (c *Chip) updateExtIn() {
	level := c.input
	if c.digiBoost && c.m.chipType == MOS8580 {
		level = -32768
	}
	c.extIn = (level << 4) * 3
}

// SetPots sets the values read back from the paddle registers.
func (c *Chip) SetPots(x, y byte) {
	c.potX = x
	c.potY = y
}

// WriteRegister writes value to the register at addr. Only the low five
// address bits are decoded.
func (c *Chip) WriteRegister(addr, value byte) {
	addr &= 0x1f
	c.regs[addr] = value

	if c.m.chipType == MOS8580 {
		if c.writePending {
			c.flushWrite()
		}
		c.writePending = true
		c.writeAddr = addr
		c.writeValue = value
	} else {
		c.apply(addr, value)
	}

	if c.port != nil {
		c.port.write(c, addr, value)
	}
}

func (c *Chip) flushWrite() {
	c.writePending = false
	c.apply(c.writeAddr, c.writeValue)
}

// ReadRegister returns the value a bus read of addr would see. OSC3,
// ENV3 and the paddles are live; everything else returns the last byte
// written.
func (c *Chip) ReadRegister(addr byte) byte {
	addr &= 0x1f
	switch addr {
	case RegPotX:
		return c.potX
	case RegPotY:
		return c.potY
	case RegOSC3:
		return c.voices[2].osc.ReadOSC()
	case RegENV3:
		return c.voices[2].env.ReadEnv()
	}
	return c.regs[addr]
}

// Registers returns a copy of the register shadow.
func (c *Chip) Registers() [32]byte {
	return c.regs
}

// Clock advances the chip by exactly one cycle.
func (c *Chip) Clock() {
	for i := range c.voices {
		c.voices[i].env.Clock()
	}
	for i := range c.voices {
		c.voices[i].osc.Clock()
	}
	c.synchronize()
	for i := range c.voices {
		v := &c.voices[i]
		v.osc.UpdateOutput(&c.voices[v.syncSource].osc)
	}

	c.filter.Clock(c.voices[0].Output(), c.voices[1].Output(), c.voices[2].Output(), c.extIn)
	c.ext.Clock(c.filter.Output())

	if c.writePending {
		c.flushWrite()
	}
}

// Advance runs the chip for n cycles. Oscillators are stepped from one
// possible hard sync event to the next so that sync lands on the same
// cycle as with single cycle clocking.
func (c *Chip) Advance(n int) {
	if n <= 0 {
		return
	}
	if c.writePending {
		c.Clock()
		n--
		if n == 0 {
			return
		}
	}

	for i := range c.voices {
		c.voices[i].env.ClockDelta(n)
	}

	for left := n; left > 0; {
		step := left
		for i := range c.voices {
			if next := c.cyclesToSync(i); next < step {
				step = next
			}
		}
		for i := range c.voices {
			c.voices[i].osc.ClockDelta(step)
		}
		c.synchronize()
		left -= step
	}

	for i := range c.voices {
		v := &c.voices[i]
		v.osc.UpdateOutputDelta(n, &c.voices[v.syncSource].osc)
	}

	c.filter.ClockDelta(n, c.voices[0].Output(), c.voices[1].Output(), c.voices[2].Output(), c.extIn)
	c.ext.ClockDelta(n, c.filter.Output())
}

// cyclesToSync returns the number of cycles until voice i's MSB next
// rises, or a value larger than any step if it syncs nothing.
func (c *Chip) cyclesToSync(i int) int {
	o := &c.voices[i].osc
	dest := &c.voices[c.voices[i].syncDest].osc
	if !dest.sync || o.freq == 0 {
		return int(^uint(0) >> 1)
	}

	var deltaAcc uint32
	if o.acc&0x800000 != 0 {
		deltaAcc = 0x1000000 - o.acc
	} else {
		deltaAcc = 0x800000 - o.acc
	}
	next := int(deltaAcc / o.freq)
	if deltaAcc%o.freq != 0 {
		next++
	}
	return next
}

func (c *Chip) synchronize() {
	for i := range c.voices {
		v := &c.voices[i]
		v.osc.Synchronize(&c.voices[v.syncDest].osc, &c.voices[v.syncSource].osc)
	}
}

// AudioOutput returns the current output sample scaled to a signed
// integer of the given width and clamped to its range. Widths beyond
// maxOutputBits are treated as maxOutputBits.
func (c *Chip) AudioOutput(bits int) int {
	bits = max(1, min(bits, maxOutputBits))
	rng := 1 << bits
	half := rng >> 1

	s := int(int64(c.ext.Output()) * int64(rng) / outputFullScale)
	if s >= half {
		return half - 1
	}
	if s < -half {
		return -half
	}
	return s
}

// Voice returns voice i (0-2) for inspection.
func (c *Chip) Voice(i int) *Voice {
	return &c.voices[i]
}

// WaveOutput returns the waveform DAC output of voice i.
func (c *Chip) WaveOutput(i int) uint16 {
	return c.voices[i].osc.Output()
}

// EnvelopeOutput returns the envelope DAC output of voice i.
func (c *Chip) EnvelopeOutput(i int) uint16 {
	return c.voices[i].env.Output()
}

// FilterOutput returns the mixer output before the external filter.
func (c *Chip) FilterOutput() int {
	return c.filter.Output()
}
