package sid

// Oscillator is the waveform generator of one voice: a 24-bit phase
// accumulator, the 23-bit noise LFSR and the waveform selector feeding
// the 12-bit waveform DAC.
//
// Ring modulation and hard sync need the neighbouring oscillator. The
// methods that depend on it take the source (or destination) oscillator
// as an argument; the Chip resolves the neighbours from the fixed voice
// ring on every call. A standalone oscillator passes itself.
type Oscillator struct {
	m *model

	acc       uint32
	freq      uint32
	pw        uint32
	msbRising bool

	waveform    uint8
	test        bool
	ring        bool
	sync        bool
	ringMSBMask uint32

	wave *[1 << 12]uint16

	noNoise     uint32
	noPulse     uint32
	noiseOutput uint32
	pulseOutput uint32
	waveOutput  uint32
	osc3        uint32

	// The 8580 latches the triangle/sawtooth value one cycle before it
	// reaches OSC3.
	triSawPipeline uint32

	shiftReg      uint32
	shiftReset    int
	shiftPipeline int
	floatTTL      int
}

// NewOscillator returns an oscillator in its power-up state.
func NewOscillator(t ChipType) *Oscillator {
	o := &Oscillator{}
	o.powerUp(modelFor(t))
	return o
}

func (o *Oscillator) powerUp(m *model) {
	o.m = m
	o.acc = 0x555555
	o.triSawPipeline = 0x555
	o.Reset()
}

func (o *Oscillator) setModel(m *model) {
	o.m = m
	o.wave = &m.wave[o.waveform&7]
}

// Reset clears the registers. The accumulator keeps its value, as on
// the real chip.
func (o *Oscillator) Reset() {
	o.freq = 0
	o.pw = 0
	o.msbRising = false

	o.waveform = 0
	o.test = false
	o.ring = false
	o.sync = false
	o.wave = &o.m.wave[0]

	o.ringMSBMask = 0
	o.noNoise = 0xfff
	o.noPulse = 0xfff
	o.pulseOutput = 0xfff

	o.shiftReg = 0x7ffffe
	o.shiftReset = 0
	o.setNoiseOutput()
	o.shiftPipeline = 0

	o.waveOutput = 0
	o.osc3 = 0
	o.floatTTL = 0
}

// SetFrequency sets the 16-bit accumulator increment.
func (o *Oscillator) SetFrequency(freq uint16) {
	o.freq = uint32(freq)
}

func (o *Oscillator) writeFreqLo(v byte) {
	o.freq = o.freq&0xff00 | uint32(v)
}

func (o *Oscillator) writeFreqHi(v byte) {
	o.freq = uint32(v)<<8 | o.freq&0x00ff
}

// SetPulseWidth sets the 12-bit pulse comparator value.
func (o *Oscillator) SetPulseWidth(pw uint16) {
	o.pw = uint32(pw) & 0xfff
	o.updatePulse()
}

func (o *Oscillator) writePWLo(v byte) {
	o.pw = o.pw&0xf00 | uint32(v)
	o.updatePulse()
}

func (o *Oscillator) writePWHi(v byte) {
	o.pw = (uint32(v)<<8)&0xf00 | o.pw&0x0ff
	o.updatePulse()
}

func (o *Oscillator) updatePulse() {
	if o.acc>>12 >= o.pw {
		o.pulseOutput = 0xfff
	} else {
		o.pulseOutput = 0
	}
}

// preWriteback reports whether releasing the test bit while switching
// from waveform prev to wf writes the combined output back into the
// noise register first.
func preWriteback(prev, wf uint8, is6581 bool) bool {
	if prev <= 0x8 {
		return false
	}
	if wf == 8 {
		return false
	}
	if prev == 0xc {
		if is6581 {
			return false
		}
		if wf != 0x9 && wf != 0xe {
			return false
		}
	}
	if is6581 && (prev&3 == 1 && wf&3 == 2 || prev&3 == 2 && wf&3 == 1) {
		return false
	}
	return true
}

// WriteControl handles the waveform, test, ring and sync bits of the
// voice control register. src is the ring modulation source.
func (o *Oscillator) WriteControl(v byte, src *Oscillator) {
	prev := o.waveform
	testPrev := o.test

	o.waveform = v >> 4 & 0x0f
	o.test = v&0x08 != 0
	o.ring = v&0x04 != 0
	o.sync = v&0x02 != 0

	o.wave = &o.m.wave[o.waveform&7]

	// Ring modulation only applies while sawtooth is off.
	o.ringMSBMask = uint32(^v>>5&(v>>2)&1) << 23

	o.noNoise = 0xfff
	if o.waveform&0x8 != 0 {
		o.noNoise = 0
	}
	o.noPulse = 0xfff
	if o.waveform&0x4 != 0 {
		o.noPulse = 0
	}

	switch {
	case !testPrev && o.test:
		o.acc = 0
		o.shiftPipeline = 0
		o.shiftReset = o.m.shiftResetStart
		o.pulseOutput = 0xfff
	case testPrev && !o.test:
		if preWriteback(prev, o.waveform, o.m.chipType == MOS6581) {
			o.writeShiftRegister()
		}
		// The register is clocked once on release, with bit 0 fed from
		// the inverted bit 17.
		bit0 := ^o.shiftReg >> 17 & 1
		o.shiftReg = (o.shiftReg<<1 | bit0) & 0x7fffff
		o.setNoiseOutput()
	}

	if o.waveform != 0 {
		o.UpdateOutput(src)
	} else if prev != 0 {
		o.floatTTL = o.m.floatTTLStart
	}
}

// Clock advances the oscillator by one cycle.
func (o *Oscillator) Clock() {
	if o.test {
		if o.shiftReset != 0 {
			o.shiftReset--
			if o.shiftReset == 0 {
				o.shiftregBitfade()
			}
		}
		o.pulseOutput = 0xfff
		return
	}

	next := (o.acc + o.freq) & 0xffffff
	set := ^o.acc & next
	o.acc = next

	o.msbRising = set&0x800000 != 0

	// Bit 19 going high clocks the noise register two cycles later.
	if set&0x080000 != 0 {
		o.shiftPipeline = 2
	} else if o.shiftPipeline != 0 {
		o.shiftPipeline--
		if o.shiftPipeline == 0 {
			o.clockShiftRegister()
		}
	}
}

// ClockDelta advances the oscillator by n cycles. The noise register is
// clocked once for every rising edge of accumulator bit 19 inside the
// window, so the window is walked in steps of 2^20.
func (o *Oscillator) ClockDelta(n int) {
	if n <= 0 {
		return
	}
	if o.test {
		if o.shiftReset != 0 {
			o.shiftReset -= n
			if o.shiftReset <= 0 {
				o.shiftReg = 0x7fffff
				o.shiftReset = 0
				o.setNoiseOutput()
			}
		}
		o.pulseOutput = 0xfff
		return
	}

	deltaAcc := uint64(n) * uint64(o.freq)
	next := uint32((uint64(o.acc) + deltaAcc) & 0xffffff)
	set := ^o.acc & next
	o.acc = next

	o.msbRising = set&0x800000 != 0

	shiftPeriod := uint32(0x100000)
	for deltaAcc != 0 {
		if deltaAcc < uint64(shiftPeriod) {
			shiftPeriod = uint32(deltaAcc)
			if shiftPeriod <= 0x080000 {
				// Check for a flip from 0 to 1.
				if (o.acc-shiftPeriod)&0x080000 != 0 || o.acc&0x080000 == 0 {
					break
				}
			} else {
				// Check for a flip from 0 (to 1 or via 1 to 0) or from 1 via 0 to 1.
				if (o.acc-shiftPeriod)&0x080000 != 0 && o.acc&0x080000 == 0 {
					break
				}
			}
		}
		o.clockShiftRegister()
		deltaAcc -= uint64(shiftPeriod)
	}

	o.updatePulse()
}

// Synchronize resets dest's accumulator when this oscillator's MSB rose
// in the last step and dest has sync enabled. A source that is itself
// being synced on the same cycle does not sync its destination.
func (o *Oscillator) Synchronize(dest, src *Oscillator) {
	if o.msbRising && dest.sync && !(o.sync && src.msbRising) {
		dest.acc = 0
	}
}

func (o *Oscillator) clockShiftRegister() {
	bit0 := (o.shiftReg>>22 ^ o.shiftReg>>17) & 1
	o.shiftReg = (o.shiftReg<<1 | bit0) & 0x7fffff
	o.setNoiseOutput()
}

// writeShiftRegister models combined waveforms with noise pulling the
// tapped register bits low.
func (o *Oscillator) writeShiftRegister() {
	w := o.waveOutput
	o.shiftReg &= ^uint32(1<<20|1<<18|1<<14|1<<11|1<<9|1<<5|1<<2|1<<0) |
		(w&0x800)<<9 |
		(w&0x400)<<8 |
		(w&0x200)<<5 |
		(w&0x100)<<3 |
		(w&0x080)<<2 |
		(w&0x040)>>1 |
		(w&0x020)>>3 |
		(w&0x010)>>4

	o.noiseOutput &= w
}

func (o *Oscillator) setNoiseOutput() {
	s := o.shiftReg
	o.noiseOutput = (s&0x100000)>>9 |
		(s&0x040000)>>8 |
		(s&0x004000)>>5 |
		(s&0x000800)>>3 |
		(s&0x000200)>>2 |
		(s&0x000020)<<1 |
		(s&0x000004)<<3 |
		(s&0x000001)<<4
}

// waveBitfade ages the floating DAC input after the waveform was
// switched off: ones leak away from the bottom up.
func (o *Oscillator) waveBitfade() {
	o.waveOutput &= o.waveOutput >> 1
	o.osc3 = o.waveOutput
	if o.waveOutput != 0 {
		o.floatTTL = o.m.floatTTLBit
	}
}

// shiftregBitfade drives the noise register towards all ones while the
// test bit is held.
func (o *Oscillator) shiftregBitfade() {
	o.shiftReg |= 1
	o.shiftReg |= o.shiftReg << 1
	o.shiftReg &= 0x7fffff

	o.setNoiseOutput()
	if o.shiftReg != 0x7fffff {
		o.shiftReset = o.m.shiftResetBit
	}
}

func noisePulse6581(noise uint32) uint32 {
	if noise < 0xf00 {
		return 0
	}
	return noise & (noise << 1) & (noise << 2)
}

func noisePulse8580(noise uint32) uint32 {
	if noise < 0xfc0 {
		return noise & (noise << 1)
	}
	return 0xfc0
}

// UpdateOutput recomputes the waveform output after a single cycle.
func (o *Oscillator) UpdateOutput(src *Oscillator) {
	if o.waveform != 0 {
		ix := (o.acc ^ (^src.acc & o.ringMSBMask)) >> 12
		mask := (o.noPulse | o.pulseOutput) & (o.noNoise | o.noiseOutput)

		o.waveOutput = uint32(o.wave[ix]) & mask

		if o.waveform&0xc == 0xc {
			if o.m.chipType == MOS6581 {
				o.waveOutput = noisePulse6581(o.waveOutput) & 0xfff
			} else {
				o.waveOutput = noisePulse8580(o.waveOutput) & 0xfff
			}
		}

		if o.waveform&3 != 0 && o.m.chipType == MOS8580 {
			o.osc3 = o.triSawPipeline & mask
			o.triSawPipeline = uint32(o.wave[ix])
		} else {
			o.osc3 = o.waveOutput
		}

		// The 6581 sawtooth pulls the accumulator MSB low through the
		// combined waveform output.
		if o.waveform&0x2 != 0 && o.waveform&0xd != 0 && o.m.chipType == MOS6581 {
			o.acc &= o.waveOutput<<12 | 0x7fffff
		}

		if o.waveform > 0x8 && !o.test && o.shiftPipeline != 1 {
			o.writeShiftRegister()
		}
	} else if o.floatTTL != 0 {
		o.floatTTL--
		if o.floatTTL == 0 {
			o.waveBitfade()
		}
	}

	o.updatePulse()
}

// UpdateOutputDelta recomputes the waveform output after n cycles.
func (o *Oscillator) UpdateOutputDelta(n int, src *Oscillator) {
	if o.waveform != 0 {
		ix := (o.acc ^ (^src.acc & o.ringMSBMask)) >> 12
		o.waveOutput = uint32(o.wave[ix]) & (o.noPulse | o.pulseOutput) & (o.noNoise | o.noiseOutput)
		o.osc3 = o.waveOutput

		if o.waveform&0x2 != 0 && o.waveform&0xd != 0 && o.m.chipType == MOS6581 {
			o.acc &= o.waveOutput<<12 | 0x7fffff
		}

		if o.waveform > 0x8 && !o.test {
			o.writeShiftRegister()
		}
	} else if o.floatTTL != 0 {
		o.floatTTL -= n
		if o.floatTTL <= 0 {
			o.floatTTL = 0
			o.osc3 = 0
			o.waveOutput = 0
		}
	}
}

// Output returns the waveform DAC output.
func (o *Oscillator) Output() uint16 {
	return o.m.waveDAC[o.waveOutput]
}

// ReadOSC returns the upper eight bits of the waveform, as read from
// the OSC3 register.
func (o *Oscillator) ReadOSC() byte {
	return byte(o.osc3 >> 4)
}

// Accumulator returns the 24-bit phase accumulator.
func (o *Oscillator) Accumulator() uint32 {
	return o.acc
}
