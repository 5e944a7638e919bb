package sid

// Register offsets. Voice registers repeat every VoiceRegisters bytes.
const (
	RegFreqLo         = 0x00
	RegFreqHi         = 0x01
	RegPWLo           = 0x02
	RegPWHi           = 0x03
	RegControl        = 0x04
	RegAttackDecay    = 0x05
	RegSustainRelease = 0x06

	RegCutoffLo = 0x15
	RegCutoffHi = 0x16
	RegResFilt  = 0x17
	RegModeVol  = 0x18
	RegPotX     = 0x19
	RegPotY     = 0x1a
	RegOSC3     = 0x1b
	RegENV3     = 0x1c
	RegConfig   = 0x1d

	VoiceRegisters = 7
	// NumRegisters is the number of write registers on the real chip.
	NumRegisters = 0x19
)

type regWriter func(c *Chip, v byte)

// registerMap routes a register offset to the component owning it.
// Offsets without an entry ignore writes.
var registerMap [32]regWriter

func init() {
	for i := 0; i < 3; i++ {
		base := i * VoiceRegisters
		registerMap[base+RegFreqLo] = func(c *Chip, v byte) { c.voices[i].osc.writeFreqLo(v) }
		registerMap[base+RegFreqHi] = func(c *Chip, v byte) { c.voices[i].osc.writeFreqHi(v) }
		registerMap[base+RegPWLo] = func(c *Chip, v byte) { c.voices[i].osc.writePWLo(v) }
		registerMap[base+RegPWHi] = func(c *Chip, v byte) { c.voices[i].osc.writePWHi(v) }
		registerMap[base+RegControl] = func(c *Chip, v byte) { c.writeControl(i, v) }
		registerMap[base+RegAttackDecay] = func(c *Chip, v byte) { c.voices[i].env.WriteAttackDecay(v) }
		registerMap[base+RegSustainRelease] = func(c *Chip, v byte) { c.voices[i].env.WriteSustainRelease(v) }
	}
	registerMap[RegCutoffLo] = func(c *Chip, v byte) { c.filter.WriteCutoffLo(v) }
	registerMap[RegCutoffHi] = func(c *Chip, v byte) { c.filter.WriteCutoffHi(v) }
	registerMap[RegResFilt] = func(c *Chip, v byte) { c.filter.WriteResonanceRouting(v) }
	registerMap[RegModeVol] = func(c *Chip, v byte) { c.filter.WriteModeVolume(v) }
}

func (c *Chip) writeControl(i int, v byte) {
	voice := &c.voices[i]
	voice.osc.WriteControl(v, &c.voices[voice.syncSource].osc)
	voice.env.WriteControl(v)
}

func (c *Chip) apply(addr, v byte) {
	if w := registerMap[addr&0x1f]; w != nil {
		w(c, v)
	}
}
