package sid

import (
	"math"
	"sync"
)

// ChipType selects one of the two supported chip revisions.
type ChipType int

const (
	MOS6581 ChipType = iota // original NMOS part
	MOS8580                 // HMOS-II revision
)

func (t ChipType) String() string {
	switch t {
	case MOS6581:
		return "MOS6581"
	case MOS8580:
		return "MOS8580"
	}
	return "unknown"
}

func (t ChipType) valid() bool {
	return t == MOS6581 || t == MOS8580
}

// Timing constants for the noise register reset and the floating
// waveform DAC, in cycles.
const (
	shiftRegisterResetStart6581 = 35000
	shiftRegisterResetBit6581   = 1000
	shiftRegisterResetStart8580 = 2519864
	shiftRegisterResetBit8580   = 315000

	floatingOutputTTLStart6581 = 182000
	floatingOutputTTLBit6581   = 1500
	floatingOutputTTLStart8580 = 4400000
	floatingOutputTTLBit8580   = 50000
)

// model holds every table and constant that differs between chip
// revisions. One instance per revision is built on first use and never
// written afterwards, so it is shared by all Chip instances.
type model struct {
	chipType ChipType

	// wave is indexed by the low three waveform bits, then by the top
	// 12 bits of the accumulator.
	wave    [8][1 << 12]uint16
	waveDAC [1 << 12]uint16
	envDAC  [1 << 8]uint16

	// f0 maps the 11-bit cutoff register to a cutoff frequency in Hz.
	f0 [1 << 11]int

	waveZero   int
	mixerDC    int
	extMixerDC int

	shiftResetStart int
	shiftResetBit   int
	floatTTLStart   int
	floatTTLBit     int
}

var (
	modelOnce [2]sync.Once
	models    [2]*model
)

// modelFor returns the shared tables for t. Unknown types fall back to
// the 6581.
func modelFor(t ChipType) *model {
	if !t.valid() {
		t = MOS6581
	}
	modelOnce[t].Do(func() {
		models[t] = buildModel(t)
	})
	return models[t]
}

func buildModel(t ChipType) *model {
	m := &model{chipType: t}

	for i := 0; i < 1<<12; i++ {
		acc := uint32(i) << 12
		msb := acc & 0x800000
		tri := acc
		if msb != 0 {
			tri = ^acc
		}
		m.wave[0][i] = 0xfff
		m.wave[1][i] = uint16((tri >> 11) & 0xffe)
		m.wave[2][i] = uint16(acc >> 12)
		m.wave[4][i] = 0xfff
	}
	buildCombinedWaves(m)

	// f0 is filled by plotting a spline over the measured control points.
	switch t {
	case MOS6581:
		buildDAC(m.waveDAC[:], 12, 2.20, false)
		buildDAC(m.envDAC[:], 8, 2.20, false)
		interpolate(f0Points6581, m.f0[:])
		m.waveZero = 0x380
		m.mixerDC = (-0xfff * 0xff / 18) >> 7
		m.extMixerDC = ((((0x800 - 0x380) + 0x800) * 0xff * 3 - 0xfff*0xff/18) >> 7) * 0x0f
		m.shiftResetStart = shiftRegisterResetStart6581
		m.shiftResetBit = shiftRegisterResetBit6581
		m.floatTTLStart = floatingOutputTTLStart6581
		m.floatTTLBit = floatingOutputTTLBit6581
	case MOS8580:
		buildDAC(m.waveDAC[:], 12, 2.00, true)
		buildDAC(m.envDAC[:], 8, 2.00, true)
		interpolate(f0Points8580, m.f0[:])
		m.waveZero = 0x9e0
		m.shiftResetStart = shiftRegisterResetStart8580
		m.shiftResetBit = shiftRegisterResetBit8580
		m.floatTTLStart = floatingOutputTTLStart8580
		m.floatTTLBit = floatingOutputTTLBit8580
	}
	return m
}

// w0 converts a cutoff frequency in Hz to the integer filter coefficient
// used by the integrators. 1.048576 scales for a 1 MHz clock and the
// fixed-point shifts in Filter.
func w0(f int) int {
	return int(2 * math.Pi * float64(f) * 1.048576)
}
