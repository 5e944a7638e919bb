package sid

// Integration coefficients are capped for stability: single cycle steps
// tolerate cutoffs up to 16 kHz, multi-cycle steps only 4 kHz.
var (
	w0Max1  = w0(16000)
	w0MaxDt = w0(4000)
)

// Filter is the two-integrator state-variable filter and the mixer in
// front of the volume control.
type Filter struct {
	m       *model
	enabled bool

	fc        uint32 // 11 bits
	res       uint32
	filt      byte
	voice3off bool
	hpBpLp    byte
	vol       int

	// Integrator state.
	vhp int
	vbp int
	vlp int
	vnf int

	w0       int
	w0Ceil1  int
	w0CeilDt int
	q1024    int
}

// NewFilter returns an enabled filter with cleared registers.
func NewFilter(t ChipType) *Filter {
	f := &Filter{enabled: true}
	f.setModel(modelFor(t))
	f.Reset()
	return f
}

func (f *Filter) setModel(m *model) {
	f.m = m
	f.setW0()
	f.setQ()
}

// Enable switches the filter in or out of the signal path. A disabled
// filter passes every input straight to the mixer.
func (f *Filter) Enable(on bool) {
	f.enabled = on
}

func (f *Filter) Reset() {
	f.fc = 0
	f.res = 0
	f.filt = 0
	f.voice3off = false
	f.hpBpLp = 0
	f.vol = 0

	f.vhp = 0
	f.vbp = 0
	f.vlp = 0
	f.vnf = 0

	f.setW0()
	f.setQ()
}

func (f *Filter) WriteCutoffLo(v byte) {
	f.fc = f.fc&0x7f8 | uint32(v)&0x007
	f.setW0()
}

func (f *Filter) WriteCutoffHi(v byte) {
	f.fc = (uint32(v)<<3)&0x7f8 | f.fc&0x007
	f.setW0()
}

// WriteResonanceRouting sets the resonance (high nibble) and the routing
// mask (low nibble: voice 1, 2, 3, external input).
func (f *Filter) WriteResonanceRouting(v byte) {
	f.res = uint32(v>>4) & 0x0f
	f.setQ()
	f.filt = v & 0x0f
}

// WriteModeVolume sets the voice 3 mute bit, the low/band/high pass mode
// bits and the master volume.
func (f *Filter) WriteModeVolume(v byte) {
	f.voice3off = v&0x80 != 0
	f.hpBpLp = v >> 4 & 0x07
	f.vol = int(v & 0x0f)
}

func (f *Filter) setW0() {
	f.w0 = w0(f.m.f0[f.fc])
	f.w0Ceil1 = min(f.w0, w0Max1)
	f.w0CeilDt = min(f.w0, w0MaxDt)
}

func (f *Filter) setQ() {
	f.q1024 = int(1024.0 / (0.707 + float64(f.res)/15))
}

// route splits the inputs into the filtered sum and the bypass sum and
// returns the filtered one.
func (f *Filter) route(voice1, voice2, voice3, extIn int) int {
	// Scale the voice outputs down to the integrator range.
	voice1 >>= 7
	voice2 >>= 7
	if f.voice3off && f.filt&0x04 == 0 {
		voice3 = 0
	} else {
		voice3 >>= 7
	}
	extIn >>= 7

	if !f.enabled {
		f.vnf = voice1 + voice2 + voice3 + extIn
		f.vhp, f.vbp, f.vlp = 0, 0, 0
		return 0
	}

	vi, vnf := 0, 0
	for i, in := range [4]int{voice1, voice2, voice3, extIn} {
		if f.filt&(1<<i) != 0 {
			vi += in
		} else {
			vnf += in
		}
	}
	f.vnf = vnf
	return vi
}

// Clock runs the filter for one cycle.
func (f *Filter) Clock(voice1, voice2, voice3, extIn int) {
	vi := f.route(voice1, voice2, voice3, extIn)
	if !f.enabled {
		return
	}

	dVbp := f.w0Ceil1 * f.vhp >> 20
	dVlp := f.w0Ceil1 * f.vbp >> 20
	f.vbp -= dVbp
	f.vlp -= dVlp
	f.vhp = f.vbp*f.q1024>>10 - f.vlp - vi
}

// ClockDelta runs the filter for n cycles in steps of at most 8 cycles.
func (f *Filter) ClockDelta(n, voice1, voice2, voice3, extIn int) {
	vi := f.route(voice1, voice2, voice3, extIn)
	if !f.enabled {
		return
	}

	step := 8
	for n > 0 {
		if n < step {
			step = n
		}

		// 2*pi*f*dt scaled by 2^14 for a 1 MHz clock.
		w0dt := f.w0CeilDt * step >> 6

		dVbp := w0dt * f.vhp >> 14
		dVlp := w0dt * f.vbp >> 14
		f.vbp -= dVbp
		f.vlp -= dVlp
		f.vhp = f.vbp*f.q1024>>10 - f.vlp - vi

		n -= step
	}
}

// Output returns the mixer output after the volume control.
func (f *Filter) Output() int {
	if !f.enabled {
		return (f.vnf + f.m.mixerDC) * f.vol
	}

	vf := 0
	if f.hpBpLp&0x1 != 0 {
		vf += f.vlp
	}
	if f.hpBpLp&0x2 != 0 {
		vf += f.vbp
	}
	if f.hpBpLp&0x4 != 0 {
		vf += f.vhp
	}
	return (f.vnf + vf + f.m.mixerDC) * f.vol
}

// Cutoff returns the 11-bit cutoff register.
func (f *Filter) Cutoff() uint16 {
	return uint16(f.fc)
}
