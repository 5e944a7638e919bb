package sid

// ExternalFilter models the RC network on the audio output pin: a low
// pass at about 16 kHz followed by a high pass at about 16 Hz that also
// removes the DC level of the mixer.
type ExternalFilter struct {
	enabled bool
	mixerDC int

	vlp int
	vhp int
	vo  int

	w0lp int
	w0hp int
}

// NewExternalFilter returns an enabled external filter.
func NewExternalFilter(t ChipType) *ExternalFilter {
	e := &ExternalFilter{}
	e.init(modelFor(t))
	return e
}

func (e *ExternalFilter) init(m *model) {
	e.enabled = true
	// w0 = 2*pi*f scaled by 2^20 for a 1 MHz clock.
	e.w0lp = 104858
	e.w0hp = 105
	e.setModel(m)
	e.Reset()
}

func (e *ExternalFilter) setModel(m *model) {
	e.mixerDC = m.extMixerDC
}

// Enable switches the RC network in or out. When out, the output is the
// input with the mixer DC level removed.
func (e *ExternalFilter) Enable(on bool) {
	e.enabled = on
}

func (e *ExternalFilter) Reset() {
	e.vlp = 0
	e.vhp = 0
	e.vo = 0
}

// Clock runs the filter for one cycle.
func (e *ExternalFilter) Clock(vi int) {
	if !e.enabled {
		e.vlp, e.vhp = 0, 0
		e.vo = vi - e.mixerDC
		return
	}

	dVlp := (e.w0lp >> 8) * (vi - e.vlp) >> 12
	dVhp := e.w0hp * (e.vlp - e.vhp) >> 20
	e.vo = e.vlp - e.vhp
	e.vlp += dVlp
	e.vhp += dVhp
}

// ClockDelta runs the filter for n cycles in steps of at most 8 cycles.
func (e *ExternalFilter) ClockDelta(n, vi int) {
	if !e.enabled {
		e.vlp, e.vhp = 0, 0
		e.vo = vi - e.mixerDC
		return
	}

	step := 8
	for n > 0 {
		if n < step {
			step = n
		}
		dVlp := (e.w0lp * step >> 8) * (vi - e.vlp) >> 12
		dVhp := e.w0hp * step * (e.vlp - e.vhp) >> 20
		e.vo = e.vlp - e.vhp
		e.vlp += dVlp
		e.vhp += dVhp
		n -= step
	}
}

// Output returns the filtered signal.
func (e *ExternalFilter) Output() int {
	return e.vo
}
