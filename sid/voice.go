package sid

// Voice couples an oscillator with an envelope generator. The voices of
// a chip form a fixed ring: each voice is synced and ring modulated by
// the voice at syncSource and in turn syncs the voice at syncDest.
type Voice struct {
	osc Oscillator
	env Envelope

	waveZero int

	syncSource int
	syncDest   int
}

func (v *Voice) powerUp(m *model) {
	v.osc.powerUp(m)
	v.env.powerUp(m)
	v.waveZero = m.waveZero
}

func (v *Voice) setModel(m *model) {
	v.osc.setModel(m)
	v.env.m = m
	v.waveZero = m.waveZero
}

func (v *Voice) reset() {
	v.osc.Reset()
	v.env.Reset()
}

// Output is the amplitude modulated, zero-centred voice signal.
func (v *Voice) Output() int {
	return (int(v.osc.Output()) - v.waveZero) * int(v.env.Output())
}

// Oscillator returns the voice's waveform generator.
func (v *Voice) Oscillator() *Oscillator {
	return &v.osc
}

// Envelope returns the voice's envelope generator.
func (v *Voice) Envelope() *Envelope {
	return &v.env
}
