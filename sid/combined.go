package sid

// combinedParams shapes the synthesized combined waveforms. When more
// than one waveform is selected the output transistors of all selected
// generators fight over the same bit lines: a bit survives only where
// every selected waveform drives it high and enough of its neighbours
// agree. threshold is the fraction of pull-up strength a bit needs,
// distance controls how fast a neighbour's influence falls off and
// pulse is the extra pull-down of the pulse comparator.
type combinedParams struct {
	threshold float64
	distance  float64
	pulse     float64
}

// Indexed by the low three waveform bits (3 = saw+tri, 5 = pulse+tri,
// 6 = pulse+saw, 7 = pulse+saw+tri).
var combined6581 = map[int]combinedParams{
	3: {threshold: 0.74, distance: 0.90},
	5: {threshold: 0.66, distance: 1.10, pulse: 1.20},
	6: {threshold: 0.63, distance: 1.00, pulse: 1.50},
	7: {threshold: 0.86, distance: 1.00, pulse: 1.00},
}

var combined8580 = map[int]combinedParams{
	3: {threshold: 0.61, distance: 1.60},
	5: {threshold: 0.56, distance: 1.80, pulse: 0.60},
	6: {threshold: 0.57, distance: 1.50, pulse: 0.80},
	7: {threshold: 0.71, distance: 1.60, pulse: 0.60},
}

func buildCombinedWaves(m *model) {
	params := combined6581
	if m.chipType == MOS8580 {
		params = combined8580
	}
	for wf, p := range params {
		for i := 0; i < 1<<12; i++ {
			m.wave[wf][i] = combinedSample(wf, i, p)
		}
	}
}

// combinedSample computes one table entry. The result is always a subset
// of the logical AND of the selected ideal waveforms.
func combinedSample(wf, index int, p combinedParams) uint16 {
	saw := index
	tri := index << 1
	if index&0x800 != 0 {
		tri = ^tri
	}
	tri &= 0xffe

	ideal := 0xfff
	if wf&1 != 0 {
		ideal &= tri
	}
	if wf&2 != 0 {
		ideal &= saw
	}
	if ideal == 0 {
		return 0
	}

	var weight [12]float64
	for d := range weight {
		weight[d] = 1 / (1 + float64(d*d)*p.distance)
	}

	pulse := 0.0
	if wf&4 != 0 {
		pulse = p.pulse
	}

	out := 0
	for bit := 0; bit < 12; bit++ {
		if ideal>>bit&1 == 0 {
			continue
		}
		up, total := 0.0, pulse
		for n := 0; n < 12; n++ {
			d := n - bit
			if d < 0 {
				d = -d
			}
			w := weight[d]
			total += w
			if ideal>>n&1 != 0 {
				up += w
			}
		}
		if up/total > p.threshold {
			out |= 1 << bit
		}
	}
	return uint16(out)
}
