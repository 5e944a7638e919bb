package sid

// EnvelopeState is the phase of the ADSR state machine.
type EnvelopeState int

const (
	Attack EnvelopeState = iota
	DecaySustain
	Release
)

func (s EnvelopeState) String() string {
	switch s {
	case Attack:
		return "attack"
	case DecaySustain:
		return "decay/sustain"
	case Release:
		return "release"
	}
	return "unknown"
}

// Rate counter periods for the 16 attack/decay/release settings, in
// cycles between envelope steps at 1 MHz.
var ratePeriods = [16]uint32{
	8, 31, 62, 94, 148, 219, 266, 312,
	391, 976, 1953, 3125, 3906, 11719, 19531, 31250,
}

var sustainLevels = [16]byte{
	0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
	0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
}

// Envelope is the ADSR envelope generator of one voice.
type Envelope struct {
	m *model

	rateCounter uint32
	ratePeriod  uint32

	expCounter uint32
	expPeriod  uint32

	counter byte
	env3    byte

	// Pipelines delay the visible effect of steps and gate changes by
	// a few cycles. They are only modeled for single cycle clocking.
	envelopePipeline    int
	exponentialPipeline int
	statePipeline       int

	holdZero         bool
	resetRateCounter bool

	attack  byte
	decay   byte
	sustain byte
	release byte
	gate    bool

	state     EnvelopeState
	nextState EnvelopeState
}

// NewEnvelope returns an envelope generator in its power-up state.
func NewEnvelope(t ChipType) *Envelope {
	e := &Envelope{}
	e.powerUp(modelFor(t))
	return e
}

func (e *Envelope) powerUp(m *model) {
	e.m = m
	e.counter = 0xaa
	e.nextState = Release
	e.Reset()
}

// Reset clears the registers and pipelines. The envelope counter keeps
// its value.
func (e *Envelope) Reset() {
	e.envelopePipeline = 0
	e.exponentialPipeline = 0
	e.statePipeline = 0

	e.attack = 0
	e.decay = 0
	e.sustain = 0
	e.release = 0
	e.gate = false

	e.rateCounter = 0
	e.expCounter = 0
	e.expPeriod = 1
	e.resetRateCounter = false

	e.state = Release
	e.ratePeriod = ratePeriods[e.release]
	e.holdZero = false
}

// WriteControl handles the gate bit of the voice control register.
func (e *Envelope) WriteControl(v byte) {
	gate := v&0x01 != 0
	if gate == e.gate {
		return
	}

	if gate {
		// Attack starts two cycles later; the decay rate is visible in
		// between.
		e.nextState = Attack
		e.state = DecaySustain
		e.ratePeriod = ratePeriods[e.decay]
		e.statePipeline = 2
		if e.resetRateCounter || e.exponentialPipeline == 2 {
			if e.expPeriod == 1 || e.exponentialPipeline == 2 {
				e.envelopePipeline = 2
			} else {
				e.envelopePipeline = 4
			}
		} else if e.exponentialPipeline == 1 {
			e.statePipeline = 3
		}
	} else {
		e.nextState = Release
		if e.envelopePipeline > 0 {
			e.statePipeline = 3
		} else {
			e.statePipeline = 2
		}
	}
	e.gate = gate
}

func (e *Envelope) WriteAttackDecay(v byte) {
	e.attack = v >> 4 & 0x0f
	e.decay = v & 0x0f
	switch e.state {
	case Attack:
		e.ratePeriod = ratePeriods[e.attack]
	case DecaySustain:
		e.ratePeriod = ratePeriods[e.decay]
	}
}

func (e *Envelope) WriteSustainRelease(v byte) {
	e.sustain = v >> 4 & 0x0f
	e.release = v & 0x0f
	if e.state == Release {
		e.ratePeriod = ratePeriods[e.release]
	}
}

// Clock advances the envelope by one cycle.
func (e *Envelope) Clock() {
	// ENV3 is sampled in the first phase of the cycle.
	e.env3 = e.counter

	if e.statePipeline != 0 {
		e.stateChange()
	}

	if e.envelopePipeline != 0 {
		e.envelopePipeline--
		if e.envelopePipeline == 0 && !e.holdZero {
			e.step()
		}
	}

	if e.exponentialPipeline != 0 {
		e.exponentialPipeline--
		if e.exponentialPipeline == 0 {
			e.expCounter = 0
			if e.state == DecaySustain && e.counter != sustainLevels[e.sustain] || e.state == Release {
				e.envelopePipeline = 1
			}
		}
	} else if e.resetRateCounter {
		e.rateCounter = 0
		e.resetRateCounter = false

		if e.state == Attack {
			// The first attack step also resets the exponential counter.
			e.expCounter = 0
			e.envelopePipeline = 2
		} else if !e.holdZero {
			e.expCounter++
			if e.expCounter == e.expPeriod {
				if e.expPeriod != 1 {
					e.exponentialPipeline = 2
				} else {
					e.exponentialPipeline = 1
				}
			}
		}
	}

	// A rate period below the current counter value lets the counter run
	// on until it wraps at 0x8000.
	if e.rateCounter != e.ratePeriod {
		e.rateCounter++
		if e.rateCounter&0x8000 != 0 {
			e.rateCounter = (e.rateCounter + 1) & 0x7fff
		}
	} else {
		e.resetRateCounter = true
	}
}

// ClockDelta advances the envelope by n cycles, one rate period at a
// time. Pending pipeline steps from single cycle clocking are settled
// immediately.
func (e *Envelope) ClockDelta(n int) {
	if n <= 0 {
		return
	}

	if e.statePipeline != 0 {
		switch e.nextState {
		case Attack:
			e.state = Attack
			e.holdZero = false
			e.ratePeriod = ratePeriods[e.attack]
		case Release:
			e.state = Release
			e.ratePeriod = ratePeriods[e.release]
		}
		e.statePipeline = 0
	}

	rateStep := int(e.ratePeriod) - int(e.rateCounter)
	if rateStep <= 0 {
		rateStep += 0x7fff
	}

	for n != 0 {
		if n < rateStep {
			e.rateCounter += uint32(n)
			if e.rateCounter&0x8000 != 0 {
				e.rateCounter = (e.rateCounter + 1) & 0x7fff
			}
			break
		}

		e.rateCounter = 0
		n -= rateStep

		if e.state == Attack {
			e.expCounter = 0
		} else {
			e.expCounter++
			if e.expCounter != e.expPeriod {
				rateStep = int(e.ratePeriod)
				continue
			}
			e.expCounter = 0
		}

		if !e.holdZero {
			if e.state == DecaySustain && e.counter == sustainLevels[e.sustain] {
				// Sustain level reached: no step, no period change.
			} else {
				e.step()
			}
		}
		rateStep = int(e.ratePeriod)
	}

	e.env3 = e.counter
}

// step moves the envelope counter one step in the current state and
// updates the exponential period.
func (e *Envelope) step() {
	switch e.state {
	case Attack:
		e.counter++
		if e.counter == 0xff {
			e.state = DecaySustain
			e.ratePeriod = ratePeriods[e.decay]
		}
	case DecaySustain, Release:
		e.counter--
	}
	e.setExponentialCounter()
}

func (e *Envelope) stateChange() {
	e.statePipeline--

	switch e.nextState {
	case Attack:
		switch e.statePipeline {
		case 1:
			e.ratePeriod = ratePeriods[e.decay]
		case 0:
			e.state = Attack
			e.ratePeriod = ratePeriods[e.attack]
			e.holdZero = false
		}
	case Release:
		if e.state == Attack && e.statePipeline == 0 || e.state == DecaySustain && e.statePipeline == 1 {
			e.state = Release
			e.ratePeriod = ratePeriods[e.release]
		}
	}
}

// setExponentialCounter approximates the capacitor discharge curve by
// lengthening the step period as the counter falls. Reaching zero
// freezes the counter until the next attack.
func (e *Envelope) setExponentialCounter() {
	switch e.counter {
	case 0xff:
		e.expPeriod = 1
	case 0x5d:
		e.expPeriod = 2
	case 0x36:
		e.expPeriod = 4
	case 0x1a:
		e.expPeriod = 8
	case 0x0e:
		e.expPeriod = 16
	case 0x06:
		e.expPeriod = 30
	case 0x00:
		e.expPeriod = 1
		e.holdZero = true
	}
}

// Output returns the envelope DAC output.
func (e *Envelope) Output() uint16 {
	return e.m.envDAC[e.counter]
}

// ReadEnv returns the value visible in the ENV3 register.
func (e *Envelope) ReadEnv() byte {
	return e.env3
}

// Counter returns the 8-bit envelope counter.
func (e *Envelope) Counter() byte {
	return e.counter
}

// State returns the current ADSR phase.
func (e *Envelope) State() EnvelopeState {
	return e.state
}
