package main

import (
	"github.com/arl/blip"

	"picosid/sid"
)

// Renderer plays frames on a chip and resamples its output to the
// audio rate with a band-limited delta buffer.
type Renderer struct {
	chip *sid.Chip
	buf  *blip.Buffer

	// step is the number of chip cycles run between output samples taken
	// from the chip. 1 clocks the chip cycle by cycle.
	step int

	// time is the clock of the next delta within the current buffer frame.
	time  int
	chunk int
	amp   int

	tmp []int16
	out []int16
}

// NewRenderer returns a renderer for chip clocked at clockHz producing
// rate samples per second.
func NewRenderer(chip *sid.Chip, clockHz float64, rate, step int) *Renderer {
	bl := blip.NewBuffer(rate / 10)
	bl.SetRates(clockHz, float64(rate))
	return &Renderer{
		chip:  chip,
		buf:   bl,
		step:  max(1, step),
		chunk: int(clockHz) / 50,
		tmp:   make([]int16, 512),
	}
}

func (r *Renderer) Chip() *sid.Chip {
	return r.chip
}

// Play applies the writes of f at their cycle offsets, runs the chip to
// the end of the frame and returns the samples produced. The returned
// slice is reused by the next call.
func (r *Renderer) Play(f *Frame) []int16 {
	r.out = r.out[:0]
	now := 0
	for _, w := range f.Writes {
		if at := min(int(w.Cycle), f.Cycles); at > now {
			r.advance(at - now)
			now = at
		}
		r.chip.WriteRegister(w.Addr, w.Value)
	}
	if f.Cycles > now {
		r.advance(f.Cycles - now)
	}
	r.flush()
	return r.out
}

func (r *Renderer) advance(n int) {
	for n > 0 {
		s := min(n, r.step)
		if s == 1 {
			r.chip.Clock()
		} else {
			r.chip.Advance(s)
		}
		r.time += s
		n -= s

		if out := r.chip.AudioOutput(16); out != r.amp {
			r.buf.AddDelta(uint64(r.time), int32(out-r.amp))
			r.amp = out
		}
		if r.time >= r.chunk {
			r.flush()
		}
	}
}

// flush ends the buffer frame and moves the available samples to out.
func (r *Renderer) flush() {
	if r.time == 0 {
		return
	}
	r.buf.EndFrame(r.time)
	r.time = 0
	for r.buf.SamplesAvailable() > 0 {
		count := r.buf.ReadSamples(r.tmp, len(r.tmp), blip.Mono)
		r.out = append(r.out, r.tmp[:count]...)
	}
}
