package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// define a commmon interface for all output decoders
type SidOutputDecoder interface {
	PreSteps() error
	ProcessFrame(frame int, f *Frame) error
	PostSteps() error
}

// ActiveDecoder fans every frame out to the selected decoders.
type ActiveDecoder struct {
	decoders []SidOutputDecoder
}

func (d *ActiveDecoder) AddOutput(dec SidOutputDecoder) {
	d.decoders = append(d.decoders, dec)
}

func (d *ActiveDecoder) PreProcess() error {
	for _, dec := range d.decoders {
		if err := dec.PreSteps(); err != nil {
			return err
		}
	}
	return nil
}

func (d *ActiveDecoder) ProcessFrame(frame int, f *Frame) error {
	for _, dec := range d.decoders {
		if err := dec.ProcessFrame(frame, f); err != nil {
			return err
		}
	}
	return nil
}

// PostProcess finishes every decoder, even after one of them fails.
func (d *ActiveDecoder) PostProcess() error {
	var errs []error
	for _, dec := range d.decoders {
		errs = append(errs, dec.PostSteps())
	}
	return errors.Join(errs...)
}

const (
	notesHeader    = "| Frame | Freq Note/Abs WF ADSR Pul | Freq Note/Abs WF ADSR Pul | Freq Note/Abs WF ADSR Pul | FCut RC Typ V |"
	notesSeparator = "+-------+---------------------------+---------------------------+---------------------------+---------------+"
	notesPattern   = "+=======+===========================+===========================+===========================+===============+"

	registersHeader    = "| Frame | 00 01 02 03 04 05 06 | 07 08 09 10 11 12 13 | 14 15 16 17 18 19 20 | 21 22 23 24 |  dt   |"
	registersSeparator = "+-------+----------------------+----------------------+----------------------+-------------+-------+"
)

// frameTime formats the first column of a table row.
func frameTime(opt *SidOutputSettings, time int) string {
	if opt.Timeseconds == 0 {
		return fmt.Sprintf("| %5d | ", time)
	}
	fps := opt.framesPerSecond()
	return fmt.Sprintf("|%01d:%02d.%02d| ", time/(fps*60), (time/fps)%60, time%fps)
}

type ScreenOutputWithNotes struct {
	Options  *SidOutputSettings
	SidState *Sid
	Notes    *NoteTable
	Out      io.Writer

	prevSidState [2]*Sid
	counter      int
	rows         int
}

// use struct to implement interface
func (state *ScreenOutputWithNotes) PreSteps() error {
	state.prevSidState[0] = NewSID()
	state.prevSidState[1] = NewSID()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Middle C frequency is $%04X\n\n", state.Notes[middleC])
	sb.WriteString(notesHeader)
	if state.Options.Profiling != 0 {
		// CPU cycles, Raster lines, Raster lines with badlines on every 8th line, first line included
		sb.WriteString(" Cycl RL RB |")
	}
	sb.WriteString("\n")
	sb.WriteString(notesSeparator)
	if state.Options.Profiling != 0 {
		sb.WriteString("------------+")
	}
	sb.WriteString("\n")
	_, err := io.WriteString(state.Out, sb.String())
	return err
}

func (state *ScreenOutputWithNotes) ProcessFrame(frame int, f *Frame) error {
	opt := state.Options
	if frame < opt.Firstframe {
		return nil
	}

	var sb strings.Builder

	currentSid := state.SidState
	prev2Sid := state.prevSidState[1]
	prevSid := state.prevSidState[0]

	time := frame - opt.Firstframe
	firstframe := frame == opt.Firstframe

	sb.WriteString(frameTime(opt, time))

	// Loop for each channel
	for i := 0; i < 3; i++ {
		newnote := false
		cur := &currentSid.Channel[i]
		prev := &prevSid.Channel[i]

		// Keyoff-keyon sequence detection
		if cur.Wave >= 0x10 {
			prev2Wave := prev2Sid.Channel[i].Wave
			if cur.Wave&1 == 1 && (prev2Wave&1 == 0 || prev2Wave < 0x10) {
				prev.Note = -1
			}
		}

		// Frequency
		if firstframe || prev.Note == -1 || cur.Freq != prev.Freq {
			delta := int(cur.Freq) - int(prev2Sid.Channel[i].Freq)
			fmt.Fprintf(&sb, "%04X ", cur.Freq)

			if cur.Wave >= 0x10 {
				cur.Note = state.Notes.Nearest(cur.Freq, prev.Note, opt.Oldnotefactor)

				// Print new note
				if cur.Note != prev.Note {
					if prev.Note == -1 {
						if opt.Lowres == 1 {
							newnote = true
						}
						fmt.Fprintf(&sb, " %s %02X  ", notename[cur.Note], cur.Note|0x80)
					} else {
						fmt.Fprintf(&sb, "(%s %02X) ", notename[cur.Note], cur.Note|0x80)
					}
				} else {
					// If same note, print frequency change (slide/vibrato)
					switch {
					case delta == 0:
						sb.WriteString(" ... ..  ")
					case delta > 0:
						fmt.Fprintf(&sb, "(+ %04X) ", delta)
					case delta < 0:
						fmt.Fprintf(&sb, "(- %04X) ", -delta)
					}
				}
			} else {
				sb.WriteString(" ... ..  ")
			}
		} else {
			sb.WriteString("....  ... ..  ")
		}

		// Waveform
		if firstframe || newnote || cur.Wave != prev.Wave {
			fmt.Fprintf(&sb, "%02X ", cur.Wave)
		} else {
			sb.WriteString(".. ")
		}

		// ADSR
		if firstframe || newnote || cur.ADSR != prev.ADSR {
			fmt.Fprintf(&sb, "%04X ", cur.ADSR)
		} else {
			sb.WriteString(".... ")
		}

		// Pulse
		if firstframe || newnote || cur.Pulse != prev.Pulse {
			fmt.Fprintf(&sb, "%03X ", cur.Pulse)
		} else {
			sb.WriteString("... ")
		}

		sb.WriteString("| ")
	}

	// Filter cutoff
	if firstframe || currentSid.Filt.Cutoff != prevSid.Filt.Cutoff {
		fmt.Fprintf(&sb, "%04X ", currentSid.Filt.Cutoff)
	} else {
		sb.WriteString(".... ")
	}

	// Filter control
	if firstframe || currentSid.Filt.Control != prevSid.Filt.Control {
		fmt.Fprintf(&sb, "%02X ", currentSid.Filt.Control)
	} else {
		sb.WriteString(".. ")
	}

	// Filter passband
	if firstframe || currentSid.Filt.Type&0x70 != prevSid.Filt.Type&0x70 {
		fmt.Fprintf(&sb, "%s ", filtername[(currentSid.Filt.Type>>4)&0x7])
	} else {
		sb.WriteString("... ")
	}

	// Mastervolume
	if firstframe || currentSid.Filt.Type&0xF != prevSid.Filt.Type&0xF {
		fmt.Fprintf(&sb, "%01X ", currentSid.Filt.Type&0xF)
	} else {
		sb.WriteString(". ")
	}

	// Rasterlines / cycle count
	if opt.Profiling != 0 {
		cycles := f.CPUCycles
		rasterlines := (cycles + 62) / 63
		badlines := (cycles + 503) / 504
		rasterlinesbad := (badlines*40 + cycles + 62) / 63
		fmt.Fprintf(&sb, "| %4d %02X %02X ", cycles, rasterlines, rasterlinesbad)
	}

	// End of frame display, print info so far and copy SID registers to old registers
	sb.WriteString("|\n")

	if opt.Lowres == 0 || opt.Spacing == 0 || time%opt.Spacing == 0 {
		if _, err := io.WriteString(state.Out, sb.String()); err != nil {
			return err
		}
		prevSid.CopyFrom(currentSid)
	}
	prev2Sid.CopyFrom(currentSid)

	// Print note/pattern separators
	if opt.Spacing != 0 {
		state.counter++
		if state.counter >= opt.Spacing {
			state.counter = 0
			line := ""
			if opt.Pattspacing != 0 {
				state.rows++
				if state.rows >= opt.Pattspacing {
					state.rows = 0
					line = notesPattern
				} else if opt.Lowres != 0 {
					line = notesSeparator
				}
			} else if opt.Lowres != 0 {
				line = notesSeparator
			}
			if line != "" {
				if _, err := io.WriteString(state.Out, line+"\n"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (state *ScreenOutputWithNotes) PostSteps() error { return nil }

// ScreenOutputSidRegisters prints every register per frame, with ".."
// for unchanged values. The same table is read back by the replay source.
type ScreenOutputSidRegisters struct {
	Options  *SidOutputSettings
	SidState *Sid
	Out      io.Writer

	prevSidState *Sid
}

func (state *ScreenOutputSidRegisters) PreSteps() error {
	state.prevSidState = NewSID()
	_, err := io.WriteString(state.Out, registersHeader+"\n"+registersSeparator+"\n")
	return err
}

func (state *ScreenOutputSidRegisters) ProcessFrame(frame int, f *Frame) error {
	opt := state.Options
	if frame < opt.Firstframe {
		return nil
	}

	var sb strings.Builder

	currentSid := state.SidState
	prevSid := state.prevSidState
	time := frame - opt.Firstframe

	sb.WriteString(frameTime(opt, time))

	// Check registers for changes, print the ones that have changed
	for c := range currentSid.Register {
		if currentSid.Register[c] != prevSid.Register[c] || time == 0 {
			fmt.Fprintf(&sb, "%02X ", currentSid.Register[c])
		} else {
			sb.WriteString(".. ")
		}

		if c == 6 || c == 13 || c == 20 {
			sb.WriteString("| ")
		}

		prevSid.Register[c] = currentSid.Register[c]
	}
	fmt.Fprintf(&sb, "|  %04X |\n", uint16(f.Cycles))
	_, err := io.WriteString(state.Out, sb.String())
	return err
}

func (state *ScreenOutputSidRegisters) PostSteps() error { return nil }
