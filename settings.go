package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"

	"picosid/sid"
)

type SidOutputSettings struct {
	Basefreq      int
	Basenote      int
	Firstframe    int
	Lowres        int
	Oldnotefactor int
	Pattspacing   int
	Profiling     int
	Subtune       int
	Seconds       int
	Spacing       int
	Timeseconds   int
	Usage         int
	DecoderOutput int

	// Chip
	Model       string
	NoFilter    bool
	NoExtFilter bool
	Boost       bool
	Input       int
	ConfigPort  bool
	NTSC        bool

	// Audio
	Rate      int
	Step      int
	Wav       string
	Play      bool
	SaveState string

	// Sources and table output
	Replay   string
	Script   string
	Out      string
	Compress string
	Trace    string

	Args []string
}

// Output modes selected with -m.
const (
	modeNotes = iota
	modeRegisters
	modeNone
)

func (opt *SidOutputSettings) ParseArgs() {
	opt.parseArgs(flag.CommandLine, os.Args[1:])
}

func (opt *SidOutputSettings) parseArgs(fs *flag.FlagSet, args []string) error {
	fs.IntVar(&opt.Subtune, "a", -1, "Accumulator value on init (subtune number), default is the start song of the tune")
	fs.IntVar(&opt.Basefreq, "c", 0, "Frequency recalibration. Give note frequency in hex")
	fs.IntVar(&opt.Basenote, "d", 0xb0, "Select calibration note (abs.notation 80-DF). Default middle-C (B0)")
	fs.IntVar(&opt.Firstframe, "f", 0, "First frame to display, default 0")
	fs.IntVar(&opt.Lowres, "l", 1, "Low-resolution mode (only display 1 row per note)")
	fs.IntVar(&opt.DecoderOutput, "m", modeNotes, "Output mode: 0 notes, 1 registers, 2 none")
	fs.IntVar(&opt.Spacing, "n", 0, "Note spacing, default 0 (none)")
	fs.IntVar(&opt.Oldnotefactor, "o", 1, "'Oldnote-sticky' factor. Default 1, increase for better vibrato display")
	fs.IntVar(&opt.Pattspacing, "p", 0, "Pattern spacing, default 0 (none)")
	fs.IntVar(&opt.Timeseconds, "s", 0, "Display time in minutes:seconds:frame format")
	fs.IntVar(&opt.Seconds, "t", 60, "Playback time in seconds, default 60")
	fs.IntVar(&opt.Usage, "h", 0, "Display usage information")
	fs.IntVar(&opt.Profiling, "z", 0, "Include CPU cycles+rastertime (PAL)+rastertime, badline corrected")

	fs.StringVar(&opt.Model, "model", "", "Chip model, 6581 or 8580. Default from the tune header, else 6581")
	fs.BoolVar(&opt.NoFilter, "nofilter", false, "Bypass the filter")
	fs.BoolVar(&opt.NoExtFilter, "noextfilter", false, "Bypass the external output filter")
	fs.BoolVar(&opt.Boost, "boost", false, "Digi boost (8580 only)")
	fs.IntVar(&opt.Input, "input", 0, "External audio input level (-32768..32767)")
	fs.BoolVar(&opt.ConfigPort, "configport", false, "Enable the configuration port on register $1D")
	fs.BoolVar(&opt.NTSC, "ntsc", false, "NTSC machine, default from the tune header, else PAL")

	fs.IntVar(&opt.Rate, "rate", 44100, "Audio sample rate in Hz")
	fs.IntVar(&opt.Step, "step", 1, "Chip cycles per output sample taken, 1 is cycle exact")
	fs.StringVar(&opt.Wav, "wav", "", "Render audio to a WAV file")
	fs.BoolVar(&opt.Play, "play", false, "Play audio on the default device")
	fs.StringVar(&opt.SaveState, "savestate", "", "Write the chip state to this file when done")

	fs.StringVar(&opt.Replay, "replay", "", "Replay a register dump (output mode 1, may be .zst or .gz) instead of a tune")
	fs.StringVar(&opt.Script, "script", "", "Run a Lua register script instead of a tune")
	fs.StringVar(&opt.Out, "out", "", "Write table output to this file, default standard output")
	fs.StringVar(&opt.Compress, "compress", "", "Compress table output: zstd or gzip. Default from the -out suffix")
	fs.StringVar(&opt.Trace, "trace", "", "Write a 6502 instruction trace to this file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	opt.Args = fs.Args()
	return nil
}

// validate checks option combinations that flag parsing cannot.
func (opt *SidOutputSettings) validate() error {
	var errs []error
	if opt.Model != "" && opt.Model != "6581" && opt.Model != "8580" {
		errs = append(errs, fmt.Errorf("unknown chip model %q", opt.Model))
	}
	if opt.Rate < 8000 || opt.Rate > 192000 {
		errs = append(errs, fmt.Errorf("sample rate %d out of range", opt.Rate))
	}
	if opt.Step < 1 {
		errs = append(errs, errors.New("step must be at least 1"))
	}
	if opt.Input < math.MinInt16 || opt.Input > math.MaxInt16 {
		errs = append(errs, fmt.Errorf("input level %d out of range", opt.Input))
	}
	if opt.DecoderOutput < modeNotes || opt.DecoderOutput > modeNone {
		errs = append(errs, fmt.Errorf("unknown output mode %d", opt.DecoderOutput))
	}
	if opt.Replay != "" && opt.Script != "" {
		errs = append(errs, errors.New("-replay and -script are exclusive"))
	}
	if opt.Replay == "" && opt.Script == "" && len(opt.Args) == 0 {
		errs = append(errs, errors.New("no SID file given"))
	}
	return errors.Join(errs...)
}

func (opt *SidOutputSettings) framesPerSecond() int {
	if opt.NTSC {
		return 60
	}
	return 50
}

func (opt *SidOutputSettings) clockHz() float64 {
	if opt.NTSC {
		return ntscClock
	}
	return palClock
}

func (opt *SidOutputSettings) frameCycles() int {
	if opt.NTSC {
		return ntscFrameCycles
	}
	return palFrameCycles
}

func (opt *SidOutputSettings) chipType() sid.ChipType {
	if opt.Model == "8580" {
		return sid.MOS8580
	}
	return sid.MOS6581
}

// wantsAudio reports whether the chip emulation has to run at all.
func (opt *SidOutputSettings) wantsAudio() bool {
	return opt.Wav != "" || opt.Play || opt.SaveState != ""
}
