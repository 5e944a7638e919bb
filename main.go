package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/afero"

	"picosid/sid"
)

var appFs = afero.NewOsFs()

func main() {
	log.SetFlags(0)
	log.SetPrefix("picosid: ")

	opt := SidOutputSettings{}

	// Parse arguments
	opt.ParseArgs()

	if opt.Usage == 1 {
		fmt.Fprintln(os.Stderr, "Usage: picosid [options] <sidfile>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(&opt); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(opt *SidOutputSettings) error {
	if err := opt.validate(); err != nil {
		return err
	}

	var tune *SidTune
	if opt.Replay == "" && opt.Script == "" {
		var err error
		if tune, err = LoadSidTune(appFs, opt.Args[0]); err != nil {
			return err
		}
		log.Print(tune)
		if tune.NTSC() {
			opt.NTSC = true
		}
		if model, ok := tune.Model(); ok && opt.Model == "" {
			opt.Model = model
		}
	}

	notes := newNoteTable(opt.clockHz())
	if opt.Basefreq != 0 {
		notes.Recalibrate(opt.Basefreq, opt.Basenote)
	}

	src, err := openSource(opt, tune, notes)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := openOutput(appFs, opt.Out, opt.Compress)
	if err != nil {
		return err
	}
	defer out.Close()

	currentSid := NewSID()

	// Create requested output struct type
	output := &ActiveDecoder{}
	switch opt.DecoderOutput {
	case modeRegisters:
		output.AddOutput(&ScreenOutputSidRegisters{Options: opt, SidState: currentSid, Out: out})
	case modeNotes:
		output.AddOutput(&ScreenOutputWithNotes{Options: opt, SidState: currentSid, Notes: notes, Out: out})
	}
	if opt.wantsAudio() {
		audio, err := newAudioOutput(opt)
		if err != nil {
			return err
		}
		output.AddOutput(audio)
	}

	frames := opt.Seconds * opt.framesPerSecond()
	log.Printf("Calling playroutine for %d frames, starting from frame %d", frames, opt.Firstframe)

	if err := output.PreProcess(); err != nil {
		return err
	}
	for frame := 0; frame < opt.Firstframe+frames; frame++ {
		f, err := src.NextFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			output.PostProcess()
			return err
		}

		currentSid.ApplyFrame(f)
		if err := output.ProcessFrame(frame, f); err != nil {
			output.PostProcess()
			return err
		}
	}
	if err := output.PostProcess(); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	log.Print("Simulation done!")
	return nil
}

// openSource picks the frame source: a register dump, a Lua script or
// the PSID tune.
func openSource(opt *SidOutputSettings, tune *SidTune, notes *NoteTable) (FrameSource, error) {
	switch {
	case opt.Replay != "":
		return openDump(appFs, opt.Replay, opt.frameCycles())
	case opt.Script != "":
		return openScript(appFs, opt.Script, notes, opt.frameCycles())
	}

	subtune := opt.Subtune
	if subtune < 0 {
		subtune = max(int(tune.StartSong), 1) - 1
	}
	if tune.Songs > 0 && subtune >= int(tune.Songs) {
		log.Printf("Warning: subtune %d out of range, tune has %d songs", subtune, tune.Songs)
	}

	if opt.Trace != "" {
		f, err := appFs.Create(opt.Trace)
		if err != nil {
			return nil, err
		}
		s := newPSIDSource(tune, subtune, opt.NTSC, f)
		return &tracedSource{psidSource: s, trace: f}, nil
	}
	return newPSIDSource(tune, subtune, opt.NTSC, nil), nil
}

// tracedSource closes the trace file with the source.
type tracedSource struct {
	*psidSource
	trace io.Closer
}

func (s *tracedSource) Close() error {
	return errors.Join(s.psidSource.Close(), s.trace.Close())
}

// newAudioOutput sets up the chip emulation and the audio sinks.
func newAudioOutput(opt *SidOutputSettings) (*AudioOutput, error) {
	chip := sid.New(opt.chipType())
	chip.EnableFilter(!opt.NoFilter)
	chip.EnableExtFilter(!opt.NoExtFilter)
	chip.SetInput(int16(opt.Input))
	chip.EnableDigiBoost(opt.Boost)
	if opt.ConfigPort {
		chip.OnConfig(func(cfg byte) {
			log.Printf("Configuration written: $%02X", cfg)
		})
		chip.OnLED(func(on bool) {
			log.Printf("LED on: %v", on)
		})
	}
	log.Printf("Emulating %v", chip.ChipType())

	a := &AudioOutput{
		Options:   opt,
		Renderer:  NewRenderer(chip, opt.clockHz(), opt.Rate, opt.Step),
		SaveState: opt.SaveState,
		Fs:        appFs,
	}
	if opt.Wav != "" {
		w, err := newWavSink(appFs, opt.Wav, opt.Rate)
		if err != nil {
			return nil, err
		}
		a.Sinks = append(a.Sinks, w)
	}
	if opt.Play {
		p, err := newLiveSink(opt.Rate)
		if err != nil {
			for _, s := range a.Sinks {
				s.Close()
			}
			return nil, err
		}
		a.Sinks = append(a.Sinks, p)
	}
	return a, nil
}
