package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/afero"
)

// sampleSink consumes rendered 16-bit mono samples.
type sampleSink interface {
	WriteSamples(s []int16) error
	Close() error
}

// AudioOutput renders every frame on the chip emulation and hands the
// samples of the displayed frames to its sinks. Frames before the first
// displayed frame are still played so the chip state is right.
type AudioOutput struct {
	Options  *SidOutputSettings
	Renderer *Renderer
	Sinks    []sampleSink

	// SaveState, when set, receives the chip state after the last frame.
	SaveState string
	Fs        afero.Fs

	samples int
}

func (a *AudioOutput) PreSteps() error {
	return nil
}

func (a *AudioOutput) ProcessFrame(frame int, f *Frame) error {
	samples := a.Renderer.Play(f)
	if frame < a.Options.Firstframe {
		return nil
	}
	a.samples += len(samples)
	for _, s := range a.Sinks {
		if err := s.WriteSamples(samples); err != nil {
			return err
		}
	}
	return nil
}

func (a *AudioOutput) PostSteps() error {
	var errs []error
	for _, s := range a.Sinks {
		errs = append(errs, s.Close())
	}
	log.Printf("Rendered %d samples", a.samples)

	if a.SaveState != "" {
		data := a.Renderer.Chip().Serialize()
		if err := afero.WriteFile(a.Fs, a.SaveState, data, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("save state: %w", err))
		}
	}
	return errors.Join(errs...)
}
