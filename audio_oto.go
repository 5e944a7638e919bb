//go:build !headless

package main

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// liveSink plays samples on the default audio device. Writes block until
// the device has taken the previous data, which paces playback in real
// time.
type liveSink struct {
	ctx    *oto.Context
	player *oto.Player
	pw     *io.PipeWriter
	buf    []byte
}

func newLiveSink(rate int) (sampleSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	pr, pw := io.Pipe()
	p := ctx.NewPlayer(pr)
	p.Play()
	return &liveSink{ctx: ctx, player: p, pw: pw}, nil
}

func (s *liveSink) WriteSamples(samples []int16) error {
	s.buf = s.buf[:0]
	for _, v := range samples {
		s.buf = binary.LittleEndian.AppendUint16(s.buf, uint16(v))
	}
	_, err := s.pw.Write(s.buf)
	return err
}

// Close lets the player drain and releases it.
func (s *liveSink) Close() error {
	s.pw.Close()
	for s.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return s.player.Close()
}
