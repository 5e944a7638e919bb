package main

import (
	"errors"

	"github.com/arl/blip/wave"
	"github.com/spf13/afero"
)

// wavSink records samples to a 16-bit mono WAV file.
type wavSink struct {
	f  *stickyFile
	wv *wave.Writer
}

// stickyFile keeps the first write or seek error, which the wave writer
// does not report.
type stickyFile struct {
	afero.File
	err error
}

func (f *stickyFile) Write(p []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.File.Write(p)
	if err != nil {
		f.err = err
	}
	return n, err
}

func (f *stickyFile) WriteAt(p []byte, off int64) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.File.WriteAt(p, off)
	if err != nil {
		f.err = err
	}
	return n, err
}

func (f *stickyFile) Seek(offset int64, whence int) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	pos, err := f.File.Seek(offset, whence)
	if err != nil {
		f.err = err
	}
	return pos, err
}

func newWavSink(fs afero.Fs, path string, rate int) (*wavSink, error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, err
	}
	return wavSinkFor(f, rate), nil
}

func wavSinkFor(f afero.File, rate int) *wavSink {
	sf := &stickyFile{File: f}
	return &wavSink{f: sf, wv: wave.NewWriter(sf, rate)}
}

func (s *wavSink) WriteSamples(samples []int16) error {
	if s.f.err != nil {
		return s.f.err
	}
	if len(samples) > 0 {
		s.wv.Write(samples)
	}
	return s.f.err
}

// Close finishes the header and closes the file.
func (s *wavSink) Close() error {
	s.wv.Close()
	return errors.Join(s.f.err, s.f.File.Close())
}
