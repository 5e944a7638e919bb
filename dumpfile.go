package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
)

var ErrBadDumpLine = errors.New("bad register dump line")

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// Register columns per group in a table row.
var dumpGroups = [4]int{7, 7, 7, 4}

// dumpSource replays a register table written by output mode 1. Each row
// becomes one frame whose changed registers are written at its start.
type dumpSource struct {
	scanner *bufio.Scanner
	closers []func() error

	frameCycles int
	line        int
}

func openDump(fs afero.Fs, path string, frameCycles int) (*dumpSource, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	d, err := newDumpSource(f, frameCycles)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.closers = append(d.closers, f.Close)
	return d, nil
}

// newDumpSource reads a dump from r, which may be zstd or gzip
// compressed. frameCycles is used for rows without a frame length.
func newDumpSource(r io.Reader, frameCycles int) (*dumpSource, error) {
	d := &dumpSource{frameCycles: frameCycles}
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zstdMagic))

	var src io.Reader = br
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		src = zr
		d.closers = append(d.closers, func() error { zr.Close(); return nil })
	case bytes.HasPrefix(head, gzipMagic):
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		src = gr
		d.closers = append(d.closers, gr.Close)
	}
	d.scanner = bufio.NewScanner(src)
	return d, nil
}

func (d *dumpSource) NextFrame() (*Frame, error) {
	for d.scanner.Scan() {
		d.line++
		line := strings.TrimSpace(d.scanner.Text())
		if !strings.HasPrefix(line, "|") {
			continue
		}
		f, err := d.parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrBadDumpLine, d.line, err)
		}
		if f != nil {
			return f, nil
		}
	}
	if err := d.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// parseRow returns nil for the header row.
func (d *dumpSource) parseRow(line string) (*Frame, error) {
	cols := strings.Split(line, "|")
	if len(cols) != 8 {
		return nil, fmt.Errorf("%d columns", len(cols))
	}
	if strings.TrimSpace(cols[1]) == "Frame" {
		return nil, nil
	}

	f := &Frame{Cycles: d.frameCycles}
	reg := 0
	for g, n := range dumpGroups {
		fields := strings.Fields(cols[2+g])
		if len(fields) != n {
			return nil, fmt.Errorf("group %d has %d registers", g, len(fields))
		}
		for _, s := range fields {
			if s != ".." {
				v, err := strconv.ParseUint(s, 16, 8)
				if err != nil {
					return nil, err
				}
				f.Writes = append(f.Writes, RegWrite{Addr: byte(reg), Value: byte(v)})
			}
			reg++
		}
	}

	dt, err := strconv.ParseUint(strings.TrimSpace(cols[6]), 16, 16)
	if err != nil {
		return nil, err
	}
	if dt != 0 {
		f.Cycles = int(dt)
	}
	return f, nil
}

func (d *dumpSource) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
