package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

var ErrCompressedToTerminal = errors.New("refusing to write compressed output to a terminal")

var (
	stdout           io.Writer = os.Stdout
	stdoutIsTerminal           = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
)

// compressionFor picks the output compression: the explicit choice if
// any, otherwise from the file suffix.
func compressionFor(path, compress string) string {
	if compress != "" {
		return compress
	}
	switch {
	case strings.HasSuffix(path, ".zst"):
		return "zstd"
	case strings.HasSuffix(path, ".gz"):
		return "gzip"
	}
	return ""
}

// output is a table writer and the layers to close behind it, innermost
// first.
type output struct {
	io.Writer
	closers []io.Closer
}

// Close closes every layer once. Later calls return nil.
func (o *output) Close() error {
	var errs []error
	for _, c := range o.closers {
		errs = append(errs, c.Close())
	}
	o.closers = nil
	return errors.Join(errs...)
}

// openOutput opens path for table output, or standard output when path
// is empty or "-".
func openOutput(fs afero.Fs, path, compress string) (io.WriteCloser, error) {
	o := &output{}
	mode := compressionFor(path, compress)

	if path == "" || path == "-" {
		if mode != "" && stdoutIsTerminal() {
			return nil, ErrCompressedToTerminal
		}
		o.Writer = stdout
	} else {
		f, err := fs.Create(path)
		if err != nil {
			return nil, err
		}
		o.Writer = f
		o.closers = append(o.closers, f)
	}

	switch mode {
	case "":
	case "zstd":
		zw, err := zstd.NewWriter(o.Writer)
		if err != nil {
			o.Close()
			return nil, err
		}
		o.Writer = zw
		o.closers = append([]io.Closer{zw}, o.closers...)
	case "gzip":
		gw := gzip.NewWriter(o.Writer)
		o.Writer = gw
		o.closers = append([]io.Closer{gw}, o.closers...)
	default:
		o.Close()
		return nil, fmt.Errorf("unknown compression %q", mode)
	}
	return o, nil
}
