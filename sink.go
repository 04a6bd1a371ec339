package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
)

// Compression selects how demultiplexed outputs are written
type Compression int

const (
	CompressNone Compression = iota
	CompressGzip
	CompressZstd
)

func (c Compression) String() string {
	switch c {
	case CompressGzip:
		return "gzip"
	case CompressZstd:
		return "zstd"
	default:
		return "none"
	}
}

func (c Compression) suffix() string {
	switch c {
	case CompressGzip:
		return ".gz"
	case CompressZstd:
		return ".zst"
	default:
		return ""
	}
}

func parseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressNone, nil
	case "gzip", "gz":
		return CompressGzip, nil
	case "zstd", "zst":
		return CompressZstd, nil
	default:
		return CompressNone, fmt.Errorf("invalid compression: %s (valid: none, gzip, zstd)", s)
	}
}

// SinkOptions configures output files
type SinkOptions struct {
	Compression Compression
	Level       int // 0 selects the codec default
}

// validate checks the level against the codec before any output is created
func (o SinkOptions) validate() error {
	switch o.Compression {
	case CompressGzip:
		if o.Level < pgzip.DefaultCompression || o.Level > pgzip.BestCompression {
			return errors.Wrapf(ErrSinkOpen, "invalid gzip level %d (valid: 1-%d)", o.Level, pgzip.BestCompression)
		}
	case CompressZstd:
		if o.Level < 0 || o.Level > 22 {
			return errors.Wrapf(ErrSinkOpen, "invalid zstd level %d (valid: 1-22)", o.Level)
		}
	}
	return nil
}

// sinkPath names the output for a tag: <input>.<tag>, plus the codec suffix
func sinkPath(input, tag string, c Compression) string {
	return input + "." + tag + c.suffix()
}

// Sink is one open demultiplexing output
type Sink struct {
	path    string
	fh      *os.File
	buf     *bufio.Writer
	enc     io.WriteCloser // nil for plain output
	w       io.Writer
	records int
}

func createSink(path string, opts SinkOptions) (*Sink, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(ErrSinkOpen, "%s: %v", path, err)
	}
	s := &Sink{path: path, fh: fh, buf: bufio.NewWriterSize(fh, 1<<16)}

	switch opts.Compression {
	case CompressGzip:
		level := opts.Level
		if level == 0 {
			level = pgzip.DefaultCompression
		}
		gz, err := pgzip.NewWriterLevel(s.buf, level)
		if err != nil {
			fh.Close()
			os.Remove(path)
			return nil, errors.Wrapf(ErrSinkOpen, "%s: %v", path, err)
		}
		s.enc = gz
	case CompressZstd:
		level := zstd.SpeedDefault
		if opts.Level > 0 {
			level = zstd.EncoderLevelFromZstd(opts.Level)
		}
		zw, err := zstd.NewWriter(s.buf, zstd.WithEncoderLevel(level))
		if err != nil {
			fh.Close()
			os.Remove(path)
			return nil, errors.Wrapf(ErrSinkOpen, "%s: %v", path, err)
		}
		s.enc = zw
	}

	if s.enc != nil {
		s.w = s.enc
	} else {
		s.w = s.buf
	}
	return s, nil
}

// WriteRecord appends ">{tag}_{index}\n{seq}\n"
func (s *Sink) WriteRecord(tag string, index int, seq []byte) error {
	if _, err := fmt.Fprintf(s.w, ">%s_%d\n%s\n", tag, index, seq); err != nil {
		return errors.Wrapf(err, "writing %s", s.path)
	}
	s.records++
	return nil
}

// Close flushes and closes the output
func (s *Sink) Close() error {
	var first error
	if s.enc != nil {
		first = s.enc.Close()
	}
	if err := s.buf.Flush(); err != nil && first == nil {
		first = err
	}
	if err := s.fh.Close(); err != nil && first == nil {
		first = err
	}
	if first != nil {
		return errors.Wrapf(first, "closing %s", s.path)
	}
	return nil
}
