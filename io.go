// I/O utilities: record sources, diagnostics and output streams

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
)

// Source yields FASTQ records one at a time. Next returns io.EOF once the
// stream is exhausted
type Source interface {
	Next() (*fastx.Record, error)
	Close() error
}

// Opener opens a Source for a path ("-" is stdin)
type Opener func(path string) (Source, error)

// selectOpener picks the input decoder once, at start-up. The default opener
// sniffs gzip/bzip2/xz/zstd content; forceBzip2 decodes every input as bzip2
func selectOpener(forceBzip2 bool) Opener {
	if forceBzip2 {
		return openBzip2Source
	}
	return openSource
}

type fastxSource struct {
	reader *fastx.Reader
	closer io.Closer
}

func (s *fastxSource) Next() (*fastx.Record, error) {
	return s.reader.Read()
}

func (s *fastxSource) Close() error {
	s.reader.Close()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func openSource(path string) (Source, error) {
	reader, err := fastx.NewReader(seq.DNAredundant, path, fastx.DefaultIDRegexp)
	if err != nil {
		return nil, errors.Wrapf(ErrInputOpen, "%s: %v", path, err)
	}
	return &fastxSource{reader: reader}, nil
}

func openBzip2Source(path string) (Source, error) {
	var fh *os.File
	if path == "-" {
		fh = os.Stdin
	} else {
		var err error
		fh, err = os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(ErrInputOpen, "%s: %v", path, err)
		}
	}

	bz, err := bzip2.NewReader(fh, nil)
	if err != nil {
		fh.Close()
		return nil, errors.Wrapf(ErrInputOpen, "%s: %v", path, err)
	}

	reader, err := fastx.NewReaderFromIO(seq.DNAredundant, bz, fastx.DefaultIDRegexp)
	if err != nil {
		bz.Close()
		fh.Close()
		return nil, errors.Wrapf(ErrInputOpen, "%s: %v", path, err)
	}
	return &fastxSource{reader: reader, closer: multiCloser{bz, fh}}, nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// recordName is the identifier token of a record header
func recordName(record *fastx.Record) string {
	return string(record.ID)
}

// Diagnostics writes the per-record and set-up notices of a run, one line each:
//
//	SKIP <name>        degenerate sequence dropped
//	BAD HEADER <name>  read name could not be parsed
//	EBADF <tag>        no output registered for the tag
//	FOPN <path>        output file opened
//	TAGLEN <n> != <m> <name>
type Diagnostics struct {
	w io.Writer
}

// NewDiagnostics returns a Diagnostics writing to w
func NewDiagnostics(w io.Writer) *Diagnostics {
	return &Diagnostics{w: w}
}

func (d *Diagnostics) Skip(name string)      { fmt.Fprintf(d.w, "SKIP %s\n", name) }
func (d *Diagnostics) BadHeader(name string) { fmt.Fprintf(d.w, "BAD HEADER %s\n", name) }
func (d *Diagnostics) UnknownTag(tag string) { fmt.Fprintf(d.w, "EBADF %s\n", tag) }
func (d *Diagnostics) Opened(path string)    { fmt.Fprintf(d.w, "FOPN %s\n", path) }

func (d *Diagnostics) TagLength(got, want int, name string) {
	fmt.Fprintf(d.w, "TAGLEN %d != %d %s\n", got, want, name)
}

// openOutput opens a buffered output stream; "-" is stdout and compressed
// formats are chosen from the file extension
func openOutput(path string) (*xopen.Writer, error) {
	outfh, err := xopen.Wopen(path)
	if err != nil {
		return nil, errors.Wrapf(ErrSinkOpen, "%s: %v", path, err)
	}
	return outfh, nil
}
