package main

import (
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
	log "github.com/sirupsen/logrus"
)

// Processor consumes records that passed the filter and whose name parsed.
// index counts every record read so far, skipped ones included.
// Returning an error wrapping ErrUnknownTag or ErrTagLength rejects the
// record; any other error stops the run
type Processor interface {
	Process(index int, record *fastx.Record, id SequenceIdentifier) error
}

// ProcessorFunc adapts a function to Processor
type ProcessorFunc func(index int, record *fastx.Record, id SequenceIdentifier) error

func (f ProcessorFunc) Process(index int, record *fastx.Record, id SequenceIdentifier) error {
	return f(index, record, id)
}

// Counters tallies what happened to the records of a run
type Counters struct {
	Total     int // records read
	Skipped   int // dropped by the ambiguity filter
	BadHeader int // name could not be parsed
	Rejected  int // refused by the processor
	Accepted  int
}

// Driver pulls records from a Source and feeds them to a Processor
type Driver struct {
	Source    Source
	DiscardN  bool // drop reads containing N
	TagLength int  // minimum tag length passed to ParseIdentifier
	// WantTagLength is the expected length shown in TAGLEN diagnostics.
	// Zero means TagLength
	WantTagLength int
	Diag          *Diagnostics
	Progress      *pb.ProgressBar
}

// Run processes the whole stream. Per-record problems are reported on the
// diagnostics stream and counted; read errors and processor failures end the
// run with an error
func (d *Driver) Run(p Processor) (Counters, error) {
	var c Counters
	for {
		record, err := d.Source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return c, errors.Wrap(err, "reading record")
		}
		c.Total++
		if d.Progress != nil {
			d.Progress.Increment()
		}

		name := recordName(record)
		if d.DiscardN && ContainsAmbiguity(record.Seq.Seq) {
			d.Diag.Skip(name)
			log.Debug(errors.Wrap(ErrDegenerateSequence, name))
			c.Skipped++
			continue
		}

		id, err := ParseIdentifier(name, d.TagLength)
		if err != nil {
			d.Diag.BadHeader(name)
			log.Debug(err)
			c.BadHeader++
			continue
		}

		if err := p.Process(c.Total, record, id); err != nil {
			switch {
			case errors.Is(err, ErrUnknownTag):
				d.Diag.UnknownTag(id.Tag)
			case errors.Is(err, ErrTagLength):
				want := d.WantTagLength
				if want == 0 {
					want = d.TagLength
				}
				d.Diag.TagLength(len(id.Tag), want, name)
			default:
				return c, err
			}
			c.Rejected++
			continue
		}
		c.Accepted++
	}
	return c, nil
}

// logCounters reports the tallies of a finished run
func logCounters(input string, c Counters) {
	log.WithFields(log.Fields{
		"input":      input,
		"total":      c.Total,
		"skipped":    c.Skipped,
		"bad_header": c.BadHeader,
		"rejected":   c.Rejected,
		"accepted":   c.Accepted,
	}).Info("finished")
}

// newProgressBar returns a record counter on stderr, or nil when disabled
func newProgressBar(enabled bool) *pb.ProgressBar {
	if !enabled {
		return nil
	}
	bar := pb.New(0)
	bar.SetWriter(os.Stderr)
	bar.SetTemplateString(`{{counters . }} records {{speed . "%s rec/s" }} {{etime . }}`)
	return bar.Start()
}
