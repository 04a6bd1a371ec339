// Subcommand (`illuminatools qualhisto`) for per-read and per-position quality statistics.

package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/cheggaaa/pb/v3"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type qualHistoOptions struct {
	inputs    []string
	bzip2     bool
	discardN  bool
	progress  bool
	quality   QualityOptions
	positions int
	summary   string // "" writes the position summary to the diagnostics stream
	perInput  bool   // also write <input>.qualpos for every input
}

// QualHistoCommand creates the `qualhisto` subcommand.
//
// For every read a row "x y n len qbar qsd bcliff" is written to stdout; once
// all inputs are read the mean and variance of every read position follows,
// on stderr unless --summary names a file
func QualHistoCommand(g *globalOptions) *cobra.Command {
	var (
		offset    int
		cliff     string
		positions int
		summary   string
		perInput  bool
	)

	cmd := &cobra.Command{
		Use:   "qualhisto [flags] [MORE_INPUTS ...]",
		Short: "Per-read and per-position quality statistics",
		Long: `Compute quality statistics for every read (tile coordinates, number of N
bases, length, mean and variance of quality, length of the trailing quality
cliff) and the mean and variance of quality at every read position. Extra
positional arguments are read as further inputs; their positions are pooled
into a single summary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireInput(g); err != nil {
				return err
			}
			if len(cliff) != 1 {
				return fmt.Errorf("invalid cliff symbol: %q (need exactly one character)", cliff)
			}
			if positions <= 0 {
				return fmt.Errorf("invalid number of positions: %d", positions)
			}
			return runQualHisto(qualHistoOptions{
				inputs:    append([]string{g.inFile}, args...),
				bzip2:     g.bzip2,
				discardN:  g.discardN,
				progress:  g.progress,
				quality:   QualityOptions{Offset: offset, Cliff: cliff[0]},
				positions: positions,
				summary:   summary,
				perInput:  perInput,
			}, defaultStreams())
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&offset, "offset", "q", DEFAULT_QUAL_OFFSET, "Quality encoding offset (64 for Illumina 1.3+, 33 for Sanger)")
	flags.StringVarP(&cliff, "cliff", "c", string(rune(DEFAULT_CLIFF_SYMBOL)), "Quality symbol marking the trailing cliff")
	flags.IntVarP(&positions, "positions", "p", DEFAULT_MAX_POSITIONS, "Number of read positions tracked")
	flags.StringVarP(&summary, "summary", "s", "", "Write the position summary to this file (default: stderr)")
	flags.BoolVar(&perInput, "per-input", false, "Also write the position summary of every input to <input>.qualpos")

	return cmd
}

// runQualHisto reads every input in turn. Each input gets its own position
// accumulator, merged into the pooled one when the input is exhausted
func runQualHisto(opts qualHistoOptions, s streams) error {
	if opts.perInput {
		for _, input := range opts.inputs {
			if input == "-" {
				return fmt.Errorf("--per-input cannot name an output for stdin")
			}
		}
	}

	opener := selectOpener(opts.bzip2)
	total := NewPositionAccumulator(opts.positions)

	rows := bufio.NewWriterSize(s.out, 1<<16)
	defer rows.Flush()
	s = streams{out: rows, diag: s.diag}

	if _, err := io.WriteString(s.out, qualityRowHeader); err != nil {
		return err
	}

	progress := newProgressBar(opts.progress)
	for _, input := range opts.inputs {
		acc, err := qualHistoInput(opener, input, opts, progress, s)
		if err != nil {
			if progress != nil {
				progress.Finish()
			}
			return err
		}
		if opts.perInput {
			if err := writePositionSummary(input+".qualpos", acc); err != nil {
				return err
			}
		}
		total.Merge(acc)
	}
	if progress != nil {
		progress.Finish()
	}
	if err := rows.Flush(); err != nil {
		return err
	}

	if opts.summary == "" {
		return total.WriteSummary(s.diag)
	}
	return writePositionSummary(opts.summary, total)
}

func qualHistoInput(opener Opener, input string, opts qualHistoOptions, progress *pb.ProgressBar, s streams) (*PositionAccumulator, error) {
	source, err := opener(input)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	acc := NewPositionAccumulator(opts.positions)
	driver := &Driver{
		Source:   source,
		DiscardN: opts.discardN,
		Diag:     NewDiagnostics(s.diag),
		Progress: progress,
	}
	counters, err := driver.Run(ProcessorFunc(func(_ int, record *fastx.Record, id SequenceIdentifier) error {
		rq := AnalyzeRecord(id, record.Seq.Seq, record.Seq.Qual, acc, opts.quality)
		return rq.WriteRow(s.out)
	}))
	if err != nil {
		return nil, errors.Wrap(err, input)
	}
	logCounters(input, counters)
	log.WithFields(log.Fields{"input": input, "positions": acc.Extent()}).Debug("position summary")
	return acc, nil
}

func writePositionSummary(path string, acc *PositionAccumulator) error {
	outfh, err := openOutput(path)
	if err != nil {
		return err
	}
	if err := acc.WriteSummary(outfh); err != nil {
		outfh.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := outfh.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}
	return nil
}
