// Subcommand (`illuminatools estimateq`) estimating the index tag error rate.

package main

import (
	"fmt"

	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/spf13/cobra"
)

type estimateQOptions struct {
	input    string
	bzip2    bool
	discardN bool
	progress bool
	primers  []string
}

// EstimateQCommand creates the `estimateq` subcommand, which compares the tag
// of every read with the closest of the given primers and reports the
// fraction of mismatching tag symbols
func EstimateQCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimateq [flags] PRIMER [PRIMER ...]",
		Short: "Estimate the per-base error rate of index tags",
		Long: `Compare the index tag of every read with the closest of the given primer
sequences (Hamming distance) and report the total number of tag bases, the
total number of mismatches and their ratio Q. All primers must have the same
length.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireInput(g); err != nil {
				return err
			}
			return runEstimateQ(estimateQOptions{
				input:    g.inFile,
				bzip2:    g.bzip2,
				discardN: g.discardN,
				progress: g.progress,
				primers:  args,
			}, defaultStreams())
		},
	}
	return cmd
}

// runEstimateQ writes
//
//	PRIMERS = n
//	TAGLEN = n
//	TOTAL = n
//	MISMATCHES = n
//	Q = f
//
// to s.out. Q is written as NA when no tag was compared
func runEstimateQ(opts estimateQOptions, s streams) error {
	estimator, err := NewMismatchEstimator(opts.primers)
	if err != nil {
		return err
	}

	source, err := selectOpener(opts.bzip2)(opts.input)
	if err != nil {
		return err
	}
	defer source.Close()

	fmt.Fprintf(s.out, "PRIMERS = %d\nTAGLEN = %d\n", len(estimator.Candidates), estimator.TagLength)

	progress := newProgressBar(opts.progress)
	driver := &Driver{
		Source:        source,
		DiscardN:      opts.discardN,
		TagLength:     0, // shorter tags are reported as TAGLEN, not BAD HEADER
		WantTagLength: estimator.TagLength,
		Diag:          NewDiagnostics(s.diag),
		Progress:      progress,
	}
	counters, err := driver.Run(ProcessorFunc(func(_ int, _ *fastx.Record, id SequenceIdentifier) error {
		_, err := estimator.Observe(id.Tag)
		return err
	}))
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "TOTAL = %d\nMISMATCHES = %d\n", estimator.TotalBases(), estimator.TotalMismatches)
	if q, err := estimator.Q(); err != nil {
		fmt.Fprintln(s.out, "Q = NA")
	} else {
		fmt.Fprintf(s.out, "Q = %f\n", q)
	}

	logCounters(opts.input, counters)
	return nil
}
