// Subcommand (`illuminatools synthetic`) replacing read sequences with a fixed sequence.

package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// SyntheticCommand creates the `synthetic` subcommand. Each read keeps its
// name and qualities while its sequence is replaced by a prefix of the given
// sequence, which is useful for checking downstream tools against a known
// template
func SyntheticCommand(g *globalOptions) *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "synthetic [flags] SEQUENCE",
		Short: "Replace every read sequence with a fixed sequence",
		Long: `Write a FASTQ file in which every read carries the given sequence instead of
its own, trimmed together with the quality string to the shorter of the two.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireInput(g); err != nil {
				return err
			}
			return runSynthetic(g.inFile, outFile, g.bzip2, []byte(args[0]))
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "-", "Output FASTQ file (default: stdout)")
	return cmd
}

func runSynthetic(inFile, outFile string, bzip2 bool, template []byte) error {
	source, err := selectOpener(bzip2)(inFile)
	if err != nil {
		return err
	}
	defer source.Close()

	outfh, err := openOutput(outFile)
	if err != nil {
		return err
	}

	for {
		record, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			outfh.Close()
			return errors.Wrap(err, "reading record")
		}
		if err := writeSynthetic(outfh, recordName(record), template, record.Seq.Qual); err != nil {
			outfh.Close()
			return errors.Wrapf(err, "writing %s", outFile)
		}
	}
	if err := outfh.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", outFile)
	}
	return nil
}

// writeSynthetic writes "@name\nSEQ\n+name\nQUAL\n" with SEQ and QUAL cut to
// the length of the shorter one
func writeSynthetic(w io.Writer, name string, template, qual []byte) error {
	m := len(qual)
	if len(template) < m {
		m = len(template)
	}
	_, err := fmt.Fprintf(w, "@%s\n%s\n+%s\n%s\n", name, template[:m], name, qual[:m])
	return err
}
