// Subcommand (`illuminatools attachindex`) moving index reads into read names.

package main

import (
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// AttachIndexCommand creates the `attachindex` subcommand, which reads a
// FASTQ file and its index-read FASTQ in lock step and appends each index
// sequence to the name of the matching read
func AttachIndexCommand(g *globalOptions) *cobra.Command {
	var (
		indexFile string
		outFile   string
	)

	cmd := &cobra.Command{
		Use:   "attachindex [flags]",
		Short: "Append index read sequences to read names",
		Long: `Read a FASTQ file (-f) and the FASTQ file of its index reads (-i) in lock step
and write each read with the index sequence appended to its name. Writing
stops at the end of the shorter file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireInput(g); err != nil {
				return err
			}
			if indexFile == "" {
				return errors.New("an index file is required (-i, --index)")
			}
			n, err := runAttachIndex(g.inFile, indexFile, outFile, g.bzip2)
			if err != nil {
				return err
			}
			log.WithField("records", n).Info("finished")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&indexFile, "index", "i", "", "Index read FASTQ file")
	flags.StringVarP(&outFile, "out", "o", "-", "Output FASTQ file (default: stdout)")
	return cmd
}

// runAttachIndex returns the number of records written
func runAttachIndex(inFile, indexFile, outFile string, bzip2 bool) (int, error) {
	opener := selectOpener(bzip2)
	reads, err := opener(inFile)
	if err != nil {
		return 0, err
	}
	defer reads.Close()
	index, err := opener(indexFile)
	if err != nil {
		return 0, err
	}
	defer index.Close()

	outfh, err := openOutput(outFile)
	if err != nil {
		return 0, err
	}

	n, err := attachIndexStreams(reads, index, outfh, inFile, indexFile)
	if err != nil {
		outfh.Close()
		return n, err
	}
	if err := outfh.Close(); err != nil {
		return n, errors.Wrapf(err, "closing %s", outFile)
	}
	return n, nil
}

// attachIndexStreams copies records until either stream ends
func attachIndexStreams(reads, index Source, w io.Writer, inFile, indexFile string) (int, error) {
	n := 0
	for {
		read, errRead := reads.Next()
		idx, errIndex := index.Next()
		if errRead != nil && errRead != io.EOF {
			return n, errors.Wrap(errRead, inFile)
		}
		if errIndex != nil && errIndex != io.EOF {
			return n, errors.Wrap(errIndex, indexFile)
		}
		if errRead == io.EOF || errIndex == io.EOF {
			if errRead != errIndex {
				log.WithFields(log.Fields{
					"reads": inFile,
					"index": indexFile,
					"after": n,
				}).Warn("files have different numbers of records")
			}
			break
		}
		if err := attachIndex(w, read, idx.Seq.Seq); err != nil {
			return n, errors.Wrap(err, "writing record")
		}
		n++
	}
	return n, nil
}

// attachIndex writes read as "@<name><index>\n<seq>\n+\n<qual>\n"
func attachIndex(w io.Writer, read *fastx.Record, index []byte) error {
	name := make([]byte, 0, len(read.ID)+len(index))
	name = append(name, read.ID...)
	name = append(name, index...)
	read.Name = name
	_, err := w.Write(read.Format(0))
	return err
}
