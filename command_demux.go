// Subcommand (`illuminatools demux`) splitting reads into one file per index tag.

package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// demuxOptions is the resolved configuration of a demux run
type demuxOptions struct {
	input    string
	prefix   string // output path prefix; the input path unless overridden
	bzip2    bool
	discardN bool
	progress bool
	tags     []string
	samples  map[string]string // tag -> sample name, from --tags-file
	registry RegistryOptions
}

// DemuxCommand creates the `demux` subcommand.
//
// Every record whose name carries one of the declared tags is appended to
// <input>.<tag> as ">{tag}_{index}\n{sequence}\n". Tags come from the
// positional arguments, a --tags-file and a JSON --config, in that order
func DemuxCommand(g *globalOptions) *cobra.Command {
	var (
		configFile string
		tagsFile   string
		prefix     string
		compress   string
		level      int
		mismatches int
	)

	cmd := &cobra.Command{
		Use:   "demux [flags] TAG [TAG ...]",
		Short: "Split reads into one file per index tag",
		Long: `Split Illumina reads into one FASTA file per declared index tag. The tag is
read from the read name (text after '#'). Reads with an unknown tag are
reported as EBADF on stderr; unparseable names as BAD HEADER. A per-tag
summary is written to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireInput(g); err != nil {
				return err
			}

			opts := demuxOptions{
				input:    g.inFile,
				prefix:   g.inFile,
				bzip2:    g.bzip2,
				discardN: g.discardN,
				progress: g.progress,
				tags:     append([]string(nil), args...),
			}
			flags := cmd.Flags()

			if configFile != "" {
				cfg, err := readDemuxConfig(configFile)
				if err != nil {
					return err
				}
				opts.tags = mergeTags(opts.tags, cfg.Tags...)
				if !flags.Changed("mismatches") {
					mismatches = cfg.Mismatches
				}
				if !flags.Changed("compress") && cfg.Compress != "" {
					compress = cfg.Compress
				}
				if !flags.Changed("level") && cfg.Level != 0 {
					level = cfg.Level
				}
				if !flags.Changed("discard-n") && cfg.DiscardN {
					opts.discardN = true
				}
				if prefix == "" && cfg.Prefix != "" {
					prefix = cfg.Prefix
				}
			}

			if tagsFile != "" {
				tags, samples, err := readTagsFile(tagsFile)
				if err != nil {
					return err
				}
				opts.tags = mergeTags(opts.tags, tags...)
				opts.samples = samples
			}

			if prefix != "" {
				opts.prefix = prefix
			} else if g.inFile == "-" {
				return fmt.Errorf("reading from stdin requires an output prefix (--prefix)")
			}

			if mismatches < 0 {
				return fmt.Errorf("invalid number of mismatches: %d", mismatches)
			}
			c, err := parseCompression(compress)
			if err != nil {
				return err
			}
			opts.registry = RegistryOptions{
				Sink:       SinkOptions{Compression: c, Level: level},
				Mismatches: mismatches,
			}

			return runDemux(opts, defaultStreams())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "JSON run configuration (tags, mismatches, discard_n, compress, level, prefix)")
	flags.StringVarP(&tagsFile, "tags-file", "t", "", "Tab-separated file of tag and sample name")
	flags.StringVarP(&prefix, "prefix", "o", "", "Output path prefix (default: input path)")
	flags.StringVarP(&compress, "compress", "z", "none", "Output compression (none, gzip, zstd)")
	flags.IntVarP(&level, "level", "l", 0, "Compression level (0: codec default)")
	flags.IntVarP(&mismatches, "mismatches", "m", 0, "Also accept tags within this many mismatches of a declared tag")

	return cmd
}

// runDemux routes every record of the input to the output of its tag and
// writes a "tag\trecords\tpath" summary to s.out.
//
// The outputs are all created before the first record is read; a failure to
// create one aborts the run and removes those already created
func runDemux(opts demuxOptions, s streams) error {
	start := time.Now()
	diag := NewDiagnostics(s.diag)

	source, err := selectOpener(opts.bzip2)(opts.input)
	if err != nil {
		return err
	}
	defer source.Close()

	registry, err := OpenRegistry(opts.prefix, opts.tags, opts.registry, diag)
	if err != nil {
		return err
	}
	defer registry.Close()

	for _, tag := range opts.tags {
		if sample, ok := opts.samples[tag]; ok {
			log.WithFields(log.Fields{"tag": tag, "sample": sample}).Info("declared")
		}
	}
	if conflicts := registry.Conflicts(); len(conflicts) > 0 {
		log.WithField("aliases", len(conflicts)).Warn("ambiguous mismatch aliases dropped")
		for _, alias := range conflicts {
			log.Debugf("alias %s is within %d mismatches of several tags", alias, opts.registry.Mismatches)
		}
	}

	progress := newProgressBar(opts.progress)
	driver := &Driver{
		Source:    source,
		DiscardN:  opts.discardN,
		TagLength: registry.TagLength(),
		Diag:      diag,
		Progress:  progress,
	}
	counters, err := driver.Run(ProcessorFunc(func(index int, record *fastx.Record, id SequenceIdentifier) error {
		return registry.Route(id.Tag, index, record.Seq.Seq)
	}))
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return err
	}
	if err := registry.Close(); err != nil {
		return errors.Wrap(err, "closing outputs")
	}

	fmt.Fprintln(s.out, "#tag\trecords\tpath")
	for _, tc := range registry.Counts() {
		fmt.Fprintf(s.out, "%s\t%d\t%s\n", tc.Tag, tc.Records, tc.Path)
	}

	logCounters(opts.input, counters)
	log.WithFields(log.Fields{
		"compression": opts.registry.Sink.Compression.String(),
		"elapsed":     time.Since(start).Round(time.Millisecond),
	}).Info("demux done")
	return nil
}
