package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const VERSION = "0.3.0"

// exitFunc is replaced in tests
var exitFunc = os.Exit

// Define color functions
var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// globalOptions are the flags shared by every subcommand
type globalOptions struct {
	inFile   string
	bzip2    bool
	discardN bool
	verbose  bool
	progress bool
}

// streams carries the output destinations of a run
type streams struct {
	out  io.Writer // summaries and tables
	diag io.Writer // per-record diagnostics
}

func defaultStreams() streams {
	return streams{out: os.Stdout, diag: os.Stderr}
}

func newRootCmd() *cobra.Command {
	var (
		globals globalOptions
		version bool
	)

	rootCmd := &cobra.Command{
		Use:           "illuminatools",
		Short:         bold("Demultiplex and summarise Illumina FASTQ reads"),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(globals.verbose)
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version {
				fmt.Printf("illuminatools %s\n", VERSION)
				return
			}
			helpFunc(cmd, args)
		},
	}
	rootCmd.SetHelpFunc(helpFunc)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&globals.inFile, "file", "f", "", "Input FASTQ file (use - for stdin)")
	flags.BoolVarP(&globals.bzip2, "bzip2", "j", false, "Input file is bzip2-compressed")
	flags.BoolVarP(&globals.discardN, "discard-n", "n", false, "Discard reads containing N")
	flags.BoolVarP(&globals.verbose, "verbose", "V", false, "Log progress messages")
	flags.BoolVar(&globals.progress, "progress", false, "Show a record counter on stderr")
	rootCmd.Flags().BoolVarP(&version, "version", "v", false, "Show version information")

	rootCmd.AddCommand(
		DemuxCommand(&globals),
		EstimateQCommand(&globals),
		QualHistoCommand(&globals),
		SyntheticCommand(&globals),
		AttachIndexCommand(&globals),
	)
	return rootCmd
}

func setupLogging(verbose bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

// requireInput fails when no input file was given
func requireInput(g *globalOptions) error {
	if g.inFile == "" {
		return fmt.Errorf("an input file is required (-f, --file)")
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("Error: "+err.Error()))
		fmt.Fprintln(os.Stderr, red("Try 'illuminatools --help' for more information"))
		exitFunc(1)
	}
}
