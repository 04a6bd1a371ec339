package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// getColorizedLogo renders a short flow-cell lane, one colour per base
func getColorizedLogo() string {
	a := color.New(color.FgGreen, color.Bold).SprintFunc()
	c := color.New(color.FgBlue, color.Bold).SprintFunc()
	g := color.New(color.FgYellow, color.Bold).SprintFunc()
	t := color.New(color.FgRed, color.Bold).SprintFunc()
	return a("A") + c("C") + g("G") + t("T") + "#"
}

// Custom help function used
// It provides nicely formatted help messages for the root command and other subcommands
func helpFunc(cmd *cobra.Command, args []string) {

	globalFlags := []string{
		cyan("-f, --file") + " <string>    : Input FASTQ file (required, use '-' for stdin)",
		cyan("-j, --bzip2") + "            : Decode the input as bzip2",
		cyan("-n, --discard-n") + "        : Discard reads containing N (reported as SKIP)",
		cyan("-V, --verbose") + "          : Log progress messages",
		cyan("    --progress") + "         : Show a record counter on stderr",
	}

	switch cmd.Name() {
	case "demux":
		fmt.Printf(`
%s

%s
  Split reads into one FASTA file per index tag, named <input>.<tag>.
  Each record is written as ">TAG_INDEX" followed by the sequence, where
  INDEX counts every record read. Reads with an unknown tag are reported
  as "EBADF <tag>" on stderr, reads with a malformed name as "BAD HEADER".

%s
  %s
  %s
  %s
  %s
  %s
  %s

%s
%s

%s
  %s
  %s
  %s

`,
			bold(getColorizedLogo()+" illuminatools demux - Splits reads by index tag"),
			bold(yellow("Description:")),
			bold(yellow("Flags:")),
			cyan("-m, --mismatches")+" <int>  : Also accept tags within this many mismatches (default, 0)",
			cyan("-z, --compress")+" <string> : Output compression (none, gzip, zstd) (default, 'none')",
			cyan("-l, --level")+" <int>       : Compression level (default, codec default)",
			cyan("-o, --prefix")+" <string>   : Output path prefix (default, input path)",
			cyan("-t, --tags-file")+" <file>  : Tab-separated tag and sample name",
			cyan("    --config")+" <file>     : JSON run configuration",
			bold(yellow("Global flags:")),
			indent(globalFlags),
			bold(yellow("Examples:")),
			cyan("illuminatools demux -f lane1.fq.bz2 -j AACCGG TTGGCC"),
			cyan("illuminatools demux -f lane1.fq.gz -n --mismatches 1 --compress gzip -t samples.tsv"),
			cyan("zcat lane1.fq.gz | illuminatools demux -f - --prefix lane1 AACCGG TTGGCC"),
		)
		return
	case "estimateq":
		fmt.Printf(`
%s

%s
  Compare the tag of every read with the closest primer and report
  PRIMERS, TAGLEN, TOTAL (tag bases compared), MISMATCHES and
  Q = MISMATCHES / TOTAL. Q is reported as NA when nothing was compared.
  Reads whose tag length differs from the primers are reported as TAGLEN.

%s
%s

%s
  %s

`,
			bold(getColorizedLogo()+" illuminatools estimateq - Estimates the tag error rate"),
			bold(yellow("Description:")),
			bold(yellow("Global flags:")),
			indent(globalFlags),
			bold(yellow("Examples:")),
			cyan("illuminatools estimateq -f lane1.fq.gz AACCGG TTGGCC"),
		)
		return
	case "qualhisto":
		fmt.Printf(`
%s

%s
  For every read write "x y n len qbar qsd bcliff" to stdout, where bcliff
  is the length of the trailing run of cliff symbols. Positions before the
  cliff are pooled per read position; their mean and variance are written
  to stderr (or --summary) once all inputs are read.

%s
  %s
  %s
  %s
  %s
  %s

%s
%s

%s
  %s
  %s

`,
			bold(getColorizedLogo()+" illuminatools qualhisto - Summarises base qualities"),
			bold(yellow("Description:")),
			bold(yellow("Flags:")),
			cyan("-q, --offset")+" <int>      : Quality encoding offset (default, 64)",
			cyan("-c, --cliff")+" <char>      : Trailing cliff symbol (default, 'B')",
			cyan("-p, --positions")+" <int>   : Number of read positions tracked (default, 512)",
			cyan("-s, --summary")+" <file>    : Position summary output (default, stderr)",
			cyan("    --per-input")+"         : Also write <input>.qualpos for every input",
			bold(yellow("Global flags:")),
			indent(globalFlags),
			bold(yellow("Examples:")),
			cyan("illuminatools qualhisto -f lane1.fq.gz > reads.tsv 2> positions.tsv"),
			cyan("illuminatools qualhisto -f lane1.fq.gz lane2.fq.gz --summary positions.tsv --per-input"),
		)
		return
	case "synthetic":
		fmt.Printf(`
%s

%s
  Replace the sequence of every read with SEQUENCE, keeping names and
  qualities. Sequence and quality are cut to the shorter of the two.

%s
  %s

%s
  %s

`,
			bold(getColorizedLogo()+" illuminatools synthetic - Writes reads with a fixed sequence"),
			bold(yellow("Description:")),
			bold(yellow("Flags:")),
			cyan("-o, --out")+" <string>      : Output FASTQ file (default, stdout)",
			bold(yellow("Examples:")),
			cyan("illuminatools synthetic -f lane1.fq.gz ACGTACGTACGTACGT > synthetic.fq"),
		)
		return
	case "attachindex":
		fmt.Printf(`
%s

%s
  Read a FASTQ file and its index-read FASTQ in lock step and append each
  index sequence to the name of the matching read. Output stops at the end
  of the shorter file.

%s
  %s
  %s

%s
  %s

`,
			bold(getColorizedLogo()+" illuminatools attachindex - Moves index reads into read names"),
			bold(yellow("Description:")),
			bold(yellow("Flags:")),
			cyan("-i, --index")+" <string>    : Index read FASTQ file (required)",
			cyan("-o, --out")+" <string>      : Output FASTQ file (default, stdout)",
			bold(yellow("Examples:")),
			cyan("illuminatools attachindex -f reads_1.fq.gz -i index.fq.gz -o tagged.fq.gz"),
		)
		return
	}

	// Default: root command help
	fmt.Printf(`
%s

%s
  %s
  %s
  %s
  %s
  %s

%s
%s
  %s
  %s

%s
  # Split a bzip2-compressed lane by tag, dropping reads with N
  %s

  # Estimate how often tags are misread
  %s

  # Per-read and per-position quality tables
  %s

%s
  illuminatools <subcommand> --help

`,
		bold(getColorizedLogo()+" illuminatools v."+VERSION+" - Demultiplex and summarise Illumina reads"),
		bold(yellow("Subcommands:")),
		cyan("demux")+"       : Split reads into one file per index tag",
		cyan("estimateq")+"   : Estimate the per-base error rate of index tags",
		cyan("qualhisto")+"   : Per-read and per-position quality statistics",
		cyan("synthetic")+"   : Replace every read sequence with a fixed sequence",
		cyan("attachindex")+" : Append index read sequences to read names",
		bold(yellow("Flags:")),
		indent(globalFlags),
		cyan("-h, --help")+"             : Show help message",
		cyan("-v, --version")+"          : Show version information",
		bold(yellow("Usage examples:")),
		cyan("illuminatools demux -f lane1.fq.bz2 -j -n AACCGG TTGGCC"),
		cyan("illuminatools estimateq -f lane1.fq.gz AACCGG TTGGCC"),
		cyan("illuminatools qualhisto -f lane1.fq.gz > reads.tsv 2> positions.tsv"),
		bold(yellow("More information:")),
	)
}

func indent(lines []string) string {
	s := ""
	for i, l := range lines {
		if i > 0 {
			s += "\n"
		}
		s += "  " + l
	}
	return s
}
