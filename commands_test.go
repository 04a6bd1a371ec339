package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemuxRoutesKnownTag(t *testing.T) {
	dir := t.TempDir()
	input := writeFastq(t, dir, "reads.fq",
		fastqEntry{"INST:1:FC:1:1:100:200#AACCGG", "ACGT", "hhhh"})

	s, out, diag := testStreams()
	err := runDemux(demuxOptions{
		input:  input,
		prefix: input,
		tags:   []string{"AACCGG", "TTGGCC"},
	}, s)
	require.NoError(t, err)

	assert.Equal(t, ">AACCGG_1\nACGT\n", readFile(t, input+".AACCGG"))
	assert.Empty(t, readFile(t, input+".TTGGCC"))
	assert.Equal(t, "FOPN "+input+".AACCGG\nFOPN "+input+".TTGGCC\n", diag.String())
	assert.Equal(t, "#tag\trecords\tpath\n"+
		"AACCGG\t1\t"+input+".AACCGG\n"+
		"TTGGCC\t0\t"+input+".TTGGCC\n", out.String())
}

func TestDemuxReportsUnknownTag(t *testing.T) {
	dir := t.TempDir()
	input := writeFastq(t, dir, "reads.fq",
		fastqEntry{"INST:1:FC:1:1:100:200#AACCGG", "ACGT", "hhhh"})

	s, _, diag := testStreams()
	err := runDemux(demuxOptions{input: input, prefix: input, tags: []string{"TTGGCC"}}, s)
	require.NoError(t, err)

	assert.Contains(t, diag.String(), "EBADF AACCGG\n")
	assert.Empty(t, readFile(t, input+".TTGGCC"))
}

func TestDemuxIndexCountsSkippedRecords(t *testing.T) {
	dir := t.TempDir()
	input := writeFastq(t, dir, "reads.fq",
		fastqEntry{"INST:1:FC:1:1:1:1#AACCGG", "ACGT", "hhhh"},
		fastqEntry{"INST:1:FC:1:1:2:2#AACCGG", "ANGT", "hhhh"},
		fastqEntry{"broken#AACCGG", "ACGT", "hhhh"},
		fastqEntry{"INST:1:FC:1:1:3:3#AACCGG/1", "TTTT", "hhhh"},
	)

	s, _, diag := testStreams()
	err := runDemux(demuxOptions{
		input:    input,
		prefix:   filepath.Join(dir, "out"),
		discardN: true,
		tags:     []string{"AACCGG"},
	}, s)
	require.NoError(t, err)

	assert.Equal(t, ">AACCGG_1\nACGT\n>AACCGG_4\nTTTT\n", readFile(t, filepath.Join(dir, "out.AACCGG")))
	assert.Contains(t, diag.String(), "SKIP INST:1:FC:1:1:2:2#AACCGG\n")
	assert.Contains(t, diag.String(), "BAD HEADER broken#AACCGG\n")
}

func TestDemuxSinkFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	input := writeFastq(t, dir, "reads.fq",
		fastqEntry{"INST:1:FC:1:1:100:200#AACCGG", "ACGT", "hhhh"})
	require.NoError(t, os.Mkdir(input+".TTGGCC", 0o755))

	s, out, _ := testStreams()
	err := runDemux(demuxOptions{input: input, prefix: input, tags: []string{"AACCGG", "TTGGCC"}}, s)
	assert.True(t, errors.Is(err, ErrSinkOpen))
	assert.Empty(t, out.String())
	_, statErr := os.Stat(input + ".AACCGG")
	assert.True(t, os.IsNotExist(statErr))
}

func TestDemuxCommandWithConfig(t *testing.T) {
	dir := t.TempDir()
	input := writeFastq(t, dir, "reads.fq",
		fastqEntry{"INST:1:FC:1:1:100:200#AACCGG", "ACGT", "hhhh"})
	config := filepath.Join(dir, "run.json")
	require.NoError(t, os.WriteFile(config, []byte(`{"tags": ["AACCGG", "TTGGCC"], "compress": "gzip"}`), 0o644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"demux", "-f", input, "--config", config})
	require.NoError(t, cmd.Execute())

	for _, tag := range []string{"AACCGG", "TTGGCC"} {
		_, err := os.Stat(input + "." + tag + ".gz")
		assert.NoError(t, err, tag)
	}
}

func TestDemuxCommandArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Missing input", []string{"demux", "AACCGG"}},
		{"Stdin without prefix", []string{"demux", "-f", "-", "AACCGG"}},
		{"Bad compression", []string{"demux", "-f", "reads.fq", "--compress", "lz4", "AACCGG"}},
		{"Negative mismatches", []string{"demux", "-f", "reads.fq", "--mismatches", "-1", "AACCGG"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetArgs(tt.args)
			assert.Error(t, cmd.Execute())
		})
	}
}

func TestEstimateQ(t *testing.T) {
	dir := t.TempDir()
	input := writeFastq(t, dir, "reads.fq",
		fastqEntry{"INST:1:FC:1:1:1:1#AACCGG", "A", "h"},
		fastqEntry{"INST:1:FC:1:1:1:2#AACCGT", "A", "h"},
		fastqEntry{"INST:1:FC:1:1:1:3#TTGGAA", "A", "h"},
		fastqEntry{"INST:1:FC:1:1:1:4#AACCG", "A", "h"},
		fastqEntry{"nonsense", "A", "h"},
	)

	s, out, diag := testStreams()
	err := runEstimateQ(estimateQOptions{input: input, primers: []string{"AACCGG", "TTGGCC"}}, s)
	require.NoError(t, err)

	assert.Equal(t, "PRIMERS = 2\nTAGLEN = 6\nTOTAL = 18\nMISMATCHES = 3\nQ = 0.166667\n", out.String())
	assert.Equal(t, "TAGLEN 5 != 6 INST:1:FC:1:1:1:4#AACCG\nBAD HEADER nonsense\n", diag.String())
}

func TestEstimateQUndefined(t *testing.T) {
	dir := t.TempDir()
	input := writeFastq(t, dir, "reads.fq",
		fastqEntry{"INST:1:FC:1:1:1:1#ACG", "A", "h"})

	s, out, _ := testStreams()
	require.NoError(t, runEstimateQ(estimateQOptions{input: input, primers: []string{"AACCGG"}}, s))
	assert.Equal(t, "PRIMERS = 1\nTAGLEN = 6\nTOTAL = 0\nMISMATCHES = 0\nQ = NA\n", out.String())
}

func TestEstimateQPrimerLengths(t *testing.T) {
	s, out, _ := testStreams()
	err := runEstimateQ(estimateQOptions{input: "unused.fq", primers: []string{"AACCGG", "TTG"}}, s)
	assert.True(t, errors.Is(err, ErrInvalidTags))
	assert.Empty(t, out.String())
}

var qualFixture = []fastqEntry{
	{"INST:1:FC:1:1:100:200#AACCGG", "ACGTN", "hhTBB"},
	{"junk", "ACGT", "hhhh"},
	{"INST:1:FC:1:1:101:201#AACCGG", "ACG", "TTT"},
}

const (
	qualFixtureRows = qualityRowHeader +
		"100\t200\t1\t5\t33.333333\t133.333333\t2\n" +
		"101\t201\t0\t3\t20.000000\t0.000000\t0\n"
	qualFixtureSummary = "0\t30.000000\t200.000000\n" +
		"1\t30.000000\t200.000000\n" +
		"2\t20.000000\t0.000000\n"
)

func defaultQualHistoOptions(inputs ...string) qualHistoOptions {
	return qualHistoOptions{
		inputs:    inputs,
		quality:   QualityOptions{Offset: DEFAULT_QUAL_OFFSET, Cliff: DEFAULT_CLIFF_SYMBOL},
		positions: DEFAULT_MAX_POSITIONS,
	}
}

func TestQualHisto(t *testing.T) {
	input := writeFastq(t, t.TempDir(), "reads.fq", qualFixture...)

	s, out, diag := testStreams()
	require.NoError(t, runQualHisto(defaultQualHistoOptions(input), s))
	assert.Equal(t, qualFixtureRows, out.String())
	assert.Equal(t, "BAD HEADER junk\n"+qualFixtureSummary, diag.String())
}

func TestQualHistoPooledInputs(t *testing.T) {
	dir := t.TempDir()
	first := writeFastq(t, dir, "a.fq", qualFixture[0])
	second := writeFastq(t, dir, "b.fq", qualFixture[2])
	summary := filepath.Join(dir, "positions.tsv")

	opts := defaultQualHistoOptions(first, second)
	opts.summary = summary
	opts.perInput = true

	s, out, diag := testStreams()
	require.NoError(t, runQualHisto(opts, s))
	assert.Equal(t, qualFixtureRows, out.String())
	assert.Empty(t, diag.String())
	assert.Equal(t, qualFixtureSummary, readFile(t, summary))
	assert.Equal(t, "0\t40.000000\tNA\n1\t40.000000\tNA\n2\t20.000000\tNA\n", readFile(t, first+".qualpos"))
	assert.Equal(t, "0\t20.000000\tNA\n1\t20.000000\tNA\n2\t20.000000\tNA\n", readFile(t, second+".qualpos"))
}

func TestSynthetic(t *testing.T) {
	dir := t.TempDir()
	input := writeFastq(t, dir, "reads.fq",
		fastqEntry{"r1 lane=1", "GGGG", "IIII"},
		fastqEntry{"r2", "GGGGGGGG", "IIIIIII5"},
	)
	output := filepath.Join(dir, "syn.fq")

	require.NoError(t, runSynthetic(input, output, false, []byte("ACGTAC")))
	assert.Equal(t, "@r1\nACGT\n+r1\nIIII\n@r2\nACGTAC\n+r2\nIIIIII\n", readFile(t, output))
}

func TestAttachIndex(t *testing.T) {
	dir := t.TempDir()
	reads := writeFastq(t, dir, "reads.fq",
		fastqEntry{"r1", "ACGT", "IIII"},
		fastqEntry{"r2 comment", "GGCC", "5555"},
		fastqEntry{"r3", "TTTT", "????"},
	)
	index := writeFastq(t, dir, "index.fq",
		fastqEntry{"r1", "AACC", "IIII"},
		fastqEntry{"r2", "GGTT", "IIII"},
	)
	output := filepath.Join(dir, "tagged.fq")

	n, err := runAttachIndex(reads, index, output, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "@r1AACC\nACGT\n+\nIIII\n@r2GGTT\nGGCC\n+\n5555\n", readFile(t, output))
}

func requireDevFull(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
}

func TestSyntheticWriteFailure(t *testing.T) {
	requireDevFull(t)
	input := writeFastq(t, t.TempDir(), "reads.fq", fastqEntry{"r1", "GGGG", "IIII"})
	assert.Error(t, runSynthetic(input, "/dev/full", false, []byte("ACGT")))
}

func TestAttachIndexWriteFailure(t *testing.T) {
	requireDevFull(t)
	input := writeFastq(t, t.TempDir(), "reads.fq", fastqEntry{"r1", "GGGG", "IIII"})
	_, err := runAttachIndex(input, input, "/dev/full", false)
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("no space left on device") }

func TestAttachIndexStreamsWriteError(t *testing.T) {
	reads := &sliceSource{records: []*fastx.Record{createTestRecord("r1", "ACGT", "IIII")}}
	index := &sliceSource{records: []*fastx.Record{createTestRecord("r1", "AACC", "IIII")}}

	n, err := attachIndexStreams(reads, index, failingWriter{}, "reads.fq", "index.fq")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no space left on device")
	assert.Zero(t, n)

	assert.Error(t, writeSynthetic(failingWriter{}, "r1", []byte("ACGT"), []byte("IIII")))
}

func TestQualHistoPerInputRejectsStdin(t *testing.T) {
	opts := defaultQualHistoOptions("-")
	opts.perInput = true

	s, out, _ := testStreams()
	assert.Error(t, runQualHisto(opts, s))
	assert.Empty(t, out.String())
}
