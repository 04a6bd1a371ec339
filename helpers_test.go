package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/stretchr/testify/require"
)

// Helper function to create test FASTX records
func createTestRecord(name string, sequence string, quality string) *fastx.Record {
	id := name
	if i := strings.IndexByte(name, ' '); i >= 0 {
		id = name[:i]
	}
	return &fastx.Record{
		ID:   []byte(id),
		Name: []byte(name),
		Seq: &seq.Seq{
			Seq:  []byte(sequence),
			Qual: []byte(quality),
		},
	}
}

// sliceSource serves records from memory
type sliceSource struct {
	records []*fastx.Record
	err     error // returned once the records are exhausted, io.EOF if nil
	closed  bool
}

func (s *sliceSource) Next() (*fastx.Record, error) {
	if len(s.records) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	r := s.records[0]
	s.records = s.records[1:]
	return r, nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

// fastqEntry is one record of a FASTQ fixture
type fastqEntry struct {
	name, seq, qual string
}

func formatFastq(entries ...fastqEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString("@" + e.name + "\n" + e.seq + "\n+\n" + e.qual + "\n")
	}
	return buf.Bytes()
}

// writeFastq writes entries to dir/name and returns the path
func writeFastq(t *testing.T, dir, name string, entries ...fastqEntry) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, formatFastq(entries...), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func testStreams() (streams, *bytes.Buffer, *bytes.Buffer) {
	var out, diag bytes.Buffer
	return streams{out: &out, diag: &diag}, &out, &diag
}
