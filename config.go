package main

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/shenwei356/natsort"
	"github.com/shenwei356/util/cliutil"
)

// DemuxConfig is a demultiplexing run read from a JSON file. Command-line
// flags take precedence over the values given here
type DemuxConfig struct {
	Tags       []string `json:"tags"`
	Mismatches int      `json:"mismatches"`
	DiscardN   bool     `json:"discard_n"`
	Compress   string   `json:"compress"`
	Level      int      `json:"level"`
	Prefix     string   `json:"prefix"`
}

func readDemuxConfig(filename string) (*DemuxConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	return demuxConfigFromJSON(data)
}

func demuxConfigFromJSON(data []byte) (*DemuxConfig, error) {
	c := DemuxConfig{}
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if c.Mismatches < 0 {
		return nil, errors.New("parsing config: mismatches must not be negative")
	}
	return &c, nil
}

// readTagsFile loads a two-column "tag<TAB>sample" file. Tags are returned
// in natural order together with the tag -> sample map
func readTagsFile(filename string) ([]string, map[string]string, error) {
	samples, err := cliutil.ReadKVs(filename, false)
	if err != nil {
		return nil, nil, errors.Wrap(err, filename)
	}
	tags := make([]string, 0, len(samples))
	for tag := range samples {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		return natsort.Compare(tags[i], tags[j], false)
	})
	return tags, samples, nil
}

// mergeTags appends the tags of extra that are not in tags yet
func mergeTags(tags []string, extra ...string) []string {
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		seen[t] = struct{}{}
	}
	for _, t := range extra {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}
