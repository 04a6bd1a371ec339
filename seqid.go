// Illumina read identifier parsing

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MaxTagLength is the largest number of tag symbols kept from a read name.
// Longer fragments are truncated to this length.
const MaxTagLength = 7

// SequenceIdentifier holds the fields encoded in an Illumina read name:
//
//	instrument:run:flowcell:lane:tile:x:y#tag
//
// Values are produced by ParseIdentifier and never modified afterwards
type SequenceIdentifier struct {
	Instrument string
	Run        int
	Flowcell   string
	Lane       int
	Tile       int
	X          int
	Y          int
	Tag        string
}

// String rebuilds the read name in the seven-field layout
func (id SequenceIdentifier) String() string {
	return fmt.Sprintf("%s:%d:%s:%d:%d:%d:%d#%s",
		id.Instrument, id.Run, id.Flowcell, id.Lane, id.Tile, id.X, id.Y, id.Tag)
}

// ParseIdentifier parses a read name into a SequenceIdentifier.
//
// Two layouts are accepted: the full "instrument:run:flowcell:lane:tile:x:y#tag"
// and the older "instrument:lane:tile:x:y#tag" (Run is zero and Flowcell empty).
// The tag is the text after the final '#', up to a "/1" style read-number
// suffix, truncated to MaxTagLength symbols. Parsing fails with ErrMalformedHeader
// when there is no '#', when the tag fragment is shorter than tagLength, or when
// the coordinate fields do not match either layout
func ParseIdentifier(name string, tagLength int) (SequenceIdentifier, error) {
	var id SequenceIdentifier

	head, tag, ok := splitTag(name)
	if !ok {
		return id, malformed(name, "no tag delimiter")
	}
	if len(tag) < tagLength {
		return id, malformed(name, fmt.Sprintf("tag %q shorter than %d", tag, tagLength))
	}

	fields := strings.Split(head, ":")
	var ints []*int
	switch len(fields) {
	case 7:
		id.Instrument = fields[0]
		id.Flowcell = fields[2]
		ints = []*int{&id.Run, nil, &id.Lane, &id.Tile, &id.X, &id.Y}
	case 5:
		id.Instrument = fields[0]
		ints = []*int{&id.Lane, &id.Tile, &id.X, &id.Y}
	default:
		return SequenceIdentifier{}, malformed(name, fmt.Sprintf("%d coordinate fields", len(fields)))
	}

	for i, dst := range ints {
		if dst == nil {
			continue
		}
		v, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return SequenceIdentifier{}, malformed(name, fmt.Sprintf("field %d is not an integer", i+2))
		}
		*dst = v
	}

	id.Tag = tag
	return id, nil
}

func splitTag(name string) (head, tag string, ok bool) {
	i := strings.LastIndexByte(name, '#')
	if i < 0 {
		return "", "", false
	}
	tag = name[i+1:]
	if j := strings.IndexByte(tag, '/'); j >= 0 {
		tag = tag[:j]
	}
	if len(tag) > MaxTagLength {
		tag = tag[:MaxTagLength]
	}
	return name[:i], strings.Clone(tag), true
}

func malformed(name, reason string) error {
	return errors.Wrapf(ErrMalformedHeader, "%s (%s)", name, reason)
}
