// Tag registry: routes demultiplexed records to one output per declared tag

package main

import (
	"os"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/shenwei356/natsort"
	"golang.org/x/sync/errgroup"
)

// RegistryOptions configures OpenRegistry
type RegistryOptions struct {
	Sink SinkOptions

	// Mismatches registers every tag within this Hamming distance of a
	// declared tag as an alias of it. Aliases claimed by more than one
	// declared tag are dropped.
	Mismatches int
}

// TagRegistry maps tags to open outputs. It is built once by OpenRegistry
// and only read afterwards; writes go to the sinks
type TagRegistry struct {
	tagLength int
	declared  []string
	sinks     map[string]*Sink  // declared tag -> output
	routes    map[string]string // observed tag -> declared tag
	conflicts []string

	closeOnce sync.Once
	closeErr  error
}

// TagCount is the number of records routed to one declared tag
type TagCount struct {
	Tag     string
	Path    string
	Records int
}

// validateTags checks that tags are non-empty, unique and of a single length
// no longer than MaxTagLength, and returns that length
func validateTags(tags []string) (int, error) {
	if len(tags) == 0 {
		return 0, errors.Wrap(ErrInvalidTags, "no tags given")
	}
	length := len(tags[0])
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag == "" {
			return 0, errors.Wrap(ErrInvalidTags, "empty tag")
		}
		if len(tag) > MaxTagLength {
			return 0, errors.Wrapf(ErrInvalidTags, "tag %s is longer than %d", tag, MaxTagLength)
		}
		if len(tag) != length {
			return 0, errors.Wrapf(ErrInvalidTags, "tag %s is not of the same length", tag)
		}
		if _, dup := seen[tag]; dup {
			return 0, errors.Wrapf(ErrInvalidTags, "tag %s given twice", tag)
		}
		seen[tag] = struct{}{}
	}
	return length, nil
}

// OpenRegistry creates one output per tag, named <input>.<tag>. If any output
// cannot be created, those already created are closed and removed and an
// error wrapping ErrSinkOpen is returned
func OpenRegistry(input string, tags []string, opts RegistryOptions, diag *Diagnostics) (*TagRegistry, error) {
	length, err := validateTags(tags)
	if err != nil {
		return nil, err
	}
	if err := opts.Sink.validate(); err != nil {
		return nil, err
	}

	r := &TagRegistry{
		tagLength: length,
		declared:  append([]string(nil), tags...),
		sinks:     make(map[string]*Sink, len(tags)),
		routes:    make(map[string]string, len(tags)),
	}

	for _, tag := range tags {
		path := sinkPath(input, tag, opts.Sink.Compression)
		sink, err := createSink(path, opts.Sink)
		if err != nil {
			r.abort()
			return nil, err
		}
		r.sinks[tag] = sink
		r.routes[tag] = tag
		if diag != nil {
			diag.Opened(path)
		}
	}

	if opts.Mismatches > 0 {
		r.addAliases(opts.Mismatches)
	}
	return r, nil
}

// abort discards the outputs of a registry that failed to open
func (r *TagRegistry) abort() {
	for _, sink := range r.sinks {
		sink.Close()
		os.Remove(sink.path)
	}
	r.sinks = nil
}

func (r *TagRegistry) addAliases(distance int) {
	claims := make(map[string]string)
	conflicted := make(map[string]struct{})
	for _, tag := range r.declared {
		for _, alias := range mismatches(tag, distance) {
			if alias == tag {
				continue
			}
			if _, isDeclared := r.sinks[alias]; isDeclared {
				conflicted[alias] = struct{}{}
				continue
			}
			if owner, claimed := claims[alias]; claimed && owner != tag {
				conflicted[alias] = struct{}{}
				continue
			}
			claims[alias] = tag
		}
	}
	for alias, tag := range claims {
		if _, bad := conflicted[alias]; bad {
			continue
		}
		r.routes[alias] = tag
	}
	for alias := range conflicted {
		r.conflicts = append(r.conflicts, alias)
	}
	sort.Slice(r.conflicts, func(i, j int) bool {
		return natsort.Compare(r.conflicts[i], r.conflicts[j], false)
	})
}

// TagLength is the length shared by every declared tag
func (r *TagRegistry) TagLength() int { return r.tagLength }

// Conflicts lists the mismatch aliases that were dropped because more than
// one declared tag claimed them
func (r *TagRegistry) Conflicts() []string { return r.conflicts }

// Route writes seq to the output registered for tag. It returns an error
// wrapping ErrUnknownTag when no output matches
func (r *TagRegistry) Route(tag string, index int, seq []byte) error {
	declared, ok := r.routes[tag]
	if !ok {
		return errors.Wrap(ErrUnknownTag, tag)
	}
	return r.sinks[declared].WriteRecord(declared, index, seq)
}

// Counts reports routed records per declared tag in natural tag order
func (r *TagRegistry) Counts() []TagCount {
	counts := make([]TagCount, 0, len(r.declared))
	for _, tag := range r.declared {
		sink := r.sinks[tag]
		counts = append(counts, TagCount{Tag: tag, Path: sink.path, Records: sink.records})
	}
	sort.Slice(counts, func(i, j int) bool {
		return natsort.Compare(counts[i].Tag, counts[j].Tag, false)
	})
	return counts
}

// Close closes every output once. Outputs are flushed concurrently and the
// first error is returned
func (r *TagRegistry) Close() error {
	r.closeOnce.Do(func() {
		var g errgroup.Group
		for _, sink := range r.sinks {
			g.Go(sink.Close)
		}
		r.closeErr = g.Wait()
	})
	return r.closeErr
}

// mismatches returns input and every string over ACGTN within the given
// Hamming distance of it. Positions holding other symbols are left alone
func mismatches(input string, distance int) (out []string) {
	mutations := []byte{'A', 'C', 'G', 'T', 'N'}
	toCheck := []string{input}
	seen := make(map[string]struct{})

	for ; distance >= 0; distance-- {
		nextCheck := make([]string, 0, len(toCheck)*len(input)*(len(mutations)-1))

		for _, cur := range toCheck {
			seen[cur] = struct{}{}
			if distance == 0 {
				continue
			}
			for i := 0; i < len(cur); i++ {
				switch cur[i] {
				case 'A', 'C', 'G', 'T', 'N':
					for _, replacement := range mutations {
						if replacement == cur[i] {
							continue
						}
						next := cur[:i] + string(replacement) + cur[i+1:]
						if _, already := seen[next]; !already {
							nextCheck = append(nextCheck, next)
						}
					}
				}
			}
		}
		toCheck = nextCheck
	}

	for k := range seen {
		out = append(out, k)
	}
	return out
}
