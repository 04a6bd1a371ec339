package main

import (
	"github.com/pkg/errors"
)

// Hamming counts the positions among the first length symbols where a and b
// differ. A position missing from either string counts as a mismatch
func Hamming(a, b string, length int) int {
	d := 0
	for i := 0; i < length; i++ {
		if i >= len(a) || i >= len(b) || a[i] != b[i] {
			d++
		}
	}
	return d
}

// MinMismatches returns the smallest Hamming distance between tag and any
// candidate. With no candidates the result is length
func MinMismatches(tag string, candidates []string, length int) int {
	best := length
	for _, c := range candidates {
		if d := Hamming(tag, c, length); d < best {
			best = d
			if best == 0 {
				break
			}
		}
	}
	return best
}

// MismatchEstimator accumulates the minimum tag mismatch of every record
// against a fixed set of equal-length candidate tags
type MismatchEstimator struct {
	TagLength  int
	Candidates []string

	Count           int
	TotalMismatches int
}

// NewMismatchEstimator checks that every primer has the same length, at most
// MaxTagLength, and returns an estimator over them
func NewMismatchEstimator(primers []string) (*MismatchEstimator, error) {
	if len(primers) == 0 {
		return nil, errors.Wrap(ErrInvalidTags, "no primers given")
	}
	length := len(primers[0])
	if length == 0 || length > MaxTagLength {
		return nil, errors.Wrapf(ErrInvalidTags, "primer length must be 1-%d", MaxTagLength)
	}
	for _, p := range primers[1:] {
		if len(p) != length {
			return nil, errors.Wrapf(ErrInvalidTags, "primer %s is not of the same length", p)
		}
	}
	return &MismatchEstimator{
		TagLength:  length,
		Candidates: append([]string(nil), primers...),
	}, nil
}

// Observe adds one record's tag. A tag whose length differs from TagLength
// is not counted and an error wrapping ErrTagLength is returned
func (e *MismatchEstimator) Observe(tag string) (int, error) {
	if len(tag) != e.TagLength {
		return 0, errors.Wrapf(ErrTagLength, "tag %s has length %d, want %d", tag, len(tag), e.TagLength)
	}
	m := MinMismatches(tag, e.Candidates, e.TagLength)
	e.Count++
	e.TotalMismatches += m
	return m, nil
}

// TotalBases is the number of tag symbols compared
func (e *MismatchEstimator) TotalBases() int {
	return e.Count * e.TagLength
}

// Q estimates the per-base tag error rate. It returns ErrUndefinedAggregate
// when no symbols were compared
func (e *MismatchEstimator) Q() (float64, error) {
	if e.TotalBases() == 0 {
		return 0, errors.Wrap(ErrUndefinedAggregate, "no tags observed")
	}
	return float64(e.TotalMismatches) / float64(e.TotalBases()), nil
}
