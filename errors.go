package main

import "github.com/pkg/errors"

// Per-record conditions. The driver reports these and keeps reading
var (
	ErrMalformedHeader    = errors.New("malformed header")
	ErrDegenerateSequence = errors.New("degenerate sequence")
	ErrUnknownTag         = errors.New("unknown tag")
	ErrTagLength          = errors.New("tag length mismatch")
)

// Set-up conditions. These abort the run before any record is read
var (
	ErrInputOpen   = errors.New("cannot open input")
	ErrSinkOpen    = errors.New("cannot create output")
	ErrInvalidTags = errors.New("invalid tag list")
)

// ErrUndefinedAggregate is returned when an aggregate has no records to divide by
var ErrUndefinedAggregate = errors.New("undefined aggregate")
