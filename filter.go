package main

import "bytes"

// AmbiguityBase is the IUPAC symbol for an undetermined base
const AmbiguityBase = 'N'

// ContainsAmbiguity reports whether seq holds at least one ambiguity base
func ContainsAmbiguity(seq []byte) bool {
	return bytes.IndexByte(seq, AmbiguityBase) >= 0
}

// countAmbiguity counts the ambiguity bases in seq
func countAmbiguity(seq []byte) int {
	return bytes.Count(seq, []byte{AmbiguityBase})
}
