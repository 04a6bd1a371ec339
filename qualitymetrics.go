package main

import (
	"fmt"
	"io"
)

const (
	DEFAULT_QUAL_OFFSET   = 64  // '@', Illumina 1.3-1.7 quality baseline
	DEFAULT_CLIFF_SYMBOL  = 'B' // Illumina 1.5+ read segment quality control indicator
	DEFAULT_MAX_POSITIONS = 512
)

// RunningStatistic is a Welford accumulator of mean and variance
type RunningStatistic struct {
	Count int
	Mean  float64
	M2    float64 // sum of squared deviations from the mean
}

// Add includes one observation
func (s *RunningStatistic) Add(x float64) {
	s.Count++
	delta := x - s.Mean
	s.Mean += delta / float64(s.Count)
	s.M2 += delta * (x - s.Mean)
}

// Merge folds another accumulator into s (Chan et al. pairwise update)
func (s *RunningStatistic) Merge(o RunningStatistic) {
	if o.Count == 0 {
		return
	}
	if s.Count == 0 {
		*s = o
		return
	}
	n := s.Count + o.Count
	delta := o.Mean - s.Mean
	s.Mean += delta * float64(o.Count) / float64(n)
	s.M2 += o.M2 + delta*delta*float64(s.Count)*float64(o.Count)/float64(n)
	s.Count = n
}

// Variance returns the sample variance. ok is false when fewer than two
// observations were added and the variance is undefined
func (s RunningStatistic) Variance() (v float64, ok bool) {
	if s.Count <= 1 {
		return 0, false
	}
	return s.M2 / float64(s.Count-1), true
}

// PositionAccumulator tracks one RunningStatistic per read position, keyed
// by the 0-based index into the quality string. Positions at or beyond Len
// are not tracked
type PositionAccumulator struct {
	stats []RunningStatistic
}

// NewPositionAccumulator tracks positions [0, n)
func NewPositionAccumulator(n int) *PositionAccumulator {
	return &PositionAccumulator{stats: make([]RunningStatistic, n)}
}

// Len is the number of tracked positions
func (a *PositionAccumulator) Len() int { return len(a.stats) }

// At returns the statistic of position i
func (a *PositionAccumulator) At(i int) RunningStatistic { return a.stats[i] }

// Extent is one past the last position that received an observation
func (a *PositionAccumulator) Extent() int {
	n := len(a.stats)
	for n > 0 && a.stats[n-1].Count == 0 {
		n--
	}
	return n
}

// Merge folds o into a position by position. Positions beyond a.Len are dropped
func (a *PositionAccumulator) Merge(o *PositionAccumulator) {
	for i := 0; i < len(a.stats) && i < len(o.stats); i++ {
		a.stats[i].Merge(o.stats[i])
	}
}

// WriteSummary writes "position\tmean\tvariance" for every position up to
// Extent. Undefined values are written as NA
func (a *PositionAccumulator) WriteSummary(w io.Writer) error {
	for i := 0; i < a.Extent(); i++ {
		s := a.stats[i]
		mean, variance := "NA", "NA"
		if s.Count > 0 {
			mean = fmt.Sprintf("%f", s.Mean)
		}
		if v, ok := s.Variance(); ok {
			variance = fmt.Sprintf("%f", v)
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", i, mean, variance); err != nil {
			return err
		}
	}
	return nil
}

// QualityOptions sets the quality encoding seen by AnalyzeRecord
type QualityOptions struct {
	Offset int  // subtracted from each quality symbol
	Cliff  byte // trailing symbol counted as the quality cliff
}

// RecordQuality summarises one read
type RecordQuality struct {
	X, Y      int
	Ambiguous int // number of N bases
	Length    int // sequence length
	Quality   RunningStatistic
	Cliff     int // trailing positions equal to the cliff symbol
}

// AnalyzeRecord computes the summary of one read and adds its qualities to acc.
//
// Starting at the last tracked position (min(len(qual), acc.Len()) - 1) the
// trailing run of cliff symbols is counted. The positions before the cliff
// feed both acc, keyed by absolute index, and the per-read statistic
func AnalyzeRecord(id SequenceIdentifier, seq, qual []byte, acc *PositionAccumulator, opts QualityOptions) RecordQuality {
	rq := RecordQuality{
		X:         id.X,
		Y:         id.Y,
		Ambiguous: countAmbiguity(seq),
		Length:    len(seq),
	}

	end := len(qual)
	if end > acc.Len() {
		end = acc.Len()
	}
	i := end - 1
	for ; i >= 0 && qual[i] == opts.Cliff; i-- {
		rq.Cliff++
	}

	for p := 0; p <= i; p++ {
		q := float64(int(qual[p]) - opts.Offset)
		acc.stats[p].Add(q)
		rq.Quality.Add(q)
	}
	return rq
}

// WriteRow writes "x\ty\tn\tlen\tqbar\tqsd\tbcliff". qsd holds the
// per-read variance; undefined values are written as NA
func (rq RecordQuality) WriteRow(w io.Writer) error {
	qbar, qsd := "NA", "NA"
	if rq.Quality.Count > 0 {
		qbar = fmt.Sprintf("%f", rq.Quality.Mean)
	}
	if v, ok := rq.Quality.Variance(); ok {
		qsd = fmt.Sprintf("%f", v)
	}
	_, err := fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\t%s\t%d\n",
		rq.X, rq.Y, rq.Ambiguous, rq.Length, qbar, qsd, rq.Cliff)
	return err
}

const qualityRowHeader = "#x\ty\tn\tlen\tqbar\tqsd\tbcliff\n"
