// Package loadstats computes per-group summary statistics of sample loading
// times over a cleaned runlog Dataset.
package loadstats

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/phastdx/loadreport/runlog"
)

// ErrEmptyGroup is returned when a requested group value has no matching
// rows in the Dataset.
var ErrEmptyGroup = errors.New("empty group")

// GroupBy selects the grouping dimension for aggregation.
type GroupBy int

const (
	GroupByChipLot GroupBy = iota
	GroupByChipBatch
	GroupByInstrument
)

func (g GroupBy) String() string {
	switch g {
	case GroupByChipLot:
		return "chipLot"
	case GroupByChipBatch:
		return "chipBatch"
	case GroupByInstrument:
		return "Instrument"
	}

	return "unknown"
}

// Value returns the record's value for this grouping dimension as its
// canonical string form. Chip batches are integers, so their canonical form
// is the plain decimal rendering; string equality on canonical forms is
// therefore integer equality for batches and plain string equality for lots
// and instruments.
func (g GroupBy) Value(r runlog.Record) string {
	switch g {
	case GroupByChipLot:
		return r.ChipLot
	case GroupByChipBatch:
		return strconv.Itoa(r.ChipBatch)
	case GroupByInstrument:
		return r.Instrument
	}

	return ""
}

// GroupStats summarizes the sample loading times of one group. Std is the
// population standard deviation (sum of squared deviations divided by N).
type GroupStats struct {
	N    int
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Group computes statistics for the rows whose field value equals value.
// A value with no matching rows yields ErrEmptyGroup.
func Group(ds runlog.Dataset, field GroupBy, value string) (GroupStats, error) {
	times := make([]float64, 0)
	for _, r := range ds {
		if field.Value(r) == value {
			times = append(times, r.SampleLoadingTime)
		}
	}

	if len(times) == 0 {
		return GroupStats{}, fmt.Errorf("%s=%q: %w", field, value, ErrEmptyGroup)
	}

	return summarize(times)
}

// Compare computes statistics for two group values of the same field,
// restricted to rows matching either value. Either side being empty is an
// ErrEmptyGroup error rather than a NaN result.
func Compare(ds runlog.Dataset, field GroupBy, a, b string) (GroupStats, GroupStats, error) {
	statsA, err := Group(ds, field, a)
	if err != nil {
		return GroupStats{}, GroupStats{}, err
	}

	statsB, err := Group(ds, field, b)
	if err != nil {
		return GroupStats{}, GroupStats{}, err
	}

	return statsA, statsB, nil
}

// GroupValueStats pairs a group value (canonical form) with its statistics.
type GroupValueStats struct {
	Value string
	GroupStats
}

// Table computes statistics for every distinct value of the field, sorted by
// value (numerically for chip batches, lexically otherwise). The report
// embeds these tables so that the selector script reads precomputed numbers
// instead of re-aggregating raw rows.
func Table(ds runlog.Dataset, field GroupBy) []GroupValueStats {
	groups := make(map[string][]float64)
	order := make([]string, 0)
	for _, r := range ds {
		v := field.Value(r)
		if _, exists := groups[v]; !exists {
			order = append(order, v)
		}
		groups[v] = append(groups[v], r.SampleLoadingTime)
	}

	if field == GroupByChipBatch {
		sort.Slice(order, func(i, j int) bool {
			a, _ := strconv.Atoi(order[i])
			b, _ := strconv.Atoi(order[j])
			return a < b
		})
	} else {
		sort.Strings(order)
	}

	out := make([]GroupValueStats, 0, len(order))
	for _, v := range order {
		gs, err := summarize(groups[v])
		if err != nil {
			// Unreachable: every key in groups has at least one value.
			continue
		}
		out = append(out, GroupValueStats{Value: v, GroupStats: gs})
	}

	return out
}

func summarize(times []float64) (GroupStats, error) {
	min, err := stats.Min(times)
	if err != nil {
		return GroupStats{}, err
	}

	max, err := stats.Max(times)
	if err != nil {
		return GroupStats{}, err
	}

	return GroupStats{
		N:    len(times),
		Mean: stat.Mean(times, nil),
		Std:  stat.PopStdDev(times, nil),
		Min:  min,
		Max:  max,
	}, nil
}
