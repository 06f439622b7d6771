package loadstats

import (
	"math"

	"github.com/carbocation/runningvariance"

	"github.com/phastdx/loadreport/runlog"
)

// Summary describes the whole Dataset's loading times for the report header.
// Std here is the running estimator's sample standard deviation; it is a
// display figure only, group comparisons use population values.
type Summary struct {
	N    int
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Summarize streams over the Dataset once, accumulating mean and variance in
// a running estimator alongside min/max.
func Summarize(ds runlog.Dataset) Summary {
	if len(ds) == 0 {
		return Summary{}
	}

	rs := runningvariance.NewRunningStat()
	min, max := math.MaxFloat64, -math.MaxFloat64

	for _, r := range ds {
		rs.Push(r.SampleLoadingTime)
		if r.SampleLoadingTime < min {
			min = r.SampleLoadingTime
		}
		if r.SampleLoadingTime > max {
			max = r.SampleLoadingTime
		}
	}

	return Summary{
		N:    len(ds),
		Mean: rs.Mean(),
		Std:  rs.StandardDeviation(),
		Min:  min,
		Max:  max,
	}
}
