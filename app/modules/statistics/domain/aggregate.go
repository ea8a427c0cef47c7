package statisticsdomain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Averaging windows.
const (
	WindowMeanOf5  = 5
	WindowMeanOf12 = 12
)

// FaultPolicy decides how a single fault inside an averaging window is treated.
type FaultPolicy string

const (
	// FaultPolicyLenient treats one fault as the dropped worst value. Two or more faults give DNF.
	FaultPolicyLenient FaultPolicy = "lenient"
	// FaultPolicyStrict reports DNF as soon as the window holds any fault.
	FaultPolicyStrict FaultPolicy = "strict"
)

// ParseFaultPolicy maps a config value to a policy. Empty means lenient.
func ParseFaultPolicy(s string) (FaultPolicy, error) {
	switch FaultPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FaultPolicyLenient:
		return FaultPolicyLenient, nil
	case FaultPolicyStrict:
		return FaultPolicyStrict, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFaultPolicy, s)
	}
}

// Summary holds the rolling statistics of one session.
type Summary struct {
	BestSingle Result
	MeanOf5    Result
	MeanOf12   Result
}

// Summarize computes best single, mean of 5 and mean of 12, rounded for persistence.
func Summarize(attempts []Attempt, policy FaultPolicy) Summary {
	return Summary{
		BestSingle: ComputeBestSingle(attempts).Round(),
		MeanOf5:    ComputeAverage(attempts, WindowMeanOf5, policy).Round(),
		MeanOf12:   ComputeAverage(attempts, WindowMeanOf12, policy).Round(),
	}
}

// ComputeBestSingle returns the fastest time, or absent if there is none.
func ComputeBestSingle(attempts []Attempt) Result {
	best := Absent()
	for _, a := range attempts {
		if !a.Result.IsTime() {
			continue
		}
		if best.IsAbsent() || Compare(a.Result, best) < 0 {
			best = a.Result
		}
	}
	return best
}

// ComputeAverage returns the trimmed mean of the most recent window attempts.
// Attempts are expected to be validated. The result is not rounded.
func ComputeAverage(attempts []Attempt, window int, policy FaultPolicy) Result {
	if window < 3 || len(attempts) < window {
		return Absent()
	}

	recent := mostRecent(attempts, window)

	times := make([]float64, 0, window)
	faults := 0
	for _, a := range recent {
		if v, ok := a.Result.Seconds(); ok {
			times = append(times, v)
			continue
		}
		faults++
	}

	switch {
	case faults > 1:
		return Fault()
	case faults == 1 && policy == FaultPolicyStrict:
		return Fault()
	}

	slices.Sort(times)
	// Drop the best. With no fault the worst time is dropped too; with one
	// fault the fault itself is the dropped worst.
	kept := times[1:]
	if faults == 0 {
		kept = kept[:len(kept)-1]
	}

	var sum float64
	for _, v := range kept {
		sum += v
	}
	return Time(sum / float64(len(kept)))
}

// mostRecent returns the last n attempts by timestamp, ties broken by sequence.
func mostRecent(attempts []Attempt, n int) []Attempt {
	sorted := slices.Clone(attempts)
	slices.SortStableFunc(sorted, func(a, b Attempt) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Sequence, b.Sequence)
	})
	return sorted[len(sorted)-n:]
}
