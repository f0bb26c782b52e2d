package dataset

import (
	"fmt"
	"math"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"
)

// padSeconds of silence are fed before and after the clip so the filter
// delay line fills and drains outside the returned window.
const padSeconds = 0.1

// offsets caches the output index of the first input sample per rate pair.
var offsets sync.Map

type ratePair struct{ from, to int }

// Resample converts mono samples from one rate to another. The result has
// ceil(len(samples)*to/from) samples and sample i of the input lands at
// output index round(i*to/from).
func Resample(samples []float64, from, to int) ([]float64, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("dataset: invalid resample rates %d -> %d", from, to)
	}
	if from == to || len(samples) == 0 {
		return samples, nil
	}

	lead := int(math.Ceil(padSeconds * float64(from)))
	start, err := resampleOffset(from, to, lead)
	if err != nil {
		return nil, err
	}

	input := make([]float64, lead+len(samples)+lead)
	copy(input[lead:], samples)
	output, err := process(input, from, to)
	if err != nil {
		return nil, err
	}

	want := int(math.Ceil(float64(len(samples)) * float64(to) / float64(from)))
	out := make([]float64, want)
	if start < len(output) {
		copy(out, output[start:])
	}
	return out, nil
}

// resampleOffset finds where an input sample preceded by lead zeros lands in
// the resampler output by locating the peak of a resampled impulse.
func resampleOffset(from, to, lead int) (int, error) {
	key := ratePair{from, to}
	if v, ok := offsets.Load(key); ok {
		return v.(int), nil
	}

	impulse := make([]float64, 2*lead+1)
	impulse[lead] = 1
	output, err := process(impulse, from, to)
	if err != nil {
		return 0, err
	}

	start := int(math.Round(float64(lead) * float64(to) / float64(from)))
	if len(output) > 0 {
		peak := 0
		for i, v := range output {
			if v > output[peak] {
				peak = i
			}
		}
		start = peak
	}
	offsets.Store(key, start)
	return start, nil
}

func process(input []float64, from, to int) ([]float64, error) {
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("dataset: create resampler: %w", err)
	}
	output, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("dataset: resample %d -> %d: %w", from, to, err)
	}
	return output, nil
}
