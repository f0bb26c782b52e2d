package mel

import (
	"errors"
	"fmt"
	"math"
)

// Scale selects the hertz to mel conversion.
type Scale int

const (
	// HTK is the 2595*log10(1+f/700) scale.
	HTK Scale = iota
	// Slaney is linear below 1 kHz and logarithmic above, as in the Auditory Toolbox.
	Slaney
)

func (s Scale) String() string {
	switch s {
	case HTK:
		return "htk"
	case Slaney:
		return "slaney"
	}
	return fmt.Sprintf("Scale(%d)", int(s))
}

// Norm selects the per-filter normalization.
type Norm int

const (
	// NoNorm leaves every triangle with a peak of 1.
	NoNorm Norm = iota
	// SlaneyNorm divides each triangle by its width in hertz so filters have
	// approximately constant energy.
	SlaneyNorm
)

// ErrInvalidFilterBank is returned when the filter bank parameters cannot
// produce a usable set of filters.
var ErrInvalidFilterBank = errors.New("mel: invalid filter bank")

const (
	htkBreakFrequency = 700.0
	htkFactor         = 2595.0

	slaneyMinLogHertz = 1000.0
	slaneyMinLogMel   = 15.0
)

// slaneyLogStep is the number of mels per natural-log unit above 1 kHz.
var slaneyLogStep = 27.0 / math.Log(6.4)

// HzToMel converts a frequency in hertz to mels.
func HzToMel(hz float64, scale Scale) float64 {
	if scale == Slaney {
		if hz >= slaneyMinLogHertz {
			return slaneyMinLogMel + math.Log(hz/slaneyMinLogHertz)*slaneyLogStep
		}
		return 3.0 * hz / 200.0
	}
	return htkFactor * math.Log10(1.0+hz/htkBreakFrequency)
}

// MelToHz converts mels back to hertz.
func MelToHz(mels float64, scale Scale) float64 {
	if scale == Slaney {
		if mels >= slaneyMinLogMel {
			return slaneyMinLogHertz * math.Exp((mels-slaneyMinLogMel)/slaneyLogStep)
		}
		return 200.0 * mels / 3.0
	}
	return htkBreakFrequency * (math.Pow(10, mels/htkFactor) - 1.0)
}

// FilterBank maps linear frequency bins to mel bins. It is indexed
// [frequency bin][mel bin] and must not be modified once built.
type FilterBank [][]float64

// NumFrequencyBins returns the number of linear frequency bins the bank expects.
func (fb FilterBank) NumFrequencyBins() int {
	return len(fb)
}

// NumMels returns the number of mel filters.
func (fb FilterBank) NumMels() int {
	if len(fb) == 0 {
		return 0
	}
	return len(fb[0])
}

// NewFilterBank builds a triangular mel filter bank for a onesided spectrum
// of numFrequencyBins bins spanning 0 to sampleRate/2.
func NewFilterBank(numFrequencyBins, numMelFilters int, minFrequency, maxFrequency float64,
	sampleRate int, norm Norm, scale Scale) (FilterBank, error) {

	switch {
	case numFrequencyBins < 2:
		return nil, fmt.Errorf("%w: need at least 2 frequency bins, got %d", ErrInvalidFilterBank, numFrequencyBins)
	case numMelFilters < 1:
		return nil, fmt.Errorf("%w: need at least 1 mel filter, got %d", ErrInvalidFilterBank, numMelFilters)
	case sampleRate <= 0:
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidFilterBank, sampleRate)
	case minFrequency < 0 || minFrequency >= maxFrequency:
		return nil, fmt.Errorf("%w: frequency range [%g, %g]", ErrInvalidFilterBank, minFrequency, maxFrequency)
	case maxFrequency > float64(sampleRate)/2:
		return nil, fmt.Errorf("%w: max frequency %g above nyquist %g", ErrInvalidFilterBank, maxFrequency, float64(sampleRate)/2)
	}

	melPoints := linspace(HzToMel(minFrequency, scale), HzToMel(maxFrequency, scale), numMelFilters+2)
	filterFreqs := make([]float64, len(melPoints))
	for i, m := range melPoints {
		filterFreqs[i] = MelToHz(m, scale)
	}
	fftFreqs := linspace(0, float64(sampleRate/2), numFrequencyBins)

	fb := make(FilterBank, numFrequencyBins)
	for k, f := range fftFreqs {
		row := make([]float64, numMelFilters)
		for m := range row {
			down := (f - filterFreqs[m]) / (filterFreqs[m+1] - filterFreqs[m])
			up := (filterFreqs[m+2] - f) / (filterFreqs[m+2] - filterFreqs[m+1])
			row[m] = math.Max(0, math.Min(down, up))
		}
		fb[k] = row
	}

	if norm == SlaneyNorm {
		for m := 0; m < numMelFilters; m++ {
			enorm := 2.0 / (filterFreqs[m+2] - filterFreqs[m])
			for k := range fb {
				fb[k][m] *= enorm
			}
		}
	}

	for m := 0; m < numMelFilters; m++ {
		var peak float64
		for k := range fb {
			peak = math.Max(peak, fb[k][m])
		}
		if peak == 0 {
			return nil, fmt.Errorf("%w: mel filter %d has all zero values, too many mel filters (%d) for %d frequency bins",
				ErrInvalidFilterBank, m, numMelFilters, numFrequencyBins)
		}
	}

	return fb, nil
}

// linspace mirrors numpy.linspace with the endpoint included.
func linspace(start, stop float64, num int) []float64 {
	out := make([]float64, num)
	if num == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(num-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[num-1] = stop
	return out
}
