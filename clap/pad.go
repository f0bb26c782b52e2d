package clap

import "fmt"

// PadWaveform forces a waveform shorter than maxLength to exactly maxLength
// samples using the given padding pattern. Waveforms at or above maxLength
// are returned unchanged; the input slice is never modified.
func PadWaveform(waveform []float64, maxLength int, padding Padding, value float64) ([]float64, error) {
	if len(waveform) == 0 {
		return nil, fmt.Errorf("%w: empty waveform", ErrInvalidInput)
	}
	if len(waveform) >= maxLength {
		return waveform, nil
	}

	out := make([]float64, 0, maxLength)
	switch padding {
	case PaddingRepeatPad:
		nRepeat := maxLength / len(waveform)
		for i := 0; i < nRepeat; i++ {
			out = append(out, waveform...)
		}
	case PaddingRepeat:
		nRepeat := maxLength/len(waveform) + 1
		for i := 0; i < nRepeat && len(out) < maxLength; i++ {
			out = append(out, waveform...)
		}
		return out[:maxLength], nil
	case PaddingPad:
		out = append(out, waveform...)
	default:
		return nil, fmt.Errorf("%w: unknown padding %q", ErrConfig, padding)
	}

	for len(out) < maxLength {
		out = append(out, value)
	}
	return out, nil
}
