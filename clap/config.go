package clap

import (
	"errors"
	"fmt"
)

// ErrConfig reports an inconsistent extractor configuration or a call that
// does not match it, such as a different sampling rate.
var ErrConfig = errors.New("clap: invalid configuration")

// ErrInvalidInput reports a batch or waveform that cannot be featurized.
var ErrInvalidInput = errors.New("clap: invalid input")

// Truncation is the pattern applied to inputs longer than the maximum length.
type Truncation string

const (
	// TruncationFusion stacks random crops with a downsampled full spectrogram.
	TruncationFusion Truncation = "fusion"
	// TruncationRandTrunc keeps a single random crop.
	TruncationRandTrunc Truncation = "rand_trunc"
)

// Padding is the pattern applied to inputs shorter than the maximum length.
type Padding string

const (
	// PaddingRepeatPad repeats the waveform whole, then pads the remainder.
	PaddingRepeatPad Padding = "repeatpad"
	// PaddingRepeat repeats the waveform and cuts it at the maximum length.
	PaddingRepeat Padding = "repeat"
	// PaddingPad pads with PaddingValue only.
	PaddingPad Padding = "pad"
)

const (
	DefaultFeatureSize   = 64
	DefaultSamplingRate  = 48_000
	DefaultHopLength     = 480
	DefaultMaxLengthS    = 10
	DefaultFFTWindowSize = 1024
	DefaultFrequencyMin  = 0
	DefaultFrequencyMax  = 14_000
)

// Config holds the fixed parameters of a FeatureExtractor.
type Config struct {
	// FeatureSize is the number of mel filters.
	FeatureSize int
	// SamplingRate is the only rate Extract accepts.
	SamplingRate int
	// HopLength is the STFT frame shift in samples.
	HopLength int
	// MaxLengthS is the model input duration in seconds.
	MaxLengthS int
	// FFTWindowSize is the STFT window and FFT length in samples.
	FFTWindowSize int
	// PaddingValue fills the tail of short waveforms.
	PaddingValue float64
	// ReturnAttentionMask is carried for config compatibility; no mask is produced.
	ReturnAttentionMask bool
	FrequencyMin        float64
	FrequencyMax        float64
	// TopDB clamps the log-mel output to max-TopDB when set.
	TopDB      *float64
	Truncation Truncation
	Padding    Padding
	// RequireFullLength rejects waveforms shorter than the maximum length
	// instead of padding them.
	RequireFullLength bool
}

// DefaultConfig returns the configuration of the laion/clap-htsat checkpoints.
func DefaultConfig() Config {
	return Config{
		FeatureSize:   DefaultFeatureSize,
		SamplingRate:  DefaultSamplingRate,
		HopLength:     DefaultHopLength,
		MaxLengthS:    DefaultMaxLengthS,
		FFTWindowSize: DefaultFFTWindowSize,
		FrequencyMin:  DefaultFrequencyMin,
		FrequencyMax:  DefaultFrequencyMax,
		Truncation:    TruncationFusion,
		Padding:       PaddingRepeatPad,
	}
}

// NbFrequencyBins is the number of onesided STFT bins.
func (c Config) NbFrequencyBins() int {
	return c.FFTWindowSize/2 + 1
}

// NbMaxSamples is the fixed waveform length fed to the spectrogram.
func (c Config) NbMaxSamples() int {
	return c.MaxLengthS * c.SamplingRate
}

// Validate reports the first inconsistency in c, wrapped in ErrConfig.
func (c Config) Validate() error {
	switch {
	case c.FeatureSize <= 0:
		return fmt.Errorf("%w: feature_size %d", ErrConfig, c.FeatureSize)
	case c.SamplingRate <= 0:
		return fmt.Errorf("%w: sampling_rate %d", ErrConfig, c.SamplingRate)
	case c.HopLength <= 0:
		return fmt.Errorf("%w: hop_length %d", ErrConfig, c.HopLength)
	case c.MaxLengthS <= 0:
		return fmt.Errorf("%w: max_length_s %d", ErrConfig, c.MaxLengthS)
	case c.FFTWindowSize < 2:
		return fmt.Errorf("%w: fft_window_size %d", ErrConfig, c.FFTWindowSize)
	case c.FrequencyMin < 0:
		return fmt.Errorf("%w: frequency_min %g is negative", ErrConfig, c.FrequencyMin)
	case c.FrequencyMin >= c.FrequencyMax:
		return fmt.Errorf("%w: frequency_min %g not below frequency_max %g", ErrConfig, c.FrequencyMin, c.FrequencyMax)
	case c.FrequencyMax > float64(c.SamplingRate)/2:
		return fmt.Errorf("%w: frequency_max %g above nyquist %g", ErrConfig, c.FrequencyMax, float64(c.SamplingRate)/2)
	case c.TopDB != nil && *c.TopDB <= 0:
		return fmt.Errorf("%w: top_db %g must be positive", ErrConfig, *c.TopDB)
	}

	switch c.Truncation {
	case TruncationFusion, TruncationRandTrunc:
	default:
		return fmt.Errorf("%w: unknown truncation %q", ErrConfig, c.Truncation)
	}

	switch c.Padding {
	case PaddingRepeatPad, PaddingRepeat, PaddingPad:
	default:
		return fmt.Errorf("%w: unknown padding %q", ErrConfig, c.Padding)
	}

	return nil
}
