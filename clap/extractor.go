package clap

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/neurlang/clapmel/mel"
)

// FeatureExtractor computes CLAP audio input features. Its filter banks are
// built once by New and only read afterwards.
type FeatureExtractor struct {
	cfg Config

	// MelFilters is the HTK-scale bank without normalization.
	MelFilters mel.FilterBank
	// MelFiltersSlaney is the Slaney-scale bank with Slaney normalization,
	// used for every extracted feature.
	MelFiltersSlaney mel.FilterBank

	spec *mel.Mel
}

// BatchFeature is the extractor output. Index i of both fields corresponds
// to input waveform i.
type BatchFeature struct {
	// InputFeatures holds one [1][frames][feature_size] log-mel array per example.
	InputFeatures [][][][]float64
	// IsLonger holds one single-element flag list per example.
	IsLonger [][]bool
}

// Len returns the batch size.
func (b *BatchFeature) Len() int {
	return len(b.InputFeatures)
}

// AsMap returns the batch keyed by model input name.
func (b *BatchFeature) AsMap() map[string]any {
	return map[string]any{
		"input_features": b.InputFeatures,
		"is_longer":      b.IsLonger,
	}
}

// New validates cfg and precomputes the filter banks.
func New(cfg Config) (*FeatureExtractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	htk, err := mel.NewFilterBank(cfg.NbFrequencyBins(), cfg.FeatureSize,
		cfg.FrequencyMin, cfg.FrequencyMax, cfg.SamplingRate, mel.NoNorm, mel.HTK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	slaney, err := mel.NewFilterBank(cfg.NbFrequencyBins(), cfg.FeatureSize,
		cfg.FrequencyMin, cfg.FrequencyMax, cfg.SamplingRate, mel.SlaneyNorm, mel.Slaney)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	spec := mel.NewMel(cfg.FFTWindowSize, cfg.HopLength, slaney)
	if cfg.TopDB != nil {
		spec.TopDB = *cfg.TopDB
	}

	return &FeatureExtractor{
		cfg:              cfg,
		MelFilters:       htk,
		MelFiltersSlaney: slaney,
		spec:             spec,
	}, nil
}

// Config returns the configuration the extractor was built with.
func (fe *FeatureExtractor) Config() Config {
	return fe.cfg
}

// NbMaxSamples is the number of samples every short waveform is padded to.
func (fe *FeatureExtractor) NbMaxSamples() int {
	return fe.cfg.NbMaxSamples()
}

// NumFrames returns the number of spectrogram frames for n samples.
func (fe *FeatureExtractor) NumFrames(n int) int {
	return fe.spec.NumFrames(n)
}

// ExtractFbank computes the time-major log-mel spectrogram of waveform on
// the given filter bank with a Hann window and a power spectrum.
func (fe *FeatureExtractor) ExtractFbank(waveform []float64, filters mel.FilterBank) ([][]float64, error) {
	m := *fe.spec
	m.Filters = filters
	return m.ToMel(waveform)
}

// InputMel pads or repeats waveform up to maxLength according to the
// padding pattern and returns its Slaney log-mel spectrogram with a leading
// crop axis of size 1.
func (fe *FeatureExtractor) InputMel(waveform []float64, maxLength int) ([][][]float64, error) {
	padded, err := PadWaveform(waveform, maxLength, fe.cfg.Padding, fe.cfg.PaddingValue)
	if err != nil {
		return nil, err
	}

	spec, err := fe.ExtractFbank(padded, fe.MelFiltersSlaney)
	if err != nil {
		return nil, err
	}
	return [][][]float64{spec}, nil
}

// Extract featurizes a batch of mono waveforms sampled at samplingRate.
func (fe *FeatureExtractor) Extract(raw [][]float64, samplingRate int) (*BatchFeature, error) {
	return fe.ExtractContext(context.Background(), raw, samplingRate)
}

// ExtractContext is Extract with cancellation. Examples are processed
// concurrently; any failure aborts the whole batch and no partial output is
// returned.
func (fe *FeatureExtractor) ExtractContext(ctx context.Context, raw [][]float64, samplingRate int) (*BatchFeature, error) {
	if samplingRate != fe.cfg.SamplingRate {
		return nil, fmt.Errorf("%w: sampling rate %d, extractor expects %d", ErrConfig, samplingRate, fe.cfg.SamplingRate)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: batch is empty", ErrInvalidInput)
	}

	maxLength := fe.cfg.NbMaxSamples()
	for i, waveform := range raw {
		if err := checkWaveform(waveform); err != nil {
			return nil, fmt.Errorf("waveform %d: %w", i, err)
		}
		if fe.cfg.RequireFullLength && len(waveform) < maxLength {
			return nil, fmt.Errorf("%w: waveform %d has %d samples, need at least %d",
				ErrInvalidInput, i, len(waveform), maxLength)
		}
	}

	features := make([][][][]float64, len(raw))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range raw {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			inputMel, err := fe.InputMel(raw[i], maxLength)
			if err != nil {
				return fmt.Errorf("waveform %d: %w", i, err)
			}
			features[i] = inputMel
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	isLonger := make([][]bool, len(raw))
	for i := range isLonger {
		isLonger[i] = []bool{false}
	}

	return &BatchFeature{
		InputFeatures: features,
		IsLonger:      isLonger,
	}, nil
}

func checkWaveform(waveform []float64) error {
	if len(waveform) == 0 {
		return fmt.Errorf("%w: empty waveform", ErrInvalidInput)
	}
	for j, v := range waveform {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: sample %d is not finite", ErrInvalidInput, j)
		}
	}
	return nil
}
