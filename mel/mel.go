package mel

import "github.com/r9y9/gossp/stft"
import "github.com/mjibson/go-dsp/window"
import "errors"
import "fmt"

// DefaultFloor is the smallest mel power kept before taking the logarithm.
const DefaultFloor = 1e-10

// Mel represents the configuration for generating log-mel spectrograms.
type Mel struct {
	// Window is the analysis window and FFT length in samples.
	Window int
	// Hop is the number of samples between successive frames.
	Hop int
	// Filters projects the power spectrum onto mel bins.
	Filters FilterBank
	// Floor clamps mel power from below before the dB conversion.
	Floor float64
	// TopDB, when positive, clamps the output to max(dB)-TopDB.
	TopDB float64

	hann []float64
}

// NewMel creates a new Mel instance with a cached periodic Hann window.
func NewMel(window, hop int, filters FilterBank) *Mel {
	return &Mel{
		Window:  window,
		Hop:     hop,
		Filters: filters,
		Floor:   DefaultFloor,
		hann:    PeriodicHann(window),
	}
}

var ErrFileNotLoaded = errors.New("wavNotLoaded")

// ErrShortInput is returned when a waveform is empty.
var ErrShortInput = errors.New("mel: empty waveform")

// PeriodicHann returns an n-point periodic Hann window, the DFT-even variant
// used by spectral analysis (numpy.hanning(n+1)[:-1]).
func PeriodicHann(n int) []float64 {
	if n <= 1 {
		return window.Hann(1)[:n]
	}
	return window.Hann(n + 1)[:n]
}

// NumFrames returns the number of centered frames for a waveform of n samples.
func (m *Mel) NumFrames(n int) int {
	padded := n + 2*(m.Window/2)
	if padded < m.Window {
		return 0
	}
	return 1 + (padded-m.Window)/m.Hop
}

// Power computes the centered onesided power spectrogram, time-major.
func (m *Mel) Power(buf []float64) ([][]float64, error) {
	if len(buf) == 0 {
		return nil, ErrShortInput
	}
	if m.Window < 2 || m.Hop < 1 {
		return nil, fmt.Errorf("mel: window %d and hop %d", m.Window, m.Hop)
	}

	buf = reflectPad(buf, m.Window/2)

	s := stft.New(m.Hop, m.Window)
	s.Window = m.hann
	if len(s.Window) != m.Window {
		s.Window = PeriodicHann(m.Window)
	}

	spectrum := s.STFT(buf)

	bins := m.Window/2 + 1
	power := make([][]float64, len(spectrum))
	for i := range spectrum {
		row := make([]float64, bins)
		for j := 0; j < bins; j++ {
			v := spectrum[i][j]
			row[j] = real(v)*real(v) + imag(v)*imag(v)
		}
		power[i] = row
	}
	return power, nil
}

// ToMel generates a time-major log-mel spectrogram (frames x mels, in dB)
// from a wave buffer.
func (m *Mel) ToMel(buf []float64) ([][]float64, error) {
	if m.Filters.NumFrequencyBins() != m.Window/2+1 {
		return nil, fmt.Errorf("%w: %d frequency bins for window %d",
			ErrInvalidFilterBank, m.Filters.NumFrequencyBins(), m.Window)
	}

	power, err := m.Power(buf)
	if err != nil {
		return nil, err
	}

	floor := m.Floor
	if floor <= 0 {
		floor = DefaultFloor
	}

	ospectrum := domel(power, m.Filters, floor)

	spectral_normalize(ospectrum, m.TopDB)

	return ospectrum, nil
}

// Half renders a spectrogram as row-major IEEE 754 half-precision bits.
func Half(spec [][]float64) []uint16 {
	return dumpbuffer(spec)
}

// Load loads a mono WAV or FLAC file, chosen by extension, and returns the
// samples with the file's sample rate.
func Load(inputFile string) ([]float64, int, error) {
	if isFlac(inputFile) {
		return LoadFlac(inputFile)
	}
	return LoadWav(inputFile)
}

// LoadFlac loads a flac file as mono samples and its sample rate
func LoadFlac(inputFile string) ([]float64, int, error) {
	mono, sr, err := loadflac(inputFile)
	if err != nil {
		return nil, 0, err
	}
	if len(mono) == 0 || sr == 0 {
		return nil, 0, ErrFileNotLoaded
	}
	return mono, sr, nil
}

// LoadWav loads a wav file as mono samples and its sample rate
func LoadWav(inputFile string) ([]float64, int, error) {
	mono, sr, err := loadwav(inputFile)
	if err != nil {
		return nil, 0, err
	}
	if len(mono) == 0 || sr == 0 {
		return nil, 0, ErrFileNotLoaded
	}
	return mono, sr, nil
}

// SaveWav saves mono wav file from sample vector
func SaveWav(outputFile string, vec []float64, sr int) error {
	return dumpwav(outputFile, vec, sr)
}

// SaveImage writes a time-major spectrogram as a PNG, time on the x axis.
func SaveImage(outputFile string, spec [][]float64, reverse bool) error {
	if len(spec) == 0 {
		return ErrShortInput
	}
	return dumpimage(outputFile, spec, reverse)
}
