package mel

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func newTestMel(t *testing.T) *Mel {
	t.Helper()
	fb, err := NewFilterBank(testWindow/2+1, testMels, 0, testFmax, testSampleRate, NoNorm, HTK)
	require.NoError(t, err)
	return NewMel(testWindow, 480, fb)
}

// binTone returns a cosine that completes exactly bin cycles per window.
func binTone(n, bin int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Cos(2 * math.Pi * float64(bin) * float64(i) / testWindow)
	}
	return out
}

func TestPeriodicHann(t *testing.T) {
	w := PeriodicHann(4)
	require.Len(t, w, 4)
	assert.InDelta(t, 0.0, w[0], 1e-15)
	assert.InDelta(t, 0.5, w[1], 1e-15)
	assert.InDelta(t, 1.0, w[2], 1e-15)
	assert.InDelta(t, 0.5, w[3], 1e-15)
}

func TestReflectPad(t *testing.T) {
	assert.Equal(t, []float64{3, 2, 1, 2, 3, 4, 3, 2}, reflectPad([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, []float64{7, 7, 7}, reflectPad([]float64{7}, 1))
	// Pads longer than the signal keep reflecting.
	assert.Equal(t, []float64{2, 1, 2, 1, 2, 1, 2}, reflectPad([]float64{1, 2}, 3)[:7])
}

func TestNumFrames(t *testing.T) {
	m := newTestMel(t)
	assert.Equal(t, 1001, m.NumFrames(480_000))
	assert.Equal(t, 101, m.NumFrames(48_000))
	assert.Equal(t, 1, m.NumFrames(1))
}

func TestPower_BinCenteredTone(t *testing.T) {
	m := newTestMel(t)

	power, err := m.Power(binTone(48_000, 100))
	require.NoError(t, err)
	require.Len(t, power, 101)
	require.Len(t, power[50], testWindow/2+1)

	// A unit cosine on bin k through a periodic Hann window has |X[k]| = n/4
	// and |X[k±1]| = n/8.
	frame := power[50]
	assert.InEpsilon(t, math.Pow(testWindow/4, 2), frame[100], 1e-9)
	assert.InEpsilon(t, math.Pow(testWindow/8, 2), frame[99], 1e-9)
	assert.InEpsilon(t, math.Pow(testWindow/8, 2), frame[101], 1e-9)
	assert.Less(t, frame[110], 1e-9)
}

func TestToMel_ShapeAndPeak(t *testing.T) {
	m := newTestMel(t)

	spec, err := m.ToMel(binTone(48_000, 100))
	require.NoError(t, err)
	require.Len(t, spec, 101)
	for _, row := range spec {
		require.Len(t, row, testMels)
	}

	best, want := 0, 0
	for j := range spec[50] {
		if spec[50][j] > spec[50][best] {
			best = j
		}
		if m.Filters[100][j] > m.Filters[100][want] {
			want = j
		}
	}
	assert.Equal(t, want, best)
}

func TestToMel_SilenceIsFloor(t *testing.T) {
	m := newTestMel(t)

	spec, err := m.ToMel(make([]float64, 4_800))
	require.NoError(t, err)
	require.Len(t, spec, 11)
	for _, row := range spec {
		for _, v := range row {
			require.InDelta(t, -100.0, v, 1e-9)
		}
	}
}

func TestToMel_TopDB(t *testing.T) {
	m := newTestMel(t)
	m.TopDB = 30

	spec, err := m.ToMel(binTone(9_600, 40))
	require.NoError(t, err)

	peak, low := math.Inf(-1), math.Inf(1)
	for _, row := range spec {
		for _, v := range row {
			peak = math.Max(peak, v)
			low = math.Min(low, v)
		}
	}
	assert.InDelta(t, peak-30, low, 1e-9)
}

func TestToMel_Deterministic(t *testing.T) {
	m := newTestMel(t)
	tone := binTone(9_600, 33)

	a, err := m.ToMel(tone)
	require.NoError(t, err)
	b, err := m.ToMel(tone)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestToMel_Errors(t *testing.T) {
	m := newTestMel(t)

	_, err := m.ToMel(nil)
	assert.ErrorIs(t, err, ErrShortInput)

	m.Window = 512
	_, err = m.ToMel(make([]float64, 100))
	assert.ErrorIs(t, err, ErrInvalidFilterBank)
}

func TestHalf(t *testing.T) {
	bits := Half([][]float64{{1, -100}, {0.5, 0}})
	require.Len(t, bits, 4)
	assert.Equal(t, uint16(0x3c00), bits[0])
	assert.Equal(t, float32(-100), float16.Frombits(bits[1]).Float32())
	assert.Equal(t, float32(0.5), float16.Frombits(bits[2]).Float32())
	assert.Equal(t, uint16(0), bits[3])
}

func TestWavRoundTrip(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "tone.wav")

	tone := binTone(2_400, 12)
	for i := range tone {
		tone[i] *= 0.5
	}
	require.NoError(t, SaveWav(name, tone, testSampleRate))

	samples, sr, err := Load(name)
	require.NoError(t, err)
	assert.Equal(t, testSampleRate, sr)
	require.Len(t, samples, len(tone))
	for i := range tone {
		assert.InDelta(t, tone[i], samples[i], 1e-3)
	}
}

func TestLoad_WavKeepsFullScale(t *testing.T) {
	name := filepath.Join(t.TempDir(), "levels.wav")
	levels := []float64{0.5, -0.5, 0.25, 0.9, -0.9}
	require.NoError(t, SaveWav(name, levels, testSampleRate))

	samples, _, err := Load(name)
	require.NoError(t, err)
	require.Len(t, samples, len(levels))
	for i := range levels {
		assert.InDelta(t, levels[i], samples[i], 1e-3)
	}
	assert.InDelta(t, 2.0, wavGain(2), 1e-4)
	assert.InDelta(t, 1.0, wavGain(1), 0)
}

func TestLoad_Missing(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.FLAC"))
	assert.Error(t, err)
}

func TestSaveImage(t *testing.T) {
	m := newTestMel(t)
	spec, err := m.ToMel(binTone(4_800, 20))
	require.NoError(t, err)

	name := filepath.Join(t.TempDir(), "spec.png")
	require.NoError(t, SaveImage(name, spec, true))

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, len(spec), img.Bounds().Dx())
	assert.Equal(t, testMels, img.Bounds().Dy())

	assert.ErrorIs(t, SaveImage(name, nil, false), ErrShortInput)
}
