package mel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSampleRate = 48_000
	testWindow     = 1024
	testMels       = 64
	testFmax       = 14_000
)

func TestMelScale_Invertible(t *testing.T) {
	freqs := []float64{0, 1, 50, 100, 300, 999, 1_000, 4_000, 14_000, 24_000}
	for _, scale := range []Scale{HTK, Slaney} {
		for _, freq := range freqs {
			back := MelToHz(HzToMel(freq, scale), scale)
			assert.InDelta(t, freq, back, 1e-9*math.Max(1, freq), "%s %g", scale, freq)
		}
	}
}

func TestMelScale_KnownPoints(t *testing.T) {
	// 1 kHz is ~1000 mel on the HTK scale and exactly 15 mel on Slaney's.
	assert.InDelta(t, 1_000.0, HzToMel(1_000, HTK), 0.1)
	assert.InDelta(t, 15.0, HzToMel(1_000, Slaney), 1e-12)
	assert.InDelta(t, 7.5, HzToMel(500, Slaney), 1e-12)
}

func TestNewFilterBank_Shape(t *testing.T) {
	for _, tc := range []struct {
		name  string
		norm  Norm
		scale Scale
	}{
		{"htk", NoNorm, HTK},
		{"slaney", SlaneyNorm, Slaney},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fb, err := NewFilterBank(testWindow/2+1, testMels, 0, testFmax, testSampleRate, tc.norm, tc.scale)
			require.NoError(t, err)
			require.Equal(t, testWindow/2+1, fb.NumFrequencyBins())
			require.Equal(t, testMels, fb.NumMels())

			for m := 0; m < testMels; m++ {
				var sum float64
				for k := range fb {
					assert.GreaterOrEqual(t, fb[k][m], 0.0)
					sum += fb[k][m]
				}
				assert.Greater(t, sum, 0.0, "filter %d is empty", m)
			}

			// Nothing above frequency_max contributes.
			cutoff := int(math.Ceil(testFmax / (float64(testSampleRate) / testWindow)))
			for k := cutoff + 1; k < len(fb); k++ {
				for m := 0; m < testMels; m++ {
					require.Zero(t, fb[k][m], "bin %d mel %d", k, m)
				}
			}
		})
	}
}

func TestNewFilterBank_HTKPeakIsOne(t *testing.T) {
	fb, err := NewFilterBank(testWindow/2+1, testMels, 0, testFmax, testSampleRate, NoNorm, HTK)
	require.NoError(t, err)

	for m := 0; m < testMels; m++ {
		var peak float64
		for k := range fb {
			peak = math.Max(peak, fb[k][m])
		}
		assert.LessOrEqual(t, peak, 1.0+1e-12)
		assert.Greater(t, peak, 0.25, "filter %d", m)
	}
}

func TestNewFilterBank_SlaneyNormalization_ApproxUnitArea(t *testing.T) {
	fb, err := NewFilterBank(testWindow/2+1, testMels, 0, testFmax, testSampleRate, SlaneyNorm, Slaney)
	require.NoError(t, err)

	df := float64(testSampleRate/2) / float64(testWindow/2)

	// Upper filters span many bins, so the Riemann sum is close to the area.
	for m := 48; m < testMels; m++ {
		var sum float64
		for k := range fb {
			sum += fb[k][m]
		}
		assert.InDeltaf(t, 1.0, sum*df, 0.1, "filter %d area=%f", m, sum*df)
	}
}

func TestNewFilterBank_ReferenceCoefficients(t *testing.T) {
	type coef struct {
		bin, mel int
		want     float64
	}
	for _, tc := range []struct {
		name  string
		norm  Norm
		scale Scale
		coefs []coef
	}{
		{"slaney", SlaneyNorm, Slaney, []coef{
			{1, 0, 0.01563533538043111},
			{2, 0, 0.005256241041215819},
			{4, 3, 0.007750973818607383},
			{5, 3, 0.013140602603039545},
			{10, 3, 0},
			{24, 20, 0.0052010361726234945},
			{25, 20, 0.014098174475723469},
			{26, 20, 0.0036126700828226868},
			{73, 40, 0.00023647521333099904},
			{74, 40, 0.0013957485498385929},
			{75, 40, 0.0025550218863461863},
			{200, 40, 0},
			{267, 63, 1.96719221744874e-05},
			{268, 63, 0.00010599366592266558},
			{269, 63, 0.00019231540967084375},
		}},
		{"htk", NoNorm, HTK, []coef{
			{1, 0, 0.6216867443460526},
			{83, 40, 0.14940434364376318},
			{84, 40, 0.3638678438524832},
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fb, err := NewFilterBank(testWindow/2+1, testMels, 0, testFmax, testSampleRate, tc.norm, tc.scale)
			require.NoError(t, err)
			for _, c := range tc.coefs {
				assert.InDelta(t, c.want, fb[c.bin][c.mel], 1e-12, "bin %d mel %d", c.bin, c.mel)
			}
		})
	}
}

func TestMelToHz_SlaneyEdges(t *testing.T) {
	lo, hi := HzToMel(0, Slaney), HzToMel(testFmax, Slaney)
	step := (hi - lo) / float64(testMels+1)
	assert.InDelta(t, 54.754149785, MelToHz(lo+step, Slaney), 1e-6)
	assert.InDelta(t, 13_231.37169, MelToHz(hi-step, Slaney), 1e-4)
	assert.InDelta(t, 12_504.94262, MelToHz(hi-2*step, Slaney), 1e-4)
}

func TestNewFilterBank_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name             string
		bins, mels, rate int
		fmin, fmax       float64
	}{
		{"above nyquist", 513, 64, 48_000, 0, 24_001},
		{"inverted range", 513, 64, 48_000, 14_000, 50},
		{"negative min", 513, 64, 48_000, -1, 14_000},
		{"no mels", 513, 0, 48_000, 0, 14_000},
		{"one bin", 1, 64, 48_000, 0, 14_000},
		{"too many mels", 5, 64, 48_000, 0, 14_000},
		{"zero rate", 513, 64, 0, 0, 14_000},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFilterBank(tc.bins, tc.mels, tc.fmin, tc.fmax, tc.rate, NoNorm, HTK)
			assert.ErrorIs(t, err, ErrInvalidFilterBank)
		})
	}
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, linspace(0, 1, 5))
	assert.Equal(t, []float64{3}, linspace(3, 9, 1))
}
