package clap

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// shortConfig keeps tests fast: one second at 48 kHz, 101 frames.
func shortConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxLengthS = 1
	return cfg
}

func tone(n int, freq float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/DefaultSamplingRate)
	}
	return out
}

func TestExtract_SilenceEndToEnd(t *testing.T) {
	fe, err := New(DefaultConfig())
	require.NoError(t, err)

	batch, err := fe.Extract([][]float64{make([]float64, 24_000)}, 48_000)
	require.NoError(t, err)
	require.Equal(t, 1, batch.Len())

	features := batch.InputFeatures[0]
	require.Len(t, features, 1)
	require.Len(t, features[0], 1001)
	for _, frame := range features[0] {
		require.Len(t, frame, 64)
		for _, v := range frame {
			require.InDelta(t, -100.0, v, 1e-9)
		}
	}
	assert.Equal(t, [][]bool{{false}}, batch.IsLonger)
}

func TestExtract_WrongSamplingRate(t *testing.T) {
	fe, err := New(shortConfig())
	require.NoError(t, err)

	batch, err := fe.Extract([][]float64{make([]float64, 100)}, 44_100)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Nil(t, batch)
}

func TestExtract_InvalidInput(t *testing.T) {
	fe, err := New(shortConfig())
	require.NoError(t, err)

	for _, tc := range []struct {
		name string
		raw  [][]float64
	}{
		{"nil batch", nil},
		{"empty batch", [][]float64{}},
		{"empty waveform", [][]float64{{1, 2}, {}}},
		{"nan", [][]float64{{1, math.NaN()}}},
		{"inf", [][]float64{{math.Inf(1), 0}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			batch, err := fe.Extract(tc.raw, 48_000)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, batch)
		})
	}
}

func TestExtract_RequireFullLength(t *testing.T) {
	cfg := shortConfig()
	cfg.RequireFullLength = true
	fe, err := New(cfg)
	require.NoError(t, err)

	batch, err := fe.Extract([][]float64{make([]float64, 48_000), make([]float64, 47_999)}, 48_000)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Nil(t, batch)

	batch, err = fe.Extract([][]float64{tone(48_000, 440), tone(60_000, 880)}, 48_000)
	require.NoError(t, err)
	assert.Len(t, batch.InputFeatures[0][0], 101)
	// Longer inputs pass through untruncated.
	assert.Len(t, batch.InputFeatures[1][0], fe.NumFrames(60_000))
	assert.Equal(t, [][]bool{{false}, {false}}, batch.IsLonger)
}

func TestExtract_IsLongerAlwaysFalse(t *testing.T) {
	fe, err := New(shortConfig())
	require.NoError(t, err)

	batch, err := fe.Extract([][]float64{tone(1_000, 440), tone(48_000, 440), tone(96_000, 440)}, 48_000)
	require.NoError(t, err)
	for i, flags := range batch.IsLonger {
		assert.Equal(t, []bool{false}, flags, "example %d", i)
	}
}

func TestExtract_PreservesOrder(t *testing.T) {
	fe, err := New(shortConfig())
	require.NoError(t, err)

	raw := make([][]float64, 8)
	for i := range raw {
		raw[i] = tone(4_000+i*3_000, 200*float64(i+1))
	}

	batch, err := fe.Extract(raw, 48_000)
	require.NoError(t, err)
	require.Equal(t, len(raw), batch.Len())

	for i := range raw {
		single, err := fe.InputMel(raw[i], fe.NbMaxSamples())
		require.NoError(t, err)
		assert.Equal(t, single, batch.InputFeatures[i], "example %d", i)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	fe, err := New(shortConfig())
	require.NoError(t, err)

	raw := [][]float64{tone(12_345, 1_000), tone(12_345, 1_000)}
	first, err := fe.Extract(raw, 48_000)
	require.NoError(t, err)
	second, err := fe.Extract(raw, 48_000)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.InputFeatures[0], first.InputFeatures[1])
}

func TestExtract_Cancelled(t *testing.T) {
	fe, err := New(shortConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := fe.ExtractContext(ctx, [][]float64{tone(100, 440)}, 48_000)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, batch)
}

func TestExtractFbank_TimeMajor(t *testing.T) {
	fe, err := New(shortConfig())
	require.NoError(t, err)

	spec, err := fe.ExtractFbank(tone(9_600, 3_000), fe.MelFilters)
	require.NoError(t, err)
	require.Len(t, spec, 1+9_600/480)
	for _, frame := range spec {
		require.Len(t, frame, 64)
	}

	slaney, err := fe.ExtractFbank(tone(9_600, 3_000), fe.MelFiltersSlaney)
	require.NoError(t, err)
	assert.NotEqual(t, spec, slaney)
}

func TestExtract_TopDB(t *testing.T) {
	cfg := shortConfig()
	topDB := 40.0
	cfg.TopDB = &topDB
	fe, err := New(cfg)
	require.NoError(t, err)

	batch, err := fe.Extract([][]float64{tone(48_000, 2_000)}, 48_000)
	require.NoError(t, err)

	peak, low := math.Inf(-1), math.Inf(1)
	for _, frame := range batch.InputFeatures[0][0] {
		for _, v := range frame {
			peak = math.Max(peak, v)
			low = math.Min(low, v)
		}
	}
	assert.InDelta(t, peak-topDB, low, 1e-9)
}

func TestBatchFeature_AsMap(t *testing.T) {
	fe, err := New(shortConfig())
	require.NoError(t, err)

	batch, err := fe.Extract([][]float64{tone(480, 440)}, 48_000)
	require.NoError(t, err)

	m := batch.AsMap()
	assert.Len(t, m, 2)
	assert.Equal(t, batch.InputFeatures, m["input_features"])
	assert.Equal(t, batch.IsLonger, m["is_longer"])
}
