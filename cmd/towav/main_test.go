package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/clapmel/clap"
	"github.com/neurlang/clapmel/mel"
)

func TestToWav(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.wav")
	clip := []float64{0.25, -0.25, 0.5, -0.5}
	samples := make([]float64, 0, 48_000)
	for len(samples) < 48_000-len(clip) {
		samples = append(samples, clip...)
	}
	samples = samples[:47_000]
	require.NoError(t, mel.SaveWav(input, samples, 48_000))

	output := filepath.Join(dir, "clip.clap.wav")
	require.NoError(t, toWav(input, output, clap.PaddingPad))

	got, sr, err := mel.Load(output)
	require.NoError(t, err)
	assert.Equal(t, 48_000, sr)
	require.Len(t, got, 480_000)
	assert.InDelta(t, 0.25, got[0], 1e-3)
	assert.InDelta(t, 0, got[479_999], 1e-9)

	assert.ErrorIs(t, toWav(input, output, "mirror"), clap.ErrConfig)
	assert.Error(t, toWav(filepath.Join(dir, "missing.wav"), output, clap.PaddingRepeatPad))
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "clip.clap.wav", outputName("clip.wav"))
	assert.Equal(t, "CLIP.clap.wav", outputName("CLIP.WAV"))
	assert.Equal(t, "song.clap.wav", outputName("song.FLAC"))
	assert.Equal(t, "clip.mp3.clap.wav", outputName("clip.mp3"))
}
