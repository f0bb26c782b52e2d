package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/neurlang/clapmel/clap"
	"github.com/neurlang/clapmel/internal/dataset"
	"github.com/neurlang/clapmel/mel"
)

func main() {
	// Check if the filename argument is provided
	if len(os.Args) < 2 {
		fmt.Println("Usage: towav <audio_file> [repeatpad|repeat|pad]")
		os.Exit(1)
	}

	var filename = os.Args[1]
	var padding = clap.PaddingRepeatPad
	if len(os.Args) > 2 {
		padding = clap.Padding(os.Args[2])
	}

	if err := toWav(filename, outputName(filename), padding); err != nil {
		fmt.Printf("Error generating model input wave: %v\n", err)
		os.Exit(1)
	}
}

// outputName replaces a .wav or .flac extension, in any letter case, with
// .clap.wav.
func outputName(filename string) string {
	ext := filepath.Ext(filename)
	if strings.EqualFold(ext, ".wav") || strings.EqualFold(ext, ".flac") {
		filename = strings.TrimSuffix(filename, ext)
	}
	return filename + ".clap.wav"
}

// toWav writes the waveform the feature extractor sees for inputFile:
// resampled to the model rate and padded to the model window.
func toWav(inputFile, outputFile string, padding clap.Padding) error {
	cfg := clap.DefaultConfig()
	cfg.Padding = padding
	if err := cfg.Validate(); err != nil {
		return err
	}

	samples, sr, err := mel.Load(inputFile)
	if err != nil {
		return err
	}
	if samples, err = dataset.Resample(samples, sr, cfg.SamplingRate); err != nil {
		return err
	}
	padded, err := clap.PadWaveform(samples, cfg.NbMaxSamples(), cfg.Padding, cfg.PaddingValue)
	if err != nil {
		return err
	}
	return mel.SaveWav(outputFile, padded, cfg.SamplingRate)
}
