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
		fmt.Println("Usage: tomel <audio_file>")
		os.Exit(1)
	}

	var filename = os.Args[1]
	if err := toMel(inputName(filename), filename+".png"); err != nil {
		fmt.Printf("Error generating mel spectrogram: %v\n", err)
		os.Exit(1)
	}
}

// inputName appends .wav to filename unless it already names a WAV or FLAC
// file, in any letter case.
func inputName(filename string) string {
	ext := filepath.Ext(filename)
	if strings.EqualFold(ext, ".wav") || strings.EqualFold(ext, ".flac") {
		return filename
	}
	return filename + ".wav"
}

// toMel renders the CLAP log-mel of inputFile, resampled to 48 kHz and
// padded to the model window, as a PNG with low frequencies at the bottom.
func toMel(inputFile, outputFile string) error {
	fe, err := clap.New(clap.DefaultConfig())
	if err != nil {
		return err
	}

	samples, sr, err := mel.Load(inputFile)
	if err != nil {
		return err
	}
	rate := fe.Config().SamplingRate
	if samples, err = dataset.Resample(samples, sr, rate); err != nil {
		return err
	}

	batch, err := fe.Extract([][]float64{samples}, rate)
	if err != nil {
		return err
	}
	return mel.SaveImage(outputFile, batch.InputFeatures[0][0], true)
}
