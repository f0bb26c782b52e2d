// Package dataset loads audio clips from a directory tree and brings them to
// a common sample rate.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/neurlang/clapmel/mel"
)

// ErrNoClips is returned when a directory holds no loadable audio.
var ErrNoClips = errors.New("dataset: no audio clips found")

// Clip is one decoded mono clip.
type Clip struct {
	Path         string
	SampleRate   int
	OriginalRate int
	Samples      []float64
}

// Options controls Load.
type Options struct {
	// SampleRate all clips are resampled to. Zero keeps the file rate.
	SampleRate int
	// Limit caps the number of clips. Zero means no limit.
	Limit  int
	Logger *slog.Logger
}

// Load walks dir in lexical order and decodes every .wav and .flac file
// until Limit clips are collected. Files that fail to decode are logged and
// skipped.
func Load(ctx context.Context, dir string, opts Options) ([]Clip, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Limit < 0 {
		return nil, fmt.Errorf("dataset: negative limit %d", opts.Limit)
	}

	paths, err := audioFiles(dir)
	if err != nil {
		return nil, err
	}

	var clips []Clip
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if opts.Limit > 0 && len(clips) >= opts.Limit {
			break
		}

		samples, rate, err := mel.Load(path)
		if err != nil {
			logger.Warn("skipping clip", "path", path, "error", err)
			continue
		}

		clip := Clip{Path: path, SampleRate: rate, OriginalRate: rate, Samples: samples}
		if opts.SampleRate > 0 && rate != opts.SampleRate {
			clip.Samples, err = Resample(samples, rate, opts.SampleRate)
			if err != nil {
				return nil, fmt.Errorf("dataset: %s: %w", path, err)
			}
			clip.SampleRate = opts.SampleRate
		}
		logger.Debug("loaded clip",
			"path", path,
			"samples", len(clip.Samples),
			"rate", clip.SampleRate,
			"original_rate", rate,
		)
		clips = append(clips, clip)
	}

	if len(clips) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoClips, dir)
	}
	return clips, nil
}

// Waveforms returns the sample slices of clips in order.
func Waveforms(clips []Clip) [][]float64 {
	out := make([][]float64, len(clips))
	for i := range clips {
		out[i] = clips[i].Samples
	}
	return out
}

func audioFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".wav", ".flac":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dataset: walk %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}
