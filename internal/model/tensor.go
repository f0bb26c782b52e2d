package model

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/x448/float16"

	"github.com/neurlang/clapmel/clap"
	"github.com/neurlang/clapmel/mel"
)

// ErrRagged is returned when batch examples differ in frame count.
var ErrRagged = errors.New("model: batch examples differ in shape")

// Shape returns the [B, 1, T, M] shape of a batch, requiring every example
// to share T and M.
func Shape(batch *clap.BatchFeature) ([]int64, error) {
	if batch == nil || batch.Len() == 0 {
		return nil, fmt.Errorf("model: empty batch: %w", clap.ErrInvalidInput)
	}
	var frames, mels int
	for i, example := range batch.InputFeatures {
		if len(example) != 1 || len(example[0]) == 0 {
			return nil, fmt.Errorf("model: example %d: %w", i, ErrRagged)
		}
		t, m := len(example[0]), len(example[0][0])
		if i == 0 {
			frames, mels = t, m
		}
		if t != frames || m != mels {
			return nil, fmt.Errorf("model: example %d is %dx%d, want %dx%d: %w", i, t, m, frames, mels, ErrRagged)
		}
	}
	return []int64{int64(batch.Len()), 1, int64(frames), int64(mels)}, nil
}

// Flatten lays the batch out row-major as float32.
func Flatten(batch *clap.BatchFeature) ([]float32, []int64, error) {
	shape, err := Shape(batch)
	if err != nil {
		return nil, nil, err
	}
	out := make([]float32, 0, shape[0]*shape[2]*shape[3])
	for _, example := range batch.InputFeatures {
		for _, frame := range example[0] {
			for _, v := range frame {
				out = append(out, float32(v))
			}
		}
	}
	return out, shape, nil
}

// FlattenHalf lays the batch out row-major as little-endian float16 bytes.
func FlattenHalf(batch *clap.BatchFeature) ([]byte, []int64, error) {
	shape, err := Shape(batch)
	if err != nil {
		return nil, nil, err
	}
	out := make([]byte, 0, 2*shape[0]*shape[2]*shape[3])
	for _, example := range batch.InputFeatures {
		for _, bits := range mel.Half(example[0]) {
			out = binary.LittleEndian.AppendUint16(out, bits)
		}
	}
	return out, shape, nil
}

// decodeHalf converts little-endian float16 bytes to float32.
func decodeHalf(data []byte) []float32 {
	out := make([]float32, len(data)/2)
	for i := range out {
		out[i] = float16.Frombits(binary.LittleEndian.Uint16(data[2*i:])).Float32()
	}
	return out
}
