// Package model runs a forward pass of an exported CLAP audio encoder over
// extracted features. The ONNX Runtime backend is compiled in with the onnx
// build tag; without it Open reports ErrUnavailable.
package model

import (
	"context"
	"errors"

	"github.com/neurlang/clapmel/clap"
)

const (
	DefaultInputName  = "input_features"
	DefaultOutputName = "audio_embeds"
)

// ErrUnavailable is returned by Open when no inference backend is built in.
var ErrUnavailable = errors.New("model: inference backend not available (build with -tags onnx)")

// Embedder maps a feature batch to embeddings. Implementations are not safe
// for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, batch *clap.BatchFeature) (Output, error)
	Close() error
}

// Output is a dense float32 tensor.
type Output struct {
	Shape []int64
	Data  []float32
}

// Options configures Open.
type Options struct {
	// Path to the .onnx model file.
	Path       string
	InputName  string
	OutputName string
	// Half feeds float16 input features.
	Half bool
}

func (o Options) withDefaults() Options {
	if o.InputName == "" {
		o.InputName = DefaultInputName
	}
	if o.OutputName == "" {
		o.OutputName = DefaultOutputName
	}
	return o
}
