//go:build onnx

package model

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/neurlang/clapmel/clap"
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

type onnxEmbedder struct {
	session *ort.DynamicAdvancedSession
	half    bool
}

// Open initializes ONNX Runtime once per process and loads the model at
// opts.Path with dynamic input shapes.
func Open(opts Options) (Embedder, error) {
	opts = opts.withDefaults()
	if opts.Path == "" {
		return nil, fmt.Errorf("model: empty model path")
	}

	ortInitOnce.Do(func() {
		libPath, err := resolveORTLibPath()
		if err != nil {
			ortInitErr = fmt.Errorf("resolve ORT lib: %w", err)
			return
		}
		ort.SetSharedLibraryPath(libPath)
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("model: %w", ortInitErr)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("model: create session options: %w", err)
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(
		opts.Path,
		[]string{opts.InputName},
		[]string{opts.OutputName},
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("model: create session: %w", err)
	}
	return &onnxEmbedder{session: session, half: opts.Half}, nil
}

func (e *onnxEmbedder) Embed(ctx context.Context, batch *clap.BatchFeature) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	if e.session == nil {
		return Output{}, fmt.Errorf("model: embedder closed")
	}

	input, err := e.inputTensor(batch)
	if err != nil {
		return Output{}, err
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := e.session.Run([]ort.Value{input}, outputs); err != nil {
		return Output{}, fmt.Errorf("model: run: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	// Copy out, the tensors are destroyed on return.
	shape := append([]int64(nil), outputs[0].GetShape()...)
	switch out := outputs[0].(type) {
	case *ort.Tensor[float32]:
		return Output{Shape: shape, Data: append([]float32(nil), out.GetData()...)}, nil
	case *ort.CustomDataTensor:
		return Output{Shape: shape, Data: decodeHalf(out.GetData())}, nil
	default:
		return Output{}, fmt.Errorf("model: unsupported output type %T", out)
	}
}

func (e *onnxEmbedder) inputTensor(batch *clap.BatchFeature) (ort.Value, error) {
	if e.half {
		data, shape, err := FlattenHalf(batch)
		if err != nil {
			return nil, err
		}
		t, err := ort.NewCustomDataTensor(ort.NewShape(shape...), data, ort.TensorElementDataTypeFloat16)
		if err != nil {
			return nil, fmt.Errorf("model: create input tensor: %w", err)
		}
		return t, nil
	}

	data, shape, err := Flatten(batch)
	if err != nil {
		return nil, err
	}
	t, err := ort.NewTensor(ort.NewShape(shape...), data)
	if err != nil {
		return nil, fmt.Errorf("model: create input tensor: %w", err)
	}
	return t, nil
}

// Close releases the session. Safe to call multiple times.
func (e *onnxEmbedder) Close() error {
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	return nil
}
