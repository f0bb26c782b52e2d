//go:build !onnx

package model

// Open reports ErrUnavailable; rebuild with -tags onnx for ONNX Runtime.
func Open(opts Options) (Embedder, error) {
	return nil, ErrUnavailable
}
