package config

const (
	DefaultModelName = "laion/clap-htsat-unfused"
	DefaultOutputDir = "onnx_models"
	DefaultLimit     = 32
	DefaultLogLevel  = "info"
)

// Config holds the export driver configuration.
type Config struct {
	// DataDir is walked for .wav/.flac clips.
	DataDir string
	// OutputDir receives the timestamped config directories.
	OutputDir string
	// ModelName is recorded in the saved tokenizer config.
	ModelName string
	// ModelPath is an optional ONNX audio embedder to time a forward pass with.
	ModelPath string
	// ExtractorConfig is an optional JSON/YAML feature extractor config file.
	ExtractorConfig string
	// TokenizerDir is an optional directory of tokenizer files to copy.
	TokenizerDir string
	LogLevel     string
	Limit        int
}
