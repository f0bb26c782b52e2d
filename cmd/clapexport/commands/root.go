package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/neurlang/clapmel/clap"
	"github.com/neurlang/clapmel/internal/config"
)

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clapexport",
		Short: "Run the CLAP feature extractor over a dataset and save its configs",
		Long: `clapexport - prepare the preprocessing side of a CLAP audio search model.

Environment (also read from .env):
  CLAP_DATA_DIR          directory of .wav/.flac clips
  CLAP_OUTPUT_DIR        where timestamped config directories go (onnx_models)
  CLAP_MODEL_NAME        model name recorded in the tokenizer config
  CLAP_MODEL_PATH        optional ONNX audio encoder
  CLAP_EXTRACTOR_CONFIG  optional JSON/YAML extractor config
  CLAP_TOKENIZER_DIR     optional tokenizer files to copy
  CLAP_LIMIT             number of clips (32)
  CLAP_LOG_LEVEL         debug, info, warn or error`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newShapesCmd())
	return root
}

// loadConfig reads .env and the CLAP_* variables.
func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}
	return config.Loader{}.Load()
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	l, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

func newExtractor(path string, requireFullLength bool) (*clap.FeatureExtractor, error) {
	cfg := clap.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = clap.LoadConfig(path); err != nil {
			return nil, fmt.Errorf("load extractor config: %w", err)
		}
	}
	if requireFullLength {
		cfg.RequireFullLength = true
	}
	return clap.New(cfg)
}
