package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/neurlang/clapmel/clap"
	"github.com/neurlang/clapmel/internal/config"
	"github.com/neurlang/clapmel/internal/dataset"
	"github.com/neurlang/clapmel/internal/export"
	"github.com/neurlang/clapmel/internal/model"
)

type runOptions struct {
	data              string
	out               string
	model             string
	config            string
	limit             int
	half              bool
	requireFullLength bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract features for a dataset and save the processor configs",
		Long: `Load up to --limit clips from --data, resample them to the extractor rate,
extract CLAP log-mel features, and save tokenizer and feature extractor
configs to <out>/<name>-<YYYYMMDD-HHMMSS>. With --model, time one forward
pass of the ONNX audio encoder (requires a build with -tags onnx).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyRunFlags(cmd, &cfg, opts)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runExport(cmd, cfg, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.data, "data", "", "directory of .wav/.flac clips")
	f.StringVar(&opts.out, "out", config.DefaultOutputDir, "output directory")
	f.StringVar(&opts.model, "model", "", "optional ONNX audio encoder")
	f.StringVar(&opts.config, "config", "", "optional JSON/YAML feature extractor config")
	f.IntVar(&opts.limit, "limit", config.DefaultLimit, "number of clips to load")
	f.BoolVar(&opts.half, "half", false, "feed float16 features to the model")
	f.BoolVar(&opts.requireFullLength, "require-full-length", false, "reject clips shorter than the extractor window")
	return cmd
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config, opts runOptions) {
	f := cmd.Flags()
	if f.Changed("data") {
		cfg.DataDir = opts.data
	}
	if f.Changed("out") {
		cfg.OutputDir = opts.out
	}
	if f.Changed("model") {
		cfg.ModelPath = opts.model
	}
	if f.Changed("config") {
		cfg.ExtractorConfig = opts.config
	}
	if f.Changed("limit") {
		cfg.Limit = opts.limit
	}
}

func runExport(cmd *cobra.Command, cfg config.Config, opts runOptions) error {
	if cfg.DataDir == "" {
		return errors.New("--data is required (or set CLAP_DATA_DIR)")
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fe, err := newExtractor(cfg.ExtractorConfig, opts.requireFullLength)
	if err != nil {
		return err
	}

	clips, err := dataset.Load(ctx, cfg.DataDir, dataset.Options{
		SampleRate: fe.Config().SamplingRate,
		Limit:      cfg.Limit,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("dataset loaded", "dir", cfg.DataDir, "clips", len(clips))

	waveforms := dataset.Waveforms(clips)
	fmt.Fprintln(out, "Pre-processed audio: ", export.Describe(waveforms))

	batch, err := fe.ExtractContext(ctx, waveforms, fe.Config().SamplingRate)
	if err != nil {
		return fmt.Errorf("extract features: %w", err)
	}
	fmt.Fprintln(out, "Processed Audio: ", export.Describe(batch))

	namer := export.NewNamer(cfg.OutputDir, time.Now())
	tok := export.DefaultTokenizerConfig(cfg.ModelName)
	tok.SourceDir = cfg.TokenizerDir
	tokDir := namer.Name("tokenizer", "")
	if err := export.SaveTokenizerConfig(tokDir, tok); err != nil {
		return err
	}
	feDir := namer.Name("feature_extractor", "")
	if err := export.SaveFeatureExtractor(feDir, fe); err != nil {
		return err
	}
	logger.Info("configs saved", "tokenizer", tokDir, "feature_extractor", feDir)

	if cfg.ModelPath == "" {
		return nil
	}
	return runModel(cmd, logger, cfg.ModelPath, opts.half, batch)
}

func runModel(cmd *cobra.Command, logger *slog.Logger, path string, half bool, batch *clap.BatchFeature) error {
	embedder, err := model.Open(model.Options{Path: path, Half: half})
	if err != nil {
		return fmt.Errorf("open model: %w", err)
	}
	defer embedder.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Running model")
	fmt.Fprintln(out, "Inputs: ", export.Describe(batch))

	var timer export.Timer
	timer.Start()
	outputs, err := embedder.Embed(cmd.Context(), batch)
	if err != nil {
		return fmt.Errorf("run model: %w", err)
	}
	elapsed := timer.Stop()
	fmt.Fprintf(out, "Model finished in  %.3f seconds\n", elapsed.Seconds())
	fmt.Fprintln(out, "Outputs: ", export.Describe(outputs))
	logger.Debug("model run", "path", path, "half", half, "elapsed", elapsed)
	return nil
}
