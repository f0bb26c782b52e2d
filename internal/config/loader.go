package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Loader loads configuration from environment variables. Tests can override
// Lookup to inject deterministic maps.
type Loader struct {
	Lookup func(string) (string, bool)
}

// LoadDotEnv loads the given .env files (default ".env") into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return nil
}

// Load retrieves the driver configuration from environment variables.
func (l Loader) Load() (Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}

	cfg := Config{
		OutputDir: DefaultOutputDir,
		ModelName: DefaultModelName,
		LogLevel:  DefaultLogLevel,
		Limit:     DefaultLimit,
	}

	overrideString(l.Lookup, "CLAP_DATA_DIR", &cfg.DataDir)
	overrideString(l.Lookup, "CLAP_OUTPUT_DIR", &cfg.OutputDir)
	overrideString(l.Lookup, "CLAP_MODEL_NAME", &cfg.ModelName)
	overrideString(l.Lookup, "CLAP_MODEL_PATH", &cfg.ModelPath)
	overrideString(l.Lookup, "CLAP_EXTRACTOR_CONFIG", &cfg.ExtractorConfig)
	overrideString(l.Lookup, "CLAP_TOKENIZER_DIR", &cfg.TokenizerDir)
	overrideString(l.Lookup, "CLAP_LOG_LEVEL", &cfg.LogLevel)
	if err := overrideInt(l.Lookup, "CLAP_LIMIT", &cfg.Limit); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that have a fixed domain.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("config: limit %d is negative", c.Limit)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("config: output dir is empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q", level)
	}
	return l, nil
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideInt(lookup func(string) (string, bool), key string, target *int) error {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: invalid value for %s: %w", key, err)
		}
		*target = parsed
	}
	return nil
}
