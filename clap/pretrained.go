package clap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"
)

// ConfigName is the file a pretrained feature extractor directory holds.
const ConfigName = "preprocessor_config.json"

const (
	featureExtractorType = "ClapFeatureExtractor"
	processorClass       = "ClapProcessor"
)

type pretrainedConfig struct {
	FeatureExtractorType string     `json:"feature_extractor_type"`
	ProcessorClass       string     `json:"processor_class"`
	FeatureSize          int        `json:"feature_size"`
	SamplingRate         int        `json:"sampling_rate"`
	HopLength            int        `json:"hop_length"`
	MaxLengthS           int        `json:"max_length_s"`
	FFTWindowSize        int        `json:"fft_window_size"`
	PaddingValue         float64    `json:"padding_value"`
	ReturnAttentionMask  bool       `json:"return_attention_mask"`
	FrequencyMin         float64    `json:"frequency_min"`
	FrequencyMax         float64    `json:"frequency_max"`
	TopDB                *float64   `json:"top_db"`
	Truncation           Truncation `json:"truncation"`
	Padding              Padding    `json:"padding"`
	NbFrequencyBins      int        `json:"nb_frequency_bins"`
	NbMaxSamples         int        `json:"nb_max_samples"`
	PaddingSide          string     `json:"padding_side"`
	RequireFullLength    bool       `json:"require_full_length,omitempty"`
}

// yamlConfig mirrors the JSON keys; nil fields keep their defaults.
type yamlConfig struct {
	FeatureSize         *int     `yaml:"feature_size"`
	SamplingRate        *int     `yaml:"sampling_rate"`
	HopLength           *int     `yaml:"hop_length"`
	MaxLengthS          *int     `yaml:"max_length_s"`
	FFTWindowSize       *int     `yaml:"fft_window_size"`
	PaddingValue        *float64 `yaml:"padding_value"`
	ReturnAttentionMask *bool    `yaml:"return_attention_mask"`
	FrequencyMin        *float64 `yaml:"frequency_min"`
	FrequencyMax        *float64 `yaml:"frequency_max"`
	TopDB               *float64 `yaml:"top_db"`
	Truncation          *string  `yaml:"truncation"`
	Padding             *string  `yaml:"padding"`
	RequireFullLength   *bool    `yaml:"require_full_length"`
}

// SavePretrained writes the extractor configuration to dir/preprocessor_config.json,
// creating dir if needed.
func (fe *FeatureExtractor) SavePretrained(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("clap: create %s: %w", dir, err)
	}

	cfg := fe.cfg
	data, err := json.MarshalIndent(pretrainedConfig{
		FeatureExtractorType: featureExtractorType,
		ProcessorClass:       processorClass,
		FeatureSize:          cfg.FeatureSize,
		SamplingRate:         cfg.SamplingRate,
		HopLength:            cfg.HopLength,
		MaxLengthS:           cfg.MaxLengthS,
		FFTWindowSize:        cfg.FFTWindowSize,
		PaddingValue:         cfg.PaddingValue,
		ReturnAttentionMask:  cfg.ReturnAttentionMask,
		FrequencyMin:         cfg.FrequencyMin,
		FrequencyMax:         cfg.FrequencyMax,
		TopDB:                cfg.TopDB,
		Truncation:           cfg.Truncation,
		Padding:              cfg.Padding,
		NbFrequencyBins:      cfg.NbFrequencyBins(),
		NbMaxSamples:         cfg.NbMaxSamples(),
		PaddingSide:          "right",
		RequireFullLength:    cfg.RequireFullLength,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("clap: encode config: %w", err)
	}

	path := filepath.Join(dir, ConfigName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("clap: write %s: %w", path, err)
	}
	return nil
}

// LoadPretrained reads dir/preprocessor_config.json.
func LoadPretrained(dir string) (Config, error) {
	return LoadConfig(filepath.Join(dir, ConfigName))
}

// LoadConfig reads an extractor configuration from a JSON or YAML file,
// chosen by extension. Keys that are absent keep their DefaultConfig value
// and unknown keys are ignored. The result is validated.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("clap: read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	default:
		cfg, err = parseJSON(data)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseJSON(data []byte) (Config, error) {
	if !gjson.ValidBytes(data) {
		return Config{}, fmt.Errorf("malformed json")
	}
	cfg := DefaultConfig()
	doc := gjson.ParseBytes(data)

	if v := doc.Get("feature_extractor_type"); v.Exists() && v.String() != featureExtractorType {
		return Config{}, fmt.Errorf("feature_extractor_type %q", v.String())
	}

	setInt := func(key string, target *int) {
		if v := doc.Get(key); v.Exists() {
			*target = int(v.Int())
		}
	}
	setFloat := func(key string, target *float64) {
		if v := doc.Get(key); v.Exists() {
			*target = v.Float()
		}
	}

	setInt("feature_size", &cfg.FeatureSize)
	setInt("sampling_rate", &cfg.SamplingRate)
	setInt("hop_length", &cfg.HopLength)
	setInt("max_length_s", &cfg.MaxLengthS)
	setInt("fft_window_size", &cfg.FFTWindowSize)
	setFloat("padding_value", &cfg.PaddingValue)
	setFloat("frequency_min", &cfg.FrequencyMin)
	setFloat("frequency_max", &cfg.FrequencyMax)
	if v := doc.Get("return_attention_mask"); v.Exists() {
		cfg.ReturnAttentionMask = v.Bool()
	}
	if v := doc.Get("top_db"); v.Exists() && v.Type != gjson.Null {
		topDB := v.Float()
		cfg.TopDB = &topDB
	}
	if v := doc.Get("truncation"); v.Exists() {
		cfg.Truncation = Truncation(v.String())
	}
	if v := doc.Get("padding"); v.Exists() {
		cfg.Padding = Padding(v.String())
	}
	if v := doc.Get("require_full_length"); v.Exists() {
		cfg.RequireFullLength = v.Bool()
	}
	return cfg, nil
}

func parseYAML(data []byte) (Config, error) {
	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if y.FeatureSize != nil {
		cfg.FeatureSize = *y.FeatureSize
	}
	if y.SamplingRate != nil {
		cfg.SamplingRate = *y.SamplingRate
	}
	if y.HopLength != nil {
		cfg.HopLength = *y.HopLength
	}
	if y.MaxLengthS != nil {
		cfg.MaxLengthS = *y.MaxLengthS
	}
	if y.FFTWindowSize != nil {
		cfg.FFTWindowSize = *y.FFTWindowSize
	}
	if y.PaddingValue != nil {
		cfg.PaddingValue = *y.PaddingValue
	}
	if y.ReturnAttentionMask != nil {
		cfg.ReturnAttentionMask = *y.ReturnAttentionMask
	}
	if y.FrequencyMin != nil {
		cfg.FrequencyMin = *y.FrequencyMin
	}
	if y.FrequencyMax != nil {
		cfg.FrequencyMax = *y.FrequencyMax
	}
	cfg.TopDB = y.TopDB
	if y.Truncation != nil {
		cfg.Truncation = Truncation(*y.Truncation)
	}
	if y.Padding != nil {
		cfg.Padding = Padding(*y.Padding)
	}
	if y.RequireFullLength != nil {
		cfg.RequireFullLength = *y.RequireFullLength
	}
	return cfg, nil
}
