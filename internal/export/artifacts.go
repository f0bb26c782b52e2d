package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/neurlang/clapmel/clap"
)

const TokenizerConfigName = "tokenizer_config.json"

// TokenizerConfig is the subset of a pretrained tokenizer config the search
// side reads back.
type TokenizerConfig struct {
	ModelName      string `json:"name_or_path"`
	TokenizerClass string `json:"tokenizer_class"`
	ModelMaxLength int    `json:"model_max_length"`
	PaddingSide    string `json:"padding_side"`
	BOSToken       string `json:"bos_token"`
	EOSToken       string `json:"eos_token"`
	PadToken       string `json:"pad_token"`
	UnkToken       string `json:"unk_token"`
	MaskToken      string `json:"mask_token"`
	// SourceDir optionally holds tokenizer files (tokenizer.json, vocab.json,
	// merges.txt, ...) copied next to the config.
	SourceDir string `json:"-"`
}

// DefaultTokenizerConfig returns the RoBERTa tokenizer settings CLAP uses.
func DefaultTokenizerConfig(modelName string) TokenizerConfig {
	return TokenizerConfig{
		ModelName:      modelName,
		TokenizerClass: "RobertaTokenizer",
		ModelMaxLength: 512,
		PaddingSide:    "right",
		BOSToken:       "<s>",
		EOSToken:       "</s>",
		PadToken:       "<pad>",
		UnkToken:       "<unk>",
		MaskToken:      "<mask>",
	}
}

// SaveTokenizerConfig writes dir/tokenizer_config.json and copies the
// regular files of cfg.SourceDir into dir.
func SaveTokenizerConfig(dir string, cfg TokenizerConfig) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: create %s: %w", dir, err)
	}
	if cfg.SourceDir != "" {
		if err := copyFiles(cfg.SourceDir, dir); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("export: encode tokenizer config: %w", err)
	}
	path := filepath.Join(dir, TokenizerConfigName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

// SaveFeatureExtractor writes the extractor's preprocessor config into dir.
func SaveFeatureExtractor(dir string, fe *clap.FeatureExtractor) error {
	if err := fe.SavePretrained(dir); err != nil {
		return fmt.Errorf("export: save feature extractor: %w", err)
	}
	return nil
}

func copyFiles(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("export: read %s: %w", src, err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := copyFile(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("export: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("export: copy %s: %w", src, err)
	}
	return out.Close()
}
