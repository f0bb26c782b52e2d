// Command clapexport prepares the preprocessing side of a CLAP audio search
// model.
//
// It loads a batch of audio clips, runs the CLAP log-mel feature extractor
// over them, prints the shapes at every stage, saves the tokenizer and
// feature extractor configs to timestamped directories and, when given an
// ONNX audio encoder, times one forward pass.
//
// Usage:
//
//	clapexport run --data <dir> [--limit 32] [--out onnx_models] [--model audio.onnx] [--config extractor.yaml] [--half] [--require-full-length]
//	clapexport shapes <audio_file>...
//
// Flags override the CLAP_* environment variables, which may also come from
// a .env file in the working directory.
package main
