// Package clap turns raw 48 kHz mono waveforms into the input batch of a
// CLAP audio encoder.
//
// A FeatureExtractor is built once from a Config; it precomputes two mel
// filter banks (HTK scale without normalization, and Slaney scale with
// Slaney normalization) and is safe for concurrent use afterwards.
// Extract forces every waveform to the configured maximum length with the
// configured padding policy, computes its log-mel spectrogram on the Slaney
// bank and returns the features together with per-example is_longer flags.
//
// The configuration can be saved to and loaded from a
// preprocessor_config.json directory, the layout used by pretrained
// processors, or loaded from an equivalent YAML file.
package clap
