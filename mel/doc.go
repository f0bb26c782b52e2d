// Package mel provides log-mel spectrogram extraction for model input features.
//
// This package implements the signal-processing half of audio feature
// extraction, matching the conventions of the common STFT-based
// mel-spectrogram pipelines used to train audio encoders. It supports:
//   - Triangular mel filter banks on the HTK or Slaney mel scale, with
//     optional Slaney area normalization
//   - Centered (reflect-padded) STFT with a periodic Hann window and a
//     power spectrum, projected onto a filter bank and converted to decibels
//   - Loading mono WAV/FLAC audio and rendering spectrograms as PNG images
//     or half-precision buffers
package mel
