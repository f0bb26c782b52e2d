// Command tomel converts audio files (WAV/FLAC) to CLAP log-mel spectrogram images (PNG).
//
// The audio is resampled to 48 kHz, repeat-padded to ten seconds and turned
// into the 64-band log-mel spectrogram the CLAP audio encoder consumes, one
// image column per 10 ms frame.
//
// Usage:
//
//	tomel <audio_file>
//
// The output PNG file will be named <audio_file>.png; a bare name is read
// as <name>.wav and written as <name>.png.
//
// Supported input formats: .wav, .flac
package main
