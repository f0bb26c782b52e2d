// Command towav writes the waveform the CLAP feature extractor actually sees.
//
// The input is resampled to 48 kHz and padded to the ten second model window
// with the chosen policy (repeatpad by default), so the result can be
// listened to next to the tomel image of the same clip.
//
// Usage:
//
//	towav <audio_file> [repeatpad|repeat|pad]
//
// The output WAV file will be named <audio_file without extension>.clap.wav
package main
