//go:build onnx

package model

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// resolveORTLibPath returns the path to the ONNX Runtime shared library:
// CLAP_ORT_LIB_PATH when set, otherwise lib/<goos>-<goarch>/ or
// ../lib/<goos>-<goarch>/ next to the executable.
func resolveORTLibPath() (string, error) {
	if envPath := os.Getenv("CLAP_ORT_LIB_PATH"); envPath != "" {
		info, err := os.Stat(envPath)
		if err != nil {
			return "", fmt.Errorf("ort: CLAP_ORT_LIB_PATH=%q does not exist", envPath)
		}
		if info.IsDir() {
			return "", fmt.Errorf("ort: CLAP_ORT_LIB_PATH=%q is a directory, expected a file", envPath)
		}
		return envPath, nil
	}

	filename := ortLibFilename()
	platform := runtime.GOOS + "-" + runtime.GOARCH
	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		for _, rel := range []string{
			filepath.Join("lib", platform, filename),
			filepath.Join("..", "lib", platform, filename),
		} {
			path := filepath.Join(exeDir, rel)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("ort: shared library not found; searched lib/%s/%s relative to executable (set CLAP_ORT_LIB_PATH to override)", platform, filename)
}

func ortLibFilename() string {
	switch runtime.GOOS {
	case "darwin":
		return "libonnxruntime.dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "libonnxruntime.so"
	}
}
