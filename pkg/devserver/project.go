package devserver

import (
	"os"
	"path/filepath"
)

// ConfigMarkers are the file names identifying a Vite project root.
var ConfigMarkers = []string{
	"vite.config.ts",
	"vite.config.js",
	"vite.config.mts",
	"vite.config.mjs",
}

// FindProjectDir walks from the current directory upwards and returns the
// first directory containing one of ConfigMarkers, or "." if none does.
func FindProjectDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	if dir, ok := findProjectDirFrom(cwd); ok {
		return dir
	}
	return "."
}

func findProjectDirFrom(start string) (string, bool) {
	dir := filepath.Clean(start)
	for {
		for _, marker := range ConfigMarkers {
			if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && !info.IsDir() {
				return dir, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
