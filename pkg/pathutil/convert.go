// Package pathutil converts between the absolute paths the watcher works
// with and the relative paths shown to users.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/conf/app.yaml", "/home/user/project") → "conf/app.yaml"
//   - ToRelative("/etc/app.json", "/home/user/project") → "/etc/app.json" (outside root)
//   - ToRelative("conf/app.yaml", "/home/user/project") → "conf/app.yaml" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// e.g. different drives on Windows
		return absPath
	}

	// outside the root the absolute path is clearer
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}
	return relPath
}

// ToRelativeWD is ToRelative against the current working directory.
func ToRelativeWD(absPath string) string {
	wd, err := os.Getwd()
	if err != nil {
		return absPath
	}
	return ToRelative(absPath, wd)
}

// ToRelativeAll converts every path, returning a new slice.
func ToRelativeAll(paths []string, rootDir string) []string {
	if len(paths) == 0 {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = ToRelative(p, rootDir)
	}
	return out
}
