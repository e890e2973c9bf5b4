// Package fonts installs the fonts shipped in the config directory into the
// user's font path, so the scene renders with the faces it was designed
// around. Every failure here is a warning only; text falls back to whatever
// the system has.
package fonts

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const fontsSubdir = "fonts"

// Register installs every font file found under <configDir>/fonts that is
// not already present in the user's font directory.
func Register(configDir string, logger *slog.Logger) {
	srcDir := filepath.Join(configDir, fontsSubdir)
	entries, err := os.ReadDir(srcDir)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		logger.Warn("failed to read font directory", "dir", srcDir, "error", err)
		return
	}

	destDir, err := userFontDir()
	if err != nil {
		logger.Warn("failed to resolve user font directory", "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isFontFile(entry.Name()) {
			continue
		}
		src := filepath.Join(srcDir, entry.Name())
		installed, err := installFont(src, destDir)
		if err != nil {
			logger.Warn("failed to install font", "font", entry.Name(), "error", err)
			continue
		}
		if installed {
			logger.Info("font installed", "font", entry.Name())
		}
	}
}

func userFontDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "share", "fonts", "grefsen"), nil
}

func isFontFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".otf", ".ttf", ".pfb":
		return true
	}
	return false
}

// installFont copies src into destDir unless a file of the same name is
// already there. Reports whether a copy happened.
func installFont(src, destDir string) (bool, error) {
	dest := filepath.Join(destDir, filepath.Base(src))
	if _, err := os.Stat(dest); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return false, err
	}

	in, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return false, err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return false, err
	}
	return true, nil
}
