package match

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rowmatch/internal/logger"
)

// desktopDir is where a result is saved when the requested folder fails.
var desktopDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Desktop"), nil
}

// TimestampedPath turns "out/result.xlsx" into "out/result_20250502_143000.xlsx".
// A doubled dot in the file name collapses to one and a missing .xlsx
// extension is added.
func TimestampedPath(path string, now time.Time) string {
	dir, name := filepath.Split(path)
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	path = dir + name
	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, ".xlsx") {
		path += ".xlsx"
		ext = ".xlsx"
	}
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%s%s", base, now.Format("20060102_150405"), ext)
}

type workbookSaver interface {
	SaveAs(path string) error
}

// SaveWithFallback saves to path and, if that fails and fallback is set,
// retries once on the user's desktop. It returns the path actually written.
func SaveWithFallback(w workbookSaver, path string, fallback bool) (string, error) {
	err := w.SaveAs(path)
	if err == nil {
		return path, nil
	}
	if !fallback {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}

	logger.Warn("Saving failed, retrying on desktop", "path", path, "error", err)

	dir, dirErr := desktopDir()
	if dirErr != nil {
		return "", errors.Join(fmt.Errorf("failed to save %s: %w", path, err), dirErr)
	}
	desktopPath := filepath.Join(dir, filepath.Base(path))
	if retryErr := w.SaveAs(desktopPath); retryErr != nil {
		return "", errors.Join(
			fmt.Errorf("failed to save %s: %w", path, err),
			fmt.Errorf("failed to save %s: %w", desktopPath, retryErr),
		)
	}
	return desktopPath, nil
}
