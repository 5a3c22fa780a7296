package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"lynx/internal/core"
)

// ExportDir stores finished export files as <root>/<job id>/<filename>.
type ExportDir struct {
	root string
}

func NewExportDir(root string) *ExportDir {
	return &ExportDir{root: root}
}

// Write stores data for jobID, replacing any earlier file of the same name.
// The file is written to a temp name first so readers never see a partial file.
func (d *ExportDir) Write(jobID uuid.UUID, filename string, data []byte) (string, error) {
	dir := filepath.Join(d.root, jobID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(filename))
	tmp, err := os.CreateTemp(dir, ".partial-*")
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("move export file: %w", err)
	}
	return path, nil
}

// Find returns the finished file for jobID, or core.ErrNotFound while the
// job is still pending.
func (d *ExportDir) Find(jobID uuid.UUID) (string, error) {
	dir := filepath.Join(d.root, jobID.String())
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("export %s: %w", jobID, core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read export dir: %w", err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() && e.Name()[0] != '.' {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("export %s: %w", jobID, core.ErrNotFound)
}
