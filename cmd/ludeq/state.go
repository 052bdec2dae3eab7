package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/W47K3R9/LudEQ/dsp/eq"
)

func expandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("state file %q: %w", path, err)
	}

	return filepath.Clean(expanded), nil
}

// loadState restores store from path. A missing file leaves the defaults.
func loadState(store *eq.Store, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no state file, using defaults", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}

	if err := store.RestoreState(data); err != nil {
		return fmt.Errorf("state file %s: %w", path, err)
	}
	logger.Info("state loaded", "path", path)

	return nil
}

// saveState writes the store to path atomically, creating its directory.
func saveState(store *eq.Store, path string, logger *slog.Logger) error {
	data, err := store.MarshalState()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("save state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	logger.Info("state saved", "path", path)

	return nil
}

// applyOverrides applies --set values in key order. Keys are parameter
// names or slugs; values are anything ParamSpec.Parse accepts.
func applyOverrides(store *eq.Store, overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		spec, ok := eq.Lookup(key)
		if !ok {
			return fmt.Errorf("--set: unknown parameter %q", key)
		}

		v, err := spec.Parse(overrides[key])
		if err != nil {
			return fmt.Errorf("--set: %w", err)
		}
		store.Set(spec.ID, v)
	}

	return nil
}
