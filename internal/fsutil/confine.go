// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsutil keeps files written on behalf of remote data inside their
// configured directory.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot reports a path that would resolve outside its root.
var ErrOutsideRoot = errors.New("path escapes root")

// ConfineRelPath joins root and rel and verifies the result stays under the
// symlink-resolved root. rel must be relative and free of backslashes.
// The target itself does not need to exist. The returned path is rooted at
// the absolute form of root as given.
func ConfineRelPath(root, rel string) (string, error) {
	if strings.Contains(rel, `\`) {
		return "", fmt.Errorf("%w: backslash in %q", ErrOutsideRoot, rel)
	}
	clean := filepath.Clean(rel)
	if clean == "." || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %q is not a relative file path", ErrOutsideRoot, rel)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: traversal in %q", ErrOutsideRoot, rel)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}

	real, err := resolve(filepath.Join(realRoot, clean))
	if err != nil {
		return "", err
	}
	r, err := filepath.Rel(realRoot, real)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	return filepath.Join(absRoot, clean), nil
}

// resolve follows symlinks of an existing path, or of its parent when the
// path does not exist yet.
func resolve(full string) (string, error) {
	if _, err := os.Lstat(full); err == nil {
		rp, err := filepath.EvalSymlinks(full)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", full, err)
		}
		return rp, nil
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(full))
	if err != nil {
		return "", fmt.Errorf("resolve parent of %s: %w", full, err)
	}
	return filepath.Join(dir, filepath.Base(full)), nil
}

// IsRegularFile reports whether path exists and is a regular file. Symlinks
// are followed.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
