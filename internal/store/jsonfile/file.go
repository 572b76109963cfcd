// Package jsonfile provides JSON file-based stores for the client's durable
// local state.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// errEmpty is returned by readJSON when the file is missing or empty.
var errEmpty = errors.New("file is empty")

// file is a single JSON document on disk guarded by an advisory lock so
// several shop processes can share a data directory.
type file struct {
	path string
}

// lockPath returns the path to the lock file.
func (f file) lockPath() string {
	return f.path + ".lock"
}

// withSharedLock executes fn while holding a shared (read) file lock.
// Multiple processes can hold shared locks simultaneously.
func (f file) withSharedLock(fn func() error) error {
	return f.withFileLock(syscall.LOCK_SH, fn)
}

// withExclusiveLock executes fn while holding an exclusive (write) file lock.
func (f file) withExclusiveLock(fn func() error) error {
	return f.withFileLock(syscall.LOCK_EX, fn)
}

// withFileLock acquires a file lock, executes fn, then releases the lock.
func (f file) withFileLock(lockType int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	lf, err := os.OpenFile(f.lockPath(), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lf.Close() //nolint:errcheck

	if err := syscall.Flock(int(lf.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer syscall.Flock(int(lf.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// readJSON decodes the file into v. Returns errEmpty if the file doesn't
// exist or has no content.
func (f file) readJSON(v any) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return errEmpty
		}
		return fmt.Errorf("read %s: %w", filepath.Base(f.path), err)
	}

	if len(data) == 0 {
		return errEmpty
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(f.path), err)
	}

	return nil
}

// writeJSON writes v to disk atomically.
// Uses write-to-temp-then-rename to prevent corruption from interrupted writes.
func (f file) writeJSON(v any, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(f.path), err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp) // best effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// remove deletes the file. A missing file is not an error.
func (f file) remove() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", filepath.Base(f.path), err)
	}
	return nil
}
