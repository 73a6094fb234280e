package writeback

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

const tempPrefix = ".agentstack-write-"

// ReadFile reads name from fsys, mapping a missing file to ErrNotFound.
func ReadFile(fsys billy.Filesystem, name string) ([]byte, error) {
	data, err := util.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFound(name)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Replace writes data over name. The content is validated first, then
// written to a temp file in the same directory and renamed into place, so
// a failed write leaves the previous file untouched.
func Replace(fsys billy.Filesystem, name string, data []byte) error {
	if err := Validate(data, name); err != nil {
		return err
	}

	dir := path.Dir(name)
	if dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	tmp, err := util.TempFile(fsys, dir, tempPrefix)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if s, ok := tmp.(interface{ Sync() error }); ok {
		if err := s.Sync(); err != nil {
			_ = tmp.Close()
			_ = fsys.Remove(tmpName) // best-effort cleanup
			return fmt.Errorf("sync temp: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	// Keep the permissions of the file being replaced.
	mode := fs.FileMode(0o644)
	if info, err := fsys.Stat(name); err == nil {
		mode = info.Mode().Perm()
	}
	if ch, ok := fsys.(billy.Chmod); ok {
		_ = ch.Chmod(tmpName, mode) // best-effort permission sync
	}

	if err := fsys.Rename(tmpName, name); err != nil {
		_ = fsys.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", name, err)
	}
	return nil
}
