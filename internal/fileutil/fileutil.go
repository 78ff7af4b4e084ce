package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Written describes a completed atomic write.
type Written struct {
	Bytes  int64
	SHA256 string
}

// WriteFileAtomic writes data to a temp file beside path, then renames it
// into place. Readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	_, err := WriteStreamAtomic(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	return err
}

// WriteStreamAtomic streams fill into a temp file beside path and renames
// it into place once fill succeeds. On any failure the temp file is removed
// and an existing file at path is left untouched.
func WriteStreamAtomic(path string, perm os.FileMode, fill func(w io.Writer) error) (Written, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Written{}, fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return Written{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	hasher := sha256.New()
	counter := &countingWriter{w: io.MultiWriter(tmp, hasher)}
	if err := fill(counter); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Written{}, err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Written{}, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return Written{}, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return Written{}, fmt.Errorf("rename temp file: %w", err)
	}
	return Written{Bytes: counter.n, SHA256: hex.EncodeToString(hasher.Sum(nil))}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
