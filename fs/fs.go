// Package fs provides file-system helpers for run output.
package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/thumbcrawl"
)

// exists reports whether anything is present at path.
func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// WriteFile writes the output of write to path atomically.
// Content is written to a temporary file in the same directory and renamed
// onto path once write succeeds, so a failed write leaves no partial file.
// The file is created with mode 0644. Failures carry EIO.
func WriteFile(path string, write func(w io.Writer) error) (n int64, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, thumbcrawl.Wrapf(err, thumbcrawl.EIO, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".thumbcrawl-*.tmp")
	if err != nil {
		return 0, thumbcrawl.Wrapf(err, thumbcrawl.EIO, "create temporary file for %s", path)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	cw := &countingWriter{w: tmp}
	if err := write(cw); err != nil {
		if thumbcrawl.ErrorCode(err) != thumbcrawl.EINTERNAL {
			return 0, err
		}
		return 0, thumbcrawl.Wrapf(err, thumbcrawl.EIO, "write %s", path)
	}
	if err := tmp.Chmod(0644); err != nil {
		return 0, thumbcrawl.Wrapf(err, thumbcrawl.EIO, "chmod %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return 0, thumbcrawl.Wrapf(err, thumbcrawl.EIO, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, thumbcrawl.Wrapf(err, thumbcrawl.EIO, "rename onto %s", path)
	}
	return cw.n, nil
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
