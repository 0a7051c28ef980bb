package edmv

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

const dirPerm = 0o755

// fileSystem is the set of calls the executor makes; tests swap it to inject
// failures.
type fileSystem interface {
	Rename(from, to string) error
	Remove(path string) error
	Mkdir(path string, perm fs.FileMode) error
	Stat(path string) (fs.FileInfo, error)
	Lstat(path string) (fs.FileInfo, error)
	Open(path string) (*os.File, error)
	CreateTemp(dir, pattern string) (*os.File, error)
}

type osFS struct{}

func (osFS) Rename(from, to string) error              { return os.Rename(from, to) }
func (osFS) Remove(path string) error                  { return os.Remove(path) }
func (osFS) Mkdir(path string, perm fs.FileMode) error { return os.Mkdir(path, perm) }
func (osFS) Stat(path string) (fs.FileInfo, error)     { return os.Stat(path) }
func (osFS) Lstat(path string) (fs.FileInfo, error)    { return os.Lstat(path) }
func (osFS) Open(path string) (*os.File, error)        { return os.Open(path) }
func (osFS) CreateTemp(dir, pattern string) (*os.File, error) {
	return os.CreateTemp(dir, pattern)
}

type PathResolver struct {
	wd string
}

func NewPathResolver() (*PathResolver, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not get current working directory: %w", err)
	}
	return &PathResolver{wd: wd}, nil
}

// Resolve returns the absolute, lexically cleaned form of path. Symlinks are
// not followed and case is kept.
func (r *PathResolver) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.wd, path)
}

// makeParents creates dir and its missing ancestors. It returns the
// directories it created, outermost first, including on error so they can be
// removed again. An existing directory is not an error.
func makeParents(fsys fileSystem, dir string) ([]string, error) {
	var missing []string
	for d := filepath.Clean(dir); ; {
		info, err := fsys.Stat(d)
		if err == nil {
			if !info.IsDir() {
				return nil, &fs.PathError{Op: "mkdir", Path: d, Err: syscall.ENOTDIR}
			}
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		missing = append(missing, d)

		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}

	var created []string
	for i := len(missing) - 1; i >= 0; i-- {
		d := missing[i]
		if err := fsys.Mkdir(d, dirPerm); err != nil {
			if errors.Is(err, fs.ErrExist) {
				if info, serr := fsys.Stat(d); serr == nil && info.IsDir() {
					continue
				}
			}
			return created, err
		}
		created = append(created, d)
	}
	return created, nil
}

// move renames from to to. When the two are on different filesystems a
// regular file is copied next to to, renamed over it and the original is
// removed. Directories and other special files are not copied.
func move(fsys fileSystem, from, to string) error {
	err := fsys.Rename(from, to)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	info, lerr := fsys.Lstat(from)
	if lerr != nil || !info.Mode().IsRegular() {
		return err
	}
	if err := copyInto(fsys, from, to, info.Mode().Perm()); err != nil {
		return err
	}
	if err := fsys.Remove(from); err != nil {
		_ = fsys.Remove(to)
		return err
	}
	return nil
}

// copyInto writes a copy of from to a temporary file in the directory of to
// and renames it into place, so to is either untouched or complete.
func copyInto(fsys fileSystem, from, to string, perm fs.FileMode) (err error) {
	src, err := fsys.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := fsys.CreateTemp(filepath.Dir(to), "."+programTag+"-copy-*")
	if err != nil {
		return err
	}
	tmp := dst.Name()
	defer func() {
		if err != nil {
			_ = dst.Close()
			_ = fsys.Remove(tmp)
		}
	}()

	if _, err = io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy %q to %q: %w", from, to, err)
	}
	if err = dst.Chmod(perm); err != nil {
		return err
	}
	if err = dst.Sync(); err != nil {
		return err
	}
	if err = dst.Close(); err != nil {
		return err
	}
	return fsys.Rename(tmp, to)
}
