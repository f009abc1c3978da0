package filelinked

import (
	"errors"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
)

type writeOpts struct {
	perm   fs.FileMode
	sync   bool
	atomic bool
}

// writeFile replaces the content of path with data.
func writeFile(path string, data []byte, o writeOpts) error {
	if o.atomic {
		return writeAtomic(path, data, o)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, o.perm)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if o.sync {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return &IOError{Op: "sync", Path: path, Err: err}
		}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// writeAtomic writes to a temp file in the target directory and renames it
// over path, so path holds either the old or the new content.
// Symlinks are followed: the rename replaces the file the link points to.
// A new file gets perm filtered by the umask; an existing file keeps its mode.
func writeAtomic(path string, data []byte, o writeOpts) (err error) {
	target, err := resolveTarget(path)
	if err != nil {
		return err
	}
	existing := fs.FileMode(0)
	if fi, serr := os.Stat(target); serr == nil {
		existing = fi.Mode().Perm()
	}

	dir, base := filepath.Split(target)
	if dir == "" {
		dir = "."
	}
	f, tmp, err := createTemp(dir, base, coalesce(existing, o.perm))
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if o.sync {
		if err = f.Sync(); err != nil {
			_ = f.Close()
			return &IOError{Op: "sync", Path: path, Err: err}
		}
	}
	if err = f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	// umask may have narrowed the mode of an existing file's replacement
	if existing != 0 {
		if err = os.Chmod(tmp, existing); err != nil {
			return &IOError{Op: "chmod", Path: path, Err: err}
		}
	}
	if err = os.Rename(tmp, target); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// resolveTarget follows symlinks in path. A path that does not exist yet is
// returned unchanged; a dangling link resolves to the file it names.
func resolveTarget(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", &IOError{Op: "stat", Path: path, Err: err}
	}
	for hops := 0; hops < 255; hops++ {
		fi, lerr := os.Lstat(path)
		if lerr != nil || fi.Mode()&fs.ModeSymlink == 0 {
			return path, nil
		}
		link, rerr := os.Readlink(path)
		if rerr != nil {
			return "", &IOError{Op: "stat", Path: path, Err: rerr}
		}
		if !filepath.IsAbs(link) {
			link = filepath.Join(filepath.Dir(path), link)
		}
		path = link
	}
	return "", &IOError{Op: "stat", Path: path, Err: errors.New("too many levels of symbolic links")}
}

// createTemp opens a fresh file next to base with O_EXCL. Unlike
// os.CreateTemp the mode is perm, so the process umask applies.
func createTemp(dir, base string, perm fs.FileMode) (*os.File, string, error) {
	for try := 0; ; try++ {
		name := filepath.Join(dir, "."+base+".tmp-"+strconv.FormatUint(rand.Uint64(), 36))
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if errors.Is(err, fs.ErrExist) && try < 100 {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return f, name, nil
	}
}

func readFile(path string) ([]byte, error) {
	exists, err := statRegular(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &IOError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return b, nil
}

// statRegular reports whether path is an existing regular file. A missing
// path is (false, nil); anything else that is not a regular file is an error.
func statRegular(path string) (bool, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &IOError{Op: "stat", Path: path, Err: err}
	}
	if !fi.Mode().IsRegular() {
		return false, &IOError{Op: "stat", Path: path, Err: ErrNotRegular}
	}
	return true, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}
