package storefs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-dbinfo/dbinfo"
)

// Info describes a file written to the store.
type Info struct {
	Key  string
	Path string
	Size int64
}

// Store writes export artifacts below a root directory. Keys are slash
// separated and can never resolve outside the root.
type Store struct {
	Root     string
	DirMode  os.FileMode
	FileMode os.FileMode
}

// NewStore creates a filesystem-backed artifact store.
func NewStore(root string) *Store {
	return &Store{Root: root, DirMode: 0o755, FileMode: 0o644}
}

// EnsureDir creates the directory for key. It is idempotent.
func (s *Store) EnsureDir(ctx context.Context, key string) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	dir, err := s.resolvePath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, s.dirMode()); err != nil {
		return "", dbinfo.NewError(dbinfo.KindWrite, fmt.Sprintf("cannot create directory %q", key), err)
	}
	return dir, nil
}

// Write streams fn's output to key. The file is written to a temporary file
// in the target directory and renamed into place, so readers never observe a
// partial artifact and a previous file with the same key is replaced.
func (s *Store) Write(ctx context.Context, key string, fn func(w io.Writer) error) (Info, error) {
	if err := s.check(ctx); err != nil {
		return Info{}, err
	}
	if fn == nil {
		return Info{}, dbinfo.NewError(dbinfo.KindValidation, "write function is required", nil)
	}

	pathOnDisk, err := s.resolvePath(key)
	if err != nil {
		return Info{}, err
	}

	dir := filepath.Dir(pathOnDisk)
	if err := os.MkdirAll(dir, s.dirMode()); err != nil {
		return Info{}, dbinfo.NewError(dbinfo.KindWrite, fmt.Sprintf("cannot create directory for %q", key), err)
	}

	tmp, err := os.CreateTemp(dir, ".dbinfo-*")
	if err != nil {
		return Info{}, dbinfo.NewError(dbinfo.KindWrite, fmt.Sprintf("cannot create %q", key), err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	cw := &countingWriter{w: tmp}
	if err := fn(cw); err != nil {
		if dbinfo.KindFromError(err) == dbinfo.KindInternal {
			return Info{}, dbinfo.NewError(dbinfo.KindWrite, fmt.Sprintf("cannot write %q", key), err)
		}
		return Info{}, err
	}
	if err := tmp.Sync(); err != nil {
		return Info{}, dbinfo.NewError(dbinfo.KindWrite, fmt.Sprintf("cannot sync %q", key), err)
	}
	if err := tmp.Close(); err != nil {
		return Info{}, dbinfo.NewError(dbinfo.KindWrite, fmt.Sprintf("cannot close %q", key), err)
	}
	if err := os.Chmod(tmp.Name(), s.fileMode()); err != nil {
		return Info{}, dbinfo.NewError(dbinfo.KindWrite, fmt.Sprintf("cannot set mode of %q", key), err)
	}
	if err := os.Rename(tmp.Name(), pathOnDisk); err != nil {
		return Info{}, dbinfo.NewError(dbinfo.KindWrite, fmt.Sprintf("cannot replace %q", key), err)
	}

	return Info{
		Key:  key,
		Path: pathOnDisk,
		Size: cw.count,
	}, nil
}

func (s *Store) check(ctx context.Context) error {
	if s == nil {
		return dbinfo.NewError(dbinfo.KindInternal, "store is nil", nil)
	}
	if s.Root == "" {
		return dbinfo.NewError(dbinfo.KindValidation, "store root is required", nil)
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return dbinfo.NewError(dbinfo.KindFromError(err), "store operation interrupted", err)
		}
	}
	return nil
}

func (s *Store) resolvePath(key string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(key))
	rel := strings.TrimPrefix(clean, "/")
	if rel == "" || rel == "." {
		return "", dbinfo.NewError(dbinfo.KindValidation, "invalid artifact key", nil)
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) && target != root {
		return "", dbinfo.NewError(dbinfo.KindValidation, "artifact key escapes root", nil)
	}
	return target, nil
}

func (s *Store) dirMode() os.FileMode {
	if s.DirMode == 0 {
		return 0o755
	}
	return s.DirMode
}

func (s *Store) fileMode() os.FileMode {
	if s.FileMode == 0 {
		return 0o644
	}
	return s.FileMode
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}
