package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNoTemplates is returned when the given paths yield no files.
var ErrNoTemplates = errors.New("no template files found")

// UnsupportedInputError reports an input path that is neither a regular file
// nor a directory (symlinks, sockets, devices).
type UnsupportedInputError struct {
	Path string
	Mode fs.FileMode
}

func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("%s: cannot handle file type %s", e.Path, e.Mode.Type())
}

// CollectPaths expands the command line paths into template files. Regular
// files are taken as given; directories contribute the entries matching
// patterns, without descending into subdirectories. Argument order is kept
// and duplicates are dropped.
func CollectPaths(ctx context.Context, paths, patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		key := filepath.Clean(path)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Lstat(p)
		if err != nil {
			return nil, err
		}
		switch {
		case info.Mode().IsRegular():
			addFile(p)
		case info.IsDir():
			for _, pattern := range patterns {
				matches, err := filepath.Glob(filepath.Join(globEscape(p), pattern))
				if err != nil {
					return nil, fmt.Errorf("template pattern %q: %w", pattern, err)
				}
				for _, m := range matches {
					if st, err := os.Lstat(m); err == nil && st.Mode().IsRegular() {
						addFile(m)
					}
				}
			}
		default:
			return nil, &UnsupportedInputError{Path: p, Mode: info.Mode()}
		}
	}
	return files, nil
}

// globEscape quotes the pattern metacharacters of a directory name.
func globEscape(dir string) string {
	out := make([]byte, 0, len(dir))
	for i := 0; i < len(dir); i++ {
		switch c := dir[i]; c {
		case '*', '?', '[', '\\':
			if c == '\\' && filepath.Separator == '\\' {
				out = append(out, c)
				continue
			}
			out = append(out, '\\', c)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
