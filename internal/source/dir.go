package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/daye10/textsearch/pkg/errors"
)

// Dir reads one document per file from a directory: filename is the
// document ID, file contents (UTF-8) are the body. Only files with the
// configured extension are indexed; everything else is ignored.
type Dir struct {
	dir   string
	files []string
	pos   int
}

// NewDir lists the directory eagerly so a missing location fails at open
// time rather than mid-scan. Files are scanned in sorted filename order.
func NewDir(dir string, extension string) (*Dir, error) {
	if extension == "" {
		extension = ".txt"
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Newf(apperrors.ErrSourceNotFound, 404, "directory %s does not exist", dir)
		}
		return nil, fmt.Errorf("listing directory %s: %w", dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), extension) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return &Dir{dir: dir, files: files}, nil
}

// Len returns the number of matching files discovered at open time.
func (d *Dir) Len() int {
	return len(d.files)
}

// Next implements Source. A file that cannot be read is reported as a
// *DocError and the scan continues with the following file.
func (d *Dir) Next(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if d.pos >= len(d.files) {
		return Document{}, io.EOF
	}
	name := d.files[d.pos]
	d.pos++

	data, err := os.ReadFile(filepath.Join(d.dir, name))
	if err != nil {
		return Document{}, &DocError{ID: name, Err: err}
	}
	return Document{ID: name, Body: string(data)}, nil
}
