package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/domain"
)

// File is a media file available to question responses
type File struct {
	Name         string              `json:"name"`
	Kind         domain.ResponseKind `json:"kind"`
	RelativePath string              `json:"relative_path"`
	AbsolutePath string              `json:"absolute_path"`
	Size         int64               `json:"size"`
}

// Library is the media directory, with one subdirectory per media kind
type Library struct {
	root   string
	logger *zap.Logger
}

// NewLibrary opens the media directory, creating the kind subdirectories
func NewLibrary(root string, logger *zap.Logger) (*Library, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media directory: %w", err)
	}

	for _, kind := range domain.MediaKinds {
		dir := filepath.Join(abs, string(kind))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
		}
	}

	return &Library{root: abs, logger: logger}, nil
}

// Resolve returns the absolute path of a stored media path. Relative paths
// are tried against the library root first, then the working directory.
func (l *Library) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	inRoot := filepath.Join(l.root, path)
	if isFile(inRoot) {
		return inRoot
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return inRoot
	}
	return abs
}

// Exists reports whether path names a regular file
func (l *Library) Exists(path string) bool {
	if path == "" {
		return false
	}
	return isFile(l.Resolve(path))
}

// List returns the files of one media kind sorted by name
func (l *Library) List(kind domain.ResponseKind) ([]File, error) {
	if !kind.IsMedia() {
		return nil, fmt.Errorf("not a media kind: %s", kind)
	}

	dir := filepath.Join(l.root, string(kind))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []File{}, nil
		}
		return nil, fmt.Errorf("failed to list %s media: %w", kind, err)
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			l.logger.Warn("Failed to stat media file", zap.String("name", entry.Name()), zap.Error(err))
			continue
		}
		files = append(files, File{
			Name:         entry.Name(),
			Kind:         kind,
			RelativePath: filepath.ToSlash(filepath.Join(string(kind), entry.Name())),
			AbsolutePath: filepath.Join(dir, entry.Name()),
			Size:         info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ListAll returns the files of every media kind
func (l *Library) ListAll() (map[domain.ResponseKind][]File, error) {
	all := make(map[domain.ResponseKind][]File, len(domain.MediaKinds))
	for _, kind := range domain.MediaKinds {
		files, err := l.List(kind)
		if err != nil {
			return nil, err
		}
		all[kind] = files
	}
	return all, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
