package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 256

// FileSystem loads templates from disk. Paths are resolved against the
// importing file's directory, or against the base path for top-level
// templates. File text is kept in an LRU cache; nothing compiled is cached.
type FileSystem struct {
	basepath string
	cache    *lru.Cache[string, *Source]
	logger   hclog.Logger
}

// NewFileSystem returns a loader rooted at basepath. A cacheSize <= 0 uses
// DefaultCacheSize.
func NewFileSystem(basepath string, cacheSize int, logger hclog.Logger) (*FileSystem, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	cache, err := lru.New[string, *Source](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create template cache: %w", err)
	}
	if basepath == "" {
		basepath = "."
	}
	return &FileSystem{
		basepath: basepath,
		cache:    cache,
		logger:   logger.Named("loader"),
	}, nil
}

func (l *FileSystem) Resolve(to, from string) string {
	if filepath.IsAbs(to) {
		return filepath.Clean(to)
	}
	base := l.basepath
	if from != "" {
		base = filepath.Dir(from)
	}
	return filepath.Join(base, to)
}

func (l *FileSystem) Load(path string) (*Source, error) {
	if src, ok := l.cache.Get(path); ok {
		l.logger.Trace("template cache hit", "path", path)
		return src, nil
	}

	buf, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	src := NewSource(path, string(buf))
	l.cache.Add(path, src)
	l.logger.Debug("loaded template", "path", path, "bytes", len(buf))
	return src, nil
}

// Purge drops all cached file text.
func (l *FileSystem) Purge() {
	l.cache.Purge()
}
