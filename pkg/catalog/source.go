package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Source supplies catalog documents.
type Source interface {
	// Load returns every document. Documents are returned in a stable
	// order so that duplicate detection is deterministic.
	Load(ctx context.Context) ([]*Document, error)
}

// FileSource loads documents from a YAML file or a directory tree of
// .yaml and .yml files. Hidden files and directories are skipped.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a file-based source rooted at path.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger,
	}
}

// Path returns the configured file or directory.
func (s *FileSource) Path() string {
	return s.path
}

// Load reads every document under the configured path. A single
// unreadable or malformed file fails the whole load.
func (s *FileSource) Load(ctx context.Context) ([]*Document, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, &LoadError{Path: s.path, Cause: err}
	}

	files := []string{s.path}
	if info.IsDir() {
		if files, err = s.listFiles(); err != nil {
			return nil, err
		}
	}

	var docs []*Document
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return nil, &LoadError{Path: file, Cause: err}
		}
		fileDocs, err := Decode(data, file)
		if err != nil {
			return nil, err
		}

		s.logger.Debug("loaded catalog file",
			"path", file,
			"documents", len(fileDocs),
		)
		docs = append(docs, fileDocs...)
	}

	return docs, nil
}

// listFiles walks the directory in lexical order.
func (s *FileSource) listFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != s.path && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && isYAML(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{Path: s.path, Cause: fmt.Errorf("failed to walk directory: %w", err)}
	}
	return files, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// MemorySource is an in-memory source for tests and embedded catalogs.
type MemorySource struct {
	mu   sync.RWMutex
	docs []*Document
}

// NewMemorySource creates a source serving docs.
func NewMemorySource(docs ...*Document) *MemorySource {
	return &MemorySource{docs: docs}
}

// Load returns a copy of the stored documents.
func (s *MemorySource) Load(context.Context) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*Document, len(s.docs))
	copy(docs, s.docs)
	return docs, nil
}

// SetDocuments replaces the stored documents.
func (s *MemorySource) SetDocuments(docs ...*Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = docs
}
