// Package corpus loads the source corpus from disk into normalized documents.
//
// The corpus root holds one subfolder per source type (quran, hadith, scholar,
// aaoifi); a file's parent folder name decides its source type. Only .txt and
// .pdf files are read.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/sanad/internal/extract"
	"github.com/hyperjump/sanad/internal/models"
	"github.com/hyperjump/sanad/pkg/utils"
	"go.uber.org/zap"
)

// Loader reads corpus files into documents.
type Loader struct {
	extractor *extract.Extractor
	logger    *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for per-file progress and skipped files.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// NewLoader creates a loader using the given extractor.
func NewLoader(extractor *extract.Extractor, opts ...LoaderOption) *Loader {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	ld := &Loader{extractor: extractor}
	for _, opt := range opts {
		opt(ld)
	}
	ld.logger = utils.OrNop(ld.logger)
	return ld
}

// SourceTypeFor returns the source type implied by path's parent folder and
// whether it is one of the corpus source types.
func SourceTypeFor(path string) (models.SourceType, bool) {
	st := models.SourceType(strings.ToLower(filepath.Base(filepath.Dir(path))))
	for _, known := range models.CorpusSourceTypes {
		if st == known {
			return st, true
		}
	}
	return st, false
}

// Load walks dir recursively and returns every document found. Unreadable,
// empty, or misplaced files are logged and skipped. An error is returned only
// when dir itself cannot be walked.
func (ld *Loader) Load(dir string) ([]models.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat corpus directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}
	var docs []models.Document
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !extract.Supported(path) {
			return nil
		}
		fileDocs, err := ld.LoadFile(dir, path)
		if err != nil {
			ld.logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
			return nil
		}
		docs = append(docs, fileDocs...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus: %w", err)
	}
	ld.logger.Info("documents loaded", zap.Int("documents", len(docs)))
	return docs, nil
}

// LoadFile reads a single corpus file below root. Quran pipe-format text files yield one
// document per verse; every other file yields one document, or none when empty.
func (ld *Loader) LoadFile(root, path string) ([]models.Document, error) {
	if !extract.Supported(path) {
		return nil, fmt.Errorf("%w: %s", extract.ErrUnsupportedFormat, filepath.Base(path))
	}
	sourceType, ok := SourceTypeFor(path)
	if !ok {
		return nil, fmt.Errorf("folder %q is not a corpus source type", sourceType)
	}
	text, err := ld.extractor.Extract(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	rel := relativePath(root, path)

	if sourceType == models.SourceQuran && strings.EqualFold(filepath.Ext(path), ".txt") && IsQuranPipeFormat(text) {
		verses := ParseQuranPipe(text, name)
		for i := range verses {
			verses[i].Metadata.Path = rel
		}
		ld.logger.Info("loaded file", zap.String("file", name), zap.String("source_type", string(sourceType)),
			zap.Int("verses", len(verses)))
		return verses, nil
	}

	if strings.TrimSpace(text) == "" {
		ld.logger.Info("skipping empty file", zap.String("file", name))
		return nil, nil
	}
	ld.logger.Info("loaded file", zap.String("file", name), zap.String("source_type", string(sourceType)))
	return []models.Document{{
		Text:     text,
		Metadata: models.Metadata{SourceType: sourceType, Filename: name, Path: rel},
	}}, nil
}

// relativePath returns path relative to root in slash form, or the cleaned
// path when it does not lie below root.
func relativePath(root, path string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}
