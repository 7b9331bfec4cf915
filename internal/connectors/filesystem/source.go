// Package filesystem reads documents from a local folder and watches it
// for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/logger"
)

// Ensure Source implements the interfaces.
var (
	_ driven.DocumentSource = (*Source)(nil)
	_ driven.FolderWatcher  = (*Source)(nil)
)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("filesystem source closed")

// Option configures a Source.
type Option func(*Source)

// WithMIMETypes restricts Fetch to files of the given content types.
// Other files are skipped without error.
func WithMIMETypes(types []string) Option {
	return func(s *Source) {
		s.accept = make(map[string]bool, len(types))
		for _, t := range types {
			s.accept[t] = true
		}
	}
}

// Source reads the top level of a document folder. Hidden files and
// subdirectories are ignored.
type Source struct {
	accept map[string]bool

	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// New creates a filesystem source.
func New(opts ...Option) *Source {
	s := &Source{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch reads every regular, visible file in folder, in lexical order of
// file name. The folder may be a path or a file:// URI. A missing folder
// yields an error wrapping fs.ErrNotExist.
func (s *Source) Fetch(ctx context.Context, folder string) ([]domain.RawDocument, error) {
	folder = ResolvePath(folder)
	if err := checkRoot(folder); err != nil {
		return nil, err
	}

	// os.ReadDir sorts by file name.
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", folder, err)
	}

	var docs []domain.RawDocument
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() || isHidden(entry.Name()) {
			continue
		}

		path := filepath.Join(folder, entry.Name())
		mimeType := detectMIMEType(path)
		if s.accept != nil && !s.accept[mimeType] {
			logger.Debug("skipping %s: no extractor for %s", entry.Name(), mimeType)
			continue
		}

		doc, err := readFile(path, mimeType)
		if err != nil {
			logger.Warn("skipping %s: %v", entry.Name(), err)
			continue
		}
		docs = append(docs, doc)
	}

	logger.Debug("fetched %d documents from %s", len(docs), folder)
	return docs, nil
}

// Watch reports changes to visible files directly inside folder until ctx
// is cancelled, at which point the channel is closed.
func (s *Source) Watch(ctx context.Context, folder string) (<-chan domain.DocumentChange, error) {
	folder = ResolvePath(folder)
	if err := checkRoot(folder); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	s.watchers = append(s.watchers, watcher)
	s.mu.Unlock()

	if err := watcher.Add(folder); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", folder, err)
	}

	changes := make(chan domain.DocumentChange)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change, ok := toChange(event)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", folder, err)
			}
		}
	}()

	return changes, nil
}

// Close stops every active watch.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	var errs []error
	for _, w := range s.watchers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.watchers = nil
	return errors.Join(errs...)
}

func checkRoot(folder string) error {
	info, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory: %w", folder, domain.ErrInvalidInput)
	}
	return nil
}

func readFile(path, mimeType string) (domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.RawDocument{}, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, err
	}

	name := filepath.Base(path)
	return domain.RawDocument{
		URI:      path,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]any{
			"filename":    name,
			"extension":   strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
			"size":        info.Size(),
			"modified_at": info.ModTime(),
		},
	}, nil
}

func toChange(event fsnotify.Event) (domain.DocumentChange, bool) {
	if isHidden(filepath.Base(event.Name)) {
		return domain.DocumentChange{}, false
	}

	var kind domain.ChangeType
	switch {
	case event.Has(fsnotify.Create):
		kind = domain.ChangeCreated
	case event.Has(fsnotify.Write):
		kind = domain.ChangeUpdated
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		kind = domain.ChangeDeleted
	default:
		return domain.DocumentChange{}, false
	}
	return domain.DocumentChange{Type: kind, URI: event.Name}, true
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Content types for extensions the mime package does not know everywhere.
var fallbackTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx":     "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".pdf":      "application/pdf",
	".html":     "text/html",
	".htm":      "text/html",
}

// detectMIMEType maps a file name to a content type without parameters.
// Files without an extension are treated as plain text.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "text/plain"
	}
	if t, ok := fallbackTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.Index(t, ";"); i >= 0 {
			t = t[:i]
		}
		return strings.TrimSpace(t)
	}
	return "application/octet-stream"
}
