// Package sink selects the ArtifactSink for an output file.
package sink

import (
	"path/filepath"
	"strings"

	"github.com/custodia-labs/passel/internal/adapters/driven/sink/jsonfile"
	"github.com/custodia-labs/passel/internal/adapters/driven/sink/sqlite"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
)

// Closer releases a sink's resources. JSON sinks hold none.
type Closer func() error

// New returns the sink for path: SQLite for ".db", ".sqlite" and
// ".sqlite3" files, JSON otherwise. An empty path means no sink.
func New(path string) (driven.ArtifactSink, Closer, error) {
	if path == "" {
		return nil, func() error { return nil }, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return jsonfile.New(path), func() error { return nil }, nil
	}
}
