// Package jsonfile provides an ArtifactSink that writes the run to a JSON
// file, replacing any previous content.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.ArtifactSink = (*Sink)(nil)

// Sink writes artifacts to a JSON file.
type Sink struct {
	path string
}

// New creates a sink writing to path.
func New(path string) *Sink {
	return &Sink{path: path}
}

// document is the persisted shape: the query and the ordered results.
type document struct {
	Query   string                   `json:"query"`
	Results []domain.ScoredCandidate `json:"results"`
}

// Write persists the artifact. The file is written to a temporary sibling
// and renamed so readers never see a partial file.
func (s *Sink) Write(ctx context.Context, artifact domain.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	results := artifact.Results
	if results == nil {
		results = []domain.ScoredCandidate{}
	}
	data, err := json.MarshalIndent(document{Query: artifact.Query, Results: results}, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename to %s: %w", s.path, err)
	}
	return nil
}

// Location returns the output file path.
func (s *Sink) Location() string {
	return s.path
}
