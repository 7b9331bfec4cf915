// Package pptx provides a Normaliser for PowerPoint (.pptx) presentations.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/normalisers/meta"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the Office Open XML presentation content type.
const MIMEType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

var slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Normaliser handles PPTX presentations.
type Normaliser struct{}

// New creates a new PPTX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every slide in slide order, one text
// paragraph per line, and the core document properties.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("pptx: open archive: %w: %w", domain.ErrInvalidInput, err)
	}

	var texts []string
	for _, slide := range slides(reader) {
		text, err := slideText(slide.file)
		if err != nil {
			return nil, fmt.Errorf("pptx: slide %d: %w: %w", slide.number, domain.ErrInvalidInput, err)
		}
		if text != "" {
			texts = append(texts, text)
		}
	}

	return meta.NewDocument(raw, strings.Join(texts, "\n"), meta.CoreProperties(reader)), nil
}

type slide struct {
	number int
	file   *zip.File
}

// slides returns the slide parts ordered by slide number.
func slides(reader *zip.Reader) []slide {
	var out []slide
	for _, f := range reader.File {
		m := slidePart.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, slide{number: number, file: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].number < out[j].number })
	return out
}

func slideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return meta.ParagraphText(content, "p", "t")
}
