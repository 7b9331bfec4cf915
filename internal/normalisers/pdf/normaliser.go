// Package pdf provides a Normaliser for PDF documents. Text is read page by
// page in process; no external tools are needed.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/normalisers/meta"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the PDF content type.
const MIMEType = "application/pdf"

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
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

// Normalise extracts the plain text of every page and the document
// information dictionary (Title, Author, ModDate).
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (doc *domain.Document, err error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("pdf: %v: %w", r, domain.ErrInvalidInput)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("pdf: open: %w: %w", domain.ErrInvalidInput, err)
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("pdf: page %d: %w", i, err)
		}
		text.WriteString(content)
		text.WriteString("\n\n")
	}

	return meta.NewDocument(raw, strings.TrimSpace(text.String()), info(reader)), nil
}

// info reads the document information dictionary.
func info(reader *pdf.Reader) meta.Properties {
	dict := reader.Trailer().Key("Info")
	if dict.IsNull() {
		return meta.Properties{}
	}
	return meta.Properties{
		Title:      dict.Key("Title").Text(),
		Authors:    dict.Key("Author").Text(),
		ModifiedAt: parseDate(dict.Key("ModDate").Text()),
	}
}

var datePattern = regexp.MustCompile(`^D?:?(\d{4})(\d{2})?(\d{2})?(\d{2})?(\d{2})?(\d{2})?([Zz+\-])?(\d{2})?'?(\d{2})?'?$`)

// parseDate parses a PDF date string such as "D:20230102030405+01'00'".
// Missing trailing fields default to their minimum. Returns the zero time
// when the string is not a PDF date.
func parseDate(s string) time.Time {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}
	}

	field := func(i, def int) int {
		if m[i] == "" {
			return def
		}
		v, _ := strconv.Atoi(m[i])
		return v
	}

	loc := time.UTC
	if sign := m[7]; sign == "+" || sign == "-" {
		offset := field(8, 0)*3600 + field(9, 0)*60
		if sign == "-" {
			offset = -offset
		}
		loc = time.FixedZone("", offset)
	}

	return time.Date(field(1, 0), time.Month(field(2, 1)), field(3, 1),
		field(4, 0), field(5, 0), field(6, 0), 0, loc)
}
