// Package meta builds normalised documents from raw connector output and
// reads the document properties shared by Office Open XML formats.
package meta

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/passel/internal/core/domain"
)

// Properties are the descriptive fields a format may carry.
type Properties struct {
	Title      string
	Authors    string
	ModifiedAt time.Time
}

// NewDocument builds a document from raw connector output and the text a
// normaliser extracted. The document ID is the file name. Properties
// recovered from the format win over the connector's file metadata.
func NewDocument(raw *domain.RawDocument, content string, props Properties) *domain.Document {
	name := stringValue(raw.Metadata, "filename")
	if name == "" {
		name = filepath.Base(raw.URI)
	}

	ext := stringValue(raw.Metadata, "extension")
	if ext == "" {
		ext = strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	}

	modified := props.ModifiedAt
	if modified.IsZero() {
		if t, ok := raw.Metadata["modified_at"].(time.Time); ok {
			modified = t
		}
	}

	title := strings.TrimSpace(props.Title)
	if title == "" {
		title = TitleFromURI(raw.URI)
	}

	return &domain.Document{
		ID:      name,
		URI:     raw.URI,
		Content: content,
		Metadata: domain.Metadata{
			Title:      title,
			Authors:    strings.TrimSpace(props.Authors),
			ModifiedAt: modified,
			Type:       ext,
			MIMEType:   raw.MIMEType,
		},
	}
}

// TitleFromURI derives a human-readable title from a file path.
func TitleFromURI(uri string) string {
	filename := filepath.Base(uri)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

func stringValue(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// coreXML is docProps/core.xml, shared by DOCX and PPTX packages.
type coreXML struct {
	Title    string `xml:"title"`
	Creator  string `xml:"creator"`
	Modified string `xml:"modified"`
}

// CoreProperties reads title, creator and modification time from an
// Office Open XML package. Missing or unreadable properties are left empty.
func CoreProperties(reader *zip.Reader) Properties {
	content, err := ReadFile(reader, "docProps/core.xml")
	if err != nil || content == nil {
		return Properties{}
	}

	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return Properties{}
	}

	props := Properties{
		Title:   strings.TrimSpace(core.Title),
		Authors: strings.TrimSpace(core.Creator),
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(core.Modified)); err == nil {
		props.ModifiedAt = t
	}
	return props
}

// ReadFile returns the contents of name inside the archive, or nil when
// the archive has no such entry.
func ReadFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}

// ParagraphText decodes an Office Open XML part and returns the text of
// its paragraphs, one per line. paragraph and text are the local element
// names (p and t in both WordprocessingML and DrawingML).
func ParagraphText(content []byte, paragraph, text string) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var (
		out    strings.Builder
		line   strings.Builder
		inText bool
		first  = true
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case text:
				inText = true
			case "tab":
				line.WriteString("\t")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case text:
				inText = false
			case paragraph:
				if !first {
					out.WriteString("\n")
				}
				out.WriteString(line.String())
				line.Reset()
				first = false
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}
