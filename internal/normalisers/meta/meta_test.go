package meta

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/passel/internal/core/domain"
)

func zipOf(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return r
}

func TestNewDocument_FromConnectorMetadata(t *testing.T) {
	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := &domain.RawDocument{
		URI:      "/docs/green_tea-notes.txt",
		MIMEType: "text/plain",
		Metadata: map[string]any{
			"filename":    "green_tea-notes.txt",
			"extension":   "txt",
			"modified_at": modified,
		},
	}

	doc := NewDocument(raw, "content", Properties{})

	assert.Equal(t, "green_tea-notes.txt", doc.ID)
	assert.Equal(t, "/docs/green_tea-notes.txt", doc.URI)
	assert.Equal(t, "content", doc.Content)
	assert.Equal(t, "green tea notes", doc.Metadata.Title)
	assert.Equal(t, "txt", doc.Metadata.Type)
	assert.Equal(t, "text/plain", doc.Metadata.MIMEType)
	assert.Equal(t, modified, doc.Metadata.ModifiedAt)
	assert.Empty(t, doc.Metadata.Authors)
}

func TestNewDocument_PropertiesWin(t *testing.T) {
	fileTime := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	formatTime := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	raw := &domain.RawDocument{
		URI:      "/docs/report.docx",
		Metadata: map[string]any{"modified_at": fileTime},
	}

	doc := NewDocument(raw, "", Properties{Title: " Annual Report ", Authors: "Ada", ModifiedAt: formatTime})

	assert.Equal(t, "Annual Report", doc.Metadata.Title)
	assert.Equal(t, "Ada", doc.Metadata.Authors)
	assert.Equal(t, formatTime, doc.Metadata.ModifiedAt)
}

func TestNewDocument_NoMetadata(t *testing.T) {
	doc := NewDocument(&domain.RawDocument{URI: "/a/b/Paper.PDF"}, "x", Properties{})

	assert.Equal(t, "Paper.PDF", doc.ID)
	assert.Equal(t, "pdf", doc.Metadata.Type)
	assert.True(t, doc.Metadata.ModifiedAt.IsZero())
}

func TestTitleFromURI(t *testing.T) {
	assert.Equal(t, "my document", TitleFromURI("/path/to/my_document.pdf"))
	assert.Equal(t, "green tea", TitleFromURI("green-tea.md"))
	assert.Equal(t, "README", TitleFromURI("README"))
}

func TestCoreProperties(t *testing.T) {
	reader := zipOf(t, map[string]string{
		"docProps/core.xml": `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
  <dc:title>Tea Study</dc:title>
  <dc:creator>Jane Doe</dc:creator>
  <dcterms:modified>2023-05-06T07:08:09Z</dcterms:modified>
</cp:coreProperties>`,
	})

	props := CoreProperties(reader)

	assert.Equal(t, "Tea Study", props.Title)
	assert.Equal(t, "Jane Doe", props.Authors)
	assert.Equal(t, time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC), props.ModifiedAt.UTC())
}

func TestCoreProperties_Missing(t *testing.T) {
	props := CoreProperties(zipOf(t, map[string]string{"word/document.xml": "<w/>"}))
	assert.Equal(t, Properties{}, props)
}

func TestCoreProperties_Malformed(t *testing.T) {
	props := CoreProperties(zipOf(t, map[string]string{"docProps/core.xml": "<not closed"}))
	assert.Equal(t, Properties{}, props)
}

func TestReadFile(t *testing.T) {
	reader := zipOf(t, map[string]string{"a.txt": "hello"})

	content, err := ReadFile(reader, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	content, err = ReadFile(reader, "missing.txt")
	require.NoError(t, err)
	assert.Nil(t, content)
}

func TestParagraphText(t *testing.T) {
	t.Run("word paragraphs and tables", func(t *testing.T) {
		part := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Hello </w:t></w:r><w:r><w:t>World</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
<w:p><w:r><w:t>A</w:t><w:tab/><w:t>B</w:t></w:r></w:p>
</w:body></w:document>`

		text, err := ParagraphText([]byte(part), "p", "t")

		require.NoError(t, err)
		assert.Equal(t, "Hello World\nCell\nA\tB", text)
	})

	t.Run("drawing paragraphs", func(t *testing.T) {
		part := `<p:sld xmlns:p="p" xmlns:a="a"><p:sp><p:txBody>
<a:p><a:r><a:t>Title</a:t></a:r></a:p><a:p><a:r><a:t>Bullet</a:t></a:r></a:p>
</p:txBody></p:sp></p:sld>`

		text, err := ParagraphText([]byte(part), "p", "t")

		require.NoError(t, err)
		assert.Equal(t, "Title\nBullet", text)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParagraphText([]byte("<w:p><w:t>open"), "p", "t")
		assert.Error(t, err)
	})
}
