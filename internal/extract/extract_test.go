package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestTextPlainTxt(t *testing.T) {
	got, err := Text([]byte("  reset the router, wait 30 seconds\n"), "txt")
	require.NoError(t, err)
	assert.Equal(t, "reset the router, wait 30 seconds", got)
}

func TestTextUnsupportedExtensionIsSilent(t *testing.T) {
	got, err := Text([]byte{0xFF, 0xD8, 0xFF}, "jpg")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTextExtensionNormalization(t *testing.T) {
	content := []byte("hello")
	for _, ext := range []string{"txt", ".txt", "TXT", " .TxT "} {
		got, err := Text(content, ext)
		require.NoError(t, err)
		assert.Equal(t, "hello", got, "ext %q", ext)
	}
}

func TestTextDocx(t *testing.T) {
	doc := buildDocx(t, `<?xml version="1.0"?><w:document><w:body>`+
		`<w:p><w:r><w:t>Connect the printer</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t xml:space="preserve">via USB &amp; restart.</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	got, err := Text(doc, "docx")
	require.NoError(t, err)
	assert.Equal(t, "Connect the printer via USB & restart.", got)
}

func TestTextDocxMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<w:styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Text(buf.Bytes(), ".docx")
	assert.Error(t, err)
}

func TestTextDocxNotAnArchive(t *testing.T) {
	_, err := Text([]byte("this is not a zip"), "docx")
	assert.Error(t, err)
}

func TestTextTxtRejectsBinaryGarbage(t *testing.T) {
	got, err := Text([]byte{0xC3, 0x28}, "txt")
	require.NoError(t, err)
	assert.Empty(t, got)
}
