package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const docxDocumentPath = "word/document.xml"

// wtTag matches <w:t> text nodes with or without attributes, so documents
// produced by real editors (which attach rsid attributes everywhere) still
// yield their text.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

func docxText(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx archive failed: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open docx document part failed: %w", err)
		}
		docXML, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read docx document part failed: %w", err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("docx missing %s", docxDocumentPath)
	}

	var sb strings.Builder
	for _, match := range wtTag.FindAllSubmatch(docXML, -1) {
		sb.Write(match[1])
		sb.WriteByte(' ')
	}
	return strings.TrimSpace(decodeXMLEntities(sb.String())), nil
}

func decodeXMLEntities(s string) string {
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	return replacer.Replace(s)
}
