// Package extract pulls plain text out of uploaded documents so it can be
// fed to the assistant as retrieval context.
package extract

import (
	"strings"
	"unicode/utf8"
)

// Text extracts plain text from content based on the file extension
// (leading dot optional, case-insensitive). Unsupported extensions return
// an empty string and nil error: extraction is best-effort by contract.
func Text(content []byte, ext string) (string, error) {
	switch normalizeExt(ext) {
	case ".pdf":
		return pdfText(content)
	case ".docx":
		return docxText(content)
	case ".txt":
		return plainText(content), nil
	default:
		return "", nil
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func plainText(content []byte) string {
	if !utf8.Valid(content) {
		return ""
	}
	return strings.TrimSpace(string(content))
}
