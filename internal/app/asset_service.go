package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"

	"faqdesk/internal/extract"
	"faqdesk/internal/proposal"
)

// AssetService stores uploaded files in object storage and hands back
// stable fetch URLs. Document uploads also get best-effort text extraction.
type AssetService struct {
	client  *miniogo.Client
	bucket  string
	baseURL string
}

type StoredAsset struct {
	URL          string `json:"url"`
	Name         string `json:"name"`
	Extension    string `json:"extension"`
	Type         string `json:"type"`
	DocumentText string `json:"document_text,omitempty"`
}

func NewAssetService(client *miniogo.Client, bucket, baseURL string) *AssetService {
	return &AssetService{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *AssetService) Store(ctx context.Context, filename, contentType string, r io.Reader) (*StoredAsset, error) {
	ext := strings.ToLower(path.Ext(filename))
	kind := proposal.ClassifyByExtension(filename)
	if kind == "" {
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrInvalidInput, ext)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", ErrAssetUpload, err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidInput)
	}

	var documentText string
	if kind == "document" {
		documentText, err = extract.Text(content, ext)
		if err != nil {
			// Extraction is best-effort; the asset is still stored.
			logrus.WithError(err).WithField("filename", filename).Warn("document text extraction failed")
			documentText = ""
		}
	}

	objectName := uuid.NewString() + ext
	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(content), int64(len(content)), miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetUpload, err)
	}

	return &StoredAsset{
		URL:          s.baseURL + "/" + objectName,
		Name:         filename,
		Extension:    strings.TrimPrefix(ext, "."),
		Type:         kind,
		DocumentText: documentText,
	}, nil
}

// OwnsURL reports whether url points into this registry's bucket; cleanup
// never touches foreign URLs.
func (s *AssetService) OwnsURL(url string) bool {
	return strings.HasPrefix(url, s.baseURL+"/")
}

// DeleteByURL removes the underlying object. A missing object is not an
// error: double-delete is idempotent by contract.
func (s *AssetService) DeleteByURL(ctx context.Context, url string) error {
	if !s.OwnsURL(url) {
		return nil
	}
	objectName := strings.TrimPrefix(url, s.baseURL+"/")
	if objectName == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, miniogo.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove asset %s failed: %w", objectName, err)
	}
	return nil
}
