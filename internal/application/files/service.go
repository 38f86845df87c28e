package files

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Bucket for certificate source documents (report PDFs and stone scans).
const CertificateBucket = "certificate-docs"

// StorageClient defines what we need from the object storage provider.
type StorageClient interface {
	CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error)
}

// HTTPClient is a StorageClient backed by the storage REST API
// (Supabase-compatible endpoints).
type HTTPClient struct {
	BaseURL   string
	SecretKey string
	Client    *http.Client
}

type signedUploadResponse struct {
	SignedURL      string `json:"signedUrl"`
	SignedURLSnake string `json:"signed_url"`
	URL            string `json:"url"` // relative path returned by upload/sign API
	Path           string `json:"path"`
}

func (c *HTTPClient) CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error) {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if c.BaseURL == "" {
		return "", fmt.Errorf("storage: STORAGE_URL is not set")
	}
	if c.SecretKey == "" {
		return "", fmt.Errorf("storage: STORAGE_SECRET_KEY is not set")
	}
	base := strings.TrimRight(c.BaseURL, "/")
	url := fmt.Sprintf("%s/storage/v1/object/upload/sign/%s/%s", base, bucket, path)

	bodyBytes, _ := json.Marshal(map[string]interface{}{
		"expiresIn": 3600,
		"upsert":    false,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", c.SecretKey)
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("storage error: status %d body: %s", resp.StatusCode, string(respBody))
	}

	var data signedUploadResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return "", fmt.Errorf("storage response decode: %w", err)
	}
	// API can return signedUrl, signed_url, or url (relative)
	if data.SignedURL != "" {
		return data.SignedURL, nil
	}
	if data.SignedURLSnake != "" {
		return data.SignedURLSnake, nil
	}
	if data.URL != "" {
		u := data.URL
		if len(u) > 0 && u[0] != '/' {
			u = "/" + u
		}
		return base + u, nil
	}
	return "", fmt.Errorf("storage returned no signed URL, body: %s", string(respBody))
}

// Service issues upload URLs for certificate documents.
type Service struct {
	Client     StorageClient
	StorageURL string
}

// UploadResult carries the signed upload URL plus the public URL the
// document will be served from once uploaded.
type UploadResult struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	Path      string `json:"path"`
}

// GetSignedUploadURL generates a signed upload URL. The stored path is
// prefixed with the certificate reference so documents are fetchable by
// reference number.
func (s *Service) GetSignedUploadURL(ctx context.Context, referenceNumber, fileName string) (*UploadResult, error) {
	path := fmt.Sprintf("%s/%d-%s", referenceNumber, time.Now().UnixMilli(), fileName)

	signedURL, err := s.Client.CreateSignedUploadURL(ctx, CertificateBucket, path)
	if err != nil {
		return nil, err
	}

	publicBase := strings.TrimRight(s.StorageURL, "/")
	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", publicBase, CertificateBucket, path)

	return &UploadResult{
		UploadURL: signedURL,
		PublicURL: publicURL,
		Path:      path,
	}, nil
}
