package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	certsvc "gemlab-backend/internal/application/certificates"
	filesvc "gemlab-backend/internal/application/files"
	"gemlab-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStorageClient struct {
	lastBucket string
	lastPath   string
}

func (f *fakeStorageClient) CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error) {
	f.lastBucket = bucket
	f.lastPath = path
	return "https://storage.example.com/upload/" + path, nil
}

func setupUploadTest(t *testing.T) (*Handlers, *certsvc.Service, *fakeStorageClient) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Certificate{}))
	store := &certsvc.Service{DB: db}
	client := &fakeStorageClient{}
	files := &filesvc.Service{Client: client, StorageURL: "https://storage.example.com"}
	return &Handlers{Files: files, Store: store}, store, client
}

func TestUploadCertificateFile(t *testing.T) {
	h, store, client := setupUploadTest(t)
	cert, err := store.Create(context.Background(), certsvc.CreateInput{
		ReferenceNumber: "GIL-2024-300001",
		CaratWeight:     "1.00",
		ColorGrade:      "F",
		ClarityGrade:    "VS1",
		CutGrade:        "Excellent",
	})
	require.NoError(t, err)

	app := fiber.New()
	app.Post("/certificates/:id/file", h.UploadCertificateFile)

	body, _ := json.Marshal(map[string]string{"file_name": "report.pdf"})
	req := httptest.NewRequest("POST", "/certificates/1/file", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, filesvc.CertificateBucket, client.lastBucket)
	assert.Contains(t, client.lastPath, "GIL-2024-300001/")
	assert.Contains(t, client.lastPath, "report.pdf")

	got, err := store.GetByID(context.Background(), cert.ID)
	require.NoError(t, err)
	assert.Equal(t, client.lastPath, got.Filename)
}

func TestUploadCertificateFile_NotFound(t *testing.T) {
	h, _, _ := setupUploadTest(t)

	app := fiber.New()
	app.Post("/certificates/:id/file", h.UploadCertificateFile)

	body, _ := json.Marshal(map[string]string{"file_name": "report.pdf"})
	req := httptest.NewRequest("POST", "/certificates/42/file", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUploadCertificateFile_MissingFileName(t *testing.T) {
	h, _, _ := setupUploadTest(t)

	app := fiber.New()
	app.Post("/certificates/:id/file", h.UploadCertificateFile)

	req := httptest.NewRequest("POST", "/certificates/1/file", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
