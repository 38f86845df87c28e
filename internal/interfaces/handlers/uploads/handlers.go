package uploads

import (
	"errors"
	"strconv"

	certsvc "gemlab-backend/internal/application/certificates"
	filesvc "gemlab-backend/internal/application/files"
	"gemlab-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers issues upload URLs for certificate source documents and records
// the stored path on the certificate.
type Handlers struct {
	Files *filesvc.Service
	Store *certsvc.Service
}

type uploadRequest struct {
	FileName string `json:"file_name"`
}

// UploadCertificateFile POST /api/v1/certificates/:id/file
func (h *Handlers) UploadCertificateFile(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.Error(c, "Invalid certificate id", fiber.StatusBadRequest, nil)
	}
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil || req.FileName == "" {
		return response.Error(c, "file_name is required", fiber.StatusBadRequest, nil)
	}

	cert, err := h.Store.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, certsvc.ErrNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	res, err := h.Files.GetSignedUploadURL(c.Context(), cert.ReferenceNumber, req.FileName)
	if err != nil {
		log.Error().Err(err).Str("reference_number", cert.ReferenceNumber).Msg("upload: failed to generate signed URL")
		return response.Error(c, "Failed to generate upload URL", fiber.StatusInternalServerError, nil)
	}

	if _, err := h.Store.Update(c.Context(), uint(id), certsvc.UpdateInput{Filename: &res.Path}); err != nil {
		log.Error().Err(err).Uint64("id", id).Msg("upload: failed to record filename")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	return response.Success(c, "Upload URL generated", res, nil)
}
