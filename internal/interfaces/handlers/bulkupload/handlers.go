package bulkupload

import (
	"bytes"
	"errors"
	"io"

	bulksvc "gemlab-backend/internal/application/bulkupload"
	"gemlab-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles the bulk import endpoint with its service.
type Handlers struct {
	Service *bulksvc.Service
}

// Upload POST /api/v1/certificates/bulk-upload — CSV as multipart "file"
// field or as the raw request body.
func (h *Handlers) Upload(c *fiber.Ctx) error {
	reader, err := csvReader(c)
	if err != nil {
		return response.Error(c, "CSV file is required", fiber.StatusBadRequest, nil)
	}

	report, err := h.Service.Import(c.Context(), reader)
	if err != nil {
		switch {
		case errors.Is(err, bulksvc.ErrEmptyFile),
			errors.Is(err, bulksvc.ErrTooManyRows),
			errors.Is(err, bulksvc.ErrMissingCols):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		log.Error().Err(err).Msg("bulk-upload: import failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	return response.Success(c, "Bulk upload processed", report, fiber.Map{
		"created": report.Created,
		"failed":  report.Failed,
	})
}

func csvReader(c *fiber.Ctx) (io.Reader, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty body")
	}
	return bytes.NewReader(body), nil
}
