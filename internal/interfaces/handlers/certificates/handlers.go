package certificates

import (
	"errors"
	"strconv"

	certsvc "gemlab-backend/internal/application/certificates"
	"gemlab-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles certificate endpoints with the store service.
type Handlers struct {
	Service *certsvc.Service
}

// Verify GET /api/v1/certificates/verify/:reference_number — public.
// Not-found and inactive are normal 200 responses with is_valid=false,
// never an error status.
func (h *Handlers) Verify(c *fiber.Ctx) error {
	ref := c.Params("reference_number")
	if ref == "" {
		return response.Error(c, "reference_number is required", fiber.StatusBadRequest, nil)
	}
	result, err := h.Service.Verify(c.Context(), ref)
	if err != nil {
		log.Error().Err(err).Str("reference_number", ref).Msg("verify: store lookup failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	msg := "Certificate verified"
	if !result.IsValid {
		msg = "Certificate not verified"
	}
	return response.Success(c, msg, result, nil)
}

// List GET /api/v1/certificates — admin only; returns the full uncurated
// list including inactive records.
func (h *Handlers) List(c *fiber.Ctx) error {
	certs, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Certificates fetched successfully", certs, fiber.Map{"count": len(certs)})
}

// GetByID GET /api/v1/certificates/:id
func (h *Handlers) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "Invalid certificate id", fiber.StatusBadRequest, nil)
	}
	cert, err := h.Service.GetByID(c.Context(), id)
	if err != nil {
		return h.storeError(c, err)
	}
	return response.Success(c, "Certificate fetched successfully", cert, nil)
}

// Create POST /api/v1/certificates
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in certsvc.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	cert, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return h.storeError(c, err)
	}
	return response.SuccessCreated(c, "Certificate created successfully", cert, nil)
}

// Update PATCH /api/v1/certificates/:id — partial update; also accepts
// is_active for the lifecycle toggle.
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "Invalid certificate id", fiber.StatusBadRequest, nil)
	}
	var in certsvc.UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	cert, err := h.Service.Update(c.Context(), id, in)
	if err != nil {
		return h.storeError(c, err)
	}
	return response.Success(c, "Certificate updated successfully", cert, nil)
}

type statusRequest struct {
	IsActive *bool `json:"is_active"`
}

// SetStatus PATCH /api/v1/certificates/:id/status — explicit toggle.
func (h *Handlers) SetStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "Invalid certificate id", fiber.StatusBadRequest, nil)
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return response.Error(c, "is_active is required", fiber.StatusBadRequest, nil)
	}
	cert, err := h.Service.SetActive(c.Context(), id, *req.IsActive)
	if err != nil {
		return h.storeError(c, err)
	}
	return response.Success(c, "Certificate status updated", cert, nil)
}

// Delete DELETE /api/v1/certificates/:id — idempotent hard delete.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "Invalid certificate id", fiber.StatusBadRequest, nil)
	}
	deleted, err := h.Service.Delete(c.Context(), id)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	if !deleted {
		return response.Error(c, certsvc.ErrNotFound.Error(), fiber.StatusNotFound, nil)
	}
	return response.Success(c, "Certificate deleted successfully", fiber.Map{"deleted": true}, nil)
}

func (h *Handlers) storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, certsvc.ErrNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, certsvc.ErrDuplicateReference):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	}
	if ve, ok := certsvc.AsValidationError(err); ok {
		return response.Error(c, ve.Error(), fiber.StatusBadRequest, fiber.Map{"field": ve.Field})
	}
	log.Error().Err(err).Msg("certificates: store operation failed")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
