package auth

import (
	"context"

	authsvc "gemlab-backend/internal/application/auth"
	"gemlab-backend/internal/middleware"
	"gemlab-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const adminSessionsPrefix = "admin_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	AdminFinder authsvc.AdminFinder
	Rdb         *redis.Client
	Config      middleware.SessionConfig
}

// LoginRequest body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login POST /api/v1/auth/login — authenticate the lab admin, create a
// session, set cookie. Failures never reveal which credential was wrong.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.AdminFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Username and password are required", fiber.StatusBadRequest, nil)
	}
	if req.Username == "" || req.Password == "" {
		return response.Error(c, "Username and password are required", fiber.StatusBadRequest, nil)
	}

	admin, err := h.AdminFinder.FindByCredentials(req.Username, req.Password)
	if err != nil {
		switch err {
		case authsvc.ErrCredentialsRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case authsvc.ErrInvalidCredentials:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			log.Error().Err(err).Msg("login: admin lookup failed")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	// Regenerate session ID (new session for this login)
	sessionID := middleware.RegenerateSessionID(c)
	adminID := authsvc.AdminIDString(admin.ID)

	middleware.SetSessionAdmin(c, middleware.SessionAdmin{
		AdminID:  adminID,
		Username: admin.Username,
		Role:     "admin",
	})

	ctx := context.Background()
	if err := h.Rdb.SAdd(ctx, adminSessionsPrefix+adminID, sessionID).Err(); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", fiber.Map{
		"admin": fiber.Map{
			"admin_id": adminID,
			"username": admin.Username,
			"role":     "admin",
		},
	}, nil)
}

// Me GET /api/v1/auth/me — return the current session admin.
func (h *Handlers) Me(c *fiber.Ctx) error {
	sessionUser := middleware.GetAdmin(c)
	admin, err := authsvc.VerifyAdmin(sessionUser)
	if err != nil {
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"admin": admin}, nil)
}

// Logout DELETE /api/v1/auth/logout — remove session tracking, delete the
// Redis session key, clear the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	sessionUser := middleware.GetAdmin(c)

	ctx := context.Background()

	if sessionUser != nil && sessionID != "" {
		if m, ok := sessionUser.(map[string]interface{}); ok {
			if adminID, _ := m["admin_id"].(string); adminID != "" {
				_ = h.Rdb.SRem(ctx, adminSessionsPrefix+adminID, sessionID).Err()
			}
		}
	}

	if sessionID != "" {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}

	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}
