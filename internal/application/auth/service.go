package auth

import (
	"errors"
	"strconv"

	"gemlab-backend/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionAdminShape is the object stored in the session and returned by /me.
type SessionAdminShape struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AdminFinder abstracts admin lookup by credentials (GORM in production,
// test doubles elsewhere).
type AdminFinder interface {
	FindByCredentials(username, password string) (*domain.AdminUser, error)
}

// GormAdminFinder implements AdminFinder using GORM and bcrypt.
type GormAdminFinder struct{ DB *gorm.DB }

func (g *GormAdminFinder) FindByCredentials(username, password string) (*domain.AdminUser, error) {
	return LoginAdmin(g.DB, LoginInput{Username: username, Password: password})
}

// LoginAdmin finds the admin by username and verifies the password.
func LoginAdmin(db *gorm.DB, input LoginInput) (*domain.AdminUser, error) {
	if input.Username == "" || input.Password == "" {
		return nil, ErrCredentialsRequired
	}
	var admin domain.AdminUser
	if err := db.Where("username = ?", input.Username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if admin.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &admin, nil
}

// VerifyAdmin validates the session payload and returns the /me shape.
func VerifyAdmin(sessionUser interface{}) (*SessionAdminShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	username, _ := m["username"].(string)
	if username == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionAdminShape{
		AdminID:  str(m["admin_id"]),
		Username: username,
		Role:     str(m["role"]),
	}, nil
}

// AdminIDString formats the numeric id for session storage.
func AdminIDString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
