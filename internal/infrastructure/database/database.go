package database

import (
	"errors"
	"strings"

	"gemlab-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN. Postgres URLs use the simple protocol to
// avoid 42P05 ("prepared statement already exists") behind connection
// poolers (PgBouncer, Supabase, Render). Any other DSN is treated as a
// sqlite path (":memory:" or a file), used for development and tests.
func Open(dsn string) (*gorm.DB, error) {
	// TranslateError maps driver unique-violation errors onto
	// gorm.ErrDuplicatedKey so the stores can turn them into their own
	// duplicate sentinels.
	cfg := &gorm.Config{TranslateError: true}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), cfg)
	}
	return gorm.Open(sqlite.Open(dsn), cfg)
}

// AutoMigrate runs migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Certificate{}, &domain.AdminUser{})
}

// SeedAdmin ensures the single administrator row exists with the configured
// credentials. An existing row gets its password hash refreshed so rotating
// ADMIN_PASSWORD takes effect on restart.
func SeedAdmin(db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return errors.New("admin username and password must be configured")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var admin domain.AdminUser
	err = db.Where("username = ?", username).First(&admin).Error
	if err == gorm.ErrRecordNotFound {
		return db.Create(&domain.AdminUser{Username: username, PasswordHash: string(hash)}).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&admin).Update("password_hash", string(hash)).Error
}
