package domain

import "time"

// AdminUser is the single laboratory administrator account. There is no
// user-management subsystem; the row is seeded from config at migrate time.
type AdminUser struct {
	ID           uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"column:username;not null;uniqueIndex" json:"username"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (AdminUser) TableName() string {
	return "AdminUsers"
}
