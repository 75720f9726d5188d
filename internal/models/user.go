package models

import "time"

// User represents a system user able to sign in to the console. A user
// belongs to exactly one client account and inherits that account's
// messaging-provider credentials.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string `gorm:"type:text"`                      // Display name.
	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique login email.
	Password string `gorm:"type:text;not null"`             // Bcrypt password hash.

	BaseURL     string `gorm:"type:text"` // Messaging API base URL.
	AccessToken string `gorm:"type:text"` // Messaging API access token.

	ClientID uint64 `gorm:"not null;index"`      // Owning client account ID.
	Client   Client `gorm:"foreignKey:ClientID"` // Owning client account.

	Role Role `gorm:"type:varchar(32);not null;default:'user'"` // Access level.

	TOTPSecret string `gorm:"type:text"` // Optional TOTP secret for a second factor.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
