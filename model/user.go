package model

import "time"

type User struct {
	ID string `gorm:"primaryKey" json:"id"`

	// Kept unique with a NOCASE-style check at registration time so that
	// "Alice" and "alice" can never coexist
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Optional. Stored as an empty string when the user didn't provide one
	// so responses stay "" instead of null
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"-"`

	Files []FileUpload `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}
