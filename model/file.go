// Package model defines database models
package model

import "time"

type FileUpload struct {
	ID      uint   `gorm:"primaryKey;autoIncrement;index" json:"id"`
	OwnerID string `gorm:"not null;index" json:"-"`

	// Key of the blob inside the storage backend. Users may upload files
	// with identical names so the key is a random string, not the name
	StoragePath string `gorm:"uniqueIndex;not null" json:"file"`

	// Name the file had on the client. Kept so listings stay readable
	OriginalName string `json:"name"`

	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`
}
