package models

import "time"

// User represents a registered account.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FullName     string    `json:"fullName" gorm:"type:varchar(255);not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"createdAt"`
}
