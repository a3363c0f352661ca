package models

import "time"

// User represents a user in the system. Identity comes from the token subject.
type User struct {
	ID        string    `gorm:"primaryKey;size:191" json:"id"`
	Name      string    `gorm:"size:100" json:"name"`
	Email     string    `gorm:"size:200" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
