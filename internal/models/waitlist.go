package models

import "time"

// WaitlistEntry is insert-only: rows are created by the signup intake
// pipeline and read back for listing, export and position computation.
// CreatedAt is immutable after insert; there is no update path.
type WaitlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"not null" json:"name"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// ModelRegistry lists every model passed to AutoMigrate.
var ModelRegistry = []interface{}{
	&WaitlistEntry{},
}
