package models

import "time"

// Model is the common base of all persisted records.
type Model struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// seoFallback returns value unless it is empty, in which case fallback is returned.
func seoFallback(value, fallback string) string {
	if len(value) > 0 {
		return value
	}
	return fallback
}

// Key returns the primary key of the record.
func (m Model) Key() uint {
	return m.ID
}
