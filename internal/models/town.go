package models

import (
	"time"
)

type Town struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;unique;size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
