package models

import (
	"time"
)

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;unique;size:128" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
