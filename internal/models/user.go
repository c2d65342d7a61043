package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	Role      Role      `gorm:"size:20;default:'user';not null" json:"role"`
	TownID    *uint     `gorm:"index" json:"town_id"` // home town, optional
	Town      *Town     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"town"`
	CreatedAt time.Time `json:"created_at"`

	// Notification preferences: opt-in flag plus the town and/or
	// category the user wants to be alerted about.
	NotifyEnabled    bool      `gorm:"default:false;not null" json:"notify_enabled"`
	NotifyTownID     *uint     `gorm:"index" json:"notify_town_id"`
	NotifyTown       *Town     `gorm:"foreignKey:NotifyTownID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"notify_town"`
	NotifyCategoryID *uint     `gorm:"index" json:"notify_category_id"`
	NotifyCategory   *Category `gorm:"foreignKey:NotifyCategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"notify_category"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
