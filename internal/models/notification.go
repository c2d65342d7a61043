package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeClaimComment   NotificationType = "claim_comment"
	NotificationTypeClaimConfirmed NotificationType = "claim_confirmed"
	NotificationTypeClaimRejected  NotificationType = "claim_rejected"
	NotificationTypeSystem         NotificationType = "system"
)

// Notification is an in-app message shown in the user's inbox, created
// alongside (not instead of) the e-mail dispatch.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"` // receiver
	User      User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ActorID   *uint            `gorm:"index" json:"actor_id"` // who triggered it
	Actor     User             `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"actor"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Reason    string           `gorm:"type:text" json:"reason"`
	ListingID *uint            `gorm:"index" json:"listing_id"`
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
