package models

import (
	"time"
)

// CommentStatus is the claim state of a comment. PENDING is the initial
// state; CONFIRMED and REJECTED are terminal.
type CommentStatus string

const (
	CommentPending   CommentStatus = "PENDING"
	CommentConfirmed CommentStatus = "CONFIRMED"
	CommentRejected  CommentStatus = "REJECTED"
)

type Comment struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Text string `gorm:"type:text;not null" json:"text"`

	Status CommentStatus `gorm:"size:20;default:'PENDING';not null" json:"status"`

	CommenterID uint `gorm:"not null;index" json:"commenter_id"`
	Commenter   User `gorm:"foreignKey:CommenterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"commenter"`

	ListingID uint    `gorm:"not null;index" json:"listing_id"`
	Listing   Listing `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"listing"`

	Images []CommentImage `gorm:"constraint:OnDelete:CASCADE;" json:"images"`

	CreatedAt time.Time `json:"created_at"`
}
