package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// Status is the lifecycle state of a listing. Transitions only move
// forward: LOST -> FOUND -> RETURNED, or LOST -> RETURNED directly when
// the owner marks the item returned.
type Status string

const (
	StatusLost     Status = "LOST"
	StatusFound    Status = "FOUND"
	StatusReturned Status = "RETURNED"
)

// ParseStatus validates a status literal coming from untrusted input.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusLost, StatusFound, StatusReturned:
		return Status(s), true
	}
	return "", false
}

type Listing struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:255;not null" json:"title"`
	// Normalized search projection of Title, maintained by BeforeSave.
	// Never shown to users.
	TitleSearch       string `gorm:"type:text;index" json:"-"`
	Description       string `gorm:"type:text;not null" json:"description"`
	DescriptionSearch string `gorm:"type:text;index" json:"-"`

	Status Status `gorm:"size:20;default:'LOST';not null" json:"status"`

	Lat          *float64  `gorm:"index" json:"lat"`
	Lng          *float64  `gorm:"index" json:"lng"`
	LocationName string    `gorm:"size:255" json:"location_name"`
	DateEvent    time.Time `gorm:"not null" json:"date_event"`

	ContactName  string `gorm:"size:120" json:"contact_name"`
	ContactEmail string `gorm:"size:255" json:"contact_email"`
	ContactPhone string `gorm:"size:64" json:"contact_phone"`

	OwnerID    uint     `gorm:"not null;index" json:"owner_id"`
	Owner      User     `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"owner"`
	CategoryID uint     `gorm:"not null;index" json:"category_id"`
	Category   Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	TownID     uint     `gorm:"not null;index" json:"town_id"`
	Town       Town     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"town"`

	Images   []ListingImage `gorm:"constraint:OnDelete:CASCADE;" json:"images"`
	Comments []Comment      `gorm:"constraint:OnDelete:CASCADE;" json:"comments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var searchFolder = cases.Fold()

// NormalizeSearch canonicalizes text for the search projections: NFKC,
// case fold, trim. Idempotent; empty input normalizes to "".
func NormalizeSearch(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(searchFolder.String(norm.NFKC.String(s)))
}

// BeforeSave keeps the search projections in sync on every create and
// update, mirroring the title/description fields.
func (l *Listing) BeforeSave(tx *gorm.DB) error {
	l.TitleSearch = NormalizeSearch(l.Title)
	l.DescriptionSearch = NormalizeSearch(l.Description)
	return nil
}
