package models

// ListingImage is a stored photo attached to a listing. The path is the
// file name under the upload directory, owned exclusively by its parent.
type ListingImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ImagePath string `gorm:"size:255;not null" json:"image_path"`

	ListingID uint `gorm:"not null;index" json:"listing_id"`
}

// CommentImage is a stored photo attached to a claim comment.
type CommentImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ImagePath string `gorm:"size:255;not null" json:"image_path"`

	CommentID uint `gorm:"not null;index" json:"comment_id"`
}
