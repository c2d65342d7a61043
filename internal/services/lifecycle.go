package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"lostfound/internal/models"

	"gorm.io/gorm"
)

// MaxCommentLength is the upper bound on claim comment text, in runes.
const MaxCommentLength = 2000

// LifecycleService owns the listing status state machine and the claim
// sub-state machine of its comments. Every mutating operation checks the
// access policy first and runs as a single transaction, so a failure
// partway never leaves a comment CONFIRMED while the listing stays LOST.
type LifecycleService struct {
	db *gorm.DB
}

func NewLifecycleService(g *gorm.DB) *LifecycleService {
	return &LifecycleService{db: g}
}

// ListingInput carries the user-supplied fields of a listing.
type ListingInput struct {
	Title        string
	Description  string
	CategoryID   uint
	TownID       uint
	Lat          *float64
	Lng          *float64
	LocationName string
	DateEvent    time.Time
	ContactName  string
	ContactEmail string
	ContactPhone string
	ImagePaths   []string
}

func (in *ListingInput) validate(tx *gorm.DB) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("title and description are required: %w", ErrValidation)
	}
	if in.CategoryID == 0 || in.TownID == 0 {
		return fmt.Errorf("category and town are required: %w", ErrValidation)
	}
	var category models.Category
	if err := tx.First(&category, in.CategoryID).Error; err != nil {
		return fmt.Errorf("unknown category %d: %w", in.CategoryID, ErrValidation)
	}
	var town models.Town
	if err := tx.First(&town, in.TownID).Error; err != nil {
		return fmt.Errorf("unknown town %d: %w", in.TownID, ErrValidation)
	}
	return nil
}

// CreateListing creates a LOST listing with its images. Notification
// dispatch is the caller's job, after this commits.
func (s *LifecycleService) CreateListing(actor *models.User, in ListingInput) (*models.Listing, error) {
	if actor == nil {
		return nil, ErrAuthentication
	}

	listing := models.Listing{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Status:       models.StatusLost,
		CategoryID:   in.CategoryID,
		TownID:       in.TownID,
		Lat:          in.Lat,
		Lng:          in.Lng,
		LocationName: in.LocationName,
		DateEvent:    in.DateEvent,
		ContactName:  in.ContactName,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		OwnerID:      actor.ID,
	}
	if listing.DateEvent.IsZero() {
		listing.DateEvent = time.Now()
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := in.validate(tx); err != nil {
			return err
		}
		if err := tx.Create(&listing).Error; err != nil {
			return err
		}
		for _, path := range in.ImagePaths {
			img := models.ListingImage{ImagePath: path, ListingID: listing.ID}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// UpdateListing edits listing fields. Permitted for the owner or an
// admin. A status change must move forward (LOST -> FOUND -> RETURNED);
// a backward literal is rejected before anything is written.
func (s *LifecycleService) UpdateListing(listingID uint, actor *models.User, in ListingInput, status models.Status) (*models.Listing, error) {
	if actor == nil {
		return nil, ErrAuthentication
	}

	var listing models.Listing
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&listing, listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("listing %d: %w", listingID, ErrNotFound)
			}
			return err
		}
		if !IsListingOwner(actor, &listing) && !IsAdmin(actor) {
			return ErrAuthorization
		}
		if err := in.validate(tx); err != nil {
			return err
		}
		if status != listing.Status && !statusMovesForward(listing.Status, status) {
			return fmt.Errorf("status cannot move from %s to %s: %w", listing.Status, status, ErrValidation)
		}

		listing.Title = strings.TrimSpace(in.Title)
		listing.Description = strings.TrimSpace(in.Description)
		listing.CategoryID = in.CategoryID
		listing.TownID = in.TownID
		listing.Lat = in.Lat
		listing.Lng = in.Lng
		listing.LocationName = in.LocationName
		listing.ContactName = in.ContactName
		listing.ContactEmail = in.ContactEmail
		listing.ContactPhone = in.ContactPhone
		if !in.DateEvent.IsZero() {
			listing.DateEvent = in.DateEvent
		}
		listing.Status = status

		if err := tx.Save(&listing).Error; err != nil {
			return err
		}
		for _, path := range in.ImagePaths {
			img := models.ListingImage{ImagePath: path, ListingID: listing.ID}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func statusMovesForward(from, to models.Status) bool {
	switch from {
	case models.StatusLost:
		return to == models.StatusFound || to == models.StatusReturned
	case models.StatusFound:
		return to == models.StatusReturned
	}
	return false
}

// SubmitComment attaches a PENDING claim comment to a listing. Text must
// be 1..2000 runes after trimming.
func (s *LifecycleService) SubmitComment(listingID uint, author *models.User, text string, imagePaths []string) (*models.Comment, error) {
	if author == nil {
		return nil, ErrAuthentication
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("comment text is empty: %w", ErrValidation)
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return nil, fmt.Errorf("comment text exceeds %d characters: %w", MaxCommentLength, ErrValidation)
	}

	comment := models.Comment{
		Text:        text,
		Status:      models.CommentPending,
		CommenterID: author.ID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.First(&listing, listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("listing %d: %w", listingID, ErrNotFound)
			}
			return err
		}

		comment.ListingID = listing.ID
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		for _, path := range imagePaths {
			img := models.CommentImage{ImagePath: path, CommentID: comment.ID}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}
		return NotifyClaim(tx, models.NotificationTypeClaimComment, listing.OwnerID, author.ID, &listing)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// AcceptComment confirms a claim: comment -> CONFIRMED, listing ->
// FOUND, committed together. Only the listing owner may accept; admins
// have no bypass here. Re-accepting a non-PENDING comment is a silent
// no-op so a client retry cannot double-transition or error.
func (s *LifecycleService) AcceptComment(listingID, commentID uint, actor *models.User) error {
	return s.resolveComment(listingID, commentID, actor, true)
}

// RejectComment marks a claim REJECTED. The listing status is untouched:
// rejection never un-finds a listing. Same owner-only constraint and
// no-op rule as AcceptComment.
func (s *LifecycleService) RejectComment(listingID, commentID uint, actor *models.User) error {
	return s.resolveComment(listingID, commentID, actor, false)
}

func (s *LifecycleService) resolveComment(listingID, commentID uint, actor *models.User, accept bool) error {
	if actor == nil {
		return ErrAuthentication
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.First(&listing, listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("listing %d: %w", listingID, ErrNotFound)
			}
			return err
		}
		var comment models.Comment
		if err := tx.First(&comment, commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("comment %d: %w", commentID, ErrNotFound)
			}
			return err
		}
		if comment.ListingID != listing.ID {
			return fmt.Errorf("comment %d does not belong to listing %d: %w", commentID, listingID, ErrNotFound)
		}
		if !IsListingOwner(actor, &listing) {
			return ErrAuthorization
		}

		// CONFIRMED and REJECTED are terminal.
		if comment.Status != models.CommentPending {
			return nil
		}

		if accept {
			if err := tx.Model(&comment).Update("status", models.CommentConfirmed).Error; err != nil {
				return err
			}
			if err := tx.Model(&listing).Update("status", models.StatusFound).Error; err != nil {
				return err
			}
			return NotifyClaim(tx, models.NotificationTypeClaimConfirmed, comment.CommenterID, actor.ID, &listing)
		}

		if err := tx.Model(&comment).Update("status", models.CommentRejected).Error; err != nil {
			return err
		}
		return NotifyClaim(tx, models.NotificationTypeClaimRejected, comment.CommenterID, actor.ID, &listing)
	})
}

// MarkReturned sets the listing to RETURNED unconditionally, regardless
// of current status or pending claims. Owner only.
func (s *LifecycleService) MarkReturned(listingID uint, actor *models.User) error {
	if actor == nil {
		return ErrAuthentication
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.First(&listing, listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("listing %d: %w", listingID, ErrNotFound)
			}
			return err
		}
		if !IsListingOwner(actor, &listing) {
			return ErrAuthorization
		}
		return tx.Model(&listing).Update("status", models.StatusReturned).Error
	})
}

// DeleteComment removes a claim comment and its images. Permitted for an
// admin, the listing owner, or the comment's author.
func (s *LifecycleService) DeleteComment(listingID, commentID uint, actor *models.User) error {
	if actor == nil {
		return ErrAuthentication
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.First(&listing, listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("listing %d: %w", listingID, ErrNotFound)
			}
			return err
		}
		var comment models.Comment
		if err := tx.First(&comment, commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("comment %d: %w", commentID, ErrNotFound)
			}
			return err
		}
		if comment.ListingID != listing.ID {
			return fmt.Errorf("comment %d does not belong to listing %d: %w", commentID, listingID, ErrNotFound)
		}
		if !IsAdmin(actor) && !IsListingOwner(actor, &listing) && !IsCommentOwner(actor, &comment) {
			return ErrAuthorization
		}
		return deleteCommentCascade(tx, comment.ID)
	})
}

// DeleteListing removes a listing with all attached images, comments and
// the comments' images. Permitted for an admin or the owner.
func (s *LifecycleService) DeleteListing(listingID uint, actor *models.User) error {
	if actor == nil {
		return ErrAuthentication
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.First(&listing, listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("listing %d: %w", listingID, ErrNotFound)
			}
			return err
		}
		if !IsAdmin(actor) && !IsListingOwner(actor, &listing) {
			return ErrAuthorization
		}
		return deleteListingCascade(tx, listing.ID)
	})
}

// DeleteUser removes a user together with their listings and comments.
// Admin only; an admin cannot delete their own account.
func (s *LifecycleService) DeleteUser(userID uint, actor *models.User) error {
	if actor == nil {
		return ErrAuthentication
	}
	if !IsAdmin(actor) {
		return ErrAuthorization
	}
	if actor.ID == userID {
		return fmt.Errorf("cannot delete own admin account: %w", ErrValidation)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %d: %w", userID, ErrNotFound)
			}
			return err
		}

		var listingIDs []uint
		if err := tx.Model(&models.Listing{}).Where("owner_id = ?", user.ID).Pluck("id", &listingIDs).Error; err != nil {
			return err
		}
		for _, id := range listingIDs {
			if err := deleteListingCascade(tx, id); err != nil {
				return err
			}
		}

		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("commenter_id = ?", user.ID).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		for _, id := range commentIDs {
			if err := deleteCommentCascade(tx, id); err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ? OR actor_id = ?", user.ID, user.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// Cascade order: dependent image rows first, then the parent, so the
// delete is atomic within the surrounding transaction.

func deleteCommentCascade(tx *gorm.DB, commentID uint) error {
	if err := tx.Where("comment_id = ?", commentID).Delete(&models.CommentImage{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Comment{}, commentID).Error
}

func deleteListingCascade(tx *gorm.DB, listingID uint) error {
	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).Where("listing_id = ?", listingID).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	for _, id := range commentIDs {
		if err := deleteCommentCascade(tx, id); err != nil {
			return err
		}
	}
	if err := tx.Where("listing_id = ?", listingID).Delete(&models.ListingImage{}).Error; err != nil {
		return err
	}
	if err := tx.Where("listing_id = ?", listingID).Delete(&models.Notification{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Listing{}, listingID).Error
}
