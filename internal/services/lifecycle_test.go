package services

import (
	"strings"
	"testing"
	"time"

	"lostfound/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type lifecycleFixture struct {
	g        *gorm.DB
	svc      *LifecycleService
	owner    *models.User
	stranger *models.User
	admin    *models.User
	town     *models.Town
	category *models.Category
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	g := newTestDB(t)
	return &lifecycleFixture{
		g:        g,
		svc:      NewLifecycleService(g),
		owner:    createUser(t, g, "owner@example.com", models.RoleUser),
		stranger: createUser(t, g, "stranger@example.com", models.RoleUser),
		admin:    createUser(t, g, "admin@example.com", models.RoleAdmin),
		town:     createTown(t, g, "София"),
		category: createCategory(t, g, "Ключове"),
	}
}

func (f *lifecycleFixture) input() ListingInput {
	return ListingInput{
		Title:       "Изгубени ключове",
		Description: "Връзка ключове със син ключодържател.",
		CategoryID:  f.category.ID,
		TownID:      f.town.ID,
		DateEvent:   time.Now(),
	}
}

func (f *lifecycleFixture) listingStatus(t *testing.T, id uint) models.Status {
	t.Helper()
	var listing models.Listing
	require.NoError(t, f.g.First(&listing, id).Error)
	return listing.Status
}

func (f *lifecycleFixture) commentStatus(t *testing.T, id uint) models.CommentStatus {
	t.Helper()
	var comment models.Comment
	require.NoError(t, f.g.First(&comment, id).Error)
	return comment.Status
}

func TestCreateListingStartsLost(t *testing.T) {
	f := newLifecycleFixture(t)

	listing, err := f.svc.CreateListing(f.owner, f.input())
	require.NoError(t, err)
	assert.Equal(t, models.StatusLost, listing.Status)
	assert.Equal(t, f.owner.ID, listing.OwnerID)
	assert.Equal(t, "изгубени ключове", listing.TitleSearch)
}

func TestCreateListingRequiresUser(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.svc.CreateListing(nil, f.input())
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestCreateListingValidation(t *testing.T) {
	f := newLifecycleFixture(t)

	cases := map[string]func(*ListingInput){
		"blank title":      func(in *ListingInput) { in.Title = "   " },
		"blank desc":       func(in *ListingInput) { in.Description = "" },
		"no category":      func(in *ListingInput) { in.CategoryID = 0 },
		"no town":          func(in *ListingInput) { in.TownID = 0 },
		"unknown category": func(in *ListingInput) { in.CategoryID = 999 },
		"unknown town":     func(in *ListingInput) { in.TownID = 999 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := f.input()
			mutate(&in)
			_, err := f.svc.CreateListing(f.owner, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	var count int64
	f.g.Model(&models.Listing{}).Count(&count)
	assert.Zero(t, count, "failed creations must not leave rows behind")
}

func TestSubmitCommentRejectsBlankText(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)

	_, err := f.svc.SubmitComment(listing.ID, f.stranger, "   \n\t  ", nil)
	assert.ErrorIs(t, err, ErrValidation)

	var count int64
	f.g.Model(&models.Comment{}).Count(&count)
	assert.Zero(t, count)
}

func TestSubmitCommentRejectsOversizedText(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)

	_, err := f.svc.SubmitComment(listing.ID, f.stranger, strings.Repeat("я", MaxCommentLength+1), nil)
	assert.ErrorIs(t, err, ErrValidation)

	// Exactly at the limit is fine; the limit counts runes, not bytes.
	_, err = f.svc.SubmitComment(listing.ID, f.stranger, strings.Repeat("я", MaxCommentLength), nil)
	assert.NoError(t, err)
}

func TestSubmitCommentNotifiesOwner(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)

	comment, err := f.svc.SubmitComment(listing.ID, f.stranger, "Намерих го!", nil)
	require.NoError(t, err)
	assert.Equal(t, models.CommentPending, comment.Status)

	var notifications []models.Notification
	f.g.Where("user_id = ?", f.owner.ID).Find(&notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeClaimComment, notifications[0].Type)
}

func TestSubmitCommentOnOwnListingSkipsNotification(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)

	_, err := f.svc.SubmitComment(listing.ID, f.owner, "Допълнение: кафяв на цвят.", nil)
	require.NoError(t, err)

	var count int64
	f.g.Model(&models.Notification{}).Count(&count)
	assert.Zero(t, count, "no self-notification")
}

func TestAcceptCommentConfirmsAndMarksFound(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)
	comment, err := f.svc.SubmitComment(listing.ID, f.stranger, "Намерих го!", nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.AcceptComment(listing.ID, comment.ID, f.owner))

	assert.Equal(t, models.CommentConfirmed, f.commentStatus(t, comment.ID))
	assert.Equal(t, models.StatusFound, f.listingStatus(t, listing.ID))

	var notifications []models.Notification
	f.g.Where("user_id = ?", f.stranger.ID).Find(&notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeClaimConfirmed, notifications[0].Type)
}

func TestAcceptCommentIsIdempotent(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)
	comment, err := f.svc.SubmitComment(listing.ID, f.stranger, "Намерих го!", nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.AcceptComment(listing.ID, comment.ID, f.owner))
	// Retry on an already confirmed comment is a silent no-op.
	require.NoError(t, f.svc.AcceptComment(listing.ID, comment.ID, f.owner))
	// So is a late reject: CONFIRMED is terminal.
	require.NoError(t, f.svc.RejectComment(listing.ID, comment.ID, f.owner))

	assert.Equal(t, models.CommentConfirmed, f.commentStatus(t, comment.ID))
	assert.Equal(t, models.StatusFound, f.listingStatus(t, listing.ID))

	var count int64
	f.g.Model(&models.Notification{}).Where("user_id = ?", f.stranger.ID).Count(&count)
	assert.EqualValues(t, 1, count, "retries must not duplicate notifications")
}

func TestRejectCommentLeavesListingStatus(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)
	comment, err := f.svc.SubmitComment(listing.ID, f.stranger, "Може би е този?", nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.RejectComment(listing.ID, comment.ID, f.owner))

	assert.Equal(t, models.CommentRejected, f.commentStatus(t, comment.ID))
	assert.Equal(t, models.StatusLost, f.listingStatus(t, listing.ID))

	// REJECTED is terminal, a later accept changes nothing.
	require.NoError(t, f.svc.AcceptComment(listing.ID, comment.ID, f.owner))
	assert.Equal(t, models.CommentRejected, f.commentStatus(t, comment.ID))
	assert.Equal(t, models.StatusLost, f.listingStatus(t, listing.ID))
}

func TestResolveCommentOwnerOnly(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)
	comment, err := f.svc.SubmitComment(listing.ID, f.stranger, "Намерих го!", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.AcceptComment(listing.ID, comment.ID, f.stranger), ErrAuthorization)
	// Admins moderate content but cannot speak for the owner.
	assert.ErrorIs(t, f.svc.AcceptComment(listing.ID, comment.ID, f.admin), ErrAuthorization)
	assert.ErrorIs(t, f.svc.RejectComment(listing.ID, comment.ID, f.admin), ErrAuthorization)

	assert.Equal(t, models.CommentPending, f.commentStatus(t, comment.ID))
	assert.Equal(t, models.StatusLost, f.listingStatus(t, listing.ID))
}

func TestResolveCommentWrongListing(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)
	other := createListing(t, f.g, f.owner, "Изгубен чадър", f.category.ID, f.town.ID)
	comment, err := f.svc.SubmitComment(listing.ID, f.stranger, "Намерих го!", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.AcceptComment(other.ID, comment.ID, f.owner), ErrNotFound)
	assert.ErrorIs(t, f.svc.AcceptComment(999, comment.ID, f.owner), ErrNotFound)
	assert.ErrorIs(t, f.svc.AcceptComment(listing.ID, 999, f.owner), ErrNotFound)
}

func TestUpdateListingStatusOnlyMovesForward(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)
	in := f.input()

	// Forward: LOST -> FOUND.
	_, err := f.svc.UpdateListing(listing.ID, f.owner, in, models.StatusFound)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFound, f.listingStatus(t, listing.ID))

	// Backward: FOUND -> LOST is rejected.
	_, err = f.svc.UpdateListing(listing.ID, f.owner, in, models.StatusLost)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, models.StatusFound, f.listingStatus(t, listing.ID))

	// Keeping the current status is always allowed.
	_, err = f.svc.UpdateListing(listing.ID, f.owner, in, models.StatusFound)
	require.NoError(t, err)

	// Forward again: FOUND -> RETURNED, then nothing moves.
	_, err = f.svc.UpdateListing(listing.ID, f.owner, in, models.StatusReturned)
	require.NoError(t, err)
	_, err = f.svc.UpdateListing(listing.ID, f.owner, in, models.StatusFound)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, models.StatusReturned, f.listingStatus(t, listing.ID))
}

func TestUpdateListingAuthz(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)
	in := f.input()

	_, err := f.svc.UpdateListing(listing.ID, f.stranger, in, models.StatusLost)
	assert.ErrorIs(t, err, ErrAuthorization)

	// Admins may edit any listing.
	_, err = f.svc.UpdateListing(listing.ID, f.admin, in, models.StatusLost)
	assert.NoError(t, err)
}

func TestMarkReturned(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)

	// Skips FOUND entirely: LOST -> RETURNED is a legal shortcut.
	require.NoError(t, f.svc.MarkReturned(listing.ID, f.owner))
	assert.Equal(t, models.StatusReturned, f.listingStatus(t, listing.ID))
}

func TestMarkReturnedOwnerOnly(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)

	assert.ErrorIs(t, f.svc.MarkReturned(listing.ID, f.stranger), ErrAuthorization)
	assert.ErrorIs(t, f.svc.MarkReturned(listing.ID, f.admin), ErrAuthorization)
	assert.Equal(t, models.StatusLost, f.listingStatus(t, listing.ID))
}

func TestDeleteCommentAuthz(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)
	comment, err := f.svc.SubmitComment(listing.ID, f.stranger, "Намерих го!", nil)
	require.NoError(t, err)

	other := createUser(t, f.g, "other@example.com", models.RoleUser)
	assert.ErrorIs(t, f.svc.DeleteComment(listing.ID, comment.ID, other), ErrAuthorization)

	// The author may delete their own comment.
	require.NoError(t, f.svc.DeleteComment(listing.ID, comment.ID, f.stranger))

	var count int64
	f.g.Model(&models.Comment{}).Count(&count)
	assert.Zero(t, count)
}

func TestDeleteListingCascades(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)
	require.NoError(t, f.g.Create(&models.ListingImage{ImagePath: "a.jpg", ListingID: listing.ID}).Error)

	comment, err := f.svc.SubmitComment(listing.ID, f.stranger, "Намерих го!", nil)
	require.NoError(t, err)
	require.NoError(t, f.g.Create(&models.CommentImage{ImagePath: "b.jpg", CommentID: comment.ID}).Error)

	require.NoError(t, f.svc.DeleteListing(listing.ID, f.owner))

	for _, model := range []interface{}{
		&models.Listing{}, &models.ListingImage{},
		&models.Comment{}, &models.CommentImage{},
		&models.Notification{},
	} {
		var count int64
		f.g.Model(model).Count(&count)
		assert.Zero(t, count, "%T must be cleaned up", model)
	}
}

func TestDeleteListingAuthz(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.owner, "Изгубен портфейл", f.category.ID, f.town.ID)

	assert.ErrorIs(t, f.svc.DeleteListing(listing.ID, f.stranger), ErrAuthorization)
	assert.NoError(t, f.svc.DeleteListing(listing.ID, f.admin))
}

func TestDeleteUser(t *testing.T) {
	f := newLifecycleFixture(t)
	listing := createListing(t, f.g, f.stranger, "Изгубен чадър", f.category.ID, f.town.ID)
	_, err := f.svc.SubmitComment(listing.ID, f.owner, "Виждал съм подобен.", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteUser(f.stranger.ID, f.owner), ErrAuthorization)
	assert.ErrorIs(t, f.svc.DeleteUser(f.admin.ID, f.admin), ErrValidation)
	assert.ErrorIs(t, f.svc.DeleteUser(999, f.admin), ErrNotFound)

	require.NoError(t, f.svc.DeleteUser(f.stranger.ID, f.admin))

	var count int64
	f.g.Model(&models.User{}).Where("id = ?", f.stranger.ID).Count(&count)
	assert.Zero(t, count)
	f.g.Model(&models.Listing{}).Count(&count)
	assert.Zero(t, count, "the user's listings go with them")
}
