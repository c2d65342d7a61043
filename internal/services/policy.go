package services

import (
	"lostfound/internal/models"
)

// Access policy predicates. Pure checks with no side effects; every
// mutating operation in the lifecycle engine composes these after an
// authentication check. Kept in one place so the ownership rules for
// delete/edit/accept/reject cannot drift apart.

func IsAdmin(user *models.User) bool {
	return user != nil && user.Role == models.RoleAdmin
}

func IsListingOwner(user *models.User, listing *models.Listing) bool {
	return user != nil && listing != nil && user.ID == listing.OwnerID
}

func IsCommentOwner(user *models.User, comment *models.Comment) bool {
	return user != nil && comment != nil && user.ID == comment.CommenterID
}
