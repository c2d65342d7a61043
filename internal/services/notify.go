package services

import (
	"fmt"
	"os"
	"sort"

	"lostfound/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Notifier struct {
	db     *gorm.DB
	sender Sender
}

func NewNotifier(g *gorm.DB, sender Sender) *Notifier {
	return &Notifier{db: g, sender: sender}
}

// SiteURL returns the externally resolvable base URL of the site.
func SiteURL() string {
	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:8080"
	}
	return siteURL
}

// Recipients computes the subscriber set for a newly created listing:
// users opted in, matching the listing's town or category, excluding the
// owner. Deduplicated and sorted for reproducible output.
func (n *Notifier) Recipients(listing *models.Listing) ([]string, error) {
	var emails []string
	err := n.db.Model(&models.User{}).
		Where("notify_enabled = ?", true).
		Where("id <> ?", listing.OwnerID).
		Where("notify_town_id = ? OR notify_category_id = ?", listing.TownID, listing.CategoryID).
		Pluck("email", &emails).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(emails))
	unique := emails[:0]
	for _, e := range emails {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		unique = append(unique, e)
	}
	sort.Strings(unique)
	return unique, nil
}

// NotifyListingCreated mails every subscriber whose preferences match the
// new listing. Returns the recipient count; an empty set is not an
// error. Callers treat the dispatch as best-effort: the listing is
// already committed when this runs, so a DeliveryError must be logged,
// never bubbled up to the creation flow.
func (n *Notifier) NotifyListingCreated(listing *models.Listing) (int, error) {
	emails, err := n.Recipients(listing)
	if err != nil {
		return 0, err
	}
	if len(emails) == 0 {
		return 0, nil
	}

	link := fmt.Sprintf("%s/listings/%d", SiteURL(), listing.ID)
	subject := fmt.Sprintf("[Lost&Found] Нова обява: %s", listing.Title)
	text := fmt.Sprintf("Появи се нова обява:\n%s\n%s\n%s\n",
		listing.Title, listing.LocationName, link)
	html := fmt.Sprintf(`<p>Появи се нова обява, която отговаря на вашите предпочитания.</p>
<p><b>%s</b> — %s</p>
<p><a href="%s">Виж обявата</a></p>`,
		listing.Title, listing.LocationName, link)

	if err := n.sender.Send(emails, subject, text, html); err != nil {
		return 0, err
	}

	log.Info().Uint("listing_id", listing.ID).Int("recipients", len(emails)).
		Msg("sent listing notification")
	return len(emails), nil
}

// NotifyClaim writes an in-app notification row for a claim lifecycle
// event. Runs inside the caller's transaction when one is passed.
func NotifyClaim(tx *gorm.DB, typ models.NotificationType, recipientID uint, actorID uint, listing *models.Listing) error {
	if recipientID == actorID {
		return nil
	}

	var reason string
	switch typ {
	case models.NotificationTypeClaimComment:
		reason = fmt.Sprintf("Нов коментар по обявата ви „%s“.", listing.Title)
	case models.NotificationTypeClaimConfirmed:
		reason = fmt.Sprintf("Вашият коментар по „%s“ беше потвърден — вещта е намерена!", listing.Title)
	case models.NotificationTypeClaimRejected:
		reason = fmt.Sprintf("Вашият коментар по „%s“ беше отбелязан като „Не е това“.", listing.Title)
	default:
		reason = listing.Title
	}

	notification := models.Notification{
		UserID:    recipientID,
		ActorID:   &actorID,
		Type:      typ,
		Reason:    reason,
		ListingID: &listing.ID,
	}
	return tx.Create(&notification).Error
}
