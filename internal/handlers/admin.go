package handlers

import (
	"errors"
	"net/http"

	"lostfound/internal/db"
	"lostfound/internal/middleware"
	"lostfound/internal/models"
	"lostfound/internal/services"
	"lostfound/internal/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	lifecycle *services.LifecycleService
}

func NewAdminHandler(lifecycle *services.LifecycleService) *AdminHandler {
	return &AdminHandler{lifecycle: lifecycle}
}

// Dashboard renders the admin overview with user/listing counts and the
// users and listings tabs.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	tab := c.DefaultQuery("tab", "overview")

	var totalUsers int64
	db.DB.Model(&models.User{}).Count(&totalUsers)
	var totalListings int64
	db.DB.Model(&models.Listing{}).Count(&totalListings)

	type statusCount struct {
		Status models.Status
		Count  int64
	}
	var byStatus []statusCount
	db.DB.Model(&models.Listing{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&byStatus)

	statusCounts := make(map[models.Status]int64, len(byStatus))
	for _, sc := range byStatus {
		statusCounts[sc.Status] = sc.Count
	}

	var users []models.User
	var listings []models.Listing
	switch tab {
	case "users":
		db.DB.Order("created_at DESC").Find(&users)
	case "listings":
		db.DB.Preload("Owner").Preload("Category").Preload("Town").
			Order("created_at DESC").
			Find(&listings)
	}

	Render(c, http.StatusOK, "admin/dashboard.html", gin.H{
		"Title":         "Администрация",
		"Tab":           tab,
		"TotalUsers":    totalUsers,
		"TotalListings": totalListings,
		"StatusCounts":  statusCounts,
		"Users":         users,
		"Listings":      listings,
	})
}

// DeleteUser removes a user together with all their listings and
// comments. Admins cannot delete their own account.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	admin := c.MustGet(middleware.CheckUserKey).(*models.User)
	userID := utils.StringToUint(c.Param("id"))

	err := h.lifecycle.DeleteUser(userID, admin)
	switch {
	case err == nil:
		utils.GetCache().Purge()
		Flash(c, "success", "Потребителят и всички негови обяви бяха изтрити.")
	case errors.Is(err, services.ErrNotFound):
		Flash(c, "warning", "Потребителят не е намерен.")
	case errors.Is(err, services.ErrValidation):
		Flash(c, "danger", "Не можете да изтриете собствения си администраторски акаунт.")
	default:
		RenderServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/admin?tab=users")
}

// DeleteListing removes any listing from the listings tab.
func (h *AdminHandler) DeleteListing(c *gin.Context) {
	admin := c.MustGet(middleware.CheckUserKey).(*models.User)
	listingID := utils.StringToUint(c.Param("id"))

	if err := h.lifecycle.DeleteListing(listingID, admin); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			Flash(c, "warning", "Обявата не е намерена.")
			c.Redirect(http.StatusFound, "/admin?tab=listings")
			return
		}
		RenderServiceError(c, err)
		return
	}

	utils.GetCache().Purge()
	Flash(c, "success", "Обявата беше изтрита.")
	c.Redirect(http.StatusFound, "/admin?tab=listings")
}
