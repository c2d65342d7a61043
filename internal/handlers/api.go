package handlers

import (
	"fmt"
	"net/http"

	"lostfound/internal/db"
	"lostfound/internal/models"

	"github.com/gin-gonic/gin"
)

type APIHandler struct{}

func NewAPIHandler() *APIHandler {
	return &APIHandler{}
}

// Listings returns every non-RETURNED listing as JSON, consumed by the
// map page for its markers.
func (h *APIHandler) Listings(c *gin.Context) {
	var listings []models.Listing
	db.DB.Preload("Category").Preload("Images").
		Where("status <> ?", models.StatusReturned).
		Order("created_at DESC").
		Find(&listings)

	data := make([]gin.H, 0, len(listings))
	for _, l := range listings {
		var picture interface{}
		if len(l.Images) > 0 {
			picture = "/uploads/" + l.Images[0].ImagePath
		}
		data = append(data, gin.H{
			"id":            l.ID,
			"title":         l.Title,
			"status":        l.Status,
			"category":      l.Category.Name,
			"lat":           l.Lat,
			"lng":           l.Lng,
			"location_name": l.LocationName,
			"url":           fmt.Sprintf("/listings/%d", l.ID),
			"picture":       picture,
			"date":          l.CreatedAt.Format("02.01.2006 15:04"),
		})
	}

	c.JSON(http.StatusOK, data)
}
