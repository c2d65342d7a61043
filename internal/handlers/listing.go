package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/http"
	"time"

	"lostfound/internal/db"
	"lostfound/internal/middleware"
	"lostfound/internal/models"
	"lostfound/internal/services"
	"lostfound/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ListingHandler struct {
	lifecycle *services.LifecycleService
	search    *services.SearchService
	notifier  *services.Notifier
	images    *services.ImageStore
}

func NewListingHandler(lifecycle *services.LifecycleService, search *services.SearchService, notifier *services.Notifier, images *services.ImageStore) *ListingHandler {
	return &ListingHandler{
		lifecycle: lifecycle,
		search:    search,
		notifier:  notifier,
		images:    images,
	}
}

// saveUploads stores every non-empty file of a multipart field, skipping
// invalid images with a flash instead of failing the whole request.
func (h *ListingHandler) saveUploads(c *gin.Context, field string) []string {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}

	var paths []string
	for _, header := range form.File[field] {
		if header.Filename == "" || header.Size == 0 {
			continue
		}
		path, err := h.saveOne(header)
		if err != nil {
			if errors.Is(err, services.ErrInvalidImage) {
				Flash(c, "warning", fmt.Sprintf("Файлът %s не е валидно изображение и беше пропуснат.", header.Filename))
				continue
			}
			log.Error().Err(err).Str("file", header.Filename).Msg("failed to store upload")
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

func (h *ListingHandler) saveOne(header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.images.Save(f)
}

// Index lists listings with search, category/town filters and
// pagination.
func (h *ListingHandler) Index(c *gin.Context) {
	filter := services.ListingFilter{
		Query:      c.Query("q"),
		CategoryID: utils.StringToUint(c.Query("category")),
		TownID:     utils.StringToUint(c.Query("town")),
		Page:       utils.StringToInt(c.DefaultQuery("page", "1")),
	}

	cacheKey := fmt.Sprintf("listing:index:q=%s:c=%d:t=%d:p=%d",
		filter.Query, filter.CategoryID, filter.TownID, filter.Page)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if hData, ok := cached.(gin.H); ok {
			// Render injects per-request keys (CurrentUser, Flashes), so
			// the shared cached map must never be passed in directly.
			Render(c, http.StatusOK, "listings/index.html", copyH(hData))
			return
		}
	}

	page, err := h.search.FilterListings(filter)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Възникна неочаквана грешка.")
		return
	}

	var categories []models.Category
	db.DB.Order("name ASC").Find(&categories)
	var towns []models.Town
	db.DB.Order("name ASC").Find(&towns)

	renderData := gin.H{
		"Title":       "Обяви",
		"Listings":    page.Listings,
		"Total":       page.Total,
		"CurrentPage": page.Page,
		"TotalPages":  page.TotalPages,
		"Query":       filter.Query,
		"CategoryID":  filter.CategoryID,
		"TownID":      filter.TownID,
		"Categories":  categories,
		"Towns":       towns,
	}

	utils.GetCache().Set(cacheKey, renderData, 1*time.Minute)
	Render(c, http.StatusOK, "listings/index.html", copyH(renderData))
}

func copyH(src gin.H) gin.H {
	dst := make(gin.H, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Detail shows one listing with its comments and the claim form.
func (h *ListingHandler) Detail(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	var listing models.Listing
	err := db.DB.Preload("Owner").Preload("Category").Preload("Town").Preload("Images").
		First(&listing, id).Error
	if err != nil {
		RenderError(c, http.StatusNotFound, "Обявата не съществува.")
		return
	}

	var comments []models.Comment
	db.DB.Preload("Commenter").Preload("Images").
		Where("listing_id = ?", listing.ID).
		Order("created_at ASC").
		Find(&comments)

	type renderedComment struct {
		models.Comment
		TextHTML template.HTML
	}
	rendered := make([]renderedComment, len(comments))
	for i, com := range comments {
		rendered[i] = renderedComment{Comment: com, TextHTML: utils.RenderMarkdown(com.Text)}
	}

	user := middleware.CurrentUser(c)

	Render(c, http.StatusOK, "listings/detail.html", gin.H{
		"Title":           listing.Title,
		"Listing":         listing,
		"DescriptionHTML": utils.RenderMarkdown(listing.Description),
		"Comments":        rendered,
		"IsOwner":         services.IsListingOwner(user, &listing),
		"CanDelete":       services.IsListingOwner(user, &listing) || services.IsAdmin(user),
	})
}

func (h *ListingHandler) ShowCreate(c *gin.Context) {
	var categories []models.Category
	db.DB.Order("name ASC").Find(&categories)
	var towns []models.Town
	db.DB.Order("name ASC").Find(&towns)

	Render(c, http.StatusOK, "listings/create.html", gin.H{
		"Title":      "Нова обява",
		"Categories": categories,
		"Towns":      towns,
	})
}

func (h *ListingHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	in := h.listingInput(c)
	in.ImagePaths = h.saveUploads(c, "images")

	listing, err := h.lifecycle.CreateListing(user, in)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			Flash(c, "danger", "Моля, попълни всички задължителни полета.")
			c.Redirect(http.StatusFound, "/listings/create")
			return
		}
		RenderServiceError(c, err)
		return
	}

	utils.GetCache().Purge()

	// Dispatch is best-effort and runs outside the creation
	// transaction: a slow or failing mail server must never abort an
	// already committed listing.
	go func(l models.Listing) {
		if _, err := h.notifier.NotifyListingCreated(&l); err != nil {
			log.Error().Err(err).Uint("listing_id", l.ID).Msg("listing notification failed")
		}
	}(*listing)

	Flash(c, "success", "Обявата е създадена успешно!")
	c.Redirect(http.StatusFound, fmt.Sprintf("/listings/%d", listing.ID))
}

func (h *ListingHandler) listingInput(c *gin.Context) services.ListingInput {
	in := services.ListingInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		CategoryID:   utils.StringToUint(c.PostForm("category_id")),
		TownID:       utils.StringToUint(c.PostForm("town_id")),
		Lat:          utils.StringToFloat(c.PostForm("lat")),
		Lng:          utils.StringToFloat(c.PostForm("lng")),
		LocationName: c.PostForm("location_name"),
		ContactName:  c.PostForm("contact_name"),
		ContactEmail: c.PostForm("contact_email"),
		ContactPhone: c.PostForm("contact_phone"),
	}
	if dateStr := c.PostForm("date_event"); dateStr != "" {
		if d, err := time.Parse("2006-01-02", dateStr); err == nil {
			in.DateEvent = d
		}
	}
	return in
}

func (h *ListingHandler) ShowEdit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToUint(c.Param("id"))

	var listing models.Listing
	if err := db.DB.Preload("Images").First(&listing, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Обявата не съществува.")
		return
	}
	if !services.IsListingOwner(user, &listing) && !services.IsAdmin(user) {
		RenderError(c, http.StatusForbidden, "Нямате права да редактирате тази обява.")
		return
	}

	var categories []models.Category
	db.DB.Order("name ASC").Find(&categories)
	var towns []models.Town
	db.DB.Order("name ASC").Find(&towns)

	Render(c, http.StatusOK, "listings/edit.html", gin.H{
		"Title":      "Редакция",
		"Listing":    listing,
		"Categories": categories,
		"Towns":      towns,
		"Statuses":   []models.Status{models.StatusLost, models.StatusFound, models.StatusReturned},
	})
}

func (h *ListingHandler) Edit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToUint(c.Param("id"))

	statusVal := c.PostForm("status")
	status, ok := models.ParseStatus(statusVal)
	if !ok {
		Flash(c, "danger", "Невалиден статус.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/listings/edit/%d", id))
		return
	}

	in := h.listingInput(c)
	in.ImagePaths = h.saveUploads(c, "images")

	if _, err := h.lifecycle.UpdateListing(id, user, in, status); err != nil {
		if errors.Is(err, services.ErrValidation) {
			Flash(c, "danger", "Невалидни данни за обявата.")
			c.Redirect(http.StatusFound, fmt.Sprintf("/listings/edit/%d", id))
			return
		}
		RenderServiceError(c, err)
		return
	}

	utils.GetCache().Purge()
	Flash(c, "success", "Успешно променихте обявата.")
	c.Redirect(http.StatusFound, fmt.Sprintf("/listings/%d", id))
}

func (h *ListingHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToUint(c.Param("id"))

	if err := h.lifecycle.DeleteListing(id, user); err != nil {
		RenderServiceError(c, err)
		return
	}

	utils.GetCache().Purge()
	Flash(c, "success", "Обявата беше изтрита успешно.")
	c.Redirect(http.StatusFound, "/")
}

// Returned marks the listing RETURNED (owner shortcut), regardless of
// current status.
func (h *ListingHandler) Returned(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToUint(c.Param("id"))

	if err := h.lifecycle.MarkReturned(id, user); err != nil {
		RenderServiceError(c, err)
		return
	}

	utils.GetCache().Purge()
	Flash(c, "success", "Обявата е отбелязана като ВЪРНАТА — честито!")
	c.Redirect(http.StatusFound, fmt.Sprintf("/listings/%d", id))
}

// MapView renders the map page; markers come from the JSON API.
func (h *ListingHandler) MapView(c *gin.Context) {
	Render(c, http.StatusOK, "listings/map.html", gin.H{"Title": "Карта"})
}
