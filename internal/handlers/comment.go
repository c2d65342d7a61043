package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"lostfound/internal/middleware"
	"lostfound/internal/models"
	"lostfound/internal/services"
	"lostfound/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	lifecycle *services.LifecycleService
	images    *services.ImageStore
}

func NewCommentHandler(lifecycle *services.LifecycleService, images *services.ImageStore) *CommentHandler {
	return &CommentHandler{lifecycle: lifecycle, images: images}
}

func detailPath(listingID uint) string {
	return fmt.Sprintf("/listings/%d", listingID)
}

// Create submits a claim comment on a listing, with optional images.
func (h *CommentHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	listingID := utils.StringToUint(c.Param("id"))

	var imagePaths []string
	if form, err := c.MultipartForm(); err == nil {
		for _, header := range form.File["images"] {
			if header.Filename == "" || header.Size == 0 {
				continue
			}
			f, err := header.Open()
			if err != nil {
				continue
			}
			path, err := h.images.Save(f)
			f.Close()
			if err != nil {
				if errors.Is(err, services.ErrInvalidImage) {
					Flash(c, "warning", fmt.Sprintf("Файлът %s не е валидно изображение и беше пропуснат.", header.Filename))
				}
				continue
			}
			imagePaths = append(imagePaths, path)
		}
	}

	_, err := h.lifecycle.SubmitComment(listingID, user, c.PostForm("text"), imagePaths)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			Flash(c, "danger", "Моля, напишете нещо във формата!")
			c.Redirect(http.StatusFound, detailPath(listingID))
			return
		}
		RenderServiceError(c, err)
		return
	}

	Flash(c, "success", "Успешно оставихте коментар!")
	c.Redirect(http.StatusFound, detailPath(listingID))
}

// Accept confirms a claim: the comment becomes CONFIRMED and the listing
// FOUND. Owner only; repeated clicks are a no-op.
func (h *CommentHandler) Accept(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	listingID := utils.StringToUint(c.Param("id"))
	commentID := utils.StringToUint(c.Param("comment_id"))

	if err := h.lifecycle.AcceptComment(listingID, commentID, user); err != nil {
		RenderServiceError(c, err)
		return
	}

	utils.GetCache().Purge()
	Flash(c, "success", "Вашата вещ е успешно намерена!")
	c.Redirect(http.StatusFound, detailPath(listingID))
}

// Reject marks a claim REJECTED; the listing status stays as it is.
func (h *CommentHandler) Reject(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	listingID := utils.StringToUint(c.Param("id"))
	commentID := utils.StringToUint(c.Param("comment_id"))

	if err := h.lifecycle.RejectComment(listingID, commentID, user); err != nil {
		RenderServiceError(c, err)
		return
	}

	Flash(c, "info", "Коментарът е отбелязан като „Не е това“.")
	c.Redirect(http.StatusFound, detailPath(listingID))
}

// Delete removes a comment. Allowed for the comment author, the listing
// owner and admins.
func (h *CommentHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	listingID := utils.StringToUint(c.Param("id"))
	commentID := utils.StringToUint(c.Param("comment_id"))

	if err := h.lifecycle.DeleteComment(listingID, commentID, user); err != nil {
		RenderServiceError(c, err)
		return
	}

	Flash(c, "success", "Коментарът е изтрит.")
	c.Redirect(http.StatusFound, detailPath(listingID))
}
