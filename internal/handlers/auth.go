package handlers

import (
	"net/http"
	"strings"

	"lostfound/internal/db"
	"lostfound/internal/middleware"
	"lostfound/internal/models"
	"lostfound/internal/services"
	"lostfound/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	captchaService *services.CaptchaService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		captchaService: services.NewCaptchaService(),
	}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set("captcha_answer", answer)
	session.Save()
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Title": "Регистрация", "Captcha": question})
}

func (h *AuthHandler) renderRegisterError(c *gin.Context, message string) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set("captcha_answer", answer)
	session.Save()
	Render(c, http.StatusBadRequest, "auth/register.html", gin.H{
		"Title":   "Регистрация",
		"Error":   message,
		"Captcha": question,
		"Email":   c.PostForm("email"),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	email := strings.TrimSpace(strings.ToLower(c.PostForm("email")))
	password := c.PostForm("password")
	repeat := c.PostForm("repeat_password")
	captchaInput := c.PostForm("captcha")

	session := sessions.Default(c)
	expectedAnswer, ok := session.Get("captcha_answer").(int)
	if !ok || utils.StringToInt(captchaInput) != expectedAnswer {
		h.renderRegisterError(c, "Грешен отговор на контролния въпрос.")
		return
	}
	session.Delete("captcha_answer")
	session.Save()

	if !strings.Contains(email, "@") {
		h.renderRegisterError(c, "Невалиден имейл адрес.")
		return
	}
	if len(password) < 5 {
		h.renderRegisterError(c, "Паролата трябва да е поне 5 символа.")
		return
	}
	if password != repeat {
		h.renderRegisterError(c, "Паролите не съвпадат.")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Възникна неочаквана грешка.")
		return
	}

	user := models.User{Email: email, Password: hash, Role: models.RoleUser}
	if err := db.DB.Create(&user).Error; err != nil {
		h.renderRegisterError(c, "Имейлът вече е регистриран.")
		return
	}

	Flash(c, "success", "Успешна регистрация! Моля влезте.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Вход"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := strings.TrimSpace(strings.ToLower(c.PostForm("email")))
	password := c.PostForm("password")

	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Title": "Вход", "Error": "Неправилен имейл или парола."})
		return
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Title": "Вход", "Error": "Неправилен имейл или парола."})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	next := c.Query("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

// ShowAccount renders the profile page: settings plus the user's active
// and finished listings.
func (h *AuthHandler) ShowAccount(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var towns []models.Town
	db.DB.Order("name ASC").Find(&towns)
	var categories []models.Category
	db.DB.Order("name ASC").Find(&categories)

	var activeListings []models.Listing
	db.DB.Preload("Category").Preload("Town").
		Where("owner_id = ? AND status <> ?", user.ID, models.StatusReturned).
		Order("created_at DESC").
		Find(&activeListings)

	var finishedListings []models.Listing
	db.DB.Preload("Category").Preload("Town").
		Where("owner_id = ? AND status = ?", user.ID, models.StatusReturned).
		Order("created_at DESC").
		Find(&finishedListings)

	Render(c, http.StatusOK, "auth/account.html", gin.H{
		"Title":            "Профил",
		"Towns":            towns,
		"Categories":       categories,
		"ActiveListings":   activeListings,
		"FinishedListings": finishedListings,
	})
}

// UpdateAccount applies profile settings: home town, optional password
// change and the notification preferences.
func (h *AuthHandler) UpdateAccount(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	if townID := utils.StringToUint(c.PostForm("town_id")); townID != 0 {
		var town models.Town
		if err := db.DB.First(&town, townID).Error; err == nil {
			user.TownID = &town.ID
		}
	}

	old := strings.TrimSpace(c.PostForm("old_password"))
	newPass := strings.TrimSpace(c.PostForm("new_password"))
	repeat := strings.TrimSpace(c.PostForm("repeat_password"))

	if old != "" || newPass != "" || repeat != "" {
		if !utils.CheckPasswordHash(old, user.Password) {
			Flash(c, "danger", "Невалидна текуща парола.")
			c.Redirect(http.StatusFound, "/account")
			return
		}
		if len(newPass) < 5 {
			Flash(c, "warning", "Новата парола трябва да е поне 5 символа.")
			c.Redirect(http.StatusFound, "/account")
			return
		}
		if newPass != repeat {
			Flash(c, "warning", "Паролите не съвпадат.")
			c.Redirect(http.StatusFound, "/account")
			return
		}
		hash, err := utils.HashPassword(newPass)
		if err != nil {
			RenderError(c, http.StatusInternalServerError, "Възникна неочаквана грешка.")
			return
		}
		user.Password = hash
		Flash(c, "success", "Паролата е сменена.")
	}

	user.NotifyEnabled = c.PostForm("notify_enabled") != ""
	if id := utils.StringToUint(c.PostForm("notify_town_id")); id != 0 {
		user.NotifyTownID = &id
	} else {
		user.NotifyTownID = nil
	}
	if id := utils.StringToUint(c.PostForm("notify_category_id")); id != 0 {
		user.NotifyCategoryID = &id
	} else {
		user.NotifyCategoryID = nil
	}

	if err := db.DB.Save(user).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Възникна неочаквана грешка.")
		return
	}

	Flash(c, "success", "Профилът е обновен.")
	c.Redirect(http.StatusFound, "/account")
}
