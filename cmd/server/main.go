package main

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"lostfound/internal/db"
	"lostfound/internal/handlers"
	"lostfound/internal/middleware"
	"lostfound/internal/services"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, reading env vars from system")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") != "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Initialize Database
	db.Init()

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("lostfound_session", store))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = loadTemplates("./web/templates")

	// Static Assets and stored uploads
	r.Static("/static", "./web/static")
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	r.Static("/uploads", uploadDir)

	// Middleware
	r.Use(middleware.LoadUser())

	// Services
	lifecycle := services.NewLifecycleService(db.DB)
	search := services.NewSearchService(db.DB)
	notifier := services.NewNotifier(db.DB, services.NewMailService())
	images := services.NewImageStore()

	// Handlers
	authHandler := handlers.NewAuthHandler()
	listingHandler := handlers.NewListingHandler(lifecycle, search, notifier, images)
	commentHandler := handlers.NewCommentHandler(lifecycle, images)
	adminHandler := handlers.NewAdminHandler(lifecycle)
	notificationHandler := handlers.NewNotificationHandler()
	apiHandler := handlers.NewAPIHandler()
	seoHandler := handlers.NewSEOHandler()

	// Public Routes
	r.GET("/", listingHandler.Index)
	r.GET("/listings/:id", listingHandler.Detail)
	r.GET("/map", listingHandler.MapView)
	r.GET("/api/listings", apiHandler.Listings)
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/listings/create", listingHandler.ShowCreate)
		authorized.POST("/listings/create", listingHandler.Create)
		authorized.GET("/listings/edit/:id", listingHandler.ShowEdit)
		authorized.POST("/listings/edit/:id", listingHandler.Edit)
		authorized.POST("/listings/delete/:id", listingHandler.Delete)
		authorized.POST("/listings/:id/returned", listingHandler.Returned)

		authorized.POST("/listings/:id/comment", commentHandler.Create)
		authorized.POST("/listings/:id/comment/:comment_id/accept", commentHandler.Accept)
		authorized.POST("/listings/:id/comment/:comment_id/reject", commentHandler.Reject)
		authorized.POST("/listings/:id/comment/:comment_id/delete", commentHandler.Delete)

		authorized.GET("/account", authHandler.ShowAccount)
		authorized.POST("/account", authHandler.UpdateAccount)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.POST("/notifications/:id/read", notificationHandler.Read)
		authorized.POST("/notifications/:id/delete", notificationHandler.Delete)
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll)
	}

	// Admin Routes
	admin := r.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("", adminHandler.Dashboard)
		admin.POST("/user/:id/delete", adminHandler.DeleteUser)
		admin.POST("/listing/:id/delete", adminHandler.DeleteListing)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Info().Str("port", port).Msg("lost&found server starting")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
		"timeAgo": func(t interface{}) string {
			var timeVal time.Time
			switch v := t.(type) {
			case time.Time:
				timeVal = v
			default:
				return ""
			}

			duration := time.Since(timeVal)
			seconds := int(duration.Seconds())

			if seconds < 60 {
				return fmt.Sprintf("преди %d сек.", seconds)
			} else if seconds < 3600 {
				return fmt.Sprintf("преди %d мин.", seconds/60)
			} else if seconds < 86400 {
				return fmt.Sprintf("преди %d ч.", seconds/3600)
			} else if seconds < 2592000 {
				return fmt.Sprintf("преди %d дни", seconds/86400)
			} else if seconds < 31536000 {
				return fmt.Sprintf("преди %d мес.", seconds/2592000)
			}
			return fmt.Sprintf("преди %d г.", seconds/31536000)
		},
		"statusLabel": func(s interface{}) string {
			switch fmt.Sprint(s) {
			case "LOST":
				return "Изгубено"
			case "FOUND":
				return "Намерено"
			case "RETURNED":
				return "Върнато"
			}
			return fmt.Sprint(s)
		},
		"date": func(t time.Time) string {
			return t.Format("02.01.2006")
		},
	}

	// Manual registration to ensure keys match handler expectation
	r.AddFromFilesFuncs("listings/index.html", funcMap, assemble(templatesDir+"/views/listings/index.html")...)
	r.AddFromFilesFuncs("listings/detail.html", funcMap, assemble(templatesDir+"/views/listings/detail.html")...)
	r.AddFromFilesFuncs("listings/create.html", funcMap, assemble(templatesDir+"/views/listings/create.html")...)
	r.AddFromFilesFuncs("listings/edit.html", funcMap, assemble(templatesDir+"/views/listings/edit.html")...)
	r.AddFromFilesFuncs("listings/map.html", funcMap, assemble(templatesDir+"/views/listings/map.html")...)

	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)
	r.AddFromFilesFuncs("auth/account.html", funcMap, assemble(templatesDir+"/views/auth/account.html")...)

	r.AddFromFilesFuncs("admin/dashboard.html", funcMap, assemble(templatesDir+"/views/admin/dashboard.html")...)
	r.AddFromFilesFuncs("notification/list.html", funcMap, assemble(templatesDir+"/views/notification/list.html")...)

	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
