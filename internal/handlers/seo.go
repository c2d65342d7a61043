package handlers

import (
	"fmt"
	"net/http"
	"time"

	"lostfound/internal/db"
	"lostfound/internal/models"
	"lostfound/internal/services"

	"github.com/gin-gonic/gin"
)

type SEOHandler struct{}

func NewSEOHandler() *SEOHandler {
	return &SEOHandler{}
}

func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /admin
Disallow: /account
Disallow: /notifications
Disallow: /login
Disallow: /register

Sitemap: %s/sitemap.xml
`, services.SiteURL())

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

func (h *SEOHandler) SitemapXML(c *gin.Context) {
	siteURL := services.SiteURL()
	now := time.Now().Format("2006-01-02")

	xml := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
`
	xml += fmt.Sprintf(`  <url>
    <loc>%s/</loc>
    <lastmod>%s</lastmod>
    <changefreq>daily</changefreq>
    <priority>1.0</priority>
  </url>
`, siteURL, now)

	var listings []models.Listing
	db.DB.Select("id, updated_at").Order("created_at DESC").Limit(1000).Find(&listings)
	for _, l := range listings {
		xml += fmt.Sprintf(`  <url>
    <loc>%s/listings/%d</loc>
    <lastmod>%s</lastmod>
    <changefreq>weekly</changefreq>
    <priority>0.8</priority>
  </url>
`, siteURL, l.ID, l.UpdatedAt.Format("2006-01-02"))
	}
	xml += "</urlset>\n"

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, xml)
}
