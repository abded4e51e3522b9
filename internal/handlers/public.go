package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/deployprime/agency-backend/httpx"
	"github.com/deployprime/agency-backend/internal/models"
)

// PublicHandler serves the SEO endpoints the frontend points crawlers
// at: sitemap.xml over the published content and robots.txt.
type PublicHandler struct {
	DB      *gorm.DB
	BaseURL string
}

func NewPublicHandler(db *gorm.DB, baseURL string) *PublicHandler {
	return &PublicHandler{DB: db, BaseURL: strings.TrimRight(baseURL, "/")}
}

var sitemapStaticPages = []string{"", "about-us", "services", "projects", "blogs", "contact"}

// Sitemap: GET /api/sitemap.xml
func (h *PublicHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	var projects []models.Project
	if err := h.DB.Select("slug", "updated_at").Where("published = ?", true).Find(&projects).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_build_sitemap", nil)
		return
	}
	var blogs []models.Blog
	if err := h.DB.Select("slug", "published_at").Where("draft = ?", false).Find(&blogs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_build_sitemap", nil)
		return
	}

	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<urlset xmlns=\"http://www.sitemaps.org/schemas/sitemap/0.9\">\n")
	for _, page := range sitemapStaticPages {
		fmt.Fprintf(&b, "  <url>\n    <loc>%s/%s</loc>\n    <changefreq>weekly</changefreq>\n    <priority>0.8</priority>\n  </url>\n", h.BaseURL, page)
	}
	for _, p := range projects {
		fmt.Fprintf(&b, "  <url>\n    <loc>%s/projects/%s</loc>\n    <lastmod>%s</lastmod>\n    <changefreq>monthly</changefreq>\n  </url>\n",
			h.BaseURL, p.Slug, p.UpdatedAt.Format(time.RFC3339))
	}
	for _, post := range blogs {
		lastmod := time.Now()
		if post.PublishedAt != nil {
			lastmod = *post.PublishedAt
		}
		fmt.Fprintf(&b, "  <url>\n    <loc>%s/blogs/%s</loc>\n    <lastmod>%s</lastmod>\n    <changefreq>monthly</changefreq>\n  </url>\n",
			h.BaseURL, post.Slug, lastmod.Format(time.RFC3339))
	}
	b.WriteString("</urlset>")

	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(b.String()))
}

// Robots: GET /api/robots.txt
func (h *PublicHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "User-agent: *\nAllow: /\n\nSitemap: %s/api/sitemap.xml\n", h.BaseURL)
}
