package main

import (
	"embed"
	"html/template"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/manojvamsi/portfolio/internal/logger"
	"github.com/manojvamsi/portfolio/internal/sessions"
)

//go:embed templates/*.html
var templateFS embed.FS

// Section is one anchor in the page navigation.
type Section struct {
	ID    string
	Label string
}

var sections = []Section{
	{ID: "home", Label: "Home"},
	{ID: "skills", Label: "Skills"},
	{ID: "experience", Label: "Experience"},
	{ID: "projects", Label: "Projects"},
	{ID: "contact", Label: "Contact"},
}

// server holds what the handlers need.
type server struct {
	log       zerolog.Logger
	portfolio Portfolio
	sessions  *sessions.Registry
	visitors  *visitorTracker
	now       func() time.Time
}

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templateFS, "templates/*.html")
}

// newRouter builds the gin engine. visitors may be nil when tracking is
// disabled.
func newRouter(s *server) (*gin.Engine, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(s.log))
	if s.visitors != nil {
		r.Use(s.visitors.Middleware())
	}
	r.SetHTMLTemplate(tmpl)

	for _, dir := range []string{"images", "static"} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.Static("/"+dir, "./"+dir)
		}
	}

	// Home page route
	r.GET("/", s.home)

	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title":           "Privacy Policy",
			"retentionMonths": visitorRetentionMonths,
		})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.sessions.Len()})
	})

	// HTMX contact form endpoints
	r.GET("/contact-form", s.contactForm)
	r.POST("/contact/field", s.contactField)
	r.POST("/contact", s.contactSubmit)
	r.GET("/contact/state", s.contactState)
	r.GET("/contact/events", s.contactEvents)

	return r, nil
}

func (s *server) home(c *gin.Context) {
	flow := s.flowFor(c)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Portfolio": s.portfolio,
		"Sections":  sections,
		"Year":      s.now().Year(),
		"Contact":   newContactView(flow.Snapshot(), ""),
	})
}
