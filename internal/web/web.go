package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/bcnelson/yatube/internal/auth"
	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:embed templates static
var content embed.FS

// Dependencies are the collaborators of the web server.
type Dependencies struct {
	Listing  *service.ListingService
	Posts    *service.PostService
	Groups   *service.GroupService
	Users    *service.UserService
	Sessions *auth.SessionManager
	State    *auth.StateStore
	// OIDC is nil when single sign-on is disabled.
	OIDC     auth.Authenticator
	SiteName string
	Logger   *zap.Logger
}

// Server holds dependencies for web handlers.
type Server struct {
	listing  *service.ListingService
	posts    *service.PostService
	groups   *service.GroupService
	users    *service.UserService
	sessions *auth.SessionManager
	state    *auth.StateStore
	oidc     auth.Authenticator
	siteName string
	logger   *zap.Logger

	router    *chi.Mux
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// NewRouter creates a new web router with all routes configured.
func NewRouter(deps Dependencies) http.Handler {
	s := &Server{
		listing:  deps.Listing,
		posts:    deps.Posts,
		groups:   deps.Groups,
		users:    deps.Users,
		sessions: deps.Sessions,
		state:    deps.State,
		oidc:     deps.OIDC,
		siteName: deps.SiteName,
		logger:   deps.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.siteName == "" {
		s.siteName = "Yatube"
	}

	// Parse all templates
	s.templates = s.parseTemplates()

	r := chi.NewRouter()
	s.router = r
	r.Use(s.identity)
	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	// Static files
	staticFS, _ := fs.Sub(content, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Public pages
	r.Get("/", s.handleIndex)
	r.Get("/group/{slug}/", s.handleGroupPosts)
	r.Get("/profile/{username}/", s.handleProfile)
	r.Get("/posts/{id:[0-9]+}/", s.handlePostDetail)

	// Authoring (require login)
	r.Group(func(r chi.Router) {
		r.Use(s.requireLogin)

		r.Get("/create/", s.handlePostCreateForm)
		r.Post("/create/", s.handlePostCreate)
		r.Get("/posts/{id:[0-9]+}/edit/", s.handlePostEditForm)
		r.Post("/posts/{id:[0-9]+}/edit/", s.handlePostEdit)
	})

	// Accounts
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login/", s.handleLoginPage)
		r.Post("/login/", s.handleLogin)
		r.Get("/logout/", s.handleLogout)
		r.Post("/logout/", s.handleLogout)
		r.Get("/signup/", s.handleSignupPage)
		r.Post("/signup/", s.handleSignup)
		r.Get("/oidc/login", s.handleOIDCLogin)
		r.Get("/oidc/callback", s.handleOIDCCallback)
	})

	return r
}

// parseTemplates parses all templates with custom functions.
func (s *Server) parseTemplates() map[string]*template.Template {
	s.funcMap = template.FuncMap{
		"linebreaks": linebreaks,
		"date":       formatDate,
		"add":        func(a, b int) int { return a + b },
		"deref":      deref,
		"dict":       dict,
	}

	templates := make(map[string]*template.Template)

	// Read base template and components
	var base strings.Builder
	for _, name := range []string{"templates/base.html", "templates/components/nav.html", "templates/components/flash.html", "templates/components/paginator.html", "templates/components/post_card.html"} {
		b, err := content.ReadFile(name)
		if err != nil {
			panic("failed to read template " + name + ": " + err.Error())
		}
		base.Write(b)
	}

	// Parse each page template separately with the base
	pageFiles, _ := fs.Glob(content, "templates/pages/*.html")
	for _, pagePath := range pageFiles {
		pageName := strings.TrimSuffix(filepath.Base(pagePath), ".html")

		pageContent, _ := content.ReadFile(pagePath)

		tmpl, err := template.New(pageName).Funcs(s.funcMap).Parse(base.String() + string(pageContent))
		if err != nil {
			panic("failed to parse template " + pageName + ": " + err.Error())
		}

		templates[pageName] = tmpl
	}

	return templates
}

// dict creates a map from key-value pairs for use in templates.
func dict(values ...any) map[string]any {
	if len(values)%2 != 0 {
		return nil
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			continue
		}
		m[key] = values[i+1]
	}
	return m
}

// linebreaks escapes text and turns newlines into <br> tags.
func linebreaks(text string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(text, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>\n")) //nolint:gosec
}

func formatDate(t time.Time) string {
	return t.Format("2 January 2006 15:04")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PageData holds common data passed to all page templates.
type PageData struct {
	Title       string
	Active      string // Current nav item
	SiteName    string
	User        domain.Identity
	OIDCEnabled bool
	Flash       *FlashMessage
	Content     any
}

// FlashMessage represents a flash message.
type FlashMessage struct {
	Type    string // "success", "error", "info"
	Message string
}
