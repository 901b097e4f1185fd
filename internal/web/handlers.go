package web

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/bcnelson/yatube/internal/auth"
	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ListData holds data for the post listing pages.
type ListData struct {
	Page    *service.PostPage
	Group   *domain.Group
	Author  *domain.User
	IsOwner bool
}

// handleIndex renders all posts, newest first.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := s.listing.ListAll(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "index", PageData{
		Title:   "Latest posts",
		Active:  "index",
		Content: ListData{Page: page},
	})
}

// handleGroupPosts renders the posts of one group.
func (s *Server) handleGroupPosts(w http.ResponseWriter, r *http.Request) {
	group, page, err := s.listing.ListByGroup(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("page"))
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "group_list", PageData{
		Title:   group.Title,
		Content: ListData{Page: page, Group: group},
	})
}

// handleProfile renders the posts of one author.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	author, page, err := s.listing.ListByAuthor(r.Context(), chi.URLParam(r, "username"), r.URL.Query().Get("page"))
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	who := auth.IdentityFrom(r.Context())
	s.render(w, r, http.StatusOK, "profile", PageData{
		Title:   "Posts by " + author.Username,
		Active:  activeIf(who.UserID == author.ID, "profile"),
		Content: ListData{Page: page, Author: author, IsOwner: who.UserID == author.ID},
	})
}

// PostDetailData holds data for the post detail page.
type PostDetailData struct {
	Post        *domain.Post
	AuthorPosts int
	CanEdit     bool
}

// handlePostDetail renders a single post.
func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		s.handleNotFound(w, r)
		return
	}

	ctx := r.Context()
	post, err := s.listing.GetOne(ctx, id)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	count, err := s.listing.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "post_detail", PageData{
		Title: post.Excerpt(30),
		Content: PostDetailData{
			Post:        post,
			AuthorPosts: count,
			CanEdit:     post.IsAuthoredBy(auth.IdentityFrom(ctx)),
		},
	})
}

// PostFormData holds data for the post create/edit form.
type PostFormData struct {
	Text    string
	GroupID int64
	Groups  []*domain.Group
	Errors  map[string][]string
	IsEdit  bool
	PostID  int64
}

// handlePostCreateForm renders the empty post form.
func (s *Server) handlePostCreateForm(w http.ResponseWriter, r *http.Request) {
	s.renderPostForm(w, r, PostFormData{})
}

// handlePostCreate publishes a post and redirects to the author's profile.
func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	who := auth.IdentityFrom(r.Context())
	in := postInputFromForm(r)
	if _, err := s.posts.Create(r.Context(), who, in); err != nil {
		if errs, ok := fieldErrors(err); ok {
			s.renderPostForm(w, r, formData(in, errs))
			return
		}
		s.handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, profileURL(who.Username), http.StatusFound)
}

// handlePostEditForm renders the edit form to the author. Anyone else is
// sent to the post itself.
func (s *Server) handlePostEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		s.handleNotFound(w, r)
		return
	}

	post, err := s.posts.Authorize(r.Context(), id, auth.IdentityFrom(r.Context()))
	if errors.Is(err, domain.ErrForbidden) {
		http.Redirect(w, r, postURL(id), http.StatusFound)
		return
	}
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	data := PostFormData{Text: post.Text, IsEdit: true, PostID: post.ID}
	if post.GroupID != nil {
		data.GroupID = *post.GroupID
	}
	s.renderPostForm(w, r, data)
}

// handlePostEdit saves an edit and redirects to the post. A non-author is
// redirected to the post without any change.
func (s *Server) handlePostEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	in := postInputFromForm(r)
	_, err := s.posts.Update(r.Context(), id, auth.IdentityFrom(r.Context()), in)
	switch {
	case err == nil, errors.Is(err, domain.ErrForbidden):
		http.Redirect(w, r, postURL(id), http.StatusFound)
	default:
		if errs, ok := fieldErrors(err); ok {
			data := formData(in, errs)
			data.IsEdit = true
			data.PostID = id
			s.renderPostForm(w, r, data)
			return
		}
		s.handleServiceError(w, r, err)
	}
}

func formData(in domain.PostInput, errs map[string][]string) PostFormData {
	data := PostFormData{Text: in.Text, Errors: errs}
	if in.GroupID != nil {
		data.GroupID = *in.GroupID
	}
	return data
}

// renderPostForm renders the post form with the group choices filled in.
// Field errors are shown on the same page with status 200.
func (s *Server) renderPostForm(w http.ResponseWriter, r *http.Request, data PostFormData) {
	groups, err := s.groups.List(r.Context())
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	data.Groups = groups

	title := "New post"
	if data.IsEdit {
		title = "Edit post"
	}
	s.render(w, r, http.StatusOK, "post_form", PageData{
		Title:   title,
		Active:  activeIf(!data.IsEdit, "create"),
		Content: data,
	})
}

// handleServiceError maps a service error to a response.
func (s *Server) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.handleNotFound(w, r)
	case errors.Is(err, domain.ErrUnauthorized):
		http.Redirect(w, r, loginURL(r.URL.RequestURI()), http.StatusFound)
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

// handleNotFound renders the 404 page. GET requests for a path missing
// only its trailing slash are redirected to the slashed path instead.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && r.URL.Path != "" && r.URL.Path[len(r.URL.Path)-1] != '/' {
		slashed := r.URL.Path + "/"
		if s.router.Match(chi.NewRouteContext(), http.MethodGet, slashed) {
			if r.URL.RawQuery != "" {
				slashed += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, slashed, http.StatusMovedPermanently)
			return
		}
	}
	s.renderError(w, r, http.StatusNotFound, "The page you requested does not exist.")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusMethodNotAllowed, "Method not allowed.")
}

// ErrorData holds data for the error page.
type ErrorData struct {
	Status  int
	Message string
}

// renderError renders the error page with the given status.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, "error", PageData{
		Title:   http.StatusText(status),
		Content: ErrorData{Status: status, Message: message},
	})
}

// render executes a page template. Common fields of data are filled in here.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data PageData) {
	tmpl, ok := s.templates[page]
	if !ok {
		http.Error(w, "Template not found: "+page, http.StatusInternalServerError)
		return
	}

	data.SiteName = s.siteName
	data.User = auth.IdentityFrom(r.Context())
	data.OIDCEnabled = s.oidc != nil

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		s.logger.Error("template error", zap.String("page", page), zap.Error(err))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func activeIf(cond bool, name string) string {
	if cond {
		return name
	}
	return ""
}
