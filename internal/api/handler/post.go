package handler

import (
	"net/http"
	"strconv"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/pagination"
	"github.com/bcnelson/yatube/internal/service"
	"github.com/go-chi/chi/v5"
)

// PostHandler serves read-only post listings.
type PostHandler struct {
	listing *service.ListingService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(listing *service.ListingService) *PostHandler {
	return &PostHandler{listing: listing}
}

// PostPageResponse is one page of posts.
type PostPageResponse struct {
	pagination.Window
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
	Items       []*domain.Post `json:"items"`
}

func newPostPageResponse(page *service.PostPage) *PostPageResponse {
	return &PostPageResponse{
		Window:      page.Window,
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
		Items:       page.Items,
	}
}

// List lists all posts, newest first.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.listing.ListAll(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newPostPageResponse(page))
}

// Get gets a single post.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, domain.ErrCodeResourceNotFound, "not found")
		return
	}

	post, err := h.listing.GetOne(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, post)
}

// ListByGroup lists the posts of a group.
func (h *PostHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	_, page, err := h.listing.ListByGroup(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("page"))
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newPostPageResponse(page))
}

// ListByAuthor lists the posts of an author.
func (h *PostHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	_, page, err := h.listing.ListByAuthor(r.Context(), chi.URLParam(r, "username"), r.URL.Query().Get("page"))
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newPostPageResponse(page))
}
