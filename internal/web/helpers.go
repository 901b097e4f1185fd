package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/validation"
	"github.com/go-chi/chi/v5"
)

// parseID reads a numeric URL parameter. Routes constrain it to digits,
// so a failure means the value overflowed.
func parseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// postInputFromForm reads the post form. An empty group means no group.
// A malformed group id becomes 0, which never resolves, so it is reported
// like any other unknown group.
func postInputFromForm(r *http.Request) domain.PostInput {
	in := domain.PostInput{Text: r.FormValue("text")}
	if raw := strings.TrimSpace(r.FormValue("group")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			id = 0
		}
		in.GroupID = &id
	}
	return in
}

// fieldErrors extracts field messages from a validation failure.
func fieldErrors(err error) (map[string][]string, bool) {
	var verrs validation.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	return verrs.Messages(), true
}

// postURL is the detail page of a post.
func postURL(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10) + "/"
}

// profileURL is the listing page of an author.
func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}
