package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bcnelson/yatube/internal/auth"
	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/service"
	"github.com/bcnelson/yatube/internal/storage"
	"github.com/bcnelson/yatube/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testSecret = []byte(strings.Repeat("k", 32))

type fakeOIDC struct {
	claims *auth.OIDCClaims
}

func (f *fakeOIDC) AuthCodeURL(state, nonce string) string {
	return "https://id.example.com/authorize?state=" + url.QueryEscape(state) + "&nonce=" + url.QueryEscape(nonce)
}

func (f *fakeOIDC) Exchange(ctx context.Context, code, nonce string) (*auth.OIDCClaims, error) {
	if code != "good-code" {
		return nil, fmt.Errorf("bad code")
	}
	return f.claims, nil
}

type testEnv struct {
	t        *testing.T
	store    *memory.Store
	handler  http.Handler
	sessions *auth.SessionManager
	posts    *service.PostService
	leo      *domain.User
	mia      *domain.User
	cats     *domain.Group
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	store := memory.New()

	sessions, err := auth.NewSessionManager(testSecret, time.Hour, false)
	require.NoError(t, err)
	state, err := auth.NewStateStore(testSecret, false)
	require.NoError(t, err)

	users := service.NewUserService(store, logger)
	groups := service.NewGroupService(store, logger)
	env := &testEnv{
		t:        t,
		store:    store,
		sessions: sessions,
		posts:    service.NewPostService(store, logger),
	}
	env.handler = NewRouter(Dependencies{
		Listing:  service.NewListingService(store, 10),
		Posts:    env.posts,
		Groups:   groups,
		Users:    users,
		Sessions: sessions,
		State:    state,
		OIDC:     &fakeOIDC{claims: &auth.OIDCClaims{Email: "sso@example.com", PreferredUsername: "sso"}},
		SiteName: "Yatube",
		Logger:   logger,
	})

	env.leo, err = users.Register(ctx, service.RegisterRequest{Username: "leo", Password: "password-1"})
	require.NoError(t, err)
	env.mia, err = users.Register(ctx, service.RegisterRequest{Username: "mia", Password: "password-2"})
	require.NoError(t, err)
	env.cats, err = groups.Create(ctx, &domain.CreateGroupRequest{Title: "Cats", Slug: "cats", Description: "All about cats"})
	require.NoError(t, err)
	return env
}

// cookiesFor returns a session cookie for user.
func (e *testEnv) cookiesFor(user *domain.User) []*http.Cookie {
	e.t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(e.t, e.sessions.Create(rec, httptest.NewRequest(http.MethodPost, "/", nil), user))
	return rec.Result().Cookies()
}

func (e *testEnv) do(method, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) publish(author *domain.User, text string, group *domain.Group) *domain.Post {
	e.t.Helper()
	in := domain.PostInput{Text: text}
	if group != nil {
		in.GroupID = &group.ID
	}
	post, err := e.posts.Create(context.Background(), domain.IdentityOf(author), in)
	require.NoError(e.t, err)
	return post
}

func (e *testEnv) postCount() int {
	e.t.Helper()
	n, err := e.store.CountPosts(context.Background(), storage.PostFilter{})
	require.NoError(e.t, err)
	return n
}

func cards(body string) int {
	return strings.Count(body, `class="post-card"`)
}

func TestListingPages(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 13; i++ {
		env.publish(env.leo, fmt.Sprintf("post number %d", i), env.cats)
	}

	for _, base := range []string{"/", "/group/cats/", "/profile/leo/"} {
		t.Run(base, func(t *testing.T) {
			tests := []struct {
				query string
				want  int
			}{
				{"", 10},
				{"?page=1", 10},
				{"?page=2", 3},
				{"?page=42", 3},
				{"?page=zero", 10},
			}
			for _, tt := range tests {
				rec := env.do(http.MethodGet, base+tt.query, nil, nil)
				require.Equal(t, http.StatusOK, rec.Code, base+tt.query)
				assert.Equal(t, tt.want, cards(rec.Body.String()), base+tt.query)
			}
		})
	}

	rec := env.do(http.MethodGet, "/", nil, nil)
	assert.Contains(t, rec.Body.String(), "post number 12", "newest post first")
	assert.Contains(t, rec.Body.String(), `href="?page=2"`)
}

func TestGroupPageShowsOnlyGroupPosts(t *testing.T) {
	env := newTestEnv(t)
	env.publish(env.leo, "a cat post", env.cats)
	env.publish(env.leo, "an ungrouped post", nil)

	rec := env.do(http.MethodGet, "/group/cats/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "a cat post")
	assert.NotContains(t, body, "an ungrouped post")
	assert.Contains(t, body, "All about cats")
}

func TestEmptyListing(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/?page=3", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, cards(rec.Body.String()))
	assert.Contains(t, rec.Body.String(), "No posts yet.")
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.publish(env.leo, "hello", nil)

	for _, path := range []string{"/group/birds/", "/profile/nobody/", "/posts/999/", "/posts/abc/", "/no/such/page/", "/posts/99999999999999999999/"} {
		rec := env.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestAppendSlashRedirect(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/group/cats?page=2", nil, nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/group/cats/?page=2", rec.Header().Get("Location"))
}

func TestPostDetail(t *testing.T) {
	env := newTestEnv(t)
	post := env.publish(env.leo, "line one\nline <two>", env.cats)
	path := fmt.Sprintf("/posts/%d/", post.ID)
	editLink := fmt.Sprintf(`href="/posts/%d/edit/"`, post.ID)

	rec := env.do(http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "line one<br>\nline &lt;two&gt;")
	assert.Contains(t, body, "Posts by author: 1")
	assert.NotContains(t, body, editLink)

	rec = env.do(http.MethodGet, path, nil, env.cookiesFor(env.mia))
	assert.NotContains(t, rec.Body.String(), editLink)

	rec = env.do(http.MethodGet, path, nil, env.cookiesFor(env.leo))
	assert.Contains(t, rec.Body.String(), editLink)
}

func TestLoginRequired(t *testing.T) {
	env := newTestEnv(t)
	post := env.publish(env.leo, "hello", nil)
	editPath := fmt.Sprintf("/posts/%d/edit/", post.ID)

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/create/", "/auth/login/?next=/create/"},
		{http.MethodPost, "/create/", "/auth/login/?next=/create/"},
		{http.MethodGet, editPath, "/auth/login/?next=" + editPath},
		{http.MethodPost, editPath, "/auth/login/?next=" + editPath},
	}
	for _, tt := range tests {
		rec := env.do(tt.method, tt.path, url.Values{"text": {"sneaky"}}, nil)
		assert.Equal(t, http.StatusFound, rec.Code, tt.method+" "+tt.path)
		assert.Equal(t, tt.want, rec.Header().Get("Location"), tt.method+" "+tt.path)
	}
	assert.Equal(t, 1, env.postCount())
}

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.cookiesFor(env.leo)

	rec := env.do(http.MethodGet, "/create/", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<option value="1">Cats</option>`)

	rec = env.do(http.MethodPost, "/create/", url.Values{"text": {"brand new"}, "group": {"1"}}, cookies)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))
	assert.Equal(t, 1, env.postCount())

	rec = env.do(http.MethodGet, "/group/cats/", nil, nil)
	assert.Contains(t, rec.Body.String(), "brand new")
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.cookiesFor(env.leo)

	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{"empty text", url.Values{"text": {"  "}}, "This field is required."},
		{"unknown group", url.Values{"text": {"hi"}, "group": {"404"}}, "Select a valid choice."},
		{"malformed group", url.Values{"text": {"hi"}, "group": {"cats"}}, "Select a valid choice."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/create/", tt.form, cookies)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
			assert.Equal(t, 0, env.postCount())
		})
	}
}

func TestEditPost(t *testing.T) {
	env := newTestEnv(t)
	post := env.publish(env.leo, "original", env.cats)
	editPath := fmt.Sprintf("/posts/%d/edit/", post.ID)
	detailPath := fmt.Sprintf("/posts/%d/", post.ID)

	t.Run("non-author is redirected to the post", func(t *testing.T) {
		cookies := env.cookiesFor(env.mia)

		rec := env.do(http.MethodGet, editPath, nil, cookies)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, detailPath, rec.Header().Get("Location"))

		rec = env.do(http.MethodPost, editPath, url.Values{"text": {"defaced"}}, cookies)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, detailPath, rec.Header().Get("Location"))

		got, err := env.store.GetPost(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", got.Text)
		assert.Equal(t, env.cats.ID, *got.GroupID)
	})

	t.Run("author sees the filled form", func(t *testing.T) {
		rec := env.do(http.MethodGet, editPath, nil, env.cookiesFor(env.leo))
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, ">original</textarea>")
		assert.Contains(t, body, `<option value="1" selected>Cats</option>`)
	})

	t.Run("author validation error", func(t *testing.T) {
		rec := env.do(http.MethodPost, editPath, url.Values{"text": {""}}, env.cookiesFor(env.leo))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "This field is required.")
	})

	t.Run("author saves", func(t *testing.T) {
		rec := env.do(http.MethodPost, editPath, url.Values{"text": {"revised"}, "group": {""}}, env.cookiesFor(env.leo))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, detailPath, rec.Header().Get("Location"))

		got, err := env.store.GetPost(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, "revised", got.Text)
		assert.Nil(t, got.GroupID)
		assert.Equal(t, env.leo.ID, got.AuthorID)
		assert.True(t, post.PubDate.Equal(got.PubDate))
		assert.Equal(t, 1, env.postCount())
	})

	t.Run("unknown post", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/posts/999/edit/", nil, env.cookiesFor(env.leo))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/auth/login/?next=/create/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="next" value="/create/"`)

	rec = env.do(http.MethodPost, "/auth/login/", url.Values{"username": {"leo"}, "password": {"nope"}}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a correct username and password.")

	rec = env.do(http.MethodPost, "/auth/login/", url.Values{"username": {"leo"}, "password": {"password-1"}, "next": {"/create/"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/create/", rec.Header().Get("Location"))

	// The issued cookie opens the protected page.
	rec = env.do(http.MethodGet, "/create/", nil, rec.Result().Cookies())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login/", url.Values{"username": {"leo"}, "password": {"password-1"}, "next": {"https://evil.example.com/"}}, nil)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/auth/logout/", nil, env.cookiesFor(env.leo))
	assert.Equal(t, http.StatusFound, rec.Code)
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestSessionForDeletedUserIsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.cookiesFor(env.mia)
	require.NoError(t, env.store.DeleteUser(context.Background(), env.mia.ID))

	rec := env.do(http.MethodGet, "/create/", nil, cookies)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=/create/", rec.Header().Get("Location"))
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/signup/", url.Values{
		"username": {"leo"}, "password": {"password-9"}, "password_confirm": {"password-9"},
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "A user with that username already exists.")

	rec = env.do(http.MethodPost, "/auth/signup/", url.Values{
		"username": {"zoe"}, "password": {"password-9"}, "password_confirm": {"password-0"},
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "didn&#39;t match")

	rec = env.do(http.MethodPost, "/auth/signup/", url.Values{
		"username": {"zoe"}, "email": {"zoe@example.com"}, "password": {"password-9"}, "password_confirm": {"password-9"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = env.do(http.MethodGet, "/profile/zoe/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOIDCLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/auth/oidc/login?next=/create/", nil, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "id.example.com", loc.Host)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	stateCookies := rec.Result().Cookies()

	rec = env.do(http.MethodGet, "/auth/oidc/callback?code=good-code&state=forged", nil, stateCookies)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/auth/login/?error=")

	rec = env.do(http.MethodGet, "/auth/oidc/callback?code=good-code&state="+url.QueryEscape(state), nil, stateCookies)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/create/", rec.Header().Get("Location"))

	user, err := env.store.GetUserByEmail(context.Background(), "sso@example.com")
	require.NoError(t, err)
	assert.Equal(t, "sso", user.Username)
}

func TestLoginURLAndSafeNext(t *testing.T) {
	assert.Equal(t, "/auth/login/?next=/posts/3/edit/", loginURL("/posts/3/edit/"))
	assert.Equal(t, "/auth/login/?next=/%3Fpage%3D2%26x%3D1", loginURL("/?page=2&x=1"))

	tests := map[string]string{
		"":                     "/",
		"/create/":             "/create/",
		"//evil.example.com":   "/",
		"https://evil.example": "/",
		`/\evil`:               "/",
		"relative":             "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), in)
	}
}
