package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/storage"
)

// Store is an in-memory implementation of the storage interface for testing.
// Values are copied in and out so callers never share state with the store.
type Store struct {
	mu sync.RWMutex

	groups  map[int64]*domain.Group
	posts   map[int64]*domain.Post
	users   map[int64]*domain.User
	apiKeys map[string]*domain.APIKey

	nextGroupID int64
	nextPostID  int64
	nextUserID  int64
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		groups:  make(map[int64]*domain.Group),
		posts:   make(map[int64]*domain.Post),
		users:   make(map[int64]*domain.User),
		apiKeys: make(map[string]*domain.APIKey),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) BeginTx(ctx context.Context) (storage.Transaction, error) {
	return &Tx{Store: s}, nil
}

// Tx is a no-op transaction for in-memory store. Writes are applied immediately.
type Tx struct {
	*Store
}

func (t *Tx) Commit() error   { return nil }
func (t *Tx) Rollback() error { return nil }
func (t *Tx) Close() error    { return nil }
func (t *Tx) BeginTx(ctx context.Context) (storage.Transaction, error) {
	return nil, domain.ErrInvalidInput
}

// ============================================
// Groups
// ============================================

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.groups {
		if existing.Slug == group.Slug {
			return domain.ErrAlreadyExists
		}
	}
	s.nextGroupID++
	group.ID = s.nextGroupID
	g := *group
	s.groups[g.ID] = &g
	return nil
}

func (s *Store) GetGroup(ctx context.Context, id int64) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, exists := s.groups[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (s *Store) GetGroupBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups {
		if g.Slug == slug {
			out := *g
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]*domain.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out := *g
		groups = append(groups, &out)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Title != groups[j].Title {
			return groups[i].Title < groups[j].Title
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

func (s *Store) UpdateGroup(ctx context.Context, group *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, exists := s.groups[group.ID]
	if !exists {
		return domain.ErrNotFound
	}
	g.Title = group.Title
	g.Description = group.Description
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.groups[id]; !exists {
		return domain.ErrNotFound
	}
	delete(s.groups, id)
	for _, p := range s.posts {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
		}
	}
	return nil
}

// ============================================
// Posts
// ============================================

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[post.AuthorID]; !exists {
		return domain.ErrNotFound
	}
	if post.GroupID != nil {
		if _, exists := s.groups[*post.GroupID]; !exists {
			return domain.ErrNotFound
		}
	}
	s.nextPostID++
	post.ID = s.nextPostID
	p := *post
	p.GroupID = copyID(post.GroupID)
	s.posts[p.ID] = &p
	return nil
}

func (s *Store) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, exists := s.posts[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return s.view(p), nil
}

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter, limit, offset int) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.filterPosts(filter)
	if offset >= len(matched) {
		return []*domain.Post{}, nil
	}
	end := len(matched)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	posts := make([]*domain.Post, 0, end-offset)
	for _, p := range matched[offset:end] {
		posts = append(posts, s.view(p))
	}
	return posts, nil
}

func (s *Store) CountPosts(ctx context.Context, filter storage.PostFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filterPosts(filter)), nil
}

func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, exists := s.posts[post.ID]
	if !exists {
		return domain.ErrNotFound
	}
	if post.GroupID != nil {
		if _, exists := s.groups[*post.GroupID]; !exists {
			return domain.ErrNotFound
		}
	}
	p.Text = post.Text
	p.GroupID = copyID(post.GroupID)
	return nil
}

// filterPosts returns matching posts newest first. Caller holds the lock.
func (s *Store) filterPosts(filter storage.PostFilter) []*domain.Post {
	var matched []*domain.Post
	for _, p := range s.posts {
		if filter.GroupID != nil && (p.GroupID == nil || *p.GroupID != *filter.GroupID) {
			continue
		}
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PubDate.Equal(matched[j].PubDate) {
			return matched[i].PubDate.After(matched[j].PubDate)
		}
		return matched[i].ID > matched[j].ID
	})
	return matched
}

// view copies a stored post and fills in the joined fields. Caller holds the lock.
func (s *Store) view(p *domain.Post) *domain.Post {
	out := *p
	out.GroupID = copyID(p.GroupID)
	if u, ok := s.users[p.AuthorID]; ok {
		out.AuthorUsername = u.Username
	}
	out.GroupSlug, out.GroupTitle = nil, nil
	if p.GroupID != nil {
		if g, ok := s.groups[*p.GroupID]; ok {
			slug, title := g.Slug, g.Title
			out.GroupSlug, out.GroupTitle = &slug, &title
		}
	}
	return &out
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// ============================================
// Users
// ============================================

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return domain.ErrAlreadyExists
		}
		if user.Email != "" && existing.Email == user.Email {
			return domain.ErrAlreadyExists
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	u := *user
	s.users[u.ID] = &u
	return nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, exists := s.users[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if email == "" {
		return nil, domain.ErrNotFound
	}
	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[id]; !exists {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	for postID, p := range s.posts {
		if p.AuthorID == id {
			delete(s.posts, postID)
		}
	}
	return nil
}

// ============================================
// API Keys
// ============================================

func (s *Store) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apiKeys[key.ID]; exists {
		return domain.ErrAlreadyExists
	}
	k := *key
	s.apiKeys[k.ID] = &k
	return nil
}

func (s *Store) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range s.apiKeys {
		if key.KeyHash == keyHash {
			out := *key
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]*domain.APIKey, 0, len(s.apiKeys))
	for _, key := range s.apiKeys {
		out := *key
		keys = append(keys, &out)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].CreatedAt.After(keys[j].CreatedAt)
	})
	return keys, nil
}

func (s *Store) DeleteAPIKey(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apiKeys[id]; !exists {
		return domain.ErrNotFound
	}
	delete(s.apiKeys, id)
	return nil
}

func (s *Store) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, exists := s.apiKeys[id]
	if !exists {
		return domain.ErrNotFound
	}
	now := time.Now()
	key.LastUsedAt = &now
	return nil
}

func (s *Store) CountAPIKeys(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.apiKeys), nil
}
