package sql

import (
	"context"
	"testing"
	"time"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStores opens an in-memory database on each SQLite driver.
func newTestStores(t *testing.T) map[string]*Store {
	t.Helper()
	stores := make(map[string]*Store)
	for _, driver := range []string{DriverSQLite3, DriverSQLite} {
		store, err := New(driver, ":memory:")
		require.NoError(t, err, "driver %s", driver)
		t.Cleanup(func() { _ = store.Close() })
		stores[driver] = store
	}
	return stores
}

func mustUser(t *testing.T, s *Store, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func mustGroup(t *testing.T, s *Store, slug string) *domain.Group {
	t.Helper()
	g := &domain.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, s.CreateGroup(context.Background(), g))
	return g
}

func TestMigrationsApplied(t *testing.T) {
	for driver, store := range newTestStores(t) {
		t.Run(driver, func(t *testing.T) {
			version, err := store.SchemaVersion()
			require.NoError(t, err)
			assert.EqualValues(t, 1, version)
			assert.Equal(t, driver, store.Driver())
		})
	}
}

func TestGroups(t *testing.T) {
	ctx := context.Background()
	for driver, store := range newTestStores(t) {
		t.Run(driver, func(t *testing.T) {
			g := mustGroup(t, store, "cats")
			assert.NotZero(t, g.ID)

			dup := &domain.Group{Title: "Other", Slug: "cats", Description: "x"}
			assert.ErrorIs(t, store.CreateGroup(ctx, dup), domain.ErrAlreadyExists)

			got, err := store.GetGroupBySlug(ctx, "cats")
			require.NoError(t, err)
			assert.Equal(t, g, got)

			_, err = store.GetGroupBySlug(ctx, "dogs")
			assert.ErrorIs(t, err, domain.ErrNotFound)

			g.Title = "Cats and kittens"
			require.NoError(t, store.UpdateGroup(ctx, g))
			got, err = store.GetGroup(ctx, g.ID)
			require.NoError(t, err)
			assert.Equal(t, "Cats and kittens", got.Title)
			assert.Equal(t, "cats", got.Slug)

			assert.ErrorIs(t, store.UpdateGroup(ctx, &domain.Group{ID: 999}), domain.ErrNotFound)

			groups, err := store.ListGroups(ctx)
			require.NoError(t, err)
			assert.Len(t, groups, 1)
		})
	}
}

func TestPostsOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	for driver, store := range newTestStores(t) {
		t.Run(driver, func(t *testing.T) {
			alice := mustUser(t, store, "alice")
			bob := mustUser(t, store, "bob")
			cats := mustGroup(t, store, "cats")

			base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
			var ids []int64
			for i := 0; i < 5; i++ {
				p := &domain.Post{
					Text:     "post",
					PubDate:  base.Add(time.Duration(i) * time.Minute),
					AuthorID: alice.ID,
				}
				if i%2 == 0 {
					p.GroupID = &cats.ID
				}
				if i == 4 {
					p.AuthorID = bob.ID
				}
				require.NoError(t, store.CreatePost(ctx, p))
				ids = append(ids, p.ID)
			}
			// same timestamp as the newest post: ties go to the higher id
			tie := &domain.Post{Text: "tie", PubDate: base.Add(4 * time.Minute), AuthorID: alice.ID}
			require.NoError(t, store.CreatePost(ctx, tie))

			all, err := store.ListPosts(ctx, storage.PostFilter{}, 10, 0)
			require.NoError(t, err)
			require.Len(t, all, 6)
			assert.Equal(t, tie.ID, all[0].ID)
			assert.Equal(t, ids[4], all[1].ID)
			assert.Equal(t, ids[0], all[5].ID)
			assert.Equal(t, "bob", all[1].AuthorUsername)

			inGroup, err := store.ListPosts(ctx, storage.ByGroup(cats.ID), 10, 0)
			require.NoError(t, err)
			require.Len(t, inGroup, 3)
			for _, p := range inGroup {
				require.NotNil(t, p.GroupID)
				assert.Equal(t, cats.ID, *p.GroupID)
				require.NotNil(t, p.GroupSlug)
				assert.Equal(t, "cats", *p.GroupSlug)
			}

			count, err := store.CountPosts(ctx, storage.ByAuthor(alice.ID))
			require.NoError(t, err)
			assert.Equal(t, 5, count)

			window, err := store.ListPosts(ctx, storage.PostFilter{}, 2, 4)
			require.NoError(t, err)
			require.Len(t, window, 2)
			assert.Equal(t, ids[1], window[0].ID)
			assert.Equal(t, ids[0], window[1].ID)
		})
	}
}

func TestPostUpdateKeepsAuthorAndDate(t *testing.T) {
	ctx := context.Background()
	for driver, store := range newTestStores(t) {
		t.Run(driver, func(t *testing.T) {
			alice := mustUser(t, store, "alice")
			cats := mustGroup(t, store, "cats")
			pubDate := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

			p := &domain.Post{Text: "first", PubDate: pubDate, AuthorID: alice.ID}
			require.NoError(t, store.CreatePost(ctx, p))

			p.Text = "edited"
			p.GroupID = &cats.ID
			p.AuthorID = 12345
			p.PubDate = time.Now()
			require.NoError(t, store.UpdatePost(ctx, p))

			got, err := store.GetPost(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, "edited", got.Text)
			assert.Equal(t, alice.ID, got.AuthorID)
			assert.True(t, got.PubDate.Equal(pubDate), "pub_date changed to %v", got.PubDate)
			require.NotNil(t, got.GroupTitle)
			assert.Equal(t, "Group cats", *got.GroupTitle)

			assert.ErrorIs(t, store.UpdatePost(ctx, &domain.Post{ID: 999, Text: "x"}), domain.ErrNotFound)
			_, err = store.GetPost(ctx, 999)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestReferentialActions(t *testing.T) {
	ctx := context.Background()
	for driver, store := range newTestStores(t) {
		t.Run(driver, func(t *testing.T) {
			alice := mustUser(t, store, "alice")
			cats := mustGroup(t, store, "cats")

			p := &domain.Post{Text: "hello", PubDate: time.Now().UTC(), AuthorID: alice.ID, GroupID: &cats.ID}
			require.NoError(t, store.CreatePost(ctx, p))

			missing := int64(404)
			orphan := &domain.Post{Text: "x", PubDate: time.Now().UTC(), AuthorID: alice.ID, GroupID: &missing}
			assert.ErrorIs(t, store.CreatePost(ctx, orphan), domain.ErrNotFound)

			// deleting the group clears the reference, the post survives
			require.NoError(t, store.DeleteGroup(ctx, cats.ID))
			got, err := store.GetPost(ctx, p.ID)
			require.NoError(t, err)
			assert.Nil(t, got.GroupID)
			assert.Nil(t, got.GroupSlug)

			// deleting the author deletes the post
			require.NoError(t, store.DeleteUser(ctx, alice.ID))
			_, err = store.GetPost(ctx, p.ID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	for driver, store := range newTestStores(t) {
		t.Run(driver, func(t *testing.T) {
			u := &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h", CreatedAt: time.Now().UTC()}
			require.NoError(t, store.CreateUser(ctx, u))

			assert.ErrorIs(t, store.CreateUser(ctx, &domain.User{Username: "alice", CreatedAt: time.Now()}), domain.ErrAlreadyExists)
			// users without email do not collide on the empty string
			require.NoError(t, store.CreateUser(ctx, &domain.User{Username: "bob", CreatedAt: time.Now()}))
			require.NoError(t, store.CreateUser(ctx, &domain.User{Username: "carol", CreatedAt: time.Now()}))

			byName, err := store.GetUserByUsername(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, u.ID, byName.ID)
			assert.Equal(t, "h", byName.PasswordHash)

			byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
			require.NoError(t, err)
			assert.Equal(t, u.ID, byEmail.ID)

			_, err = store.GetUserByEmail(ctx, "")
			assert.ErrorIs(t, err, domain.ErrNotFound)
			_, err = store.GetUserByUsername(ctx, "nobody")
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestAPIKeys(t *testing.T) {
	ctx := context.Background()
	for driver, store := range newTestStores(t) {
		t.Run(driver, func(t *testing.T) {
			key := &domain.APIKey{ID: "k1", Name: "ci", KeyHash: "hash", KeyPrefix: "ytb_1234", CreatedAt: time.Now().UTC()}
			require.NoError(t, store.CreateAPIKey(ctx, key))

			n, err := store.CountAPIKeys(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			got, err := store.GetAPIKeyByHash(ctx, "hash")
			require.NoError(t, err)
			assert.Equal(t, "ci", got.Name)
			assert.Nil(t, got.LastUsedAt)

			require.NoError(t, store.UpdateAPIKeyLastUsed(ctx, "k1"))
			got, err = store.GetAPIKeyByHash(ctx, "hash")
			require.NoError(t, err)
			assert.NotNil(t, got.LastUsedAt)

			require.NoError(t, store.DeleteAPIKey(ctx, "k1"))
			assert.ErrorIs(t, store.DeleteAPIKey(ctx, "k1"), domain.ErrNotFound)
		})
	}
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	for driver, store := range newTestStores(t) {
		t.Run(driver, func(t *testing.T) {
			tx, err := store.BeginTx(ctx)
			require.NoError(t, err)
			require.NoError(t, tx.CreateGroup(ctx, &domain.Group{Title: "T", Slug: "tx", Description: "d"}))
			_, err = tx.BeginTx(ctx)
			assert.Error(t, err)
			require.NoError(t, tx.Rollback())

			_, err = store.GetGroupBySlug(ctx, "tx")
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}
