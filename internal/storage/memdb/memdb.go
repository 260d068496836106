// Package memdb is an in-memory Store used by tests and local development.
package memdb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vjbravo123/portfolio-cms/internal/models"
	"github.com/vjbravo123/portfolio-cms/internal/storage"
)

type Store struct {
	mu    sync.Mutex
	posts map[string]models.Post
	users map[string]models.User
}

func New() *Store {
	return &Store{
		posts: make(map[string]models.Post),
		users: make(map[string]models.User),
	}
}

func (db *Store) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, p := range db.posts {
		if p.Slug == post.Slug {
			return nil, storage.ErrDuplicateSlug
		}
	}

	saved := *post
	saved.ID = uuid.NewString()
	saved.CreatedAt = time.Now()
	saved.UpdatedAt = saved.CreatedAt
	db.posts[saved.ID] = saved

	out := saved
	return &out, nil
}

func (db *Store) UpdatePost(ctx context.Context, id string, post *models.Post) (*models.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	existing, ok := db.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	for otherID, p := range db.posts {
		if otherID != id && p.Slug == post.Slug {
			return nil, storage.ErrDuplicateSlug
		}
	}

	saved := *post
	saved.ID = id
	saved.CreatedAt = existing.CreatedAt
	saved.UpdatedAt = time.Now()
	// Counters only move through IncrementStat; publishedAt keeps its
	// first-set value.
	saved.Stats = existing.Stats
	if existing.PublishedAt != nil {
		saved.PublishedAt = existing.PublishedAt
	}
	db.posts[id] = saved

	out := saved
	return &out, nil
}

func (db *Store) DeletePost(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(db.posts, id)
	return nil
}

func (db *Store) PostByID(ctx context.Context, id string) (*models.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	post, ok := db.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := post
	return &out, nil
}

func (db *Store) PostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, post := range db.posts {
		if post.Slug == slug {
			out := post
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func matchesQuery(p models.Post, q storage.PostQuery) bool {
	if q.PublishedOnly && !p.Published {
		return false
	}
	if q.FeaturedOnly && !p.IsFeatured {
		return false
	}
	if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Category), needle) {
			return false
		}
	}
	return true
}

func (db *Store) Posts(ctx context.Context, q storage.PostQuery) ([]models.Post, storage.Pagination, error) {
	db.mu.Lock()
	matched := make([]models.Post, 0, len(db.posts))
	for _, post := range db.posts {
		if matchesQuery(post, q) {
			matched = append(matched, post)
		}
	}
	db.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	pagination := storage.NewPagination(len(matched), page, limit)

	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Post{}, pagination, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], pagination, nil
}

func (db *Store) IncrementStat(ctx context.Context, id string, field storage.StatField) (*models.Stats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	post, ok := db.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	switch field {
	case storage.StatViews:
		post.Stats.Views++
	case storage.StatLikes:
		post.Stats.Likes++
	case storage.StatShares:
		post.Stats.Shares++
	}
	db.posts[id] = post

	stats := post.Stats
	return &stats, nil
}

func (db *Store) Categories(ctx context.Context) ([]storage.CategoryStat, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	type entry struct {
		stat   storage.CategoryStat
		latest time.Time
	}
	byName := make(map[string]*entry)
	for _, post := range db.posts {
		if !post.Published {
			continue
		}
		e, ok := byName[post.Category]
		if !ok {
			e = &entry{stat: storage.CategoryStat{Name: post.Category}}
			byName[post.Category] = e
		}
		e.stat.Count++
		if post.CreatedAt.After(e.latest) {
			e.latest = post.CreatedAt
			e.stat.LatestImage = post.CoverImage.URL
		}
	}

	out := make([]storage.CategoryStat, 0, len(byName))
	for _, e := range byName {
		out = append(out, e.stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (db *Store) PostTotals(ctx context.Context) (storage.PostTotals, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var totals storage.PostTotals
	for _, post := range db.posts {
		totals.Posts++
		if post.Published {
			totals.Published++
		} else {
			totals.Drafts++
		}
		totals.Views += post.Stats.Views
		totals.Likes += post.Stats.Likes
	}
	return totals, nil
}

func (db *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, storage.ErrDuplicateEmail
		}
	}

	saved := *user
	saved.ID = uuid.NewString()
	saved.CreatedAt = time.Now()
	saved.UpdatedAt = saved.CreatedAt
	db.users[saved.ID] = saved

	out := saved
	return &out, nil
}

func (db *Store) UpdateUser(ctx context.Context, id string, user *models.User) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	existing, ok := db.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	for otherID, u := range db.users {
		if otherID != id && strings.EqualFold(u.Email, user.Email) {
			return nil, storage.ErrDuplicateEmail
		}
	}

	saved := *user
	saved.ID = id
	saved.CreatedAt = existing.CreatedAt
	saved.UpdatedAt = time.Now()
	db.users[id] = saved

	out := saved
	return &out, nil
}

func (db *Store) DeleteUser(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(db.users, id)
	return nil
}

func (db *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	user, ok := db.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := user
	return &out, nil
}

func (db *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, user := range db.users {
		if strings.EqualFold(user.Email, email) {
			out := user
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (db *Store) Users(ctx context.Context, q storage.UserQuery) ([]models.User, storage.Pagination, storage.UserTotals, error) {
	db.mu.Lock()
	var totals storage.UserTotals
	matched := make([]models.User, 0, len(db.users))
	for _, user := range db.users {
		totals.Total++
		if user.IsActive {
			totals.Active++
		}
		switch user.Role {
		case models.RoleAdmin:
			totals.Admins++
		case models.RoleAuthor:
			totals.Authors++
		}

		if q.Role != "" && user.Role != q.Role {
			continue
		}
		if q.Search != "" {
			needle := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(user.Name), needle) &&
				!strings.Contains(strings.ToLower(user.Email), needle) {
				continue
			}
		}
		matched = append(matched, user)
	}
	db.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	pagination := storage.NewPagination(len(matched), page, limit)

	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.User{}, pagination, totals, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], pagination, totals, nil
}

func (db *Store) FirstUser(ctx context.Context) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var first *models.User
	for _, user := range db.users {
		u := user
		if first == nil || u.CreatedAt.Before(first.CreatedAt) {
			first = &u
		}
	}
	if first == nil {
		return nil, storage.ErrNotFound
	}
	return first, nil
}
