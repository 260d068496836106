// Package storage defines the document store surface the services depend on.
// Implementations live in the postgres and memdb subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/vjbravo123/portfolio-cms/internal/models"
)

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrDuplicateSlug is returned when a post write violates slug
	// uniqueness, distinct from generic validation so callers can offer
	// suffix recovery.
	ErrDuplicateSlug = errors.New("storage: slug already exists")
	// ErrDuplicateEmail is returned when a user write violates email
	// uniqueness.
	ErrDuplicateEmail = errors.New("storage: email already exists")
)

// StatField selects which counter IncrementStat bumps.
type StatField string

const (
	StatViews  StatField = "views"
	StatLikes  StatField = "likes"
	StatShares StatField = "shares"
)

// Pagination is the metadata returned alongside every paged listing.
type Pagination struct {
	TotalDocs   int  `json:"totalDocs"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPagination derives the page metadata from a total count.
func NewPagination(total, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		TotalDocs:   total,
		TotalPages:  totalPages,
		CurrentPage: page,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// PostQuery filters and pages a post listing. Search is a case-insensitive
// substring match against title OR category.
type PostQuery struct {
	Page          int
	Limit         int
	Search        string
	Category      string
	PublishedOnly bool
	FeaturedOnly  bool
}

// UserQuery filters and pages a user listing. Search matches name OR email.
type UserQuery struct {
	Page   int
	Limit  int
	Search string
	Role   models.Role
}

// UserTotals are the aggregate cards on the admin users page.
type UserTotals struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Admins  int `json:"admins"`
	Authors int `json:"authors"`
}

// PostTotals are the aggregate numbers on the dashboard overview.
type PostTotals struct {
	Posts     int   `json:"posts"`
	Published int   `json:"published"`
	Drafts    int   `json:"drafts"`
	Views     int64 `json:"views"`
	Likes     int64 `json:"likes"`
}

// CategoryStat summarizes one category for the public category listing.
type CategoryStat struct {
	Name        string `json:"name"`
	Count       int    `json:"count"`
	LatestImage string `json:"latestImage"`
}

// Store is the persistence surface for posts and users. UpdatePost is a full
// document overwrite except for the stats counters, which only move through
// IncrementStat, and publishedAt, which keeps its first-set value.
type Store interface {
	CreatePost(ctx context.Context, post *models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, post *models.Post) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	PostByID(ctx context.Context, id string) (*models.Post, error)
	PostBySlug(ctx context.Context, slug string) (*models.Post, error)
	Posts(ctx context.Context, q PostQuery) ([]models.Post, Pagination, error)
	IncrementStat(ctx context.Context, id string, field StatField) (*models.Stats, error)
	Categories(ctx context.Context) ([]CategoryStat, error)
	PostTotals(ctx context.Context) (PostTotals, error)

	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id string, user *models.User) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	Users(ctx context.Context, q UserQuery) ([]models.User, Pagination, UserTotals, error)
	FirstUser(ctx context.Context) (*models.User, error)
}
