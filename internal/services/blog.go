// Package services holds the sanctioned write paths between API payloads and
// the persisted models.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vjbravo123/portfolio-cms/internal/blobstore"
	"github.com/vjbravo123/portfolio-cms/internal/models"
	"github.com/vjbravo123/portfolio-cms/internal/storage"
)

// PostInput is the raw save payload from the editor or the API.
type PostInput struct {
	Title      string           `json:"title"`
	Slug       string           `json:"slug"`
	Subtitle   string           `json:"subtitle"`
	Excerpt    string           `json:"excerpt"`
	Content    string           `json:"content"`
	Category   string           `json:"category"`
	Tags       []string         `json:"tags"`
	CoverImage string           `json:"coverImage"` // URL or inline data URI
	Published  bool             `json:"published"`
	IsFeatured *bool            `json:"isFeatured,omitempty"` // nil means not supplied
	AuthorID   string           `json:"authorId"`
	SEO        models.SEO       `json:"seo"`
	Series     *models.Series   `json:"series,omitempty"`
	Canonical  string           `json:"canonicalUrl,omitempty"`
	Blocks     []models.Block   `json:"blocks"`
	Metadata   *models.Metadata `json:"metadata"`
}

// BlogService is the only sanctioned write path for posts.
type BlogService struct {
	store  storage.Store
	images blobstore.ObjectStore
	log    *logrus.Entry
}

func NewBlogService(store storage.Store, images blobstore.ObjectStore, log *logrus.Entry) *BlogService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &BlogService{store: store, images: images, log: log}
}

// resolveCoverImage uploads an inline-encoded image and returns its URL, or
// passes an existing URL through. Upload failure clears the field instead of
// failing the save: the post must not lose its other edits over a cover.
func (s *BlogService) resolveCoverImage(ctx context.Context, input string) string {
	if input == "" {
		return ""
	}
	if !blobstore.IsDataURI(input) {
		return input
	}

	data, contentType, _, err := blobstore.ParseDataURI(input)
	if err != nil {
		s.log.WithError(err).Warn("cover image payload rejected, clearing field")
		return ""
	}
	url, err := s.images.Put(ctx, data, contentType)
	if err != nil {
		s.log.WithError(err).Warn("cover image upload failed, clearing field")
		return ""
	}
	return url
}

// formatPostData maps a raw payload to the Post shape, keeping create and
// update writes consistent: excerpt falls back into subtitle, the cover is
// wrapped into object form, seo defaults from title/subtitle, and the
// category doubles as the tag list when no tags were supplied.
func formatPostData(in PostInput, imageURL string) *models.Post {
	subtitle := in.Subtitle
	if subtitle == "" {
		subtitle = in.Excerpt
	}
	category := in.Category
	if category == "" {
		category = "General"
	}
	tags := in.Tags
	if len(tags) == 0 {
		tags = []string{category}
	}
	seo := in.SEO
	if seo.MetaTitle == "" {
		seo.MetaTitle = in.Title
	}
	if seo.MetaDescription == "" {
		seo.MetaDescription = subtitle
	}
	blocks := in.Blocks
	if in.Metadata != nil && len(in.Metadata.Blocks) > 0 {
		blocks = in.Metadata.Blocks
	}

	return &models.Post{
		Title:        in.Title,
		Slug:         in.Slug,
		Subtitle:     subtitle,
		Content:      in.Content,
		Category:     category,
		Tags:         tags,
		CoverImage:   models.CoverImage{URL: imageURL, Alt: in.Title},
		Published:    in.Published,
		IsFeatured:   in.IsFeatured != nil && *in.IsFeatured,
		AuthorID:     in.AuthorID,
		SEO:          seo,
		Series:       in.Series,
		CanonicalURL: in.Canonical,
		Metadata:     models.Metadata{Blocks: blocks},
	}
}

// CreatePostWithUpload resolves the cover image, normalizes the payload and
// creates the post. When the payload carries no author the earliest user
// becomes the author. Slug collisions on a derived slug recover with a
// numeric suffix; an explicitly chosen slug surfaces the duplicate error so
// the caller can offer recovery.
func (s *BlogService) CreatePostWithUpload(ctx context.Context, in PostInput) (*models.Post, error) {
	if in.AuthorID == "" {
		user, err := s.store.FirstUser(ctx)
		if err == nil {
			in.AuthorID = user.ID
		}
	}

	imageURL := s.resolveCoverImage(ctx, in.CoverImage)
	post := formatPostData(in, imageURL)
	post.Normalize(time.Now())
	if err := post.Validate(); err != nil {
		return nil, err
	}

	created, err := s.store.CreatePost(ctx, post)
	if err == nil || !errors.Is(err, storage.ErrDuplicateSlug) || in.Slug != "" {
		return created, err
	}

	base := post.Slug
	for i := 2; i <= 6; i++ {
		post.Slug = fmt.Sprintf("%s-%d", base, i)
		created, err = s.store.CreatePost(ctx, post)
		if err == nil || !errors.Is(err, storage.ErrDuplicateSlug) {
			return created, err
		}
	}
	return nil, err
}

// UpdatePostWithUpload is the editor's save path. The returned document
// carries server-resolved fields (notably the final cover URL) so the caller
// can adopt them and avoid re-uploading the same inline image.
func (s *BlogService) UpdatePostWithUpload(ctx context.Context, id string, in PostInput) (*models.Post, error) {
	existing, err := s.store.PostByID(ctx, id)
	if err != nil {
		return nil, err
	}

	imageURL := s.resolveCoverImage(ctx, in.CoverImage)
	post := formatPostData(in, imageURL)
	if post.AuthorID == "" {
		post.AuthorID = existing.AuthorID
	}
	if post.Slug == "" {
		post.Slug = existing.Slug
	}
	// Fields the editor form never carries keep their stored values, so a
	// save cannot silently un-feature a post or drop its series.
	if in.IsFeatured == nil {
		post.IsFeatured = existing.IsFeatured
	}
	if post.Series == nil {
		post.Series = existing.Series
	}
	if post.CanonicalURL == "" {
		post.CanonicalURL = existing.CanonicalURL
	}
	post.PublishedAt = existing.PublishedAt
	post.Normalize(time.Now())
	if err := post.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdatePost(ctx, id, post)
}

// GetPostByID returns one post regardless of publication state.
func (s *BlogService) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	return s.store.PostByID(ctx, id)
}

// GetPostBySlug returns one published post for the public reading page.
func (s *BlogService) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.store.PostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.Published {
		return nil, storage.ErrNotFound
	}
	return post, nil
}

// GetRecentPosts lists published posts, optionally filtered by category.
func (s *BlogService) GetRecentPosts(ctx context.Context, category string) ([]models.Post, error) {
	if strings.EqualFold(category, "All") {
		category = ""
	}
	posts, _, err := s.store.Posts(ctx, storage.PostQuery{
		Page:          1,
		Limit:         9,
		Category:      category,
		PublishedOnly: true,
	})
	return posts, err
}

// GetFeaturedPosts lists up to three editorially promoted posts.
func (s *BlogService) GetFeaturedPosts(ctx context.Context) ([]models.Post, error) {
	posts, _, err := s.store.Posts(ctx, storage.PostQuery{
		Page:          1,
		Limit:         3,
		PublishedOnly: true,
		FeaturedOnly:  true,
	})
	return posts, err
}

// GetPaginatedPosts backs the admin dashboard table. Search matches title OR
// category, case-insensitively.
func (s *BlogService) GetPaginatedPosts(ctx context.Context, page, limit int, search string) ([]models.Post, storage.Pagination, error) {
	return s.store.Posts(ctx, storage.PostQuery{Page: page, Limit: limit, Search: search})
}

// GetCategories lists published categories with counts and latest covers.
func (s *BlogService) GetCategories(ctx context.Context) ([]storage.CategoryStat, error) {
	return s.store.Categories(ctx)
}

// DeletePost removes the post permanently. Stats live inside the document,
// so nothing else needs cleanup.
func (s *BlogService) DeletePost(ctx context.Context, id string) error {
	return s.store.DeletePost(ctx, id)
}

// LikePost atomically bumps the like counter.
func (s *BlogService) LikePost(ctx context.Context, id string) (*models.Stats, error) {
	return s.store.IncrementStat(ctx, id, storage.StatLikes)
}

// IncrementViews atomically bumps the view counter.
func (s *BlogService) IncrementViews(ctx context.Context, id string) (*models.Stats, error) {
	return s.store.IncrementStat(ctx, id, storage.StatViews)
}
