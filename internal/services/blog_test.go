package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vjbravo123/portfolio-cms/internal/blobstore"
	"github.com/vjbravo123/portfolio-cms/internal/models"
	"github.com/vjbravo123/portfolio-cms/internal/storage"
	"github.com/vjbravo123/portfolio-cms/internal/storage/memdb"
)

type failingObjectStore struct{}

func (failingObjectStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	return "", errors.New("bucket unreachable")
}

func newBlogService(t *testing.T) (*BlogService, *memdb.Store) {
	t.Helper()
	db := memdb.New()
	return NewBlogService(db, blobstore.NewMemory(), nil), db
}

func dataURI(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestCreatePostDefaults(t *testing.T) {
	svc, _ := newBlogService(t)

	post, err := svc.CreatePostWithUpload(context.Background(), PostInput{
		Title:    "My First Post",
		Content:  "<p>hello world</p>",
		AuthorID: "author-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "my-first-post", post.Slug)
	assert.False(t, post.Published)
	assert.Nil(t, post.PublishedAt)
	assert.Equal(t, models.Stats{}, post.Stats)
	assert.Equal(t, models.DefaultCoverURL, post.CoverImage.URL)
	assert.Equal(t, "General", post.Category)
	assert.Equal(t, []string{"general"}, post.Tags)
	assert.Equal(t, "My First Post", post.SEO.MetaTitle)
}

func TestCreatePostFallsBackToFirstUser(t *testing.T) {
	svc, db := newBlogService(t)
	owner, err := db.CreateUser(context.Background(), &models.User{
		Name: "Owner", Email: "owner@example.com", Role: models.RoleAdmin, IsActive: true,
	})
	require.NoError(t, err)

	post, err := svc.CreatePostWithUpload(context.Background(), PostInput{
		Title:   "Untitled Draft",
		Content: "<p>x</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, post.AuthorID)
}

func TestCreatePostUploadsInlineCover(t *testing.T) {
	svc, _ := newBlogService(t)

	post, err := svc.CreatePostWithUpload(context.Background(), PostInput{
		Title:      "With Cover",
		Content:    "<p>x</p>",
		AuthorID:   "author-1",
		CoverImage: dataURI("image-bytes"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(post.CoverImage.URL, "mem://blog-images/"))
}

func TestCreatePostSurvivesCoverUploadFailure(t *testing.T) {
	db := memdb.New()
	svc := NewBlogService(db, failingObjectStore{}, nil)

	post, err := svc.CreatePostWithUpload(context.Background(), PostInput{
		Title:      "Resilient",
		Content:    "<p>x</p>",
		AuthorID:   "author-1",
		CoverImage: dataURI("image-bytes"),
	})
	require.NoError(t, err, "a broken bucket must not lose the text edits")
	assert.Equal(t, models.DefaultCoverURL, post.CoverImage.URL)
}

func TestCreatePostValidation(t *testing.T) {
	svc, _ := newBlogService(t)

	_, err := svc.CreatePostWithUpload(context.Background(), PostInput{AuthorID: "a"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "content")
}

func TestCreatePostDerivedSlugRecovery(t *testing.T) {
	svc, _ := newBlogService(t)
	ctx := context.Background()

	first, err := svc.CreatePostWithUpload(ctx, PostInput{
		Title: "Go Tips", Content: "<p>a</p>", AuthorID: "a",
	})
	require.NoError(t, err)
	require.Equal(t, "go-tips", first.Slug)

	second, err := svc.CreatePostWithUpload(ctx, PostInput{
		Title: "Go Tips", Content: "<p>b</p>", AuthorID: "a",
	})
	require.NoError(t, err)
	assert.Equal(t, "go-tips-2", second.Slug)

	// An explicitly chosen slug gets no silent rename.
	_, err = svc.CreatePostWithUpload(ctx, PostInput{
		Title: "Other", Slug: "go-tips", Content: "<p>c</p>", AuthorID: "a",
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateSlug)
}

func TestUpdatePreservesSlugAuthorAndPublishedAt(t *testing.T) {
	svc, _ := newBlogService(t)
	ctx := context.Background()

	created, err := svc.CreatePostWithUpload(ctx, PostInput{
		Title: "Original", Content: "<p>a</p>", AuthorID: "author-1", Published: true,
	})
	require.NoError(t, err)
	require.NotNil(t, created.PublishedAt)

	updated, err := svc.UpdatePostWithUpload(ctx, created.ID, PostInput{
		Title: "Renamed", Content: "<p>b</p>", Published: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "original", updated.Slug)
	assert.Equal(t, "author-1", updated.AuthorID)
	assert.Equal(t, created.PublishedAt, updated.PublishedAt)
}

func boolPtr(b bool) *bool { return &b }

func TestUpdatePreservesUnsentFields(t *testing.T) {
	svc, _ := newBlogService(t)
	ctx := context.Background()

	created, err := svc.CreatePostWithUpload(ctx, PostInput{
		Title:      "Curated",
		Content:    "<p>a</p>",
		AuthorID:   "author-1",
		IsFeatured: boolPtr(true),
		Series:     &models.Series{Name: "Go Basics", Order: 2},
		Canonical:  "https://example.com/curated",
	})
	require.NoError(t, err)
	require.True(t, created.IsFeatured)

	// The editor form sends none of these fields; the stored values stay.
	updated, err := svc.UpdatePostWithUpload(ctx, created.ID, PostInput{
		Title: "Curated", Content: "<p>b</p>",
	})
	require.NoError(t, err)
	assert.True(t, updated.IsFeatured)
	require.NotNil(t, updated.Series)
	assert.Equal(t, "Go Basics", updated.Series.Name)
	assert.Equal(t, "https://example.com/curated", updated.CanonicalURL)

	// An explicit false is a real unfeature, not an omission.
	updated, err = svc.UpdatePostWithUpload(ctx, created.ID, PostInput{
		Title: "Curated", Content: "<p>c</p>", IsFeatured: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, updated.IsFeatured)
}

// Two editors load the same post and save one after the other; the second
// save replaces the first without any conflict signal. Pinned as the
// intended single-author behavior.
func TestLastWriteWins(t *testing.T) {
	svc, _ := newBlogService(t)
	ctx := context.Background()

	created, err := svc.CreatePostWithUpload(ctx, PostInput{
		Title: "Shared", Content: "<p>base</p>", AuthorID: "a",
	})
	require.NoError(t, err)

	_, err = svc.UpdatePostWithUpload(ctx, created.ID, PostInput{
		Title: "Shared", Content: "<p>first editor</p>",
	})
	require.NoError(t, err)

	final, err := svc.UpdatePostWithUpload(ctx, created.ID, PostInput{
		Title: "Shared", Content: "<p>second editor</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>second editor</p>", final.Content)
}

func TestGetPostBySlugHidesDrafts(t *testing.T) {
	svc, _ := newBlogService(t)
	ctx := context.Background()

	_, err := svc.CreatePostWithUpload(ctx, PostInput{
		Title: "Draft Only", Content: "<p>a</p>", AuthorID: "a",
	})
	require.NoError(t, err)

	_, err = svc.GetPostBySlug(ctx, "draft-only")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetRecentPostsCategoryFilter(t *testing.T) {
	svc, _ := newBlogService(t)
	ctx := context.Background()

	for _, p := range []PostInput{
		{Title: "Go One", Category: "Technology", Content: "<p>a</p>", AuthorID: "a", Published: true},
		{Title: "Go Two", Category: "Travel", Content: "<p>b</p>", AuthorID: "a", Published: true},
		{Title: "Hidden", Category: "Technology", Content: "<p>c</p>", AuthorID: "a"},
	} {
		_, err := svc.CreatePostWithUpload(ctx, p)
		require.NoError(t, err)
	}

	posts, err := svc.GetRecentPosts(ctx, "Technology")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Go One", posts[0].Title)

	// "All" is the sentinel the category dropdown sends.
	posts, err = svc.GetRecentPosts(ctx, "All")
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestPaginatedSearchMatchesTitleOrCategory(t *testing.T) {
	svc, _ := newBlogService(t)
	ctx := context.Background()

	for _, p := range []PostInput{
		{Title: "Cooking pasta", Category: "Food", Content: "<p>a</p>", AuthorID: "a"},
		{Title: "Trail running", Category: "Fitness", Content: "<p>b</p>", AuthorID: "a"},
		{Title: "Marathon prep", Category: "fitness tips", Content: "<p>c</p>", AuthorID: "a"},
	} {
		_, err := svc.CreatePostWithUpload(ctx, p)
		require.NoError(t, err)
	}

	posts, pagination, err := svc.GetPaginatedPosts(ctx, 1, 10, "FITNESS")
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, 2, pagination.TotalDocs)
}

func TestCounterIncrements(t *testing.T) {
	svc, _ := newBlogService(t)
	ctx := context.Background()

	created, err := svc.CreatePostWithUpload(ctx, PostInput{
		Title: "Counted", Content: "<p>a</p>", AuthorID: "a",
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.IncrementViews(ctx, created.ID)
		require.NoError(t, err)
	}
	stats, err := svc.LikePost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Views)
	assert.Equal(t, int64(1), stats.Likes)
}
