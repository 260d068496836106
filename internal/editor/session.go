package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/vjbravo123/portfolio-cms/internal/models"
	"github.com/vjbravo123/portfolio-cms/internal/services"
	"github.com/vjbravo123/portfolio-cms/internal/storage"
)

// ErrTitleRequired blocks a save before any network call happens.
var ErrTitleRequired = errors.New("editor: please enter a post title")

// SessionState is the authoring session lifecycle: loading → {error|ready},
// ready → saving → ready, and ready ⇄ previewing as a reversible toggle.
type SessionState string

const (
	StateLoading    SessionState = "loading"
	StateError      SessionState = "error"
	StateReady      SessionState = "ready"
	StateSaving     SessionState = "saving"
	StatePreviewing SessionState = "previewing"
)

// Meta is the settings-sidebar form for one post.
type Meta struct {
	Title          string
	Slug           string
	Excerpt        string
	Category       string
	SEOTitle       string
	SEODescription string
	CoverImage     string
	Published      bool
}

// Preview is a pure client-side projection of the current unsaved state
// through the public post shape; rendering it never touches the network.
type Preview struct {
	Title       string
	Content     string
	CoverImage  string
	Tags        []string
	ReadingTime int
}

// Session orchestrates one authoring workflow: load, edit, save, preview.
type Session struct {
	blog   *services.BlogService
	postID string

	state SessionState
	err   error

	Meta Meta
	Doc  *Document
}

func NewSession(blog *services.BlogService, postID string) *Session {
	return &Session{blog: blog, postID: postID, state: StateLoading}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return s.state
}

// Err returns the load error when the session is in the error state.
func (s *Session) Err() error {
	return s.err
}

// NotFound reports whether the load failure was a missing post, so the UI
// can offer "return to dashboard" instead of "retry".
func (s *Session) NotFound() bool {
	return errors.Is(s.err, storage.ErrNotFound)
}

// Load fetches the post and populates the meta form and the block document.
// The stored block snapshot wins when present; otherwise the HTML is decoded
// into a best-effort block tree; an empty post seeds one empty paragraph.
func (s *Session) Load(ctx context.Context) error {
	post, err := s.blog.GetPostByID(ctx, s.postID)
	if err != nil {
		s.state = StateError
		s.err = err
		return err
	}

	s.Meta = Meta{
		Title:          post.Title,
		Slug:           post.Slug,
		Excerpt:        post.Subtitle,
		Category:       post.Category,
		SEOTitle:       post.SEO.MetaTitle,
		SEODescription: post.SEO.MetaDescription,
		CoverImage:     post.CoverImage.URL,
		Published:      post.Published,
	}

	switch {
	case len(post.Metadata.Blocks) > 0:
		s.Doc = NewDocument(post.Metadata.Blocks)
	case post.Content != "":
		s.Doc = NewDocument(DecodeHTML(post.Content))
	default:
		s.Doc = NewDocument(nil)
	}

	s.state = StateReady
	return nil
}

// Save encodes the current blocks to HTML and submits the whole payload to
// the blog service, then adopts the server-resolved cover URL and publish
// state so a later save does not re-upload the same inline image. publish
// overrides the stored flag when non-nil. Save failures always surface; the
// session returns to ready either way and stays editable.
func (s *Session) Save(ctx context.Context, publish *bool) (*models.Post, error) {
	if s.state != StateReady {
		return nil, fmt.Errorf("editor: cannot save while %s", s.state)
	}
	if s.Meta.Title == "" {
		return nil, ErrTitleRequired
	}

	s.state = StateSaving
	defer func() { s.state = StateReady }()

	published := s.Meta.Published
	if publish != nil {
		published = *publish
	}
	blocks := s.Doc.Blocks()

	post, err := s.blog.UpdatePostWithUpload(ctx, s.postID, services.PostInput{
		Title:      s.Meta.Title,
		Slug:       s.Meta.Slug,
		Subtitle:   s.Meta.Excerpt,
		Content:    EncodeBlocks(blocks),
		Category:   s.Meta.Category,
		CoverImage: s.Meta.CoverImage,
		Published:  published,
		SEO: models.SEO{
			MetaTitle:       s.Meta.SEOTitle,
			MetaDescription: s.Meta.SEODescription,
		},
		Metadata: &models.Metadata{Blocks: blocks},
	})
	if err != nil {
		return nil, err
	}

	s.Meta.CoverImage = post.CoverImage.URL
	s.Meta.Published = post.Published
	return post, nil
}

// EnterPreview projects the current unsaved state through the public post
// template shape.
func (s *Session) EnterPreview() (Preview, error) {
	if s.state != StateReady {
		return Preview{}, fmt.Errorf("editor: cannot preview while %s", s.state)
	}
	s.state = StatePreviewing

	content := EncodeBlocks(s.Doc.Blocks())
	return Preview{
		Title:       s.Meta.Title,
		Content:     content,
		CoverImage:  s.Meta.CoverImage,
		Tags:        []string{s.Meta.Category},
		ReadingTime: (&models.Post{Content: content}).ReadingTime(),
	}, nil
}

// ExitPreview returns to the editable state without persisting anything.
func (s *Session) ExitPreview() {
	if s.state == StatePreviewing {
		s.state = StateReady
	}
}
