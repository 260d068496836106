package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vjbravo123/portfolio-cms/internal/textutil"
)

const (
	// DefaultCoverURL is used when a post is saved without a cover image.
	DefaultCoverURL = "https://via.placeholder.com/1200x630.png"
	// DefaultCoverAlt is the alt text applied to defaulted covers.
	DefaultCoverAlt = "Blog Cover Image"

	maxTitleLen    = 150
	maxSubtitleLen = 200
)

// ContentFormat tags how Post.Content should be interpreted. The editor
// pipeline only ever writes HTML; the other values exist for imports.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatMDX      = "mdx"
	FormatBlocks   = "blocks"
)

// CoverImage is always the three-field object on read and write. Legacy
// documents stored a bare URL string; UnmarshalJSON upgrades those.
type CoverImage struct {
	URL    string `json:"url"`
	Alt    string `json:"alt"`
	Credit string `json:"credit"`
}

func (c *CoverImage) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = CoverImage{URL: s}
		return nil
	}
	type alias CoverImage
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = CoverImage(a)
	return nil
}

// Series groups posts into an ordered sequence.
type Series struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Order int    `json:"order"`
}

// SEO metadata; metaTitle/metaDescription default from title/subtitle.
type SEO struct {
	MetaTitle       string   `json:"metaTitle,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

// Stats are monotonically non-decreasing counters, mutated only through
// atomic store increments, never through full-document writes.
type Stats struct {
	Views  int64 `json:"views"`
	Likes  int64 `json:"likes"`
	Shares int64 `json:"shares"`
}

// Metadata carries the block snapshot of the last editor save. When Blocks is
// empty the stored HTML is re-parsed on load instead.
type Metadata struct {
	Blocks []Block `json:"blocks,omitempty"`
}

// Post is one blog article as persisted.
type Post struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Subtitle      string     `json:"subtitle,omitempty"`
	Slug          string     `json:"slug"`
	ContentFormat string     `json:"contentFormat"`
	Content       string     `json:"content"`
	CoverImage    CoverImage `json:"coverImage"`
	Series        *Series    `json:"series,omitempty"`
	AuthorID      string     `json:"author"`
	Published     bool       `json:"published"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	Tags          []string   `json:"tags"`
	Category      string     `json:"category"`
	CanonicalURL  string     `json:"canonicalUrl,omitempty"`
	SEO           SEO        `json:"seo"`
	IsFeatured    bool       `json:"isFeatured"`
	Stats         Stats      `json:"stats"`
	Metadata      Metadata   `json:"metadata"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ReadingTime estimates minutes to read the content at 200 wpm, rounded up.
func (p *Post) ReadingTime() int {
	return textutil.ReadingMinutes(p.Content)
}

// Snippet is the short listing preview: seo.metaDescription when set, else
// the first 160 characters of the stripped content, falling back to the
// subtitle.
func (p *Post) Snippet() string {
	if p.SEO.MetaDescription != "" {
		return p.SEO.MetaDescription
	}
	text := strings.TrimSpace(textutil.StripHTML(p.Content))
	if text == "" {
		return p.Subtitle
	}
	return textutil.Truncate(text, 160)
}

// MarshalJSON includes the derived readingTime and snippet fields so API
// consumers see the same shape the original documents exposed.
func (p Post) MarshalJSON() ([]byte, error) {
	type alias Post
	return json.Marshal(struct {
		alias
		ReadingTime int    `json:"readingTime"`
		Snippet     string `json:"snippet"`
	}{
		alias:       alias(p),
		ReadingTime: p.ReadingTime(),
		Snippet:     p.Snippet(),
	})
}

// Normalize applies the write-time invariants, in order: derive the slug from
// the title when absent, stamp publishedAt the first time published flips to
// true, derive the series slug, then fill field defaults. It runs before
// Validate on every write path so any writer gets the same guarantees.
func (p *Post) Normalize(now time.Time) {
	if p.Slug == "" && p.Title != "" {
		p.Slug = textutil.Slugify(p.Title)
	}
	p.Slug = strings.ToLower(p.Slug)

	if p.Published && p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}

	if p.Series != nil && p.Series.Name != "" && p.Series.Slug == "" {
		p.Series.Slug = textutil.Slugify(p.Series.Name)
	}

	if p.ContentFormat == "" {
		p.ContentFormat = FormatHTML
	}
	if p.Category == "" {
		p.Category = "General"
	}
	if p.CoverImage.URL == "" {
		p.CoverImage.URL = DefaultCoverURL
	}
	if p.CoverImage.Alt == "" {
		p.CoverImage.Alt = DefaultCoverAlt
	}
	for i, tag := range p.Tags {
		p.Tags[i] = strings.ToLower(strings.TrimSpace(tag))
	}
}

// FieldError is a client-correctable validation failure on one field,
// reported distinctly from storage errors so callers can render it inline.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates per-field failures for one write.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validate checks the required-field and length invariants.
func (p *Post) Validate() error {
	var fields []FieldError
	if strings.TrimSpace(p.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Message: "Title is required"})
	} else if len([]rune(p.Title)) > maxTitleLen {
		fields = append(fields, FieldError{Field: "title", Message: "Title cannot exceed 150 characters"})
	}
	if len([]rune(p.Subtitle)) > maxSubtitleLen {
		fields = append(fields, FieldError{Field: "subtitle", Message: "Subtitle cannot exceed 200 characters"})
	}
	if p.Content == "" {
		fields = append(fields, FieldError{Field: "content", Message: "Content is required"})
	}
	if p.AuthorID == "" {
		fields = append(fields, FieldError{Field: "author", Message: "Author is required"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
