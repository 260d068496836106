package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDerivesSlug(t *testing.T) {
	p := &Post{Title: "Hello, World! 2025", Content: "<p>hi</p>", AuthorID: "u1"}
	p.Normalize(time.Now())
	assert.Equal(t, "hello-world-2025", p.Slug)
}

func TestNormalizeKeepsExplicitSlug(t *testing.T) {
	p := &Post{Title: "Hello, World! 2025", Slug: "Custom-Slug", Content: "x", AuthorID: "u1"}
	p.Normalize(time.Now())
	assert.Equal(t, "custom-slug", p.Slug)
}

func TestPublishedAtSetOnce(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &Post{Title: "t", Content: "c", AuthorID: "u1", Published: true}
	p.Normalize(now)
	require.NotNil(t, p.PublishedAt)
	assert.Equal(t, now, *p.PublishedAt)

	// Draft and republish cycles never move the first-published stamp.
	p.Published = false
	p.Normalize(now.Add(time.Hour))
	p.Published = true
	p.Normalize(now.Add(2 * time.Hour))
	assert.Equal(t, now, *p.PublishedAt)
}

func TestNormalizeSeriesSlug(t *testing.T) {
	p := &Post{Title: "t", Content: "c", AuthorID: "u1", Series: &Series{Name: "Go Deep Dives"}}
	p.Normalize(time.Now())
	assert.Equal(t, "go-deep-dives", p.Series.Slug)
}

func TestNormalizeDefaults(t *testing.T) {
	p := &Post{Title: "t", Content: "c", AuthorID: "u1", Tags: []string{" Tech ", "GoLang"}}
	p.Normalize(time.Now())
	assert.Equal(t, "General", p.Category)
	assert.Equal(t, FormatHTML, p.ContentFormat)
	assert.Equal(t, DefaultCoverURL, p.CoverImage.URL)
	assert.Equal(t, DefaultCoverAlt, p.CoverImage.Alt)
	assert.Equal(t, []string{"tech", "golang"}, p.Tags)
}

func TestValidateReportsFieldErrors(t *testing.T) {
	p := &Post{}
	err := p.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	fields := make(map[string]bool)
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["content"])
	assert.True(t, fields["author"])
}

func TestValidateTitleLength(t *testing.T) {
	long := make([]rune, 151)
	for i := range long {
		long[i] = 'a'
	}
	p := &Post{Title: string(long), Content: "c", AuthorID: "u1"}
	err := p.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Fields[0].Field)
}

func TestCoverImageLegacyString(t *testing.T) {
	var c CoverImage
	require.NoError(t, json.Unmarshal([]byte(`"https://img.example/x.png"`), &c))
	assert.Equal(t, "https://img.example/x.png", c.URL)

	require.NoError(t, json.Unmarshal([]byte(`{"url":"u","alt":"a","credit":"c"}`), &c))
	assert.Equal(t, CoverImage{URL: "u", Alt: "a", Credit: "c"}, c)
}

func TestPostJSONVirtuals(t *testing.T) {
	p := Post{Title: "t", Content: "<p>one two three</p>", Slug: "t"}
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, float64(1), out["readingTime"])
	assert.Equal(t, "one two three", out["snippet"])
}

func TestSnippetPrefersMetaDescription(t *testing.T) {
	p := Post{Content: "<p>body text</p>", SEO: SEO{MetaDescription: "meta"}}
	assert.Equal(t, "meta", p.Snippet())
}
