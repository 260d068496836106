package blobstore

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
	data, contentType, ext, err := ParseDataURI("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-png-bytes"), data)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, "png", ext)
}

func TestParseDataURIRejectsURLs(t *testing.T) {
	_, _, _, err := ParseDataURI("https://example.com/x.png")
	assert.ErrorIs(t, err, ErrNotDataURI)

	_, _, _, err = ParseDataURI("data:image/png;base64,!!!not-base64!!!")
	assert.Error(t, err)
}

func TestIsDataURI(t *testing.T) {
	assert.True(t, IsDataURI("data:image/jpeg;base64,xyz"))
	assert.False(t, IsDataURI("https://cdn.example/img.jpg"))
	assert.False(t, IsDataURI(""))
}

func TestMemoryPut(t *testing.T) {
	m := NewMemory()
	url, err := m.Put(context.Background(), []byte("abc"), "image/png")
	require.NoError(t, err)

	data, ok := m.Object(url)
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), data)
}
