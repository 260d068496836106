// Package blobstore stores decoded image bytes in durable object storage and
// hands back a publicly resolvable URL.
package blobstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ErrNotDataURI is returned by ParseDataURI for anything that is not an
// inline-encoded image payload.
var ErrNotDataURI = errors.New("blobstore: not an image data URI")

var reDataURI = regexp.MustCompile(`^data:image/(\w+);base64,(.+)$`)

// ObjectStore is the durable storage boundary. Implementations return the
// public URL of the stored object.
type ObjectStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
}

// IsDataURI reports whether s carries an inline-encoded image rather than a
// URL.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image")
}

// ParseDataURI splits a data:image/<ext>;base64,<payload> string into its
// decoded bytes and content type.
func ParseDataURI(s string) (data []byte, contentType, ext string, err error) {
	m := reDataURI.FindStringSubmatch(s)
	if m == nil {
		return nil, "", "", ErrNotDataURI
	}
	data, err = base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, "", "", fmt.Errorf("decode base64 image: %w", err)
	}
	return data, "image/" + m[1], m[1], nil
}

// ObjectKey builds the storage key for an uploaded image.
func ObjectKey(ext string, now time.Time) string {
	return fmt.Sprintf("blog-images/%d.%s", now.UnixMilli(), ext)
}

// Memory is an in-process ObjectStore for tests and local development.
type Memory struct {
	mu      sync.Mutex
	seq     int
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	url := fmt.Sprintf("mem://blog-images/%d", m.seq)
	m.objects[url] = append([]byte(nil), data...)
	return url, nil
}

// Object returns a stored object by URL.
func (m *Memory) Object(url string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[url]
	return data, ok
}
