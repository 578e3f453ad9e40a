package supabase

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seobot/blog"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, "service-key", "blog-images", srv.Client(), false, quietLogger())
	require.NoError(t, err)
	return c, srv
}

func TestNewValidation(t *testing.T) {
	_, err := New("", "key", "", nil, false, nil)
	assert.Error(t, err)
	_, err = New("https://x.supabase.co", "", "", nil, false, nil)
	assert.Error(t, err)
}

func TestExistsBySlug(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[{"id": 7}]`))
	})

	exists, err := c.ExistsBySlug(context.Background(), "five-tips")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "/rest/v1/blog_posts", gotPath)
	assert.Contains(t, gotQuery, "slug=eq.five-tips")
	assert.Contains(t, gotQuery, "limit=1")
	assert.Equal(t, "Bearer service-key", gotAuth)
}

func TestExistsBySlugEmptyResult(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	exists, err := c.ExistsBySlug(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExistsBySlugServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "permission denied", http.StatusForbidden)
	})
	_, err := c.ExistsBySlug(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestPublishedSummaries(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "status=eq.published")
		w.Write([]byte(`[
			{"title":"Old Post","slug":"old-post","category":"SEO","excerpt":"e1"},
			{"title":"Newer Post","slug":"newer-post","category":"","excerpt":""}
		]`))
	})

	summaries, err := c.PublishedSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, blog.Summary{Title: "Old Post", Slug: "old-post", Category: "SEO", Excerpt: "e1"}, summaries[0])
	assert.Equal(t, "newer-post", summaries[1].Slug)
}

func insertRecord() blog.Record {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	return blog.Record{
		Slug: "five-tips", Title: "Five Tips", Content: "<p>x</p>",
		Status: "published", ReadTime: 1,
		PublishedAt: now, UpdatedAt: now, CreatedAt: now,
	}
}

func TestInsert(t *testing.T) {
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id": 1}]`))
	})

	require.NoError(t, c.Insert(context.Background(), insertRecord()))
	assert.Equal(t, "five-tips", gotBody["slug"])
	assert.Equal(t, "published", gotBody["status"])
}

func TestInsertConflictMapsToAlreadyExists(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code":"23505","message":"duplicate key value"}`))
	})
	err := c.Insert(context.Background(), insertRecord())
	require.Error(t, err)
	assert.ErrorIs(t, err, blog.ErrAlreadyExists)
}

func TestInsertUniqueViolationCodeWithoutConflictStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"23505"}`))
	})
	err := c.Insert(context.Background(), insertRecord())
	assert.ErrorIs(t, err, blog.ErrAlreadyExists)
}

func TestInsertEmptyRepresentation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[]`))
	})
	err := c.Insert(context.Background(), insertRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert returned no data")
}

func TestUpload(t *testing.T) {
	var gotPath, gotContentType string
	var gotData []byte
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotData, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"Key":"blog-images/header.jpg"}`))
	})

	url, err := c.Upload(context.Background(), "blog-images/header.jpg", []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/storage/v1/object/blog-images/blog-images/header.jpg", gotPath)
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, []byte("jpeg-bytes"), gotData)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/blog-images/blog-images/header.jpg", url)
}

func TestUploadWithoutBucket(t *testing.T) {
	c, err := New("https://x.supabase.co", "key", "", nil, false, quietLogger())
	require.NoError(t, err)
	_, err = c.Upload(context.Background(), "a.jpg", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket configuration missing")
}

func TestUploadFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
	})
	_, err := c.Upload(context.Background(), "a.jpg", []byte("x"), "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "413")
}
