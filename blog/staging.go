package blog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// ErrStagedNotFound reports a staging location that was never produced or was
// already consumed. Callers treat it as a resumability bug, distinct from a
// generic read failure.
var ErrStagedNotFound = errors.New("staged artifact not found")

// Staging column order, matching the insert payload field set.
var stagingColumns = []string{
	"slug", "title", "meta_title", "meta_description", "content", "excerpt",
	"featured_image", "category", "tags", "author", "status", "featured",
	"read_time", "view_count", "published_at", "updated_at", "created_at",
}

// Store writes publish-ready records to durable staging locations before any
// canonical commit is attempted. Locations are afs URLs, so the store works
// over file:// in production and mem:// in tests.
type Store struct {
	fs      afs.Service
	baseURL string
}

// NewStore creates a staging store rooted at the given afs base URL.
func NewStore(baseURL string) *Store {
	return &Store{fs: afs.New(), baseURL: baseURL}
}

// Put writes one record as a single-row CSV artifact and returns its
// location. The timestamp suffix keeps a re-staged slug from overwriting a
// prior artifact; on a same-second collision a random suffix is added.
func (s *Store) Put(ctx context.Context, rec Record) (string, error) {
	name := fmt.Sprintf("blog_%s_%s.csv", rec.Slug, time.Now().UTC().Format("20060102_150405"))
	location := url.Join(s.baseURL, name)
	if ok, _ := s.fs.Exists(ctx, location); ok {
		name = fmt.Sprintf("blog_%s_%s_%s.csv", rec.Slug, time.Now().UTC().Format("20060102_150405"), uuid.NewString()[:8])
		location = url.Join(s.baseURL, name)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(stagingColumns); err != nil {
		return "", err
	}
	if err := w.Write(stagingRow(rec)); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	if err := s.fs.Upload(ctx, location, 0o644, bytes.NewReader(buf.Bytes())); err != nil {
		return "", fmt.Errorf("stage %s: %w", location, err)
	}
	return location, nil
}

// Get reads a staged record back. A missing artifact yields
// ErrStagedNotFound.
func (s *Store) Get(ctx context.Context, location string) (Record, error) {
	if ok, _ := s.fs.Exists(ctx, location); !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrStagedNotFound, location)
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return Record{}, fmt.Errorf("read staged artifact %s: %w", location, err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return Record{}, fmt.Errorf("parse staged artifact %s: %w", location, err)
	}
	if len(rows) < 2 {
		return Record{}, fmt.Errorf("staged artifact %s has no data row", location)
	}
	fields := make(map[string]string, len(rows[0]))
	for i, col := range rows[0] {
		if i < len(rows[1]) {
			fields[col] = rows[1][i]
		}
	}
	return recordFromStaging(fields)
}

func stagingRow(rec Record) []string {
	return []string{
		rec.Slug,
		rec.Title,
		rec.MetaTitle,
		rec.MetaDescription,
		rec.Content,
		rec.Excerpt,
		rec.FeaturedImage,
		rec.Category,
		TagsLiteral(rec.Tags),
		rec.Author,
		rec.Status,
		strconv.FormatBool(rec.Featured),
		strconv.Itoa(rec.ReadTime),
		strconv.Itoa(rec.ViewCount),
		rec.PublishedAt.Format(time.RFC3339Nano),
		rec.UpdatedAt.Format(time.RFC3339Nano),
		rec.CreatedAt.Format(time.RFC3339Nano),
	}
}

// recordFromStaging coerces the all-string staged form back into a typed
// record, validating the fields the canonical store is strict about.
func recordFromStaging(fields map[string]string) (Record, error) {
	featured, err := strconv.ParseBool(valueOr(fields, "featured", "false"))
	if err != nil {
		return Record{}, fmt.Errorf("malformed featured flag: %w", err)
	}
	readTime, err := strconv.Atoi(valueOr(fields, "read_time", "1"))
	if err != nil {
		return Record{}, fmt.Errorf("malformed read_time: %w", err)
	}
	viewCount, err := strconv.Atoi(valueOr(fields, "view_count", "0"))
	if err != nil {
		return Record{}, fmt.Errorf("malformed view_count: %w", err)
	}
	publishedAt, err := parseStagedTime(fields["published_at"])
	if err != nil {
		return Record{}, err
	}
	updatedAt, err := parseStagedTime(fields["updated_at"])
	if err != nil {
		return Record{}, err
	}
	createdAt, err := parseStagedTime(fields["created_at"])
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		Slug:            fields["slug"],
		Title:           fields["title"],
		MetaTitle:       fields["meta_title"],
		MetaDescription: fields["meta_description"],
		Content:         fields["content"],
		Excerpt:         fields["excerpt"],
		FeaturedImage:   fields["featured_image"],
		Category:        fields["category"],
		Tags:            ParseTagsLiteral(fields["tags"]),
		Author:          fields["author"],
		Status:          valueOr(fields, "status", "published"),
		Featured:        featured,
		ReadTime:        readTime,
		ViewCount:       viewCount,
		PublishedAt:     publishedAt,
		UpdatedAt:       updatedAt,
		CreatedAt:       createdAt,
	}
	if rec.Slug == "" {
		return Record{}, errors.New("staged artifact is missing slug")
	}
	return rec, nil
}

func parseStagedTime(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", value, err)
	}
	return ts, nil
}

func valueOr(fields map[string]string, key, fallback string) string {
	if v, ok := fields[key]; ok && v != "" {
		return v
	}
	return fallback
}
