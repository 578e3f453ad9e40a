package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyExists reports a slug that is already present in the canonical
// store. Re-committing an artifact whose prior commit succeeded trips this
// guard, which is what makes commit idempotent.
var ErrAlreadyExists = errors.New("already exists")

// CanonicalStore is the durable backend of record for published content.
type CanonicalStore interface {
	// ExistsBySlug reports whether a post with the slug is already stored.
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	// Insert stores one record. Implementations return ErrAlreadyExists
	// (possibly wrapped) on a uniqueness violation.
	Insert(ctx context.Context, rec Record) error
}

// Committer performs the second phase of publication: read the staged
// artifact, guard against duplicate slugs, and insert into the canonical
// store.
type Committer struct {
	staging *Store
	store   CanonicalStore
	siteURL string
}

// NewCommitter wires a committer to its staging store and canonical store.
func NewCommitter(staging *Store, store CanonicalStore, siteURL string) *Committer {
	return &Committer{staging: staging, store: store, siteURL: strings.TrimRight(siteURL, "/")}
}

// Commit publishes the staged artifact at location and returns the public
// URL. The slug check plus insert is check-then-insert, not atomic; a
// store-level uniqueness constraint remains the real enforcement point under
// concurrent publishers, and a conflicting insert surfaces as
// ErrAlreadyExists either way.
func (c *Committer) Commit(ctx context.Context, location string) (string, error) {
	rec, err := c.staging.Get(ctx, location)
	if err != nil {
		return "", err
	}

	exists, err := c.store.ExistsBySlug(ctx, rec.Slug)
	if err != nil {
		return "", fmt.Errorf("duplicate check for %q: %w", rec.Slug, err)
	}
	if exists {
		return "", fmt.Errorf("blog with slug %q %w", rec.Slug, ErrAlreadyExists)
	}

	if err := c.store.Insert(ctx, rec); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return "", fmt.Errorf("blog with slug %q %w", rec.Slug, ErrAlreadyExists)
		}
		return "", fmt.Errorf("insert %q: %w", rec.Slug, err)
	}
	return c.siteURL + "/blog/" + rec.Slug, nil
}
