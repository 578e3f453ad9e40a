package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seobot/blog"
)

type fakeCanonical struct {
	records []blog.Record
}

func (f *fakeCanonical) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	for _, r := range f.records {
		if r.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCanonical) Insert(ctx context.Context, rec blog.Record) error {
	f.records = append(f.records, rec)
	return nil
}

func creatorInput() json.RawMessage {
	return json.RawMessage(`{
		"title": "Five Tips",
		"slug": "five-tips",
		"content": "<p>body</p>",
		"excerpt": "short",
		"category": "Marketing",
		"tags": ["a", "b"]
	}`)
}

func TestBlogCreatorStagesRecord(t *testing.T) {
	staging := blog.NewStore("mem://localhost/tools-create")
	builder := blog.Builder{SiteURL: "https://example.com", DefaultAuthor: "Team"}
	tool := BlogCreatorTool(builder, staging, quietLogger())

	res := tool.Run(context.Background(), creatorInput())
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, "Blog created successfully: Five Tips", res.Message)
	assert.Equal(t, "five-tips", res.Slug)
	require.NotEmpty(t, res.FilePath)

	rec, err := staging.Get(context.Background(), res.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "five-tips", rec.Slug)
	assert.Equal(t, []string{"a", "b"}, rec.Tags)
}

func TestBlogCreatorRejectsMissingTitle(t *testing.T) {
	staging := blog.NewStore("mem://localhost/tools-create-bad")
	tool := BlogCreatorTool(blog.Builder{}, staging, quietLogger())

	res := tool.Run(context.Background(), json.RawMessage(`{"content":"<p>x</p>"}`))
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "Invalid parameters for tool blog_creator")
}

func TestBlogInserterPublishesOnce(t *testing.T) {
	ctx := context.Background()
	staging := blog.NewStore("mem://localhost/tools-insert")
	builder := blog.Builder{SiteURL: "https://example.com"}
	store := &fakeCanonical{}
	committer := blog.NewCommitter(staging, store, "https://example.com")

	creator := BlogCreatorTool(builder, staging, quietLogger())
	inserter := BlogInserterTool(committer, quietLogger())

	created := creator.Run(ctx, creatorInput())
	require.True(t, created.OK())

	input, _ := json.Marshal(map[string]string{"csv_file_path": created.FilePath})
	res := inserter.Run(ctx, input)
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, "Blog inserted successfully", res.Message)
	assert.Equal(t, "https://example.com/blog/five-tips", res.URL)
	assert.Len(t, store.records, 1)

	// the same staged slug cannot be published twice
	again := creator.Run(ctx, creatorInput())
	require.True(t, again.OK())
	input, _ = json.Marshal(map[string]string{"csv_file_path": again.FilePath})
	dup := inserter.Run(ctx, input)
	assert.Equal(t, StatusError, dup.Status)
	assert.Len(t, store.records, 1)
}

func TestBlogInserterMissingArtifact(t *testing.T) {
	staging := blog.NewStore("mem://localhost/tools-insert-missing")
	committer := blog.NewCommitter(staging, &fakeCanonical{}, "https://example.com")
	tool := BlogInserterTool(committer, quietLogger())

	res := tool.Run(context.Background(), json.RawMessage(`{"csv_file_path":"mem://localhost/tools-insert-missing/blog_x_1.csv"}`))
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "Staged artifact not found: mem://localhost/tools-insert-missing/blog_x_1.csv", res.Message)
}

func TestBlogInserterRequiresPath(t *testing.T) {
	committer := blog.NewCommitter(blog.NewStore("mem://localhost/x"), &fakeCanonical{}, "")
	tool := BlogInserterTool(committer, quietLogger())

	res := tool.Run(context.Background(), json.RawMessage(`{}`))
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "csv_file_path is required")
}
