package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"seobot/blog"
)

// PublishToolName identifies the tool whose success completes a pipeline
// run.
const PublishToolName = "blog_inserter"

type blogCreatorParams struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	MetaTitle       string   `json:"meta_title"`
	MetaDescription string   `json:"meta_description"`
	Content         string   `json:"content"`
	Excerpt         string   `json:"excerpt"`
	FeaturedImage   string   `json:"featured_image"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	Author          string   `json:"author"`
}

type blogInserterParams struct {
	CSVFilePath string `json:"csv_file_path"`
}

// BlogCreatorTool builds the publish-ready record and writes it to the
// staging store.
func BlogCreatorTool(builder blog.Builder, staging *blog.Store, logger *log.Logger) Tool {
	return Tool{
		Name:        "blog_creator",
		Description: "Create a blog post and save it to a staged CSV file",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "Blog title (max 255 chars)",
				},
				"slug": map[string]any{
					"type":        "string",
					"description": "URL-friendly slug",
				},
				"meta_title": map[string]any{
					"type":        "string",
					"description": "SEO meta title (max 100 chars)",
				},
				"meta_description": map[string]any{
					"type":        "string",
					"description": "SEO meta description (max 255 chars)",
				},
				"content": map[string]any{
					"type": "string",
					"description": "Full blog content in HTML format including: main content with inline " +
						"citations [1], [2], an <h2>Frequently Asked Questions</h2> section with at least " +
						"5 Q&As, and an <h2>References</h2> section with a numbered source list.",
				},
				"excerpt": map[string]any{
					"type":        "string",
					"description": "Brief summary or excerpt of the blog",
				},
				"featured_image": map[string]any{
					"type": "string",
					"description": "Public URL of the header image: first create it with image_generator, " +
						"then upload it with image_uploader (max 500 chars)",
				},
				"category": map[string]any{
					"type":        "string",
					"description": "Blog category (you decide based on content)",
				},
				"tags": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Array of relevant tags",
				},
				"author": map[string]any{
					"type":        "string",
					"description": "Author name",
				},
			},
			"required": []string{"title", "slug", "content", "excerpt", "category", "tags"},
		},
		Run: func(ctx context.Context, input json.RawMessage) Result {
			var p blogCreatorParams
			if err := decodeParams(input, &p); err != nil {
				return Errorf("Invalid parameters for tool blog_creator: %v", err)
			}

			rec, err := builder.Build(blog.Fields{
				Title:           p.Title,
				Slug:            p.Slug,
				MetaTitle:       p.MetaTitle,
				MetaDescription: p.MetaDescription,
				Content:         p.Content,
				Excerpt:         p.Excerpt,
				FeaturedImage:   p.FeaturedImage,
				Category:        p.Category,
				Tags:            p.Tags,
				Author:          p.Author,
			})
			if err != nil {
				return Errorf("Invalid parameters for tool blog_creator: %v", err)
			}

			location, err := staging.Put(ctx, rec)
			if err != nil {
				return Errorf("Failed to create blog: %v", err)
			}
			logger.Printf("[tools] staged post slug=%s at %s", rec.Slug, location)

			return Result{
				Status:   StatusSuccess,
				Message:  "Blog created successfully: " + rec.Title,
				FilePath: location,
				Slug:     rec.Slug,
			}
		},
	}
}

// BlogInserterTool commits a staged artifact into the canonical store. Its
// success is the pipeline's completion condition.
func BlogInserterTool(committer *blog.Committer, logger *log.Logger) Tool {
	return Tool{
		Name:        PublishToolName,
		Description: "Insert a staged blog CSV file into the database",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"csv_file_path": map[string]any{
					"type":        "string",
					"description": "Path of the staged CSV file returned by blog_creator",
				},
			},
			"required": []string{"csv_file_path"},
		},
		Run: func(ctx context.Context, input json.RawMessage) Result {
			var p blogInserterParams
			if err := decodeParams(input, &p); err != nil {
				return Errorf("Invalid parameters for tool blog_inserter: %v", err)
			}
			if p.CSVFilePath == "" {
				return Errorf("Invalid parameters for tool blog_inserter: csv_file_path is required")
			}

			url, err := committer.Commit(ctx, p.CSVFilePath)
			switch {
			case errors.Is(err, blog.ErrStagedNotFound):
				return Errorf("Staged artifact not found: %s", p.CSVFilePath)
			case errors.Is(err, blog.ErrAlreadyExists):
				return Errorf("%v", err)
			case err != nil:
				return Errorf("Error inserting blog: %v", err)
			}
			logger.Printf("[tools] published %s", url)

			return Result{
				Status:  StatusSuccess,
				Message: "Blog inserted successfully",
				URL:     url,
			}
		},
	}
}
