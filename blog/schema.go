package blog

import (
	"encoding/json"
	"time"
)

// SchemaInput carries the fields rendered into the JSON-LD block.
type SchemaInput struct {
	Title       string
	Description string
	Author      string
	PublishedAt time.Time
	ImageURL    string
	SiteURL     string
	Slug        string
	FAQ         []FAQItem
}

// FAQItem is one question/answer pair for the optional FAQPage block.
type FAQItem struct {
	Question string
	Answer   string
}

// SchemaMarkup renders the structured-data script block prepended to every
// article body: an Article schema, plus a FAQPage schema when FAQ items are
// supplied.
func SchemaMarkup(in SchemaInput) string {
	article := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Article",
		"headline":    in.Title,
		"description": in.Description,
		"author": map[string]any{
			"@type": "Person",
			"name":  in.Author,
			"url":   in.SiteURL + "/about",
		},
		"datePublished": in.PublishedAt.Format(time.RFC3339),
		"dateModified":  in.PublishedAt.Format(time.RFC3339),
		"image":         in.ImageURL,
		"publisher": map[string]any{
			"@type": "Organization",
			"name":  "ReplyDaddy",
			"logo": map[string]any{
				"@type": "ImageObject",
				"url":   in.SiteURL + "/logo.png",
			},
		},
		"mainEntityOfPage": map[string]any{
			"@type": "WebPage",
			"@id":   in.SiteURL + "/blog/" + in.Slug,
		},
	}

	out := scriptTag(article)
	if len(in.FAQ) > 0 {
		entities := make([]map[string]any, len(in.FAQ))
		for i, item := range in.FAQ {
			entities[i] = map[string]any{
				"@type": "Question",
				"name":  item.Question,
				"acceptedAnswer": map[string]any{
					"@type": "Answer",
					"text":  item.Answer,
				},
			}
		}
		faq := map[string]any{
			"@context":   "https://schema.org",
			"@type":      "FAQPage",
			"mainEntity": entities,
		}
		out += "\n" + scriptTag(faq)
	}
	return out
}

func scriptTag(schema map[string]any) string {
	data, err := json.Marshal(schema)
	if err != nil {
		return ""
	}
	return `<script type="application/ld+json">` + string(data) + `</script>`
}
