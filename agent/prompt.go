package agent

import (
	"fmt"
	"strings"

	"seobot/blog"
)

// Existing posts shown to the model, newest first; more is noise.
const maxExistingShown = 20

// BuildSystemPrompt returns the behavioral directive for the run. The
// wording differs slightly depending on whether the operator pinned a topic.
func BuildSystemPrompt(topic string) string {
	var sb strings.Builder
	sb.WriteString("You are an expert SEO content strategist and blog writer for ReplyDaddy.com.\n")
	sb.WriteString("You have access to tools for web search, image generation, blog creation, and database insertion.\n")
	sb.WriteString("Your goal is to create high-quality, SEO-optimized blog content with custom AI-generated images.\n\n")
	sb.WriteString("You should:\n")
	sb.WriteString("1. First analyze the brand context and existing blogs\n")
	if topic != "" {
		sb.WriteString("2. Focus on the specific topic provided by the user\n")
	} else {
		sb.WriteString("2. Think of a unique, valuable blog topic that hasn't been covered\n")
	}
	sb.WriteString("3. Use web_search to gather current data and insights - SAVE ALL SOURCE URLS\n")
	sb.WriteString("4. Generate a custom blog header image:\n")
	sb.WriteString("   - Use image_generator with a DESCRIPTIVE NARRATIVE prompt (not keywords!)\n")
	sb.WriteString("   - Then use image_uploader with the returned local_path to upload it and get the public URL\n")
	sb.WriteString("5. Create comprehensive blog content using the blog_creator tool with:\n")
	sb.WriteString("   - The uploaded image URL as featured_image\n")
	sb.WriteString("   - Main article body with inline citations [1], [2] for all facts and statistics\n")
	sb.WriteString("   - FAQ section: <h2>Frequently Asked Questions</h2> with 5+ Q&As in HTML format\n")
	sb.WriteString("   - References section: <h2>References</h2> with a numbered list of all sources\n")
	sb.WriteString("6. IMPORTANT: After blog_creator returns success, you MUST use the blog_inserter tool with the returned file_path to insert the blog into the database\n\n")
	sb.WriteString("Be creative with categories - choose what fits best for the content you're creating.\n")
	sb.WriteString("The task is ONLY complete after successfully inserting the blog into the database.")
	return sb.String()
}

// BuildMission renders the first user turn: brand context, the advisory list
// of existing posts, and the staged instructions for the run.
func BuildMission(brandContext string, existing []blog.Summary, topic string) string {
	var sb strings.Builder
	sb.WriteString("You are an SEO expert. Here's your task:\n\n")
	sb.WriteString("BRAND CONTEXT:\n")
	sb.WriteString(strings.TrimSpace(brandContext))
	sb.WriteString("\n\n")

	sb.WriteString("EXISTING BLOGS (avoid duplicating these):\n")
	if len(existing) == 0 {
		sb.WriteString("(none yet)\n")
	}
	for i, post := range existing {
		if i >= maxExistingShown {
			break
		}
		category := post.Category
		if category == "" {
			category = "N/A"
		}
		fmt.Fprintf(&sb, "- %s (Category: %s)\n", post.Title, category)
	}
	sb.WriteString("\nYOUR MISSION:\n")
	sb.WriteString("1. Analyze the brand and existing content\n")
	if topic != "" {
		fmt.Fprintf(&sb, "2. Create a comprehensive blog about: %q\n", topic)
		fmt.Fprintf(&sb, "3. Use the web_search tool to research current trends, statistics, and insights specifically related to %q\n", topic)
	} else {
		sb.WriteString("2. Think of a NEW, unique blog idea that would be valuable for our audience\n")
		sb.WriteString("3. Use the web_search tool to research current trends, statistics, and insights\n")
	}
	sb.WriteString("4. Generate a custom header image for your blog:\n")
	sb.WriteString("   - Use image_generator with a SCENE DESCRIPTION (not keywords!): subject, setting, lighting, mood, composition\n")
	sb.WriteString("   - Then use image_uploader with the local_path to get the public URL\n")
	sb.WriteString("5. Create a comprehensive 2000-3000 word blog using the blog_creator tool with:\n")
	sb.WriteString("   - SEO-optimized title and meta tags\n")
	sb.WriteString("   - Proper HTML formatting (<h2>, <h3>, <p>, <ul>, <li>, <strong>, <em>) - NO Markdown\n")
	sb.WriteString("   - A category you choose based on the content, and relevant tags\n")
	sb.WriteString("   - The uploaded image URL as the featured_image\n")
	sb.WriteString("   - An <h2>Frequently Asked Questions</h2> section with at least 5 Q&As\n")
	sb.WriteString("   - Inline citations [1], [2] for all statistics and claims\n")
	sb.WriteString("   - All source URLs listed in an <h2>References</h2> section\n")
	sb.WriteString("6. IMPORTANT: After creating the blog with blog_creator, you MUST use blog_inserter with the returned file_path to add it to our database\n\n")
	sb.WriteString("Be creative and provide genuine value to readers!")
	return sb.String()
}
