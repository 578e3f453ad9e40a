package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"time"

	"seobot/imaging"
)

// Header images are normalized to full-HD 16:9 before upload.
const (
	headerWidth  = 1920
	headerHeight = 1080
)

// ImageGenerator produces raw image bytes from a natural-language prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// ObjectStore uploads a blob and returns its public URL.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
}

type imageGeneratorParams struct {
	Prompt string `json:"prompt"`
}

type imageUploaderParams struct {
	LocalPath string `json:"local_path"`
	FileName  string `json:"file_name"`
}

// ImageGeneratorTool wraps the image-generation collaborator: it enhances
// the prompt, saves the result locally, and normalizes it for use as a blog
// header.
func ImageGeneratorTool(gen ImageGenerator, imagesDir string, logger *log.Logger) Tool {
	return Tool{
		Name:        "image_generator",
		Description: "Generate a blog header image using the Imagen AI model",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompt": map[string]any{
					"type": "string",
					"description": "Describe the image in natural language, as a complete scene: " +
						"subject, setting, composition, lighting, mood and artistic style. " +
						"Write sentences, not keyword lists, and do not ask for text to appear in the image.",
				},
			},
			"required": []string{"prompt"},
		},
		Run: func(ctx context.Context, input json.RawMessage) Result {
			var p imageGeneratorParams
			if err := decodeParams(input, &p); err != nil {
				return Errorf("Invalid parameters for tool image_generator: %v", err)
			}
			if p.Prompt == "" {
				return Errorf("Invalid parameters for tool image_generator: prompt is required")
			}
			if gen == nil {
				return Errorf("GEMINI_API_KEY not configured")
			}

			raw, err := gen.Generate(ctx, enhancePrompt(p.Prompt))
			if err != nil {
				return Errorf("Failed to generate image: %v", err)
			}

			if err := os.MkdirAll(imagesDir, 0o755); err != nil {
				return Errorf("Failed to save image: %v", err)
			}
			localPath := filepath.Join(imagesDir,
				fmt.Sprintf("blog_header_%s.jpg", time.Now().Format("20060102_150405")))
			if err := os.WriteFile(localPath, raw, 0o644); err != nil {
				return Errorf("Failed to save image: %v", err)
			}
			logger.Printf("[tools] image saved to %s", localPath)

			message := "Image generated successfully"
			dimensions := "16:9"
			if optimized := imaging.NormalizeFile(localPath, headerWidth, headerHeight); optimized != localPath {
				os.Remove(localPath)
				localPath = optimized
				dimensions = fmt.Sprintf("%dx%d", headerWidth, headerHeight)
				message = "Image generated and optimized for blog header"
			}

			return Result{
				Status:     StatusSuccess,
				Message:    message,
				LocalPath:  localPath,
				MimeType:   "image/jpeg",
				Dimensions: dimensions,
				Model:      "Imagen 4.0 Ultra",
			}
		},
	}
}

// ImageUploaderTool uploads a local image to the public bucket and reports
// its URL.
func ImageUploaderTool(store ObjectStore, logger *log.Logger) Tool {
	return Tool{
		Name:        "image_uploader",
		Description: "Upload a local image to the storage bucket and get its public URL",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"local_path": map[string]any{
					"type":        "string",
					"description": "Local path to the image file to upload",
				},
				"file_name": map[string]any{
					"type":        "string",
					"description": "Optional custom filename for the uploaded image",
				},
			},
			"required": []string{"local_path"},
		},
		Run: func(ctx context.Context, input json.RawMessage) Result {
			var p imageUploaderParams
			if err := decodeParams(input, &p); err != nil {
				return Errorf("Invalid parameters for tool image_uploader: %v", err)
			}
			if p.LocalPath == "" {
				return Errorf("Invalid parameters for tool image_uploader: local_path is required")
			}

			data, err := os.ReadFile(p.LocalPath)
			if err != nil {
				return Errorf("Failed to upload image: %v", err)
			}
			ext := filepath.Ext(p.LocalPath)
			name := p.FileName
			if name == "" {
				name = fmt.Sprintf("blog_header_%s%s", time.Now().Format("20060102_150405"), ext)
			}
			contentType := mime.TypeByExtension(ext)
			if contentType == "" {
				contentType = "image/png"
			}

			objectPath := "blog-images/" + name
			publicURL, err := store.Upload(ctx, objectPath, data, contentType)
			if err != nil {
				return Errorf("Failed to upload image: %v", err)
			}
			logger.Printf("[tools] uploaded %s -> %s", p.LocalPath, publicURL)

			return Result{
				Status:    StatusSuccess,
				Message:   "Image uploaded successfully",
				PublicURL: publicURL,
				FilePath:  objectPath,
			}
		},
	}
}

// enhancePrompt frames the model's scene description as a blog header
// request, mirroring the presentation constraints the pipeline needs.
func enhancePrompt(prompt string) string {
	return "Professional blog header image: " + prompt + "\n\n" +
		"Photorealistic capture with cinematic composition. Wide-angle perspective suitable " +
		"for web banner. Modern corporate aesthetic with vibrant yet professional color " +
		"palette. Soft, even lighting with clear focal point. Clean minimalist design with " +
		"subtle depth. High resolution detail optimized for digital displays."
}
