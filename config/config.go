package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Config holds credentials and directories for the whole pipeline.
// Values from the JSON file take precedence; empty fields fall back to
// environment variables so secrets can stay out of the file.
type Config struct {
	Anthropic *ModelConfig `json:"anthropic,omitempty"`
	OpenAI    *ModelConfig `json:"openai,omitempty"`
	Provider  string       `json:"provider,omitempty"` // "anthropic" (default) or "openai"

	GeminiAPIKey string `json:"gemini_api_key,omitempty"`

	Supabase SupabaseConfig `json:"supabase"`

	SiteURL    string `json:"site_url,omitempty"`
	Author     string `json:"author,omitempty"`
	ServerAddr string `json:"server_addr,omitempty"`

	DataDir          string `json:"data_dir,omitempty"`
	BrandContextPath string `json:"brand_context,omitempty"`
}

// ModelConfig configures one reasoning-model provider.
type ModelConfig struct {
	Model   string `json:"model,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
}

// SupabaseConfig covers both the PostgREST table and the storage bucket.
type SupabaseConfig struct {
	URL        string `json:"url,omitempty"`
	ServiceKey string `json:"service_key,omitempty"`
	Bucket     string `json:"bucket,omitempty"`
}

const defaultBrandContext = "ReplyDaddy is an AI-powered Reddit marketing platform."

// Load reads JSON config from disk and applies environment fallbacks.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.Anthropic == nil {
		c.Anthropic = &ModelConfig{}
	}
	if c.Anthropic.APIKey == "" {
		c.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if c.OpenAI != nil && c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Supabase.URL == "" {
		c.Supabase.URL = os.Getenv("SUPABASE_URL")
	}
	if c.Supabase.ServiceKey == "" {
		c.Supabase.ServiceKey = os.Getenv("SUPABASE_SERVICE_KEY")
	}
	if c.Supabase.Bucket == "" {
		c.Supabase.Bucket = os.Getenv("BUCKET_NAME")
	}
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = "anthropic"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-5-20250929"
	}
	if c.SiteURL == "" {
		c.SiteURL = "https://replydaddy.com"
	}
	if c.Author == "" {
		c.Author = "ReplyDaddy Team"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.BrandContextPath == "" {
		c.BrandContextPath = "brand_context.txt"
	}
}

// Validate fails fast on anything the pipeline cannot run without.
func (c Config) Validate() error {
	var missing []string
	switch c.Provider {
	case "anthropic":
		if c.Anthropic == nil || c.Anthropic.APIKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	case "openai":
		if c.OpenAI == nil || c.OpenAI.APIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	if c.Supabase.URL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.Supabase.ServiceKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_KEY")
	}
	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	return nil
}

// ImagesDir is where generated header images are written before upload.
func (c Config) ImagesDir() string {
	return filepath.Join(c.DataDir, "generated_images")
}

// BlogsDir is the staging area for publish-ready artifacts.
func (c Config) BlogsDir() string {
	return filepath.Join(c.DataDir, "generated_blogs")
}

// EnsureDirectories creates the data directories if needed.
func (c Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.ImagesDir(), c.BlogsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// LoadBrandContext reads the brand context file; a missing file is not an
// error, only a warning, because the prompt still works with the default.
func (c Config) LoadBrandContext() string {
	data, err := os.ReadFile(c.BrandContextPath)
	if err != nil {
		log.Printf("[config] brand context %s not found, using default", c.BrandContextPath)
		return defaultBrandContext
	}
	return string(data)
}
