package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"seobot/agent"
	"seobot/blog"
	"seobot/config"
	"seobot/gemini"
	"seobot/server"
	"seobot/supabase"
	"seobot/tools"
)

var verbose bool

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	configPath := flag.String("config", "config/config.json", "path to config.json")
	topic := flag.String("topic", "", "article topic (empty lets the model pick one)")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	flag.BoolVar(&verbose, "v", false, "enable info logs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	orch, store, err := buildPipeline(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Web server mode
	if *serve {
		srv, err := server.New(orch, store, log.Default())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		log.Printf("Starting web server on %s", listen)
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()
	result, err := orch.Run(ctx, *topic)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	switch result.Outcome {
	case agent.OutcomePublished:
		log.Printf("[cli] blog published after %d iteration(s)", result.Iterations)
		fmt.Println(result.URL)
	case agent.OutcomeExhausted:
		fmt.Fprintf(os.Stderr, "run stopped: iteration ceiling (%d) reached without publishing\n", result.Iterations)
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "run stopped: model finished without inserting the blog")
		os.Exit(1)
	}
}

// buildPipeline constructs the collaborators and wires them into an
// orchestrator. Everything is injected explicitly so tests can substitute
// doubles for each piece.
func buildPipeline(cfg config.Config) (*agent.Orchestrator, *supabase.Client, error) {
	model, err := buildModel(cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := supabase.New(cfg.Supabase.URL, cfg.Supabase.ServiceKey, cfg.Supabase.Bucket, nil, verbose, log.Default())
	if err != nil {
		return nil, nil, err
	}

	var imageGen tools.ImageGenerator
	if cfg.GeminiAPIKey != "" {
		gen, err := gemini.New(cfg.GeminiAPIKey, gemini.WithLogger(log.Default(), verbose))
		if err != nil {
			return nil, nil, err
		}
		imageGen = gen
	}

	blogsDir, err := filepath.Abs(cfg.BlogsDir())
	if err != nil {
		return nil, nil, err
	}
	staging := blog.NewStore(blogsDir)
	builder := blog.Builder{SiteURL: cfg.SiteURL, DefaultAuthor: cfg.Author}
	committer := blog.NewCommitter(staging, store, cfg.SiteURL)

	registry := tools.NewRegistry(log.Default(),
		tools.ImageGeneratorTool(imageGen, cfg.ImagesDir(), log.Default()),
		tools.ImageUploaderTool(store, log.Default()),
		tools.BlogCreatorTool(builder, staging, log.Default()),
		tools.BlogInserterTool(committer, log.Default()),
	)

	orch, err := agent.New(model, registry, store, agent.Options{
		BrandContext: cfg.LoadBrandContext(),
		Verbose:      verbose,
		Logger:       log.Default(),
	})
	if err != nil {
		return nil, nil, err
	}
	return orch, store, nil
}

func buildModel(cfg config.Config) (agent.ModelClient, error) {
	switch cfg.Provider {
	case "anthropic":
		return agent.NewAnthropicLLMFromConfig(&agent.ModelSettings{
			Model:   cfg.Anthropic.Model,
			APIKey:  cfg.Anthropic.APIKey,
			BaseURL: cfg.Anthropic.BaseURL,
		})
	case "openai":
		return agent.NewOpenAILLMFromConfig(&agent.ModelSettings{
			Model:   cfg.OpenAI.Model,
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
		})
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}
