package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"taskflow/config"
	"taskflow/llm"
	"taskflow/mcptools"
	"taskflow/server"
	"taskflow/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default config/taskflow.yaml)")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools over stdio instead of HTTP")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("[config] %v, using defaults", err)
		cfg = config.Get()
	}

	st, err := store.NewStore(cfg.Database.Path)
	if err != nil {
		log.Fatalf("[store] %v", err)
	}
	defer st.Close()

	if *mcpMode {
		if err := mcptools.NewServer(st).ServeStdio(); err != nil {
			log.Fatalf("[mcp] %v", err)
		}
		return
	}

	client, err := llm.NewOllamaClient(llm.Config{
		Provider:    "ollama",
		Model:       cfg.Ollama.Model,
		BaseURL:     cfg.Ollama.BaseURL,
		Temperature: cfg.Ollama.Temperature,
		TopP:        cfg.Ollama.TopP,
		MaxTokens:   cfg.Ollama.MaxTokens,
	})
	if err != nil {
		log.Fatalf("[llm] %v", err)
	}
	if !client.IsAvailable(ctx) {
		log.Printf("[llm] warning: Ollama not reachable at %s; plan generation will fall back to templates", cfg.Ollama.BaseURL)
	}

	fmt.Printf("TaskFlow listening on %s\n", cfg.Server.Addr)
	fmt.Printf("  model: %s @ %s\n", cfg.Ollama.Model, cfg.Ollama.BaseURL)
	fmt.Printf("  db:    %s\n", cfg.Database.Path)

	srv := server.New(cfg, st, llm.NewPlanner(client))
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("[server] %v", err)
	}
}
