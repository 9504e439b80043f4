// annad is Anna's resident daemon: it loads configuration, wires the
// translate->probe->synthesize->verify pipeline, and serves requests over a
// local Unix socket until terminated.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jjgarcianorway/annad/pkg/bench"
	"github.com/jjgarcianorway/annad/pkg/config"
	"github.com/jjgarcianorway/annad/pkg/hostinfo"
	"github.com/jjgarcianorway/annad/pkg/llm"
	"github.com/jjgarcianorway/annad/pkg/masking"
	"github.com/jjgarcianorway/annad/pkg/probe"
	"github.com/jjgarcianorway/annad/pkg/recipe"
	"github.com/jjgarcianorway/annad/pkg/rpc"
	"github.com/jjgarcianorway/annad/pkg/synthesize"
	"github.com/jjgarcianorway/annad/pkg/ticket"
	"github.com/jjgarcianorway/annad/pkg/translator"
	"github.com/jjgarcianorway/annad/pkg/update"
	"github.com/jjgarcianorway/annad/pkg/version"
	"github.com/jjgarcianorway/annad/pkg/wiki"
	"github.com/joho/godotenv"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runBenchmarkLoop periodically tries to run an idle-triggered model
// warm-up: a trivial completion call that keeps the local model loaded in
// memory so the first real request after a quiet spell isn't the one
// paying the cold-start cost.
func runBenchmarkLoop(ctx context.Context, scheduler *bench.Scheduler, llmClient *llm.Client) {
	task := bench.NewTask(scheduler, func(guard *bench.Guard) bool {
		_, err := llmClient.Complete(ctx, llm.Request{
			Messages:  []llm.Message{{Role: "user", Content: "ping"}},
			MaxTokens: 1,
		})
		if err != nil {
			slog.Warn("benchmark warm-up failed", "error", err)
			return false
		}
		return !guard.ShouldAbort()
	})

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, ran := task.TryRun(); ran {
				slog.Debug("benchmark warm-up completed")
			}
		}
	}
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "/etc/anna"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	log.Printf("Starting %s", version.Full())
	log.Printf("Config Directory: %s", *configDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}

	for _, dir := range []string{cfg.Paths.KnowledgeDir(), cfg.Paths.RecipesDir(), cfg.Paths.StateDir()} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Fatalf("Failed to create state directory %s: %v", dir, err)
		}
	}

	installStore, err := hostinfo.NewInstallStateStore(filepath.Join(cfg.Paths.StateDir(), "install_state.json"))
	if err != nil {
		log.Fatalf("Failed to open install state store: %v", err)
	}
	if _, err := hostinfo.RefreshInstallState(installStore, *configDir); err != nil {
		log.Printf("Warning: failed to refresh install state: %v", err)
	}

	profile, err := hostinfo.NewDetector("/").Collect(ctx)
	if err != nil {
		log.Printf("Warning: host profile detection failed: %v", err)
	} else {
		log.Printf("Host profile: class=%s session=%s virt=%s cores=%d mem=%dMB",
			profile.MachineClass, profile.Session, profile.Virtualization, profile.CPUCores, profile.TotalMemoryMB)
	}

	var llmClient *llm.Client
	if cfg.LLM.Enabled {
		apiKey := ""
		if cfg.LLM.APIKeyEnv != "" {
			apiKey = os.Getenv(cfg.LLM.APIKeyEnv)
		}
		llmClient = llm.New(llm.Config{
			BaseURL:    cfg.LLM.BaseURL,
			APIKey:     apiKey,
			Model:      cfg.LLM.Model,
			Timeout:    cfg.LLM.Timeout,
			RatePerSec: cfg.LLM.RatePerSec,
		})
		log.Printf("LLM client enabled: model=%s base_url=%s", cfg.LLM.Model, cfg.LLM.BaseURL)
	} else {
		log.Printf("LLM disabled: translator and synthesizer run deterministic-only")
	}

	if cfg.Wiki.Enabled {
		wikiClient, err := wiki.New(filepath.Join(cfg.Paths.KnowledgeDir(), "archwiki"), cfg.Wiki.CacheTTL)
		if err != nil {
			log.Fatalf("Failed to open wiki cache: %v", err)
		}
		go wikiClient.WarmCache(ctx, wiki.DefaultTopics...)
		log.Printf("Wiki client enabled: cache_ttl=%s", cfg.Wiki.CacheTTL)
	} else {
		log.Printf("Wiki client disabled")
	}

	masker := masking.NewService()
	dispatcher := probe.NewDispatcher(cfg.Probes, masker)
	trans := translator.New(llmClient)
	synth := synthesize.New(llmClient)

	orch := ticket.NewOrchestrator(trans, dispatcher, synth, cfg.Stages, cfg.Reliability, cfg.Autonomy)

	recipeStore, err := recipe.NewStore(cfg.Paths.RecipesDir())
	if err != nil {
		log.Fatalf("Failed to open recipe store: %v", err)
	}

	handler := rpc.NewHandler(orch, recipeStore)
	server := rpc.NewServer(handler, cfg.Daemon.SocketPath, os.FileMode(cfg.Daemon.SocketMode))

	if cfg.Benchmark.Enabled && llmClient != nil {
		benchScheduler := bench.NewScheduler(
			time.Duration(cfg.Benchmark.MinIdleSeconds)*time.Second,
			time.Duration(cfg.Benchmark.MaxRunSeconds)*time.Second,
			time.Duration(cfg.Benchmark.CooldownSecs)*time.Second,
		)
		handler.SetRequestHook(benchScheduler.RecordRequest)
		go runBenchmarkLoop(ctx, benchScheduler, llmClient)
		log.Printf("Benchmark scheduler enabled: min_idle=%ds max_run=%ds cooldown=%ds",
			cfg.Benchmark.MinIdleSeconds, cfg.Benchmark.MaxRunSeconds, cfg.Benchmark.CooldownSecs)
	} else {
		log.Printf("Benchmark scheduler disabled")
	}

	var updateScheduler *update.Scheduler
	if cfg.Update.Enabled {
		updateStore, err := update.NewStore(filepath.Join(cfg.Paths.StateDir(), "update_ledger.json"))
		if err != nil {
			log.Fatalf("Failed to open update ledger store: %v", err)
		}
		checker := update.NewGitHubChecker(cfg.Update.Repo)
		updateScheduler = update.NewScheduler(checker, updateStore, version.Full())
		if err := updateScheduler.Start(cfg.Update.Schedule); err != nil {
			log.Fatalf("Failed to start update scheduler: %v", err)
		}
		defer updateScheduler.Stop()
		log.Printf("Update checker scheduled: repo=%s schedule=%s", cfg.Update.Repo, cfg.Update.Schedule)
	} else {
		log.Printf("Update checker disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("RPC socket listening at %s", cfg.Daemon.SocketPath)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("RPC server exited: %v", err)
		}
	case <-ctx.Done():
		log.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}
}
