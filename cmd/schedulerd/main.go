package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	schedulerconfig "schedulerd/internal/config"
	"schedulerd/internal/httpapi"
	"schedulerd/internal/registry"
	"schedulerd/internal/scheduler"
	"schedulerd/internal/worker/image"
	"schedulerd/internal/worker/lm"
	"schedulerd/internal/worker/tts"
	"schedulerd/pkg/types"
)

func main() {
	defaultAddr := ":8080"
	if v := os.Getenv("SCHEDULERD_ADDR"); v != "" {
		defaultAddr = v
	}
	configPath := flag.String("config", "", "Path to a config file (.yaml, .json, or .toml)")
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	workersDir := flag.String("workers-dir", "~/.schedulerd/workers", "Directory of worker manifest JSON files")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	httpapi.SetLogger(logger)

	cfg := schedulerconfig.Config{Addr: *addr, WorkersDir: *workersDir}
	if *configPath != "" {
		loaded, err := schedulerconfig.Load(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("load config")
		}
		cfg = loaded
		if cfg.Addr == "" {
			cfg.Addr = *addr
		}
		if cfg.WorkersDir == "" {
			cfg.WorkersDir = *workersDir
		}
	}

	schedCfg, err := resolveSchedulerConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("resolve scheduler config")
	}

	sched := scheduler.New(schedCfg)

	entries, err := registry.LoadDir(cfg.WorkersDir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", cfg.WorkersDir).Msg("no worker manifest loaded, starting with zero workers")
	}
	for _, e := range entries {
		w, err := buildWorker(e)
		if err != nil {
			logger.Fatal().Err(err).Str("worker_id", e.ID).Msg("build worker")
		}
		if err := sched.RegisterWorker(w); err != nil {
			logger.Fatal().Err(err).Str("worker_id", e.ID).Msg("register worker")
		}
	}

	sched.Start()
	logger.Info().Int("workers", len(entries)).Msg("scheduler started")

	mux := httpapi.NewMux(sched)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("schedulerd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http graceful shutdown")
	}
	if err := sched.Shutdown(schedCfg.DefaultGrace); err != nil && !scheduler.IsGraceExceeded(err) {
		logger.Warn().Err(err).Msg("scheduler shutdown")
	}
}

func resolveSchedulerConfig(cfg schedulerconfig.Config) (scheduler.Config, error) {
	initialBackoff, err := schedulerconfig.ParseDuration(cfg.InitialBackoff, 0)
	if err != nil {
		return scheduler.Config{}, err
	}
	maxBackoff, err := schedulerconfig.ParseDuration(cfg.MaxBackoff, 0)
	if err != nil {
		return scheduler.Config{}, err
	}
	defaultGrace, err := schedulerconfig.ParseDuration(cfg.DefaultGrace, 0)
	if err != nil {
		return scheduler.Config{}, err
	}
	return scheduler.Config{
		QueueDepth:             cfg.QueueDepth,
		InitialBackoff:         initialBackoff,
		MaxBackoff:             maxBackoff,
		DefaultGrace:           defaultGrace,
		LMExclusiveWorkerID:    cfg.LMExclusiveWorkerID,
		FirstLMWorkerExclusive: cfg.FirstLMWorkerExclusive,
	}, nil
}

// lmHTTPSettings configures an HTTP-backed LM worker (engine "llama_server").
type lmHTTPSettings struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	Timeout string `json:"timeout"`
}

// ttsSubprocessSettings configures a subprocess-backed TTS worker (engine "subprocess").
type ttsSubprocessSettings struct {
	Binary string   `json:"binary"`
	Args   []string `json:"args"`
}

// imageHTTPSettings configures an HTTP-backed Image worker (engine "http").
type imageHTTPSettings struct {
	Endpoint string `json:"endpoint"`
	Timeout  string `json:"timeout"`
}

func buildWorker(e registry.Entry) (scheduler.Worker, error) {
	switch types.Class(e.Class) {
	case types.ClassLM:
		var s lmHTTPSettings
		if err := json.Unmarshal(e.Settings, &s); err != nil {
			return nil, fmt.Errorf("worker %s: %w", e.ID, err)
		}
		timeout, err := schedulerconfig.ParseDuration(s.Timeout, 60*time.Second)
		if err != nil {
			return nil, err
		}
		return lm.NewHTTPWorker(e.ID, s.BaseURL, s.APIKey, timeout), nil
	case types.ClassTTS:
		var s ttsSubprocessSettings
		if err := json.Unmarshal(e.Settings, &s); err != nil {
			return nil, fmt.Errorf("worker %s: %w", e.ID, err)
		}
		return tts.NewWorker(e.ID, s.Binary, s.Args), nil
	case types.ClassImage:
		var s imageHTTPSettings
		if err := json.Unmarshal(e.Settings, &s); err != nil {
			return nil, fmt.Errorf("worker %s: %w", e.ID, err)
		}
		timeout, err := schedulerconfig.ParseDuration(s.Timeout, 60*time.Second)
		if err != nil {
			return nil, err
		}
		return image.NewWorker(e.ID, s.Endpoint, timeout), nil
	default:
		return nil, fmt.Errorf("worker %s: unknown class %q", e.ID, e.Class)
	}
}
