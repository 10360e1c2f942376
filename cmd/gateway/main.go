// Command gateway runs the content-safety gateway: it loads a pipeline of
// guardrails from a YAML config file and serves HTTP endpoints that
// evaluate prompts and responses against that pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/virtualsteve-star/stinger-sub000/internal/audit"
	"github.com/virtualsteve-star/stinger-sub000/internal/config"
	"github.com/virtualsteve-star/stinger-sub000/internal/errsanitize"
	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail"
	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail/detectors"
	"github.com/virtualsteve-star/stinger-sub000/internal/handlers"
	"github.com/virtualsteve-star/stinger-sub000/internal/middleware"
	"github.com/virtualsteve-star/stinger-sub000/internal/provider"
	"github.com/virtualsteve-star/stinger-sub000/internal/ratelimit"
	"github.com/virtualsteve-star/stinger-sub000/internal/router"
	"github.com/virtualsteve-star/stinger-sub000/internal/secrets"
	"github.com/virtualsteve-star/stinger-sub000/internal/validation"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/gateway.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	sanitizer := errsanitize.New()

	trail, err := setupAudit(cfg)
	if err != nil {
		log.Printf("warning: audit trail disabled: %v", err)
	} else if trail != nil {
		log.Println("audit trail enabled")
	}

	aiProvider := setupProvider(cfg)

	registry := guardrail.NewRegistry()
	detectors.RegisterAll(registry, aiProvider)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = setupRateLimiter(cfg)
	}

	validator := validation.NewValidator(setupValidationLimits(cfg))

	sanitizeFunc := func(err error, context string) string {
		return sanitizer.SafeErrorMessage(err, context, false)
	}
	pipeline, err := guardrail.BuildPipeline(registry, buildPipelineConfig(cfg), limiter, trail, validator, sanitizeFunc)
	if err != nil {
		log.Fatalf("failed to build guardrail pipeline: %v", err)
	}
	log.Printf("guardrail pipeline ready (%d input, %d output)", len(pipeline.Input.Guardrails), len(pipeline.Output.Guardrails))

	checkHandler := handlers.NewCheckHandler(pipeline, sanitizer, validator)

	var capture *middleware.CaptureMiddleware
	if trail != nil {
		capture = middleware.NewCaptureMiddleware(middleware.CaptureConfig{
			Trail:           trail,
			SkipHealthCheck: true,
		})
	}

	r := router.New(checkHandler, capture)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		fmt.Printf("gateway listening on %s\n", cfg.Server.Port)
		fmt.Println("  POST /v1/guardrails/check         - evaluate input content")
		fmt.Println("  POST /v1/guardrails/check/output  - evaluate output content")
		fmt.Println("  GET  /health")
		fmt.Println("  GET  /status")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("error during server shutdown: %v", err)
	}
	if trail != nil {
		trail.Flush()
		if err := trail.Close(); err != nil {
			log.Printf("error closing audit trail: %v", err)
		}
	}
	fmt.Println("shutdown complete")
}

func setupAudit(cfg *config.Config) (*audit.Trail, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}

	auditCfg := audit.Config{
		Destination:  cfg.Audit.Destination,
		RedactPII:    cfg.Audit.RedactPII,
		RedactPIISet: true,
		BufferSize:   cfg.Audit.BufferSize,
		BatchSize:    cfg.Audit.BatchSize,
	}
	if cfg.Audit.FlushInterval != "" {
		if d, err := time.ParseDuration(cfg.Audit.FlushInterval); err == nil {
			auditCfg.FlushInterval = d
		}
	}

	if cfg.Audit.Postgres.Enabled {
		connURL := cfg.Audit.Postgres.URL
		if connURL == "" {
			connURL = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
				cfg.Audit.Postgres.Username, cfg.Audit.Postgres.Password,
				cfg.Audit.Postgres.Host, cfg.Audit.Postgres.Port,
				cfg.Audit.Postgres.Database, cfg.Audit.Postgres.SSLMode)
		}
		sink, err := audit.NewPostgresSink(connURL)
		if err != nil {
			log.Printf("warning: postgres compliance archive unavailable: %v", err)
		} else {
			auditCfg.Sinks = append(auditCfg.Sinks, sink)
		}
	}

	return audit.Enable(auditCfg)
}

func setupProvider(cfg *config.Config) provider.Provider {
	mgr := secrets.NewManager(nil)
	apiKey := mgr.GetOpenAIKey()
	if apiKey == "" {
		log.Println("warning: no OpenAI API key configured; AI-backed guardrails will run in fallback mode")
		return nil
	}

	timeout := 30 * time.Second
	if cfg.AIProvider.Timeout != "" {
		if d, err := time.ParseDuration(cfg.AIProvider.Timeout); err == nil {
			timeout = d
		}
	}
	return provider.NewOpenAI(apiKey, cfg.AIProvider.BaseURL, timeout)
}

func setupRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	defaults := ratelimit.Limits{
		PerMinute: cfg.RateLimit.PerMinute,
		PerHour:   cfg.RateLimit.PerHour,
		PerDay:    cfg.RateLimit.PerDay,
	}
	roles := make(ratelimit.RoleOverrides, len(cfg.RateLimit.Roles))
	for name, r := range cfg.RateLimit.Roles {
		roles[name] = ratelimit.Limits{PerMinute: r.PerMinute, PerHour: r.PerHour, PerDay: r.PerDay, Exempt: r.Exempt}
	}
	return ratelimit.New(defaults, roles)
}

func setupValidationLimits(cfg *config.Config) validation.Limits {
	limits := validation.DefaultLimits()
	if cfg.Validation.MaxPromptLength > 0 {
		limits.MaxPromptLength = cfg.Validation.MaxPromptLength
	}
	if cfg.Validation.MaxResponseLength > 0 {
		limits.MaxResponseLength = cfg.Validation.MaxResponseLength
	}
	if cfg.Validation.MaxLineLength > 0 {
		limits.MaxLineLength = cfg.Validation.MaxLineLength
	}
	if cfg.Validation.MaxConversationTurns > 0 {
		limits.MaxConversationTurns = cfg.Validation.MaxConversationTurns
	}
	if cfg.Validation.MaxFiltersPerPipeline > 0 {
		limits.MaxFiltersPerPipeline = cfg.Validation.MaxFiltersPerPipeline
	}
	if cfg.Validation.MaxRegexPatterns > 0 {
		limits.MaxRegexPatterns = cfg.Validation.MaxRegexPatterns
	}
	return limits
}

func buildPipelineConfig(cfg *config.Config) guardrail.PipelineConfig {
	return guardrail.PipelineConfig{
		ShortCircuit: cfg.Pipeline.ShortCircuit,
		Input:        convertGuardrailConfigs(cfg.Pipeline.Input),
		Output:       convertGuardrailConfigs(cfg.Pipeline.Output),
	}
}

func convertGuardrailConfigs(entries []config.GuardrailConfig) []guardrail.Config {
	out := make([]guardrail.Config, 0, len(entries))
	for _, e := range entries {
		onError := guardrail.ActionBlock
		switch e.OnError {
		case "allow":
			onError = guardrail.ActionAllow
		case "warn":
			onError = guardrail.ActionWarn
		}
		out = append(out, guardrail.Config{
			Name:    e.Name,
			Type:    guardrail.Type(e.Type),
			Enabled: e.Enabled,
			OnError: onError,
			Config:  e.Config,
		})
	}
	return out
}
