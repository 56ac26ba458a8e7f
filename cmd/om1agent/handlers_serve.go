package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/windlgrass/om1agent/internal/config"
	"github.com/windlgrass/om1agent/internal/dispatcher"
	"github.com/windlgrass/om1agent/internal/fuser"
	"github.com/windlgrass/om1agent/internal/observability"
	"github.com/windlgrass/om1agent/internal/plugins"
	"github.com/windlgrass/om1agent/internal/rpcserver"
	"github.com/windlgrass/om1agent/internal/runtime"
	"github.com/windlgrass/om1agent/internal/scheduler"
	"github.com/windlgrass/om1agent/internal/wire"
	"github.com/windlgrass/om1agent/pkg/models"
)

// runServe implements the serve command: load config, construct every
// plugin through the registry, assemble the Runtime, and drive it until a
// shutdown signal arrives.
func runServe(ctx context.Context, configPath string, debug bool, diagnosticsAddr string) error {
	if debug {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	logger := slog.Default()

	logger.Info("starting om1agent", "version", version, "commit", commit, "config", configPath, "debug", debug)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	mode, err := cfg.ActiveMode()
	if err != nil {
		return fmt.Errorf("resolve active mode: %w", err)
	}

	registry := plugins.NewRegistry()
	providerBundle := plugins.NewProviders()
	plugins.RegisterBuiltins(registry, providerBundle)

	agentSensors, err := buildSensors(registry, mode.AgentInputs)
	if err != nil {
		return err
	}
	agentActions, err := buildActions(registry, mode.AgentActions)
	if err != nil {
		return err
	}
	backend, err := registry.NewLLMBackend(mode.CortexLLM.Type, map[string]any{
		"api_key":  mode.CortexLLM.Config.APIKey,
		"base_url": mode.CortexLLM.Config.BaseURL,
		"model":    mode.CortexLLM.Config.Model,
	})
	if err != nil {
		return fmt.Errorf("construct llm backend %q: %w", mode.CortexLLM.Type, err)
	}

	metrics := observability.NewMetrics()
	tracer, shutdownTracer := observability.NewTracer("om1agent")
	defer shutdownTracer(context.Background())

	tickInterval := time.Duration(0)
	if cfg.Hertz > 0 {
		tickInterval = time.Duration(float64(time.Second) / cfg.Hertz)
	}

	rt := runtime.New(runtime.Config{
		Sensors: agentSensors,
		Prompt: fuser.SystemPromptSections{
			Base:       mode.SystemPromptBase,
			Governance: mode.SystemGovernance,
			Examples:   mode.SystemPromptExamples,
		},
		Actions:      agentActions,
		Backend:      backend,
		TickInterval: tickInterval,
		Logger:       logger,
		Metrics:      metrics,
		Tracer:       tracer,
	})

	if err := registerBackgrounds(rt.Scheduler(), registry, mode.Backgrounds, logger); err != nil {
		return err
	}
	registerConnectorTickers(rt.Scheduler(), rt.Dispatcher(), logger)

	diagServer := rpcserver.New(
		logger.With("component", "rpcserver"),
		providerBundle.TTS,
		providerBundle.AvatarFace,
		rt.Status,
		wire.ConfigPayload{
			Hertz:       cfg.Hertz,
			CortexLLM:   mode.CortexLLM.Type,
			SensorCount: len(mode.AgentInputs),
			ActionCount: len(mode.AgentActions),
		},
		activeModes(cfg),
	)
	if err := diagServer.Start(diagnosticsAddr); err != nil {
		return fmt.Errorf("start diagnostics server: %w", err)
	}
	defer diagServer.Stop(context.Background())

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-runCtx.Done()
		logger.Info("shutdown signal received, stopping runtime")
		rt.Stop().Fire()
	}()

	rt.Run(runCtx)
	logger.Info("om1agent stopped")
	return nil
}

// activeModes reports the ModeStatus RPC's payload: the resolved active
// mode name and every mode name this configuration could switch to
// (single-mode configs report just "default").
func activeModes(cfg config.Config) wire.ModeStatusPayload {
	if !cfg.IsMultiMode() {
		return wire.ModeStatusPayload{ActiveMode: "default", AvailableModes: []string{"default"}}
	}
	names := make([]string, 0, len(cfg.Modes))
	for name := range cfg.Modes {
		names = append(names, name)
	}
	sort.Strings(names)
	active := cfg.DefaultMode
	if active == "" && len(names) > 0 {
		active = names[0]
	}
	return wire.ModeStatusPayload{ActiveMode: active, AvailableModes: names}
}

// buildSensors constructs one sensor per agent_inputs entry, in YAML
// declaration order, so the Fuser walks them in the same order every
// process start (spec §4.4). Each entry gets a unique identity: in.Name
// when the config sets one, otherwise "<type>_<index>" so two sensors of
// the same type (e.g. two Telegram inputs) never collide.
func buildSensors(registry *plugins.Registry, inputs []config.PluginConfig) ([]fuser.NamedSensor, error) {
	out := make([]fuser.NamedSensor, 0, len(inputs))
	for i, in := range inputs {
		s, err := registry.NewSensor(in.Type, in.Config)
		if err != nil {
			return nil, fmt.Errorf("construct sensor %q: %w", in.Type, err)
		}
		name := in.Name
		if name == "" {
			name = fmt.Sprintf("%s_%d", in.Type, i)
		}
		out = append(out, fuser.NamedSensor{Name: name, Sensor: s})
	}
	return out, nil
}

func buildActions(registry *plugins.Registry, actions []config.ActionConfig) ([]models.AgentAction, error) {
	out := make([]models.AgentAction, 0, len(actions))
	for _, a := range actions {
		conn, err := registry.NewConnector(a.Connector, a.Config)
		if err != nil {
			return nil, fmt.Errorf("construct connector for action %q: %w", a.Name, err)
		}
		iface, ok := plugins.BuiltinInterfaces[a.Connector]
		if !ok {
			return nil, fmt.Errorf("action %q: no interface registered for connector %q", a.Name, a.Connector)
		}
		llmLabel := a.LLMLabel
		if llmLabel == "" {
			llmLabel = a.Name
		}
		out = append(out, models.AgentAction{
			Name:              a.Name,
			LLMLabel:          llmLabel,
			Interface:         iface,
			Connector:         conn,
			ExcludeFromPrompt: a.ExcludeFromPrompt,
		})
	}
	return out, nil
}

func registerBackgrounds(sched *scheduler.Scheduler, registry *plugins.Registry, backgrounds []config.PluginConfig, logger *slog.Logger) error {
	for _, b := range backgrounds {
		task, err := registry.NewBackground(b.Type, b.Config)
		if err != nil {
			return fmt.Errorf("construct background %q: %w", b.Type, err)
		}
		interval := intervalField(b.Config, "interval_seconds", 60*time.Second)
		if cron, ok := b.Config["cron"].(string); ok && cron != "" {
			if err := sched.AddCronTask(task, cron); err != nil {
				return fmt.Errorf("schedule background %q: %w", b.Type, err)
			}
			continue
		}
		sched.AddTask(task, interval)
		logger.Info("registered background task", "name", task.Name(), "interval", interval)
	}
	return nil
}

func registerConnectorTickers(sched *scheduler.Scheduler, disp *dispatcher.Dispatcher, logger *slog.Logger) {
	for name, conn := range disp.Connectors() {
		if ticker, ok := conn.(dispatcher.Ticker); ok {
			sched.AddConnectorTicker(name, ticker, scheduler.DefaultConnectorTickInterval)
			logger.Debug("registered connector ticker", "connector", name)
		}
	}
}

func intervalField(cfg map[string]any, key string, fallback time.Duration) time.Duration {
	switch v := cfg[key].(type) {
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	}
	return fallback
}
