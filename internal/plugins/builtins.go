package plugins

import (
	"context"
	"fmt"

	"github.com/windlgrass/om1agent/internal/connectors"
	"github.com/windlgrass/om1agent/internal/llmadapter"
	llmproviders "github.com/windlgrass/om1agent/internal/llmadapter/providers"
	"github.com/windlgrass/om1agent/internal/providers"
	"github.com/windlgrass/om1agent/internal/scheduler"
	"github.com/windlgrass/om1agent/internal/sensors"
	sensordiscord "github.com/windlgrass/om1agent/internal/sensors/discord"
	sensornostr "github.com/windlgrass/om1agent/internal/sensors/nostr"
	sensorslack "github.com/windlgrass/om1agent/internal/sensors/slack"
	sensortelegram "github.com/windlgrass/om1agent/internal/sensors/telegram"
	"github.com/windlgrass/om1agent/internal/statemachine"
	"github.com/windlgrass/om1agent/pkg/models"
)

// Providers bundles every shared-state Provider a Runtime constructs once
// and hands to every plugin factory that needs cross-sensor state (spec
// §4.8). Built-in sensor/connector/background factories close over this
// bundle rather than constructing their own Providers, so every plugin
// instance observes the same GPS fix, odometry reading, and so on.
type Providers struct {
	TTS        *providers.TTSProvider
	AvatarFace *providers.AvatarFaceProvider
	GPS        *providers.GPSProvider
	Lidar      *providers.LidarProvider
	Battery    *providers.BatteryProvider
	Odometry   *providers.OdometryProvider
	Locations  *providers.LocationsProvider
	Teleops    *providers.TeleopsStatus
	Context    *providers.ContextProvider

	Greeting   *statemachine.GreetingConversation
	Navigation *statemachine.Navigation
}

// NewProviders constructs one instance of every shared-state Provider.
func NewProviders() *Providers {
	return &Providers{
		TTS:        providers.NewTTSProvider(),
		AvatarFace: providers.NewAvatarFaceProvider(),
		GPS:        providers.NewGPSProvider(),
		Lidar:      providers.NewLidarProvider(),
		Battery:    providers.NewBatteryProvider(),
		Odometry:   providers.NewOdometryProvider(),
		Locations:  providers.NewLocationsProvider(),
		Teleops:    providers.NewTeleopsStatus(),
		Context:    providers.NewContextProvider(),
		Greeting:   statemachine.NewGreetingConversation(0),
		Navigation: statemachine.NewNavigation(),
	}
}

// RegisterBuiltins wires every concrete sensor, connector, background
// task, and LLM backend this module ships into r, closing over p for
// cross-component state. Config-driven construction under each factory
// follows the teacher's pattern of reading typed fields out of the raw
// `map[string]any` block with a default on absence (spec §6's config
// shape).
func RegisterBuiltins(r *Registry, p *Providers) {
	registerSensors(r, p)
	registerConnectors(r, p)
	registerBackgrounds(r, p)
	registerLLMBackends(r)
}

func registerSensors(r *Registry, p *Providers) {
	r.RegisterSensor("gps", func(cfg map[string]any) (sensors.Sensor, error) {
		return sensors.NewGPSSensor(stringField(cfg, "base_url", ""), p.GPS), nil
	})
	r.RegisterSensor("lidar", func(cfg map[string]any) (sensors.Sensor, error) {
		return sensors.NewLidarSensor(stringField(cfg, "base_url", ""), p.Lidar), nil
	})
	r.RegisterSensor("battery", func(cfg map[string]any) (sensors.Sensor, error) {
		return sensors.NewBatterySensor(stringField(cfg, "base_url", ""), p.Battery), nil
	})
	r.RegisterSensor("odometry", func(cfg map[string]any) (sensors.Sensor, error) {
		return sensors.NewOdometrySensor(stringField(cfg, "base_url", ""), p.Odometry), nil
	})
	r.RegisterSensor("wallet", func(cfg map[string]any) (sensors.Sensor, error) {
		return sensors.NewWalletSensor(stringField(cfg, "base_url", "")), nil
	})
	r.RegisterSensor("nostr", func(cfg map[string]any) (sensors.Sensor, error) {
		return sensornostr.New(stringSliceField(cfg, "relay_urls"), stringSliceField(cfg, "authors")), nil
	})
	r.RegisterSensor("discord", func(cfg map[string]any) (sensors.Sensor, error) {
		token := stringField(cfg, "token", "")
		if token == "" {
			return nil, fmt.Errorf("discord sensor: token is required")
		}
		return sensordiscord.New(token, stringSliceField(cfg, "channel_ids")), nil
	})
	r.RegisterSensor("slack", func(cfg map[string]any) (sensors.Sensor, error) {
		token := stringField(cfg, "token", "")
		channelID := stringField(cfg, "channel_id", "")
		if token == "" || channelID == "" {
			return nil, fmt.Errorf("slack sensor: token and channel_id are required")
		}
		return sensorslack.New(token, channelID), nil
	})
	r.RegisterSensor("telegram_feed", func(cfg map[string]any) (sensors.Sensor, error) {
		token := stringField(cfg, "token", "")
		if token == "" {
			return nil, fmt.Errorf("telegram_feed sensor: token is required")
		}
		return sensortelegram.New(token), nil
	})
}

func registerConnectors(r *Registry, p *Providers) {
	r.RegisterConnector("arm", func(cfg map[string]any) (models.Connector, error) {
		return connectors.NewArmConnector(stringField(cfg, "base_url", "")), nil
	})
	r.RegisterConnector("navigate", func(cfg map[string]any) (models.Connector, error) {
		return connectors.NewNavigationGoalConnector(stringField(cfg, "base_url", ""), p.Navigation), nil
	})
	r.RegisterConnector("greeting_conversation", func(cfg map[string]any) (models.Connector, error) {
		return connectors.NewGreetingConversationConnector(p.Greeting, p.Context), nil
	})
	r.RegisterConnector("led", func(cfg map[string]any) (models.Connector, error) {
		return connectors.NewLEDConnector(stringField(cfg, "base_url", "")), nil
	})
	r.RegisterConnector("emergency_alert", func(cfg map[string]any) (models.Connector, error) {
		url := stringField(cfg, "webhook_url", "")
		if url == "" {
			return nil, fmt.Errorf("emergency_alert connector: webhook_url is required")
		}
		return connectors.NewEmergencyAlertConnector(url), nil
	})
	r.RegisterConnector("speak", func(cfg map[string]any) (models.Connector, error) {
		return connectors.NewSpeakConnector(p.TTS, stringField(cfg, "base_url", "")), nil
	})
	r.RegisterConnector("tweet", func(cfg map[string]any) (models.Connector, error) {
		token := stringField(cfg, "bearer_token", "")
		if token == "" {
			return nil, fmt.Errorf("tweet connector: bearer_token is required")
		}
		return connectors.NewTweetConnector(token), nil
	})
	r.RegisterConnector("telegram", func(cfg map[string]any) (models.Connector, error) {
		token := stringField(cfg, "token", "")
		chatID := int64Field(cfg, "chat_id", 0)
		if token == "" || chatID == 0 {
			return nil, fmt.Errorf("telegram connector: token and chat_id are required")
		}
		return connectors.NewTelegramConnector(token, chatID)
	})
	r.RegisterConnector("navigate_location", func(cfg map[string]any) (models.Connector, error) {
		goals := connectors.NewNavigationGoalConnector(stringField(cfg, "base_url", ""), p.Navigation)
		return connectors.NewNavigateLocationConnector(p.Locations, goals), nil
	})
	r.RegisterConnector("remember_location", func(cfg map[string]any) (models.Connector, error) {
		return connectors.NewRememberLocationConnector(p.Locations, p.Odometry, p.TTS), nil
	})
}

func registerBackgrounds(r *Registry, p *Providers) {
	r.RegisterBackground("teleops_status", func(cfg map[string]any) (scheduler.BackgroundTask, error) {
		machineName := stringField(cfg, "machine_name", "agent_teleops_status_reporter")
		return scheduler.NewTeleopsStatusTask(machineName, p.Teleops, p.Battery), nil
	})
	r.RegisterBackground("approaching_person", func(cfg map[string]any) (scheduler.BackgroundTask, error) {
		baseURL := stringField(cfg, "base_url", "")
		if baseURL == "" {
			return nil, fmt.Errorf("approaching_person background: base_url is required")
		}
		return scheduler.NewApproachingPersonTask(baseURL, p.Greeting, p.Context), nil
	})
	r.RegisterBackground("navigation_status", func(cfg map[string]any) (scheduler.BackgroundTask, error) {
		baseURL := stringField(cfg, "base_url", "")
		if baseURL == "" {
			return nil, fmt.Errorf("navigation_status background: base_url is required")
		}
		return scheduler.NewNavigationStatusTask(baseURL, p.Navigation), nil
	})
}

func registerLLMBackends(r *Registry) {
	r.RegisterLLMBackend("anthropic", func(cfg map[string]any) (llmadapter.Backend, error) {
		return llmproviders.NewAnthropicBackend(llmproviders.AnthropicConfig{
			APIKey:       stringField(cfg, "api_key", ""),
			BaseURL:      stringField(cfg, "base_url", ""),
			DefaultModel: stringField(cfg, "model", ""),
		})
	})
	r.RegisterLLMBackend("bedrock", func(cfg map[string]any) (llmadapter.Backend, error) {
		return llmproviders.NewBedrockBackend(context.Background(), llmproviders.BedrockConfig{
			Region:       stringField(cfg, "region", ""),
			DefaultModel: stringField(cfg, "model", ""),
		})
	})
	r.RegisterLLMBackend("google", func(cfg map[string]any) (llmadapter.Backend, error) {
		return llmproviders.NewGoogleBackend(context.Background(), llmproviders.GoogleConfig{
			APIKey:       stringField(cfg, "api_key", ""),
			DefaultModel: stringField(cfg, "model", ""),
		})
	})
	r.RegisterLLMBackend("openai", func(cfg map[string]any) (llmadapter.Backend, error) {
		return llmproviders.NewOpenAIBackend(llmproviders.OpenAIConfig{
			APIKey:       stringField(cfg, "api_key", ""),
			BaseURL:      stringField(cfg, "base_url", ""),
			DefaultModel: stringField(cfg, "model", ""),
		})
	})
}

func stringField(cfg map[string]any, key, fallback string) string {
	if v, ok := cfg[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

func int64Field(cfg map[string]any, key string, fallback int64) int64 {
	switch v := cfg[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return fallback
}

func stringSliceField(cfg map[string]any, key string) []string {
	raw, ok := cfg[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
