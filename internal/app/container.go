package app

import (
	"context"
	"fmt"

	"github.com/kapu/planning-center-groups-go/internal/adapter"
	"github.com/kapu/planning-center-groups-go/internal/config"
	"github.com/kapu/planning-center-groups-go/internal/domain"
	"github.com/kapu/planning-center-groups-go/internal/server"
	"github.com/kapu/planning-center-groups-go/internal/service/embed"
	"github.com/kapu/planning-center-groups-go/internal/service/planningcenter"
	"github.com/kapu/planning-center-groups-go/internal/service/settings"
	"github.com/kapu/planning-center-groups-go/internal/shortcode"
	"go.uber.org/zap"
)

// Container bundles the assembled services.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Settings   settings.Store
	Groups     *embed.GroupsEmbed
	Shortcodes *shortcode.Registry

	closers []func()
}

// NewServer builds the HTTP host on top of the container's services.
func (c *Container) NewServer() (*server.Server, error) {
	if c == nil || c.Groups == nil {
		return nil, fmt.Errorf("container not initialized")
	}
	return server.New(server.Config{
		Addr:          c.Config.Server.Addr,
		AdminUser:     c.Config.Admin.User,
		AdminPassword: c.Config.Admin.Password,
	}, server.Dependencies{
		Groups:     c.Groups,
		Shortcodes: c.Shortcodes,
		Settings:   c.Settings,
		Logger:     c.Logger,
	}), nil
}

// Close releases backing stores in reverse order of creation.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles all services. Any resource opened before a failure is
// closed before returning.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	store, err := newSettingsStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create settings store: %w", err)
	}
	closers = append(closers, func() {
		_ = store.Close()
	})

	client := planningcenter.NewClient(cfg.PlanningCenter.BaseURL, cfg.PlanningCenter.Timeout, logger)
	renderer := adapter.NewGroupRenderer(logger)
	groupsEmbed := embed.NewGroupsEmbed(store, client, renderer, logger)

	registry := shortcode.NewRegistry(logger)
	registry.Register(groupsEmbed)

	logger.Info("Services assembled",
		zap.String("settings_backend", cfg.Settings.Backend),
		zap.String("api_base_url", cfg.PlanningCenter.BaseURL),
		zap.Strings("shortcodes", registry.Names()),
		zap.Bool("admin_enabled", cfg.Admin.Enabled()),
	)

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Settings:   store,
		Groups:     groupsEmbed,
		Shortcodes: registry,
		closers:    closers,
	}, nil
}

func newSettingsStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (settings.Store, error) {
	defaults := domain.Settings{
		ClientID:        cfg.Defaults.ClientID,
		ClientSecret:    cfg.Defaults.ClientSecret,
		DebugMode:       cfg.Defaults.DebugMode,
		TagFilter:       cfg.Defaults.TagFilter,
		GroupTypeFilter: cfg.Defaults.GroupTypeFilter,
	}

	switch cfg.Settings.Backend {
	case config.BackendRedis:
		return settings.NewRedisStore(settings.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, defaults, logger)
	case config.BackendPostgres:
		return settings.NewPostgresStore(settings.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, defaults, logger)
	case config.BackendMemory, "":
		return settings.NewMemoryStore(defaults), nil
	default:
		return nil, fmt.Errorf("unknown settings backend %q", cfg.Settings.Backend)
	}
}
