package setup

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"portfolio-chat/internal/config"
	"portfolio-chat/internal/gateway"
	"portfolio-chat/internal/score"
	"portfolio-chat/internal/session"
	"portfolio-chat/internal/store"
)

type Dependencies struct {
	Controller *session.Controller
	Gateway    *gateway.Client
	Modes      *config.ModesConfig
	Logger     *zerolog.Logger
}

// Wire builds the session controller with its store, gateway and normalizer
// dependencies from the loaded configuration.
func Wire(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Dependencies, error) {
	st, err := createStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	modes, err := config.LoadModesConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load modes config: %w", err)
	}

	gw := gateway.NewClient(cfg.APIBaseURL, uuid.NewString(), cfg.RequestTimeout, logger)
	norm := score.NewNormalizer(logger)
	controller := session.NewController(ctx, gw, st, norm, modes.DefaultMode, logger)

	return &Dependencies{
		Controller: controller,
		Gateway:    gw,
		Modes:      modes,
		Logger:     logger,
	}, nil
}

func createStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client, err := store.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 3, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis store: %w", err)
		}
		return store.NewRedisStore(client, ""), nil
	case config.BackendFile, "":
		return store.NewFileStore(cfg.StateDir)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
