package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/planning-center-groups-go/internal/constants"
	"github.com/kapu/planning-center-groups-go/internal/domain"
	"github.com/kapu/planning-center-groups-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const backendRedis = "redis"

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisStore keeps every option as a field of one hash.
type RedisStore struct {
	client   *redis.Client
	key      string
	defaults domain.Settings
	logger   *zap.Logger
}

func NewRedisStore(cfg RedisConfig, defaults domain.Settings, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.ReadyTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewSettingsError("failed to connect to Redis", backendRedis, "ping", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return NewRedisStoreWithClient(client, defaults, logger), nil
}

func NewRedisStoreWithClient(client *redis.Client, defaults domain.Settings, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client:   client,
		key:      constants.RedisConfig.OptionsKey,
		defaults: defaults,
		logger:   logger,
	}
}

func (s *RedisStore) Load(ctx context.Context) (domain.Settings, error) {
	options, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		s.logger.Error("Settings load failed", zap.String("key", s.key), zap.Error(err))
		return domain.Settings{}, errors.NewSettingsError("load failed", backendRedis, "hgetall", err)
	}
	return FromOptions(options, s.defaults), nil
}

func (s *RedisStore) Save(ctx context.Context, settings domain.Settings) error {
	options := ToOptions(settings)
	args := make([]any, 0, len(options)*2)
	for k, v := range options {
		args = append(args, k, v)
	}

	if err := s.client.HSet(ctx, s.key, args...).Err(); err != nil {
		s.logger.Error("Settings save failed", zap.String("key", s.key), zap.Error(err))
		return errors.NewSettingsError("save failed", backendRedis, "hset", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
