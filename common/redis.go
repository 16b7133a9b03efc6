package common

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Laisky/zap"
	"github.com/go-redis/redis/v8"

	"github.com/Chyrain/LLMGateway/common/config"
	"github.com/Chyrain/LLMGateway/common/logger"
)

var RDB redis.Cmdable

var redisEnabled atomic.Bool

func IsRedisEnabled() bool {
	return redisEnabled.Load()
}

// InitRedisClient connects to redis when REDIS_CONN_STRING is set; the
// candidate-list cache stays disabled otherwise.
func InitRedisClient() error {
	if config.RedisConnString == "" {
		logger.Logger.Info("REDIS_CONN_STRING not set, Redis is not enabled")
		return nil
	}

	if config.RedisMasterName == "" {
		logger.Logger.Info("Redis is enabled")
		opt, err := redis.ParseURL(config.RedisConnString)
		if err != nil {
			logger.Logger.Fatal("failed to parse Redis connection string", zap.Error(err))
		}
		RDB = redis.NewClient(opt)
	} else {
		logger.Logger.Info("Redis sentinel mode enabled")
		RDB = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:      strings.Split(config.RedisConnString, ","),
			Password:   config.RedisPassword,
			MasterName: config.RedisMasterName,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		logger.Logger.Fatal("failed to ping Redis", zap.Error(err))
	}
	redisEnabled.Store(true)
	return nil
}

func RedisSet(ctx context.Context, key string, value string, expiration time.Duration) error {
	return RDB.Set(ctx, key, value, expiration).Err()
}

func RedisGet(ctx context.Context, key string) (string, error) {
	return RDB.Get(ctx, key).Result()
}

func RedisDel(ctx context.Context, key string) error {
	return RDB.Del(ctx, key).Err()
}
