package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load builds configuration from defaults, an optional config file, and env vars.
// Precedence: defaults < config file < env vars.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("database_dsn", cfg.DatabaseDSN)
	v.SetDefault("jwt_secret", cfg.JWTSecret)
	v.SetDefault("jwt_ttl", cfg.JWTTTL)
	v.SetDefault("amqp_url", cfg.AMQPURL)
	v.SetDefault("amqp_exchange", cfg.AMQPExchange)
	v.SetDefault("redis_addr", cfg.RedisAddr)
	v.SetDefault("s3_bucket", cfg.S3Bucket)
	v.SetDefault("s3_public_base_url", cfg.S3PublicBaseURL)
	v.SetDefault("otlp_endpoint", cfg.OTLPEndpoint)
	v.SetDefault("environment", cfg.Environment)
	v.SetDefault("story_radius_km", cfg.StoryRadiusKm)
	v.SetDefault("story_window", cfg.StoryWindow)
	v.SetDefault("shutdown_timeout", cfg.ShutdownTimeout)

	v.SetEnvPrefix("SNAPLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
