package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "events")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")
	t.Setenv("BOOKING_CONSUMER_ENABLED", "off")
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("EXPORT_TIMEZONE", "UTC")

	cfg := Load()
	if cfg.Port != "8080" || cfg.DBName != "events" || cfg.DBPass != "" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.RabbitURL != "amqp://u:p@broker:5672/" {
		t.Fatalf("RabbitURL = %q", cfg.RabbitURL)
	}
	if cfg.ConsumerEnabled {
		t.Fatal("consumer should be disabled")
	}
	if cfg.ShutdownTimeout != 2*time.Second || cfg.NotifyTimeout != 3*time.Second {
		t.Fatalf("timeouts = %s/%s", cfg.ShutdownTimeout, cfg.NotifyTimeout)
	}
	if cfg.BookingLogDir != "logs" || cfg.ExportLocation != time.UTC {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestRabbitURLPrefersRabbitMQ(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "amqp://primary/")
	t.Setenv("AMQP_URL", "amqp://secondary/")
	if got := RabbitURL(); got != "amqp://primary/" {
		t.Fatalf("RabbitURL = %q", got)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_ENABLED", "yes")

	c := LoadRateLimitConfig()
	if !c.Enabled || c.Capacity != 1 || c.RefillTokens != 1 {
		t.Fatalf("unexpected %+v", c)
	}
	if c.TTL != 10*time.Second {
		t.Fatalf("TTL = %s, want 5x refill interval", c.TTL)
	}
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head ,")
	t.Setenv("CACHE_TTL", "bogus")
	c := LoadCacheConfig()
	if !c.Methods["GET"] || !c.Methods["HEAD"] || len(c.Methods) != 2 {
		t.Fatalf("methods = %v", c.Methods)
	}
	if c.TTL != 30*time.Second {
		t.Fatalf("TTL = %s", c.TTL)
	}
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_DB", "2")
	if c := LoadRedisConfig(); c.Addr != "cache:6379" || c.DB != 2 {
		t.Fatalf("unexpected %+v", c)
	}
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	if c := LoadRedisConfig(); c.Addr != "redis:6380" {
		t.Fatalf("addr = %q", c.Addr)
	}
}
