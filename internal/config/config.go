package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	cfg *Config
	mu  sync.RWMutex
)

// Config represents the application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Lock     LockConfig     `mapstructure:"lock"`
	Ticket   TicketConfig   `mapstructure:"ticket"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
}

type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenDuration time.Duration `mapstructure:"token_duration"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
}

type LockConfig struct {
	// Backend is "memory" or "redis". Redis requires redis.enabled.
	Backend        string        `mapstructure:"backend"`
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout"`
	HoldTTL        time.Duration `mapstructure:"hold_ttl"`
}

type TicketConfig struct {
	// AutoCloseAfter closes pending tickets with no activity for this long.
	// Zero disables the job.
	AutoCloseAfter    time.Duration `mapstructure:"auto_close_after"`
	AutoCloseSchedule string        `mapstructure:"auto_close_schedule"`
}

type WebhookConfig struct {
	// SharedSecret validates channel-adapter webhook calls.
	SharedSecret string `mapstructure:"shared_secret"`
}

// Load reads configuration from the given file, applying ZAPDESK_* env
// overrides, and watches the file for changes.
func Load(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("zapdesk")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine: defaults + env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("config file %s not read: %v (using defaults/env)", path, err)
		}
	}

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	mu.Lock()
	cfg = loaded
	mu.Unlock()

	v.OnConfigChange(func(e fsnotify.Event) {
		reloaded := &Config{}
		if err := v.Unmarshal(reloaded); err != nil {
			log.Printf("config reload failed: %v", err)
			return
		}
		mu.Lock()
		cfg = reloaded
		mu.Unlock()
		log.Printf("config reloaded from %s", e.Name)
	})
	v.WatchConfig()

	return nil
}

// Get returns the current configuration. Load must have been called.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "zapdesk")
	v.SetDefault("app.env", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "zapdesk")
	v.SetDefault("database.user", "zapdesk")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("auth.token_duration", 24*time.Hour)
	v.SetDefault("lock.backend", "memory")
	v.SetDefault("lock.acquire_timeout", 5*time.Second)
	v.SetDefault("lock.hold_ttl", 30*time.Second)
	v.SetDefault("ticket.auto_close_schedule", "@every 10m")
}
